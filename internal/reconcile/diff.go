// Package reconcile computes the minimal set of row changes that turns a
// stored partition into a submitted one.
package reconcile

import "github.com/rzbill/partysearch/internal/partition"

// Changes is the row-level delta for one partition.
type Changes struct {
	// ToDelete holds senders stored but absent from the submission.
	ToDelete []string
	// ToUpsert holds submitted entries that are new or differ in any field.
	ToUpsert []partition.Entry
}

// Empty reports whether applying c would change nothing.
func (c Changes) Empty() bool { return len(c.ToDelete) == 0 && len(c.ToUpsert) == 0 }

// Diff compares the stored entries of a partition with a full replacement
// candidate. Senders match by exact string; when the candidate repeats a
// sender the last occurrence wins. Output order follows the inputs.
func Diff(existing, candidate []partition.Entry) Changes {
	want := make(map[string]partition.Entry, len(candidate))
	order := make([]string, 0, len(candidate))
	for _, e := range candidate {
		if _, seen := want[e.Sender]; !seen {
			order = append(order, e.Sender)
		}
		want[e.Sender] = e
	}

	have := make(map[string]partition.Entry, len(existing))
	var ch Changes
	for _, e := range existing {
		have[e.Sender] = e
		if _, keep := want[e.Sender]; !keep {
			ch.ToDelete = append(ch.ToDelete, e.Sender)
		}
	}
	for _, sender := range order {
		next := want[sender]
		if prev, ok := have[sender]; ok && prev == next {
			continue
		}
		ch.ToUpsert = append(ch.ToUpsert, next)
	}
	return ch
}
