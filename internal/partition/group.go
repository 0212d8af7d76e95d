package partition

import (
	"iter"
)

// Collect drains a partition key sequence and a row sequence into aggregates.
// Every key yields an aggregate, even when no rows belong to it; rows for a
// key the marker scan did not report still produce an aggregate.
func Collect(keys iter.Seq2[Key, error], rows iter.Seq2[Row, error]) ([]Aggregate, error) {
	index := make(map[Key]int)
	var out []Aggregate
	slot := func(k Key) int {
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, Aggregate{Key: k, Entries: []Entry{}})
		}
		return i
	}
	for k, err := range keys {
		if err != nil {
			return nil, err
		}
		slot(k)
	}
	for r, err := range rows {
		if err != nil {
			return nil, err
		}
		i := slot(r.Key)
		out[i].Entries = append(out[i].Entries, r.Entry)
	}
	return out, nil
}
