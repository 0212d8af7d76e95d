// Package partysearchsvc implements party search submissions and queries on
// top of the runtime's store, snapshot cache and live feed hub.
//
// Errors returned by Post and Query are *Failure values:
//
//	res, err := svc.Post(ctx, req)
//	var f *partysearchsvc.Failure
//	if errors.As(err, &f) {
//	    switch f.Kind {
//	    case partysearchsvc.FailureInvalidMap:
//	        // 400
//	    case partysearchsvc.FailureUnspecified:
//	        // 500, "transaction rejected"
//	    }
//	}
//	_ = res.Changed // false for an unchanged resubmission
//
// Partitions are stored per district language, but the live feed speaks in
// combined "{map}-{district}" slots: every broadcast carries the union of the
// slot's language variants. Query addresses one exact partition and reports
// EntriesNotFound when it holds no entries.
//
// Concurrent submissions for the same partition are not serialized: both may
// diff against the same snapshot and the later commit wins row by row.
package partysearchsvc
