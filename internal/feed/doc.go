// Package feed implements the live feed hub that pushes partition state to
// connected viewers after every successful write.
//
// Frames are full-state-per-partition:
//
//	{"Searches":[{"map_id":20,"district":1,"parties":[{"sender":"Alice",...}]}]}
//
// Delivery is best effort with no acknowledgement and no replay. A viewer that
// connects late must fetch the bulk baseline before trusting live frames.
//
//	hub := feed.NewHub(feed.Options{Logger: logger})
//	sub := hub.Subscribe()
//	defer sub.Close()
//	_ = hub.Publish(feed.FromAggregates(agg))
//	frame := <-sub.C()
package feed
