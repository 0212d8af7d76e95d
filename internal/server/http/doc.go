// Package httpserver is the REST and WebSocket gateway for the party search
// service. Routes are registered by the controllers package; this package
// adds request ids, access logging and CORS around them.
//
// Example:
//
//	rt, _ := runtime.Open(runtime.Options{Config: config.Default()})
//	s := httpserver.New(rt, logger)
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	_ = s.ListenAndServe(ctx, ":8080")
package httpserver
