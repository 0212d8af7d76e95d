// Package grpcserver hosts the gRPC side of the party search server. It
// exposes the standard health service, driven by periodic storage probes,
// and server reflection.
//
// Example:
//
//	rt, _ := runtime.Open(runtime.Options{Config: config.Default()})
//	s := grpcserver.New(rt)
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	_ = s.ListenAndServe(ctx, ":9090")
package grpcserver
