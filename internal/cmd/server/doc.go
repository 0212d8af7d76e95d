// Package serverrun exposes the Run entrypoint used by the CLI to start the
// party search runtime with its gRPC and HTTP servers, handling config
// resolution, lifecycle and shutdown.
//
// Example:
//
//	opts := serverrun.Options{ConfigPath: "partysearch.yaml", HTTPAddr: ":8080"}
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	_ = serverrun.Run(ctx, opts)
package serverrun
