// Package client provides the `partysearch` command-line client.
//
// The CLI talks to the HTTP API and live feed to submit party searches and
// follow the aggregated view from a terminal, and to the gRPC health service
// for liveness checks.
//
// # Address configuration
//
// The HTTP base URL is discovered by the application that embeds the
// commands via a BaseURLFunc. The standalone binary reads PARTYSEARCH_HTTP
// (default http://127.0.0.1:8080). The gRPC address is read from
// PARTYSEARCH_GRPC (default 127.0.0.1:9090).
//
// Usage
//
//	partysearch submit -f forge.json
//	partysearch submit --data '{"campaign":1,"continent":1,"region":4,"map":20,"district":1,"entries":[]}'
//
//	partysearch watch
//	partysearch watch --map "Droknar's Forge" --filter 'level >= 20 && search_type == 3'
//	partysearch watch --once --json
//
//	partysearch health
//
// Notes
//
//   - A submission replaces the whole entry set of its district. An empty
//     entries list clears it.
//   - watch reconnects with exponential backoff (1s doubling to 30s) when the
//     connection drops and exits when the server closes it normally.
package client
