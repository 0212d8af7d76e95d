package grpcserver

import (
	"context"
	"time"

	logpkg "github.com/rzbill/partysearch/pkg/log"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service name reported alongside the server-wide
// status.
const ServiceName = "partysearch.PartySearch"

// watchHealth re-probes storage every HealthInterval until ctx is done.
func (s *Server) watchHealth(ctx context.Context) {
	every := s.rt.Config().Server.HealthInterval()
	if every <= 0 {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.probe(ctx)
		}
	}
}

func (s *Server) probe(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	if err := s.rt.CheckHealth(ctx); err != nil {
		s.logger.Warn("health probe failed", logpkg.Err(err))
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}
