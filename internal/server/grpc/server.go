package grpcserver

import (
	"context"
	"net"
	"sync"

	"github.com/rzbill/partysearch/internal/runtime"
	logpkg "github.com/rzbill/partysearch/pkg/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// Server owns the gRPC server instance and runtime.
type Server struct {
	rt     *runtime.Runtime
	grpc   *grpc.Server
	health *health.Server
	logger logpkg.Logger

	mu  sync.Mutex
	lis net.Listener
}

// New constructs a gRPC server and registers the health and reflection
// services.
func New(rt *runtime.Runtime, opts ...grpc.ServerOption) *Server {
	s := &Server{
		rt:     rt,
		grpc:   grpc.NewServer(opts...),
		health: health.NewServer(),
		logger: rt.Logger().With(logpkg.Component("grpc")),
	}
	healthpb.RegisterHealthServer(s.grpc, s.health)
	reflection.Register(s.grpc)
	s.probe(context.Background())
	return s
}

// ListenAndServe binds to addr and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.lis = l
	s.mu.Unlock()
	s.logger.Info("grpc listening", logpkg.Str("addr", l.Addr().String()))
	go s.watchHealth(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- s.grpc.Serve(l) }()
	select {
	case <-ctx.Done():
		s.health.Shutdown()
		s.grpc.GracefulStop()
		return nil
	case err := <-errCh:
		return err
	}
}

// Addr returns the bound address once ListenAndServe has started.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lis == nil {
		return nil
	}
	return s.lis.Addr()
}

// Close stops the server. GracefulStop closes every listener, so a running
// ListenAndServe returns nil.
func (s *Server) Close() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}
