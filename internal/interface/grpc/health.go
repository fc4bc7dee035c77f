// Package grpc exposes the standard gRPC health service, reporting whether
// the API's backing stores are reachable.
package grpc

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/xiebiao/library/pkg/logger"
)

// ServiceName is the health service name reported alongside the overall ("") status.
const ServiceName = "library.v1.Library"

// Check probes one dependency. A nil error means healthy.
type Check func(ctx context.Context) error

// HealthServer serves grpc.health.v1 and re-runs its checks on an interval.
type HealthServer struct {
	server   *grpc.Server
	health   *health.Server
	checks   map[string]Check
	interval time.Duration
	timeout  time.Duration

	mu   sync.Mutex
	stop chan struct{}
}

// NewHealthServer creates the server. Status starts NOT_SERVING until the
// first round of checks passes.
func NewHealthServer(checks map[string]Check, interval time.Duration) *HealthServer {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	hs := health.NewServer()
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(logUnary))
	healthpb.RegisterHealthServer(srv, hs)
	reflection.Register(srv)

	s := &HealthServer{
		server:   srv,
		health:   hs,
		checks:   checks,
		interval: interval,
		timeout:  2 * time.Second,
		stop:     make(chan struct{}),
	}
	s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

// Refresh runs every check once and publishes the result.
func (s *HealthServer) Refresh(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	for name, check := range s.checks {
		cctx, cancel := context.WithTimeout(ctx, s.timeout)
		err := check(cctx)
		cancel()
		if err != nil {
			logger.FromContext(ctx).Warn().Err(err).Str("check", name).Msg("health check failed")
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	s.setStatus(status)
	return status
}

func (s *HealthServer) setStatus(status healthpb.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// Serve refreshes the status in the background and serves on lis until
// GracefulStop is called.
func (s *HealthServer) Serve(lis net.Listener) error {
	s.Refresh(context.Background())
	go s.watch()

	if err := s.server.Serve(lis); err != nil {
		return fmt.Errorf("serve grpc: %w", err)
	}
	return nil
}

// ListenAndServe listens on :port.
func (s *HealthServer) ListenAndServe(port int) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("listen grpc: %w", err)
	}
	return s.Serve(lis)
}

func (s *HealthServer) watch() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Refresh(context.Background())
		case <-s.stop:
			return
		}
	}
}

// GracefulStop marks the service NOT_SERVING and waits for in-flight RPCs.
func (s *HealthServer) GracefulStop() {
	s.mu.Lock()
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
	s.mu.Unlock()

	s.health.Shutdown()
	s.server.GracefulStop()
}

func logUnary(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	event := logger.FromContext(ctx).Debug()
	if err != nil {
		event = logger.FromContext(ctx).Warn().Err(err)
	}
	event.Str("method", info.FullMethod).Dur("latency", time.Since(start)).Msg("grpc request")
	return resp, err
}
