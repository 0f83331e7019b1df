package health

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health-checked service name besides the overall "" entry.
const ServiceName = "balance.v1.BalanceService"

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Checker keeps the gRPC health status in sync with store reachability.
type Checker struct {
	server   *health.Server
	pinger   Pinger
	interval time.Duration
	timeout  time.Duration
}

// NewChecker creates a Checker. Status starts as NOT_SERVING until the first ping succeeds.
func NewChecker(pinger Pinger, interval time.Duration) *Checker {
	c := &Checker{
		server:   health.NewServer(),
		pinger:   pinger,
		interval: interval,
		timeout:  interval / 2,
	}
	c.set(healthpb.HealthCheckResponse_NOT_SERVING)
	return c
}

// NewGRPCServer creates a gRPC server exposing the health service and reflection.
func NewGRPCServer(checker *Checker, opts ...grpc.ServerOption) *grpc.Server {
	grpcServer := grpc.NewServer(opts...)
	healthpb.RegisterHealthServer(grpcServer, checker.server)

	// Register reflection service (useful for tools like grpcurl)
	reflection.Register(grpcServer)

	return grpcServer
}

// Check pings the store once and updates the serving status.
func (c *Checker) Check(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.pinger.Ping(ctx); err != nil {
		slog.Warn("store health check failed", "error", err)
		c.set(healthpb.HealthCheckResponse_NOT_SERVING)
		return false
	}

	c.set(healthpb.HealthCheckResponse_SERVING)
	return true
}

// Run checks on every interval until ctx is cancelled, then reports NOT_SERVING
// to everyone watching.
func (c *Checker) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			c.server.Shutdown()
			return
		case <-ticker.C:
			c.Check(ctx)
		}
	}
}

func (c *Checker) set(status healthpb.HealthCheckResponse_ServingStatus) {
	c.server.SetServingStatus("", status)
	c.server.SetServingStatus(ServiceName, status)
}
