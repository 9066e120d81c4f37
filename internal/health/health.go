// Package health publishes store reachability over the standard gRPC health
// protocol and probes it from the client side.
package health

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"teamforge/internal/store"
)

// ServiceName is the gRPC health service name reported alongside the server-wide "" entry.
const ServiceName = "teamforge.Teams"

// Checker pings the store on an interval and mirrors the result into a gRPC health server.
type Checker struct {
	pinger   store.Pinger
	server   *health.Server
	interval time.Duration
	log      *logrus.Logger
}

// NewChecker creates a Checker. The server starts out NOT_SERVING until the first check.
func NewChecker(pinger store.Pinger, interval time.Duration, log *logrus.Logger) *Checker {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	c := &Checker{
		pinger:   pinger,
		server:   health.NewServer(),
		interval: interval,
		log:      log,
	}
	c.set(healthpb.HealthCheckResponse_NOT_SERVING)
	return c
}

// Register adds the health service to s.
func (c *Checker) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, c.server)
}

// Server exposes the underlying health server.
func (c *Checker) Server() *health.Server {
	return c.server
}

// CheckOnce pings the store and updates the served status.
func (c *Checker) CheckOnce(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, c.interval)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := c.pinger.Ping(ctx); err != nil {
		status = healthpb.HealthCheckResponse_NOT_SERVING
		c.log.WithError(err).Warn("Store health check failed")
	}
	c.set(status)
	return status
}

// Run checks immediately and then on every interval until ctx is done, at
// which point every service is marked NOT_SERVING.
func (c *Checker) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.CheckOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			c.server.Shutdown()
			return
		case <-ticker.C:
			c.CheckOnce(ctx)
		}
	}
}

func (c *Checker) set(status healthpb.HealthCheckResponse_ServingStatus) {
	c.server.SetServingStatus("", status)
	c.server.SetServingStatus(ServiceName, status)
}

// Probe asks the health service at addr for the status of ServiceName.
func Probe(ctx context.Context, addr string) (healthpb.HealthCheckResponse_ServingStatus, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, fmt.Errorf("dial health server %s: %w", addr, err)
	}
	defer conn.Close()

	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, fmt.Errorf("health check %s: %w", addr, err)
	}
	return resp.GetStatus(), nil
}
