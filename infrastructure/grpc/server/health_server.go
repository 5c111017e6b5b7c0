package server

import (
	"context"
	"dm-lab/storage"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// StoreService is the health service name reporting whether every collection is readable.
const StoreService = "dm-lab.Store"

// HealthServer publishes the grpc.health.v1 protocol, driven by periodic store probes.
type HealthServer struct {
	health   *health.Server
	store    storage.Store
	log      *slog.Logger
	interval time.Duration
}

func NewHealthServer(store storage.Store, log *slog.Logger, interval time.Duration) *HealthServer {
	return &HealthServer{
		health:   health.NewServer(),
		store:    store,
		log:      log,
		interval: interval,
	}
}

func (s *HealthServer) Register(g *grpc.Server) {
	healthpb.RegisterHealthServer(g, s.health)
}

// Probe reads every collection once and publishes the result.
func (s *HealthServer) Probe() healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	for _, c := range storage.Collections {
		if _, err := s.store.ReadCollection(c); err != nil {
			s.log.Warn("Health probe failed", "collection", c, "error", err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
			break
		}
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(StoreService, status)
	return status
}

// Run probes the store until ctx is done, then marks every service as not serving.
func (s *HealthServer) Run(ctx context.Context) {
	s.Probe()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.health.Shutdown()
			return
		case <-ticker.C:
			s.Probe()
		}
	}
}
