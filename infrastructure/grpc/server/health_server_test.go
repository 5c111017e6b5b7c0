package server

import (
	"context"
	"dm-lab/storage"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func check(t *testing.T, s *HealthServer, service string) healthpb.HealthCheckResponse_ServingStatus {
	resp, err := s.health.Check(context.Background(), &healthpb.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestHealthServer_Probe(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	dir := t.TempDir()
	store := storage.NewFileStore(dir, log, storage.Options{})
	req.NoError(store.EnsureReady())
	s := NewHealthServer(store, log, time.Hour)

	req.Equal(healthpb.HealthCheckResponse_SERVING, s.Probe())
	req.Equal(healthpb.HealthCheckResponse_SERVING, check(t, s, ""))
	req.Equal(healthpb.HealthCheckResponse_SERVING, check(t, s, StoreService))

	req.NoError(os.WriteFile(filepath.Join(dir, "users.json"), []byte("{broken"), 0o600))

	req.Equal(healthpb.HealthCheckResponse_NOT_SERVING, s.Probe())
	req.Equal(healthpb.HealthCheckResponse_NOT_SERVING, check(t, s, StoreService))
}

func TestHealthServer_Run(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	store := storage.NewFileStore(t.TempDir(), log, storage.Options{})
	req.NoError(store.EnsureReady())
	s := NewHealthServer(store, log, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	req.Eventually(func() bool {
		resp, err := s.health.Check(context.Background(), &healthpb.HealthCheckRequest{Service: StoreService})
		return err == nil && resp.GetStatus() == healthpb.HealthCheckResponse_SERVING
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
	req.Equal(healthpb.HealthCheckResponse_NOT_SERVING, check(t, s, StoreService))
}
