package e2e

import (
	"context"
	"dm-lab/client"
	"fmt"
	"testing"
	"time"

	"github.com/gookit/color"
	"github.com/stretchr/testify/suite"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type BaseSuite struct {
	suite.Suite
	Config Config
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.APIURL == "" {
		s.T().Skip("E2E_API_URL is not set")
	}
}

func (s *BaseSuite) header(t *testing.T, name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	t.Log(header)
}

// NewClient returns an API client that logs every call of the current test.
func (s *BaseSuite) NewClient(name string) *client.Client {
	t := s.T()
	s.header(t, name)
	return client.New(s.Config.APIURL, client.WithTrace(func(method, path string, status int, body []byte) {
		t.Logf("HTTP %s %s [%d]", method, path, status)
		if s.Config.DebugJSON {
			t.Logf("RESPONSE:\n%s", body)
		}
	}))
}

// WithClient runs fn with a fresh client and a bounded context.
func (s *BaseSuite) WithClient(name string, fn func(ctx context.Context, c *client.Client)) {
	c := s.NewClient(name)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	fn(ctx, c)
}

// WithHealth provides a grpc health client, skipping when no health address is configured.
func (s *BaseSuite) WithHealth(name string, fn func(ctx context.Context, client healthpb.HealthClient)) {
	if s.Config.HealthAddr == "" {
		s.T().Skip("E2E_HEALTH_ADDR is not set")
	}
	s.header(s.T(), name)
	conn, err := grpc.NewClient(s.Config.HealthAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	s.Require().NoError(err, "Failed to connect to gRPC server at "+s.Config.HealthAddr)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	fn(ctx, healthpb.NewHealthClient(conn))
}
