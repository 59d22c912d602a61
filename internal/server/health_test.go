package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/cory-johannsen/randpick/internal/config"
)

func startHealth(t *testing.T) (*Health, healthpb.HealthClient) {
	t.Helper()
	h := NewHealth(config.HealthConfig{Enabled: true, Host: "127.0.0.1", Port: 0}, zaptest.NewLogger(t))
	errCh := make(chan error, 1)
	go func() { errCh <- h.Start() }()

	select {
	case <-h.Ready():
	case err := <-errCh:
		t.Fatalf("health server failed to start: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("health server did not start in time")
	}
	t.Cleanup(func() {
		h.Stop()
		assert.NoError(t, <-errCh)
	})

	conn, err := grpc.NewClient(h.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return h, healthpb.NewHealthClient(conn)
}

func check(t *testing.T, c healthpb.HealthClient, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	resp, err := c.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestHealth_ReportsServingStatus(t *testing.T) {
	h, client := startHealth(t)

	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, client, PickerService))

	h.SetServing(PickerService, true)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, client, PickerService))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, client, ""))

	h.SetServing(PickerService, false)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, client, ""))
}

func TestHealth_AddrBeforeStart(t *testing.T) {
	h := NewHealth(config.HealthConfig{Host: "127.0.0.1"}, zaptest.NewLogger(t))
	assert.Nil(t, h.Addr())
}

func TestHealth_StartFailsOnBadAddr(t *testing.T) {
	h := NewHealth(config.HealthConfig{Host: "256.256.256.256", Port: 1}, zaptest.NewLogger(t))
	assert.Error(t, h.Start())
}
