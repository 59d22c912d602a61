package server

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/cory-johannsen/randpick/internal/config"
)

// PickerService is the health service name reported for the Telnet picker.
const PickerService = "randpick.Picker"

// Health serves the standard grpc.health.v1.Health service. It implements Service.
type Health struct {
	cfg    config.HealthConfig
	logger *zap.Logger
	srv    *grpc.Server
	hs     *health.Server

	mu    sync.Mutex
	lis   net.Listener
	ready chan struct{}
}

// NewHealth creates a health server. Every service starts NOT_SERVING until
// SetServing is called.
//
// Precondition: logger must be non-nil.
func NewHealth(cfg config.HealthConfig, logger *zap.Logger) *Health {
	h := &Health{
		cfg:    cfg,
		logger: logger,
		srv:    grpc.NewServer(),
		hs:     health.NewServer(),
		ready:  make(chan struct{}),
	}
	h.hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	h.hs.SetServingStatus(PickerService, healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(h.srv, h.hs)
	return h
}

// SetServing updates the status of service and of the overall server ("").
func (h *Health) SetServing(service string, serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	h.hs.SetServingStatus(service, status)
	h.hs.SetServingStatus("", status)
}

// Ready is closed once the listener is bound.
func (h *Health) Ready() <-chan struct{} { return h.ready }

// Addr returns the bound address, or nil before Ready is closed.
func (h *Health) Addr() net.Addr {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.lis == nil {
		return nil
	}
	return h.lis.Addr()
}

// Start binds the configured address and serves until Stop.
//
// Postcondition: Returns nil after a graceful Stop, or the bind/serve error.
func (h *Health) Start() error {
	lis, err := net.Listen("tcp", h.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", h.cfg.Addr(), err)
	}
	h.mu.Lock()
	h.lis = lis
	h.mu.Unlock()
	close(h.ready)

	h.logger.Info("gRPC health server listening", zap.String("addr", lis.Addr().String()))
	if err := h.srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serving health: %w", err)
	}
	return nil
}

// Stop marks every service NOT_SERVING and drains in-flight checks.
func (h *Health) Stop() {
	h.hs.Shutdown()
	h.srv.GracefulStop()
}
