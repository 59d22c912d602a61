// Package server runs the randpick daemon's long-lived services: the Telnet
// picker frontend and the gRPC health endpoint.
package server

import (
	"context"
	"fmt"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// DefaultStopTimeout bounds how long shutdown waits on one service before
// moving on to the next.
const DefaultStopTimeout = 10 * time.Second

// Service is a component that serves until stopped.
type Service interface {
	// Start blocks until the service stops or fails.
	Start() error
	// Stop asks a running service to return from Start.
	Stop()
}

// Readier is implemented by services that can report when they accept work.
type Readier interface {
	Ready() <-chan struct{}
}

// FuncService adapts a start/stop function pair into a Service.
type FuncService struct {
	StartFn func() error
	StopFn  func()
	// ReadyFn is optional; when set the service also satisfies Readier.
	ReadyFn func() <-chan struct{}
}

// Start calls StartFn.
func (f *FuncService) Start() error { return f.StartFn() }

// Stop calls StopFn.
func (f *FuncService) Stop() { f.StopFn() }

// Ready calls ReadyFn, or returns a closed channel when ReadyFn is nil.
func (f *FuncService) Ready() <-chan struct{} {
	if f.ReadyFn != nil {
		return f.ReadyFn()
	}
	ch := make(chan struct{})
	close(ch)
	return ch
}

type entry struct {
	name string
	svc  Service
}

// Lifecycle starts registered services together, waits for a signal, a
// cancelled context or the first failure, then stops them in reverse order.
type Lifecycle struct {
	logger      *zap.Logger
	stopTimeout time.Duration

	mu      sync.Mutex
	entries []entry
	onReady []func()
}

// NewLifecycle creates an empty Lifecycle.
//
// Precondition: logger must be non-nil.
func NewLifecycle(logger *zap.Logger) *Lifecycle {
	return &Lifecycle{logger: logger, stopTimeout: DefaultStopTimeout}
}

// Add registers svc under name. Registration order is start order.
//
// Precondition: name must be non-empty; svc must be non-nil; Run not yet called.
func (l *Lifecycle) Add(name string, svc Service) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry{name: name, svc: svc})
}

// OnReady registers fn to run once every service implementing Readier has
// reported ready. It does not run if Run returns first.
func (l *Lifecycle) OnReady(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onReady = append(l.onReady, fn)
}

// Run starts every service and blocks until SIGINT/SIGTERM, ctx cancellation
// or a service failure.
//
// Postcondition: every service has been stopped. Returns the first service
// failure, or nil when shutdown was requested.
func (l *Lifecycle) Run(ctx context.Context) error {
	l.mu.Lock()
	entries := append([]entry(nil), l.entries...)
	hooks := append([]func(){}, l.onReady...)
	l.mu.Unlock()

	started := time.Now()
	sigCtx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	failed := make(chan error, len(entries))
	for _, e := range entries {
		go l.serve(e, failed)
	}
	readyDone := make(chan struct{})
	go func() {
		defer close(readyDone)
		l.awaitReady(sigCtx, entries, hooks, started)
	}()

	var runErr error
	select {
	case runErr = <-failed:
		l.logger.Error("service failed, shutting down", zap.Error(runErr))
	case <-sigCtx.Done():
		if ctx.Err() != nil {
			l.logger.Info("context cancelled, shutting down")
		} else {
			l.logger.Info("signal received, shutting down")
		}
	}

	stopSignals()
	<-readyDone
	l.stopAll(entries)
	l.logger.Info("shutdown complete", zap.Duration("uptime", time.Since(started)))
	return runErr
}

func (l *Lifecycle) serve(e entry, failed chan<- error) {
	l.logger.Info("starting service", zap.String("service", e.name))
	begin := time.Now()
	if err := e.svc.Start(); err != nil {
		l.logger.Error("service exited with error",
			zap.String("service", e.name),
			zap.Duration("uptime", time.Since(begin)),
			zap.Error(err),
		)
		failed <- fmt.Errorf("service %s: %w", e.name, err)
	}
}

func (l *Lifecycle) awaitReady(ctx context.Context, entries []entry, hooks []func(), started time.Time) {
	for _, e := range entries {
		r, ok := e.svc.(Readier)
		if !ok {
			continue
		}
		select {
		case <-r.Ready():
		case <-ctx.Done():
			return
		}
	}
	l.logger.Info("all services ready",
		zap.Int("count", len(entries)),
		zap.Duration("startup", time.Since(started)),
	)
	for _, fn := range hooks {
		fn()
	}
}

// stopAll stops services in reverse order, abandoning any that exceed the
// stop timeout.
func (l *Lifecycle) stopAll(entries []entry) {
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		begin := time.Now()
		done := make(chan struct{})
		go func() {
			defer close(done)
			e.svc.Stop()
		}()
		select {
		case <-done:
			l.logger.Info("service stopped",
				zap.String("service", e.name),
				zap.Duration("elapsed", time.Since(begin)),
			)
		case <-time.After(l.stopTimeout):
			l.logger.Warn("service did not stop in time",
				zap.String("service", e.name),
				zap.Duration("timeout", l.stopTimeout),
			)
		}
	}
}
