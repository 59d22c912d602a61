// Package telnet serves picker sessions over the Telnet line protocol.
package telnet

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/randpick/internal/config"
)

// BusyMessage is sent to clients turned away because MaxSessions is reached.
const BusyMessage = "Too many sessions are open. Please try again later."

// SessionHandler runs one client's session. ctx is cancelled when the
// acceptor stops; the handler must return soon after.
type SessionHandler interface {
	HandleSession(ctx context.Context, conn *Conn) error
}

// Acceptor accepts Telnet clients and runs each in its own goroutine.
type Acceptor struct {
	cfg     config.TelnetConfig
	handler SessionHandler
	logger  *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	ready  chan struct{}
	served chan struct{} // closed when the accept loop returns
	slots  chan struct{} // nil when sessions are unlimited
	active atomic.Int64
	wg     sync.WaitGroup

	mu       sync.Mutex
	listener net.Listener
	stopOnce sync.Once
}

// NewAcceptor creates an Acceptor serving cfg.Addr().
//
// Precondition: handler and logger must be non-nil.
func NewAcceptor(cfg config.TelnetConfig, handler SessionHandler, logger *zap.Logger) *Acceptor {
	ctx, cancel := context.WithCancel(context.Background())
	a := &Acceptor{
		cfg:     cfg,
		handler: handler,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		ready:   make(chan struct{}),
		served:  make(chan struct{}),
	}
	if cfg.MaxSessions > 0 {
		a.slots = make(chan struct{}, cfg.MaxSessions)
	}
	return a
}

// ListenAndServe binds the listener and accepts clients until Stop.
//
// Postcondition: Returns nil after Stop, or the bind error.
func (a *Acceptor) ListenAndServe() error {
	lis, err := net.Listen("tcp", a.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", a.cfg.Addr(), err)
	}

	a.mu.Lock()
	if a.ctx.Err() != nil {
		a.mu.Unlock()
		_ = lis.Close()
		return nil
	}
	a.listener = lis
	a.mu.Unlock()
	close(a.ready)
	defer close(a.served)

	a.logger.Info("telnet acceptor listening",
		zap.String("addr", lis.Addr().String()),
		zap.Int("max_sessions", a.cfg.MaxSessions),
	)

	for {
		raw, err := lis.Accept()
		if err != nil {
			if a.ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			a.logger.Warn("accept failed", zap.Error(err))
			continue
		}
		if !a.acquire() {
			go a.turnAway(raw)
			continue
		}
		a.wg.Add(1)
		go a.serve(raw)
	}
}

func (a *Acceptor) acquire() bool {
	if a.slots != nil {
		select {
		case a.slots <- struct{}{}:
		default:
			return false
		}
	}
	a.active.Add(1)
	return true
}

func (a *Acceptor) releaseSlot() {
	a.active.Add(-1)
	if a.slots != nil {
		<-a.slots
	}
}

func (a *Acceptor) turnAway(raw net.Conn) {
	a.logger.Warn("session limit reached, turning client away",
		zap.String("remote_addr", raw.RemoteAddr().String()),
		zap.Int("max_sessions", a.cfg.MaxSessions),
	)
	conn := NewConn(raw, a.cfg.ReadTimeout, a.cfg.WriteTimeout)
	_ = conn.WriteLine(BusyMessage)
	_ = conn.Close()
}

func (a *Acceptor) serve(raw net.Conn) {
	defer a.wg.Done()
	defer a.releaseSlot()

	conn := NewConn(raw, a.cfg.ReadTimeout, a.cfg.WriteTimeout)
	defer conn.Close()
	log := a.logger.With(
		zap.String("session_id", conn.ID()),
		zap.String("remote_addr", raw.RemoteAddr().String()),
	)
	begin := time.Now()
	log.Info("client connected", zap.Int64("active", a.active.Load()))

	if err := conn.Negotiate(); err != nil {
		log.Warn("telnet negotiation failed", zap.Error(err))
		return
	}
	err := a.handler.HandleSession(a.ctx, conn)
	log.Info("client disconnected",
		zap.Duration("duration", time.Since(begin)),
		zap.NamedError("reason", err),
	)
}

// Stop closes the listener, cancels every session's context and waits for
// the sessions to return. Calling Stop more than once is harmless.
func (a *Acceptor) Stop() {
	a.stopOnce.Do(func() {
		a.mu.Lock()
		a.cancel()
		lis := a.listener
		if lis != nil {
			_ = lis.Close()
		}
		a.mu.Unlock()
		if lis != nil {
			// no wg.Add may race the Wait below
			<-a.served
		}
		a.wg.Wait()
		a.logger.Info("telnet acceptor stopped")
	})
}

// Ready is closed once the listener is bound.
func (a *Acceptor) Ready() <-chan struct{} { return a.ready }

// Addr returns the bound address, or "" before Ready is closed.
func (a *Acceptor) Addr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener == nil {
		return ""
	}
	return a.listener.Addr().String()
}

// ActiveSessions returns the number of sessions being served.
func (a *Acceptor) ActiveSessions() int {
	return int(a.active.Load())
}

// IsRunning reports whether the acceptor is bound and not stopped.
func (a *Acceptor) IsRunning() bool {
	select {
	case <-a.ready:
		return a.ctx.Err() == nil
	default:
		return false
	}
}
