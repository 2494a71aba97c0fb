package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// ShutdownFunc is a function to call during shutdown
type ShutdownFunc func(context.Context) error

type namedShutdown struct {
	name string
	fn   ShutdownFunc
}

// ShutdownManager stops registered servers and resources in reverse registration
// order, so resources registered first (the database) are closed after the servers
// that use them have drained.
type ShutdownManager struct {
	logger  *Logger
	timeout time.Duration

	mu    sync.Mutex
	steps []namedShutdown
	done  bool
}

// NewShutdownManager creates a new shutdown manager. A zero timeout means 30s.
func NewShutdownManager(logger *Logger, timeout time.Duration) *ShutdownManager {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &ShutdownManager{
		logger:  logger,
		timeout: timeout,
	}
}

// RegisterShutdownFunc registers a named function to call during shutdown
func (sm *ShutdownManager) RegisterShutdownFunc(name string, fn ShutdownFunc) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.steps = append(sm.steps, namedShutdown{name: name, fn: fn})
}

// RegisterServer registers an HTTP server to be drained with Shutdown
func (sm *ShutdownManager) RegisterServer(name string, server *http.Server) {
	sm.RegisterShutdownFunc(name, server.Shutdown)
}

// WaitForSignal blocks until SIGINT/SIGTERM arrives or ctx is cancelled
func (sm *ShutdownManager) WaitForSignal(ctx context.Context) {
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-sigCtx.Done()
	if ctx.Err() == nil {
		sm.logger.Info("Received shutdown signal, starting graceful shutdown")
	}
}

// Shutdown runs every registered step once within the manager timeout.
// Later calls are no-ops. All step errors are joined into the result.
func (sm *ShutdownManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	if sm.done {
		sm.mu.Unlock()
		return nil
	}
	sm.done = true
	steps := make([]namedShutdown, len(sm.steps))
	copy(steps, sm.steps)
	sm.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, sm.timeout)
	defer cancel()

	var errs []error
	for i := len(steps) - 1; i >= 0; i-- {
		step := steps[i]
		if ctx.Err() != nil {
			sm.logger.Warn("Shutdown timeout reached, skipping remaining steps")
			errs = append(errs, fmt.Errorf("%s: %w", step.name, ctx.Err()))
			break
		}
		if err := step.fn(ctx); err != nil {
			sm.logger.WithError(err).WithField("step", step.name).Error("Shutdown step failed")
			errs = append(errs, fmt.Errorf("%s: %w", step.name, err))
			continue
		}
		sm.logger.WithField("step", step.name).Info("Shutdown step complete")
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	sm.logger.Info("Graceful shutdown complete")
	return nil
}

// WaitForShutdown waits for a signal (or ctx cancellation) and then shuts down
func (sm *ShutdownManager) WaitForShutdown(ctx context.Context) error {
	sm.WaitForSignal(ctx)
	return sm.Shutdown(context.Background())
}
