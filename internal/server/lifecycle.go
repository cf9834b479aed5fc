// Package server runs the overlay's long-lived services: the fixed-rate
// simulation loop and the HTTP listener exposing the websocket endpoint.
// The Lifecycle starts registered services in order and stops them in
// reverse when a termination signal arrives, a service fails, or the host
// context is cancelled.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Service is one long-running component of the overlay process.
type Service interface {
	// Start runs the service, blocking until Stop is called or the service
	// fails.
	Start() error
	// Stop terminates the service. Must be safe to call more than once.
	Stop()
}

// Lifecycle supervises the overlay's services as a unit.
type Lifecycle struct {
	logger  *zap.Logger
	entries []entry
	mu      sync.Mutex
}

type entry struct {
	name string
	svc  Service
}

// NewLifecycle creates an empty supervisor.
//
// Precondition: logger must be non-nil.
func NewLifecycle(logger *zap.Logger) *Lifecycle {
	return &Lifecycle{logger: logger}
}

// Add registers a named service. Start order follows registration order;
// stop order is the reverse, so the sim loop registered before the HTTP
// listener keeps broadcasting until its subscribers are gone.
//
// Precondition: name must be non-empty; svc must be non-nil.
func (l *Lifecycle) Add(name string, svc Service) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry{name: name, svc: svc})
}

// Run starts every registered service and blocks until the first of: a
// SIGINT or SIGTERM, a service returning an error, or ctx being cancelled.
// The failing service's error, if any, is returned after shutdown.
//
// Postcondition: every service has been stopped when Run returns.
func (l *Lifecycle) Run(ctx context.Context) error {
	up := time.Now()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	failures := make(chan error, len(l.entries))
	for _, e := range l.entries {
		e := e
		go func() {
			l.logger.Info("service starting", zap.String("service", e.name))
			if err := e.svc.Start(); err != nil {
				failures <- fmt.Errorf("service %s: %w", e.name, err)
				cancel()
			}
		}()
	}
	l.logger.Info("overlay services launched", zap.Int("count", len(l.entries)))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var err error
	select {
	case sig := <-sigCh:
		l.logger.Info("signal received, shutting down", zap.String("signal", sig.String()))
	case err = <-failures:
		l.logger.Error("service failed, shutting down", zap.Error(err))
	case <-ctx.Done():
		// A failing service cancels the context itself; pick up its error
		// if that is what brought us here.
		select {
		case err = <-failures:
			l.logger.Error("service failed, shutting down", zap.Error(err))
		default:
			l.logger.Info("context cancelled, shutting down")
		}
	}

	l.stopAll()
	l.logger.Info("overlay stopped", zap.Duration("uptime", time.Since(up)))
	return err
}

// stopAll stops services in reverse registration order.
func (l *Lifecycle) stopAll() {
	for i := len(l.entries) - 1; i >= 0; i-- {
		e := l.entries[i]
		l.logger.Info("service stopping", zap.String("service", e.name))
		e.svc.Stop()
	}
}
