// Package server runs the castle process: long-running services started in
// order, stopped in reverse, with graceful shutdown on signals.
package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Service is a long-running component. Start blocks until the service is
// finished or fails, and must return once ctx ends. Stop releases what the
// service holds and runs after Start has returned.
type Service interface {
	Start(ctx context.Context) error
	Stop()
}

// FuncService adapts a start/stop function pair into the Service interface.
// A nil StopFn is a no-op.
type FuncService struct {
	StartFn func(ctx context.Context) error
	StopFn  func()
}

// Start calls the underlying start function.
func (f *FuncService) Start(ctx context.Context) error { return f.StartFn(ctx) }

// Stop calls the underlying stop function.
func (f *FuncService) Stop() {
	if f.StopFn != nil {
		f.StopFn()
	}
}

// Closer wraps a cleanup function as a service that idles until shutdown.
func Closer(fn func()) Service {
	return &FuncService{
		StartFn: func(ctx context.Context) error {
			<-ctx.Done()
			return nil
		},
		StopFn: fn,
	}
}

// Lifecycle manages the startup and shutdown of named services.
type Lifecycle struct {
	logger   *zap.Logger
	services []namedService
	signals  []os.Signal
}

type namedService struct {
	name    string
	service Service
}

// NewLifecycle creates a Lifecycle that shuts down on SIGINT or SIGTERM.
//
// Precondition: logger must be non-nil.
func NewLifecycle(logger *zap.Logger) *Lifecycle {
	return &Lifecycle{
		logger:  logger,
		signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
	}
}

// Add registers a named service. Services start in the order added.
//
// Precondition: name must be non-empty; svc must be non-nil; Run has not been called.
func (l *Lifecycle) Add(name string, svc Service) {
	l.services = append(l.services, namedService{name: name, service: svc})
}

// Run starts every service and blocks until a signal arrives, ctx is
// cancelled, or any service returns. It then cancels the services' context,
// waits for every Start to return and stops the services in reverse order.
//
// Postcondition: Returns the first service error, or nil.
func (l *Lifecycle) Run(ctx context.Context) error {
	start := time.Now()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, l.signals...)
	defer signal.Stop(sigCh)

	type exit struct {
		name string
		err  error
	}
	exits := make(chan exit, len(l.services))
	for _, ns := range l.services {
		ns := ns
		l.logger.Info("starting service", zap.String("service", ns.name))
		go func() {
			exits <- exit{name: ns.name, err: ns.service.Start(ctx)}
		}()
	}
	l.logger.Info("all services started",
		zap.Int("count", len(l.services)),
		zap.Duration("startup", time.Since(start)),
	)

	var runErr error
	pending := len(l.services)
	if pending > 0 {
		select {
		case sig := <-sigCh:
			l.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		case <-ctx.Done():
			l.logger.Info("context cancelled, shutting down")
		case e := <-exits:
			pending--
			if e.err != nil && !errors.Is(e.err, context.Canceled) {
				runErr = fmt.Errorf("service %s: %w", e.name, e.err)
				l.logger.Error("service failed, shutting down", zap.String("service", e.name), zap.Error(e.err))
			} else {
				l.logger.Info("service finished, shutting down", zap.String("service", e.name))
			}
		}
	}

	cancel()
	for ; pending > 0; pending-- {
		e := <-exits
		if e.err != nil && !errors.Is(e.err, context.Canceled) {
			l.logger.Warn("service returned error during shutdown", zap.String("service", e.name), zap.Error(e.err))
		}
	}
	l.shutdown()

	l.logger.Info("shutdown complete", zap.Duration("total_uptime", time.Since(start)))
	return runErr
}

func (l *Lifecycle) shutdown() {
	shutdownStart := time.Now()
	for i := len(l.services) - 1; i >= 0; i-- {
		ns := l.services[i]
		svcStart := time.Now()
		l.logger.Info("stopping service", zap.String("service", ns.name))
		ns.service.Stop()
		l.logger.Info("service stopped",
			zap.String("service", ns.name),
			zap.Duration("elapsed", time.Since(svcStart)),
		)
	}
	l.logger.Info("all services stopped", zap.Duration("shutdown_elapsed", time.Since(shutdownStart)))
}
