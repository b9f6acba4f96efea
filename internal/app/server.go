package app

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

// Start binds the configured address and serves until SIGINT, SIGTERM or
// SIGHUP. The returned channel is closed once a signal arrives; the caller
// then runs Stop.
func (a *App) Start() <-chan struct{} {
	l, err := net.Listen("tcp", a.httpServer.Addr)
	if err != nil {
		slog.Error("failed to bind http server", "address", a.httpServer.Addr, "error", err)
		os.Exit(1)
	}

	slog.Info("http server listening", "address", l.Addr().String())
	serveErr := a.Serve(l)

	done := make(chan struct{})
	go func() {
		sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
		defer stop()

		select {
		case <-sigCtx.Done():
			slog.Info("shutdown signal received")
		case err := <-serveErr:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("http server stopped unexpectedly", "error", err)
			}
		}

		a.cancel()
		close(done)
	}()

	return done
}

// Serve runs the HTTP server on l. The channel yields the result of
// http.Server.Serve.
func (a *App) Serve(l net.Listener) <-chan error {
	errc := make(chan error, 1)
	go func() {
		errc <- a.httpServer.Serve(l)
		close(errc)
	}()
	return errc
}

// Stop drains HTTP connections, waits for background jobs and consumers to
// exit, then runs the closers in the order initClosers lists them.
func (a *App) Stop(ctx context.Context) {
	a.cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to shut down http server", "error", err)
	}

	if err := a.goroutine.Wait(); err != nil {
		slog.ErrorContext(ctx, "background goroutine failed", "error", err)
	}
	slog.InfoContext(ctx, "background goroutines finished",
		"running", a.goroutine.Running(), "dropped", a.goroutine.Dropped())

	for _, c := range a.closers {
		if err := c.fn(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to close resource", "name", c.name, "error", err)
		}
	}
}
