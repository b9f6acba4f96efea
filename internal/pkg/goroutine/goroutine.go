package goroutine

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"github.com/shandysiswandi/gocontact/internal/pkg/stacktrace"
	"go.uber.org/atomic"
)

// DefaultMaxGoroutine is used when NewManager receives a non-positive limit.
const DefaultMaxGoroutine int = 100

// Manager runs functions in goroutines with a configurable concurrency limit.
//
// It collects errors returned by tasks and can be waited on using Wait.
type Manager struct {
	mu      sync.Mutex
	errs    []error
	wg      sync.WaitGroup
	sema    chan struct{}
	stateMu sync.RWMutex
	closed  bool
	running atomic.Int64
	dropped atomic.Int64
}

// NewManager creates a new Manager with the provided maximum concurrency.
func NewManager(maxGoroutine int) *Manager {
	if maxGoroutine < 1 {
		maxGoroutine = runtime.NumCPU() * DefaultMaxGoroutine
	}

	return &Manager{
		sema: make(chan struct{}, maxGoroutine),
	}
}

// Go schedules a function to run in a goroutine if capacity is available.
//
// If the manager is closed or already at its concurrency limit, the function is
// not run and a warning is logged.
func (g *Manager) Go(pCtx context.Context, f func(ctx context.Context) error) {
	if g == nil {
		return
	}

	g.stateMu.RLock()
	if g.closed {
		g.stateMu.RUnlock()
		g.dropped.Inc()
		slog.WarnContext(pCtx, "goroutine manager is closed, skipping new goroutine")
		return
	}

	select {
	case g.sema <- struct{}{}:
		g.running.Inc()
		g.wg.Go(func() {
			g.stateMu.RUnlock()
			defer func() {
				<-g.sema
				g.running.Dec()

				if rvr := recover(); rvr != nil {
					stack := debug.Stack()
					if paths := stacktrace.InternalPaths(stack); len(paths) > 0 {
						slog.ErrorContext(pCtx, "panic occurred in goroutine", "because", rvr, "stack", paths)
					} else {
						slog.ErrorContext(pCtx, "panic occurred in goroutine", "because", rvr, "stack", string(stack))
					}
				}
			}()

			if err := pCtx.Err(); err != nil {
				slog.WarnContext(pCtx, "goroutine canceled", "because", err)
				return
			}

			if err := f(pCtx); err != nil {
				g.mu.Lock()
				g.errs = append(g.errs, err)
				g.mu.Unlock()
			}
		})

	default:
		g.stateMu.RUnlock()
		g.dropped.Inc()
		slog.WarnContext(pCtx, "maximum goroutine limit reached, failed to start new goroutine")
	}
}

// Every runs f immediately and then on each tick of interval until ctx is done.
// An error from f is logged and does not stop the loop.
func (g *Manager) Every(pCtx context.Context, name string, interval time.Duration, f func(ctx context.Context) error) {
	if interval <= 0 {
		slog.WarnContext(pCtx, "periodic task not started, interval must be positive", "task", name)
		return
	}

	g.Go(pCtx, func(ctx context.Context) error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			if err := f(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.ErrorContext(ctx, "periodic task failed", "task", name, "error", err)
			}

			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}
	})
}

// Running reports how many goroutines are currently executing.
func (g *Manager) Running() int64 {
	return g.running.Load()
}

// Dropped reports how many functions were refused because of the limit or closure.
func (g *Manager) Dropped() int64 {
	return g.dropped.Load()
}

// Wait closes the manager, blocks until all scheduled goroutines finish and
// returns any collected errors.
func (g *Manager) Wait() error {
	if g == nil {
		return nil
	}

	g.stateMu.Lock()
	g.closed = true
	g.stateMu.Unlock()

	g.wg.Wait()

	g.mu.Lock()
	defer g.mu.Unlock()

	return errors.Join(g.errs...)
}
