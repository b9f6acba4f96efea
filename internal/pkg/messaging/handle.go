package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/shandysiswandi/gocontact/internal/pkg/stacktrace"
)

// dispatch runs handler for one message and settles it when autoAck is set and the
// handler did not already respond. The handler error is returned unchanged.
func dispatch(ctx context.Context, kind string, handler Handler, msg *message, autoAck bool) error {
	herr := callHandlerWithRecover(ctx, kind, func() error {
		return handler(ctx, msg)
	})

	if msg.responded.Load() || !autoAck {
		return herr
	}

	if herr == nil {
		return msg.Ack(ctx)
	}
	if err := msg.Nack(ctx); err != nil {
		return errors.Join(herr, err)
	}
	return herr
}

func callHandlerWithRecover(ctx context.Context, kind string, fn func() error) (err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			stack := debug.Stack()
			if paths := stacktrace.InternalPaths(stack); len(paths) > 0 {
				slog.ErrorContext(ctx, "panic in messaging handler", "kind", kind, "panic", rvr, "stack", paths)
			} else {
				slog.ErrorContext(ctx, "panic in messaging handler", "kind", kind, "panic", rvr, "stack", string(stack))
			}
			err = fmt.Errorf("messaging: panic in %s handler: %v", kind, rvr)
		}
	}()

	return fn()
}
