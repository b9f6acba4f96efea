package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/gocontact/internal/pkg/goerror"
)

// Sweep removes every record that expired before now.
func (s *Usecase) Sweep(ctx context.Context) (int64, error) {
	ctx, span := s.startSpan(ctx, "Sweep")
	defer span.End()

	n, err := s.store.DeleteExpired(ctx, s.clock.Now())
	if err != nil {
		slog.ErrorContext(ctx, "failed to store delete expired otp records", "error", err)
		return 0, goerror.NewServer(err)
	}

	if n > 0 {
		s.counters.swept.Add(ctx, n)
		slog.InfoContext(ctx, "expired otp records removed", "count", n)
	}

	return n, nil
}
