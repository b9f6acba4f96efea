package inbound

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/gocontact/internal/pkg/config"
	"github.com/shandysiswandi/gocontact/internal/pkg/goroutine"
)

const defaultReaperInterval = time.Minute

type sweeper interface {
	Sweep(ctx context.Context) (int64, error)
}

// RegisterJob starts the expired-record reaper when modules.otp.reaper.enabled
// is set. It stops with ctx.
func RegisterJob(ctx context.Context, cfg config.Config, routine *goroutine.Manager, uc sweeper) bool {
	if !cfg.GetBool("modules.otp.reaper.enabled") {
		return false
	}

	interval := cfg.GetSecond("modules.otp.reaper.interval_seconds")
	if interval <= 0 {
		interval = defaultReaperInterval
	}

	slog.InfoContext(ctx, "Running job for otp reaper", "interval", interval.String())
	routine.Every(ctx, "otp.reaper", interval, func(ctx context.Context) error {
		_, err := uc.Sweep(ctx)
		return err
	})

	return true
}
