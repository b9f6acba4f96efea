package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/gocontact/internal/otp"
	otpstore "github.com/shandysiswandi/gocontact/internal/otp/outbound/store"
	"github.com/shandysiswandi/gocontact/internal/otp/usecase"
	"github.com/shandysiswandi/gocontact/internal/pkg/clock"
	"github.com/shandysiswandi/gocontact/internal/pkg/config"
	"github.com/shandysiswandi/gocontact/internal/pkg/hash"
	"github.com/shandysiswandi/gocontact/internal/pkg/instrument"
	"github.com/shandysiswandi/gocontact/internal/pkg/mail"
	"github.com/shandysiswandi/gocontact/internal/pkg/sqlite"
	"github.com/shandysiswandi/gocontact/internal/pkg/uid"
	"github.com/shandysiswandi/gocontact/internal/pkg/validator"
	"github.com/urfave/cli/v2"
)

// runtime holds the connections opened for a single command.
type runtime struct {
	cfg    config.Config
	logger *slog.Logger

	pool   *pgxpool.Pool
	rdb    *redis.Client
	sqlite *sql.DB

	closers []func() error
}

func load(cCtx *cli.Context) (*runtime, error) {
	cfg, err := config.NewViper(cCtx.String("config"))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return &runtime{
		cfg:     cfg,
		logger:  slog.New(slog.NewTextHandler(cCtx.App.ErrWriter, nil)),
		closers: []func() error{cfg.Close},
	}, nil
}

func (r *runtime) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		errs = append(errs, r.closers[i]())
	}
	return errors.Join(errs...)
}

func (r *runtime) driver(override string) string {
	if override != "" {
		return strings.ToLower(strings.TrimSpace(override))
	}
	return strings.ToLower(strings.TrimSpace(r.cfg.GetString("modules.otp.store.driver")))
}

func (r *runtime) openPostgres(ctx context.Context) (*pgxpool.Pool, error) {
	if r.pool != nil {
		return r.pool, nil
	}

	pool, err := pgxpool.New(ctx, r.cfg.GetString("database.url"))
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	r.pool = pool
	r.closers = append(r.closers, func() error { pool.Close(); return nil })
	return pool, nil
}

func (r *runtime) openRedis(ctx context.Context) (*redis.Client, error) {
	if r.rdb != nil {
		return r.rdb, nil
	}

	opt, err := redis.ParseURL(r.cfg.GetString("redis.url"))
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	r.rdb = rdb
	r.closers = append(r.closers, rdb.Close)
	return rdb, nil
}

func (r *runtime) openSQLite(ctx context.Context) (*sql.DB, error) {
	if r.sqlite != nil {
		return r.sqlite, nil
	}

	db, err := sqlite.Open(r.cfg.GetString("sqlite.dsn"))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	r.sqlite = db
	r.closers = append(r.closers, db.Close)
	return db, nil
}

func (r *runtime) store(ctx context.Context) (otpstore.Store, error) {
	opts := otpstore.Options{Instrument: instrument.NewNoop()}

	switch driver := r.driver(""); driver {
	case otpstore.DriverPostgres:
		pool, err := r.openPostgres(ctx)
		if err != nil {
			return nil, err
		}
		opts.Postgres = pool
	case otpstore.DriverRedis:
		rdb, err := r.openRedis(ctx)
		if err != nil {
			return nil, err
		}
		snow, err := uid.NewSnowflake()
		if err != nil {
			return nil, err
		}
		opts.Redis = rdb
		opts.UID = snow
	case otpstore.DriverSQLite:
		db, err := r.openSQLite(ctx)
		if err != nil {
			return nil, err
		}
		opts.SQLite = db
	}

	return otpstore.NewFromDriver(r.driver(""), opts)
}

// usecase builds the OTP usecase with a mailer that writes to the command log.
func (r *runtime) usecase(ctx context.Context) (*usecase.Usecase, error) {
	st, err := r.store(ctx)
	if err != nil {
		return nil, err
	}

	h, err := hash.NewFromAlgorithm(r.cfg.GetString("hash.algorithm"), r.cfg.GetString("hash.hmac.secret"))
	if err != nil {
		return nil, err
	}

	v, err := validator.NewV10Validator()
	if err != nil {
		return nil, err
	}

	from := r.cfg.GetString("mail.from")
	if from == "" {
		from = "gocontactctl@localhost"
	}

	return otp.New(otp.Dependency{
		Store:      st,
		Mail:       mail.NewLog(r.logger, from),
		Hash:       h,
		Config:     r.cfg,
		Instrument: instrument.NewNoop(),
		Clock:      clock.New(),
		Validator:  v,
	})
}
