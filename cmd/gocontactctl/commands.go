package main

import (
	"fmt"
	"time"

	"github.com/shandysiswandi/gocontact/internal/otp/outbound/store"
	"github.com/shandysiswandi/gocontact/internal/otp/usecase"
	"github.com/shandysiswandi/gocontact/internal/pkg/migrate"
	"github.com/shandysiswandi/gocontact/migrations"
	"github.com/urfave/cli/v2"
)

func migrateAction(cCtx *cli.Context) error {
	rt, err := load(cCtx)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := cCtx.Context
	meta := migrate.Metadata{AppVersion: version, Timestamp: time.Now()}

	var applied []migrate.Migration
	switch driver := rt.driver(cCtx.String("driver")); driver {
	case store.DriverPostgres:
		pool, err := rt.openPostgres(ctx)
		if err != nil {
			return err
		}
		applied, err = migrate.RunPgx(ctx, pool, migrations.Postgres, meta)
		if err != nil {
			return fmt.Errorf("migrate postgres: %w", err)
		}
	case store.DriverSQLite:
		db, err := rt.openSQLite(ctx)
		if err != nil {
			return err
		}
		applied, err = migrate.RunSQL(ctx, db, migrations.SQLite, meta)
		if err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	default:
		return fmt.Errorf("driver %q has no migrations", driver)
	}

	for _, m := range applied {
		fmt.Fprintf(cCtx.App.Writer, "applied %03d %s\n", m.Sequence, m.Filename)
	}
	fmt.Fprintf(cCtx.App.Writer, "%d migration(s) applied\n", len(applied))
	return nil
}

func sweepAction(cCtx *cli.Context) error {
	rt, err := load(cCtx)
	if err != nil {
		return err
	}
	defer rt.Close()

	uc, err := rt.usecase(cCtx.Context)
	if err != nil {
		return err
	}

	n, err := uc.Sweep(cCtx.Context)
	if err != nil {
		return err
	}

	fmt.Fprintf(cCtx.App.Writer, "deleted %d expired record(s)\n", n)
	return nil
}

func issueAction(cCtx *cli.Context) error {
	rt, err := load(cCtx)
	if err != nil {
		return err
	}
	defer rt.Close()

	uc, err := rt.usecase(cCtx.Context)
	if err != nil {
		return err
	}

	out, err := uc.Issue(cCtx.Context, usecase.IssueInput{Email: cCtx.String("email")})
	if err != nil {
		return err
	}

	fmt.Fprintf(cCtx.App.Writer, "%s expires_at=%s\n", usecase.MsgSent, out.ExpiresAt.UTC().Format(time.RFC3339))
	return nil
}

func verifyAction(cCtx *cli.Context) error {
	rt, err := load(cCtx)
	if err != nil {
		return err
	}
	defer rt.Close()

	uc, err := rt.usecase(cCtx.Context)
	if err != nil {
		return err
	}

	out, err := uc.Verify(cCtx.Context, usecase.VerifyInput{
		Email: cCtx.String("email"),
		OTP:   cCtx.String("otp"),
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cCtx.App.Writer, "verified %s\n", out.Email)
	return nil
}
