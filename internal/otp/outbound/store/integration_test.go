package store

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/gocontact/internal/pkg/instrument"
	"github.com/shandysiswandi/gocontact/internal/pkg/migrate"
	"github.com/shandysiswandi/gocontact/migrations"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func skipIntegration(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test skipped in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
}

func TestPostgres_Integration(t *testing.T) {
	skipIntegration(t)
	ctx := context.Background()

	ctr, err := tcpostgres.Run(ctx, "postgres:17-alpine",
		tcpostgres.WithDatabase("gocontact"),
		tcpostgres.WithUsername("gocontact"),
		tcpostgres.WithPassword("gocontact"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = migrate.RunPgx(ctx, pool, migrations.Postgres, migrate.Metadata{AppVersion: "test"})
	require.NoError(t, err)

	runStoreSuite(t, func(t *testing.T) Store {
		_, err := pool.Exec(ctx, `TRUNCATE otp_records, otp_issuances`)
		require.NoError(t, err)
		return NewPostgres(pool, instrument.NewNoop())
	}, suiteOptions{reaps: true})
}

func TestRedis_Integration(t *testing.T) {
	skipIntegration(t)
	ctx := context.Background()

	ctr, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	uri, err := ctr.ConnectionString(ctx)
	require.NoError(t, err)
	opt, err := redis.ParseURL(uri)
	require.NoError(t, err)

	client := redis.NewClient(opt)
	t.Cleanup(func() { _ = client.Close() })

	runStoreSuite(t, func(t *testing.T) Store {
		require.NoError(t, client.FlushDB(ctx).Err())
		return NewRedis(client, &seqID{}, instrument.NewNoop())
	}, suiteOptions{reaps: false})
}
