package app

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/sethvargo/go-retry"
	otpstore "github.com/shandysiswandi/gocontact/internal/otp/outbound/store"
	"github.com/shandysiswandi/gocontact/internal/pkg/clock"
	"github.com/shandysiswandi/gocontact/internal/pkg/config"
	"github.com/shandysiswandi/gocontact/internal/pkg/goroutine"
	"github.com/shandysiswandi/gocontact/internal/pkg/hash"
	"github.com/shandysiswandi/gocontact/internal/pkg/idempotency"
	"github.com/shandysiswandi/gocontact/internal/pkg/instrument"
	"github.com/shandysiswandi/gocontact/internal/pkg/mail"
	"github.com/shandysiswandi/gocontact/internal/pkg/messaging"
	"github.com/shandysiswandi/gocontact/internal/pkg/migrate"
	"github.com/shandysiswandi/gocontact/internal/pkg/router"
	"github.com/shandysiswandi/gocontact/internal/pkg/sqlite"
	"github.com/shandysiswandi/gocontact/internal/pkg/uid"
	"github.com/shandysiswandi/gocontact/internal/pkg/validator"
	"github.com/shandysiswandi/gocontact/migrations"
)

func (a *App) initConfig() {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "/config/config.yaml"
		if os.Getenv("LOCAL") == "true" {
			path = "./config/config.yaml"
		}
	}

	cfg, err := config.NewViper(path)
	if err != nil {
		slog.Error("failed to init config", "error", err)
		os.Exit(1)
	}

	//nolint:errcheck,gosec // ignore error
	os.Setenv("TZ", cfg.GetString("app.tz"))

	a.config = cfg
}

func (a *App) initInstrument() {
	ins, err := instrument.New(context.Background(), &instrument.Config{
		Enabled:          a.config.GetBool("instrument.enabled"),
		ServiceName:      a.config.GetString("instrument.service_name"),
		ServiceVersion:   a.config.GetString("instrument.service_version"),
		Environment:      a.config.GetString("instrument.env"),
		OTLPEndpoint:     a.config.GetString("instrument.otlp_endpoint"),
		OTLPSecure:       a.config.GetBool("instrument.otlp_secure"),
		TraceSampleRatio: float64(a.config.GetInt("instrument.trace_sample_percent")) / 100,
		MetricsInterval:  a.config.GetSecond("instrument.metric_interval_seconds"),
		MaskFields:       a.config.GetArray("instrument.log_mask_fields"),
	})
	if err != nil {
		slog.Error("failed to init instrumentation", "error", err)
		os.Exit(1)
	}
	a.ins = ins
}

func (a *App) initLibraries() {
	a.clock = clock.New()
	a.uuid = uid.NewUUID()
	a.goroutine = goroutine.NewManager(a.config.GetInt("app.server.max_goroutine"))

	h, err := hash.NewFromAlgorithm(a.config.GetString("hash.algorithm"), a.config.GetString("hash.hmac.secret"))
	if err != nil {
		slog.Error("failed to init otp hash", "error", err)
		os.Exit(1)
	}
	a.hash = h

	validator, err := validator.NewV10Validator()
	if err != nil {
		slog.Error("failed to init validation v10 validator", "error", err)
		os.Exit(1)
	}
	a.validator = validator

	snow, err := uid.NewSnowflake()
	if err != nil {
		slog.Error("failed to init uid number snowflake", "error", err)
		os.Exit(1)
	}
	a.uid = snow
}

func (a *App) storeDriver() string {
	return strings.ToLower(strings.TrimSpace(a.config.GetString("modules.otp.store.driver")))
}

func (a *App) needPostgres() bool {
	return a.storeDriver() == otpstore.DriverPostgres || a.config.GetBool("modules.contact.enabled")
}

func (a *App) needRedis() bool {
	return a.storeDriver() == otpstore.DriverRedis || a.config.GetBool("modules.contact.idempotency.enabled")
}

// ping retries fn with capped exponential backoff until it succeeds or the
// attempts configured by app.startup.ping_retries run out.
func (a *App) ping(name string, fn func(ctx context.Context) error) error {
	retries := a.config.GetInt("app.startup.ping_retries")
	if retries <= 0 {
		retries = 5
	}

	b := retry.NewExponential(200 * time.Millisecond)
	b = retry.WithCappedDuration(3*time.Second, b)
	b = retry.WithMaxRetries(uint64(retries), b)

	return retry.Do(a.ctx, b, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		if err := fn(pingCtx); err != nil {
			slog.WarnContext(ctx, "ping failed, retrying", "resource", name, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
}

func (a *App) initDatabase() {
	if !a.needPostgres() {
		return
	}

	config, err := pgxpool.ParseConfig(a.config.GetString("database.url"))
	if err != nil {
		slog.Error("failed to parse DB connection string.", "error", err)
		os.Exit(1)
	}

	config.MaxConns = int32(a.config.GetInt("database.pool.max_conns"))
	config.MinConns = int32(a.config.GetInt("database.pool.min_conns"))
	config.MaxConnLifetime = a.config.GetSecond("database.pool.max_conn_lifetime_seconds")
	config.MaxConnIdleTime = a.config.GetSecond("database.pool.max_conn_idle_seconds")
	config.HealthCheckPeriod = a.config.GetSecond("database.pool.health_check_period_seconds")

	pool, err := pgxpool.NewWithConfig(a.ctx, config)
	if err != nil {
		slog.Error("failed to create DB connection pool", "error", err)
		os.Exit(1)
	}

	if err := a.ping("postgres", pool.Ping); err != nil {
		slog.Error("failed to ping DB", "error", err)
		os.Exit(1)
	}

	a.dbConn = pool
}

func (a *App) initCache() {
	if !a.needRedis() {
		return
	}

	opt, err := redis.ParseURL(a.config.GetString("redis.url"))
	if err != nil {
		slog.Error("failed to parse redis url", "error", err)
		os.Exit(1)
	}

	rdb := redis.NewClient(opt)

	if err := a.ping("redis", func(ctx context.Context) error { return rdb.Ping(ctx).Err() }); err != nil {
		slog.Error("failed to init redis", "error", err)
		os.Exit(1)
	}

	a.cacheConn = rdb
	if a.config.GetBool("modules.contact.idempotency.enabled") {
		a.idemp = idempotency.New(rdb, a.config.GetString("modules.contact.idempotency.prefix"))
	}
}

func (a *App) initSQLite() {
	if a.storeDriver() != otpstore.DriverSQLite {
		return
	}

	db, err := sqlite.Open(a.config.GetString("sqlite.dsn"))
	if err != nil {
		slog.Error("failed to open sqlite", "error", err)
		os.Exit(1)
	}

	if err := a.ping("sqlite", db.PingContext); err != nil {
		slog.Error("failed to ping sqlite", "error", err)
		os.Exit(1)
	}

	a.sqliteDB = db
}

func (a *App) initMigrations() {
	if !a.config.GetBool("database.auto_migrate") {
		return
	}

	meta := migrate.Metadata{AppVersion: a.config.GetString("instrument.service_version"), Timestamp: a.clock.Now()}

	if a.dbConn != nil {
		applied, err := migrate.RunPgx(a.ctx, a.dbConn, migrations.Postgres, meta)
		if err != nil {
			slog.Error("failed to migrate postgres", "error", err)
			os.Exit(1)
		}
		slog.Info("postgres migrations applied", "count", len(applied))
	}

	if a.sqliteDB != nil {
		applied, err := migrate.RunSQL(a.ctx, a.sqliteDB, migrations.SQLite, meta)
		if err != nil {
			slog.Error("failed to migrate sqlite", "error", err)
			os.Exit(1)
		}
		slog.Info("sqlite migrations applied", "count", len(applied))
	}
}

func (a *App) initOTPStore() {
	store, err := otpstore.NewFromDriver(a.storeDriver(), otpstore.Options{
		Postgres:   a.pgConn(),
		Redis:      a.redisConn(),
		SQLite:     a.sqliteDB,
		UID:        a.uid,
		Instrument: a.ins,
	})
	if err != nil {
		slog.Error("failed to init otp store", "error", err, "driver", a.storeDriver())
		os.Exit(1)
	}

	a.otpStore = store
}

// pgConn and redisConn avoid handing a typed nil to interface fields.
func (a *App) pgConn() otpstore.PgxConn {
	if a.dbConn == nil {
		return nil
	}
	return a.dbConn
}

func (a *App) redisConn() redis.UniversalClient {
	if a.cacheConn == nil {
		return nil
	}
	return a.cacheConn
}

func (a *App) initMail() {
	from := a.config.GetString("mail.from")

	switch strings.ToLower(strings.TrimSpace(a.config.GetString("mail.driver"))) {
	case "log":
		a.mail = mail.NewLog(slog.Default(), from)
	case "memory":
		a.mail = mail.NewMemory(from)
	default:
		client, err := mail.NewSMTP(mail.SMTPConfig{
			Host:     a.config.GetString("mail.host"),
			Port:     a.config.GetInt("mail.port"),
			Username: a.config.GetString("mail.username"),
			Password: a.config.GetString("mail.password"),
			From:     from,
			Timeout:  a.config.GetSecond("mail.timeout_seconds"),
		})
		if err != nil {
			slog.Error("failed to init mail", "error", err)
			os.Exit(1)
		}
		a.mail = client
	}
}

func (a *App) initMessaging() {
	driver := a.config.GetString("messaging.driver")
	client, err := messaging.NewFromDriver(driver, messaging.FactoryOptions{
		NSQ: messaging.NSQConfig{
			ProducerAddr:         a.config.GetString("messaging.nsq.producer_addr"),
			ConsumerNSQDAddrs:    a.config.GetArray("messaging.nsq.consumer_nsqd_addrs"),
			ConsumerLookupdAddrs: a.config.GetArray("messaging.nsq.consumer_lookupd_addrs"),
			MaxInFlight:          a.config.GetInt("messaging.nsq.max_in_flight"),
		},
		Kafka: messaging.KafkaConfig{
			Brokers:  a.config.GetArray("messaging.kafka.brokers"),
			ClientID: a.config.GetString("messaging.kafka.client_id"),
		},
		NATS: messaging.NATSConfig{
			URL:  a.config.GetString("messaging.nats.url"),
			Name: a.config.GetString("messaging.nats.name"),
			Options: []nats.Option{
				nats.MaxReconnects(a.config.GetInt("messaging.nats.max_reconnects")),
				nats.Timeout(a.config.GetSecond("messaging.nats.timeout_seconds")),
				nats.ReconnectWait(a.config.GetSecond("messaging.nats.reconnect_wait_seconds")),
				nats.RetryOnFailedConnect(a.config.GetBool("messaging.nats.retry_on_failed_connect")),
			},
		},
	})
	if err != nil {
		slog.Error("failed to init messaging", "error", err, "driver", driver)
		os.Exit(1)
	}

	a.messaging = client
}

func (a *App) initHTTPServer() {
	a.router = router.NewRouter(router.Config{
		Config:     a.config,
		UUID:       a.uuid,
		Instrument: a.ins,
	})
	a.registerHealth()
	a.registerDocs()

	routerWithCORS := cors.New(cors.Options{
		AllowedOrigins: a.config.GetArray("app.server.cors"),
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", "Idempotency-Key", router.HeaderCorrelationID},
		ExposedHeaders: []string{router.HeaderCorrelationID},
	}).Handler(a.router)

	a.httpServer = &http.Server{
		Addr:              a.config.GetString("app.server.http.address"),
		Handler:           routerWithCORS,
		ReadTimeout:       a.config.GetSecond("app.server.http.read_timeout_seconds"),
		ReadHeaderTimeout: a.config.GetSecond("app.server.http.read_header_timeout_seconds"),
		WriteTimeout:      a.config.GetSecond("app.server.http.write_timeout_seconds"),
		IdleTimeout:       a.config.GetSecond("app.server.http.idle_timeout_seconds"),
	}
}

func (a *App) initClosers() {
	a.closers = []struct {
		name string
		fn   func(context.Context) error
	}{
		{
			name: "Instrument",
			fn: func(ctx context.Context) error {
				return a.ins.Shutdown(ctx)
			},
		},
		{
			name: "Messaging",
			fn: func(context.Context) error {
				return a.messaging.Close()
			},
		},
		{
			name: "Mail",
			fn: func(context.Context) error {
				return a.mail.Close()
			},
		},
		{
			name: "Redis",
			fn: func(context.Context) error {
				if a.cacheConn == nil {
					return nil
				}
				return a.cacheConn.Close()
			},
		},
		{
			name: "SQLite",
			fn: func(context.Context) error {
				if a.sqliteDB == nil {
					return nil
				}
				return a.sqliteDB.Close()
			},
		},
		{
			name: "Database",
			fn: func(context.Context) error {
				if a.dbConn != nil {
					a.dbConn.Close()
				}

				return nil
			},
		},
		{
			name: "Config",
			fn: func(context.Context) error {
				return a.config.Close()
			},
		},
	}
}
