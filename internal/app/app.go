package app

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	otpstore "github.com/shandysiswandi/gocontact/internal/otp/outbound/store"
	"github.com/shandysiswandi/gocontact/internal/pkg/clock"
	"github.com/shandysiswandi/gocontact/internal/pkg/config"
	"github.com/shandysiswandi/gocontact/internal/pkg/goroutine"
	"github.com/shandysiswandi/gocontact/internal/pkg/hash"
	"github.com/shandysiswandi/gocontact/internal/pkg/idempotency"
	"github.com/shandysiswandi/gocontact/internal/pkg/instrument"
	"github.com/shandysiswandi/gocontact/internal/pkg/mail"
	"github.com/shandysiswandi/gocontact/internal/pkg/messaging"
	"github.com/shandysiswandi/gocontact/internal/pkg/router"
	"github.com/shandysiswandi/gocontact/internal/pkg/uid"
	"github.com/shandysiswandi/gocontact/internal/pkg/validator"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	hash      hash.Hash
	uid       uid.NumberID
	uuid      uid.StringID

	// resources, nil when no configured driver needs them
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	sqliteDB  *sql.DB
	idemp     idempotency.Idempotency
	mail      mail.Mail
	messaging messaging.Messaging
	otpStore  otpstore.Store

	// server
	router     *router.Router
	httpServer *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initDatabase()
	app.initCache()
	app.initSQLite()
	app.initMigrations()
	app.initOTPStore()
	app.initMail()
	app.initMessaging()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
