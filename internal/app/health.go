package app

import (
	"context"
	"net/http"
	"time"

	"github.com/shandysiswandi/gocontact/docs"
	"github.com/shandysiswandi/gocontact/internal/pkg/goerror"
	"github.com/shandysiswandi/gocontact/internal/pkg/router"
)

type healthResponse struct {
	Components map[string]string `json:"components"`
}

func (healthResponse) Message() string { return "OK" }

func (h healthResponse) Data() any { return h }

// health pings every opened resource; any failure turns the response into a 500.
func (a *App) health(r *router.Request) (any, error) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]func(context.Context) error{}
	if a.dbConn != nil {
		checks["postgres"] = a.dbConn.Ping
	}
	if a.cacheConn != nil {
		checks["redis"] = func(ctx context.Context) error { return a.cacheConn.Ping(ctx).Err() }
	}
	if a.sqliteDB != nil {
		checks["sqlite"] = a.sqliteDB.PingContext
	}

	resp := healthResponse{Components: make(map[string]string, len(checks))}
	var failed error
	for name, check := range checks {
		if err := check(ctx); err != nil {
			resp.Components[name] = "down"
			failed = err
			continue
		}
		resp.Components[name] = "up"
	}

	if failed != nil {
		return nil, goerror.NewServerMessage(failed, "Service unavailable")
	}

	return resp, nil
}

func (a *App) registerHealth() {
	a.router.GET("/health", a.health)
}

func (a *App) registerDocs() {
	if !a.config.GetBool("app.server.swagger") {
		return
	}

	a.router.Raw(http.MethodGet, "/swagger/doc.json", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		doc, err := docs.JSON()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(doc))
	}))
}
