package router

import (
	"net/http"

	"github.com/shandysiswandi/gocontact/internal/pkg/config"
)

const defaultMaxBodyBytes int64 = 64 * 1024

func middlewareBodyLimit(cfg config.Config) Middleware {
	limit := defaultMaxBodyBytes
	if cfg != nil {
		if v := cfg.GetInt64("http.max_body_bytes"); v > 0 {
			limit = v
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				writeJSON(w, errorResponse{Message: "Request body too large"}, http.StatusRequestEntityTooLarge)
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
