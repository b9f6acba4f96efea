package router

import (
	"net"
	"net/http"
	"strings"

	"github.com/shandysiswandi/gocontact/internal/pkg/config"
)

// middlewareRealIP rewrites RemoteAddr to the client address. Forwarding headers are
// honoured only when http.trust_proxy_headers is set, since any client can send them.
func middlewareRealIP(cfg config.Config) Middleware {
	trusted := cfg != nil && cfg.GetBool("http.trust_proxy_headers")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rip := realIP(r, trusted); rip != "" {
				r.RemoteAddr = rip
			}
			next.ServeHTTP(w, r)
		})
	}
}

func realIP(r *http.Request, trustHeaders bool) string {
	var ip string

	if trustHeaders {
		if tcip := r.Header.Get("True-Client-IP"); tcip != "" {
			ip = tcip
		} else if xrip := r.Header.Get("X-Real-IP"); xrip != "" {
			ip = xrip
		} else if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			ip, _, _ = strings.Cut(xff, ",")
		}
		ip = strings.TrimSpace(ip)
	}

	if ip == "" || net.ParseIP(ip) == nil {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err == nil && net.ParseIP(host) != nil {
			return host
		}
		return ""
	}
	return ip
}
