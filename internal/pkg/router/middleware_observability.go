package router

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/julienschmidt/httprouter"
	"github.com/shandysiswandi/gocontact/internal/pkg/config"
	"github.com/shandysiswandi/gocontact/internal/pkg/instrument"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// maxLoggedBodyBytes caps how much of each request and response body is
// copied into the access log.
const maxLoggedBodyBytes = 16 * 1024

const masked = "***"

// recorder captures the status, size and a capped copy of the response.
type recorder struct {
	http.ResponseWriter
	status int
	size   int
	body   bytes.Buffer
	capped bool
	err    error
}

func (w *recorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *recorder) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}

	if room := maxLoggedBodyBytes - w.body.Len(); room > 0 {
		w.body.Write(p[:min(room, len(p))])
		w.capped = w.capped || len(p) > room
	} else if len(p) > 0 {
		w.capped = true
	}

	n, err := w.ResponseWriter.Write(p)
	w.size += n
	return n, err
}

// SetError lets the envelope writer hand the handler error to the span.
func (w *recorder) SetError(err error) { w.err = err }

func (w *recorder) statusCode() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// matchedRoutePath is the registered pattern, e.g. /api/v1/otp/send, or the
// raw path when no route matched.
func matchedRoutePath(r *http.Request) string {
	if p := httprouter.ParamsFromContext(r.Context()).MatchedRoutePath(); p != "" {
		return p
	}
	return r.URL.Path
}

func maskHeaders(h http.Header, keys map[string]struct{}) http.Header {
	if len(keys) == 0 {
		return h
	}
	out := h.Clone()
	for k := range out {
		if _, ok := keys[strings.ToLower(k)]; ok {
			out.Set(k, masked)
		}
	}
	return out
}

// peekBody reads up to maxLoggedBodyBytes and puts them back in front of
// the remaining body so the handler still sees the whole stream.
func peekBody(r *http.Request) []byte {
	if r.Body == nil {
		return nil
	}
	//nolint:errcheck // logging only
	head, _ := io.ReadAll(io.LimitReader(r.Body, maxLoggedBodyBytes))
	r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(head), r.Body))
	return head
}

func loggableBody(body []byte, capped bool, keys map[string]struct{}) any {
	if len(body) == 0 {
		return nil
	}

	var out any
	var decoded any
	switch {
	case json.Unmarshal(body, &decoded) == nil:
		out = instrument.MaskData(decoded, keys)
	case utf8.Valid(body):
		out = string(body)
	default:
		out = "<binary body omitted>"
	}

	if capped {
		return map[string]any{"body": out, "truncated": true}
	}
	return out
}

func middlewareObservability(cfg config.Config, ins instrument.Instrumentation) Middleware {
	var keys map[string]struct{}
	if cfg != nil {
		keys = instrument.MaskKeys(cfg.GetArray("instrument.log_mask_fields"))
	}

	tracer := ins.Tracer("http.server")
	meter := ins.Meter("http.server")

	requests, err := meter.Int64Counter("http.server.requests", metric.WithDescription("Number of HTTP requests received"))
	if err != nil {
		slog.Error("failed to create http request counter", "error", err)
	}
	duration, err := meter.Float64Histogram("http.server.duration", metric.WithDescription("HTTP request duration in milliseconds"), metric.WithUnit("ms"))
	if err != nil {
		slog.Error("failed to create http duration histogram", "error", err)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			route := matchedRoutePath(r)

			ctx, span := tracer.Start(r.Context(), r.Method+" "+route, trace.WithAttributes(
				semconv.HTTPRequestMethodKey.String(r.Method),
				semconv.HTTPRouteKey.String(route),
			))
			defer span.End()

			reqBody := peekBody(r)
			slog.InfoContext(ctx, "request received",
				"method", r.Method,
				"path", route,
				"uri", r.RequestURI,
				"headers", maskHeaders(r.Header, keys),
				"body", loggableBody(reqBody, len(reqBody) == maxLoggedBodyBytes, keys),
			)

			rec := &recorder{ResponseWriter: w}
			next.ServeHTTP(rec, r.WithContext(ctx))

			status := rec.statusCode()
			elapsed := time.Since(start)
			attrs := []attribute.KeyValue{
				semconv.HTTPRequestMethodKey.String(r.Method),
				semconv.HTTPRouteKey.String(route),
				semconv.HTTPResponseStatusCodeKey.Int(status),
			}

			if rec.err != nil {
				span.RecordError(rec.err)
			}
			switch {
			case status < http.StatusInternalServerError:
				span.SetStatus(codes.Ok, "")
			case rec.err != nil:
				span.SetStatus(codes.Error, rec.err.Error())
			default:
				span.SetStatus(codes.Error, http.StatusText(status))
			}
			span.SetAttributes(attrs...)
			span.SetAttributes(
				semconv.NetworkProtocolVersionKey.String(r.Proto),
				semconv.ServerAddressKey.String(r.Host),
				attribute.String("http.user_agent", r.UserAgent()),
				attribute.Int("http.response_content_length", rec.size),
			)

			if requests != nil {
				requests.Add(ctx, 1, metric.WithAttributes(attrs...))
			}
			if duration != nil {
				duration.Record(ctx, float64(elapsed.Milliseconds()), metric.WithAttributes(attrs...))
			}

			slog.InfoContext(ctx, "response sent",
				"method", r.Method,
				"path", route,
				"status", status,
				"bytes", rec.size,
				"latency_ms", elapsed.Milliseconds(),
				"body", loggableBody(rec.body.Bytes(), rec.capped, keys),
			)
		})
	}
}
