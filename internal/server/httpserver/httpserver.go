package httpserver

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tombowditch/geojsonio/geojsonio"
	"github.com/tombowditch/geojsonio/internal/config"
	"github.com/tombowditch/geojsonio/internal/health"
	"github.com/tombowditch/geojsonio/internal/payload"
	"github.com/tombowditch/geojsonio/internal/ratelimit"
)

// ReferenceBuilder builds viewer URLs. *geojsonio.Builder implements it.
type ReferenceBuilder interface {
	BuildReference(ctx context.Context, payload string, opts geojsonio.BuildOptions) (string, error)
}

// Options configures the HTTP handler.
type Options struct {
	// Limiter throttles gist creation per client IP. Defaults to ratelimit.Unlimited.
	Limiter ratelimit.Limiter
	// Health backs /healthz. A nil checker always reports ok.
	Health health.Checker
	// Metrics serves /metrics. Defaults to promhttp.Handler().
	Metrics http.Handler
	// TrustProxy enables X-Forwarded-For and X-Real-IP.
	TrustProxy bool
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	builder    ReferenceBuilder
	limiter    ratelimit.Limiter
	health     health.Checker
	trustProxy bool
}

// NewHandler creates an HTTP handler with all routes configured.
func NewHandler(b ReferenceBuilder, opts Options) http.Handler {
	srv := &Server{
		builder:    b,
		limiter:    opts.Limiter,
		health:     opts.Health,
		trustProxy: opts.TrustProxy,
	}
	if srv.limiter == nil {
		srv.limiter = ratelimit.Unlimited{}
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = promhttp.Handler()
	}

	r := httprouter.New()
	r.GET("/", srv.indexPage)
	r.POST("/url", srv.createURL)
	r.GET("/healthz", srv.healthz)
	r.Handler(http.MethodGet, "/metrics", metrics)

	return r
}

func (s *Server) indexPage(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte(`geojsonio - open GeoJSON in geojson.io

POST a GeoJSON document to /url and get back a geojson.io link.

- documents up to 150 kB are embedded in the link
- larger documents (up to 10 MB) are uploaded to a GitHub gist
- add ?gist=false to never create a gist

example
=======

~> curl --data-binary @point.geojson https://host/url
http://geojson.io/#data=data:application/json,%7B%22type%22...

~> curl --data-binary @countries.geojson https://host/url
http://geojson.io/#id=gist:/aa5a315d61ae9438b18d

~> cat countries.geojson | nc host 9999
http://geojson.io/#id=gist:/aa5a315d61ae9438b18d`))
}

func (s *Server) createURL(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	defer r.Body.Close()

	// Read body (max payload + 1 byte to detect overflow)
	body, err := io.ReadAll(io.LimitReader(r.Body, int64(config.MaxPayloadSize)+1))
	if err != nil {
		writeText(w, http.StatusBadRequest, "error reading body")
		return
	}

	if err := payload.Validate(body); err != nil {
		if ve, ok := err.(*payload.ValidationError); ok {
			writeText(w, ve.StatusCode, ve.Message)
		} else {
			writeText(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	opts := geojsonio.BuildOptions{DisableRemoteStore: r.URL.Query().Get("gist") == "false"}

	// Rate limit: 1 gist per 5 seconds per IP
	cip := s.clientIP(r)
	if len(body) > geojsonio.InlineLimit && !opts.DisableRemoteStore && !s.limiter.Allow(cip) {
		writeText(w, http.StatusTooManyRequests, "rate limit exceeded (1 gist per 5 seconds)")
		return
	}

	u, err := s.builder.BuildReference(r.Context(), string(body), opts)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			slog.Error("building reference failed", "error", err, "remote", cip)
		}
		writeText(w, status, err.Error())
		return
	}

	slog.Info("built reference via HTTP POST", "size", len(body), "remote", cip)
	writeText(w, http.StatusCreated, u+"\n")
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if s.health != nil {
		if err := s.health.Check(); err != nil {
			slog.Error("health check failed", "error", err)
			writeText(w, http.StatusServiceUnavailable, "unhealthy")
			return
		}
	}
	writeText(w, http.StatusOK, "ok")
}

func statusFor(err error) int {
	switch geojsonio.CodeOf(err) {
	case geojsonio.ErrOversize:
		return http.StatusRequestEntityTooLarge
	case geojsonio.ErrStoreUnavailable:
		return http.StatusServiceUnavailable
	case geojsonio.ErrStoreRequest:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(status)
	w.Write([]byte(msg))
}

// clientIP extracts the client IP. Proxy headers are only honoured when
// trustProxy is set, since they can be spoofed to dodge rate limiting.
func (s *Server) clientIP(r *http.Request) string {
	if s.trustProxy {
		// X-Forwarded-For can be comma-separated list: client, proxy1, proxy2
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			if idx := strings.Index(xff, ","); idx != -1 {
				return strings.TrimSpace(xff[:idx])
			}
			return strings.TrimSpace(xff)
		}

		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
