package api

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bhakti2406/local-service-finder/internal/auth"
	"github.com/bhakti2406/local-service-finder/internal/metrics"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

type contextKey string

const claimsKey contextKey = "claims"

// claimsFrom returns the verified token claims stored by the authenticated
// wrapper. It panics if the handler was mounted without it.
func claimsFrom(ctx context.Context) *auth.Claims {
	return ctx.Value(claimsKey).(*auth.Claims)
}

// authenticated verifies the Bearer token and stores its claims in the
// request context. Role enforcement happens in the services.
func (s *HTTPServer) authenticated(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tokenStr, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(tokenStr) == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		claims, err := s.tokens.Verify(strings.TrimSpace(tokenStr))
		if err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
	}
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		metrics.IncHTTP(r.URL.Path)
		s.logger.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

// rateLimitMiddleware applies a per-client token bucket keyed by remote host.
func (s *HTTPServer) rateLimitMiddleware(next http.Handler) http.Handler {
	if s.cfg.RateLimitRPS <= 0 {
		return next
	}

	var limiters sync.Map
	getLimiter := func(key string) *rate.Limiter {
		if v, ok := limiters.Load(key); ok {
			return v.(*rate.Limiter)
		}
		burst := s.cfg.RateLimitBurst
		if burst <= 0 {
			burst = 5
		}
		lim := rate.NewLimiter(rate.Limit(s.cfg.RateLimitRPS), burst)
		actual, loaded := limiters.LoadOrStore(key, lim)
		if loaded {
			return actual.(*rate.Limiter)
		}
		return lim
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil || host == "" {
			host = "unknown"
		}
		if !getLimiter(host).Allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
