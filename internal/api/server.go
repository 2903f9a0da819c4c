package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bhakti2406/local-service-finder/internal/auth"
	"github.com/bhakti2406/local-service-finder/internal/config"
	"github.com/bhakti2406/local-service-finder/internal/export"
	"github.com/bhakti2406/local-service-finder/internal/service"

	"github.com/rs/zerolog"
)

// HTTPServer exposes the JSON API and the realtime upgrade endpoint.
type HTTPServer struct {
	cfg      config.ServerConfig
	users    *service.UserService
	bookings *service.BookingService
	messages *service.MessageService
	catalog  *service.CatalogService
	exporter *export.Exporter
	tokens   *auth.TokenManager
	realtime http.Handler
	logger   *zerolog.Logger
	server   *http.Server
}

type Deps struct {
	Users    *service.UserService
	Bookings *service.BookingService
	Messages *service.MessageService
	Catalog  *service.CatalogService
	Exporter *export.Exporter
	Tokens   *auth.TokenManager
	Realtime http.Handler
}

func NewHTTPServer(cfg config.ServerConfig, deps Deps, logger *zerolog.Logger) *HTTPServer {
	srv := &HTTPServer{
		cfg:      cfg,
		users:    deps.Users,
		bookings: deps.Bookings,
		messages: deps.Messages,
		catalog:  deps.Catalog,
		exporter: deps.Exporter,
		tokens:   deps.Tokens,
		realtime: deps.Realtime,
		logger:   logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/register", srv.handleRegister)
	mux.HandleFunc("/api/v1/auth/login", srv.handleLogin)
	mux.HandleFunc("/api/v1/auth/profile", srv.authenticated(srv.handleProfile))
	mux.HandleFunc("/api/v1/bookings", srv.authenticated(srv.handleBookings))
	mux.HandleFunc("/api/v1/bookings/", srv.authenticated(srv.handleBookingSubpath))
	mux.HandleFunc("/api/v1/chats", srv.authenticated(srv.handleConversations))
	mux.HandleFunc("/api/v1/chats/", srv.authenticated(srv.handleChatSubpath))
	mux.HandleFunc("/api/v1/services", srv.handleServices)
	mux.HandleFunc("/api/v1/reviews", srv.handleReviews)
	mux.HandleFunc("/api/v1/realtime", srv.handleRealtime)
	mux.HandleFunc("/healthz", srv.handleHealth)

	handler := srv.loggingMiddleware(srv.rateLimitMiddleware(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return srv
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the full middleware-wrapped handler, mainly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleRealtime(w http.ResponseWriter, r *http.Request) {
	if s.realtime == nil {
		writeError(w, http.StatusNotFound, "realtime is not enabled")
		return
	}
	s.realtime.ServeHTTP(w, r)
}
