package realtime

import (
	"context"
	"net/http"

	"github.com/bhakti2406/local-service-finder/internal/auth"
	"github.com/bhakti2406/local-service-finder/internal/config"
	"github.com/bhakti2406/local-service-finder/internal/metrics"
	"github.com/bhakti2406/local-service-finder/internal/models"
	"github.com/bhakti2406/local-service-finder/internal/repository"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Handler upgrades authenticated HTTP requests to realtime connections.
type Handler struct {
	hub      *Hub
	tokens   *auth.TokenManager
	presence repository.PresenceRepository
	cfg      config.RealtimeConfig
	logger   *zerolog.Logger
	upgrader websocket.Upgrader
}

func NewHandler(hub *Hub, tokens *auth.TokenManager, presence repository.PresenceRepository, cfg config.RealtimeConfig, logger *zerolog.Logger) *Handler {
	return &Handler{
		hub:      hub,
		tokens:   tokens,
		presence: presence,
		cfg:      cfg,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The token in the query string is the auth boundary, not the Origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Browsers cannot set headers on websocket dials, so the token rides the
	// query string.
	claims, err := h.tokens.Verify(r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := h.hub.NewClient(claims.UserID)
	rooms := []string{UserRoom(claims.UserID)}
	if claims.Role == models.RoleAdmin {
		rooms = append(rooms, AdminRoom)
	}
	h.hub.Register(client, rooms...)
	metrics.ConnOpened()

	if err := h.presence.SetOnline(r.Context(), claims.UserID); err != nil {
		h.logger.Error().Err(err).Int64("user_id", claims.UserID).Msg("failed to mark user online")
	}

	h.logger.Info().
		Str("client_id", client.ID).
		Int64("user_id", claims.UserID).
		Str("role", claims.Role).
		Msg("realtime client connected")

	go writePump(conn, client, h.cfg)
	readPump(conn, h.cfg)

	h.hub.Unregister(client)
	metrics.ConnClosed()

	// The user stays online while another of their connections survives.
	if h.hub.RoomSize(UserRoom(claims.UserID)) == 0 {
		if err := h.presence.SetOffline(context.Background(), claims.UserID); err != nil {
			h.logger.Error().Err(err).Int64("user_id", claims.UserID).Msg("failed to mark user offline")
		}
	}

	h.logger.Info().
		Str("client_id", client.ID).
		Int64("user_id", claims.UserID).
		Msg("realtime client disconnected")
}
