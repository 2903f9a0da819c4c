package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bhakti2406/local-service-finder/internal/config"
	"github.com/bhakti2406/local-service-finder/internal/events"
	"github.com/bhakti2406/local-service-finder/internal/metrics"
	"github.com/bhakti2406/local-service-finder/internal/models"
	"github.com/bhakti2406/local-service-finder/internal/repository"

	"github.com/rs/zerolog"
)

type MessageService struct {
	store    MessageStore
	presence repository.PresenceRepository
	eventBus *events.EventBus
	cfg      config.ChatConfig
	logger   *zerolog.Logger
}

func NewMessageService(store MessageStore, presence repository.PresenceRepository, eventBus *events.EventBus, cfg config.ChatConfig, logger *zerolog.Logger) *MessageService {
	return &MessageService{
		store:    store,
		presence: presence,
		eventBus: eventBus,
		cfg:      cfg,
		logger:   logger,
	}
}

// canAccess reports whether the actor may read or write the conversation.
// Receivers own exactly one conversation, keyed by their user id; admins share
// access to all of them.
func canAccess(actorID int64, actorRole string, conversationID int64) bool {
	return actorRole == models.RoleAdmin || actorID == conversationID
}

// Send appends a message to the conversation and notifies the counterparty.
func (s *MessageService) Send(ctx context.Context, actorID int64, actorRole string, conversationID int64, text string) (*models.Message, error) {
	if !canAccess(actorID, actorRole, conversationID) {
		return nil, fmt.Errorf("%w: not a participant of this conversation", models.ErrForbidden)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: message text is required", models.ErrValidation)
	}
	if s.cfg.MaxMessageLength > 0 && len(text) > s.cfg.MaxMessageLength {
		return nil, fmt.Errorf("%w: message exceeds %d characters", models.ErrValidation, s.cfg.MaxMessageLength)
	}

	if s.cfg.RateLimitMessages > 0 {
		window := time.Duration(s.cfg.RateLimitWindow) * time.Second
		allowed, err := s.presence.CheckRateLimit(ctx, actorID, s.cfg.RateLimitMessages, window)
		if err != nil {
			// Fail open: losing the limiter must not take chat down.
			s.logger.Error().Err(err).Int64("user_id", actorID).Msg("rate limit check failed")
		} else if !allowed {
			return nil, fmt.Errorf("%w: too many messages", models.ErrRateLimited)
		}
	}

	message := &models.Message{
		ConversationID: conversationID,
		SenderID:       actorID,
		SenderRole:     actorRole,
		Text:           text,
	}
	if err := s.store.AppendMessage(ctx, message); err != nil {
		return nil, err
	}
	metrics.IncMessageSent()

	// The message is durable; delivery to connected clients is best effort.
	s.publishMessage(message)

	return message, nil
}

// History returns the conversation in sequence order.
func (s *MessageService) History(ctx context.Context, actorID int64, actorRole string, conversationID int64) ([]*models.Message, error) {
	if !canAccess(actorID, actorRole, conversationID) {
		return nil, fmt.Errorf("%w: not a participant of this conversation", models.ErrForbidden)
	}
	return s.store.GetConversationMessages(ctx, conversationID)
}

// Conversations returns the admin-side index, annotated with presence.
func (s *MessageService) Conversations(ctx context.Context, actorRole string) ([]*models.Conversation, error) {
	if actorRole != models.RoleAdmin {
		return nil, fmt.Errorf("%w: admin role required", models.ErrForbidden)
	}

	conversations, err := s.store.GetConversations(ctx)
	if err != nil {
		return nil, err
	}

	for _, conv := range conversations {
		online, err := s.presence.IsOnline(ctx, conv.UserID)
		if err != nil {
			s.logger.Error().Err(err).Int64("user_id", conv.UserID).Msg("presence lookup failed")
			continue
		}
		conv.Online = online
	}
	return conversations, nil
}

func (s *MessageService) publishMessage(message *models.Message) {
	payload := events.MessageEventPayload{
		MessageID:      message.ID,
		ConversationID: message.ConversationID,
		SenderID:       message.SenderID,
		SenderRole:     message.SenderRole,
		Text:           message.Text,
		Seq:            message.Seq,
		CreatedAt:      message.CreatedAt,
	}
	if err := s.eventBus.PublishJSON(events.EventMessageReceived, payload); err != nil {
		s.logger.Error().Err(err).Int64("message_id", message.ID).Msg("failed to publish message event")
	}
}
