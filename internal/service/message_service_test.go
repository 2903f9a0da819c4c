package service

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/bhakti2406/local-service-finder/internal/config"
	"github.com/bhakti2406/local-service-finder/internal/events"
	"github.com/bhakti2406/local-service-finder/internal/models"
	"github.com/bhakti2406/local-service-finder/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockMessageStore struct {
	mock.Mock
}

func (m *mockMessageStore) AppendMessage(ctx context.Context, msg *models.Message) error {
	args := m.Called(ctx, msg)
	if args.Error(0) == nil {
		msg.ID = 1
		msg.Seq = 1
		msg.CreatedAt = time.Now()
	}
	return args.Error(0)
}
func (m *mockMessageStore) GetConversationMessages(ctx context.Context, conversationID int64) ([]*models.Message, error) {
	args := m.Called(ctx, conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Message), args.Error(1)
}
func (m *mockMessageStore) GetConversations(ctx context.Context) ([]*models.Conversation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Conversation), args.Error(1)
}

func newMessageService(store MessageStore, bus *events.EventBus, cfg config.ChatConfig) (*MessageService, *repository.MemoryPresenceRepository) {
	logger := zerolog.New(io.Discard)
	presence := repository.NewMemoryPresenceRepository(time.Hour)
	return NewMessageService(store, presence, bus, cfg, &logger), presence
}

func chatConfig() config.ChatConfig {
	return config.ChatConfig{RateLimitMessages: 10, RateLimitWindow: 60, MaxMessageLength: 500}
}

func TestSendAuthorization(t *testing.T) {
	store := new(mockMessageStore)
	svc, _ := newMessageService(store, events.NewEventBus(), chatConfig())
	ctx := context.Background()

	// Receiver 5 cannot write into receiver 6's conversation.
	_, err := svc.Send(ctx, 5, models.RoleReceiver, 6, "hi")
	assert.ErrorIs(t, err, models.ErrForbidden)

	store.On("AppendMessage", ctx, mock.Anything).Return(nil)

	_, err = svc.Send(ctx, 5, models.RoleReceiver, 5, "hi")
	assert.NoError(t, err)

	// Admins can write into any conversation.
	_, err = svc.Send(ctx, 1, models.RoleAdmin, 6, "hello")
	assert.NoError(t, err)
}

func TestSendValidation(t *testing.T) {
	store := new(mockMessageStore)
	svc, _ := newMessageService(store, events.NewEventBus(), chatConfig())
	ctx := context.Background()

	_, err := svc.Send(ctx, 5, models.RoleReceiver, 5, "   ")
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.Send(ctx, 5, models.RoleReceiver, 5, strings.Repeat("x", 501))
	assert.ErrorIs(t, err, models.ErrValidation)

	store.AssertNotCalled(t, "AppendMessage")
}

func TestSendRateLimited(t *testing.T) {
	store := new(mockMessageStore)
	cfg := config.ChatConfig{RateLimitMessages: 2, RateLimitWindow: 60, MaxMessageLength: 500}
	svc, _ := newMessageService(store, events.NewEventBus(), cfg)
	ctx := context.Background()

	store.On("AppendMessage", ctx, mock.Anything).Return(nil)

	_, err := svc.Send(ctx, 5, models.RoleReceiver, 5, "one")
	require.NoError(t, err)
	_, err = svc.Send(ctx, 5, models.RoleReceiver, 5, "two")
	require.NoError(t, err)

	_, err = svc.Send(ctx, 5, models.RoleReceiver, 5, "three")
	assert.ErrorIs(t, err, models.ErrRateLimited)
}

func TestSendPublishesAfterDurableWrite(t *testing.T) {
	store := new(mockMessageStore)
	bus := events.NewEventBus()
	svc, _ := newMessageService(store, bus, chatConfig())
	ctx := context.Background()

	var published *events.MessageEventPayload
	bus.Subscribe(events.EventMessageReceived, func(event *events.Event) error {
		var payload events.MessageEventPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return err
		}
		published = &payload
		return nil
	})

	store.On("AppendMessage", ctx, mock.Anything).Return(nil).Once()

	msg, err := svc.Send(ctx, 5, models.RoleReceiver, 5, "need help")
	require.NoError(t, err)

	require.NotNil(t, published)
	assert.Equal(t, msg.Seq, published.Seq)
	assert.Equal(t, "need help", published.Text)
	assert.Equal(t, models.RoleReceiver, published.SenderRole)
}

func TestSendStoreFailureSkipsPublish(t *testing.T) {
	store := new(mockMessageStore)
	bus := events.NewEventBus()
	svc, _ := newMessageService(store, bus, chatConfig())
	ctx := context.Background()

	var publishCount int
	bus.Subscribe(events.EventMessageReceived, func(*events.Event) error {
		publishCount++
		return nil
	})

	store.On("AppendMessage", ctx, mock.Anything).Return(models.ErrTransient).Once()

	_, err := svc.Send(ctx, 5, models.RoleReceiver, 5, "hi")
	assert.ErrorIs(t, err, models.ErrTransient)
	assert.Zero(t, publishCount)
}

func TestHistoryAuthorization(t *testing.T) {
	store := new(mockMessageStore)
	svc, _ := newMessageService(store, events.NewEventBus(), chatConfig())
	ctx := context.Background()

	_, err := svc.History(ctx, 5, models.RoleReceiver, 6)
	assert.ErrorIs(t, err, models.ErrForbidden)

	store.On("GetConversationMessages", ctx, int64(5)).Return([]*models.Message{}, nil).Once()
	_, err = svc.History(ctx, 5, models.RoleReceiver, 5)
	assert.NoError(t, err)
	store.AssertExpectations(t)
}

func TestConversationsAdminOnlyWithPresence(t *testing.T) {
	store := new(mockMessageStore)
	svc, presence := newMessageService(store, events.NewEventBus(), chatConfig())
	ctx := context.Background()

	_, err := svc.Conversations(ctx, models.RoleReceiver)
	assert.ErrorIs(t, err, models.ErrForbidden)

	store.On("GetConversations", ctx).Return([]*models.Conversation{
		{UserID: 5, UserName: "Asha"},
		{UserID: 6, UserName: "Ravi"},
	}, nil).Once()

	require.NoError(t, presence.SetOnline(ctx, 5))

	conversations, err := svc.Conversations(ctx, models.RoleAdmin)
	require.NoError(t, err)
	require.Len(t, conversations, 2)
	assert.True(t, conversations[0].Online)
	assert.False(t, conversations[1].Online)
}
