package service

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/bhakti2406/local-service-finder/internal/events"
	"github.com/bhakti2406/local-service-finder/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockBookingStore struct {
	mock.Mock
}

func (m *mockBookingStore) CreateBooking(ctx context.Context, b *models.Booking) error {
	return m.Called(ctx, b).Error(0)
}
func (m *mockBookingStore) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockBookingStore) UpdateBookingStatusFrom(ctx context.Context, id int64, from, to string) error {
	return m.Called(ctx, id, from, to).Error(0)
}
func (m *mockBookingStore) GetUserBookings(ctx context.Context, userID int64) ([]*models.Booking, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}
func (m *mockBookingStore) GetAllBookings(ctx context.Context) ([]*models.Booking, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}

func newBookingService(store BookingStore, bus *events.EventBus) *BookingService {
	logger := zerolog.New(io.Discard)
	return NewBookingService(store, bus, &logger)
}

func TestCreateBookingValidation(t *testing.T) {
	store := new(mockBookingStore)
	svc := newBookingService(store, events.NewEventBus())
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, "", "leak", 100)
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.Create(ctx, 1, "Plumbing", "  ", 100)
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.Create(ctx, 1, "Plumbing", "leak", 0)
	assert.ErrorIs(t, err, models.ErrValidation)

	store.AssertNotCalled(t, "CreateBooking")
}

func TestCreateBookingStartsPending(t *testing.T) {
	store := new(mockBookingStore)
	svc := newBookingService(store, events.NewEventBus())
	ctx := context.Background()

	store.On("CreateBooking", ctx, mock.MatchedBy(func(b *models.Booking) bool {
		return b.Status == models.StatusPending && b.UserID == 7
	})).Return(nil).Once()

	booking, err := svc.Create(ctx, 7, "Plumbing", "leak under sink", 500)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, booking.Status)
	store.AssertExpectations(t)
}

func TestListAllRequiresAdmin(t *testing.T) {
	store := new(mockBookingStore)
	svc := newBookingService(store, events.NewEventBus())
	ctx := context.Background()

	_, err := svc.ListAll(ctx, models.RoleReceiver)
	assert.ErrorIs(t, err, models.ErrForbidden)

	store.On("GetAllBookings", ctx).Return([]*models.Booking{}, nil).Once()
	_, err = svc.ListAll(ctx, models.RoleAdmin)
	assert.NoError(t, err)
	store.AssertExpectations(t)
}

func TestGetBookingOwnership(t *testing.T) {
	store := new(mockBookingStore)
	svc := newBookingService(store, events.NewEventBus())
	ctx := context.Background()

	booking := &models.Booking{ID: 3, UserID: 5, Status: models.StatusPending}
	store.On("GetBooking", ctx, int64(3)).Return(booking, nil)

	_, err := svc.Get(ctx, 9, models.RoleReceiver, 3)
	assert.ErrorIs(t, err, models.ErrForbidden)

	got, err := svc.Get(ctx, 5, models.RoleReceiver, 3)
	require.NoError(t, err)
	assert.Equal(t, booking, got)

	_, err = svc.Get(ctx, 1, models.RoleAdmin, 3)
	assert.NoError(t, err)
}

func TestTransitionRequiresAdmin(t *testing.T) {
	store := new(mockBookingStore)
	svc := newBookingService(store, events.NewEventBus())

	_, err := svc.Transition(context.Background(), 5, models.RoleReceiver, 1, models.StatusAccepted)
	assert.ErrorIs(t, err, models.ErrForbidden)
	store.AssertNotCalled(t, "GetBooking")
}

func TestTransitionUnknownStatus(t *testing.T) {
	store := new(mockBookingStore)
	svc := newBookingService(store, events.NewEventBus())

	_, err := svc.Transition(context.Background(), 1, models.RoleAdmin, 1, "confirmed")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestTransitionFromTerminalStatus(t *testing.T) {
	store := new(mockBookingStore)
	svc := newBookingService(store, events.NewEventBus())
	ctx := context.Background()

	store.On("GetBooking", ctx, int64(4)).Return(&models.Booking{ID: 4, Status: models.StatusRejected}, nil).Once()

	_, err := svc.Transition(ctx, 1, models.RoleAdmin, 4, models.StatusAccepted)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
	store.AssertNotCalled(t, "UpdateBookingStatusFrom")
}

func TestTransitionPublishesAfterWrite(t *testing.T) {
	store := new(mockBookingStore)
	bus := events.NewEventBus()
	svc := newBookingService(store, bus)
	ctx := context.Background()

	var published *events.BookingEventPayload
	bus.Subscribe(events.EventBookingStatusChanged, func(event *events.Event) error {
		var payload events.BookingEventPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return err
		}
		published = &payload
		return nil
	})

	booking := &models.Booking{ID: 10, UserID: 5, ServiceName: "Plumbing", Price: 500, Status: models.StatusPending}
	store.On("GetBooking", ctx, int64(10)).Return(booking, nil).Once()
	store.On("UpdateBookingStatusFrom", ctx, int64(10), models.StatusPending, models.StatusAccepted).Return(nil).Once()

	updated, err := svc.Transition(ctx, 1, models.RoleAdmin, 10, models.StatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, updated.Status)

	require.NotNil(t, published)
	assert.Equal(t, int64(10), published.BookingID)
	assert.Equal(t, models.StatusPending, published.OldStatus)
	assert.Equal(t, models.StatusAccepted, published.NewStatus)
	assert.Equal(t, int64(1), published.ChangedByID)
	store.AssertExpectations(t)
}

func TestTransitionLostRaceSkipsPublish(t *testing.T) {
	store := new(mockBookingStore)
	bus := events.NewEventBus()
	svc := newBookingService(store, bus)
	ctx := context.Background()

	var publishCount int
	bus.Subscribe(events.EventBookingStatusChanged, func(*events.Event) error {
		publishCount++
		return nil
	})

	booking := &models.Booking{ID: 11, Status: models.StatusPending}
	store.On("GetBooking", ctx, int64(11)).Return(booking, nil).Once()
	store.On("UpdateBookingStatusFrom", ctx, int64(11), models.StatusPending, models.StatusRejected).
		Return(models.ErrInvalidTransition).Once()

	_, err := svc.Transition(ctx, 1, models.RoleAdmin, 11, models.StatusRejected)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
	assert.Zero(t, publishCount)
	store.AssertExpectations(t)
}
