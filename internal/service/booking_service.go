package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bhakti2406/local-service-finder/internal/events"
	"github.com/bhakti2406/local-service-finder/internal/metrics"
	"github.com/bhakti2406/local-service-finder/internal/models"

	"github.com/rs/zerolog"
)

type BookingService struct {
	store    BookingStore
	eventBus *events.EventBus
	logger   *zerolog.Logger
}

func NewBookingService(store BookingStore, eventBus *events.EventBus, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		store:    store,
		eventBus: eventBus,
		logger:   logger,
	}
}

// Create opens a new booking in the pending status on behalf of userID.
func (s *BookingService) Create(ctx context.Context, userID int64, serviceName, problem string, price float64) (*models.Booking, error) {
	serviceName = strings.TrimSpace(serviceName)
	problem = strings.TrimSpace(problem)
	if serviceName == "" {
		return nil, fmt.Errorf("%w: service name is required", models.ErrValidation)
	}
	if problem == "" {
		return nil, fmt.Errorf("%w: problem description is required", models.ErrValidation)
	}
	if price <= 0 {
		return nil, fmt.Errorf("%w: price must be positive", models.ErrValidation)
	}

	booking := &models.Booking{
		UserID:      userID,
		ServiceName: serviceName,
		Problem:     problem,
		Price:       price,
		Status:      models.StatusPending,
	}
	if err := s.store.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}
	metrics.IncBookingCreated()

	s.logger.Info().
		Int64("booking_id", booking.ID).
		Int64("user_id", userID).
		Str("service", serviceName).
		Msg("booking created")
	return booking, nil
}

// Get returns a single booking. Receivers can only see their own.
func (s *BookingService) Get(ctx context.Context, actorID int64, actorRole string, bookingID int64) (*models.Booking, error) {
	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if actorRole != models.RoleAdmin && booking.UserID != actorID {
		return nil, fmt.Errorf("%w: booking belongs to another user", models.ErrForbidden)
	}
	return booking, nil
}

// ListOwn returns the caller's bookings in creation order.
func (s *BookingService) ListOwn(ctx context.Context, userID int64) ([]*models.Booking, error) {
	return s.store.GetUserBookings(ctx, userID)
}

// ListAll returns every booking. Admin only.
func (s *BookingService) ListAll(ctx context.Context, actorRole string) ([]*models.Booking, error) {
	if actorRole != models.RoleAdmin {
		return nil, fmt.Errorf("%w: admin role required", models.ErrForbidden)
	}
	return s.store.GetAllBookings(ctx)
}

// Transition moves a booking to newStatus. Only admins may transition, only
// along the status graph, and concurrent admins race on a compare-and-swap:
// exactly one wins, the rest get ErrInvalidTransition.
func (s *BookingService) Transition(ctx context.Context, actorID int64, actorRole string, bookingID int64, newStatus string) (*models.Booking, error) {
	if actorRole != models.RoleAdmin {
		return nil, fmt.Errorf("%w: admin role required", models.ErrForbidden)
	}
	if !models.ValidStatus(newStatus) {
		return nil, fmt.Errorf("%w: unknown status %q", models.ErrValidation, newStatus)
	}

	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(booking.Status, newStatus) {
		return nil, fmt.Errorf("cannot move booking %d from %q to %q: %w",
			bookingID, booking.Status, newStatus, models.ErrInvalidTransition)
	}

	if err := s.store.UpdateBookingStatusFrom(ctx, bookingID, booking.Status, newStatus); err != nil {
		return nil, err
	}
	metrics.IncBookingTransition(newStatus)

	oldStatus := booking.Status
	booking.Status = newStatus

	// The row is durable; delivery to connected clients is best effort.
	s.publishStatusChanged(booking, oldStatus, actorID)

	s.logger.Info().
		Int64("booking_id", bookingID).
		Str("from", oldStatus).
		Str("to", newStatus).
		Int64("admin_id", actorID).
		Msg("booking status changed")
	return booking, nil
}

func (s *BookingService) publishStatusChanged(booking *models.Booking, oldStatus string, actorID int64) {
	payload := events.BookingEventPayload{
		BookingID:   booking.ID,
		UserID:      booking.UserID,
		ServiceName: booking.ServiceName,
		Price:       booking.Price,
		OldStatus:   oldStatus,
		NewStatus:   booking.Status,
		ChangedByID: actorID,
	}
	if err := s.eventBus.PublishJSON(events.EventBookingStatusChanged, payload); err != nil {
		s.logger.Error().Err(err).Int64("booking_id", booking.ID).Msg("failed to publish booking event")
	}
}
