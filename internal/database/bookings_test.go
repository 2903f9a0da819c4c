package database

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/bhakti2406/local-service-finder/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestBooking(t *testing.T, db *DB, userID int64) *models.Booking {
	t.Helper()
	booking := &models.Booking{
		UserID:      userID,
		ServiceName: "Plumbing",
		Problem:     "leak",
		Price:       500,
		Status:      models.StatusPending,
	}
	require.NoError(t, db.CreateBooking(context.Background(), booking))
	return booking
}

func TestCreateAndGetBooking(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	booking := createTestBooking(t, db, 1)
	assert.NotZero(t, booking.ID)

	got, err := db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, "Plumbing", got.ServiceName)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Equal(t, 500.0, got.Price)
}

func TestGetBookingNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetBooking(context.Background(), 777)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUpdateBookingStatusFrom(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	booking := createTestBooking(t, db, 1)

	require.NoError(t, db.UpdateBookingStatusFrom(ctx, booking.ID, models.StatusPending, models.StatusAccepted))

	updated, err := db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, updated.Status)

	// Stale expected status loses the compare-and-swap.
	err = db.UpdateBookingStatusFrom(ctx, booking.ID, models.StatusPending, models.StatusRejected)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	unchanged, err := db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, unchanged.Status)
}

func TestConcurrentTransitionsHaveOneWinner(t *testing.T) {
	log := zerolog.Nop()
	db, err := NewDB(filepath.Join(t.TempDir(), "bookings.db"), &log)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	booking := createTestBooking(t, db, 1)

	targets := []string{
		models.StatusAccepted, models.StatusRejected,
		models.StatusAccepted, models.StatusRejected,
	}
	results := make(chan error, len(targets))

	var wg sync.WaitGroup
	for _, target := range targets {
		wg.Add(1)
		go func(status string) {
			defer wg.Done()
			results <- db.UpdateBookingStatusFrom(ctx, booking.ID, models.StatusPending, status)
		}(target)
	}
	wg.Wait()
	close(results)

	wins := 0
	for err := range results {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, models.ErrInvalidTransition)
		}
	}
	assert.Equal(t, 1, wins)

	final, err := db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Contains(t, []string{models.StatusAccepted, models.StatusRejected}, final.Status)
}

func TestListBookingsOrderedByCreation(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first := createTestBooking(t, db, 5)
	second := createTestBooking(t, db, 5)
	createTestBooking(t, db, 6)

	own, err := db.GetUserBookings(ctx, 5)
	require.NoError(t, err)
	require.Len(t, own, 2)
	assert.Equal(t, first.ID, own[0].ID)
	assert.Equal(t, second.ID, own[1].ID)

	all, err := db.GetAllBookings(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
