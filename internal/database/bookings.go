package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bhakti2406/local-service-finder/internal/models"
)

func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	query := `INSERT INTO bookings (user_id, service_name, problem, price, status, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		booking.UserID,
		booking.ServiceName,
		booking.Problem,
		booking.Price,
		booking.Status,
		now,
		now,
	)
	if err != nil {
		return wrapTransient("create booking", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return wrapTransient("create booking id", err)
	}
	booking.ID = id
	booking.CreatedAt = now
	booking.UpdatedAt = now
	return nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT id, user_id, service_name, problem, price, status, created_at, updated_at
              FROM bookings WHERE id = ?`
	var booking models.Booking
	err := db.QueryRowContext(ctx, query, id).Scan(
		&booking.ID, &booking.UserID, &booking.ServiceName, &booking.Problem,
		&booking.Price, &booking.Status, &booking.CreatedAt, &booking.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("booking %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, wrapTransient("get booking", err)
	}
	return &booking, nil
}

// UpdateBookingStatusFrom moves a booking to a new status only if it still
// has the expected current status. Zero rows affected means the booking is
// gone or another transition won the race.
func (db *DB) UpdateBookingStatusFrom(ctx context.Context, id int64, fromStatus, toStatus string) error {
	query := `UPDATE bookings SET status = ?, updated_at = ? WHERE id = ? AND status = ?`
	result, err := db.ExecContext(ctx, query, toStatus, time.Now(), id, fromStatus)
	if err != nil {
		return wrapTransient("update booking status", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("booking %d not in status %q: %w", id, fromStatus, models.ErrInvalidTransition)
	}
	return nil
}

func (db *DB) GetUserBookings(ctx context.Context, userID int64) ([]*models.Booking, error) {
	query := `SELECT id, user_id, service_name, problem, price, status, created_at, updated_at
              FROM bookings WHERE user_id = ? ORDER BY created_at ASC`
	return db.queryBookings(ctx, query, userID)
}

func (db *DB) GetAllBookings(ctx context.Context) ([]*models.Booking, error) {
	query := `SELECT id, user_id, service_name, problem, price, status, created_at, updated_at
              FROM bookings ORDER BY created_at ASC`
	return db.queryBookings(ctx, query)
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...any) ([]*models.Booking, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapTransient("query bookings", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b := &models.Booking{}
		err := rows.Scan(
			&b.ID, &b.UserID, &b.ServiceName, &b.Problem,
			&b.Price, &b.Status, &b.CreatedAt, &b.UpdatedAt,
		)
		if err != nil {
			return nil, wrapTransient("scan booking", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapTransient("iterate bookings", err)
	}
	return bookings, nil
}
