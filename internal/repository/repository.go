package repository

import (
	"context"
	"time"
)

// PresenceRepository tracks which users currently hold a realtime connection
// and enforces per-user message rate limits.
type PresenceRepository interface {
	SetOnline(ctx context.Context, userID int64) error
	SetOffline(ctx context.Context, userID int64) error
	IsOnline(ctx context.Context, userID int64) (bool, error)
	CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
}
