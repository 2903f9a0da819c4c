package repository

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

type FailoverPresenceRepository struct {
	primary  PresenceRepository
	fallback PresenceRepository
	logger   *zerolog.Logger
	isDown   atomic.Bool
	// Unix nanos of the last failed probe; written from request goroutines.
	lastCheck atomic.Int64
}

func NewFailoverPresenceRepository(primary, fallback PresenceRepository, logger *zerolog.Logger) *FailoverPresenceRepository {
	return &FailoverPresenceRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverPresenceRepository) SetOnline(ctx context.Context, userID int64) error {
	if !r.isDown.Load() {
		err := r.primary.SetOnline(ctx, userID)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}

	return r.fallback.SetOnline(ctx, userID)
}

func (r *FailoverPresenceRepository) SetOffline(ctx context.Context, userID int64) error {
	if !r.isDown.Load() {
		err := r.primary.SetOffline(ctx, userID)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}

	return r.fallback.SetOffline(ctx, userID)
}

func (r *FailoverPresenceRepository) IsOnline(ctx context.Context, userID int64) (bool, error) {
	if !r.isDown.Load() {
		online, err := r.primary.IsOnline(ctx, userID)
		if err == nil {
			return online, nil
		}
		r.markDown(err)
	}

	// Try to recover after 1 minute
	if r.isDown.Load() && time.Since(time.Unix(0, r.lastCheck.Load())) > time.Minute {
		online, err := r.primary.IsOnline(ctx, userID)
		if err == nil {
			r.isDown.Store(false)
			return online, nil
		}
		r.lastCheck.Store(time.Now().UnixNano())
	}

	return r.fallback.IsOnline(ctx, userID)
}

func (r *FailoverPresenceRepository) CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	if !r.isDown.Load() {
		allowed, err := r.primary.CheckRateLimit(ctx, userID, limit, window)
		if err == nil {
			return allowed, nil
		}
		r.markDown(err)
	}

	return r.fallback.CheckRateLimit(ctx, userID, limit, window)
}

func (r *FailoverPresenceRepository) markDown(err error) {
	r.logger.Error().Err(err).Msg("Primary presence repository failed, falling back to memory")
	r.isDown.Store(true)
	r.lastCheck.Store(time.Now().UnixNano())
}
