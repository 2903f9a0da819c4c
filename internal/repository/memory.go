package repository

import (
	"context"
	"sync"
	"time"
)

type MemoryPresenceRepository struct {
	online sync.Map
	ttl    time.Duration

	mu         sync.Mutex
	rateLimits map[int64]*rateLimitEntry
}

func NewMemoryPresenceRepository(ttl time.Duration) *MemoryPresenceRepository {
	return &MemoryPresenceRepository{
		ttl:        ttl,
		rateLimits: make(map[int64]*rateLimitEntry),
	}
}

func (r *MemoryPresenceRepository) SetOnline(ctx context.Context, userID int64) error {
	r.online.Store(userID, time.Now().Add(r.ttl))
	return nil
}

func (r *MemoryPresenceRepository) SetOffline(ctx context.Context, userID int64) error {
	r.online.Delete(userID)
	return nil
}

func (r *MemoryPresenceRepository) IsOnline(ctx context.Context, userID int64) (bool, error) {
	val, ok := r.online.Load(userID)
	if !ok {
		return false, nil
	}
	if time.Now().After(val.(time.Time)) {
		r.online.Delete(userID)
		return false, nil
	}
	return true, nil
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

// CheckRateLimit counts one call against the user's window. The read-modify-
// write on the entry must stay under the mutex: concurrent senders would
// otherwise undercount each other.
func (r *MemoryPresenceRepository) CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.rateLimits[userID]
	if !ok || now.After(entry.expiresAt) {
		r.rateLimits[userID] = &rateLimitEntry{
			count:     1,
			expiresAt: now.Add(window),
		}
		return 1 <= limit, nil
	}

	entry.count++
	return entry.count <= limit, nil
}
