package repository

import (
	"context"
	"sync"
	"time"

	"miles/internal/models"
)

type MemoryStateRepository struct {
	states     sync.Map
	rateMu     sync.Mutex
	rateLimits map[string]*rateLimitEntry
	ttl        time.Duration
}

func NewMemoryStateRepository(ttl time.Duration) *MemoryStateRepository {
	return &MemoryStateRepository{
		rateLimits: make(map[string]*rateLimitEntry),
		ttl:        ttl,
	}
}

// GetState returns a private copy; concurrent requests on one session
// must not share a mutable state struct.
func (r *MemoryStateRepository) GetState(ctx context.Context, sessionID string) (*models.SessionState, error) {
	val, ok := r.states.Load(sessionID)
	if !ok {
		return nil, nil
	}
	state := val.(models.SessionState)
	return &state, nil
}

func (r *MemoryStateRepository) SetState(ctx context.Context, state *models.SessionState) error {
	r.states.Store(state.ID, *state)
	return nil
}

func (r *MemoryStateRepository) ClearState(ctx context.Context, sessionID string) error {
	r.states.Delete(sessionID)
	return nil
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func (r *MemoryStateRepository) CheckRateLimit(ctx context.Context, clientKey string, limit int, window time.Duration) (bool, error) {
	now := time.Now()

	r.rateMu.Lock()
	defer r.rateMu.Unlock()

	entry, ok := r.rateLimits[clientKey]
	if !ok || now.After(entry.expiresAt) {
		entry = &rateLimitEntry{
			count:     1,
			expiresAt: now.Add(window),
		}
		r.rateLimits[clientKey] = entry
	} else {
		entry.count++
	}

	return entry.count <= limit, nil
}
