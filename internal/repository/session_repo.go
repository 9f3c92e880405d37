package repository

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"consistai-backend/internal/models"
)

var ErrSessionNotFound = errors.New("session not found")

type sessionEntry struct {
	session  models.Session
	lastSeen time.Time
}

// SessionRepo keeps chat sessions in process memory. Sessions idle for longer
// than the TTL are dropped by Run.
type SessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*sessionEntry
	ttl      time.Duration
	now      func() time.Time
}

func NewSessionRepo(ttl time.Duration) *SessionRepo {
	return &SessionRepo{
		sessions: make(map[uuid.UUID]*sessionEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (r *SessionRepo) Create(ctx context.Context, s models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[s.ID] = &sessionEntry{session: s, lastSeen: r.now()}
	return nil
}

func (r *SessionRepo) Get(ctx context.Context, id uuid.UUID) (models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[id]
	if !ok {
		return models.Session{}, ErrSessionNotFound
	}
	e.lastSeen = r.now()
	return e.session, nil
}

// Update applies fn to the stored session atomically. The stored value is
// replaced only when fn succeeds.
func (r *SessionRepo) Update(ctx context.Context, id uuid.UUID, fn func(models.Session) (models.Session, error)) (models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[id]
	if !ok {
		return models.Session{}, ErrSessionNotFound
	}

	next, err := fn(e.session)
	if err != nil {
		return e.session, err
	}

	e.session = next
	e.lastSeen = r.now()
	return next, nil
}

func (r *SessionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, id)
	return nil
}

// Sweep removes idle sessions and reports how many were dropped. Sessions with
// a turn in progress are kept.
func (r *SessionRepo) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	now := r.now()
	for id, e := range r.sessions {
		if e.session.Status == models.SessionAwaitingResponse {
			continue
		}
		if now.Sub(e.lastSeen) > r.ttl {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

func (r *SessionRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Run sweeps expired sessions until ctx is cancelled.
func (r *SessionRepo) Run(ctx context.Context) error {
	interval := r.ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				slog.Debug("Expired chat sessions removed", "count", n, "remaining", r.Len())
			}
		}
	}
}
