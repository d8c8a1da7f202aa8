package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rezonant/cardsagainst/internal/game"
)

// ErrTooManySessions is returned when the store is at capacity
var ErrTooManySessions = fmt.Errorf("%w: too many sessions", game.ErrResourceExhausted)

// Config controls how sessions are created
type Config struct {
	Defaults    game.Options // template for every new session; Rand and OnEmpty are set per session
	MaxSessions int          // 0 means unlimited
	Seed        uint64       // non-zero makes every session's randomness reproducible
}

type entry struct {
	session   *game.Session
	createdAt time.Time
}

// MemoryStore holds all game sessions in memory
type MemoryStore struct {
	catalog *game.Catalog
	cfg     Config
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[string]*entry
	created  uint64
}

// NewMemoryStore creates a new in-memory store over a shared catalog
func NewMemoryStore(catalog *game.Catalog, cfg Config) *MemoryStore {
	return &MemoryStore{
		catalog:  catalog,
		cfg:      cfg,
		now:      time.Now,
		sessions: make(map[string]*entry),
	}
}

// CreateSession creates an empty session. The first player to join it becomes
// the host and starts the first round.
func (s *MemoryStore) CreateSession() (*game.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cfg.MaxSessions > 0 && len(s.sessions) >= s.cfg.MaxSessions {
		return nil, ErrTooManySessions
	}

	id := uuid.NewString()
	for _, exists := s.sessions[id]; exists; _, exists = s.sessions[id] {
		id = uuid.NewString()
	}

	s.created++
	opts := s.cfg.Defaults
	opts.DeckIDs = append([]string(nil), s.cfg.Defaults.DeckIDs...)
	opts.Rand = s.sessionRand()
	opts.OnEmpty = s.DeleteSession

	session, err := game.NewSession(id, s.catalog, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.sessions[id] = &entry{session: session, createdAt: s.now()}
	log.Printf("🎲 Created session %s (%d active)", id, len(s.sessions))
	return session, nil
}

// sessionRand gives each session its own source; *rand.Rand is not safe for
// concurrent use. Callers hold s.mu.
func (s *MemoryStore) sessionRand() *rand.Rand {
	if s.cfg.Seed != 0 {
		return rand.New(rand.NewPCG(s.cfg.Seed, s.created))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// FindSession retrieves a session by id
func (s *MemoryStore) FindSession(id string) (*game.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.sessions[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", game.ErrSessionNotFound, id)
	}
	return e.session, nil
}

// DeleteSession forgets a session. Sessions call it themselves once their last player leaves.
func (s *MemoryStore) DeleteSession(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[id]; exists {
		delete(s.sessions, id)
		log.Printf("🗑️ Deleted session %s (%d active)", id, len(s.sessions))
	}
}

// Decks lists every deck in the catalog
func (s *MemoryStore) Decks() []game.Deck {
	return s.catalog.Decks()
}

// Catalog returns the shared card catalog
func (s *MemoryStore) Catalog() *game.Catalog {
	return s.catalog
}

// SessionCount returns the number of live sessions
func (s *MemoryStore) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// ReapIdle deletes sessions older than maxAge that have no players, which
// covers sessions created but never joined. It returns how many were removed.
func (s *MemoryStore) ReapIdle(maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-maxAge)
	reaped := 0
	for id, e := range s.sessions {
		if e.createdAt.After(cutoff) {
			continue
		}
		if e.session.Closed() || len(e.session.Players()) == 0 {
			delete(s.sessions, id)
			reaped++
		}
	}
	if reaped > 0 {
		log.Printf("🧹 Reaped %d idle sessions (%d active)", reaped, len(s.sessions))
	}
	return reaped
}

// RunReaper calls ReapIdle every interval until ctx is done
func (s *MemoryStore) RunReaper(ctx context.Context, interval, maxAge time.Duration) {
	if interval <= 0 || maxAge <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("⚠️ Session reaper stopped: %v", err)
			}
			return
		case <-ticker.C:
			s.ReapIdle(maxAge)
		}
	}
}

var _ game.Registry = (*MemoryStore)(nil)
