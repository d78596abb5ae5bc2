package session

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

var (
	ErrRegistryFull   = errors.New("match registry full")
	ErrAlreadyInMatch = errors.New("player already in another match")
)

// Registry owns every live session and caps how many run at once.
// Creation beyond the cap fails fast.
type Registry struct {
	mu       sync.Mutex
	capacity int
	sessions map[string]*Session
	byPlayer map[string]string
}

func NewRegistry(capacity int) *Registry {
	return &Registry{
		capacity: capacity,
		sessions: make(map[string]*Session),
		byPlayer: make(map[string]string),
	}
}

// Create reserves a slot, mints a match id and stores the session the
// builder returns. The builder runs under the registry lock, so it
// must not call back into the registry.
func (r *Registry) Create(build func(matchID string) (*Session, error)) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sessions) >= r.capacity {
		return nil, ErrRegistryFull
	}
	id := uuid.NewString()
	s, err := build(id)
	if err != nil {
		return nil, err
	}
	r.sessions[id] = s
	return s, nil
}

// Bind points a player id at their match for ForPlayer lookups. A
// player sits in at most one live match, so binding fails while a
// different match still holds them.
func (r *Registry) Bind(matchID, playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.byPlayer[playerID]; ok && prev != matchID {
		if _, live := r.sessions[prev]; live {
			return ErrAlreadyInMatch
		}
	}
	r.byPlayer[playerID] = matchID
	return nil
}

func (r *Registry) Get(matchID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[matchID]
	return s, ok
}

func (r *Registry) ForPlayer(playerID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byPlayer[playerID]
	if !ok {
		return nil, false
	}
	s, ok := r.sessions[id]
	return s, ok
}

// Remove retires a match, cancelling its pending timer. A removed
// match never re-enters any phase.
func (r *Registry) Remove(matchID string) {
	r.mu.Lock()
	s, ok := r.sessions[matchID]
	if ok {
		delete(r.sessions, matchID)
		for pid, mid := range r.byPlayer {
			if mid == matchID {
				delete(r.byPlayer, pid)
			}
		}
	}
	r.mu.Unlock()
	if ok {
		s.Stop()
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
