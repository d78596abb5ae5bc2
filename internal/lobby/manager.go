package lobby

import "sync"

// Manager tracks the waiting rooms by match id.
type Manager struct {
	mu      sync.Mutex
	lobbies map[string]*Lobby
}

func NewManager() *Manager {
	return &Manager{lobbies: make(map[string]*Lobby)}
}

// Create opens a waiting room for the match id.
func (m *Manager) Create(id string) *Lobby {
	m.mu.Lock()
	defer m.mu.Unlock()

	l := NewLobby(id)
	m.lobbies[id] = l
	return l
}

// Get returns a lobby by ID.
func (m *Manager) Get(id string) *Lobby {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lobbies[id]
}

// Remove drops a retired room.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.lobbies, id)
}
