package lobby

import (
	"fmt"
	"sync"
)

// Seat bounds for a match. The smallest hive that still hides a wasp
// is four; above fifteen the night report stops being readable.
const (
	MinPlayers = 4
	MaxPlayers = 15
)

// PlayerInfo holds lobby-level player information.
type PlayerInfo struct {
	ID    string
	Name  string
	Ready bool
	Bot   bool
}

// Lobby is a match waiting room. The first human to join becomes the
// host and keeps the privileged debug commands once the match starts.
type Lobby struct {
	mu      sync.Mutex
	ID      string
	players []*PlayerInfo
	hostID  string
	Started bool
}

// NewLobby creates a waiting room for the given match id.
func NewLobby(id string) *Lobby {
	return &Lobby{ID: id}
}

// Join adds a player. Joining again with the same id is a reconnect
// and only updates the name.
func (l *Lobby) Join(id, name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.Started {
		return fmt.Errorf("match already started")
	}
	for _, p := range l.players {
		if p.ID == id {
			p.Name = name
			return nil
		}
	}
	if len(l.players) >= MaxPlayers {
		return fmt.Errorf("lobby is full")
	}
	l.players = append(l.players, &PlayerInfo{ID: id, Name: name})
	if l.hostID == "" {
		l.hostID = id
	}
	return nil
}

// AddBot seats a computer player. Bots are always ready.
func (l *Lobby) AddBot(id, name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.Started {
		return fmt.Errorf("match already started")
	}
	if len(l.players) >= MaxPlayers {
		return fmt.Errorf("lobby is full")
	}
	l.players = append(l.players, &PlayerInfo{ID: id, Name: name, Ready: true, Bot: true})
	return nil
}

// Leave removes a player. A departing host hands the room to the next
// human in join order.
func (l *Lobby) Leave(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, p := range l.players {
		if p.ID == id {
			l.players = append(l.players[:i], l.players[i+1:]...)
			break
		}
	}
	if l.hostID != id {
		return
	}
	l.hostID = ""
	for _, p := range l.players {
		if !p.Bot {
			l.hostID = p.ID
			return
		}
	}
}

// SetReady toggles a player's ready state.
func (l *Lobby) SetReady(id string, ready bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, p := range l.players {
		if p.ID == id && !p.Bot {
			p.Ready = ready
			return
		}
	}
}

// Host returns the current host's player id.
func (l *Lobby) Host() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.hostID
}

// CanStart reports whether the room is full enough and everyone is ready.
func (l *Lobby) CanStart() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.players) < MinPlayers {
		return false
	}
	for _, p := range l.players {
		if !p.Ready {
			return false
		}
	}
	return true
}

// Start marks the lobby as started.
func (l *Lobby) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.Started {
		return fmt.Errorf("already started")
	}
	if len(l.players) < MinPlayers {
		return fmt.Errorf("not enough players")
	}
	l.Started = true
	return nil
}

// GetPlayers returns a copy of the player list in join order.
func (l *Lobby) GetPlayers() []PlayerInfo {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]PlayerInfo, len(l.players))
	for i, p := range l.players {
		out[i] = *p
	}
	return out
}
