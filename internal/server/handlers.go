package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"hive/internal/engine"
	"hive/internal/integration"
	"hive/internal/lobby"
	"hive/internal/protocol"
	qr "hive/internal/qrcode"
	"hive/internal/session"
	"hive/internal/store"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Config carries everything the HTTP layer needs.
type Config struct {
	Port       int
	MaxMatches int
	FastTimers bool
	Store      *store.Store // nil disables persistence and stats
	Voice      *integration.Service
	Channel    integration.Voice
}

// Handlers holds HTTP handler dependencies.
type Handlers struct {
	mu       sync.Mutex
	cfg      Config
	lobbies  *lobby.Manager
	registry *session.Registry
	reg      *engine.Registry
	catalog  *engine.Catalog
	timing   engine.TimingProfile
	hubs     map[string]*Hub
}

func NewHandlers(cfg Config) (*Handlers, error) {
	reg := engine.DefaultRegistry()
	catalog, err := engine.DefaultCatalog(reg)
	if err != nil {
		return nil, err
	}
	timing := engine.StandardTiming()
	if cfg.FastTimers {
		timing = engine.FastTiming()
	}
	return &Handlers{
		cfg:      cfg,
		lobbies:  lobby.NewManager(),
		registry: session.NewRegistry(cfg.MaxMatches),
		reg:      reg,
		catalog:  catalog,
		timing:   timing,
		hubs:     make(map[string]*Hub),
	}, nil
}

// ToMatch implements session.Emitter.
func (h *Handlers) ToMatch(matchID string, env protocol.Envelope) {
	if hub := h.hub(matchID); hub != nil {
		hub.Broadcast(env)
	}
}

// ToPlayer implements session.Emitter.
func (h *Handlers) ToPlayer(matchID, playerID string, env protocol.Envelope) {
	if hub := h.hub(matchID); hub != nil {
		hub.SendTo(playerID, env)
	}
}

func (h *Handlers) hub(matchID string) *Hub {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hubs[matchID]
}

// HandleCreateMatch opens a new match room and returns its id.
func (h *Handlers) HandleCreateMatch(w http.ResponseWriter, r *http.Request) {
	seed := uint64(time.Now().UnixNano())
	s, err := h.registry.Create(func(matchID string) (*session.Session, error) {
		m := engine.NewMatch(matchID, nil, h.catalog, h.timing, seed)
		return session.New(session.Config{
			Match:     m,
			Reg:       h.reg,
			Emitter:   h,
			Store:     h.cfg.Store,
			Voice:     h.cfg.Voice,
			Channel:   h.cfg.Channel,
			OnRetired: h.retire,
		}), nil
	})
	if errors.Is(err, session.ErrRegistryFull) {
		http.Error(w, "match capacity reached", http.StatusServiceUnavailable)
		return
	}
	if err != nil {
		http.Error(w, "create failed", http.StatusInternalServerError)
		return
	}

	matchID := s.MatchID()
	lob := h.lobbies.Create(matchID)
	hub := NewHub(matchID, lob, s, h)
	h.mu.Lock()
	h.hubs[matchID] = hub
	h.mu.Unlock()
	go hub.Run()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"match_id": matchID})
}

// retire tears a finished match down after its grace period.
func (h *Handlers) retire(matchID string) {
	h.registry.Remove(matchID)
	h.lobbies.Remove(matchID)
	h.mu.Lock()
	hub := h.hubs[matchID]
	delete(h.hubs, matchID)
	h.mu.Unlock()
	if hub != nil {
		hub.Stop()
	}
	log.Printf("match %s retired", matchID)
}

// HandleQR generates a QR code PNG for joining the match.
func (h *Handlers) HandleQR(w http.ResponseWriter, r *http.Request) {
	matchID := r.URL.Query().Get("match")
	if matchID == "" {
		http.Error(w, "missing match parameter", http.StatusBadRequest)
		return
	}
	if _, ok := h.registry.Get(matchID); !ok {
		http.Error(w, "match not found", http.StatusNotFound)
		return
	}
	url := fmt.Sprintf("http://%s/lobby.html?match=%s", r.Host, matchID)
	png, err := qr.Generate(url)
	if err != nil {
		http.Error(w, "QR generation failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

// HandleWS upgrades a connection into a match room.
func (h *Handlers) HandleWS(w http.ResponseWriter, r *http.Request) {
	matchID := r.URL.Query().Get("match")
	playerID := r.URL.Query().Get("player")
	if matchID == "" {
		http.Error(w, "missing match parameter", http.StatusBadRequest)
		return
	}
	hub := h.hub(matchID)
	if hub == nil {
		http.Error(w, "match not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade error: %v", err)
		return
	}

	client := NewClient(hub, conn, playerID)
	hub.register <- client

	go client.WritePump()
	go client.ReadPump()
}

// HandlePlayerID returns a new player ID.
func (h *Handlers) HandlePlayerID(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte(GeneratePlayerID()))
}

// HandleStats returns a player's lifetime record.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	if h.cfg.Store == nil {
		http.Error(w, "stats disabled", http.StatusServiceUnavailable)
		return
	}
	playerID := r.URL.Query().Get("player")
	if playerID == "" {
		http.Error(w, "missing player parameter", http.StatusBadRequest)
		return
	}
	st, err := h.cfg.Store.Stats(playerID)
	if errors.Is(err, sql.ErrNoRows) {
		http.Error(w, "no matches on record", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "stats lookup failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(st)
}

// GeneratePlayerID creates a unique player ID.
func GeneratePlayerID() string {
	return uuid.NewString()
}
