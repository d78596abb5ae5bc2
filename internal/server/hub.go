package server

import (
	"encoding/json"
	"errors"
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"hive/internal/bot"
	"hive/internal/engine"
	"hive/internal/lobby"
	"hive/internal/protocol"
	"hive/internal/session"
)

// Hub manages the WebSocket connections of one match room.
type Hub struct {
	mu         sync.Mutex
	matchID    string
	lobby      *lobby.Lobby
	session    *session.Session
	deps       *Handlers
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	incoming   chan IncomingMessage
	quit       chan struct{}
}

func NewHub(matchID string, lob *lobby.Lobby, sess *session.Session, deps *Handlers) *Hub {
	return &Hub{
		matchID:    matchID,
		lobby:      lob,
		session:    sess,
		deps:       deps,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		incoming:   make(chan IncomingMessage, 256),
		quit:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.sendLobbyUpdate()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case msg := <-h.incoming:
			h.handleMessage(msg)

		case <-h.quit:
			return
		}
	}
}

// Stop shuts the hub loop down.
func (h *Hub) Stop() {
	close(h.quit)
}

func (h *Hub) handleMessage(msg IncomingMessage) {
	switch msg.Envelope.Type {
	case protocol.MsgJoin:
		h.handleJoin(msg)
	case protocol.MsgReady:
		h.handleReady(msg)
	case protocol.MsgAddBot:
		h.handleAddBot(msg)
	case protocol.MsgStartMatch:
		h.handleStartMatch(msg)
	case protocol.MsgSubmitAction:
		h.handleSubmitAction(msg)
	case protocol.MsgVote:
		h.handleVote(msg)
	case protocol.MsgSendChat:
		h.handleChat(msg)
	case protocol.MsgDebugSkipPhase:
		h.reportErr(msg.Client, h.session.SkipPhase(msg.Client.PlayerID))
	case protocol.MsgDebugRevealRoles:
		h.reportErr(msg.Client, h.session.RevealRoles(msg.Client.PlayerID))
	case protocol.MsgDebugForceWin:
		h.handleForceWin(msg)
	default:
		h.sendError(msg.Client, "unknown message type")
	}
}

func (h *Hub) handleJoin(msg IncomingMessage) {
	var join protocol.JoinMsg
	if err := msg.Envelope.Decode(&join); err != nil {
		h.sendError(msg.Client, "invalid join message")
		return
	}
	msg.Client.PlayerID = join.PlayerID
	if err := h.lobby.Join(join.PlayerID, join.Name); err != nil {
		h.sendError(msg.Client, err.Error())
		return
	}
	if err := h.deps.registry.Bind(h.matchID, join.PlayerID); err != nil {
		h.lobby.Leave(join.PlayerID)
		h.sendError(msg.Client, err.Error())
		return
	}
	h.sendLobbyUpdate()
}

func (h *Hub) handleReady(msg IncomingMessage) {
	var ready protocol.ReadyMsg
	if err := msg.Envelope.Decode(&ready); err != nil {
		h.sendError(msg.Client, "invalid ready message")
		return
	}
	h.lobby.SetReady(msg.Client.PlayerID, ready.Ready)
	h.sendLobbyUpdate()
}

func (h *Hub) handleAddBot(msg IncomingMessage) {
	if msg.Client.PlayerID != h.lobby.Host() {
		h.sendError(msg.Client, "only the host seats bots")
		return
	}
	id := "bot-" + GeneratePlayerID()
	if err := h.lobby.AddBot(id, "Drone "+id[len(id)-4:]); err != nil {
		h.sendError(msg.Client, err.Error())
		return
	}
	h.sendLobbyUpdate()
}

func (h *Hub) handleStartMatch(msg IncomingMessage) {
	if msg.Client.PlayerID != h.lobby.Host() {
		h.sendError(msg.Client, "only the host starts the match")
		return
	}
	if !h.lobby.CanStart() {
		h.sendError(msg.Client, "not all players ready")
		return
	}
	if err := h.lobby.Start(); err != nil {
		h.sendError(msg.Client, err.Error())
		return
	}

	lps := h.lobby.GetPlayers()
	keys, err := engine.DefaultPreset(len(lps))
	if err != nil {
		h.sendError(msg.Client, err.Error())
		return
	}
	seats := make([]engine.Seat, len(lps))
	for i, lp := range lps {
		seats[i] = engine.Seat{ID: lp.ID, Name: lp.Name}
	}
	seed := uint64(time.Now().UnixNano())
	rng := rand.New(rand.NewPCG(seed, seed))
	players, err := engine.AssignRoles(h.deps.catalog, keys, seats, rng)
	if err != nil {
		h.sendError(msg.Client, err.Error())
		return
	}

	bots := make(map[string]bot.Strategy)
	for i, lp := range lps {
		if lp.Bot {
			bots[lp.ID] = bot.NewHeuristic(seed + uint64(i) + 1)
		}
	}

	if err := h.session.Begin(players, bots, h.lobby.Host()); err != nil {
		h.sendError(msg.Client, err.Error())
		return
	}
	h.sendLobbyUpdate()
	log.Printf("match %s started with %d players (%d bots)", h.matchID, len(lps), len(bots))
}

func (h *Hub) handleSubmitAction(msg IncomingMessage) {
	var sub protocol.SubmitActionMsg
	if err := msg.Envelope.Decode(&sub); err != nil {
		h.sendError(msg.Client, "invalid action message")
		return
	}
	h.reportErr(msg.Client, h.session.SubmitAction(engine.Action{
		Actor:   msg.Client.PlayerID,
		Ability: engine.AbilityID(sub.Ability),
		Target:  sub.Target,
		Target2: sub.Target2,
	}))
}

func (h *Hub) handleVote(msg IncomingMessage) {
	var vote protocol.VoteMsg
	if err := msg.Envelope.Decode(&vote); err != nil {
		h.sendError(msg.Client, "invalid vote message")
		return
	}
	h.reportErr(msg.Client, h.session.SubmitVote(msg.Client.PlayerID, vote.Target))
}

func (h *Hub) handleChat(msg IncomingMessage) {
	var chat protocol.ChatMsg
	if err := msg.Envelope.Decode(&chat); err != nil {
		h.sendError(msg.Client, "invalid chat message")
		return
	}
	h.session.Chat(msg.Client.PlayerID, chat.Text)
}

func (h *Hub) handleForceWin(msg IncomingMessage) {
	var force protocol.DebugForceWinMsg
	if err := msg.Envelope.Decode(&force); err != nil {
		h.sendError(msg.Client, "invalid force win message")
		return
	}
	h.reportErr(msg.Client, h.session.ForceWin(msg.Client.PlayerID, force.Winner))
}

func (h *Hub) reportErr(client *Client, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, session.ErrNotPrivileged) {
		log.Printf("match %s: %s tried a privileged command", h.matchID, client.PlayerID)
	}
	h.sendError(client, err.Error())
}

func (h *Hub) sendLobbyUpdate() {
	players := h.lobby.GetPlayers()
	lps := make([]protocol.LobbyPlayer, len(players))
	for i, p := range players {
		lps[i] = protocol.LobbyPlayer{ID: p.ID, Name: p.Name, Ready: p.Ready, Bot: p.Bot}
	}
	env := protocol.MustEnvelope(protocol.MsgLobbyUpdate, protocol.LobbyUpdate{
		MatchID: h.matchID,
		Players: lps,
		Started: h.lobby.Started,
	})
	h.Broadcast(env)
}

// Broadcast fans an envelope out to every connection in the room.
func (h *Hub) Broadcast(env protocol.Envelope) {
	h.mu.Lock()
	defer h.mu.Unlock()

	data, err := json.Marshal(env)
	if err != nil {
		log.Printf("broadcast marshal error: %v", err)
		return
	}
	for client := range h.clients {
		select {
		case client.send <- data:
		default:
			log.Printf("client %s buffer full", client.PlayerID)
		}
	}
}

// SendTo delivers an envelope to one player's connections.
func (h *Hub) SendTo(playerID string, env protocol.Envelope) {
	h.mu.Lock()
	defer h.mu.Unlock()

	data, err := json.Marshal(env)
	if err != nil {
		log.Printf("send marshal error: %v", err)
		return
	}
	for client := range h.clients {
		if client.PlayerID != playerID {
			continue
		}
		select {
		case client.send <- data:
		default:
			log.Printf("client %s buffer full", client.PlayerID)
		}
	}
}

func (h *Hub) sendError(client *Client, message string) {
	env := protocol.MustEnvelope(protocol.MsgError, protocol.ErrorMsg{Message: message})
	client.SendEnvelope(env)
}
