// Package session drives a match through its phase cycle. Each session
// owns exactly one engine.Match; all mutation funnels through the
// session mutex, and only the phase timer and privileged debug commands
// may advance phases.
package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"hive/internal/bot"
	"hive/internal/engine"
	"hive/internal/integration"
	"hive/internal/protocol"
	"hive/internal/store"
)

var (
	ErrNotPrivileged = errors.New("not a privileged player")
	ErrFinished      = errors.New("match already finished")
	ErrStarted       = errors.New("match already started")
)

// Emitter delivers envelopes to clients. The server's hub implements
// it; tests use a recorder.
type Emitter interface {
	ToMatch(matchID string, e protocol.Envelope)
	ToPlayer(matchID, playerID string, e protocol.Envelope)
}

// Config wires a session's collaborators.
type Config struct {
	Match   *engine.Match
	Reg     *engine.Registry
	Emitter Emitter
	Store   *store.Store // nil disables persistence
	Voice   *integration.Service
	Channel integration.Voice // nil disables voice-channel muting
	Bots    map[string]bot.Strategy
	// OnRetired runs once after the post-game grace period.
	OnRetired func(matchID string)
}

// Session is the single mutation timeline for one match.
type Session struct {
	mu sync.Mutex

	match   *engine.Match
	reg     *engine.Registry
	emitter Emitter
	store   *store.Store
	voice   *integration.Service
	channel integration.Voice
	bots    map[string]bot.Strategy
	retired func(matchID string)

	timer    *time.Timer
	timerGen int
}

func New(cfg Config) *Session {
	return &Session{
		match:   cfg.Match,
		reg:     cfg.Reg,
		emitter: cfg.Emitter,
		store:   cfg.Store,
		voice:   cfg.Voice,
		channel: cfg.Channel,
		bots:    cfg.Bots,
		retired: cfg.OnRetired,
	}
}

func (s *Session) MatchID() string { return s.match.ID }

// Match exposes the underlying match for read-only callers. The server
// uses it to answer state queries; writers go through Submit methods.
func (s *Session) Match() *engine.Match { return s.match }

// Start moves the match out of the waiting room.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.match.Phase != engine.PhaseWaiting {
		return
	}
	s.enterPhase(engine.PhaseStarting)
}

// Begin seats the dealt players, grants the host debug rights, wires up
// any bots and leaves the waiting room. Matches created through the
// server start here; Start is for pre-seated matches.
func (s *Session) Begin(players []*engine.Player, bots map[string]bot.Strategy, hostID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.match.Phase != engine.PhaseWaiting {
		return ErrStarted
	}
	s.match.Players = players
	s.bots = bots
	if hostID != "" {
		s.match.Privileged[hostID] = true
	}
	s.enterPhase(engine.PhaseStarting)
	return nil
}

// SubmitAction validates and records a player's ability use.
func (s *Session) SubmitAction(a engine.Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.match.SubmitAction(a); err != nil {
		return err
	}
	s.emitter.ToPlayer(s.match.ID, a.Actor,
		protocol.MustEnvelope(protocol.MsgActionAccepted, nil))
	return nil
}

// SubmitVote records a ballot and broadcasts the running tally.
func (s *Session) SubmitVote(voter, target string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.match.SubmitVote(voter, target); err != nil {
		return err
	}
	tally, skips := s.match.Tally()
	s.emitter.ToMatch(s.match.ID,
		protocol.MustEnvelope(protocol.MsgVoteUpdate, protocol.VoteUpdate{Tally: tally, Skips: skips}))
	return nil
}

// SkipPhase lets a privileged player cut the current timer short.
func (s *Session) SkipPhase(playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.match.Privileged[playerID] {
		return ErrNotPrivileged
	}
	if s.match.Phase == engine.PhaseFinished {
		return ErrFinished
	}
	s.advanceLocked()
	return nil
}

// ForceWin hands the match to a faction immediately.
func (s *Session) ForceWin(playerID, winner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.match.Privileged[playerID] {
		return ErrNotPrivileged
	}
	if s.match.Phase == engine.PhaseFinished {
		return ErrFinished
	}
	s.finish(engine.Verdict{Over: true, Winner: winner, Winners: s.match.WinnersOf(winner)})
	return nil
}

// RevealRoles sends the full role map to one privileged player.
func (s *Session) RevealRoles(playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.match.Privileged[playerID] {
		return ErrNotPrivileged
	}
	s.emitter.ToPlayer(s.match.ID, playerID,
		protocol.MustEnvelope(protocol.MsgRolesRevealed, protocol.RolesRevealed{Roles: s.roleMap()}))
	return nil
}

// Stop cancels any pending timer. A stopped session never advances
// again, even if the timer already fired and is waiting on the lock.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timerGen++
	if s.timer != nil {
		s.timer.Stop()
	}
}

// advance is the timer callback. A stale generation token means the
// phase already moved on, so the late fire is a no-op.
func (s *Session) advance(gen int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.timerGen {
		return
	}
	s.advanceLocked()
}

func (s *Session) advanceLocked() {
	switch s.match.Phase {
	case engine.PhaseStarting:
		s.enterPhase(engine.PhaseSetup)
	case engine.PhaseSetup:
		s.enterNightCycle()
	case engine.PhaseDusk:
		s.match.BeginNight(s.match.CloseActions())
		s.enterPhase(engine.PhaseNight)
	case engine.PhaseNight:
		s.resolveNight()
	case engine.PhaseDay:
		s.enterPhase(engine.PhaseVoting)
	case engine.PhaseVoting:
		s.resolveVotes()
	case engine.PhaseWaiting, engine.PhaseFinished:
		// nothing to drive
	default:
		// An unknown phase means the state machine broke; abort
		// rather than wedge the room.
		log.Printf("session %s: cannot advance from %s, aborting", s.match.ID, s.match.Phase)
		s.finish(engine.Verdict{Over: true, Winner: engine.WinnerAborted})
	}
}

// syncVoice reconciles the external voice channel with who may speak:
// the dead and the hushed get muted, everyone else unmuted.
func (s *Session) syncVoice() {
	if s.channel == nil {
		return
	}
	var mute, unmute []string
	for _, p := range s.match.Players {
		if !p.Alive || s.match.IsMuted(p.ID) {
			mute = append(mute, p.ID)
		} else {
			unmute = append(unmute, p.ID)
		}
	}
	ch, matchID := s.channel, s.match.ID
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, id := range mute {
			if err := ch.Mute(ctx, id); err != nil {
				log.Printf("session %s: voice mute %s: %v", matchID, id, err)
			}
		}
		for _, id := range unmute {
			if err := ch.Unmute(ctx, id); err != nil {
				log.Printf("session %s: voice unmute %s: %v", matchID, id, err)
			}
		}
	}()
}

// enterNightCycle opens dusk when someone alive still has a dusk
// ability, otherwise goes straight to night.
func (s *Session) enterNightCycle() {
	if s.match.DuskRolesAlive() {
		s.enterPhase(engine.PhaseDusk)
		return
	}
	s.match.BeginNight(nil)
	s.enterPhase(engine.PhaseNight)
}

func (s *Session) enterPhase(p engine.Phase) {
	m := s.match
	m.Phase = p
	d := m.Timing.For(p)

	s.emitter.ToMatch(m.ID, protocol.MustEnvelope(protocol.MsgPhaseChanged, protocol.PhaseChanged{
		Phase:   p.String(),
		Night:   m.Night,
		Seconds: int(d / time.Second),
	}))

	switch p {
	case engine.PhaseSetup:
		s.sendRoleCards()
	case engine.PhaseDusk, engine.PhaseNight:
		m.OpenActions()
		s.sendPrompts(p)
		s.runBotActions(p)
	case engine.PhaseVoting:
		m.OpenVotes()
		s.runBotVotes()
	}

	s.schedule(d)
}

func (s *Session) schedule(d time.Duration) {
	s.timerGen++
	gen := s.timerGen
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(d, func() { s.advance(gen) })
}

func (s *Session) sendRoleCards() {
	for _, p := range s.match.Players {
		info := protocol.RoleInfo{
			Role:     p.Role.Key,
			Name:     p.Role.Name,
			Team:     string(p.Role.Team),
			LinkedID: p.LinkedID,
			WardID:   p.WardID,
		}
		for _, g := range p.Role.Abilities {
			info.Abilities = append(info.Abilities, string(g.ID))
		}
		s.emitter.ToPlayer(s.match.ID, p.ID,
			protocol.MustEnvelope(protocol.MsgRoleInfo, info))
	}
}

func (s *Session) sendPrompts(phase engine.Phase) {
	for _, p := range s.match.Players {
		if !p.Alive || s.match.IsJailed(p.ID) {
			continue
		}
		for _, g := range p.Role.Abilities {
			if g.Passive || g.SubmitPhase() != phase || !p.CanUse(g.ID) {
				continue
			}
			cfg := engine.Config{Charges: p.ChargesLeft(g.ID)}
			s.emitter.ToPlayer(s.match.ID, p.ID,
				protocol.MustEnvelope(protocol.MsgPrompt, protocol.Prompt{
					Ability:     string(g.ID),
					Instruction: s.reg.Instruction(g.ID, cfg),
					Targets:     s.match.ValidTargets(p.ID, g.ID),
				}))
		}
	}
}

func (s *Session) resolveNight() {
	m := s.match
	out := m.ResolveNight(m.CloseActions())

	results := protocol.NightResults{Night: m.Night}
	for _, d := range out.Deaths {
		results.Deaths = append(results.Deaths, protocol.DeathEntry{
			PlayerID: d.PlayerID,
			Reason:   d.Reason,
			Role:     d.Role,
			Cleaned:  d.Cleaned,
		})
	}
	s.emitter.ToMatch(m.ID, protocol.MustEnvelope(protocol.MsgNightResults, results))
	s.syncVoice()

	for _, r := range out.Investigations {
		s.emitter.ToPlayer(m.ID, r.PlayerID,
			protocol.MustEnvelope(protocol.MsgInvestigationResult, protocol.Investigation{
				Ability: string(r.Ability),
				Target:  r.Target,
				Verdict: r.Verdict,
				Names:   r.Names,
			}))
	}

	if v := m.EvaluateWin(); v.Over {
		s.finish(v)
		return
	}
	s.enterPhase(engine.PhaseDay)
}

func (s *Session) resolveVotes() {
	m := s.match
	out := m.ResolveVotes(m.CloseVotes())

	lynched := protocol.PlayerLynched{Tally: out.Tally}
	if out.Eliminated != "" {
		lynched.PlayerID = out.Eliminated
		if p, ok := m.Player(out.Eliminated); ok {
			lynched.Role = p.Role.Key
			lynched.Team = string(p.Role.Team)
		}
	}
	s.emitter.ToMatch(m.ID, protocol.MustEnvelope(protocol.MsgPlayerLynched, lynched))
	s.syncVoice()

	if v := m.EvaluateWin(); v.Over {
		s.finish(v)
		return
	}
	s.enterNightCycle()
}

func (s *Session) finish(v engine.Verdict) {
	m := s.match
	m.Phase = engine.PhaseFinished
	s.timerGen++
	if s.timer != nil {
		s.timer.Stop()
	}

	s.emitter.ToMatch(m.ID, protocol.MustEnvelope(protocol.MsgGameEnded, protocol.GameEnded{
		Winner:  v.Winner,
		Winners: v.Winners,
		Roles:   s.roleMap(),
	}))

	if s.store != nil {
		rec := buildRecord(m, v)
		go func() {
			if err := s.store.SaveMatch(rec); err != nil {
				log.Printf("session %s: save match: %v", m.ID, err)
			}
		}()
	}

	if s.channel != nil {
		ch := s.channel
		ids := make([]string, 0, len(m.Players))
		for _, p := range m.Players {
			ids = append(ids, p.ID)
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			for _, id := range ids {
				if err := ch.Unmute(ctx, id); err != nil {
					log.Printf("session %s: voice unmute %s: %v", m.ID, id, err)
				}
			}
		}()
	}

	if s.retired != nil {
		retired := s.retired
		id := m.ID
		time.AfterFunc(m.Timing.Grace, func() { retired(id) })
	}
}

func (s *Session) roleMap() map[string]string {
	roles := make(map[string]string, len(s.match.Players))
	for _, p := range s.match.Players {
		roles[p.ID] = p.Role.Key
	}
	return roles
}

func buildRecord(m *engine.Match, v engine.Verdict) store.MatchRecord {
	won := make(map[string]bool, len(v.Winners))
	for _, id := range v.Winners {
		won[id] = true
	}
	rec := store.MatchRecord{
		ID:         m.ID,
		Winner:     v.Winner,
		Nights:     m.Night,
		FinishedAt: time.Now().UTC(),
	}
	for _, p := range m.Players {
		rec.Players = append(rec.Players, store.PlayerResult{
			PlayerID: p.ID,
			Name:     p.Name,
			Role:     p.Role.Key,
			Team:     string(p.Role.Team),
			Survived: p.Alive,
			Won:      won[p.ID],
		})
	}
	return rec
}

// Chat routes table talk. Living, unsilenced players during the day
// speak plainly; the dead and the hushed go through the hive voice.
func (s *Session) Chat(playerID, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.match.Player(playerID)
	if !ok {
		return
	}
	msg := protocol.ChatMsg{PlayerID: playerID, Text: text}
	if !p.Alive || s.match.IsMuted(playerID) {
		if s.voice == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		translated, err := s.voice.Translate(ctx, text)
		cancel()
		if err != nil {
			log.Printf("session %s: hive voice: %v", s.match.ID, err)
			return
		}
		msg.Text = ""
		msg.Translated = translated
	}
	s.emitter.ToMatch(s.match.ID, protocol.MustEnvelope(protocol.MsgChat, msg))
}

func (s *Session) runBotActions(phase engine.Phase) {
	// Seat order keeps bot submissions reproducible.
	for _, p := range s.match.Players {
		strat, ok := s.bots[p.ID]
		if !ok || !p.Alive || s.match.IsJailed(p.ID) {
			continue
		}
		a, ok := strat.Act(s.botView(p, phase))
		if !ok {
			continue
		}
		if err := s.match.SubmitAction(a); err != nil {
			log.Printf("session %s: bot %s: %v", s.match.ID, p.ID, err)
		}
	}
}

func (s *Session) runBotVotes() {
	for _, p := range s.match.Players {
		strat, ok := s.bots[p.ID]
		if !ok || !p.Alive {
			continue
		}
		target, ok := strat.Vote(s.botView(p, engine.PhaseVoting))
		if !ok {
			continue
		}
		if err := s.match.SubmitVote(p.ID, target); err != nil {
			log.Printf("session %s: bot %s vote: %v", s.match.ID, p.ID, err)
		}
	}
}

func (s *Session) botView(p *engine.Player, phase engine.Phase) bot.View {
	v := bot.View{
		Phase:   phase,
		Night:   s.match.Night,
		Self:    p,
		Targets: make(map[engine.AbilityID][]string),
	}
	for _, q := range s.match.Alive() {
		v.Alive = append(v.Alive, q.ID)
	}
	for _, g := range p.Role.Abilities {
		if !g.Passive && g.SubmitPhase() == phase {
			v.Targets[g.ID] = s.match.ValidTargets(p.ID, g.ID)
		}
	}
	return v
}
