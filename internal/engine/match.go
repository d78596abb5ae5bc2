package engine

import (
	"errors"
	"math/rand/v2"
	"time"
)

var (
	ErrUnknownAbility = errors.New("unknown ability")
	ErrUnknownRole    = errors.New("unknown role")
	ErrWrongPhase     = errors.New("not accepted in this phase")
	ErrPhaseClosed    = errors.New("phase already closed")
	ErrNotAlive       = errors.New("player is not alive")
	ErrNotInMatch     = errors.New("player not in match")
	ErrMissingTarget  = errors.New("ability requires a target")
	ErrInvalidTarget  = errors.New("invalid target")
	ErrNoCharges      = errors.New("no charges left")
	ErrPassiveAbility = errors.New("passive ability cannot be submitted")
	ErrBadPreset      = errors.New("bad preset")
)

// Action is a submitted use of an ability during a night or dusk window.
type Action struct {
	Actor   string
	Ability AbilityID
	Target  string
	Target2 string
}

// delayedEffect is a poison or pollination waiting to mature.
type delayedEffect struct {
	Source       string
	AppliedNight int
	Delay        int
}

// Match holds the full authoritative state of one game. It is not safe
// for concurrent use; the session layer serializes access.
type Match struct {
	ID      string
	Phase   Phase
	Night   int
	Players []*Player
	Timing  TimingProfile

	// Privileged player ids may use debug operations.
	Privileged map[string]bool

	StartedAt time.Time

	rng     *rand.Rand
	catalog *Catalog

	actions     map[string]Action
	actionOrder []string
	actionsOpen bool

	votes     map[string]string
	voteOrder []string
	votesOpen bool

	// visits is the per-night visit ledger, written before resolution
	// so watchers and trackers see visits to players who die.
	visits map[string][]string

	poison      map[string]*delayedEffect
	pollination map[string]*delayedEffect

	roleblocked map[string]bool
	jailed      map[string]bool
	muted       map[string]bool

	// prisoners maps jailer id to the prisoner locked up tonight.
	prisoners map[string]string

	// duskActions carries dusk submissions that resolve with the night
	// pipeline, such as duels.
	duskActions []Action
}

// NewMatch seats the players and starts in the waiting phase. The seed
// fixes every random draw the match will make.
func NewMatch(id string, players []*Player, catalog *Catalog, timing TimingProfile, seed uint64) *Match {
	return &Match{
		ID:          id,
		Phase:       PhaseWaiting,
		Players:     players,
		Timing:      timing,
		Privileged:  make(map[string]bool),
		StartedAt:   time.Now(),
		rng:         rand.New(rand.NewPCG(seed, seed)),
		catalog:     catalog,
		actions:     make(map[string]Action),
		votes:       make(map[string]string),
		visits:      make(map[string][]string),
		poison:      make(map[string]*delayedEffect),
		pollination: make(map[string]*delayedEffect),
		roleblocked: make(map[string]bool),
		jailed:      make(map[string]bool),
		muted:       make(map[string]bool),
		prisoners:   make(map[string]string),
	}
}

// Player finds a seated player by id.
func (m *Match) Player(id string) (*Player, bool) {
	for _, p := range m.Players {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// Alive returns the living players in seat order.
func (m *Match) Alive() []*Player {
	var out []*Player
	for _, p := range m.Players {
		if p.Alive {
			out = append(out, p)
		}
	}
	return out
}

// IsMuted reports whether the player lost their voice tonight.
func (m *Match) IsMuted(id string) bool { return m.muted[id] }

// IsJailed reports whether the player is confined tonight.
func (m *Match) IsJailed(id string) bool { return m.jailed[id] }

// Prisoner returns the player the jailer confined tonight, if any.
func (m *Match) Prisoner(jailer string) (string, bool) {
	id, ok := m.prisoners[jailer]
	return id, ok
}

// DuskRolesAlive reports whether any living player holds a dusk ability,
// which decides whether the cycle includes a dusk window.
func (m *Match) DuskRolesAlive() bool {
	for _, p := range m.Players {
		if p.Alive && p.Role.HasDuskAbility() {
			return true
		}
	}
	return false
}

// SubmitAction validates and records an ability use. Resubmitting
// overwrites the previous action and refunds its charge.
func (m *Match) SubmitAction(a Action) error {
	if m.Phase != PhaseNight && m.Phase != PhaseDusk {
		return ErrWrongPhase
	}
	if !m.actionsOpen {
		return ErrPhaseClosed
	}
	actor, ok := m.Player(a.Actor)
	if !ok {
		return ErrNotInMatch
	}
	if !actor.Alive {
		return ErrNotAlive
	}
	grant, ok := actor.Grant(a.Ability)
	if !ok {
		return ErrUnknownAbility
	}
	if grant.Passive {
		return ErrPassiveAbility
	}
	if grant.SubmitPhase() != m.Phase {
		return ErrWrongPhase
	}
	if m.jailed[a.Actor] && grant.SubmitPhase() == PhaseNight {
		return ErrWrongPhase
	}
	if err := m.checkTargets(actor, grant, a); err != nil {
		return err
	}
	if !actor.CanUse(a.Ability) {
		return ErrNoCharges
	}
	if prev, ok := m.actions[a.Actor]; ok {
		actor.Refund(prev.Ability)
	} else {
		m.actionOrder = append(m.actionOrder, a.Actor)
	}
	actor.Consume(a.Ability)
	m.actions[a.Actor] = a
	return nil
}

func (m *Match) checkTargets(actor *Player, grant AbilityGrant, a Action) error {
	switch grant.Shape {
	case ShapeNone, ShapeSelf:
		return nil
	case ShapeSingle:
		return m.checkTarget(actor, grant, a.Target)
	case ShapeDouble:
		if err := m.checkTarget(actor, grant, a.Target); err != nil {
			return err
		}
		if a.Target2 == "" {
			return ErrMissingTarget
		}
		if a.Target2 == a.Target {
			return ErrInvalidTarget
		}
		return m.checkTarget(actor, grant, a.Target2)
	case ShapeDead:
		if a.Target == "" {
			return ErrMissingTarget
		}
		t, ok := m.Player(a.Target)
		if !ok || t.Alive {
			return ErrInvalidTarget
		}
		return nil
	}
	return nil
}

func (m *Match) checkTarget(actor *Player, grant AbilityGrant, target string) error {
	if target == "" {
		return ErrMissingTarget
	}
	t, ok := m.Player(target)
	if !ok || !t.Alive {
		return ErrInvalidTarget
	}
	if t.ID == actor.ID && !selfTargetAllowed(grant.Category) {
		return ErrInvalidTarget
	}
	return nil
}

// Healers and guards may cover themselves; everything else targets others.
func selfTargetAllowed(c Category) bool {
	return c == CategoryHeal || c == CategoryProtect
}

// ValidTargets lists the ids the player may aim the ability at.
func (m *Match) ValidTargets(actorID string, id AbilityID) []string {
	actor, ok := m.Player(actorID)
	if !ok {
		return nil
	}
	grant, ok := actor.Grant(id)
	if !ok {
		return nil
	}
	var out []string
	switch grant.Shape {
	case ShapeNone, ShapeSelf:
		return nil
	case ShapeDead:
		for _, p := range m.Players {
			if !p.Alive {
				out = append(out, p.ID)
			}
		}
	default:
		for _, p := range m.Players {
			if !p.Alive {
				continue
			}
			if p.ID == actorID && !selfTargetAllowed(grant.Category) {
				continue
			}
			out = append(out, p.ID)
		}
	}
	return out
}

// SubmitVote records a day vote. An empty target is a skip.
func (m *Match) SubmitVote(voter, target string) error {
	if m.Phase != PhaseVoting {
		return ErrWrongPhase
	}
	if !m.votesOpen {
		return ErrPhaseClosed
	}
	p, ok := m.Player(voter)
	if !ok {
		return ErrNotInMatch
	}
	if !p.Alive {
		return ErrNotAlive
	}
	if target != "" {
		t, ok := m.Player(target)
		if !ok || !t.Alive {
			return ErrInvalidTarget
		}
	}
	if _, ok := m.votes[voter]; !ok {
		m.voteOrder = append(m.voteOrder, voter)
	}
	m.votes[voter] = target
	return nil
}

// OpenActions opens the submission window for the current phase.
func (m *Match) OpenActions() { m.actionsOpen = true }

// CloseActions snapshots submitted actions in submission order and
// clears the window. Late submissions fail with ErrPhaseClosed.
func (m *Match) CloseActions() []Action {
	m.actionsOpen = false
	out := make([]Action, 0, len(m.actionOrder))
	for _, id := range m.actionOrder {
		out = append(out, m.actions[id])
	}
	m.actions = make(map[string]Action)
	m.actionOrder = nil
	return out
}

// OpenVotes opens the voting window.
func (m *Match) OpenVotes() { m.votesOpen = true }

// CloseVotes snapshots votes in submission order and clears the window.
func (m *Match) CloseVotes() []Vote {
	m.votesOpen = false
	out := make([]Vote, 0, len(m.voteOrder))
	for _, id := range m.voteOrder {
		out = append(out, Vote{Voter: id, Target: m.votes[id]})
	}
	m.votes = make(map[string]string)
	m.voteOrder = nil
	return out
}

// BeginNight advances the night counter and clears per-night state.
// Dusk actions already submitted are resolved into jail assignments so
// confinement takes effect before any night action.
func (m *Match) BeginNight(duskActions []Action) {
	m.Night++
	m.visits = make(map[string][]string)
	m.roleblocked = make(map[string]bool)
	m.muted = make(map[string]bool)
	m.jailed = make(map[string]bool)
	m.prisoners = make(map[string]string)
	m.duskActions = nil

	for _, a := range duskActions {
		actor, ok := m.Player(a.Actor)
		if !ok || !actor.Alive {
			continue
		}
		grant, ok := actor.Grant(a.Ability)
		if !ok {
			continue
		}
		target, ok := m.Player(a.Target)
		if !ok || !target.Alive {
			continue
		}
		if grant.Category == CategoryJail {
			m.jailed[target.ID] = true
			m.prisoners[actor.ID] = target.ID
			continue
		}
		m.duskActions = append(m.duskActions, a)
	}
}
