package engine

// Faction labels used by the win evaluator and the client UI.
const (
	FactionBee        = "bees"
	FactionWasp       = "wasps"
	FactionPollinated = "pollinated"
	FactionNeutral    = "neutral"
)

// Player is a seated participant with live match state layered over a
// role definition. Charges are tracked per ability so limited and
// unlimited grants share one code path.
type Player struct {
	ID   string
	Name string
	Role *RoleDefinition

	Alive     bool
	Converted bool

	// AppearsAs overrides the role shown to investigators while a
	// disguise or mimic effect is active. Empty means no override.
	AppearsAs string

	// LinkedID and WardID carry personal win-condition wiring.
	LinkedID string
	WardID   string

	charges map[AbilityID]Config
}

// NewPlayer seats a player with fresh charges copied from the role grants.
func NewPlayer(id, name string, role *RoleDefinition) *Player {
	p := &Player{
		ID:      id,
		Name:    name,
		Role:    role,
		Alive:   true,
		charges: make(map[AbilityID]Config, len(role.Abilities)),
	}
	for _, g := range role.Abilities {
		p.charges[g.ID] = g.Config
	}
	return p
}

// Grant returns the player's grant of the ability, if any.
func (p *Player) Grant(id AbilityID) (AbilityGrant, bool) {
	for _, g := range p.Role.Abilities {
		if g.ID == id {
			g.Config = p.charges[id]
			return g, true
		}
	}
	return AbilityGrant{}, false
}

// CanUse reports whether the player holds the ability with charges left.
func (p *Player) CanUse(id AbilityID) bool {
	cfg, ok := p.charges[id]
	return ok && CanUse(cfg)
}

// ChargesLeft returns the remaining charges, or Unlimited.
func (p *Player) ChargesLeft(id AbilityID) int {
	return p.charges[id].Charges
}

// Consume spends one charge of the ability.
func (p *Player) Consume(id AbilityID) {
	p.charges[id] = Consume(p.charges[id])
}

// Refund returns one charge of the ability.
func (p *Player) Refund(id AbilityID) {
	p.charges[id] = Refund(p.charges[id])
}

// Faction returns the side the player counts for when evaluating wins.
// Pollination overrides the printed team.
func (p *Player) Faction() string {
	if p.Converted {
		return FactionPollinated
	}
	switch p.Role.Team {
	case TeamBee:
		return FactionBee
	case TeamWasp:
		return FactionWasp
	default:
		return FactionNeutral
	}
}

// Appearance is the role key investigations see for this player.
func (p *Player) Appearance() string {
	if p.AppearsAs != "" {
		return p.AppearsAs
	}
	return p.Role.Key
}
