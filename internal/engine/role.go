package engine

import "fmt"

// Team is a player's base affiliation.
type Team string

const (
	TeamBee     Team = "bee"
	TeamWasp    Team = "wasp"
	TeamNeutral Team = "neutral"
)

// Subteam refines neutral roles.
type Subteam string

const (
	SubteamNone    Subteam = ""
	SubteamKilling Subteam = "killing"
	SubteamEvil    Subteam = "evil"
	SubteamBenign  Subteam = "benign"
)

// WinClause marks a personal win condition evaluated after the
// faction rules, independent of the role's team.
type WinClause int

const (
	WinDefault WinClause = iota
	WinSurvive           // wins with anyone, as long as they are alive
	WinLinked            // wins if their linked partner is alive at the end
	WinWard              // wins if their ward is among the winners
)

// AbilityRef composes a role from the catalog: an ability id plus an
// optional config override.
type AbilityRef struct {
	ID     AbilityID
	Config *Config
}

// RoleInfo is the non-derived part of a role definition.
type RoleInfo struct {
	Key      string
	Name     string
	Team     Team
	Subteam  Subteam
	Guilt    bool // dies of guilt after killing a bee-aligned victim
	Innocent bool // appears innocent to suspicion checks
	Win      WinClause
}

// AbilityGrant is a resolved ability reference: the full definition
// with the role's override already applied.
type AbilityGrant struct {
	Definition
	Config Config
}

// RoleDefinition is an immutable role: base info, granted abilities in
// order, and the attack/defense levels derived from them.
type RoleDefinition struct {
	RoleInfo
	Abilities []AbilityGrant
	Attack    int
	Defense   int
}

// HasCategory reports whether the role grants an ability of the category.
func (r RoleDefinition) HasCategory(c Category) bool {
	for _, g := range r.Abilities {
		if g.Category == c {
			return true
		}
	}
	return false
}

// HasDuskAbility reports whether the role has any non-passive ability
// submitted during dusk.
func (r RoleDefinition) HasDuskAbility() bool {
	for _, g := range r.Abilities {
		if !g.Passive && g.SubmitPhase() == PhaseDusk {
			return true
		}
	}
	return false
}

// ComposeRole builds a role definition from ordered ability references,
// deriving attack and defense as the max configured power across the
// abilities that contribute offense resp. defense. Unknown ability ids
// fail here, at catalog load time.
func ComposeRole(info RoleInfo, refs []AbilityRef, reg *Registry) (RoleDefinition, error) {
	role := RoleDefinition{RoleInfo: info}
	for _, ref := range refs {
		def, err := reg.Get(ref.ID)
		if err != nil {
			return RoleDefinition{}, fmt.Errorf("role %q: %w", info.Key, err)
		}
		cfg := def.Config
		if ref.Config != nil {
			cfg = *ref.Config
		}
		role.Abilities = append(role.Abilities, AbilityGrant{Definition: def, Config: cfg})

		switch def.Category {
		case CategoryAttack, CategoryAlert, CategoryDuel:
			if cfg.Power > role.Attack {
				role.Attack = cfg.Power
			}
		case CategoryArmor:
			if cfg.Power > role.Defense {
				role.Defense = cfg.Power
			}
		}
	}
	return role, nil
}

// Catalog holds the composed role definitions, keyed and ordered.
type Catalog struct {
	roles map[string]RoleDefinition
	order []string
}

func NewCatalog() *Catalog {
	return &Catalog{roles: make(map[string]RoleDefinition)}
}

// Add composes and stores a role. Duplicate keys are a load-time error.
func (c *Catalog) Add(info RoleInfo, refs []AbilityRef, reg *Registry) error {
	if _, ok := c.roles[info.Key]; ok {
		return fmt.Errorf("role %q registered twice", info.Key)
	}
	role, err := ComposeRole(info, refs, reg)
	if err != nil {
		return err
	}
	c.roles[info.Key] = role
	c.order = append(c.order, info.Key)
	return nil
}

// Get looks up a role by key.
func (c *Catalog) Get(key string) (RoleDefinition, error) {
	role, ok := c.roles[key]
	if !ok {
		return RoleDefinition{}, fmt.Errorf("%w: role %q", ErrUnknownRole, key)
	}
	return role, nil
}

// Keys returns the role keys in registration order.
func (c *Catalog) Keys() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}
