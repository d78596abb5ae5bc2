package engine

import "fmt"

// AbilityID identifies an ability definition in the registry.
type AbilityID string

// TargetShape describes what an ability submission must target.
type TargetShape int

const (
	ShapeNone   TargetShape = iota // self-trigger, no target (go on alert)
	ShapeSelf                      // must target the actor (vest)
	ShapeSingle                    // one other player
	ShapeDouble                    // two players (transport/witch style)
	ShapeDead                      // a corpse
)

// Category drives resolver dispatch. The resolver handles categories,
// never individual abilities, so new roles are pure catalog data.
type Category int

const (
	CategoryRoleblock Category = iota
	CategoryJail               // roleblock + maximal protection, dusk-set
	CategoryDuel               // dusk challenge: roleblock + attack
	CategoryProtect            // guard-style protection, counter-kills
	CategoryHeal               // light protection, cures poison
	CategoryVest               // self protection
	CategoryAlert              // turn visitors into attacks
	CategoryAttack
	CategoryExecute // jailor's direct kill on the prisoner
	CategoryInvestigate
	CategoryPoison    // delayed kill
	CategoryPollinate // delayed faction conversion
	CategorySilence
	CategoryClean
	CategoryDisguise
	CategoryMimic
	CategoryArmor // passive, only contributes derived defense
)

// Detect distinguishes the investigation flavors within CategoryInvestigate.
type Detect int

const (
	DetectNone      Detect = iota
	DetectSuspicion        // suspicious / innocent verdict
	DetectRole             // exact role reveal
	DetectLookout          // who visited the target
	DetectTrack            // who the target visited
	DetectPsychic          // sampled vision of alive players
)

// Unlimited marks a charge counter that never runs out.
const Unlimited = -1

// Config holds the tunable parts of an ability: remaining charges,
// attack/defense power on the 0-3 ladder, and the night delay for
// delayed effects. Roles may override any field per ability reference.
type Config struct {
	Charges int
	Power   int
	Delay   int
}

// CanUse reports whether a config has charges left.
func CanUse(cfg Config) bool {
	return cfg.Charges == Unlimited || cfg.Charges > 0
}

// Consume decrements a limited charge counter, never below zero.
func Consume(cfg Config) Config {
	if cfg.Charges > 0 {
		cfg.Charges--
	}
	return cfg
}

// Refund returns a previously consumed charge. Used when a pending
// submission is overwritten before the window closes.
func Refund(cfg Config) Config {
	if cfg.Charges != Unlimited {
		cfg.Charges++
	}
	return cfg
}

// Definition is an immutable ability description. All resolution
// behavior is derived from Category, Shape, Priority and Config.
type Definition struct {
	ID          AbilityID
	Name        string
	Category    Category
	Shape       TargetShape
	Priority    int   // lower resolves earlier
	Phase       Phase // submission window; zero value means night
	Passive     bool  // never submitted, only shapes derived stats
	Detect      Detect
	Config      Config
	Instruction string
}

// SubmitPhase returns the phase during which the ability may be submitted.
func (d Definition) SubmitPhase() Phase {
	if d.Phase == 0 {
		return PhaseNight
	}
	return d.Phase
}

// Registry is the immutable catalog of ability definitions.
type Registry struct {
	defs map[AbilityID]Definition
}

func NewRegistry() *Registry {
	return &Registry{defs: make(map[AbilityID]Definition)}
}

// Register adds a definition. Duplicate or empty ids are a catalog
// authoring error and fail at load time.
func (r *Registry) Register(def Definition) error {
	if def.ID == "" {
		return fmt.Errorf("ability with empty id")
	}
	if _, ok := r.defs[def.ID]; ok {
		return fmt.Errorf("ability %q registered twice", def.ID)
	}
	r.defs[def.ID] = def
	return nil
}

// Get looks up a definition by id.
func (r *Registry) Get(id AbilityID) (Definition, error) {
	def, ok := r.defs[id]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %q", ErrUnknownAbility, id)
	}
	return def, nil
}

// Instruction renders the prompt text for an ability with its live config.
func (r *Registry) Instruction(id AbilityID, cfg Config) string {
	def, ok := r.defs[id]
	if !ok {
		return ""
	}
	if cfg.Charges == Unlimited {
		return def.Instruction
	}
	return fmt.Sprintf("%s (%d left)", def.Instruction, cfg.Charges)
}
