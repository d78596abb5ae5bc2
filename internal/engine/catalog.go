package engine

// Built-in ability catalog. Priorities group into the resolver's bands:
// jail/duel (dusk) < roleblock < protection < attacks < execute <
// investigations < delayed effects < deception.
const (
	AbilitySting      AbilityID = "sting"
	AbilityRavage     AbilityID = "ravage"
	AbilitySnipe      AbilityID = "snipe"
	AbilityGuard      AbilityID = "guard"
	AbilityNurse      AbilityID = "nurse"
	AbilityVest       AbilityID = "vest"
	AbilityAlert      AbilityID = "alert"
	AbilityDistract   AbilityID = "distract"
	AbilityConfine    AbilityID = "confine"
	AbilityExecute    AbilityID = "execute"
	AbilityChallenge  AbilityID = "challenge"
	AbilityInspect    AbilityID = "inspect"
	AbilityDivine     AbilityID = "divine"
	AbilityWatch      AbilityID = "watch"
	AbilityShadow     AbilityID = "shadow"
	AbilityVision     AbilityID = "vision"
	AbilityEnvenom    AbilityID = "envenom"
	AbilityPollinate  AbilityID = "pollinate"
	AbilityHush       AbilityID = "hush"
	AbilityScrub      AbilityID = "scrub"
	AbilityMasquerade AbilityID = "masquerade"
	AbilityEcho       AbilityID = "echo"
	AbilityChitin     AbilityID = "chitin"
)

func builtinAbilities() []Definition {
	return []Definition{
		{
			ID: AbilityConfine, Name: "Confine", Category: CategoryJail,
			Shape: ShapeSingle, Priority: 5, Phase: PhaseDusk,
			Config:      Config{Charges: Unlimited, Power: 3},
			Instruction: "Choose a player to confine in a wax cell tonight",
		},
		{
			ID: AbilityChallenge, Name: "Challenge", Category: CategoryDuel,
			Shape: ShapeSingle, Priority: 8, Phase: PhaseDusk,
			Config:      Config{Charges: 2, Power: 1},
			Instruction: "Challenge a player to a duel at dusk",
		},
		{
			ID: AbilityDistract, Name: "Distract", Category: CategoryRoleblock,
			Shape: ShapeSingle, Priority: 10,
			Config:      Config{Charges: Unlimited},
			Instruction: "Distract a player so their ability fails tonight",
		},
		{
			ID: AbilityGuard, Name: "Guard", Category: CategoryProtect,
			Shape: ShapeSingle, Priority: 20,
			Config:      Config{Charges: Unlimited, Power: 2},
			Instruction: "Stand guard over a player tonight",
		},
		{
			ID: AbilityNurse, Name: "Nurse", Category: CategoryHeal,
			Shape: ShapeSingle, Priority: 20,
			Config:      Config{Charges: Unlimited, Power: 1},
			Instruction: "Tend a player's wounds and purge any venom",
		},
		{
			ID: AbilityVest, Name: "Wax Shell", Category: CategoryVest,
			Shape: ShapeSelf, Priority: 20,
			Config:      Config{Charges: 4, Power: 2},
			Instruction: "Seal yourself in a protective shell tonight",
		},
		{
			ID: AbilityAlert, Name: "Alert", Category: CategoryAlert,
			Shape: ShapeNone, Priority: 25,
			Config:      Config{Charges: 3, Power: 2},
			Instruction: "Go on alert and strike anyone who visits you",
		},
		{
			ID: AbilitySting, Name: "Sting", Category: CategoryAttack,
			Shape: ShapeSingle, Priority: 30,
			Config:      Config{Charges: Unlimited, Power: 1},
			Instruction: "Sting a player tonight",
		},
		{
			ID: AbilityRavage, Name: "Ravage", Category: CategoryAttack,
			Shape: ShapeSingle, Priority: 30,
			Config:      Config{Charges: Unlimited, Power: 2},
			Instruction: "Ravage a player with a powerful attack",
		},
		{
			ID: AbilitySnipe, Name: "Snipe", Category: CategoryAttack,
			Shape: ShapeSingle, Priority: 30,
			Config:      Config{Charges: 3, Power: 1},
			Instruction: "Fire a barbed dart at a player",
		},
		{
			ID: AbilityExecute, Name: "Execute", Category: CategoryExecute,
			Shape: ShapeSingle, Priority: 35,
			Config:      Config{Charges: 3},
			Instruction: "Execute your confined prisoner",
		},
		{
			ID: AbilityInspect, Name: "Inspect", Category: CategoryInvestigate,
			Shape: ShapeSingle, Priority: 40, Detect: DetectSuspicion,
			Config:      Config{Charges: Unlimited},
			Instruction: "Inspect a player for suspicious intent",
		},
		{
			ID: AbilityDivine, Name: "Divine", Category: CategoryInvestigate,
			Shape: ShapeSingle, Priority: 40, Detect: DetectRole,
			Config:      Config{Charges: 3},
			Instruction: "Divine a player's exact role",
		},
		{
			ID: AbilityWatch, Name: "Watch", Category: CategoryInvestigate,
			Shape: ShapeSingle, Priority: 40, Detect: DetectLookout,
			Config:      Config{Charges: Unlimited},
			Instruction: "Watch a player and see who visits them",
		},
		{
			ID: AbilityShadow, Name: "Shadow", Category: CategoryInvestigate,
			Shape: ShapeSingle, Priority: 40, Detect: DetectTrack,
			Config:      Config{Charges: Unlimited},
			Instruction: "Shadow a player and see where they go",
		},
		{
			ID: AbilityVision, Name: "Vision", Category: CategoryInvestigate,
			Shape: ShapeNone, Priority: 40, Detect: DetectPsychic,
			Config:      Config{Charges: Unlimited},
			Instruction: "Receive a vision of three players, one of them evil",
		},
		{
			ID: AbilityEnvenom, Name: "Envenom", Category: CategoryPoison,
			Shape: ShapeSingle, Priority: 45,
			Config:      Config{Charges: Unlimited, Delay: 1},
			Instruction: "Poison a player; the venom kills after a night",
		},
		{
			ID: AbilityPollinate, Name: "Pollinate", Category: CategoryPollinate,
			Shape: ShapeSingle, Priority: 45,
			Config:      Config{Charges: Unlimited, Delay: 2},
			Instruction: "Seed a player with spores that turn them to your cause",
		},
		{
			ID: AbilityHush, Name: "Hush", Category: CategorySilence,
			Shape: ShapeSingle, Priority: 50,
			Config:      Config{Charges: 3},
			Instruction: "Silence a player through the next day",
		},
		{
			ID: AbilityScrub, Name: "Scrub", Category: CategoryClean,
			Shape: ShapeSingle, Priority: 50,
			Config:      Config{Charges: 3},
			Instruction: "Scrub a player's body clean of any identity",
		},
		{
			ID: AbilityMasquerade, Name: "Masquerade", Category: CategoryDisguise,
			Shape: ShapeSingle, Priority: 50,
			Config:      Config{Charges: 2},
			Instruction: "Take on the appearance of another player's role",
		},
		{
			ID: AbilityEcho, Name: "Echo", Category: CategoryMimic,
			Shape: ShapeDead, Priority: 50,
			Config:      Config{Charges: 1},
			Instruction: "Echo the role of a dead player",
		},
		{
			ID: AbilityChitin, Name: "Chitin", Category: CategoryArmor,
			Shape: ShapeNone, Passive: true,
			Config:      Config{Charges: Unlimited, Power: 1},
			Instruction: "Your carapace shrugs off basic attacks",
		},
	}
}

// DefaultRegistry builds the registry with every built-in ability.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, def := range builtinAbilities() {
		if err := r.Register(def); err != nil {
			// Built-in data registering twice is a programming error.
			panic(err)
		}
	}
	return r
}
