package engine

import (
	"fmt"
	"math/rand/v2"
)

// Built-in role catalog. A role is a composition of catalog abilities;
// nothing here is special-cased in the resolver.
func builtinRoles() []struct {
	Info RoleInfo
	Refs []AbilityRef
} {
	return []struct {
		Info RoleInfo
		Refs []AbilityRef
	}{
		// Bees
		{RoleInfo{Key: "worker", Name: "Worker Bee", Team: TeamBee}, nil},
		{RoleInfo{Key: "nurse", Name: "Nurse Bee", Team: TeamBee},
			[]AbilityRef{{ID: AbilityNurse}}},
		{RoleInfo{Key: "sentry", Name: "Sentry Bee", Team: TeamBee},
			[]AbilityRef{{ID: AbilityGuard}}},
		{RoleInfo{Key: "sentinel", Name: "Sentinel Bee", Team: TeamBee},
			[]AbilityRef{{ID: AbilityAlert}, {ID: AbilityChitin}}},
		{RoleInfo{Key: "marksman", Name: "Marksman Bee", Team: TeamBee, Guilt: true},
			[]AbilityRef{{ID: AbilitySnipe}}},
		{RoleInfo{Key: "warden", Name: "Warden Bee", Team: TeamBee},
			[]AbilityRef{{ID: AbilityConfine}, {ID: AbilityExecute}}},
		{RoleInfo{Key: "inspector", Name: "Inspector Bee", Team: TeamBee},
			[]AbilityRef{{ID: AbilityInspect}}},
		{RoleInfo{Key: "oracle", Name: "Oracle Bee", Team: TeamBee},
			[]AbilityRef{{ID: AbilityDivine}}},
		{RoleInfo{Key: "watcher", Name: "Watcher Bee", Team: TeamBee},
			[]AbilityRef{{ID: AbilityWatch}}},
		{RoleInfo{Key: "tracker", Name: "Tracker Bee", Team: TeamBee},
			[]AbilityRef{{ID: AbilityShadow}}},
		{RoleInfo{Key: "mystic", Name: "Mystic Bee", Team: TeamBee},
			[]AbilityRef{{ID: AbilityVision}}},
		{RoleInfo{Key: "lancer", Name: "Lancer Bee", Team: TeamBee},
			[]AbilityRef{{ID: AbilityChallenge}}},

		// Wasps
		{RoleInfo{Key: "wasp", Name: "Wasp", Team: TeamWasp},
			[]AbilityRef{{ID: AbilitySting}}},
		{RoleInfo{Key: "saboteur", Name: "Saboteur Wasp", Team: TeamWasp},
			[]AbilityRef{{ID: AbilityDistract}}},
		{RoleInfo{Key: "venombrood", Name: "Venombrood Wasp", Team: TeamWasp},
			[]AbilityRef{{ID: AbilityEnvenom}}},
		{RoleInfo{Key: "muffler", Name: "Muffler Wasp", Team: TeamWasp},
			[]AbilityRef{{ID: AbilityHush}}},
		{RoleInfo{Key: "undertaker", Name: "Undertaker Wasp", Team: TeamWasp},
			[]AbilityRef{{ID: AbilityScrub}}},
		{RoleInfo{Key: "impostor", Name: "Impostor Wasp", Team: TeamWasp, Innocent: true},
			[]AbilityRef{{ID: AbilityMasquerade}}},

		// Neutrals
		{RoleInfo{Key: "mantis", Name: "Mantis", Team: TeamNeutral, Subteam: SubteamKilling},
			[]AbilityRef{{ID: AbilityRavage}, {ID: AbilityChitin}}},
		{RoleInfo{Key: "cuckoo", Name: "Cuckoo", Team: TeamNeutral, Subteam: SubteamEvil, Innocent: true},
			[]AbilityRef{{ID: AbilityEcho}}},
		{RoleInfo{Key: "pollinator", Name: "Pollinator", Team: TeamNeutral, Subteam: SubteamEvil},
			[]AbilityRef{{ID: AbilityPollinate}}},
		{RoleInfo{Key: "drifter", Name: "Drifter", Team: TeamNeutral, Subteam: SubteamBenign, Win: WinSurvive},
			[]AbilityRef{{ID: AbilityVest}}},
		{RoleInfo{Key: "smitten", Name: "Smitten", Team: TeamNeutral, Subteam: SubteamBenign, Win: WinLinked}, nil},
		{RoleInfo{Key: "guardian", Name: "Guardian", Team: TeamNeutral, Subteam: SubteamBenign, Win: WinWard},
			[]AbilityRef{{ID: AbilityGuard}}},
	}
}

// DefaultCatalog composes every built-in role against the registry.
func DefaultCatalog(reg *Registry) (*Catalog, error) {
	c := NewCatalog()
	for _, r := range builtinRoles() {
		if err := c.Add(r.Info, r.Refs, reg); err != nil {
			return nil, err
		}
	}
	return c, nil
}

const (
	MinPlayers = 4
	MaxPlayers = 15
)

// beeSpecials is the deterministic fill order for bee power roles.
var beeSpecials = []string{
	"inspector", "nurse", "sentry", "warden", "watcher",
	"oracle", "tracker", "sentinel", "marksman", "mystic",
}

// waspSpecials follows the plain wasp in the fill order.
var waspSpecials = []string{"saboteur", "venombrood", "undertaker", "muffler", "impostor"}

// neutralFill is appended for larger matches.
var neutralFill = []string{"mantis", "drifter", "pollinator", "cuckoo"}

// DefaultPreset returns the role keys for an n player match: roughly
// one wasp per three players, a neutral from eight up, bees otherwise.
func DefaultPreset(n int) ([]string, error) {
	if n < MinPlayers || n > MaxPlayers {
		return nil, fmt.Errorf("%w: no preset for %d players", ErrBadPreset, n)
	}
	var keys []string

	wasps := n / 3
	if wasps < 1 {
		wasps = 1
	}
	keys = append(keys, "wasp")
	for i := 1; i < wasps; i++ {
		keys = append(keys, waspSpecials[(i-1)%len(waspSpecials)])
	}

	neutrals := 0
	if n >= 8 {
		neutrals = (n - 5) / 3
	}
	for i := 0; i < neutrals && i < len(neutralFill); i++ {
		keys = append(keys, neutralFill[i])
	}

	for i := 0; len(keys) < n; i++ {
		if i < len(beeSpecials) {
			keys = append(keys, beeSpecials[i])
		} else {
			keys = append(keys, "worker")
		}
	}
	return keys, nil
}

// Seat is a player identity waiting to be dealt a role.
type Seat struct {
	ID   string
	Name string
}

// AssignRoles shuffles the preset and deals one role per seat. Smitten
// players are linked in pairs; each guardian is warded to a random bee.
func AssignRoles(cat *Catalog, keys []string, seats []Seat, rng *rand.Rand) ([]*Player, error) {
	if len(keys) != len(seats) {
		return nil, fmt.Errorf("%w: %d roles for %d players", ErrBadPreset, len(keys), len(seats))
	}
	shuffled := make([]string, len(keys))
	copy(shuffled, keys)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	players := make([]*Player, len(seats))
	for i, seat := range seats {
		role, err := cat.Get(shuffled[i])
		if err != nil {
			return nil, err
		}
		players[i] = NewPlayer(seat.ID, seat.Name, &role)
	}

	linkPartners(players)
	assignWards(players, rng)
	return players, nil
}

// linkPartners pairs up players whose win clause is linked, in seat order.
func linkPartners(players []*Player) {
	var pending *Player
	for _, p := range players {
		if p.Role.Win != WinLinked {
			continue
		}
		if pending == nil {
			pending = p
			continue
		}
		pending.LinkedID = p.ID
		p.LinkedID = pending.ID
		pending = nil
	}
}

// assignWards gives each warded player a random bee to champion.
func assignWards(players []*Player, rng *rand.Rand) {
	var bees []*Player
	for _, p := range players {
		if p.Role.Team == TeamBee {
			bees = append(bees, p)
		}
	}
	if len(bees) == 0 {
		return
	}
	for _, p := range players {
		if p.Role.Win == WinWard {
			p.WardID = bees[rng.IntN(len(bees))].ID
		}
	}
}
