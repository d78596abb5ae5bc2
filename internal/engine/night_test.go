package engine

import "testing"

func resolve(t *testing.T, m *Match, actions ...Action) *NightOutcome {
	t.Helper()
	for _, a := range actions {
		submit(t, m, a)
	}
	return m.ResolveNight(m.CloseActions())
}

func findDeath(out *NightOutcome, id string) (Death, bool) {
	for _, d := range out.Deaths {
		if d.PlayerID == id {
			return d, true
		}
	}
	return Death{}, false
}

func TestAttackBeatsNoDefense(t *testing.T) {
	m := buildMatch(t, "wasp", "worker")
	startNight(t, m)
	out := resolve(t, m, Action{Actor: "p1", Ability: AbilitySting, Target: "p2"})

	d, ok := findDeath(out, "p2")
	if !ok {
		t.Fatal("worker should die to a sting")
	}
	if d.Reason != ReasonKilled || d.Role != "worker" {
		t.Errorf("death = %+v, want killed worker", d)
	}
	if p, _ := m.Player("p2"); p.Alive {
		t.Error("dead worker still marked alive")
	}
}

func TestArmorShrugsOffBasicAttack(t *testing.T) {
	m := buildMatch(t, "wasp", "mantis")
	startNight(t, m)
	out := resolve(t, m, Action{Actor: "p1", Ability: AbilitySting, Target: "p2"})
	if len(out.Deaths) != 0 {
		t.Errorf("deaths = %+v, mantis chitin should hold against a sting", out.Deaths)
	}
}

func TestHealSavesWithoutTrade(t *testing.T) {
	m := buildMatch(t, "wasp", "worker", "nurse")
	startNight(t, m,
		Action{Actor: "p1", Ability: AbilitySting, Target: "p2"},
		Action{Actor: "p3", Ability: AbilityNurse, Target: "p2"})

	out := m.ResolveNight(m.CloseActions())
	if len(out.Deaths) != 0 {
		t.Errorf("deaths = %+v, nurse should save the worker for free", out.Deaths)
	}
}

func TestGuardSavesWithoutTrade(t *testing.T) {
	m := buildMatch(t, "mantis", "worker", "sentry")
	startNight(t, m,
		Action{Actor: "p1", Ability: AbilityRavage, Target: "p2"},
		Action{Actor: "p3", Ability: AbilityGuard, Target: "p2"})

	out := m.ResolveNight(m.CloseActions())
	if len(out.Deaths) != 0 {
		t.Errorf("deaths = %+v, the guard's cover should hold with nobody lost", out.Deaths)
	}
}

func TestGuardTradesWhenChargeDies(t *testing.T) {
	reg := DefaultRegistry()
	cat, err := DefaultCatalog(reg)
	if err != nil {
		t.Fatalf("DefaultCatalog: %v", err)
	}
	// An overridden unstoppable attack punches through the guard's
	// cover; the guard falls with their charge and trades.
	err = cat.Add(RoleInfo{Key: "hornet", Name: "Hornet", Team: TeamNeutral, Subteam: SubteamKilling},
		[]AbilityRef{{ID: AbilityRavage, Config: &Config{Charges: Unlimited, Power: 3}}}, reg)
	if err != nil {
		t.Fatalf("add hornet: %v", err)
	}

	ids := []string{"p1", "p2", "p3"}
	keys := []string{"hornet", "worker", "sentry"}
	players := make([]*Player, len(keys))
	for i, key := range keys {
		role, err := cat.Get(key)
		if err != nil {
			t.Fatalf("role %q: %v", key, err)
		}
		players[i] = NewPlayer(ids[i], ids[i], &role)
	}
	m := NewMatch("m1", players, cat, FastTiming(), 1)
	startNight(t, m)
	out := resolve(t, m,
		Action{Actor: "p1", Ability: AbilityRavage, Target: "p2"},
		Action{Actor: "p3", Ability: AbilityGuard, Target: "p2"})

	if d, ok := findDeath(out, "p2"); !ok || d.Reason != ReasonKilled {
		t.Errorf("worker death = %+v, want killed through the guard", d)
	}
	if d, ok := findDeath(out, "p3"); !ok || d.Reason != ReasonProtecting {
		t.Errorf("sentry death = %+v, want died protecting", d)
	}
	// Counter-strike power 2 beats the hornet's bare hide.
	if d, ok := findDeath(out, "p1"); !ok || d.Reason != ReasonKilled {
		t.Errorf("hornet death = %+v, want counter-killed", d)
	}
}

func TestRoleblockCancelsAction(t *testing.T) {
	m := buildMatch(t, "wasp", "worker", "nurse", "saboteur")
	startNight(t, m,
		Action{Actor: "p1", Ability: AbilitySting, Target: "p2"},
		Action{Actor: "p3", Ability: AbilityNurse, Target: "p2"},
		Action{Actor: "p4", Ability: AbilityDistract, Target: "p3"})

	out := m.ResolveNight(m.CloseActions())
	if _, ok := findDeath(out, "p2"); !ok {
		t.Error("worker should die once the nurse is distracted")
	}
	if len(out.Roleblocked) != 1 || out.Roleblocked[0] != "p3" {
		t.Errorf("roleblocked = %v, want [p3]", out.Roleblocked)
	}
}

func TestJailProtectsAndBlocks(t *testing.T) {
	m := buildMatch(t, "warden", "wasp", "worker", "mantis")
	startNight(t, m, Action{Actor: "p1", Ability: AbilityConfine, Target: "p2"})

	// An attack on the prisoner never reaches the cell.
	out := resolve(t, m, Action{Actor: "p4", Ability: AbilityRavage, Target: "p2"})
	if len(out.Deaths) != 0 {
		t.Errorf("deaths = %+v, confined wasp should be untouchable", out.Deaths)
	}
	if visitors := m.visits["p2"]; len(visitors) != 0 {
		t.Errorf("visits to prisoner = %v, want none", visitors)
	}
}

func TestExecutionBypassesDefense(t *testing.T) {
	m := buildMatch(t, "warden", "mantis", "worker")
	startNight(t, m, Action{Actor: "p1", Ability: AbilityConfine, Target: "p2"})

	out := resolve(t, m, Action{Actor: "p1", Ability: AbilityExecute, Target: "p2"})
	d, ok := findDeath(out, "p2")
	if !ok || d.Reason != ReasonExecuted {
		t.Errorf("death = %+v, want executed mantis despite chitin", d)
	}
}

func TestExecuteRequiresOwnPrisoner(t *testing.T) {
	m := buildMatch(t, "warden", "wasp", "worker")
	startNight(t, m, Action{Actor: "p1", Ability: AbilityConfine, Target: "p2"})

	out := resolve(t, m, Action{Actor: "p1", Ability: AbilityExecute, Target: "p3"})
	if len(out.Deaths) != 0 {
		t.Errorf("deaths = %+v, execute must only hit the prisoner", out.Deaths)
	}
}

func TestAlertStrikesVisitors(t *testing.T) {
	m := buildMatch(t, "sentinel", "wasp", "nurse")
	startNight(t, m,
		Action{Actor: "p1", Ability: AbilityAlert},
		Action{Actor: "p2", Ability: AbilitySting, Target: "p1"},
		Action{Actor: "p3", Ability: AbilityNurse, Target: "p1"})

	out := m.ResolveNight(m.CloseActions())
	if p, _ := m.Player("p1"); !p.Alive {
		t.Error("sentinel chitin should hold against the sting")
	}
	// Alert does not distinguish friend from foe.
	for _, id := range []string{"p2", "p3"} {
		if d, ok := findDeath(out, id); !ok || d.Reason != ReasonKilled {
			t.Errorf("visitor %s death = %+v, want killed by alert", id, d)
		}
	}
}

func TestGuiltAfterKillingBee(t *testing.T) {
	m := buildMatch(t, "marksman", "worker")
	startNight(t, m)
	out := resolve(t, m, Action{Actor: "p1", Ability: AbilitySnipe, Target: "p2"})

	if d, ok := findDeath(out, "p2"); !ok || d.Reason != ReasonKilled {
		t.Fatalf("worker death = %+v, want killed", d)
	}
	if d, ok := findDeath(out, "p1"); !ok || d.Reason != ReasonGuilt {
		t.Errorf("marksman death = %+v, want died of guilt", d)
	}
}

func TestNoGuiltForKillingWasp(t *testing.T) {
	m := buildMatch(t, "marksman", "wasp")
	startNight(t, m)
	out := resolve(t, m, Action{Actor: "p1", Ability: AbilitySnipe, Target: "p2"})

	if _, ok := findDeath(out, "p1"); ok {
		t.Error("no guilt for shooting a wasp")
	}
	if _, ok := findDeath(out, "p2"); !ok {
		t.Error("wasp should die to the snipe")
	}
}

func TestPoisonMaturesUnlessCured(t *testing.T) {
	m := buildMatch(t, "venombrood", "worker", "nurse")
	startNight(t, m)
	out := resolve(t, m, Action{Actor: "p1", Ability: AbilityEnvenom, Target: "p2"})
	if len(out.Deaths) != 0 {
		t.Fatalf("night 1 deaths = %+v, venom has a one night delay", out.Deaths)
	}

	// Cured before it matures.
	startNight(t, m)
	out = resolve(t, m, Action{Actor: "p3", Ability: AbilityNurse, Target: "p2"})
	if len(out.Deaths) != 0 {
		t.Fatalf("night 2 deaths = %+v, nurse should purge the venom", out.Deaths)
	}

	// A fresh dose with nobody tending it.
	startNight(t, m)
	resolve(t, m, Action{Actor: "p1", Ability: AbilityEnvenom, Target: "p2"})
	startNight(t, m)
	out = resolve(t, m)
	if d, ok := findDeath(out, "p2"); !ok || d.Reason != ReasonPoisoned {
		t.Errorf("night 4 death = %+v, want poisoned worker", d)
	}
}

func TestPollinationConverts(t *testing.T) {
	m := buildMatch(t, "pollinator", "worker", "wasp")
	startNight(t, m)
	resolve(t, m, Action{Actor: "p1", Ability: AbilityPollinate, Target: "p2"})

	p, _ := m.Player("p2")
	for night := 2; night <= 3; night++ {
		if p.Converted {
			t.Fatalf("converted before night %d, spores take two nights", night)
		}
		startNight(t, m)
		resolve(t, m)
	}
	if !p.Converted {
		t.Fatal("worker should be converted on night 3")
	}
	if got := p.Faction(); got != FactionPollinated {
		t.Errorf("faction = %q, want %q", got, FactionPollinated)
	}
}

func TestScrubHidesIdentity(t *testing.T) {
	m := buildMatch(t, "wasp", "worker", "undertaker")
	startNight(t, m)
	out := resolve(t, m,
		Action{Actor: "p1", Ability: AbilitySting, Target: "p2"},
		Action{Actor: "p3", Ability: AbilityScrub, Target: "p2"})

	d, ok := findDeath(out, "p2")
	if !ok {
		t.Fatal("worker should die")
	}
	if !d.Cleaned || d.Role != "" {
		t.Errorf("death = %+v, want cleaned body with hidden role", d)
	}
}

func TestHushSilences(t *testing.T) {
	m := buildMatch(t, "muffler", "worker")
	startNight(t, m)
	resolve(t, m, Action{Actor: "p1", Ability: AbilityHush, Target: "p2"})
	if !m.IsMuted("p2") {
		t.Error("hushed worker should be muted")
	}
	startNight(t, m)
	if m.IsMuted("p2") {
		t.Error("silence should lift on the next night")
	}
}

func TestMasqueradeFoolsInvestigators(t *testing.T) {
	m := buildMatch(t, "impostor", "worker", "inspector", "oracle")
	startNight(t, m)
	resolve(t, m, Action{Actor: "p1", Ability: AbilityMasquerade, Target: "p2"})

	startNight(t, m)
	out := resolve(t, m,
		Action{Actor: "p3", Ability: AbilityInspect, Target: "p1"},
		Action{Actor: "p4", Ability: AbilityDivine, Target: "p1"})

	if len(out.Investigations) != 2 {
		t.Fatalf("got %d investigations, want 2", len(out.Investigations))
	}
	for _, r := range out.Investigations {
		switch r.Ability {
		case AbilityInspect:
			if r.Verdict != VerdictInnocent {
				t.Errorf("inspect verdict = %q, want innocent", r.Verdict)
			}
		case AbilityDivine:
			if r.Verdict != "worker" {
				t.Errorf("divine verdict = %q, want worker", r.Verdict)
			}
		}
	}
}

func TestSuspicionVerdicts(t *testing.T) {
	m := buildMatch(t, "inspector", "wasp", "worker", "cuckoo", "mantis")
	startNight(t, m)
	p4, _ := m.Player("p4")
	p4.Converted = true

	tests := []struct {
		target string
		want   string
	}{
		{"p2", VerdictSuspicious}, // wasp
		{"p3", VerdictInnocent},   // worker
		{"p4", VerdictSuspicious}, // converted, innocence no longer helps
		{"p5", VerdictSuspicious}, // neutral killer
	}
	for _, tt := range tests {
		out := resolve(t, m, Action{Actor: "p1", Ability: AbilityInspect, Target: tt.target})
		if len(out.Investigations) != 1 || out.Investigations[0].Verdict != tt.want {
			t.Errorf("inspect %s: got %+v, want %s", tt.target, out.Investigations, tt.want)
		}
		startNight(t, m)
	}
}

func TestLookoutSeesVisitsToTheDead(t *testing.T) {
	m := buildMatch(t, "watcher", "worker", "wasp")
	startNight(t, m)
	out := resolve(t, m,
		Action{Actor: "p1", Ability: AbilityWatch, Target: "p2"},
		Action{Actor: "p3", Ability: AbilitySting, Target: "p2"})

	if _, ok := findDeath(out, "p2"); !ok {
		t.Fatal("worker should die")
	}
	if len(out.Investigations) != 1 {
		t.Fatalf("got %d investigations, want 1", len(out.Investigations))
	}
	r := out.Investigations[0]
	if len(r.Names) != 1 || r.Names[0] != "p3" {
		t.Errorf("watch saw %v, want [p3] even though the target died", r.Names)
	}
}

func TestTrackFollowsTarget(t *testing.T) {
	m := buildMatch(t, "tracker", "wasp", "worker")
	startNight(t, m)
	out := resolve(t, m,
		Action{Actor: "p1", Ability: AbilityShadow, Target: "p2"},
		Action{Actor: "p2", Ability: AbilitySting, Target: "p3"})

	if len(out.Investigations) != 1 {
		t.Fatalf("got %d investigations, want 1", len(out.Investigations))
	}
	if r := out.Investigations[0]; len(r.Names) != 1 || r.Names[0] != "p3" {
		t.Errorf("shadow saw %v, want [p3]", r.Names)
	}
}

func TestVisionContainsAnEvil(t *testing.T) {
	m := buildMatch(t, "mystic", "wasp", "worker", "nurse", "sentry")
	startNight(t, m)
	out := resolve(t, m, Action{Actor: "p1", Ability: AbilityVision})

	if len(out.Investigations) != 1 {
		t.Fatalf("got %d investigations, want 1", len(out.Investigations))
	}
	names := out.Investigations[0].Names
	if len(names) != 3 {
		t.Fatalf("vision of %v, want three players", names)
	}
	found := false
	for _, id := range names {
		if id == "p2" {
			found = true
		}
		if id == "p1" {
			t.Error("vision should not include the mystic")
		}
	}
	if !found {
		t.Errorf("vision %v must contain the wasp", names)
	}
}

func TestDeadInvestigatorGetsNothing(t *testing.T) {
	m := buildMatch(t, "inspector", "wasp")
	startNight(t, m)
	out := resolve(t, m,
		Action{Actor: "p1", Ability: AbilityInspect, Target: "p2"},
		Action{Actor: "p2", Ability: AbilitySting, Target: "p1"})

	if _, ok := findDeath(out, "p1"); !ok {
		t.Fatal("inspector should die")
	}
	if len(out.Investigations) != 0 {
		t.Errorf("investigations = %+v, the dead learn nothing", out.Investigations)
	}
}

func TestDuelRoleblocksAndStrikes(t *testing.T) {
	m := buildMatch(t, "lancer", "wasp", "worker")
	startNight(t, m, Action{Actor: "p1", Ability: AbilityChallenge, Target: "p2"})

	out := resolve(t, m, Action{Actor: "p2", Ability: AbilitySting, Target: "p3"})
	if _, ok := findDeath(out, "p3"); ok {
		t.Error("challenged wasp should not get its sting off")
	}
	if d, ok := findDeath(out, "p2"); !ok || d.Reason != ReasonKilled {
		t.Errorf("wasp death = %+v, want slain in the duel", d)
	}
}
