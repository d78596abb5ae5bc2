package engine

import (
	"errors"
	"fmt"
	"testing"
)

func buildMatch(t *testing.T, keys ...string) *Match {
	t.Helper()
	cat, err := DefaultCatalog(DefaultRegistry())
	if err != nil {
		t.Fatalf("DefaultCatalog: %v", err)
	}
	players := make([]*Player, len(keys))
	for i, key := range keys {
		role, err := cat.Get(key)
		if err != nil {
			t.Fatalf("role %q: %v", key, err)
		}
		id := fmt.Sprintf("p%d", i+1)
		players[i] = NewPlayer(id, id, &role)
	}
	return NewMatch("m1", players, cat, FastTiming(), 1)
}

// startNight runs a dusk window with the given submissions and opens
// the night window.
func startNight(t *testing.T, m *Match, dusk ...Action) {
	t.Helper()
	m.Phase = PhaseDusk
	m.OpenActions()
	for _, a := range dusk {
		if err := m.SubmitAction(a); err != nil {
			t.Fatalf("dusk submit %+v: %v", a, err)
		}
	}
	m.BeginNight(m.CloseActions())
	m.Phase = PhaseNight
	m.OpenActions()
}

func submit(t *testing.T, m *Match, a Action) {
	t.Helper()
	if err := m.SubmitAction(a); err != nil {
		t.Fatalf("submit %+v: %v", a, err)
	}
}

func TestSubmitActionPhaseGate(t *testing.T) {
	m := buildMatch(t, "wasp", "worker")
	a := Action{Actor: "p1", Ability: AbilitySting, Target: "p2"}

	if err := m.SubmitAction(a); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("waiting phase: got %v, want ErrWrongPhase", err)
	}

	startNight(t, m)
	submit(t, m, a)
	m.CloseActions()
	if err := m.SubmitAction(a); !errors.Is(err, ErrPhaseClosed) {
		t.Errorf("after close: got %v, want ErrPhaseClosed", err)
	}
}

func TestSubmitActionValidation(t *testing.T) {
	m := buildMatch(t, "wasp", "worker", "mantis", "warden")
	startNight(t, m)

	tests := []struct {
		name string
		act  Action
		want error
	}{
		{"unknown actor", Action{Actor: "nobody", Ability: AbilitySting, Target: "p2"}, ErrNotInMatch},
		{"ability not held", Action{Actor: "p2", Ability: AbilitySting, Target: "p1"}, ErrUnknownAbility},
		{"passive ability", Action{Actor: "p3", Ability: AbilityChitin}, ErrPassiveAbility},
		{"missing target", Action{Actor: "p1", Ability: AbilitySting}, ErrMissingTarget},
		{"self attack", Action{Actor: "p1", Ability: AbilitySting, Target: "p1"}, ErrInvalidTarget},
		{"dusk ability at night", Action{Actor: "p4", Ability: AbilityConfine, Target: "p1"}, ErrWrongPhase},
	}
	for _, tt := range tests {
		if err := m.SubmitAction(tt.act); !errors.Is(err, tt.want) {
			t.Errorf("%s: got %v, want %v", tt.name, err, tt.want)
		}
	}
}

func TestSubmitActionDeadActor(t *testing.T) {
	m := buildMatch(t, "wasp", "worker")
	startNight(t, m)
	p, _ := m.Player("p1")
	p.Alive = false
	err := m.SubmitAction(Action{Actor: "p1", Ability: AbilitySting, Target: "p2"})
	if !errors.Is(err, ErrNotAlive) {
		t.Errorf("got %v, want ErrNotAlive", err)
	}
}

func TestResubmitRefundsCharge(t *testing.T) {
	m := buildMatch(t, "marksman", "worker", "wasp")
	startNight(t, m)

	submit(t, m, Action{Actor: "p1", Ability: AbilitySnipe, Target: "p2"})
	p, _ := m.Player("p1")
	if got := p.ChargesLeft(AbilitySnipe); got != 2 {
		t.Fatalf("after first submit: %d charges, want 2", got)
	}

	// Overwriting the pending action must not eat a second charge.
	submit(t, m, Action{Actor: "p1", Ability: AbilitySnipe, Target: "p3"})
	if got := p.ChargesLeft(AbilitySnipe); got != 2 {
		t.Errorf("after overwrite: %d charges, want 2", got)
	}

	acts := m.CloseActions()
	if len(acts) != 1 || acts[0].Target != "p3" {
		t.Errorf("closed actions = %+v, want one action on p3", acts)
	}
}

func TestSubmitActionNoCharges(t *testing.T) {
	m := buildMatch(t, "marksman", "worker")
	startNight(t, m)
	p, _ := m.Player("p1")
	for i := 0; i < 3; i++ {
		p.Consume(AbilitySnipe)
	}
	err := m.SubmitAction(Action{Actor: "p1", Ability: AbilitySnipe, Target: "p2"})
	if !errors.Is(err, ErrNoCharges) {
		t.Errorf("got %v, want ErrNoCharges", err)
	}
}

func TestJailedActorCannotAct(t *testing.T) {
	m := buildMatch(t, "warden", "wasp", "worker")
	startNight(t, m, Action{Actor: "p1", Ability: AbilityConfine, Target: "p2"})

	if !m.IsJailed("p2") {
		t.Fatal("p2 should be jailed")
	}
	err := m.SubmitAction(Action{Actor: "p2", Ability: AbilitySting, Target: "p3"})
	if !errors.Is(err, ErrWrongPhase) {
		t.Errorf("jailed actor: got %v, want ErrWrongPhase", err)
	}
}

func TestValidTargets(t *testing.T) {
	m := buildMatch(t, "wasp", "worker", "nurse")
	startNight(t, m)

	got := m.ValidTargets("p1", AbilitySting)
	if len(got) != 2 || got[0] != "p2" || got[1] != "p3" {
		t.Errorf("sting targets = %v, want [p2 p3]", got)
	}

	// Healers may cover themselves.
	got = m.ValidTargets("p3", AbilityNurse)
	if len(got) != 3 {
		t.Errorf("nurse targets = %v, want all three", got)
	}
}

func TestDuskRolesAlive(t *testing.T) {
	m := buildMatch(t, "warden", "wasp", "worker")
	if !m.DuskRolesAlive() {
		t.Error("warden alive, want dusk phase")
	}
	p, _ := m.Player("p1")
	p.Alive = false
	if m.DuskRolesAlive() {
		t.Error("warden dead, want no dusk phase")
	}
}

func TestSubmitVote(t *testing.T) {
	m := buildMatch(t, "wasp", "worker", "nurse")
	if err := m.SubmitVote("p1", "p2"); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("vote outside voting: got %v, want ErrWrongPhase", err)
	}

	m.Phase = PhaseVoting
	m.OpenVotes()
	if err := m.SubmitVote("p1", "p2"); err != nil {
		t.Fatalf("vote: %v", err)
	}
	if err := m.SubmitVote("p1", ""); err != nil {
		t.Fatalf("skip overwrite: %v", err)
	}
	if err := m.SubmitVote("p2", "ghost"); !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("vote for unknown: got %v, want ErrInvalidTarget", err)
	}

	votes := m.CloseVotes()
	if len(votes) != 1 || votes[0].Target != "" {
		t.Errorf("closed votes = %+v, want one skip by p1", votes)
	}
	if err := m.SubmitVote("p2", "p1"); !errors.Is(err, ErrPhaseClosed) {
		t.Errorf("after close: got %v, want ErrPhaseClosed", err)
	}
}
