package engine

import "sort"

// Death reasons reported with night and vote results.
const (
	ReasonKilled     = "killed"
	ReasonPoisoned   = "poisoned"
	ReasonExecuted   = "executed"
	ReasonGuilt      = "guilt"
	ReasonProtecting = "protecting"
	ReasonLynched    = "lynched"
)

// Suspicion verdicts.
const (
	VerdictSuspicious = "suspicious"
	VerdictInnocent   = "innocent"
)

// Death is one casualty of a resolution step. Role is the revealed
// role key, left empty when the body was scrubbed clean.
type Death struct {
	PlayerID string
	Reason   string
	Role     string
	Cleaned  bool
}

// InvestigationResult is a private finding delivered to one player.
type InvestigationResult struct {
	PlayerID string
	Ability  AbilityID
	Target   string
	Verdict  string
	Names    []string
}

// NightOutcome is everything a resolved night produced.
type NightOutcome struct {
	Deaths         []Death
	Investigations []InvestigationResult
	Roleblocked    []string
}

type nightAct struct {
	actor *Player
	grant AbilityGrant
	act   Action
}

type strike struct {
	attacker *Player
	power    int
}

// ResolveNight runs the resolution pipeline over the closed action set:
// visits, roleblocks, protection, attacks and settlement, executions,
// deceptions, investigations, then delayed-effect maturation. Dusk
// submissions that resolve at night, such as duels, are included.
func (m *Match) ResolveNight(actions []Action) *NightOutcome {
	out := &NightOutcome{}
	acts := m.gatherActs(actions)

	// Visit ledger. Written before anything resolves so watchers and
	// trackers see visits to players who end up dead.
	for _, na := range acts {
		m.recordVisits(na)
	}

	// Roleblocks. Blockers and duelists cannot themselves be blocked.
	blocked := make(map[string]bool)
	for _, na := range acts {
		if na.grant.Category == CategoryRoleblock || na.grant.Category == CategoryDuel {
			blocked[na.act.Target] = true
		}
	}
	kept := acts[:0]
	for _, na := range acts {
		if blocked[na.actor.ID] && na.grant.Category != CategoryRoleblock && na.grant.Category != CategoryDuel {
			m.roleblocked[na.actor.ID] = true
			out.Roleblocked = append(out.Roleblocked, na.actor.ID)
			continue
		}
		kept = append(kept, na)
	}
	acts = kept

	// Protection and healing.
	protection := make(map[string]int)
	guards := make(map[string][]strike)
	for _, na := range acts {
		switch na.grant.Category {
		case CategoryProtect:
			raiseProtection(protection, na.act.Target, na.grant.Config.Power)
			guards[na.act.Target] = append(guards[na.act.Target], strike{na.actor, na.grant.Config.Power})
		case CategoryHeal:
			raiseProtection(protection, na.act.Target, na.grant.Config.Power)
			delete(m.poison, na.act.Target)
		case CategoryVest:
			raiseProtection(protection, na.actor.ID, na.grant.Config.Power)
		}
	}

	// Attacks, including duels and alert counter-strikes on visitors.
	strikes := make(map[string][]strike)
	for _, na := range acts {
		if na.grant.Category == CategoryAttack || na.grant.Category == CategoryDuel {
			strikes[na.act.Target] = append(strikes[na.act.Target], strike{na.actor, na.grant.Config.Power})
		}
	}
	for _, na := range acts {
		if na.grant.Category != CategoryAlert {
			continue
		}
		for _, vid := range m.visits[na.actor.ID] {
			strikes[vid] = append(strikes[vid], strike{na.actor, na.grant.Config.Power})
		}
	}

	var pending []Death
	kill := func(p *Player, reason string) {
		if !p.Alive {
			return
		}
		p.Alive = false
		pending = append(pending, Death{PlayerID: p.ID, Reason: reason, Role: p.Role.Key})
	}

	// Settlement: a player dies when the strongest attack beats both
	// their base defense and tonight's protection.
	for _, p := range m.Players {
		if !p.Alive {
			continue
		}
		atks := strikes[p.ID]
		if len(atks) == 0 {
			continue
		}
		maxPow := 0
		for _, s := range atks {
			if s.power > maxPow {
				maxPow = s.power
			}
		}
		baseDef := p.Role.Defense
		eff := baseDef
		if protection[p.ID] > eff {
			eff = protection[p.ID]
		}
		if maxPow > eff {
			kill(p, ReasonKilled)
			// A guard whose charge died anyway falls with them and
			// trades with the first attacker.
			if gs := guards[p.ID]; len(gs) > 0 {
				g := gs[0]
				kill(g.attacker, ReasonProtecting)
				first := atks[0]
				aDef := first.attacker.Role.Defense
				if protection[first.attacker.ID] > aDef {
					aDef = protection[first.attacker.ID]
				}
				if g.power > aDef {
					kill(first.attacker, ReasonKilled)
				}
			}
		}
		for _, s := range atks {
			if s.attacker.Role.Guilt && !p.Alive && s.power > eff && p.Role.Team == TeamBee {
				kill(s.attacker, ReasonGuilt)
			}
		}
	}

	// Executions bypass the defense ladder entirely.
	for _, na := range acts {
		if na.grant.Category != CategoryExecute {
			continue
		}
		if t, ok := m.Player(na.act.Target); ok {
			kill(t, ReasonExecuted)
		}
	}

	// Deceptions land before investigations so same-night disguises
	// and scrubs take effect.
	cleaned := make(map[string]bool)
	for _, na := range acts {
		switch na.grant.Category {
		case CategorySilence:
			m.muted[na.act.Target] = true
		case CategoryClean:
			cleaned[na.act.Target] = true
		case CategoryDisguise, CategoryMimic:
			if t, ok := m.Player(na.act.Target); ok {
				na.actor.AppearsAs = t.Appearance()
			}
		}
	}

	// Investigations read the settled board. Dead investigators get
	// no result.
	for _, na := range acts {
		if na.grant.Category != CategoryInvestigate || !na.actor.Alive {
			continue
		}
		if r, ok := m.investigate(na); ok {
			out.Investigations = append(out.Investigations, r)
		}
	}

	// Delayed effects: apply tonight's, then mature whatever is due.
	for _, na := range acts {
		t, ok := m.Player(na.act.Target)
		if !ok || !t.Alive {
			continue
		}
		switch na.grant.Category {
		case CategoryPoison:
			m.poison[t.ID] = &delayedEffect{Source: na.actor.ID, AppliedNight: m.Night, Delay: na.grant.Config.Delay}
		case CategoryPollinate:
			m.pollination[t.ID] = &delayedEffect{Source: na.actor.ID, AppliedNight: m.Night, Delay: na.grant.Config.Delay}
		}
	}
	for _, p := range m.Players {
		if eff, ok := m.poison[p.ID]; ok && m.Night-eff.AppliedNight >= eff.Delay {
			delete(m.poison, p.ID)
			kill(p, ReasonPoisoned)
		}
		if eff, ok := m.pollination[p.ID]; ok && m.Night-eff.AppliedNight >= eff.Delay {
			delete(m.pollination, p.ID)
			if p.Alive {
				p.Converted = true
			}
		}
	}

	for _, d := range pending {
		if cleaned[d.PlayerID] {
			d.Role = ""
			d.Cleaned = true
		}
		out.Deaths = append(out.Deaths, d)
	}
	return out
}

// gatherActs merges carried dusk actions with the night's submissions,
// drops anything from dead or confined actors, drops anything aimed at
// a confined player except the jailer's own execution, and orders the
// rest by priority, ties kept in submission order.
func (m *Match) gatherActs(actions []Action) []nightAct {
	merged := make([]Action, 0, len(m.duskActions)+len(actions))
	merged = append(merged, m.duskActions...)
	merged = append(merged, actions...)

	var acts []nightAct
	for _, a := range merged {
		actor, ok := m.Player(a.Actor)
		if !ok || !actor.Alive || m.jailed[actor.ID] {
			continue
		}
		grant, ok := actor.Grant(a.Ability)
		if !ok {
			continue
		}
		if grant.Category == CategoryExecute {
			if m.prisoners[actor.ID] != a.Target {
				continue
			}
		} else if m.jailed[a.Target] || m.jailed[a.Target2] {
			continue
		}
		acts = append(acts, nightAct{actor: actor, grant: grant, act: a})
	}
	sort.SliceStable(acts, func(i, j int) bool {
		return acts[i].grant.Priority < acts[j].grant.Priority
	})
	return acts
}

func (m *Match) recordVisits(na nightAct) {
	switch na.grant.Shape {
	case ShapeSingle, ShapeDouble:
	default:
		return
	}
	for _, tid := range []string{na.act.Target, na.act.Target2} {
		if tid == "" || tid == na.actor.ID {
			continue
		}
		if t, ok := m.Player(tid); ok && t.Alive {
			m.visits[tid] = append(m.visits[tid], na.actor.ID)
		}
	}
}

func raiseProtection(protection map[string]int, id string, power int) {
	if power > protection[id] {
		protection[id] = power
	}
}

func (m *Match) investigate(na nightAct) (InvestigationResult, bool) {
	r := InvestigationResult{PlayerID: na.actor.ID, Ability: na.grant.ID, Target: na.act.Target}
	switch na.grant.Detect {
	case DetectSuspicion:
		t, ok := m.Player(na.act.Target)
		if !ok {
			return r, false
		}
		r.Verdict = VerdictInnocent
		if m.seemsEvil(t) {
			r.Verdict = VerdictSuspicious
		}
	case DetectRole:
		t, ok := m.Player(na.act.Target)
		if !ok {
			return r, false
		}
		r.Verdict = t.Appearance()
	case DetectLookout:
		for _, vid := range m.visits[na.act.Target] {
			if vid != na.actor.ID {
				r.Names = append(r.Names, vid)
			}
		}
	case DetectTrack:
		for _, p := range m.Players {
			for _, vid := range m.visits[p.ID] {
				if vid == na.act.Target {
					r.Names = append(r.Names, p.ID)
				}
			}
		}
	case DetectPsychic:
		r.Names = m.vision(na.actor.ID)
	default:
		return r, false
	}
	return r, true
}

// seemsEvil is the suspicion check: conversion always reads suspicious,
// otherwise the apparent role's team and innocence flag decide.
func (m *Match) seemsEvil(p *Player) bool {
	if p.Converted {
		return true
	}
	role := *p.Role
	if p.AppearsAs != "" {
		if r, err := m.catalog.Get(p.AppearsAs); err == nil {
			role = r
		}
	}
	if role.Innocent {
		return false
	}
	return role.Team == TeamWasp || role.Subteam == SubteamEvil || role.Subteam == SubteamKilling
}

func trulyEvil(p *Player) bool {
	if p.Converted {
		return true
	}
	return p.Role.Team == TeamWasp || p.Role.Subteam == SubteamEvil || p.Role.Subteam == SubteamKilling
}

// vision samples one genuinely evil player and two others, shuffled
// together so the recipient cannot tell which is which.
func (m *Match) vision(seer string) []string {
	var evil, rest []string
	for _, p := range m.Players {
		if !p.Alive || p.ID == seer {
			continue
		}
		if trulyEvil(p) {
			evil = append(evil, p.ID)
		} else {
			rest = append(rest, p.ID)
		}
	}
	var names []string
	if len(evil) > 0 {
		names = append(names, evil[m.rng.IntN(len(evil))])
	}
	m.rng.Shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })
	for i := 0; i < 2 && i < len(rest); i++ {
		names = append(names, rest[i])
	}
	m.rng.Shuffle(len(names), func(i, j int) { names[i], names[j] = names[j], names[i] })
	return names
}
