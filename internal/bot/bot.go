// Package bot provides pluggable decision policies for computer-controlled
// players. The session layer drives bots through the same submission
// paths as humans.
package bot

import (
	"math/rand/v2"

	"hive/internal/engine"
)

// View is the information a policy may act on: the bot's own player
// state plus the public board. Policies never see other players' roles.
type View struct {
	Phase   engine.Phase
	Night   int
	Self    *engine.Player
	Alive   []string
	Targets map[engine.AbilityID][]string
}

// Strategy decides what a bot does with an open submission window.
// A false second return means the bot sits the window out.
type Strategy interface {
	Act(v View) (engine.Action, bool)
	Vote(v View) (string, bool)
}

// Heuristic is the default strategy: use the first usable ability for
// the current window on a uniformly chosen valid target. Seeded, so a
// match replays identically.
type Heuristic struct {
	rng *rand.Rand
}

func NewHeuristic(seed uint64) *Heuristic {
	return &Heuristic{rng: rand.New(rand.NewPCG(seed, seed))}
}

func (h *Heuristic) Act(v View) (engine.Action, bool) {
	for _, g := range v.Self.Role.Abilities {
		if g.Passive || g.SubmitPhase() != v.Phase {
			continue
		}
		if !v.Self.CanUse(g.ID) {
			continue
		}
		a := engine.Action{Actor: v.Self.ID, Ability: g.ID}
		switch g.Shape {
		case engine.ShapeNone, engine.ShapeSelf:
			return a, true
		case engine.ShapeDouble:
			pool := v.Targets[g.ID]
			if len(pool) < 2 {
				continue
			}
			i := h.rng.IntN(len(pool))
			j := h.rng.IntN(len(pool) - 1)
			if j >= i {
				j++
			}
			a.Target, a.Target2 = pool[i], pool[j]
			return a, true
		default:
			pool := v.Targets[g.ID]
			if len(pool) == 0 {
				continue
			}
			a.Target = pool[h.rng.IntN(len(pool))]
			return a, true
		}
	}
	return engine.Action{}, false
}

// Vote picks a random living player, skipping roughly a quarter of the
// time to keep lynches from being a coin flip every day.
func (h *Heuristic) Vote(v View) (string, bool) {
	var pool []string
	for _, id := range v.Alive {
		if id != v.Self.ID {
			pool = append(pool, id)
		}
	}
	if len(pool) == 0 || h.rng.IntN(4) == 0 {
		return "", true
	}
	return pool[h.rng.IntN(len(pool))], true
}
