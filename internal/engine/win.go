package engine

// Winner identifies the faction a finished match went to.
const (
	WinnerBees       = "bees"
	WinnerWasps      = "wasps"
	WinnerPollinated = "pollinated"
	WinnerNeutral    = "neutral_killing"

	// WinnerAborted marks a match torn down by the scheduler rather
	// than decided by play. Nobody shares in it.
	WinnerAborted = "aborted"
)

// Verdict is the win evaluator's answer: the winning faction, if the
// match is over, and every player id sharing in the win.
type Verdict struct {
	Over    bool
	Winner  string
	Winners []string
}

// EvaluateWin checks the ordered faction rules over the living players,
// then folds in personal win conditions. It only reads state, so
// calling it twice in a row gives the same verdict.
func (m *Match) EvaluateWin() Verdict {
	var bees, wasps, pollinated, nk, nEvil, nBenign int
	for _, p := range m.Players {
		if !p.Alive {
			continue
		}
		switch {
		case p.Converted:
			pollinated++
		case p.Role.Team == TeamBee:
			bees++
		case p.Role.Team == TeamWasp:
			wasps++
		case p.Role.Subteam == SubteamKilling:
			nk++
		case p.Role.Subteam == SubteamEvil:
			nEvil++
		default:
			nBenign++
		}
	}

	v := Verdict{}
	switch {
	case pollinated > bees+wasps+nk+nEvil+nBenign:
		v = Verdict{Over: true, Winner: WinnerPollinated}
	case nk == 1 && bees == 0 && wasps == 0 && pollinated == 0:
		v = Verdict{Over: true, Winner: WinnerNeutral}
	// Benign neutrals do not hold off wasp parity.
	case wasps > 0 && pollinated == 0 && wasps >= bees+nk+nEvil:
		v = Verdict{Over: true, Winner: WinnerWasps}
	case wasps == 0 && nk == 0 && pollinated == 0:
		v = Verdict{Over: true, Winner: WinnerBees}
	default:
		return v
	}

	v.Winners = m.WinnersOf(v.Winner)
	return v
}

// WinnersOf lists every player id sharing in a win by the given
// faction, dead members included, plus personal wins riding on top.
func (m *Match) WinnersOf(winner string) []string {
	winners := make(map[string]bool)
	for _, p := range m.Players {
		if m.onWinningSide(p, winner) {
			winners[p.ID] = true
		}
	}

	for _, p := range m.Players {
		switch p.Role.Win {
		case WinSurvive:
			if p.Alive {
				winners[p.ID] = true
			}
		case WinLinked:
			if p.Alive && p.LinkedID != "" {
				if partner, ok := m.Player(p.LinkedID); ok && partner.Alive {
					winners[p.ID] = true
					winners[partner.ID] = true
				}
			}
		}
	}
	for _, p := range m.Players {
		if p.Role.Win == WinWard && p.WardID != "" && winners[p.WardID] {
			winners[p.ID] = true
		}
	}

	var ids []string
	for _, p := range m.Players {
		if winners[p.ID] {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

func (m *Match) onWinningSide(p *Player, winner string) bool {
	switch winner {
	case WinnerPollinated:
		return p.Converted
	case WinnerBees:
		return !p.Converted && p.Role.Team == TeamBee
	case WinnerWasps:
		return !p.Converted && p.Role.Team == TeamWasp
	case WinnerNeutral:
		return !p.Converted && p.Role.Subteam == SubteamKilling
	}
	return false
}
