package engine

// Vote is one day-phase ballot. An empty target is a skip.
type Vote struct {
	Voter  string
	Target string
}

// Tally reads the open window's running count. Voting is public, so
// this goes out to everyone after each ballot.
func (m *Match) Tally() (map[string]int, int) {
	counts := make(map[string]int)
	skips := 0
	for _, id := range m.voteOrder {
		if t := m.votes[id]; t == "" {
			skips++
		} else {
			counts[t]++
		}
	}
	return counts, skips
}

// VoteOutcome is the tally of one voting window.
type VoteOutcome struct {
	Eliminated string
	Tally      map[string]int
	Skips      int
}

// ResolveVotes counts the closed ballots. On a tie the target that
// reached the top count first, in submission order, is eliminated.
// Nobody dies when every ballot is a skip.
func (m *Match) ResolveVotes(votes []Vote) *VoteOutcome {
	out := &VoteOutcome{Tally: make(map[string]int)}
	best := 0
	for _, v := range votes {
		if v.Target == "" {
			out.Skips++
			continue
		}
		out.Tally[v.Target]++
		if out.Tally[v.Target] > best {
			best = out.Tally[v.Target]
			out.Eliminated = v.Target
		}
	}
	if out.Eliminated != "" {
		if p, ok := m.Player(out.Eliminated); ok && p.Alive {
			p.Alive = false
		}
	}
	return out
}
