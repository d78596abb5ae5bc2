package engine

import "time"

// Phase represents the current stage of the match state machine.
type Phase int

const (
	PhaseWaiting  Phase = iota // lobby, waiting for players
	PhaseStarting              // countdown before roles are dealt
	PhaseSetup                 // roles assigned, players shown their instructions
	PhaseDusk                  // dusk-only abilities (jail, duel challenges)
	PhaseNight                 // night action window
	PhaseDay                   // night results announced, open discussion
	PhaseVoting                // day vote window
	PhaseFinished              // match over
)

var phaseNames = map[Phase]string{
	PhaseWaiting:  "waiting",
	PhaseStarting: "starting",
	PhaseSetup:    "setup",
	PhaseDusk:     "dusk",
	PhaseNight:    "night",
	PhaseDay:      "day",
	PhaseVoting:   "voting",
	PhaseFinished: "finished",
}

func (p Phase) String() string {
	if s, ok := phaseNames[p]; ok {
		return s
	}
	return "unknown"
}

// TimingProfile holds the duration of each timed phase. The grace period
// is how long a finished match lingers before the registry retires it.
type TimingProfile struct {
	Starting time.Duration
	Setup    time.Duration
	Dusk     time.Duration
	Night    time.Duration
	Day      time.Duration
	Voting   time.Duration
	Grace    time.Duration
}

// StandardTiming is the profile used for real matches.
func StandardTiming() TimingProfile {
	return TimingProfile{
		Starting: 10 * time.Second,
		Setup:    15 * time.Second,
		Dusk:     30 * time.Second,
		Night:    45 * time.Second,
		Day:      60 * time.Second,
		Voting:   30 * time.Second,
		Grace:    60 * time.Second,
	}
}

// FastTiming is the debug profile; every phase is bounded but short.
func FastTiming() TimingProfile {
	return TimingProfile{
		Starting: 50 * time.Millisecond,
		Setup:    50 * time.Millisecond,
		Dusk:     50 * time.Millisecond,
		Night:    50 * time.Millisecond,
		Day:      50 * time.Millisecond,
		Voting:   50 * time.Millisecond,
		Grace:    100 * time.Millisecond,
	}
}

// For returns the configured duration of a phase. Untimed phases return 0.
func (t TimingProfile) For(p Phase) time.Duration {
	switch p {
	case PhaseStarting:
		return t.Starting
	case PhaseSetup:
		return t.Setup
	case PhaseDusk:
		return t.Dusk
	case PhaseNight:
		return t.Night
	case PhaseDay:
		return t.Day
	case PhaseVoting:
		return t.Voting
	default:
		return 0
	}
}
