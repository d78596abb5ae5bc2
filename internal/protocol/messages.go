package protocol

// Message types: Server → Client
const (
	MsgLobbyUpdate         = "lobby_update"
	MsgRoleInfo            = "role_info"
	MsgPhaseChanged        = "phase_changed"
	MsgPrompt              = "prompt"
	MsgActionAccepted      = "action_accepted"
	MsgNightResults        = "night_results"
	MsgInvestigationResult = "investigation_result"
	MsgVoteUpdate          = "vote_update"
	MsgPlayerLynched       = "player_lynched"
	MsgGameEnded           = "game_ended"
	MsgRolesRevealed       = "roles_revealed"
	MsgChat                = "chat"
	MsgError               = "error"
)

// Message types: Client → Server
const (
	MsgJoin         = "join"
	MsgReady        = "ready"
	MsgStartMatch   = "start_match"
	MsgSubmitAction = "submit_action"
	MsgVote         = "vote"
	MsgSendChat     = "chat"
	MsgAddBot       = "add_bot"

	// Debug commands, honored only for privileged players.
	MsgDebugSkipPhase   = "debug_skip_phase"
	MsgDebugRevealRoles = "debug_reveal_roles"
	MsgDebugForceWin    = "debug_force_win"
)

// LobbyUpdate is sent to all clients when lobby state changes.
type LobbyUpdate struct {
	MatchID string        `json:"match_id"`
	Players []LobbyPlayer `json:"players"`
	Started bool          `json:"started"`
}

type LobbyPlayer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Ready bool   `json:"ready"`
	Bot   bool   `json:"bot"`
}

// RoleInfo is each player's private role card, sent once at setup.
type RoleInfo struct {
	Role      string   `json:"role"`
	Name      string   `json:"name"`
	Team      string   `json:"team"`
	Abilities []string `json:"abilities"`
	LinkedID  string   `json:"linked_id,omitempty"`
	WardID    string   `json:"ward_id,omitempty"`
}

// PhaseChanged announces a phase transition and its deadline.
type PhaseChanged struct {
	Phase   string `json:"phase"`
	Night   int    `json:"night"`
	Seconds int    `json:"seconds"`
}

// Prompt asks one player for an ability submission.
type Prompt struct {
	Ability     string   `json:"ability"`
	Instruction string   `json:"instruction"`
	Targets     []string `json:"targets,omitempty"`
}

// SubmitActionMsg is an ability submission for the open window.
type SubmitActionMsg struct {
	Ability string `json:"ability"`
	Target  string `json:"target,omitempty"`
	Target2 string `json:"target2,omitempty"`
}

// VoteMsg casts or changes a day vote. Empty target skips.
type VoteMsg struct {
	Target string `json:"target,omitempty"`
}

// NightResults is the public morning report.
type NightResults struct {
	Night  int          `json:"night"`
	Deaths []DeathEntry `json:"deaths"`
}

type DeathEntry struct {
	PlayerID string `json:"player_id"`
	Reason   string `json:"reason"`
	Role     string `json:"role,omitempty"`
	Cleaned  bool   `json:"cleaned,omitempty"`
}

// Investigation is a private finding delivered to a single player.
type Investigation struct {
	Ability string   `json:"ability"`
	Target  string   `json:"target,omitempty"`
	Verdict string   `json:"verdict,omitempty"`
	Names   []string `json:"names,omitempty"`
}

// VoteUpdate broadcasts the running tally.
type VoteUpdate struct {
	Tally map[string]int `json:"tally"`
	Skips int            `json:"skips"`
}

// PlayerLynched announces the day's elimination. The dead player's
// role and team are public.
type PlayerLynched struct {
	PlayerID string         `json:"player_id,omitempty"`
	Role     string         `json:"role,omitempty"`
	Team     string         `json:"team,omitempty"`
	Tally    map[string]int `json:"tally"`
}

// GameEnded closes the match with the winning faction and everyone
// sharing the win.
type GameEnded struct {
	Winner  string            `json:"winner"`
	Winners []string          `json:"winners"`
	Roles   map[string]string `json:"roles"`
}

// ChatMsg carries table talk. Translated is set when the hive voice
// service rendered the line for the dead or the silenced.
type ChatMsg struct {
	PlayerID   string `json:"player_id"`
	Text       string `json:"text"`
	Translated string `json:"translated,omitempty"`
}

// JoinMsg is sent by a player to join the match.
type JoinMsg struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
}

// ReadyMsg is sent by a player to toggle ready state.
type ReadyMsg struct {
	Ready bool `json:"ready"`
}

// DebugForceWinMsg picks the faction handed the match.
type DebugForceWinMsg struct {
	Winner string `json:"winner"`
}

// RolesRevealed answers a privileged reveal request.
type RolesRevealed struct {
	Roles map[string]string `json:"roles"`
}

// ErrorMsg is sent to a client on error.
type ErrorMsg struct {
	Message string `json:"message"`
}
