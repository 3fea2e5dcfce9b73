package types

// GameState is the poker dice server's view of a game, as returned by
// GET /game/{id}/state and embedded in action responses.
//
//	game_id: string
//	status: "waiting" | "active" | "completed"
//	current_round: number
//	max_rounds: number
//	players: Player[] // sorted by score, highest first
//	current_turn: { roll: number[], remaining_rerolls: number, combination: string | null } | null
//	winner: { id, name, score } | null
//	error: string // only set when the server reports a problem
type GameState struct {
	GameID       string   `json:"game_id"`
	Status       Status   `json:"status"`
	CurrentRound int      `json:"current_round"`
	MaxRounds    int      `json:"max_rounds"`
	Players      []Player `json:"players"`
	CurrentTurn  *Turn    `json:"current_turn"`
	Winner       *Winner  `json:"winner"`
	Error        string   `json:"error,omitempty"`
}

type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

type Player struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Score     int    `json:"score"`
	IsReady   bool   `json:"is_ready"`
	IsCurrent bool   `json:"is_current"`
}

type Turn struct {
	Roll             []int  `json:"roll"`
	RemainingRerolls int    `json:"remaining_rerolls"`
	Combination      string `json:"combination"`
}

type Winner struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// Player returns the player with id, if present.
func (g *GameState) Player(id string) (Player, bool) {
	if g == nil {
		return Player{}, false
	}
	for _, p := range g.Players {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}

// Current returns the player whose turn it is, if any.
func (g *GameState) Current() (Player, bool) {
	if g == nil {
		return Player{}, false
	}
	for _, p := range g.Players {
		if p.IsCurrent {
			return p, true
		}
	}
	return Player{}, false
}
