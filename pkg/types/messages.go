package types

// Client -> Server
//
// POST /create_game  CreateGameRequest  -> CreateGameResponse
// POST /join_game    JoinGameRequest    -> JoinGameResponse
// POST /game/{id}/ready                 -> ReadyResponse
// GET  /game/{id}/state                 -> GameState
// POST /game/{id}/reroll RerollRequest  -> ActionResponse
// POST /game/{id}/end_turn              -> ActionResponse
// POST /game/{id}/leave                 -> ActionResponse
//
// Every response carries success; on failure error holds a display string.

type CreateGameRequest struct {
	MaxPlayers int `json:"max_players"`
	MaxRounds  int `json:"max_rounds"`
}

type CreateGameResponse struct {
	Success bool   `json:"success"`
	GameID  string `json:"game_id,omitempty"`
	Error   string `json:"error,omitempty"`
}

type JoinGameRequest struct {
	GameID     string `json:"game_id"`
	PlayerName string `json:"player_name"`
}

type JoinGameResponse struct {
	Success   bool       `json:"success"`
	PlayerID  string     `json:"player_id,omitempty"`
	GameState *GameState `json:"game_state,omitempty"`
	Error     string     `json:"error,omitempty"`
}

type ReadyResponse struct {
	Success     bool       `json:"success"`
	GameStarted bool       `json:"game_started"`
	GameState   *GameState `json:"game_state,omitempty"`
	Error       string     `json:"error,omitempty"`
}

type RerollRequest struct {
	DiceToReroll []int `json:"dice_to_reroll"`
}

type ActionResponse struct {
	Success   bool       `json:"success"`
	GameState *GameState `json:"game_state,omitempty"`
	Error     string     `json:"error,omitempty"`
}
