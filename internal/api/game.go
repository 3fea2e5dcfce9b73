package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/DoyleJ11/dicegame/pkg/types"
)

func gamePath(gameID, action string) string {
	return "/game/" + url.PathEscape(gameID) + "/" + action
}

func (c *Client) CreateGame(ctx context.Context, maxPlayers, maxRounds int) (string, error) {
	var resp types.CreateGameResponse
	req := types.CreateGameRequest{MaxPlayers: maxPlayers, MaxRounds: maxRounds}
	if err := c.post(ctx, "/create_game", req, &resp); err != nil {
		return "", fmt.Errorf("create game: %w", err)
	}
	if !resp.Success {
		return "", rejected(resp.Error, "create game rejected")
	}
	return resp.GameID, nil
}

// JoinGame adds playerName to the game and returns the new player id.
// The server also sets the session cookie that later calls rely on.
func (c *Client) JoinGame(ctx context.Context, gameID, playerName string) (string, *types.GameState, error) {
	var resp types.JoinGameResponse
	req := types.JoinGameRequest{GameID: gameID, PlayerName: playerName}
	if err := c.post(ctx, "/join_game", req, &resp); err != nil {
		return "", nil, fmt.Errorf("join game: %w", err)
	}
	if !resp.Success {
		return "", nil, rejected(resp.Error, "join game rejected")
	}
	return resp.PlayerID, resp.GameState, nil
}

// Ready marks the player ready. started reports whether this call
// started the game.
func (c *Client) Ready(ctx context.Context, gameID string) (started bool, state *types.GameState, err error) {
	var resp types.ReadyResponse
	if err := c.post(ctx, gamePath(gameID, "ready"), nil, &resp); err != nil {
		return false, nil, fmt.Errorf("ready: %w", err)
	}
	if !resp.Success {
		return false, nil, rejected(resp.Error, "ready rejected")
	}
	return resp.GameStarted, resp.GameState, nil
}

func (c *Client) State(ctx context.Context, gameID string) (*types.GameState, error) {
	var state types.GameState
	if err := c.get(ctx, gamePath(gameID, "state"), &state); err != nil {
		return nil, fmt.Errorf("state: %w", err)
	}
	if state.Error != "" {
		return nil, &Error{Message: state.Error}
	}
	return &state, nil
}

func (c *Client) Reroll(ctx context.Context, gameID string, indices []int) (*types.GameState, error) {
	if indices == nil {
		indices = []int{}
	}
	var resp types.ActionResponse
	req := types.RerollRequest{DiceToReroll: indices}
	if err := c.post(ctx, gamePath(gameID, "reroll"), req, &resp); err != nil {
		return nil, fmt.Errorf("reroll: %w", err)
	}
	if !resp.Success {
		return nil, rejected(resp.Error, "reroll rejected")
	}
	return resp.GameState, nil
}

func (c *Client) EndTurn(ctx context.Context, gameID string) (*types.GameState, error) {
	var resp types.ActionResponse
	if err := c.post(ctx, gamePath(gameID, "end_turn"), nil, &resp); err != nil {
		return nil, fmt.Errorf("end turn: %w", err)
	}
	if !resp.Success {
		return nil, rejected(resp.Error, "end turn rejected")
	}
	return resp.GameState, nil
}

func (c *Client) Leave(ctx context.Context, gameID string) error {
	var resp types.ActionResponse
	if err := c.post(ctx, gamePath(gameID, "leave"), nil, &resp); err != nil {
		return fmt.Errorf("leave: %w", err)
	}
	if !resp.Success {
		return rejected(resp.Error, "leave rejected")
	}
	return nil
}
