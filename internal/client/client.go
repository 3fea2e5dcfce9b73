package client

import (
	"context"
	"errors"
	"strings"

	"github.com/DoyleJ11/dicegame/internal/api"
	"github.com/DoyleJ11/dicegame/internal/lobby"
	"github.com/DoyleJ11/dicegame/internal/session"
	"github.com/DoyleJ11/dicegame/pkg/types"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var ErrNameRequired = errors.New("player name is required")
var ErrFieldsRequired = errors.New("game id and player name are required")
var ErrNotInGame = errors.New("not in a game")
var ErrNoDiceSelected = errors.New("no dice selected")
var ErrNoRerollsLeft = errors.New("no rerolls left")

const (
	DefaultMaxPlayers = 4
	DefaultMaxRounds  = 3
)

// GameAPI is the part of *api.Client the controller drives.
type GameAPI interface {
	CreateGame(ctx context.Context, maxPlayers, maxRounds int) (string, error)
	JoinGame(ctx context.Context, gameID, playerName string) (string, *types.GameState, error)
	Ready(ctx context.Context, gameID string) (bool, *types.GameState, error)
	Reroll(ctx context.Context, gameID string, indices []int) (*types.GameState, error)
	EndTurn(ctx context.Context, gameID string) (*types.GameState, error)
	Leave(ctx context.Context, gameID string) error
}

type Table interface {
	Send(m lobby.Msg) bool
	View(ctx context.Context) (lobby.View, error)
	Done() <-chan struct{}
}

type Poller interface {
	Start(ctx context.Context, gameID string)
	Stop()
}

type Option func(*Controller)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

func WithPrinter(p *message.Printer) Option {
	return func(c *Controller) { c.p = p }
}

func WithSession(store *session.Store) Option {
	return func(c *Controller) { c.session = store }
}

// Controller turns player intents into server calls and feeds the
// results to the table. Every failure is shown as an error banner and
// returned.
type Controller struct {
	api     GameAPI
	table   Table
	poller  Poller
	session *session.Store
	p       *message.Printer
	logger  *zap.Logger
}

func New(gameAPI GameAPI, table Table, poller Poller, opts ...Option) *Controller {
	c := &Controller{
		api:     gameAPI,
		table:   table,
		poller:  poller,
		session: session.NewStore(),
		p:       message.NewPrinter(language.AmericanEnglish),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) Session() *session.Store { return c.session }

// CreateGame creates a game and joins it as playerName.
func (c *Controller) CreateGame(ctx context.Context, playerName string, maxPlayers, maxRounds int) error {
	playerName = strings.TrimSpace(playerName)
	if playerName == "" {
		c.showError(c.p.Sprintf("Enter a player name."))
		return ErrNameRequired
	}
	if maxPlayers <= 0 {
		maxPlayers = DefaultMaxPlayers
	}
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}

	gameID, err := c.api.CreateGame(ctx, maxPlayers, maxRounds)
	if err != nil {
		return c.fail("create game", err)
	}
	c.session.Set(session.KeyPlayerName, playerName)
	c.logger.Info("game created",
		zap.String("game_id", gameID),
		zap.Int("max_players", maxPlayers),
		zap.Int("max_rounds", maxRounds))

	return c.join(ctx, gameID, playerName)
}

func (c *Controller) JoinGame(ctx context.Context, gameID, playerName string) error {
	gameID = strings.TrimSpace(gameID)
	playerName = strings.TrimSpace(playerName)
	if gameID == "" || playerName == "" {
		c.showError(c.p.Sprintf("Fill in all fields."))
		return ErrFieldsRequired
	}
	return c.join(ctx, gameID, playerName)
}

func (c *Controller) join(ctx context.Context, gameID, playerName string) error {
	playerID, state, err := c.api.JoinGame(ctx, gameID, playerName)
	if err != nil {
		return c.fail("join game", err)
	}

	c.session.Set(session.KeyGameID, gameID)
	c.session.Set(session.KeyPlayerID, playerID)
	c.session.Set(session.KeyPlayerName, playerName)

	c.table.Send(lobby.Seat{PlayerID: playerID})
	if state != nil {
		c.table.Send(lobby.StateReceived{State: state})
	}
	c.table.Send(lobby.ShowMessage{Text: c.p.Sprintf("Joined game %s as %s.", gameID, playerName), Kind: lobby.KindInfo})
	c.poller.Start(context.WithoutCancel(ctx), gameID)

	c.logger.Info("joined game",
		zap.String("game_id", gameID),
		zap.String("player_id", playerID))
	return nil
}

// Ready marks the player ready; polling restarts when that started the game.
func (c *Controller) Ready(ctx context.Context) error {
	gameID, err := c.gameID()
	if err != nil {
		return err
	}
	started, state, err := c.api.Ready(ctx, gameID)
	if err != nil {
		return c.fail("ready", err)
	}
	c.logger.Debug("player ready",
		zap.String("game_id", gameID),
		zap.Bool("game_started", started))
	if started {
		c.poller.Start(context.WithoutCancel(ctx), gameID)
	}
	c.apply(state)
	return nil
}

// ToggleDie flips die i in the reroll selection. The table refuses it
// unless it is our turn with rerolls left. A table that shuts down before
// answering yields ErrNotInGame.
func (c *Controller) ToggleDie(i int) error {
	reply := make(chan error, 1)
	if !c.table.Send(lobby.ToggleDie{Index: i, Reply: reply}) {
		return ErrNotInGame
	}
	select {
	case err := <-reply:
		return err
	case <-c.table.Done():
		select {
		case err := <-reply:
			return err
		default:
			return ErrNotInGame
		}
	}
}

func (c *Controller) Reroll(ctx context.Context) error {
	gameID, err := c.gameID()
	if err != nil {
		return err
	}
	v, err := c.table.View(ctx)
	if err != nil {
		return err
	}
	if len(v.Selected) == 0 {
		c.showError(c.p.Sprintf("Select dice to reroll first."))
		return ErrNoDiceSelected
	}
	if v.RemainingRerolls <= 0 {
		c.showError(c.p.Sprintf("No rerolls left."))
		return ErrNoRerollsLeft
	}

	state, err := c.api.Reroll(ctx, gameID, v.Selected)
	if err != nil {
		return c.fail("reroll", err)
	}
	c.logger.Debug("dice rerolled",
		zap.String("game_id", gameID),
		zap.Ints("dice", v.Selected))
	c.apply(state)
	return nil
}

func (c *Controller) EndTurn(ctx context.Context) error {
	gameID, err := c.gameID()
	if err != nil {
		return err
	}
	state, err := c.api.EndTurn(ctx, gameID)
	if err != nil {
		return c.fail("end turn", err)
	}
	c.table.Send(lobby.ClearSelection{})
	c.apply(state)
	return nil
}

// Leave leaves the game. Local state is dropped even when the server
// call fails, as the player is done with this game either way.
func (c *Controller) Leave(ctx context.Context) error {
	gameID, err := c.gameID()
	if err != nil {
		return err
	}
	c.poller.Stop()
	err = c.api.Leave(ctx, gameID)
	if err != nil {
		c.logger.Warn("leave failed", zap.String("game_id", gameID), zap.Error(err))
	}
	c.session.Clear()
	c.table.Send(lobby.Reset{})
	return err
}

func (c *Controller) gameID() (string, error) {
	gameID := c.session.GameID()
	if gameID == "" {
		return "", ErrNotInGame
	}
	return gameID, nil
}

func (c *Controller) apply(state *types.GameState) {
	if state == nil {
		return
	}
	c.table.Send(lobby.StateReceived{State: state})
	if state.Status == types.StatusCompleted {
		c.poller.Stop()
	}
}

// fail shows err as an error banner: the server's own text when it sent
// one, a generic connection message otherwise.
func (c *Controller) fail(action string, err error) error {
	msg, ok := api.Message(err)
	if !ok {
		msg = c.p.Sprintf("Connection error.")
	}
	c.showError(msg)
	c.logger.Warn("action failed", zap.String("action", action), zap.Error(err))
	return err
}

func (c *Controller) showError(text string) {
	c.table.Send(lobby.ShowMessage{Text: text, Kind: lobby.KindError})
}
