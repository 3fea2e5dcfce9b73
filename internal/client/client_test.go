package client

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/DoyleJ11/dicegame/internal/api"
	"github.com/DoyleJ11/dicegame/internal/api/apitest"
	"github.com/DoyleJ11/dicegame/internal/lobby"
	"github.com/DoyleJ11/dicegame/internal/session"
	"github.com/DoyleJ11/dicegame/pkg/types"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePoller struct {
	mu     sync.Mutex
	starts []string
	stops  int
}

func (f *fakePoller) Start(ctx context.Context, gameID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts = append(f.starts, gameID)
}

func (f *fakePoller) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
}

func (f *fakePoller) Starts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.starts...)
}

func (f *fakePoller) Stops() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stops
}

type fixture struct {
	srv    *apitest.Server
	table  *lobby.Lobby
	poller *fakePoller
	c      *Controller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	srv := apitest.NewServer("g1", "p1")
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	gameAPI, err := api.NewClient(srv.URL, api.WithTimeout(2*time.Second))
	require.NoError(t, err)

	table := lobby.NewLobby(ctx, lobby.WithClock(clockwork.NewFakeClock()))
	poller := &fakePoller{}
	return &fixture{
		srv:    srv,
		table:  table,
		poller: poller,
		c:      New(gameAPI, table, poller),
	}
}

func (f *fixture) view(t *testing.T) lobby.View {
	t.Helper()
	v, err := f.table.View(context.Background())
	require.NoError(t, err)
	return v
}

func (f *fixture) requireBanner(t *testing.T, kind lobby.Kind, text string) {
	t.Helper()
	v := f.view(t)
	require.NotNil(t, v.Banner, "expected a banner")
	assert.Equal(t, kind, v.Banner.Kind)
	assert.Equal(t, text, v.Banner.Text)
}

// startGame joins as Ann and readies into an active game where it is
// Ann's turn with rerolls left.
func (f *fixture) startGame(t *testing.T, rerolls int) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.c.JoinGame(ctx, "g1", "Ann"))

	f.srv.SetState(types.GameState{
		GameID:       "g1",
		Status:       types.StatusActive,
		CurrentRound: 1,
		MaxRounds:    3,
		Players: []types.Player{
			{ID: "p1", Name: "Ann", IsReady: true, IsCurrent: true},
			{ID: "p2", Name: "Bob", IsReady: true},
		},
		CurrentTurn: &types.Turn{Roll: []int{2, 2, 5, 6, 1}, RemainingRerolls: rerolls, Combination: "Pair"},
	})
	f.srv.SetGameStarted(true)
	require.NoError(t, f.c.Ready(ctx))
	require.Equal(t, lobby.ControlsActive, f.view(t).Controls)
}

func TestCreateGame_RequiresName(t *testing.T) {
	f := newFixture(t)

	err := f.c.CreateGame(context.Background(), "   ", 4, 3)
	require.ErrorIs(t, err, ErrNameRequired)
	f.requireBanner(t, lobby.KindError, "Enter a player name.")
	assert.Empty(t, f.srv.Requests())
}

func TestCreateGame_JoinsAndStartsPolling(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.c.CreateGame(context.Background(), "Ann", 0, 0))

	req, ok := f.srv.LastRequest("/create_game")
	require.True(t, ok)
	var body types.CreateGameRequest
	require.NoError(t, json.Unmarshal(req.Body, &body))
	assert.Equal(t, types.CreateGameRequest{MaxPlayers: DefaultMaxPlayers, MaxRounds: DefaultMaxRounds}, body)

	store := f.c.Session()
	assert.Equal(t, "g1", store.GameID())
	assert.Equal(t, "p1", store.PlayerID())
	assert.Equal(t, "Ann", store.PlayerName())
	assert.Equal(t, []string{"g1"}, f.poller.Starts())

	v := f.view(t)
	assert.Equal(t, "p1", v.PlayerID)
	assert.Equal(t, lobby.ControlsLobby, v.Controls)
	assert.True(t, v.ReadyEnabled)
	require.NotNil(t, v.Banner)
	assert.Equal(t, lobby.KindInfo, v.Banner.Kind)
	assert.Equal(t, "Joined game g1 as Ann.", v.Banner.Text)
}

func TestCreateGame_ServerRejects(t *testing.T) {
	f := newFixture(t)
	f.srv.Fail("create_game", "too many games")

	err := f.c.CreateGame(context.Background(), "Ann", 4, 3)
	require.Error(t, err)
	f.requireBanner(t, lobby.KindError, "too many games")
	assert.Empty(t, f.poller.Starts())
}

func TestJoinGame(t *testing.T) {
	cases := []struct {
		name       string
		gameID     string
		player     string
		fail       string
		wantErr    error
		wantBanner string
	}{
		{name: "missing game id", gameID: " ", player: "Ann", wantErr: ErrFieldsRequired, wantBanner: "Fill in all fields."},
		{name: "missing name", gameID: "g1", player: "", wantErr: ErrFieldsRequired, wantBanner: "Fill in all fields."},
		{name: "server rejects", gameID: "g1", player: "Ann", fail: "game is full", wantBanner: "game is full"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			if tc.fail != "" {
				f.srv.Fail("join_game", tc.fail)
			}

			err := f.c.JoinGame(context.Background(), tc.gameID, tc.player)
			require.Error(t, err)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
			}
			f.requireBanner(t, lobby.KindError, tc.wantBanner)
			assert.Empty(t, f.poller.Starts())
			assert.Empty(t, f.c.Session().PlayerID())
		})
	}
}

func TestReady(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.ErrorIs(t, f.c.Ready(ctx), ErrNotInGame)

	require.NoError(t, f.c.JoinGame(ctx, "g1", "Ann"))
	require.NoError(t, f.c.Ready(ctx))
	assert.Equal(t, []string{"g1"}, f.poller.Starts(), "not started yet, no restart")

	f.srv.SetGameStarted(true)
	require.NoError(t, f.c.Ready(ctx))
	assert.Equal(t, []string{"g1", "g1"}, f.poller.Starts())
}

func TestToggleDie(t *testing.T) {
	f := newFixture(t)
	require.ErrorIs(t, f.c.ToggleDie(0), lobby.ErrSelectionDisabled)

	f.startGame(t, 2)
	require.NoError(t, f.c.ToggleDie(1))
	require.NoError(t, f.c.ToggleDie(4))
	assert.Equal(t, []int{1, 4}, f.view(t).Selected)
}

// mutedTable accepts every message and never answers.
type mutedTable struct {
	done chan struct{}
}

func (m *mutedTable) Send(lobby.Msg) bool { return true }

func (m *mutedTable) View(context.Context) (lobby.View, error) {
	return lobby.View{}, context.Canceled
}

func (m *mutedTable) Done() <-chan struct{} { return m.done }

func TestToggleDie_TableClosesBeforeAnswering(t *testing.T) {
	table := &mutedTable{done: make(chan struct{})}
	c := New(nil, table, &fakePoller{})

	errc := make(chan error, 1)
	go func() { errc <- c.ToggleDie(0) }()
	close(table.done)

	select {
	case err := <-errc:
		require.ErrorIs(t, err, ErrNotInGame)
	case <-time.After(time.Second):
		t.Fatal("ToggleDie blocked after the table closed")
	}
}

func TestToggleDie_AfterShutdownQueued(t *testing.T) {
	f := newFixture(t)
	f.table.Send(lobby.Shutdown{})

	errc := make(chan error, 1)
	go func() { errc <- f.c.ToggleDie(0) }()

	select {
	case err := <-errc:
		require.ErrorIs(t, err, ErrNotInGame)
	case <-time.After(time.Second):
		t.Fatal("ToggleDie blocked on a shut down table")
	}
}

func TestReroll_SendsSelection(t *testing.T) {
	f := newFixture(t)
	f.startGame(t, 2)

	require.NoError(t, f.c.ToggleDie(4))
	require.NoError(t, f.c.ToggleDie(0))
	require.NoError(t, f.c.Reroll(context.Background()))

	req, ok := f.srv.LastRequest("/game/g1/reroll")
	require.True(t, ok)
	var body types.RerollRequest
	require.NoError(t, json.Unmarshal(req.Body, &body))
	assert.Equal(t, []int{0, 4}, body.DiceToReroll)
}

func TestReroll_Guards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.ErrorIs(t, f.c.Reroll(ctx), ErrNotInGame)

	f.startGame(t, 1)
	require.ErrorIs(t, f.c.Reroll(ctx), ErrNoDiceSelected)
	f.requireBanner(t, lobby.KindError, "Select dice to reroll first.")

	require.NoError(t, f.c.ToggleDie(2))
	// a poll lands with the rerolls spent while it is still our turn
	v := f.view(t)
	spent := *v.State
	turn := *spent.CurrentTurn
	turn.RemainingRerolls = 0
	spent.CurrentTurn = &turn
	f.table.Send(lobby.StateReceived{State: &spent})

	require.ErrorIs(t, f.c.Reroll(ctx), ErrNoRerollsLeft)
	f.requireBanner(t, lobby.KindError, "No rerolls left.")
	_, sent := f.srv.LastRequest("/game/g1/reroll")
	assert.False(t, sent)
}

func TestReroll_ServerRejects(t *testing.T) {
	f := newFixture(t)
	f.startGame(t, 2)
	f.srv.Fail("reroll", "not your turn")

	require.NoError(t, f.c.ToggleDie(0))
	require.Error(t, f.c.Reroll(context.Background()))
	f.requireBanner(t, lobby.KindError, "not your turn")
}

func TestEndTurn_ClearsSelection(t *testing.T) {
	f := newFixture(t)
	f.startGame(t, 2)

	require.NoError(t, f.c.ToggleDie(3))
	require.NoError(t, f.c.EndTurn(context.Background()))

	_, ok := f.srv.LastRequest("/game/g1/end_turn")
	assert.True(t, ok)
	assert.Empty(t, f.view(t).Selected)
}

func TestEndTurn_CompletedStopsPolling(t *testing.T) {
	f := newFixture(t)
	f.startGame(t, 2)
	stops := f.poller.Stops()

	f.srv.SetState(types.GameState{
		GameID:       "g1",
		Status:       types.StatusCompleted,
		CurrentRound: 3,
		MaxRounds:    3,
		Players: []types.Player{
			{ID: "p1", Name: "Ann", Score: 4},
			{ID: "p2", Name: "Bob", Score: 2},
		},
	})
	require.NoError(t, f.c.EndTurn(context.Background()))

	assert.Equal(t, stops+1, f.poller.Stops())
	assert.Equal(t, lobby.ControlsResults, f.view(t).Controls)
}

func TestLeave(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.ErrorIs(t, f.c.Leave(ctx), ErrNotInGame)

	require.NoError(t, f.c.JoinGame(ctx, "g1", "Ann"))
	require.NoError(t, f.c.Leave(ctx))

	_, ok := f.srv.LastRequest("/game/g1/leave")
	assert.True(t, ok)
	assert.Equal(t, 1, f.poller.Stops())
	_, has := f.c.Session().Get(session.KeyPlayerID)
	assert.False(t, has)
	assert.Empty(t, f.c.Session().GameID())

	v := f.view(t)
	assert.Nil(t, v.State)
	assert.Equal(t, lobby.ControlsNone, v.Controls)
}

func TestConnectionErrorBanner(t *testing.T) {
	f := newFixture(t)
	f.srv.Close()

	err := f.c.CreateGame(context.Background(), "Ann", 4, 3)
	require.Error(t, err)
	_, isServerMsg := api.Message(err)
	assert.False(t, isServerMsg)
	f.requireBanner(t, lobby.KindError, "Connection error.")
}
