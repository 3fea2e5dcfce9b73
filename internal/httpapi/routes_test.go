package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DoyleJ11/dicegame/internal/lobby"
	"github.com/DoyleJ11/dicegame/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMirror(t *testing.T) (*lobby.Lobby, *httptest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	table := lobby.NewLobby(ctx)
	srv := httptest.NewServer(SetupRoutes(table, zap.NewNop()))
	t.Cleanup(srv.Close)
	return table, srv
}

func TestHealthz(t *testing.T) {
	_, srv := newMirror(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGetView(t *testing.T) {
	table, srv := newMirror(t)
	table.Send(lobby.Seat{PlayerID: "p1"})
	table.Send(lobby.StateReceived{State: &types.GameState{
		GameID:  "g1",
		Status:  types.StatusWaiting,
		Players: []types.Player{{ID: "p1", Name: "Ann"}},
	}})

	resp, err := http.Get(srv.URL + "/view")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var v lobby.View
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	assert.Equal(t, "p1", v.PlayerID)
	assert.Equal(t, lobby.ControlsLobby, v.Controls)
	assert.True(t, v.ReadyEnabled)
	require.NotNil(t, v.State)
	assert.Equal(t, "g1", v.State.GameID)
}

func TestGetView_TableClosed(t *testing.T) {
	table, srv := newMirror(t)
	table.Send(lobby.Shutdown{})
	select {
	case <-table.Done():
	case <-time.After(time.Second):
		t.Fatal("table did not shut down")
	}

	resp, err := http.Get(srv.URL + "/view")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestActionsAreNotRouted(t *testing.T) {
	_, srv := newMirror(t)

	resp, err := http.Post(srv.URL+"/view", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
