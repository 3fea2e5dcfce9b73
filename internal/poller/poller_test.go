package poller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DoyleJ11/dicegame/internal/api"
	"github.com/DoyleJ11/dicegame/internal/api/apitest"
	"github.com/DoyleJ11/dicegame/internal/lobby"
	"github.com/DoyleJ11/dicegame/pkg/types"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chanSink struct {
	ch chan lobby.Msg
}

func newChanSink() *chanSink { return &chanSink{ch: make(chan lobby.Msg, 16)} }

func (s *chanSink) Send(m lobby.Msg) bool {
	s.ch <- m
	return true
}

func recvMsg(t *testing.T, ch <-chan lobby.Msg, within time.Duration) lobby.Msg {
	t.Helper()
	select {
	case m := <-ch:
		return m
	case <-time.After(within):
		t.Fatalf("timed out waiting for message")
		return nil // unreachable
	}
}

func recvNoMsg(t *testing.T, ch <-chan lobby.Msg, within time.Duration) {
	t.Helper()
	select {
	case m := <-ch:
		t.Fatalf("expected no message within %v, but got: %+v", within, m)
	case <-time.After(within):
	}
}

func waitTicker(t *testing.T, clock *clockwork.FakeClock) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
}

func newClient(t *testing.T, srv *apitest.Server) *api.Client {
	t.Helper()
	c, err := api.NewClient(srv.URL, api.WithTimeout(2*time.Second))
	require.NoError(t, err)
	return c
}

func TestPoller_FetchesImmediatelyThenOnEveryTick(t *testing.T) {
	srv := apitest.NewServer("g1", "p1")
	defer srv.Close()
	clock := clockwork.NewFakeClock()
	sink := newChanSink()

	p := New(newClient(t, srv), sink, WithClock(clock), WithInterval(2*time.Second))
	p.Start(context.Background(), "g1")
	defer p.Stop()

	m := recvMsg(t, sink.ch, time.Second)
	got, ok := m.(lobby.StateReceived)
	require.True(t, ok, "got %T", m)
	assert.Equal(t, "g1", got.State.GameID)
	assert.Equal(t, 1, srv.StateCalls())

	waitTicker(t, clock)
	clock.Advance(time.Second)
	recvNoMsg(t, sink.ch, 50*time.Millisecond)

	clock.Advance(time.Second)
	recvMsg(t, sink.ch, time.Second)
	assert.Equal(t, 2, srv.StateCalls())
	assert.True(t, p.Running())
}

func TestPoller_StopsWhenGameCompletes(t *testing.T) {
	srv := apitest.NewServer("g1", "p1")
	defer srv.Close()
	clock := clockwork.NewFakeClock()
	sink := newChanSink()

	p := New(newClient(t, srv), sink, WithClock(clock))
	p.Start(context.Background(), "g1")
	recvMsg(t, sink.ch, time.Second)

	srv.SetState(types.GameState{
		GameID: "g1",
		Status: types.StatusCompleted,
		Winner: &types.Winner{ID: "p1", Name: "Ann", Score: 30},
	})
	waitTicker(t, clock)
	clock.Advance(DefaultInterval)

	m := recvMsg(t, sink.ch, time.Second)
	got, ok := m.(lobby.StateReceived)
	require.True(t, ok, "got %T", m)
	assert.Equal(t, types.StatusCompleted, got.State.Status)

	require.Eventually(t, func() bool { return !p.Running() }, time.Second, 5*time.Millisecond)
	calls := srv.StateCalls()
	clock.Advance(DefaultInterval)
	recvNoMsg(t, sink.ch, 50*time.Millisecond)
	assert.Equal(t, calls, srv.StateCalls())
}

func TestPoller_ServerErrorBecomesBanner(t *testing.T) {
	srv := apitest.NewServer("g1", "p1")
	defer srv.Close()
	srv.Fail("state", "game not found")
	sink := newChanSink()

	p := New(newClient(t, srv), sink, WithClock(clockwork.NewFakeClock()))
	p.Start(context.Background(), "g1")
	defer p.Stop()

	m := recvMsg(t, sink.ch, time.Second)
	assert.Equal(t, lobby.ShowMessage{Text: "Game error: game not found", Kind: lobby.KindError}, m)
	assert.True(t, p.Running(), "server errors do not stop polling")
}

func TestPoller_StopsWhenGameIsGone(t *testing.T) {
	srv := apitest.NewServer("g1", "p1")
	defer srv.Close()
	sink := newChanSink()

	p := New(newClient(t, srv), sink, WithClock(clockwork.NewFakeClock()))
	p.Start(context.Background(), "missing")
	defer p.Stop()

	m := recvMsg(t, sink.ch, time.Second)
	assert.Equal(t, lobby.ShowMessage{Text: "Game error: game not found", Kind: lobby.KindError}, m)
	require.Eventually(t, func() bool { return !p.Running() }, time.Second, 5*time.Millisecond)
}

type failingFetcher struct {
	mu    sync.Mutex
	calls int
}

func (f *failingFetcher) State(ctx context.Context, gameID string) (*types.GameState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return nil, errors.New("connection refused")
}

func (f *failingFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestPoller_TransportErrorIsOnlyLogged(t *testing.T) {
	fetcher := &failingFetcher{}
	sink := newChanSink()

	p := New(fetcher, sink, WithClock(clockwork.NewFakeClock()))
	p.Start(context.Background(), "g1")
	defer p.Stop()

	require.Eventually(t, func() bool { return fetcher.Calls() == 1 }, time.Second, 5*time.Millisecond)
	recvNoMsg(t, sink.ch, 50*time.Millisecond)
	assert.True(t, p.Running())
}

func TestPoller_StartReplacesRunningLoop(t *testing.T) {
	srv := apitest.NewServer("g1", "p1")
	defer srv.Close()
	clock := clockwork.NewFakeClock()
	sink := newChanSink()

	p := New(newClient(t, srv), sink, WithClock(clock))
	p.Start(context.Background(), "g1")
	recvMsg(t, sink.ch, time.Second)

	p.Start(context.Background(), "g1")
	recvMsg(t, sink.ch, time.Second)
	assert.Equal(t, 2, srv.StateCalls())

	// only the second loop's ticker is left
	waitTicker(t, clock)
	clock.Advance(DefaultInterval)
	recvMsg(t, sink.ch, time.Second)
	recvNoMsg(t, sink.ch, 50*time.Millisecond)
	assert.Equal(t, 3, srv.StateCalls())

	p.Stop()
	assert.False(t, p.Running())
}

func TestPoller_StopIsIdempotent(t *testing.T) {
	p := New(&failingFetcher{}, newChanSink())
	assert.False(t, p.Running())
	p.Stop()
	p.Stop()
	assert.False(t, p.Running())
}
