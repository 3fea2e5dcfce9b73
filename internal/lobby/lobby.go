package lobby

import (
	"context"
	"errors"
	"time"

	"github.com/DoyleJ11/dicegame/internal/dice"
	"github.com/DoyleJ11/dicegame/pkg/types"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

var ErrSelectionDisabled = errors.New("dice selection disabled")

// DefaultMessageTTL is how long a banner stays visible.
const DefaultMessageTTL = 5 * time.Second

type Msg interface{ isLobbyMsg() }

// StateReceived replaces the table with a fresh server state.
type StateReceived struct {
	State *types.GameState
}

func (StateReceived) isLobbyMsg() {}

// Seat tells the table which player this client is.
type Seat struct {
	PlayerID string
}

func (Seat) isLobbyMsg() {}

type ToggleDie struct {
	Index int
	Reply chan error // optional, must be buffered
}

func (ToggleDie) isLobbyMsg() {}

type ClearSelection struct{}

func (ClearSelection) isLobbyMsg() {}

type ShowMessage struct {
	Text string
	Kind Kind
}

func (ShowMessage) isLobbyMsg() {}

// Reset forgets the game and the seat, as after leaving.
type Reset struct{}

func (Reset) isLobbyMsg() {}

type Join struct {
	ClientID string
	Outbox   chan Snapshot // must have room for the join snapshot
	// KeepLatest keeps a slow client subscribed: the snapshot waiting in a
	// full outbox is replaced by the newest one instead of dropping it.
	KeepLatest bool
}

func (Join) isLobbyMsg() {}

type Leave struct{ ClientID string }

func (Leave) isLobbyMsg() {}

type Shutdown struct{}

func (Shutdown) isLobbyMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isLobbyMsg() {}

type Snapshot struct {
	Version int
	View    View
}

type Option func(*Lobby)

func WithClock(clock clockwork.Clock) Option {
	return func(l *Lobby) { l.clock = clock }
}

func WithMessageTTL(ttl time.Duration) Option {
	return func(l *Lobby) { l.messageTTL = ttl }
}

func WithLogger(logger *zap.Logger) Option {
	return func(l *Lobby) { l.logger = logger }
}

// Lobby owns the local table: the last server state, the dice picked for
// the next reroll and the banner. One goroutine serves the inbox, so
// every change is ordered and versioned.
type Lobby struct {
	inbox      chan Msg
	version    int
	playerID   string
	state      *types.GameState
	selection  dice.Selection
	banner     *Banner
	bannerT    clockwork.Timer
	clients    map[string]subscriber
	clock      clockwork.Clock
	messageTTL time.Duration
	logger     *zap.Logger
	ctx        context.Context
	cancel     context.CancelFunc
}

func NewLobby(parent context.Context, opts ...Option) *Lobby {
	ctx, cancel := context.WithCancel(parent)

	l := &Lobby{
		inbox:      make(chan Msg, 64), // Small buffer
		clients:    make(map[string]subscriber),
		clock:      clockwork.NewRealClock(),
		messageTTL: DefaultMessageTTL,
		logger:     zap.NewNop(),
		ctx:        ctx,
		cancel:     cancel,
	}
	for _, opt := range opts {
		opt(l)
	}

	go l.loop()
	return l
}

func (l *Lobby) loop() {
	for {
		var expired <-chan time.Time
		if l.bannerT != nil {
			expired = l.bannerT.Chan()
		}

		select {
		case <-l.ctx.Done():
			l.shutdown()
			return

		case <-expired:
			l.bannerT = nil
			l.banner = nil
			l.publish()

		case m := <-l.inbox:
			switch msg := m.(type) {
			case Join:
				// Register client + send current snapshot immediately
				l.clients[msg.ClientID] = subscriber{out: msg.Outbox, keepLatest: msg.KeepLatest}
				msg.Outbox <- Snapshot{Version: l.version, View: l.view()}

			case Leave:
				if sub, ok := l.clients[msg.ClientID]; ok {
					close(sub.out)
					delete(l.clients, msg.ClientID)
				}

			case Seat:
				l.playerID = msg.PlayerID
				l.publish()

			case StateReceived:
				if msg.State == nil {
					break
				}
				l.applyState(msg.State)
				l.publish()

			case ToggleDie:
				err := l.toggle(msg.Index)
				if msg.Reply != nil {
					msg.Reply <- err
				}
				if err == nil {
					l.publish()
				}

			case ClearSelection:
				l.selection.Clear()
				l.publish()

			case ShowMessage:
				l.showMessage(msg)
				l.publish()

			case Reset:
				l.playerID = ""
				l.state = nil
				l.selection.Clear()
				l.publish()

			case GetState:
				v := l.view()
				v.NumClients = len(l.clients)
				msg.Reply <- v

			case Shutdown:
				l.shutdown()
				return
			}
		}
	}
}

func (l *Lobby) applyState(s *types.GameState) {
	cp := *s
	l.state = &cp
	if !l.interactive() {
		l.selection.Clear()
	}
	l.logger.Debug("state applied",
		zap.String("game_id", s.GameID),
		zap.String("status", string(s.Status)),
		zap.Int("round", s.CurrentRound),
	)
}

func (l *Lobby) toggle(index int) error {
	if !l.interactive() || l.remainingRerolls() == 0 {
		return ErrSelectionDisabled
	}
	return l.selection.Toggle(index)
}

func (l *Lobby) showMessage(msg ShowMessage) {
	if l.bannerT != nil {
		stopAndDrainTimer(l.bannerT)
	}
	kind := msg.Kind
	if kind == "" {
		kind = KindInfo
	}
	l.banner = &Banner{Text: msg.Text, Kind: kind, Expires: l.clock.Now().Add(l.messageTTL)}
	l.bannerT = l.clock.NewTimer(l.messageTTL)
}

func (l *Lobby) publish() {
	l.version++
	l.broadcast(Snapshot{Version: l.version, View: l.view()})
}

func (l *Lobby) shutdown() {
	for id, sub := range l.clients {
		close(sub.out) // Tell client no more snapshots
		delete(l.clients, id)
	}
	if l.bannerT != nil {
		stopAndDrainTimer(l.bannerT)
		l.bannerT = nil
	}
	l.cancel()
}

type subscriber struct {
	out        chan Snapshot
	keepLatest bool
}

func (l *Lobby) broadcast(snap Snapshot) {
	for id, sub := range l.clients {
		select {
		case sub.out <- snap:
			//ok
		default:
			if sub.keepLatest {
				l.replaceOldest(sub.out, snap)
				continue
			}
			// Client is slow/full - drop them.
			close(sub.out)
			delete(l.clients, id)
		}
	}
}

// replaceOldest makes room in a full outbox. The loop is its only sender,
// so the send cannot block once a snapshot has been taken out.
func (l *Lobby) replaceOldest(out chan Snapshot, snap Snapshot) {
	select {
	case <-out:
	default:
	}
	out <- snap
}

// Expose the inbox so the poller, the controller and tests can send messages.
func (l *Lobby) Inbox() chan<- Msg { return l.inbox }

// Send delivers m unless the lobby has shut down.
func (l *Lobby) Send(m Msg) bool {
	if l.ctx.Err() != nil {
		return false
	}
	select {
	case l.inbox <- m:
		return true
	case <-l.ctx.Done():
		return false
	}
}

// View asks the loop for the current view.
func (l *Lobby) View(ctx context.Context) (View, error) {
	reply := make(chan View, 1)
	if !l.Send(GetState{Reply: reply}) {
		return View{}, context.Canceled
	}
	select {
	case v := <-reply:
		return v, nil
	case <-ctx.Done():
		return View{}, ctx.Err()
	case <-l.ctx.Done():
		return View{}, context.Canceled
	}
}

// Done is closed once the lobby has shut down.
func (l *Lobby) Done() <-chan struct{} { return l.ctx.Done() }

func stopAndDrainTimer(timer clockwork.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.Chan():
		default:
		}
	}
}
