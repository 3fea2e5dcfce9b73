package poller

import (
	"context"
	"sync"
	"time"

	"github.com/DoyleJ11/dicegame/internal/api"
	"github.com/DoyleJ11/dicegame/internal/lobby"
	"github.com/DoyleJ11/dicegame/pkg/types"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const DefaultInterval = 2 * time.Second

type StateFetcher interface {
	State(ctx context.Context, gameID string) (*types.GameState, error)
}

// Sink receives what the poller learns. *lobby.Lobby satisfies it.
type Sink interface {
	Send(m lobby.Msg) bool
}

type Option func(*Poller)

func WithClock(clock clockwork.Clock) Option {
	return func(p *Poller) { p.clock = clock }
}

func WithInterval(interval time.Duration) Option {
	return func(p *Poller) {
		if interval > 0 {
			p.interval = interval
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(p *Poller) { p.logger = logger }
}

func WithPrinter(printer *message.Printer) Option {
	return func(p *Poller) { p.printer = printer }
}

// Poller fetches one game's state on a fixed interval and forwards it to
// the table. At most one loop runs at a time.
type Poller struct {
	fetcher  StateFetcher
	sink     Sink
	clock    clockwork.Clock
	interval time.Duration
	logger   *zap.Logger
	printer  *message.Printer

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func New(fetcher StateFetcher, sink Sink, opts ...Option) *Poller {
	p := &Poller{
		fetcher:  fetcher,
		sink:     sink,
		clock:    clockwork.NewRealClock(),
		interval: DefaultInterval,
		logger:   zap.NewNop(),
		printer:  message.NewPrinter(language.AmericanEnglish),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start polls gameID until ctx ends, Stop is called, the game completes
// or the server no longer knows it. A running loop is stopped first.
func (p *Poller) Start(ctx context.Context, gameID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done

	go p.run(ctx, gameID, done)

	p.logger.Debug("polling started",
		zap.String("game_id", gameID),
		zap.Duration("interval", p.interval))
}

func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

// Running reports whether a poll loop is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}

func (p *Poller) stopLocked() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	<-p.done
	p.cancel = nil
	p.done = nil
}

func (p *Poller) run(ctx context.Context, gameID string, done chan struct{}) {
	defer close(done)

	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	// Fetch immediately on start
	if p.poll(ctx, gameID) {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if p.poll(ctx, gameID) {
				return
			}
		}
	}
}

// poll fetches once and reports whether polling should end.
func (p *Poller) poll(ctx context.Context, gameID string) bool {
	state, err := p.fetcher.State(ctx, gameID)
	if err != nil {
		if ctx.Err() != nil {
			return true
		}
		if msg, ok := api.Message(err); ok {
			p.sink.Send(lobby.ShowMessage{Text: p.printer.Sprintf("Game error: %s", msg), Kind: lobby.KindError})
			if api.IsNotFound(err) {
				p.logger.Info("game gone, polling stopped", zap.String("game_id", gameID))
				return true
			}
			return false
		}
		p.logger.Warn("failed to fetch game state",
			zap.String("game_id", gameID),
			zap.Error(err))
		return false
	}

	if !p.sink.Send(lobby.StateReceived{State: state}) {
		return true
	}
	if state.Status == types.StatusCompleted {
		p.logger.Info("game completed, polling stopped", zap.String("game_id", gameID))
		return true
	}
	return false
}
