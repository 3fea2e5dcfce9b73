package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/DoyleJ11/dicegame/internal/api"
	"github.com/DoyleJ11/dicegame/internal/cli"
	"github.com/DoyleJ11/dicegame/internal/client"
	"github.com/DoyleJ11/dicegame/internal/dice"
	"github.com/DoyleJ11/dicegame/internal/httpapi"
	"github.com/DoyleJ11/dicegame/internal/lobby"
	"github.com/DoyleJ11/dicegame/internal/poller"
	"github.com/DoyleJ11/dicegame/internal/render"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/message"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, in io.Reader, out, stderr io.Writer) (err error) {
	env, err := cli.Setup("pokerdice", args, stderr)
	if err != nil {
		return err
	}
	cfg, logger := env.Config, env.Logger
	defer func() { _ = logger.Sync() }()

	gameAPI, err := api.NewClient(cfg.ServerURL,
		api.WithTimeout(cfg.RequestTimeout),
		api.WithLogger(logger.Named("api")))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	table := lobby.NewLobby(ctx,
		lobby.WithMessageTTL(cfg.MessageTTL),
		lobby.WithLogger(logger.Named("table")))
	poll := poller.New(gameAPI, table,
		poller.WithInterval(cfg.PollInterval),
		poller.WithLogger(logger.Named("poller")),
		poller.WithPrinter(env.Printer))
	ctrl := client.New(gameAPI, table, poll,
		client.WithLogger(logger.Named("client")),
		client.WithPrinter(env.Printer))

	defer func() {
		poll.Stop()
		table.Send(lobby.Shutdown{})
	}()

	snapshots := make(chan lobby.Snapshot, 16)
	if !table.Send(lobby.Join{ClientID: "terminal", Outbox: snapshots, KeepLatest: true}) {
		return errTableClosed
	}

	g, gctx := errgroup.WithContext(ctx)
	r := render.New(env.Printer)

	g.Go(func() error {
		return renderLoop(gctx, r, snapshots, out)
	})

	g.Go(func() error {
		defer cancel()
		loop := &inputLoop{ctrl: ctrl, table: table, p: env.Printer, logger: logger}
		return loop.run(gctx, in)
	})

	if cfg.ViewAddr != "" {
		g.Go(func() error {
			return httpapi.Serve(gctx, cfg.ViewAddr, httpapi.SetupRoutes(table, logger.Named("view")), logger)
		})
	}

	err = g.Wait()
	if ctrl.Session().GameID() != "" {
		// Do not leave a seat behind on the server.
		leaveCtx, leaveCancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
		defer leaveCancel()
		err = multierr.Append(err, ctrl.Leave(leaveCtx))
	}
	return err
}

var errTableClosed = errors.New("table closed")

// renderLoop redraws the table on every snapshot. Once ctx is done it
// renders whatever is already queued and returns. A stream that ends
// while ctx is still live is an error, so the terminal never goes quiet.
func renderLoop(ctx context.Context, r *render.Renderer, snapshots <-chan lobby.Snapshot, out io.Writer) error {
	draw := func(snap lobby.Snapshot) error {
		if _, err := fmt.Fprintln(out, "----"); err != nil {
			return err
		}
		return r.Table(out, snap.View)
	}

	for {
		select {
		case snap, ok := <-snapshots:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errTableClosed
			}
			if err := draw(snap); err != nil {
				return err
			}
		case <-ctx.Done():
			for {
				select {
				case snap, ok := <-snapshots:
					if !ok {
						return nil
					}
					if err := draw(snap); err != nil {
						return err
					}
				default:
					return nil
				}
			}
		}
	}
}

type inputLoop struct {
	ctrl   *client.Controller
	table  *lobby.Lobby
	p      *message.Printer
	logger *zap.Logger
}

// run reads commands until quit, end of input or ctx is done. Failures
// already reach the player as banners, so they are only logged here.
func (l *inputLoop) run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				l.settle(ctx)
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			quit, err := l.exec(ctx, strings.Fields(line))
			if errors.Is(err, client.ErrNotInGame) {
				l.show(l.p.Sprintf("Not in a game."))
			}
			if err != nil {
				l.logger.Debug("command failed", zap.String("line", line), zap.Error(err))
			}
			if quit {
				l.settle(ctx)
				return nil
			}
		}
	}
}

// settle waits until the table has handled everything sent so far, so
// the last snapshots are queued before the render loop winds down.
func (l *inputLoop) settle(ctx context.Context) {
	_, _ = l.table.View(ctx)
}

func (l *inputLoop) exec(ctx context.Context, fields []string) (quit bool, err error) {
	if len(fields) == 0 {
		return false, nil
	}
	args := fields[1:]

	switch strings.ToLower(fields[0]) {
	case "quit", "exit", "q":
		return true, nil

	case "create":
		if len(args) < 1 {
			return false, l.usage("create NAME [PLAYERS] [ROUNDS]")
		}
		players, rounds := client.DefaultMaxPlayers, client.DefaultMaxRounds
		if len(args) > 1 {
			if players, err = strconv.Atoi(args[1]); err != nil {
				return false, l.usage("create NAME [PLAYERS] [ROUNDS]")
			}
		}
		if len(args) > 2 {
			if rounds, err = strconv.Atoi(args[2]); err != nil {
				return false, l.usage("create NAME [PLAYERS] [ROUNDS]")
			}
		}
		return false, l.ctrl.CreateGame(ctx, args[0], players, rounds)

	case "join":
		gameID, name := "", ""
		if len(args) > 0 {
			gameID = args[0]
		}
		if len(args) > 1 {
			name = strings.Join(args[1:], " ")
		}
		return false, l.ctrl.JoinGame(ctx, gameID, name)

	case "ready":
		return false, l.ctrl.Ready(ctx)

	case "toggle", "t":
		if len(args) == 0 {
			return false, l.usage("toggle N...")
		}
		for _, arg := range args {
			n, err := strconv.Atoi(arg)
			if err != nil || n < 1 || n > dice.HandSize {
				l.show(l.p.Sprintf("Die numbers run from 1 to 5."))
				return false, dice.ErrDieIndex
			}
			if err := l.ctrl.ToggleDie(n - 1); err != nil {
				if errors.Is(err, lobby.ErrSelectionDisabled) {
					l.show(l.p.Sprintf("Dice can only be picked on your turn with rerolls left."))
				}
				return false, err
			}
		}
		return false, nil

	case "reroll":
		return false, l.ctrl.Reroll(ctx)

	case "end":
		return false, l.ctrl.EndTurn(ctx)

	case "leave":
		return false, l.ctrl.Leave(ctx)

	default:
		l.show(l.p.Sprintf("Unknown command: %s", fields[0]))
		return false, fmt.Errorf("unknown command %q", fields[0])
	}
}

func (l *inputLoop) usage(text string) error {
	l.show(l.p.Sprintf("Usage: %s", text))
	return errors.New("usage: " + text)
}

func (l *inputLoop) show(text string) {
	l.table.Send(lobby.ShowMessage{Text: text, Kind: lobby.KindError})
}
