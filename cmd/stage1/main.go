package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/DoyleJ11/dicegame/internal/cli"
	"github.com/DoyleJ11/dicegame/internal/dice"
	"github.com/DoyleJ11/dicegame/internal/engine"
	"github.com/DoyleJ11/dicegame/internal/render"
	"go.uber.org/zap"
	"golang.org/x/text/message"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, in io.Reader, out, stderr io.Writer) error {
	env, err := cli.Setup("stage1", args, stderr)
	if err != nil {
		return err
	}
	defer func() { _ = env.Logger.Sync() }()

	g := &game{
		state:  engine.NewEmptyState(),
		roller: dice.NewRoller(env.Config.Seed),
		r:      render.New(env.Printer),
		p:      env.Printer,
		out:    out,
		logger: env.Logger,
	}
	return g.loop(ctx, in)
}

type game struct {
	state  engine.State
	events []engine.Event
	roller dice.Roller
	r      *render.Renderer
	p      *message.Printer
	out    io.Writer
	logger *zap.Logger
}

func (g *game) loop(ctx context.Context, in io.Reader) error {
	if err := g.r.Board(g.out, g.state); err != nil {
		return err
	}
	g.p.Fprintln(g.out, g.p.Sprintf("Commands: roll, hold N..., score CATEGORY, quit"))

	sc := bufio.NewScanner(in)
	for sc.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		quit, err := g.exec(strings.Fields(sc.Text()))
		if quit {
			return nil
		}
		if err != nil {
			g.p.Fprintln(g.out, g.describe(err))
			continue
		}
		if err := g.r.Board(g.out, g.state); err != nil {
			return err
		}
		if engine.ContainsEvent(g.events, engine.EvtSheetCompleted) {
			g.logger.Info("sheet completed",
				zap.Int("total", engine.Total(g.state)),
				zap.Int("events", len(g.events)))
			return nil
		}
	}
	return sc.Err()
}

type unknownCommandError struct{ name string }

func (e unknownCommandError) Error() string { return "unknown command " + e.name }

type unknownCategoryError struct{ name string }

func (e unknownCategoryError) Error() string { return "unknown category " + e.name }

// exec runs one input line. Blank lines do nothing.
func (g *game) exec(fields []string) (quit bool, err error) {
	if len(fields) == 0 {
		return false, nil
	}

	switch strings.ToLower(fields[0]) {
	case "quit", "exit", "q":
		return true, nil

	case "roll", "r":
		return false, g.apply(engine.Command{Type: engine.CmdRoll})

	case "hold", "h":
		if len(fields) < 2 {
			return false, dice.ErrDieIndex
		}
		indices := make([]int, 0, len(fields)-1)
		for _, arg := range fields[1:] {
			n, err := strconv.Atoi(arg)
			if err != nil || n < 1 || n > dice.HandSize {
				return false, dice.ErrDieIndex
			}
			indices = append(indices, n-1)
		}
		for _, i := range indices {
			if err := g.apply(engine.Command{Type: engine.CmdToggleHold, Index: i}); err != nil {
				return false, err
			}
		}
		return false, nil

	case "score", "s":
		if len(fields) < 2 {
			return false, unknownCategoryError{}
		}
		c, ok := engine.ParseCategory(strings.ToLower(fields[1]))
		if !ok {
			return false, unknownCategoryError{name: fields[1]}
		}
		return false, g.apply(engine.Command{Type: engine.CmdScore, Category: c})

	default:
		return false, unknownCommandError{name: fields[0]}
	}
}

func (g *game) apply(cmd engine.Command) error {
	events, next, err := engine.Apply(g.state, cmd, g.roller)
	if err != nil {
		g.logger.Debug("command rejected",
			zap.String("command", string(cmd.Type)),
			zap.Error(err))
		return err
	}
	g.state = next
	g.events = append(g.events, events...)
	return nil
}

func (g *game) describe(err error) string {
	var unknownCmd unknownCommandError
	var unknownCat unknownCategoryError
	switch {
	case errors.As(err, &unknownCmd):
		return g.p.Sprintf("Unknown command: %s", unknownCmd.name) + "\n" +
			g.p.Sprintf("Commands: roll, hold N..., score CATEGORY, quit")
	case errors.As(err, &unknownCat):
		return g.p.Sprintf("Unknown category: %s", unknownCat.name)
	case errors.Is(err, engine.ErrNoRollsLeft):
		return g.p.Sprintf("No rolls left this turn.")
	case errors.Is(err, engine.ErrNotRolled):
		return g.p.Sprintf("Roll the dice before scoring.")
	case errors.Is(err, engine.ErrCategoryScored):
		return g.p.Sprintf("That category is already scored.")
	case errors.Is(err, engine.ErrSheetCompleted):
		return g.p.Sprintf("The sheet is complete.")
	case errors.Is(err, dice.ErrDieIndex):
		return g.p.Sprintf("Die numbers run from 1 to 5.")
	default:
		return err.Error()
	}
}
