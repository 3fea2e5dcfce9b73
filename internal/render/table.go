package render

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/DoyleJ11/dicegame/internal/lobby"
	"github.com/DoyleJ11/dicegame/pkg/types"
)

var statusNames = map[types.Status]string{
	types.StatusWaiting:   "Waiting for players",
	types.StatusActive:    "Game in progress",
	types.StatusCompleted: "Game over",
}

// Table draws the poker dice table as seen by the seated player.
func (r *Renderer) Table(w io.Writer, v lobby.View) error {
	pg := &page{p: r.p}

	if v.Banner != nil {
		marker := "*"
		if v.Banner.Kind == lobby.KindError {
			marker = "!"
		}
		fmt.Fprintf(&pg.buf, "%s %s\n\n", marker, v.Banner.Text)
	}

	if v.State == nil {
		pg.line("Not in a game.")
		pg.line("Commands: create NAME [PLAYERS] [ROUNDS], join GAME_ID NAME, quit")
		return pg.flush(w)
	}

	s := v.State
	pg.line("Game %s", s.GameID)
	pg.line("Round: %d/%d", s.CurrentRound, s.MaxRounds)
	status, ok := statusNames[s.Status]
	if !ok {
		status = string(s.Status)
	}
	pg.line("Status: %s", r.p.Sprintf(status))
	pg.blank()

	r.players(pg, v)
	pg.blank()

	switch v.Controls {
	case lobby.ControlsLobby:
		if v.ReadyEnabled {
			pg.line("Type 'ready' when you are set.")
		} else {
			pg.line("Waiting for other players...")
		}
		pg.line("Commands: ready, leave, quit")
	case lobby.ControlsActive:
		r.dice(pg, v)
		pg.line("Your turn. Rerolls left: %d", v.RemainingRerolls)
		pg.line("Selected dice: %d", len(v.Selected))
		if v.CanReroll {
			pg.line("Commands: toggle N..., reroll, end, leave, quit")
		} else {
			pg.line("Commands: toggle N..., end, leave, quit")
		}
	case lobby.ControlsWaiting:
		r.dice(pg, v)
		pg.line("Waiting for %s to move.", v.CurrentPlayerName)
		pg.line("Commands: leave, quit")
	case lobby.ControlsResults:
		r.results(pg, v)
	}
	return pg.flush(w)
}

func (r *Renderer) players(pg *page, v lobby.View) {
	pg.line("Players:")
	pg.table(func(tw *tabwriter.Writer) {
		for _, pl := range v.State.Players {
			marker := " "
			if pl.IsCurrent {
				marker = ">"
			}
			fmt.Fprintf(tw, "%s %s", marker, pl.Name)
			if pl.ID == v.PlayerID {
				fmt.Fprint(tw, " ")
				r.p.Fprintf(tw, "(you)")
			}
			fmt.Fprintf(tw, "\t%d\t", pl.Score)
			if v.State.Status == types.StatusWaiting {
				if pl.IsReady {
					r.p.Fprintf(tw, "ready")
				} else {
					r.p.Fprintf(tw, "not ready")
				}
			}
			fmt.Fprintln(tw)
		}
	})
}

func (r *Renderer) dice(pg *page, v lobby.View) {
	if len(v.Dice) == 0 {
		pg.line("Waiting for the roll...")
		pg.blank()
		return
	}
	pg.table(func(tw *tabwriter.Writer) {
		for _, d := range v.Dice {
			fmt.Fprintf(tw, "%d\t", d.Index+1)
		}
		fmt.Fprintln(tw)
		for _, d := range v.Dice {
			if d.Selected {
				fmt.Fprintf(tw, "[%d]*\t", d.Value)
			} else {
				fmt.Fprintf(tw, "[%d]\t", d.Value)
			}
		}
		fmt.Fprintln(tw)
	})
	if len(v.Selected) > 0 {
		pg.line("* selected for reroll")
	}
	combination := v.Combination
	if combination == "" {
		combination = r.p.Sprintf("Determining...")
	}
	pg.line("Combination: %s", combination)
	pg.blank()
}

func (r *Renderer) results(pg *page, v lobby.View) {
	s := v.State
	if s.Winner != nil {
		pg.line("Winner: %s", s.Winner.Name)
		pg.line("Score: %d points", s.Winner.Score)
		pg.blank()
	}
	pg.line("Final scores:")
	for _, pl := range s.Players {
		pg.line("%s: %d points", pl.Name, pl.Score)
	}
	if me, ok := v.Me(); ok {
		pg.blank()
		pg.line("You finished with %d points.", me.Score)
	}
}
