package render

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/DoyleJ11/dicegame/internal/engine"
)

var categoryNames = map[engine.Category]string{
	engine.CatOnes:   "Ones",
	engine.CatTwos:   "Twos",
	engine.CatThrees: "Threes",
	engine.CatFours:  "Fours",
	engine.CatFives:  "Fives",
	engine.CatSixes:  "Sixes",
}

// Board draws the stage 1 board: dice with holds, rolls left and the
// score sheet with live previews for open rows.
func (r *Renderer) Board(w io.Writer, s engine.State) error {
	pg := &page{p: r.p}

	pg.line("Turn %d", s.Turn)
	pg.line("Rolls left: %d", s.RollsLeft)
	pg.blank()

	pg.table(func(tw *tabwriter.Writer) {
		for i := range s.Hand {
			fmt.Fprintf(tw, "%d\t", i+1)
		}
		fmt.Fprintln(tw)
		for _, d := range s.Hand {
			if d.Held {
				fmt.Fprintf(tw, "[%d]*\t", d.Value)
			} else {
				fmt.Fprintf(tw, "[%d]\t", d.Value)
			}
		}
		fmt.Fprintln(tw)
	})
	pg.line("* held")
	pg.blank()

	pg.table(func(tw *tabwriter.Writer) {
		r.p.Fprintf(tw, "Category")
		fmt.Fprint(tw, "\t")
		r.p.Fprintf(tw, "Score")
		fmt.Fprintln(tw, "\t")
		for _, row := range engine.Sheet(s) {
			r.p.Fprintf(tw, categoryNames[row.Category])
			switch {
			case row.Committed:
				fmt.Fprintf(tw, "\t%d\t", row.Score)
			case s.Rolled:
				fmt.Fprintf(tw, "\t%d\t", row.Score)
				r.p.Fprintf(tw, "preview")
			default:
				fmt.Fprint(tw, "\t-\t")
			}
			fmt.Fprintln(tw)
		}
	})
	pg.line("Total: %d", engine.Total(s))
	pg.blank()

	switch {
	case s.Phase == engine.PhaseDone:
		pg.line("Sheet complete! Final score: %d", engine.Total(s))
	case !s.Rolled:
		pg.line("Roll the dice to start the turn.")
	case s.Phase == engine.PhaseScoring:
		pg.line("No rolls left, choose a category.")
	}
	return pg.flush(w)
}
