// Package render draws the stage 1 board and the poker dice table as
// plain text.
package render

import (
	"bytes"
	"fmt"
	"io"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type Renderer struct {
	p *message.Printer
}

// New returns a renderer printing through p. A nil p prints the English
// keys as they are.
func New(p *message.Printer) *Renderer {
	if p == nil {
		p = message.NewPrinter(language.AmericanEnglish)
	}
	return &Renderer{p: p}
}

// page collects one screen so a render either writes whole or not at all.
type page struct {
	p   *message.Printer
	buf bytes.Buffer
}

func (pg *page) line(key message.Reference, args ...any) {
	pg.p.Fprintf(&pg.buf, key, args...)
	pg.buf.WriteByte('\n')
}

func (pg *page) blank() { pg.buf.WriteByte('\n') }

func (pg *page) table(fill func(tw *tabwriter.Writer)) {
	tw := tabwriter.NewWriter(&pg.buf, 0, 4, 2, ' ', 0)
	fill(tw)
	_ = tw.Flush()
}

func (pg *page) flush(w io.Writer) error {
	if _, err := w.Write(pg.buf.Bytes()); err != nil {
		return fmt.Errorf("write view: %w", err)
	}
	return nil
}
