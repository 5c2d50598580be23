package diag

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// RenderOptions controls pretty printing.
type RenderOptions struct {
	Color bool
}

// Render writes the diagnostics of b in a human-readable form:
//
//	error[IR1001]: @main:3: invalid add instruction
//	  | sum = add a;
func Render(w io.Writer, b *Bag, opts RenderOptions) error {
	errStyle := color.New(color.FgRed, color.Bold)
	warnStyle := color.New(color.FgYellow, color.Bold)
	infoStyle := color.New(color.FgCyan)
	dim := color.New(color.Faint)
	for _, c := range []*color.Color{errStyle, warnStyle, infoStyle, dim} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	for _, d := range b.Items() {
		style := infoStyle
		switch d.Severity {
		case SevError:
			style = errStyle
		case SevWarning:
			style = warnStyle
		}
		head := style.Sprintf("%s[%s]", d.Severity, d.Code.ID())
		if _, err := fmt.Fprintf(w, "%s: %s: %s\n", head, d.Loc, d.Message); err != nil {
			return err
		}
		if d.Source != "" {
			if _, err := fmt.Fprintf(w, "  %s %s\n", dim.Sprint("|"), d.Source); err != nil {
				return err
			}
		}
		for _, n := range d.Notes {
			if _, err := fmt.Fprintf(w, "  %s %s\n", dim.Sprint("note:"), n); err != nil {
				return err
			}
		}
	}
	if b.Dropped() > 0 {
		if _, err := fmt.Fprintf(w, "... %d more diagnostics not shown\n", b.Dropped()); err != nil {
			return err
		}
	}
	return nil
}
