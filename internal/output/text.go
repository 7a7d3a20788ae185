package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jokarl/taxrules/internal/types"
)

// TextRenderer renders output in human-readable text format
type TextRenderer struct {
	ColorEnabled bool
	Quiet        bool
}

// Render writes the resolve result in text format
func (r *TextRenderer) Render(w io.Writer, result *types.ResolveResult) error {
	p := message.NewPrinter(language.English)

	source := result.Source
	if source == "" {
		source = "<input>"
	}
	fmt.Fprintf(w, "taxrules: resolving %s (unmatched: %s)\n\n", source, result.Policy)

	for _, res := range result.Resolutions {
		if r.Quiet && res.Matched {
			continue
		}
		r.renderResolution(w, res)
	}

	fmt.Fprintln(w, strings.Repeat("-", 60))

	s := result.Summary
	p.Fprintf(w, "Summary: %d events, %d matched, %d unmatched, %d taxable, %d swaps\n",
		s.Total, s.Matched, s.Unmatched, s.Taxable, s.Swaps)

	r.renderResult(w, result)
	return nil
}

func (r *TextRenderer) renderResolution(w io.Writer, res *types.Resolution) {
	ev := res.Event
	status := r.paint(color.FgGreen).Sprint("MATCHED  ")
	if !res.Matched {
		status = r.paint(color.FgYellow, color.Bold).Sprint("UNMATCHED")
	}

	fmt.Fprintf(w, "%s  %s  %s/%s  %s\n", status, ev.Identifier, ev.Type, ev.Subtype, ev.Counterparty)

	if !ev.Amount.IsZero() || ev.Asset != "" {
		fmt.Fprintf(w, "  %s %s at %s\n", ev.Amount.String(), ev.Asset, ev.Time().Format("2006-01-02 15:04:05"))
	}

	if res.Matched {
		fmt.Fprintf(w, "  %s\n", describeSettings(*res.Settings))
	} else {
		fmt.Fprintf(w, "  no rule (%s)\n", res.Reason)
	}
	fmt.Fprintln(w)
}

func describeSettings(s types.Settings) string {
	parts := []string{}
	if s.Taxable {
		parts = append(parts, "taxable")
	} else {
		parts = append(parts, "not taxable")
	}
	if s.CountEntireAmountSpend {
		parts = append(parts, "entire amount spent")
	}
	if s.CountCostBasisPnL {
		parts = append(parts, "cost basis pnl")
	}
	parts = append(parts, "method "+s.Method.String())
	if s.Treatment != types.TreatmentNone {
		parts = append(parts, "treatment "+s.Treatment.String())
	}
	return strings.Join(parts, ", ")
}

func (r *TextRenderer) renderResult(w io.Writer, result *types.ResolveResult) {
	if result.Result == "PASS" {
		fmt.Fprintf(w, "Result: %s\n", r.paint(color.FgGreen).Sprint("PASS"))
		return
	}
	fmt.Fprintf(w, "Result: %s (unmatched events)\n", r.paint(color.FgRed).Sprint("FAIL"))
}

// paint returns a color that honours ColorEnabled regardless of the
// terminal detection done by the color package.
func (r *TextRenderer) paint(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if r.ColorEnabled {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}
