// Package report renders settled ledgers for people: a fixed-width table
// in the style of a betting slip, or a YAML document for other tools.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/alanyoungcy/betledger/internal/settlement"
)

// Format names accepted by Render.
const (
	FormatTable = "table"
	FormatYAML  = "yaml"
)

var hundred = decimal.NewFromInt(100)

// Options configures a Renderer.
type Options struct {
	// Currency prefixes every dollar amount. Defaults to "$".
	Currency string
	// Language selects digit grouping. Defaults to English.
	Language language.Tag
}

// Renderer writes settlement tables.
type Renderer struct {
	currency string
	printer  *message.Printer
}

// New returns a Renderer.
func New(opts Options) *Renderer {
	if opts.Currency == "" {
		opts.Currency = "$"
	}
	if opts.Language == language.Und {
		opts.Language = language.English
	}
	return &Renderer{currency: opts.Currency, printer: message.NewPrinter(opts.Language)}
}

// Render writes t in the named format.
func (r *Renderer) Render(w io.Writer, format string, t *settlement.Table) error {
	switch strings.ToLower(format) {
	case FormatTable, "":
		return r.Table(w, t)
	case FormatYAML:
		return r.YAML(w, t)
	default:
		return fmt.Errorf("report: unknown format %q", format)
	}
}

// Money formats d as currency with two decimals and grouped thousands,
// e.g. "$1,234.50" or "$-0.36".
func (r *Renderer) Money(d decimal.Decimal) string {
	v := d.Round(2).InexactFloat64()
	return r.currency + r.printer.Sprint(number.Decimal(v, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

// Percent formats a probability as a percentage with the given decimals.
func Percent(p decimal.Decimal, decimals int) string {
	return fmt.Sprintf("%.*f%%", decimals, p.Mul(hundred).InexactFloat64())
}

// Table writes the fixed-width report. Every engine gets the name,
// probability and per-bet payoff columns; the force engine adds its
// log-odds and running market columns.
func (r *Renderer) Table(w io.Writer, t *settlement.Table) error {
	ew := &errWriter{w: w}

	ew.printf("Proposition: %s\n", t.Proposition)
	ew.printf("Strategy:    %s\n", t.Strategy)
	ew.printf("Ledger:      %s\n", t.LedgerID)
	if t.Scale.IsPositive() {
		ew.printf("Scale:       %s\n", t.Scale.StringFixed(6))
	}
	ew.printf("\n")

	force := t.Market != nil
	ew.printf("%-6s %7s %10s %10s", "Name", "Prob", "IfYes", "IfNo")
	if force {
		ew.printf(" %9s %9s %8s %8s %10s %7s", "LogOdds", "Force", "Ratio", "Size", "TotalForce", "Market")
	}
	ew.printf("\n")

	for _, row := range t.Rows {
		b := row.Bet
		yes, no := decimal.Zero, decimal.Zero
		if b.Payoff != nil {
			yes, no = b.Payoff.IfYes, b.Payoff.IfNo
		}
		ew.printf("%-6s %7s %10s %10s", b.Name, Percent(b.Probability, 2), r.Money(yes), r.Money(no))
		if f := row.Force; f != nil {
			ew.printf(" %9s %9s %8s %8s %10s %7s",
				f.LogOdds.StringFixed(4),
				f.Force.StringFixed(4),
				f.Ratio.StringFixed(4),
				r.Money(f.Market.Size),
				f.Market.TotalForce.StringFixed(4),
				Percent(f.Market.Probability, 1),
			)
		}
		ew.printf("\n")
	}

	ew.printf("\nIf yes: %s\n", dictionary(t.Positions, t.Positions.IfYes))
	ew.printf("If no:  %s\n", dictionary(t.Positions, t.Positions.IfNo))
	return ew.err
}

// dictionary renders name → payoff in participant order, e.g.
// {SD: -0.3644, CO: 0.3644}.
func dictionary(pos settlement.Positions, totals map[string]decimal.Decimal) string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, n := range pos.Names() {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s: %v", n, totals[n].InexactFloat64())
	}
	sb.WriteByte('}')
	return sb.String()
}

// errWriter keeps the first write error so rendering code can stay linear.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
