// Package settlement turns a ledger of sequential probability bets into
// outcome-contingent payoffs. Two interchangeable engines are provided: a
// logarithmic scoring rule calibrated to the market maker's endowment, and a
// log-odds "force" engine that sizes payoffs by the amount wagered. Both
// finish with the zero-sum reconciler, which makes the market maker the
// counterparty to everyone else.
package settlement

import (
	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/betledger/internal/decmath"
	"github.com/alanyoungcy/betledger/internal/domain"
)

// Names under which the engines are registered.
const (
	StrategyLogScore = "log_score"
	StrategyForce    = "log_odds_force"
)

// Settler is a settlement engine. Settle processes the ledger's bets strictly
// in append order, assigns each bet's Payoff and returns the full table.
type Settler interface {
	Name() string
	Settle(l *domain.Ledger) (*Table, error)
}

// Config holds parameters shared by the engines.
type Config struct {
	// Precision is the number of fractional digits kept by ln, exp and
	// division. Zero selects decmath.DefaultPrecision.
	Precision int32
}

func (c Config) calc() decmath.Calc { return decmath.New(c.Precision) }

// Table is the settled ledger: one row per bet plus reconciled per-participant
// positions.
type Table struct {
	Strategy    string
	LedgerID    string
	Proposition string
	MarketMaker string

	// Scale is the log-score calibration constant; zero for other engines.
	Scale decimal.Decimal

	Rows      []Row
	Positions Positions

	// Market is the final running market state; nil for engines that do
	// not track one.
	Market *MarketState
}

// Row pairs a settled bet with engine-specific detail.
type Row struct {
	Bet   *domain.Bet
	Force *ForceStep
}

func newTable(strategy string, l *domain.Ledger) *Table {
	t := &Table{
		Strategy:    strategy,
		LedgerID:    l.ID,
		Proposition: l.Proposition,
		MarketMaker: l.MarketMaker(),
		Rows:        make([]Row, 0, l.Len()),
	}
	return t
}

var zeroPayoff = domain.Payoff{IfYes: decimal.Zero, IfNo: decimal.Zero}
