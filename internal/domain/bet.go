package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Entry records how a bet was requested.
type Entry string

const (
	EntryProbability Entry = "probability"
	EntryDollarsYes  Entry = "dollars_yes"
	EntryDollarsNo   Entry = "dollars_no"
)

// Payoff is what a bet pays its owner under each resolution of the proposition.
type Payoff struct {
	IfYes decimal.Decimal
	IfNo  decimal.Decimal
}

// Bet is one participant's probability claim. Probability and Amount never
// change after the bet is appended to a Ledger.
type Bet struct {
	Index       int
	Name        string
	Probability decimal.Decimal
	Amount      decimal.Decimal
	Entry       Entry

	// Previous is the chronologically preceding bet in the same ledger, nil
	// for the market maker's opening quote.
	Previous *Bet

	// Payoff is nil until a settlement engine has processed the bet.
	Payoff *Payoff
}

// IsFirst reports whether b is the ledger's opening quote.
func (b *Bet) IsFirst() bool { return b.Previous == nil }

// Settled reports whether a payoff has been assigned.
func (b *Bet) Settled() bool { return b.Payoff != nil }

func (b *Bet) String() string {
	return fmt.Sprintf("%s@%s", b.Name, b.Probability.String())
}

// ValidProbability reports whether 0 < p < 1.
func ValidProbability(p decimal.Decimal) bool {
	return p.IsPositive() && p.LessThan(decimal.NewFromInt(1))
}

// CheckProbability returns ErrInvalidProbability unless 0 < p < 1.
func CheckProbability(p decimal.Decimal) error {
	if !ValidProbability(p) {
		return fmt.Errorf("%w: got %s", ErrInvalidProbability, p.String())
	}
	return nil
}
