package domain

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultProbabilityPlaces is the number of decimal places every bet
// probability is rounded to on entry.
const DefaultProbabilityPlaces int32 = 4

// LedgerConfig configures a new Ledger.
type LedgerConfig struct {
	Proposition string
	// Endowment is the most the market maker will lose on either outcome.
	// Only the log-score engine reads it; zero means unset.
	Endowment decimal.Decimal
	// ProbabilityPlaces defaults to DefaultProbabilityPlaces when <= 0.
	ProbabilityPlaces int32
}

// BetSpec describes a bet to append: who, how much and at what probability.
type BetSpec struct {
	Name        string
	Amount      decimal.Decimal
	Probability decimal.Decimal
}

// Ledger is the ordered, append-only sequence of bets on one proposition.
// The first bet belongs to the market maker.
type Ledger struct {
	ID          string
	Proposition string
	Endowment   decimal.Decimal

	places int32
	bets   []*Bet
}

// NewLedger returns an empty ledger.
func NewLedger(cfg LedgerConfig) *Ledger {
	places := cfg.ProbabilityPlaces
	if places <= 0 {
		places = DefaultProbabilityPlaces
	}
	return &Ledger{
		ID:          uuid.Must(uuid.NewRandom()).String(),
		Proposition: cfg.Proposition,
		Endowment:   cfg.Endowment,
		places:      places,
	}
}

// NewLedgerFromBets builds a ledger from a fully known list of bets, in
// order. The first entry is the market maker.
func NewLedgerFromBets(cfg LedgerConfig, specs []BetSpec) (*Ledger, error) {
	l := NewLedger(cfg)
	for i, s := range specs {
		if _, err := l.Append(s.Name, s.Probability, s.Amount, EntryProbability); err != nil {
			return nil, fmt.Errorf("bet %d (%s): %w", i, s.Name, err)
		}
	}
	return l, nil
}

// Quantize rounds p to the ledger's probability precision.
func (l *Ledger) Quantize(p decimal.Decimal) decimal.Decimal {
	return p.Round(l.places)
}

// Append validates and appends a bet, linking it to the current last bet.
// The probability is checked both as given and after rounding, so 0 and 1
// are rejected before any logarithm is taken.
func (l *Ledger) Append(name string, p, amount decimal.Decimal, entry Entry) (*Bet, error) {
	if err := CheckProbability(p); err != nil {
		return nil, err
	}
	q := l.Quantize(p)
	if err := CheckProbability(q); err != nil {
		return nil, fmt.Errorf("after rounding to %d places: %w", l.places, err)
	}
	if amount.IsNegative() {
		return nil, fmt.Errorf("%w: %s is negative", ErrInvalidAmount, amount.String())
	}
	if entry == "" {
		entry = EntryProbability
	}

	b := &Bet{
		Index:       len(l.bets),
		Name:        name,
		Probability: q,
		Amount:      amount,
		Entry:       entry,
		Previous:    l.Last(),
	}
	l.bets = append(l.bets, b)
	return b, nil
}

// Bets returns the bets in append order. Callers must not modify the slice.
func (l *Ledger) Bets() []*Bet { return l.bets }

// Len returns the number of bets.
func (l *Ledger) Len() int { return len(l.bets) }

// Last returns the most recently appended bet, or nil.
func (l *Ledger) Last() *Bet {
	if len(l.bets) == 0 {
		return nil
	}
	return l.bets[len(l.bets)-1]
}

// First returns the market maker's opening bet, or nil.
func (l *Ledger) First() *Bet {
	if len(l.bets) == 0 {
		return nil
	}
	return l.bets[0]
}

// MarketMaker returns the name on the opening bet.
func (l *Ledger) MarketMaker() string {
	if first := l.First(); first != nil {
		return first.Name
	}
	return ""
}

// ProbabilityPlaces returns the rounding precision applied to probabilities.
func (l *Ledger) ProbabilityPlaces() int32 { return l.places }

// Participants returns every distinct name in order of first appearance.
func (l *Ledger) Participants() []string {
	seen := make(map[string]bool, len(l.bets))
	names := make([]string, 0, len(l.bets))
	for _, b := range l.bets {
		if !seen[b.Name] {
			seen[b.Name] = true
			names = append(names, b.Name)
		}
	}
	return names
}
