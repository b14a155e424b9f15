package domain

import "errors"

var (
	ErrInvalidProbability = errors.New("probability must be strictly between 0 and 1")
	ErrInvalidEndowment   = errors.New("endowment must be positive")
	ErrInvalidAmount      = errors.New("invalid wager amount")
	ErrDegenerateBet      = errors.New("bet does not move the market probability")
	ErrInfeasibleBet      = errors.New("dollar amount solves to a probability outside (0, 1)")
	ErrEmptyLedger        = errors.New("ledger has no bets")
	ErrUnknownStrategy    = errors.New("unknown settlement strategy")
)
