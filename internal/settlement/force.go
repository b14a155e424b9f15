package settlement

import (
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/betledger/internal/decmath"
	"github.com/alanyoungcy/betledger/internal/domain"
)

// MarketState is the running amount-weighted consensus after a bet.
type MarketState struct {
	// Size is the cumulative amount wagered.
	Size decimal.Decimal
	// TotalForce is the sum of amount·logit(p) over all bets.
	TotalForce decimal.Decimal
	// Probability is invLogit(TotalForce/Size), or 0.5 while Size is zero.
	Probability decimal.Decimal
}

// ForceStep is the per-bet detail of the force engine. Points, ratio and
// payoff stay zero for the opening bet.
type ForceStep struct {
	LogOdds     decimal.Decimal
	Force       decimal.Decimal
	PointsIfYes decimal.Decimal
	PointsIfNo  decimal.Decimal
	Ratio       decimal.Decimal
	Payoff      decimal.Decimal
	Market      MarketState
}

// Force settles a ledger by log-odds. A bettor who moves the probability
// risks exactly the amount wagered and, if right, wins the amount scaled by
// the ratio of the log-probability gained on the favoured side to that lost
// on the other.
type Force struct {
	calc   decmath.Calc
	logger *slog.Logger
}

// NewForce returns the force engine.
func NewForce(cfg Config, logger *slog.Logger) *Force {
	return &Force{
		calc:   cfg.calc(),
		logger: logger.With(slog.String("component", "log_odds_force")),
	}
}

// Name returns the engine identifier.
func (f *Force) Name() string { return StrategyForce }

// Settle walks the ledger in order, updating the running market and each
// bettor's totals, then reconciles against the market maker.
func (f *Force) Settle(l *domain.Ledger) (*Table, error) {
	if l.Len() == 0 {
		return nil, fmt.Errorf("log odds force: %w", domain.ErrEmptyLedger)
	}
	t := newTable(StrategyForce, l)
	logger := f.logger.With(slog.String("ledger_id", l.ID))

	state := MarketState{Size: decimal.Zero, TotalForce: decimal.Zero, Probability: decmath.Half()}
	pos := NewPositions()
	for _, b := range l.Bets() {
		step, err := f.step(b, state)
		if err != nil {
			return nil, fmt.Errorf("log odds force: bet %d (%s): %w", b.Index, b.Name, err)
		}
		state = step.Market
		t.Rows = append(t.Rows, Row{Bet: b, Force: step})
		if !b.IsFirst() {
			pos.Add(b.Name, b.Payoff.IfYes, b.Payoff.IfNo)
		}

		logger.Debug("bet settled",
			slog.Int("index", b.Index),
			slog.String("name", b.Name),
			slog.String("ratio", step.Ratio.String()),
			slog.String("payoff", step.Payoff.String()),
			slog.String("market_probability", state.Probability.String()),
		)
	}

	t.Positions = Reconcile(l.MarketMaker(), pos)
	final := state
	t.Market = &final

	logger.Info("ledger settled",
		slog.Int("bets", l.Len()),
		slog.String("market_size", state.Size.String()),
		slog.String("market_probability", state.Probability.String()),
	)
	return t, nil
}

// step settles one bet given the market state before it.
func (f *Force) step(b *domain.Bet, before MarketState) (*ForceStep, error) {
	logOdds, err := f.calc.Logit(b.Probability)
	if err != nil {
		return nil, err
	}
	s := &ForceStep{
		LogOdds:     logOdds,
		Force:       b.Amount.Mul(logOdds),
		PointsIfYes: decimal.Zero,
		PointsIfNo:  decimal.Zero,
		Ratio:       decimal.Zero,
		Payoff:      decimal.Zero,
	}

	s.Market.Size = before.Size.Add(b.Amount)
	s.Market.TotalForce = before.TotalForce.Add(s.Force)
	s.Market.Probability = decmath.Half()
	if s.Market.Size.IsPositive() {
		s.Market.Probability, err = f.calc.InvLogit(f.calc.Div(s.Market.TotalForce, s.Market.Size))
		if err != nil {
			return nil, err
		}
	}

	if b.IsFirst() {
		pay := zeroPayoff
		b.Payoff = &pay
		return s, nil
	}

	if s.PointsIfYes, err = f.logRatio(b.Probability, b.Previous.Probability); err != nil {
		return nil, err
	}
	if s.PointsIfNo, err = f.logRatio(one.Sub(b.Probability), one.Sub(b.Previous.Probability)); err != nil {
		return nil, err
	}
	upside := decimal.Max(s.PointsIfYes, s.PointsIfNo)
	downside := decimal.Min(s.PointsIfYes, s.PointsIfNo)
	if !upside.IsPositive() || !downside.IsNegative() {
		return nil, fmt.Errorf("%w: %s after %s (upside %s, downside %s)", domain.ErrDegenerateBet,
			b.Probability.String(), b.Previous.Probability.String(), upside.String(), downside.String())
	}
	s.Ratio = f.calc.Div(upside, downside.Neg())
	s.Payoff = s.Ratio.Mul(b.Amount)

	loss := b.Amount.Neg()
	if b.Probability.GreaterThan(b.Previous.Probability) {
		b.Payoff = &domain.Payoff{IfYes: s.Payoff, IfNo: loss}
	} else {
		b.Payoff = &domain.Payoff{IfYes: loss, IfNo: s.Payoff}
	}
	return s, nil
}

// logRatio returns ln(a/b) as ln(a)-ln(b), avoiding a rounded quotient.
func (f *Force) logRatio(a, b decimal.Decimal) (decimal.Decimal, error) {
	la, err := f.calc.Ln(a)
	if err != nil {
		return decimal.Zero, err
	}
	lb, err := f.calc.Ln(b)
	if err != nil {
		return decimal.Zero, err
	}
	return la.Sub(lb), nil
}
