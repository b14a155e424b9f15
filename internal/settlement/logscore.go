package settlement

import (
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/betledger/internal/decmath"
	"github.com/alanyoungcy/betledger/internal/domain"
)

// MarketConfig configures a log-score Market.
type MarketConfig struct {
	Config
	// ProbabilityPlaces is the rounding applied to every probability,
	// including those solved from dollar amounts.
	ProbabilityPlaces int32
}

// Market is a live log-score market. Bets are recorded one at a time and
// settled on arrival against the bet before them; the market maker's
// exposure is re-measured against the latest quote after every bet.
type Market struct {
	ledger *domain.Ledger
	calc   decmath.Calc
	scale  decimal.Decimal
	logger *slog.Logger
}

// NewMarket opens a market with the market maker's quote p0. The scale is
// calibrated so the market maker never loses more than endowment on either
// outcome relative to its own opening quote.
func NewMarket(marketMaker, proposition string, p0, endowment decimal.Decimal, cfg MarketConfig, logger *slog.Logger) (*Market, error) {
	return OpenMarket(domain.BetSpec{Name: marketMaker, Probability: p0, Amount: decimal.Zero}, proposition, endowment, cfg, logger)
}

// OpenMarket is NewMarket with the opening bet given in full. The opening
// amount does not affect log-score payoffs but is kept on the ledger for
// engines that weight by stake.
func OpenMarket(opening domain.BetSpec, proposition string, endowment decimal.Decimal, cfg MarketConfig, logger *slog.Logger) (*Market, error) {
	marketMaker := opening.Name
	l := domain.NewLedger(domain.LedgerConfig{
		Proposition:       proposition,
		Endowment:         endowment,
		ProbabilityPlaces: cfg.ProbabilityPlaces,
	})
	mm, err := l.Append(marketMaker, opening.Probability, opening.Amount, domain.EntryProbability)
	if err != nil {
		return nil, fmt.Errorf("new market: opening quote: %w", err)
	}
	m, err := attach(l, cfg.calc(), logger)
	if err != nil {
		return nil, fmt.Errorf("new market: %w", err)
	}
	if err := m.settle(mm); err != nil {
		return nil, err
	}

	m.logger.Info("market opened",
		slog.String("market_maker", marketMaker),
		slog.String("proposition", proposition),
		slog.String("probability", mm.Probability.String()),
		slog.String("endowment", endowment.String()),
		slog.String("scale", m.scale.String()),
	)
	return m, nil
}

// attach wraps an existing non-empty ledger, calibrating the scale from its
// opening bet and endowment.
func attach(l *domain.Ledger, calc decmath.Calc, logger *slog.Logger) (*Market, error) {
	first := l.First()
	if first == nil {
		return nil, domain.ErrEmptyLedger
	}
	scale, err := Calibrate(calc, first.Probability, l.Endowment)
	if err != nil {
		return nil, err
	}
	return &Market{
		ledger: l,
		calc:   calc,
		scale:  scale,
		logger: logger.With(slog.String("component", "log_score"), slog.String("ledger_id", l.ID)),
	}, nil
}

// Ledger returns the underlying ledger.
func (m *Market) Ledger() *domain.Ledger { return m.ledger }

// Scale returns the calibrated scale.
func (m *Market) Scale() decimal.Decimal { return m.scale }

// Score is the logarithmic scoring rule scale·ln(p).
func (m *Market) Score(p decimal.Decimal) (decimal.Decimal, error) {
	ln, err := m.calc.Ln(p)
	if err != nil {
		return decimal.Zero, err
	}
	return m.scale.Mul(ln), nil
}

// InverseScore is exp(amount/scale), the probability whose score is amount.
func (m *Market) InverseScore(amount decimal.Decimal) (decimal.Decimal, error) {
	return m.calc.Exp(m.calc.Div(amount, m.scale))
}

// RecordProbabilityBet appends a bet at probability p and settles it
// against the previous quote.
func (m *Market) RecordProbabilityBet(name string, p decimal.Decimal) (*domain.Bet, error) {
	return m.RecordStakedBet(name, p, decimal.Zero)
}

// RecordStakedBet is RecordProbabilityBet with a wager amount attached. The
// amount is recorded on the bet but does not change its log-score payoff.
func (m *Market) RecordStakedBet(name string, p, amount decimal.Decimal) (*domain.Bet, error) {
	return m.record(name, p, amount, domain.EntryProbability)
}

// RecordDollarBetYes bets on "yes" at the probability where a "no"
// resolution costs the bettor exactly amount.
func (m *Market) RecordDollarBetYes(name string, amount decimal.Decimal) (*domain.Bet, error) {
	if err := checkDollars(amount); err != nil {
		return nil, err
	}
	prev := m.ledger.Last()
	base, err := m.Score(one.Sub(prev.Probability))
	if err != nil {
		return nil, err
	}
	inv, err := m.InverseScore(base.Sub(amount))
	if err != nil {
		return nil, err
	}
	p, err := m.feasible(one.Sub(inv), amount)
	if err != nil {
		return nil, err
	}
	return m.record(name, p, amount, domain.EntryDollarsYes)
}

// RecordDollarBetNo bets on "no" at the probability where a "yes"
// resolution costs the bettor exactly amount.
func (m *Market) RecordDollarBetNo(name string, amount decimal.Decimal) (*domain.Bet, error) {
	if err := checkDollars(amount); err != nil {
		return nil, err
	}
	prev := m.ledger.Last()
	base, err := m.Score(prev.Probability)
	if err != nil {
		return nil, err
	}
	inv, err := m.InverseScore(base.Sub(amount))
	if err != nil {
		return nil, err
	}
	p, err := m.feasible(inv, amount)
	if err != nil {
		return nil, err
	}
	return m.record(name, p, amount, domain.EntryDollarsNo)
}

func checkDollars(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: dollar bets need a positive amount, got %s", domain.ErrInvalidAmount, amount.String())
	}
	return nil
}

// feasible rounds a solved probability and rejects it when it lands outside
// (0, 1).
func (m *Market) feasible(p, amount decimal.Decimal) (decimal.Decimal, error) {
	q := m.ledger.Quantize(p)
	if !domain.ValidProbability(q) {
		return decimal.Zero, fmt.Errorf("%w: $%s solves to %s", domain.ErrInfeasibleBet, amount.String(), q.String())
	}
	return q, nil
}

func (m *Market) record(name string, p, amount decimal.Decimal, entry domain.Entry) (*domain.Bet, error) {
	b, err := m.ledger.Append(name, p, amount, entry)
	if err != nil {
		return nil, fmt.Errorf("record %s bet for %s: %w", entry, name, err)
	}
	if err := m.settle(b); err != nil {
		return nil, err
	}
	return b, nil
}

// settle assigns b's payoff relative to its predecessor and re-measures the
// market maker against b.
func (m *Market) settle(b *domain.Bet) error {
	if b.IsFirst() {
		pay := zeroPayoff
		b.Payoff = &pay
		return nil
	}
	pay, err := m.move(b.Previous.Probability, b.Probability)
	if err != nil {
		return fmt.Errorf("settle bet %d (%s): %w", b.Index, b.Name, err)
	}
	b.Payoff = &pay

	mm := m.ledger.First()
	exposure, err := m.move(b.Probability, mm.Probability)
	if err != nil {
		return fmt.Errorf("re-measure market maker: %w", err)
	}
	mm.Payoff = &exposure

	m.logger.Debug("bet settled",
		slog.Int("index", b.Index),
		slog.String("name", b.Name),
		slog.String("probability", b.Probability.String()),
		slog.String("if_yes", pay.IfYes.String()),
		slog.String("if_no", pay.IfNo.String()),
		slog.String("mm_if_yes", exposure.IfYes.String()),
		slog.String("mm_if_no", exposure.IfNo.String()),
	)
	return nil
}

// move is the payoff for moving the quote from `from` to `to`:
// score(to)-score(from) if yes, score(1-to)-score(1-from) if no.
func (m *Market) move(from, to decimal.Decimal) (domain.Payoff, error) {
	yesTo, err := m.Score(to)
	if err != nil {
		return domain.Payoff{}, err
	}
	yesFrom, err := m.Score(from)
	if err != nil {
		return domain.Payoff{}, err
	}
	noTo, err := m.Score(one.Sub(to))
	if err != nil {
		return domain.Payoff{}, err
	}
	noFrom, err := m.Score(one.Sub(from))
	if err != nil {
		return domain.Payoff{}, err
	}
	return domain.Payoff{IfYes: yesTo.Sub(yesFrom), IfNo: noTo.Sub(noFrom)}, nil
}

// Table reconciles the market's current state into a payoff table.
func (m *Market) Table() *Table {
	t := newTable(StrategyLogScore, m.ledger)
	t.Scale = m.scale

	pos := NewPositions()
	for _, b := range m.ledger.Bets() {
		t.Rows = append(t.Rows, Row{Bet: b})
		if b.IsFirst() || b.Payoff == nil {
			continue
		}
		pos.Add(b.Name, b.Payoff.IfYes, b.Payoff.IfNo)
	}
	t.Positions = Reconcile(m.ledger.MarketMaker(), pos)
	return t
}

// LogScore settles a ledger with the logarithmic scoring rule. It replays
// the ledger's bets through a Market; the ledger must carry a positive
// endowment.
type LogScore struct {
	cfg    Config
	logger *slog.Logger
}

// NewLogScore returns the log-score engine.
func NewLogScore(cfg Config, logger *slog.Logger) *LogScore {
	return &LogScore{cfg: cfg, logger: logger}
}

// Name returns the engine identifier.
func (s *LogScore) Name() string { return StrategyLogScore }

// Settle replays every bet in order and returns the reconciled table.
func (s *LogScore) Settle(l *domain.Ledger) (*Table, error) {
	m, err := attach(l, s.cfg.calc(), s.logger)
	if err != nil {
		return nil, fmt.Errorf("log score: %w", err)
	}
	for _, b := range l.Bets() {
		if err := m.settle(b); err != nil {
			return nil, fmt.Errorf("log score: %w", err)
		}
	}
	t := m.Table()
	m.logger.Info("ledger settled",
		slog.Int("bets", l.Len()),
		slog.String("scale", m.scale.String()),
	)
	return t, nil
}
