// Package scenario loads bet sequences from TOML or YAML files and builds
// the ledgers the settlement engines consume.
package scenario

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/alanyoungcy/betledger/internal/domain"
	"github.com/alanyoungcy/betledger/internal/settlement"
)

// File is one market: a proposition and its bets in chronological order.
// The first bet is the market maker's opening quote.
type File struct {
	Proposition string `toml:"proposition" yaml:"proposition" validate:"required"`
	// Strategy optionally pins the engine for this market.
	Strategy string `toml:"strategy" yaml:"strategy" validate:"omitempty,oneof=log_score log_odds_force"`
	// Endowment is required by the log-score engine and by dollar bets.
	Endowment string `toml:"endowment" yaml:"endowment" validate:"omitempty,numeric"`
	Bets      []Bet  `toml:"bets" yaml:"bets" validate:"required,min=1,dive"`
}

// Bet is one line of a scenario. Probability bets need a probability;
// dollar bets need an amount and have their probability solved.
type Bet struct {
	Name        string `toml:"name" yaml:"name" validate:"required"`
	Entry       string `toml:"entry" yaml:"entry" validate:"omitempty,oneof=probability dollars_yes dollars_no"`
	Probability string `toml:"probability" yaml:"probability" validate:"omitempty,numeric"`
	Amount      string `toml:"amount" yaml:"amount" validate:"omitempty,numeric"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load decodes and validates a scenario file. The format is chosen by
// extension: .toml, .yaml or .yml.
func Load(path string) (*File, error) {
	var f File
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.DecodeFile(path, &f); err != nil {
			return nil, fmt.Errorf("scenario %s: %w", path, err)
		}
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("scenario %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("scenario %s: unsupported extension (want .toml, .yaml or .yml)", path)
	}

	if err := validate.Struct(&f); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return &f, nil
}

// HasDollarBets reports whether any bet must be solved from a dollar amount.
func (f *File) HasDollarBets() bool {
	for _, b := range f.Bets {
		if entryOf(b) != domain.EntryProbability {
			return true
		}
	}
	return false
}

// Build turns the scenario into a ledger. Scenarios with dollar bets are
// played through a log-score market, which solves each dollar amount for a
// probability as the bet arrives; all others become a plain ledger.
func (f *File) Build(cfg settlement.MarketConfig, logger *slog.Logger) (*domain.Ledger, error) {
	endowment, err := parseOptional(f.Endowment)
	if err != nil {
		return nil, fmt.Errorf("endowment: %w", err)
	}
	first := f.Bets[0]
	if entryOf(first) != domain.EntryProbability {
		return nil, fmt.Errorf("bet 0 (%s): the opening quote must be a probability bet", first.Name)
	}

	if !f.HasDollarBets() {
		specs := make([]domain.BetSpec, 0, len(f.Bets))
		for i, b := range f.Bets {
			spec, err := b.spec()
			if err != nil {
				return nil, fmt.Errorf("bet %d (%s): %w", i, b.Name, err)
			}
			specs = append(specs, spec)
		}
		return domain.NewLedgerFromBets(domain.LedgerConfig{
			Proposition:       f.Proposition,
			Endowment:         endowment,
			ProbabilityPlaces: cfg.ProbabilityPlaces,
		}, specs)
	}

	opening, err := first.spec()
	if err != nil {
		return nil, fmt.Errorf("bet 0 (%s): %w", first.Name, err)
	}
	m, err := settlement.OpenMarket(opening, f.Proposition, endowment, cfg, logger)
	if err != nil {
		return nil, err
	}
	for i, b := range f.Bets[1:] {
		if err := b.record(m); err != nil {
			return nil, fmt.Errorf("bet %d (%s): %w", i+1, b.Name, err)
		}
	}
	return m.Ledger(), nil
}

func (b Bet) record(m *settlement.Market) error {
	switch entryOf(b) {
	case domain.EntryDollarsYes, domain.EntryDollarsNo:
		amount, err := parseOptional(b.Amount)
		if err != nil {
			return fmt.Errorf("amount: %w", err)
		}
		if entryOf(b) == domain.EntryDollarsYes {
			_, err = m.RecordDollarBetYes(b.Name, amount)
		} else {
			_, err = m.RecordDollarBetNo(b.Name, amount)
		}
		return err
	default:
		spec, err := b.spec()
		if err != nil {
			return err
		}
		_, err = m.RecordStakedBet(spec.Name, spec.Probability, spec.Amount)
		return err
	}
}

func (b Bet) spec() (domain.BetSpec, error) {
	p, err := b.probability()
	if err != nil {
		return domain.BetSpec{}, err
	}
	amount, err := parseOptional(b.Amount)
	if err != nil {
		return domain.BetSpec{}, fmt.Errorf("amount: %w", err)
	}
	return domain.BetSpec{Name: b.Name, Amount: amount, Probability: p}, nil
}

func (b Bet) probability() (decimal.Decimal, error) {
	if b.Probability == "" {
		return decimal.Zero, fmt.Errorf("%w: probability bet has no probability", domain.ErrInvalidProbability)
	}
	p, err := decimal.NewFromString(b.Probability)
	if err != nil {
		return decimal.Zero, fmt.Errorf("probability: %w", err)
	}
	return p, nil
}

func entryOf(b Bet) domain.Entry {
	if b.Entry == "" {
		return domain.EntryProbability
	}
	return domain.Entry(b.Entry)
}

func parseOptional(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
