package report

import (
	"io"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/alanyoungcy/betledger/internal/settlement"
)

type yamlReport struct {
	Ledger      string         `yaml:"ledger"`
	Strategy    string         `yaml:"strategy"`
	Proposition string         `yaml:"proposition"`
	MarketMaker string         `yaml:"market_maker"`
	Scale       string         `yaml:"scale,omitempty"`
	Bets        []yamlBet      `yaml:"bets"`
	Market      *yamlMarket    `yaml:"market,omitempty"`
	Positions   []yamlPosition `yaml:"positions"`
}

type yamlBet struct {
	Name        string     `yaml:"name"`
	Entry       string     `yaml:"entry"`
	Probability string     `yaml:"probability"`
	Amount      string     `yaml:"amount,omitempty"`
	IfYes       string     `yaml:"if_yes"`
	IfNo        string     `yaml:"if_no"`
	Force       *yamlForce `yaml:"force,omitempty"`
}

type yamlForce struct {
	LogOdds     string     `yaml:"log_odds"`
	Force       string     `yaml:"force"`
	PointsIfYes string     `yaml:"points_if_yes"`
	PointsIfNo  string     `yaml:"points_if_no"`
	Ratio       string     `yaml:"ratio"`
	Payoff      string     `yaml:"payoff"`
	Market      yamlMarket `yaml:"market"`
}

type yamlMarket struct {
	Size        string `yaml:"size"`
	TotalForce  string `yaml:"total_force"`
	Probability string `yaml:"probability"`
}

type yamlPosition struct {
	Name  string  `yaml:"name"`
	IfYes float64 `yaml:"if_yes"`
	IfNo  float64 `yaml:"if_no"`
}

// places bounds the digits written for derived quantities.
const places = 8

func fixed(d decimal.Decimal) string { return d.Round(places).String() }

func market(s settlement.MarketState) yamlMarket {
	return yamlMarket{Size: fixed(s.Size), TotalForce: fixed(s.TotalForce), Probability: fixed(s.Probability)}
}

// YAML writes t as a YAML document. Decimal quantities are strings so no
// precision is lost; the reconciled positions are plain floats.
func (r *Renderer) YAML(w io.Writer, t *settlement.Table) error {
	doc := yamlReport{
		Ledger:      t.LedgerID,
		Strategy:    t.Strategy,
		Proposition: t.Proposition,
		MarketMaker: t.MarketMaker,
	}
	if t.Scale.IsPositive() {
		doc.Scale = fixed(t.Scale)
	}
	if t.Market != nil {
		m := market(*t.Market)
		doc.Market = &m
	}

	for _, row := range t.Rows {
		b := row.Bet
		yb := yamlBet{
			Name:        b.Name,
			Entry:       string(b.Entry),
			Probability: b.Probability.String(),
			IfYes:       "0",
			IfNo:        "0",
		}
		if !b.Amount.IsZero() {
			yb.Amount = b.Amount.String()
		}
		if b.Payoff != nil {
			yb.IfYes, yb.IfNo = fixed(b.Payoff.IfYes), fixed(b.Payoff.IfNo)
		}
		if f := row.Force; f != nil {
			yb.Force = &yamlForce{
				LogOdds:     fixed(f.LogOdds),
				Force:       fixed(f.Force),
				PointsIfYes: fixed(f.PointsIfYes),
				PointsIfNo:  fixed(f.PointsIfNo),
				Ratio:       fixed(f.Ratio),
				Payoff:      fixed(f.Payoff),
				Market:      market(f.Market),
			}
		}
		doc.Bets = append(doc.Bets, yb)
	}

	for _, n := range t.Positions.Names() {
		y, x := t.Positions.Get(n)
		doc.Positions = append(doc.Positions, yamlPosition{Name: n, IfYes: y.InexactFloat64(), IfNo: x.InexactFloat64()})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}
