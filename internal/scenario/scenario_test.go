package scenario

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/betledger/internal/domain"
	"github.com/alanyoungcy/betledger/internal/settlement"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const bedtimeTOML = `
proposition = "I go to bed by 10:30 pm."
endowment = "5"

[[bets]]
name = "SD"
probability = "0.70"

[[bets]]
name = "CO"
entry = "dollars_yes"
amount = "1"

[[bets]]
name = "YY"
probability = "0.83"

[[bets]]
name = "XX"
entry = "dollars_no"
amount = "20"
`

const forceYAML = `
proposition: "I go to bed by 10:30 pm."
strategy: log_odds_force
bets:
  - {name: SD, amount: "5", probability: "0.70"}
  - {name: CO, amount: "1", probability: "0.75"}
  - {name: XCO, amount: "1", probability: "0.6533"}
  - {name: XSD, amount: "5", probability: "0.30"}
  - {name: XX, amount: "20", probability: "0.01"}
`

func TestLoadAndBuildDollarScenario(t *testing.T) {
	f, err := Load(writeFile(t, "bedtime.toml", bedtimeTOML))
	require.NoError(t, err)
	assert.True(t, f.HasDollarBets())
	assert.Empty(t, f.Strategy)

	l, err := f.Build(settlement.MarketConfig{}, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	require.Equal(t, 4, l.Len())
	assert.Equal(t, "SD", l.MarketMaker())
	assert.Equal(t, "5", l.Endowment.String())

	co := l.Bets()[1]
	assert.Equal(t, domain.EntryDollarsYes, co.Entry)
	assert.Equal(t, "0.7642", co.Probability.String())
	assert.Equal(t, "1", co.Amount.String())
	assert.Equal(t, domain.EntryDollarsNo, l.Bets()[3].Entry)
}

func TestLoadAndBuildProbabilityScenario(t *testing.T) {
	f, err := Load(writeFile(t, "force.yaml", forceYAML))
	require.NoError(t, err)
	assert.False(t, f.HasDollarBets())
	assert.Equal(t, settlement.StrategyForce, f.Strategy)

	l, err := f.Build(settlement.MarketConfig{}, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	require.Equal(t, 5, l.Len())
	assert.True(t, l.Endowment.IsZero())
	assert.Equal(t, "20", l.Last().Amount.String())
	assert.Equal(t, "0.6533", l.Bets()[2].Probability.String())
}

const mixedYAML = `
proposition: "I go to bed by 10:30 pm."
strategy: log_odds_force
endowment: "5"
bets:
  - {name: SD, amount: "5", probability: "0.70"}
  - {name: CO, entry: dollars_yes, amount: "1"}
  - {name: XX, amount: "20", probability: "0.01"}
`

func TestBuildMixedScenarioKeepsAmounts(t *testing.T) {
	f, err := Load(writeFile(t, "mixed.yaml", mixedYAML))
	require.NoError(t, err)
	require.True(t, f.HasDollarBets())

	l, err := f.Build(settlement.MarketConfig{}, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	require.Equal(t, 3, l.Len())

	bets := l.Bets()
	assert.Equal(t, "5", bets[0].Amount.String())
	assert.Equal(t, "1", bets[1].Amount.String())
	assert.Equal(t, "0.7642", bets[1].Probability.String())
	assert.Equal(t, "20", bets[2].Amount.String())
	assert.Equal(t, domain.EntryProbability, bets[2].Entry)

	table, err := settlement.NewForce(settlement.Config{}, slog.New(slog.DiscardHandler)).Settle(l)
	require.NoError(t, err)
	require.NotNil(t, table.Market)
	assert.Equal(t, "26", table.Market.Size.String())

	yes, no := table.Positions.Get("XX")
	assert.Equal(t, "-20", yes.String())
	assert.True(t, no.IsPositive())
	assert.True(t, table.Positions.ZeroSum())
}

func TestLoadRejectsInvalidFiles(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
	}{
		{name: "no proposition", file: "a.yaml", body: "bets:\n  - {name: SD, probability: \"0.5\"}\n"},
		{name: "no bets", file: "b.yaml", body: "proposition: x\n"},
		{name: "unnamed bet", file: "c.yaml", body: "proposition: x\nbets:\n  - {probability: \"0.5\"}\n"},
		{name: "unknown entry", file: "d.yaml", body: "proposition: x\nbets:\n  - {name: SD, entry: shares, probability: \"0.5\"}\n"},
		{name: "non-numeric amount", file: "e.toml", body: "proposition = \"x\"\n[[bets]]\nname = \"SD\"\namount = \"lots\"\n"},
		{name: "unknown strategy", file: "f.toml", body: "proposition = \"x\"\nstrategy = \"lmsr\"\n[[bets]]\nname = \"SD\"\n"},
		{name: "unsupported extension", file: "g.json", body: "{}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestBuildErrors(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	dollarsFirst := &File{Proposition: "x", Endowment: "5", Bets: []Bet{{Name: "SD", Entry: "dollars_yes", Amount: "1"}}}
	_, err := dollarsFirst.Build(settlement.MarketConfig{}, logger)
	assert.ErrorContains(t, err, "opening quote")

	noEndowment := &File{Proposition: "x", Bets: []Bet{
		{Name: "SD", Probability: "0.7"},
		{Name: "CO", Entry: "dollars_no", Amount: "1"},
	}}
	_, err = noEndowment.Build(settlement.MarketConfig{}, logger)
	assert.ErrorIs(t, err, domain.ErrInvalidEndowment)

	missingProbability := &File{Proposition: "x", Bets: []Bet{
		{Name: "SD", Probability: "0.7"},
		{Name: "CO", Amount: "1"},
	}}
	_, err = missingProbability.Build(settlement.MarketConfig{}, logger)
	assert.ErrorIs(t, err, domain.ErrInvalidProbability)

	certain := &File{Proposition: "x", Bets: []Bet{{Name: "SD", Probability: "1"}}}
	_, err = certain.Build(settlement.MarketConfig{}, logger)
	assert.ErrorIs(t, err, domain.ErrInvalidProbability)

	infeasible := &File{Proposition: "x", Endowment: "5", Bets: []Bet{
		{Name: "SD", Probability: "0.5"},
		{Name: "XX", Entry: "dollars_no", Amount: "100"},
	}}
	_, err = infeasible.Build(settlement.MarketConfig{}, logger)
	assert.ErrorIs(t, err, domain.ErrInfeasibleBet)

	huge := &File{Proposition: "x", Endowment: "5", Bets: []Bet{
		{Name: "SD", Probability: "0.7"},
		{Name: "XX", Entry: "dollars_yes", Amount: "100000"},
	}}
	_, err = huge.Build(settlement.MarketConfig{}, logger)
	assert.ErrorIs(t, err, domain.ErrInfeasibleBet)

	negativeStake := &File{Proposition: "x", Endowment: "5", Bets: []Bet{
		{Name: "SD", Probability: "0.7"},
		{Name: "CO", Entry: "dollars_yes", Amount: "1"},
		{Name: "XX", Probability: "0.2", Amount: "-3"},
	}}
	_, err = negativeStake.Build(settlement.MarketConfig{}, logger)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}
