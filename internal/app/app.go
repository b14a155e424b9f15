// Package app provides the top-level application lifecycle for the settlement
// tool. It wires configuration, the engine registry and the report renderer
// together and settles each scenario file in turn.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/text/language"

	"github.com/alanyoungcy/betledger/internal/config"
	"github.com/alanyoungcy/betledger/internal/report"
	"github.com/alanyoungcy/betledger/internal/scenario"
	"github.com/alanyoungcy/betledger/internal/settlement"
)

// App is the root application object. It owns the configuration, logger,
// engine registry and renderer.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *settlement.Registry
	renderer *report.Renderer
	out      io.Writer
}

// New creates a new App from a validated configuration. Reports are written
// to out.
func New(cfg *config.Config, logger *slog.Logger, out io.Writer) *App {
	engines := settlement.Config{Precision: int32(cfg.Settlement.Precision)}
	return &App{
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "app")),
		registry: settlement.DefaultRegistry(engines, logger),
		renderer: report.New(report.Options{
			Currency: cfg.Report.Currency,
			Language: language.Make(cfg.Report.Language),
		}),
		out: out,
	}
}

// Run settles every scenario in order. strategy, when non-empty, overrides
// both the scenario file and the configuration. The first failing scenario
// aborts the run.
func (a *App) Run(ctx context.Context, strategy string, paths []string) error {
	if len(paths) == 0 {
		return fmt.Errorf("app: no scenario files given")
	}
	a.logger.InfoContext(ctx, "starting settlement",
		slog.Int("scenarios", len(paths)),
		slog.String("strategies", strings.Join(a.registry.List(), ",")),
	)

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		if i > 0 {
			if _, err := io.WriteString(a.out, "\n"); err != nil {
				return err
			}
		}
		if err := a.settle(ctx, strategy, path); err != nil {
			return fmt.Errorf("app: %s: %w", path, err)
		}
	}
	return nil
}

func (a *App) settle(ctx context.Context, strategy, path string) error {
	f, err := scenario.Load(path)
	if err != nil {
		return err
	}
	name := a.pick(strategy, f.Strategy)
	settler, err := a.registry.Get(name)
	if err != nil {
		return err
	}

	ledger, err := f.Build(settlement.MarketConfig{
		Config:            settlement.Config{Precision: int32(a.cfg.Settlement.Precision)},
		ProbabilityPlaces: int32(a.cfg.Settlement.ProbabilityPlaces),
	}, a.logger)
	if err != nil {
		return err
	}

	table, err := settler.Settle(ledger)
	if err != nil {
		return err
	}
	if !table.Positions.ZeroSum() {
		yes, no := table.Positions.Sum()
		return fmt.Errorf("settlement is not zero-sum: if yes %s, if no %s", yes.String(), no.String())
	}

	a.logger.InfoContext(ctx, "scenario settled",
		slog.String("path", path),
		slog.String("strategy", name),
		slog.String("ledger_id", ledger.ID),
		slog.Int("bets", ledger.Len()),
		slog.Int("participants", len(table.Positions.Names())),
	)
	return a.renderer.Render(a.out, a.cfg.Report.Format, table)
}

// pick chooses the engine: command line first, then the scenario file, then
// the configuration.
func (a *App) pick(override, fromFile string) string {
	switch {
	case override != "":
		return override
	case fromFile != "":
		return fromFile
	default:
		return a.cfg.Settlement.Strategy
	}
}
