package main

import (
	"fmt"
	"io"

	"github.com/clearframe/clearframe/internal/config"
	"github.com/clearframe/clearframe/internal/consult"
	"github.com/clearframe/clearframe/internal/formatter"
	"github.com/clearframe/clearframe/internal/ledger"
	"github.com/clearframe/clearframe/internal/logging"
	"github.com/clearframe/clearframe/internal/pipeline"
	"github.com/clearframe/clearframe/internal/sandbox"
	"github.com/clearframe/clearframe/internal/signal"
	"github.com/clearframe/clearframe/internal/ticket"
)

// newEngine builds the signal engine with the configured gate and consultant.
func newEngine(cfg *config.Config) *signal.Engine {
	g := cfg.Engine.Gate
	c := consult.New(consult.Settings{
		Provider: cfg.Consult.Provider,
		Command:  cfg.Consult.Command,
		Args:     cfg.Consult.Args,
		Timeout:  cfg.ConsultTimeout(),
	})
	opts := []signal.Option{
		signal.WithGate(signal.GatePolicy{
			SilenceBelow:   g.SilenceBelow,
			ForceYesAt:     g.ForceYesAt,
			HedgeUpAt:      g.HedgeUpAt,
			HedgeDownBelow: g.HedgeDownBelow,
			DowngradeBelow: g.DowngradeBelow,
		}),
		// The none provider yields a nil Consultant, which disables consultation.
		signal.WithConsultant(c),
		signal.WithLogger(logging.New("signal")),
	}
	return signal.NewEngine(opts...)
}

// newRunner wires store, engine, sandbox and ledger for one invocation.
func newRunner(cfg *config.Config) *pipeline.Runner {
	return pipeline.NewRunner(
		ticket.NewStore(cfg.IncomingPath()),
		newEngine(cfg),
		sandbox.NewExecutor(version, logging.New("sandbox")),
		ledger.New(cfg.RunsPath()),
		logging.New("pipeline"),
	)
}

// writeOutput encodes v for json and yaml output and falls back to table
// for everything else.
func writeOutput(w io.Writer, v any, table func(io.Writer) error) error {
	if format := GetOutput(); formatter.IsStructured(format) {
		if err := formatter.Encode(w, format, v); err != nil {
			return fmt.Errorf("encode %s: %w", format, err)
		}
		return nil
	}
	return table(w)
}
