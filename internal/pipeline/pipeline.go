// Package pipeline runs one loop invocation: list pending tickets, analyze
// each body, execute the chosen steps in the sandbox, archive the ticket and
// record the run.
//
// Per ticket the order is strict: workspace, artifact, archive. A ticket is
// only archived once its artifact is durable.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/clearframe/clearframe/internal/ledger"
	"github.com/clearframe/clearframe/internal/logging"
	"github.com/clearframe/clearframe/internal/planner"
	"github.com/clearframe/clearframe/internal/sandbox"
	"github.com/clearframe/clearframe/internal/signal"
	"github.com/clearframe/clearframe/internal/ticket"
	"github.com/clearframe/clearframe/internal/types"
)

// Options configures one Run.
type Options struct {
	// Explain turns on explain-mode analysis, including consultation.
	Explain bool

	// FailStepID injects a failure at this step id. Zero disables injection.
	FailStepID int

	// FailTicketID limits injection to one ticket. Empty means every ticket.
	FailTicketID string
}

func (o Options) failsFor(ticketID string) bool {
	return o.FailStepID > 0 && (o.FailTicketID == "" || o.FailTicketID == ticketID)
}

// TicketOutcome summarizes one executed ticket.
type TicketOutcome struct {
	TicketID       string               `json:"ticket_id" yaml:"ticket_id"`
	Classification types.Classification `json:"classification" yaml:"classification"`
	Intervention   types.Intervention   `json:"intervention" yaml:"intervention"`
	Signal         float64              `json:"signal" yaml:"signal"`
	BiasType       string               `json:"bias_type" yaml:"bias_type"`
	Steps          int                  `json:"steps" yaml:"steps"`
	Failed         bool                 `json:"failed" yaml:"failed"`
	ArtifactPath   string               `json:"artifact_path" yaml:"artifact_path"`
}

// Result is the outcome of one Run.
type Result struct {
	RunID          string          `json:"run_id" yaml:"run_id"`
	RunDir         string          `json:"run_dir" yaml:"run_dir"`
	Processed      int             `json:"processed" yaml:"processed"`
	Artifacts      []string        `json:"artifacts" yaml:"artifacts"`
	FailedTickets  []string        `json:"failed_tickets" yaml:"failed_tickets"`
	SkippedTickets []string        `json:"skipped_tickets" yaml:"skipped_tickets"`
	Tickets        []TicketOutcome `json:"tickets" yaml:"tickets"`
}

// Runner composes the ticket store, signal engine, sandbox and ledger.
type Runner struct {
	store    *ticket.Store
	engine   *signal.Engine
	executor *sandbox.Executor
	ledger   *ledger.Ledger
	now      func() time.Time
	logger   *slog.Logger
}

// NewRunner creates a runner. A nil logger uses the "pipeline" component logger.
func NewRunner(store *ticket.Store, engine *signal.Engine, executor *sandbox.Executor, led *ledger.Ledger, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.New("pipeline")
	}
	return &Runner{
		store:    store,
		engine:   engine,
		executor: executor,
		ledger:   led,
		now:      time.Now,
		logger:   logger,
	}
}

// Run processes every pending ticket once. A cancelled ctx stops the loop
// before the next ticket; the run is still recorded and ctx's error returned
// with the partial result.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	runID, runDir, err := r.ledger.CreateRun(r.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRunSetup, err)
	}
	log := r.logger.With("run", runID)

	paths, err := r.store.ListPending()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRunSetup, err)
	}
	log.Info("run started", "pending", len(paths), "explain", opts.Explain)

	res := &Result{
		RunID:          runID,
		RunDir:         runDir,
		Artifacts:      []string{},
		FailedTickets:  []string{},
		SkippedTickets: []string{},
		Tickets:        []TicketOutcome{},
	}

	var stopErr error
	seen := make(map[string]bool, len(paths))
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			stopErr = err
			log.Warn("run cancelled", "remaining", len(paths)-i)
			break
		}
		r.processOne(ctx, log, path, runDir, opts, seen, res)
	}

	if _, err := ledger.WriteRunLog(runDir, ledger.RunLog{
		RunID:          runID,
		TimestampUTC:   r.now().UTC().Format(time.RFC3339Nano),
		Processed:      res.Processed,
		Artifacts:      res.Artifacts,
		FailedTickets:  res.FailedTickets,
		SkippedTickets: res.SkippedTickets,
	}); err != nil {
		log.Warn("run log not written", "error", err)
	}

	if err := r.ledger.Append(types.RunRecord{RunID: runID, Path: runDir, Processed: res.Processed}); err != nil {
		return res, fmt.Errorf("%w: %v", ErrIndexWrite, err)
	}

	log.Info("run finished", "processed", res.Processed, "failed", len(res.FailedTickets), "skipped", len(res.SkippedTickets))
	return res, stopErr
}

// processOne loads, analyzes, executes and archives one ticket file.
// Artifact names must be unique within a run; a later ticket whose id maps
// to an already used name is skipped and stays pending.
func (r *Runner) processOne(ctx context.Context, log *slog.Logger, path, runDir string, opts Options, seen map[string]bool, res *Result) {
	tk, err := r.store.Load(path)
	if err != nil {
		if errors.Is(err, types.ErrMalformedTicket) {
			log.Warn("skipping malformed ticket", "path", path, "error", err)
		} else {
			log.Error("skipping unreadable ticket", "path", path, "error", err)
		}
		res.SkippedTickets = append(res.SkippedTickets, filepath.Base(path))
		return
	}
	key := sandbox.Key(tk.ID)
	if seen[key] {
		// Executing it would overwrite an earlier artifact and workspace.
		log.Warn("skipping ticket whose artifact name is already used in this run", "path", path, "ticket", tk.ID, "key", key)
		res.SkippedTickets = append(res.SkippedTickets, filepath.Base(path))
		return
	}
	seen[key] = true

	analysis := r.engine.AnalyzeTicket(ctx, tk, opts.Explain)
	plan := planner.ForAnalysis(tk.ID, tk.Body, analysis)

	execOpts := []sandbox.Option{sandbox.WithAnalysis(&analysis)}
	if opts.failsFor(tk.ID) {
		execOpts = append(execOpts, sandbox.WithFailStep(opts.FailStepID))
	}

	er, err := r.executor.Execute(tk.ID, plan.Steps, runDir, execOpts...)
	if err != nil {
		// No durable artifact: leave the ticket pending for the next run.
		log.Error("execution aborted", "ticket", tk.ID, "error", err)
		res.FailedTickets = append(res.FailedTickets, tk.ID)
		return
	}

	if err := r.store.Archive(tk, er.Failed); err != nil {
		log.Error("archive failed", "ticket", tk.ID, "error", err)
	}

	res.Processed++
	res.Artifacts = append(res.Artifacts, er.ArtifactPath)
	if er.Failed {
		res.FailedTickets = append(res.FailedTickets, tk.ID)
	}
	res.Tickets = append(res.Tickets, TicketOutcome{
		TicketID:       tk.ID,
		Classification: analysis.Classification,
		Intervention:   analysis.Intervention,
		Signal:         analysis.Signal,
		BiasType:       tk.BiasType,
		Steps:          er.StepCount,
		Failed:         er.Failed,
		ArtifactPath:   er.ArtifactPath,
	})
	log.Info("ticket processed",
		"ticket", tk.ID,
		"classification", analysis.Classification,
		"signal", analysis.Signal,
		"steps", er.StepCount,
		"failed", er.Failed)
}
