package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/clearframe/clearframe/internal/formatter"
	"github.com/clearframe/clearframe/internal/pipeline"
)

var (
	runExplain    bool
	runFailStep   int
	runFailTicket string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process every pending ticket once",
	Long: `Run one loop invocation over tickets/incoming.

Each pending ticket is analyzed, its plan is executed as a dry run in
tickets/runs/<run-id>/workspace/<ticket>, an execution artifact is written
and the ticket is archived with a .done suffix. The run is appended to
tickets/runs/index.json.

Examples:
  clearframe run
  clearframe run --explain
  clearframe run --fail-step 2 --fail-ticket T-7 -o json`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&runExplain, "explain", false, "Explain each verdict and consult for borderline signals")
	runCmd.Flags().IntVar(&runFailStep, "fail-step", 0, "Inject a failure at this step id (0 disables)")
	runCmd.Flags().StringVar(&runFailTicket, "fail-ticket", "", "Limit --fail-step to one ticket id")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := currentConfig()
	if err != nil {
		return err
	}
	if runFailStep < 0 {
		return fmt.Errorf("--fail-step must be >= 0, got %d", runFailStep)
	}

	res, err := newRunner(cfg).Run(cmd.Context(), pipeline.Options{
		Explain:      runExplain || cfg.Engine.Explain,
		FailStepID:   runFailStep,
		FailTicketID: runFailTicket,
	})
	if res == nil {
		return err
	}
	if werr := writeOutput(cmd.OutOrStdout(), res, func(w io.Writer) error {
		return renderRunResult(w, res)
	}); werr != nil {
		return werr
	}
	return err
}

func renderRunResult(w io.Writer, res *pipeline.Result) error {
	fmt.Fprintf(w, "Run %s\n", res.RunID)
	fmt.Fprintf(w, "  processed: %d  failed: %d  skipped: %d\n",
		res.Processed, len(res.FailedTickets), len(res.SkippedTickets))

	if len(res.Tickets) == 0 {
		fmt.Fprintln(w, "No pending tickets")
		return nil
	}

	fmt.Fprintln(w)
	tbl := formatter.NewTable(w, "TICKET", "CLASS", "SIGNAL", "BIAS", "STEPS", "STATUS").
		SetMaxWidth(0, 32).
		AlignRight(2, 4)
	for _, o := range res.Tickets {
		status := "ok"
		if o.Failed {
			status = "failed"
		}
		tbl.AddRow(o.TicketID, o.Classification, strconv.FormatFloat(o.Signal, 'f', 2, 64), o.BiasType, o.Steps, status)
	}
	return tbl.Render()
}
