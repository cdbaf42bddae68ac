package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Pearch-ai/pearch"
	"github.com/Pearch-ai/pearch/config"
	"github.com/Pearch-ai/pearch/internal/redact"
	"github.com/Pearch-ai/pearch/internal/server"
	"github.com/Pearch-ai/pearch/internal/tracker"
)

func newRunCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run every search in a batch file",
		Long: `Run the searches in a batch file one after another and print the
results as a JSON array, one entry per input item.

With continue_on_fail the batch always finishes and failed items carry an
"error" field. Without it the first failure stops the batch, the results so
far are still written, and the command exits non-zero.

--listen serves live progress while the batch runs:
  GET /api/tasks  snapshot of every task
  GET /api/sse    Server-Sent Events stream of task updates

Example:
  pearch run -c batch.yaml
  pearch run -c batch.yaml --output results.json --listen :8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBatch(cmd)
		},
	}

	cmd.Flags().StringP("config", "c", "", "path to batch file (required)")
	cmd.Flags().StringP("output", "o", "", "write results to this file instead of stdout")
	cmd.Flags().String("listen", "", "serve progress on this address, e.g. :8080")
	cmd.Flags().Bool("hold", false, "with --listen, keep serving after the batch until interrupted")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func (a *app) runBatch(cmd *cobra.Command) error {
	logger, err := a.logger(cmd)
	if err != nil {
		return err
	}

	configFile, _ := cmd.Flags().GetString("config")
	output, _ := cmd.Flags().GetString("output")
	listen, _ := cmd.Flags().GetString("listen")
	hold, _ := cmd.Flags().GetBool("hold")

	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	items, err := config.BuildItems(cfg)
	if err != nil {
		return fmt.Errorf("failed to build items: %w", err)
	}

	logger.Info("config loaded",
		"searches", len(cfg.Searches),
		"grids", len(cfg.Grids),
		"items", len(items),
		"operation", cfg.Operation,
	)

	ctx := cmd.Context()
	opts := append(config.BuildClientOptions(cfg), pearch.WithLogger(logger))
	batchOpts := config.BuildBatchOptions(cfg)

	var tr *tracker.MemoryTracker
	if listen != "" {
		tr = tracker.NewMemoryTracker()
		srv := server.NewServer(tr, listen, logger)
		if err := srv.Start(ctx); err != nil {
			return err
		}
		opts = append(opts, pearch.WithTransitionCallback(recordTransition(tr)))
	}

	client, err := pearch.New(a.credentials(config.BuildCredentials(cfg)), opts...)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	defer client.Close()

	if op := pearch.Operation(cfg.Operation); tr != nil && op != pearch.OperationSearch {
		// one-shot operations make no state transitions
		batchOpts = append(batchOpts, pearch.WithItemCallback(recordResult(tr, client, op)))
	}

	results, runErr := client.RunBatch(ctx, items, batchOpts...)
	if results == nil {
		results = []pearch.ResultItem{}
	}

	if err := writeJSON(cmd.OutOrStdout(), output, results); err != nil {
		return err
	}
	if runErr != nil {
		return fmt.Errorf("batch aborted: %s", redact.Error(runErr))
	}

	if listen != "" && hold {
		logger.Info("batch done, progress server still running; interrupt to exit")
		<-ctx.Done()
	}
	return nil
}

// recordTransition mirrors task state changes into tr.
func recordTransition(tr tracker.Tracker) func(pearch.Transition) {
	return func(t pearch.Transition) {
		rec := tracker.TaskRecord{
			Index:     t.Item,
			TaskID:    t.TaskID,
			Query:     t.Query,
			State:     t.To.String(),
			Status:    t.Status,
			Attempts:  t.Attempt,
			ElapsedMs: t.Elapsed.Milliseconds(),
			UpdatedAt: t.At,
		}
		if t.Err != nil {
			msg := redact.Error(t.Err)
			rec.Error = &msg
		}
		tr.Update(rec)
	}
}

// recordResult records the outcome of a submit or status item. A status
// item's state follows the status it reported, so a pending task stays
// "polling".
func recordResult(tr tracker.Tracker, c *pearch.Client, op pearch.Operation) func(pearch.ResultItem) {
	return func(r pearch.ResultItem) {
		rec := tracker.TaskRecord{
			Index:     r.PairedItem,
			TaskID:    pearch.DefaultTaskIDExtractor(r.JSON),
			Status:    pearch.DefaultStatusExtractor(r.JSON),
			Query:     pearch.JSONFieldExtractor("query")(r.JSON),
			State:     pearch.StateSucceeded.String(),
			UpdatedAt: time.Now(),
		}
		if r.Error != nil {
			msg := redact.Error(r.Error)
			rec.State = pearch.StateFailed.String()
			rec.Error = &msg
			tr.Update(rec)
			return
		}
		if op == pearch.OperationStatus {
			rec.Attempts = 1
			switch c.Classify(rec.Status) {
			case pearch.OutcomeFailed:
				rec.State = pearch.StateFailed.String()
			case pearch.OutcomePending:
				rec.State = pearch.StatePolling.String()
			}
		}
		tr.Update(rec)
	}
}
