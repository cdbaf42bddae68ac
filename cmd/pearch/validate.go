package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Pearch-ai/pearch/config"
)

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a batch file",
		Long: `Validate a batch file without calling the API.

This command parses the YAML, expands environment variables, validates all
fields, and expands grids. It's useful for CI pipelines or pre-run checks.

Exit codes:
  0 - Batch file is valid
  1 - Batch file is invalid (error details printed to stderr)

Example:
  pearch validate -c batch.yaml`,
		RunE: runValidate,
	}

	cmd.Flags().StringP("config", "c", "", "path to batch file (required)")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	items, err := config.BuildItems(cfg)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	direct := len(cfg.Searches)
	fromGrids := len(items) - direct

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config is valid!\n")
	fmt.Fprintf(out, "  Base URL:         %s\n", cfg.BaseURL)
	fmt.Fprintf(out, "  Operation:        %s\n", cfg.Operation)
	fmt.Fprintf(out, "  Continue on fail: %t\n", cfg.ContinueOnFail)
	fmt.Fprintf(out, "  Items:            %d direct + %d from grids = %d total\n",
		direct, fromGrids, len(items))

	return nil
}
