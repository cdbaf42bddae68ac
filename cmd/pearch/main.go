// Package main is the entry point for the pearch CLI.
//
// Usage:
//
//	pearch run -c batch.yaml                  # Run a batch file
//	pearch run -c batch.yaml --listen :8080   # ...and serve progress over HTTP
//	pearch search --query "go developers"     # One search, waited to completion
//	pearch submit --query "go developers"     # Submit only, print the task
//	pearch status TASK_ID                     # One status check
//	pearch validate -c batch.yaml             # Validate a batch file
//	pearch version                            # Show version info
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Pearch-ai/pearch"
)

// Version information, set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// app carries state shared by all subcommands.
type app struct {
	v *viper.Viper
}

// newRootCmd builds the command tree. Flags and environment are resolved
// through one viper instance: --base-url, --api-key, and --log-level fall
// back to PEARCH_BASE_URL, PEARCH_API_KEY, and PEARCH_LOG_LEVEL.
func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("PEARCH")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:   "pearch",
		Short: "Run asynchronous Pearch searches from the command line",
		Long: `pearch submits search tasks to the Pearch API, polls them until they
complete, fail, or time out, and prints the results as JSON.

Quick start:
  export PEARCH_API_KEY=...
  pearch search --query "senior Go engineers in Berlin" --type pro

Batch files run many searches in sequence:
  pearch run -c batch.yaml --output results.json`,
		SilenceUsage: true,
	}

	root.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	root.PersistentFlags().String("base-url", "", "API base URL (env PEARCH_BASE_URL)")
	root.PersistentFlags().String("api-key", "", "API key (env PEARCH_API_KEY)")
	_ = v.BindPFlags(root.PersistentFlags())

	a := &app{v: v}
	root.AddCommand(
		newRunCmd(a),
		newSearchCmd(a),
		newSubmitCmd(a),
		newStatusCmd(a),
		newValidateCmd(),
		newVersionCmd(),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		// cobra already printed the error
		os.Exit(1)
	}
}

// logger builds a JSON logger on the command's stderr.
func (a *app) logger(cmd *cobra.Command) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(a.v.GetString("log-level"))); err != nil {
		return nil, fmt.Errorf("invalid --log-level: %w", err)
	}
	return slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: level,
	})), nil
}

// credentials layers flag and environment values over base. Only non-empty
// values override.
func (a *app) credentials(base pearch.StaticCredentials) pearch.StaticCredentials {
	if u := a.v.GetString("base-url"); u != "" {
		base.BaseURL = u
	}
	if k := a.v.GetString("api-key"); k != "" {
		base.APIKey = k
	}
	if base.BaseURL == "" {
		base.BaseURL = pearch.DefaultBaseURL
	}
	return base
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the version, commit hash, and build date of this pearch binary.`,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "pearch %s\n", version)
			fmt.Fprintf(out, "  commit: %s\n", commit)
			fmt.Fprintf(out, "  built:  %s\n", date)
		},
	}
}
