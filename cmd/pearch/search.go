package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Pearch-ai/pearch"
)

// addSearchFlags registers the per-search parameters on fs.
func addSearchFlags(fs *pflag.FlagSet, withPolling bool) {
	fs.StringP("query", "q", "", "natural-language search query (required)")
	fs.Int("limit", pearch.DefaultLimit, "maximum number of results")
	fs.String("type", "", "search type: fast or pro")
	fs.Bool("insights", false, "include AI-generated insights")
	fs.Bool("high-freshness", false, "prefer recently updated profiles")
	fs.Bool("show-emails", false, "include email addresses")
	fs.Bool("show-phone-numbers", false, "include phone numbers")
	fs.Bool("profile-scoring", false, "score profiles against the query")
	if withPolling {
		fs.Int("max-wait-time", pearch.DefaultMaxWaitSeconds, "seconds to wait for completion (10-3600)")
		fs.Int("polling-interval", pearch.DefaultIntervalSeconds, "seconds between status checks (2-60)")
	}
}

// paramsFromFlags reads the flags registered by addSearchFlags.
func paramsFromFlags(fs *pflag.FlagSet) pearch.Params {
	var p pearch.Params
	p.Query, _ = fs.GetString("query")
	p.Limit, _ = fs.GetInt("limit")
	p.Type, _ = fs.GetString("type")
	p.Insights, _ = fs.GetBool("insights")
	p.HighFreshness, _ = fs.GetBool("high-freshness")
	p.ShowEmails, _ = fs.GetBool("show-emails")
	p.ShowPhoneNumbers, _ = fs.GetBool("show-phone-numbers")
	p.ProfileScoring, _ = fs.GetBool("profile-scoring")
	// absent on submit; zero keeps the defaults
	p.MaxWaitTime, _ = fs.GetInt("max-wait-time")
	p.PollingInterval, _ = fs.GetInt("polling-interval")
	return p
}

// newClient builds a client from flags and environment only.
func (a *app) newClient(cmd *cobra.Command) (*pearch.Client, error) {
	logger, err := a.logger(cmd)
	if err != nil {
		return nil, err
	}
	client, err := pearch.New(a.credentials(pearch.StaticCredentials{}), pearch.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}

func newSearchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Submit a search and wait for the result",
		Long: `Submit one search, poll its status until it completes, fails, or the
wait time runs out, and print the final response as JSON.

Example:
  pearch search -q "senior Go engineers in Berlin" --type pro --limit 20
  pearch search -q "data engineers" --max-wait-time 300 --polling-interval 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := paramsFromFlags(cmd.Flags())
			req, err := pearch.BuildRequest(p)
			if err != nil {
				return err
			}
			pollCfg, err := p.PollConfig()
			if err != nil {
				return err
			}

			client, err := a.newClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			resp, err := client.Search(cmd.Context(), req, pollCfg)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), "", resp)
		},
	}
	addSearchFlags(cmd.Flags(), true)
	return cmd
}

func newSubmitCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a search without waiting",
		Long: `Submit one search and print the raw submit response, which carries the
task id. Check on it later with "pearch status TASK_ID".

Example:
  pearch submit -q "staff SREs with Kubernetes experience"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := pearch.BuildRequest(paramsFromFlags(cmd.Flags()))
			if err != nil {
				return err
			}

			client, err := a.newClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			resp, err := client.Submit(cmd.Context(), req)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), "", resp)
		},
	}
	addSearchFlags(cmd.Flags(), false)
	return cmd
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status TASK_ID",
		Short: "Check the status of a search task once",
		Long: `Make a single status request for TASK_ID and print the raw response.

Example:
  pearch status 3f1c9a52-7d0e-4b7e-9a55-0c1f3c2d7e11`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.newClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			resp, err := client.Status(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), "", resp)
		},
	}
}
