// Package config parses YAML batch files for the pearch CLI.
//
// A batch file describes credentials, shared search defaults, and the
// searches to run, either listed one by one or expanded from query grids.
//
// Example configuration:
//
//	base_url: ${PEARCH_BASE_URL:-https://api.pearch.ai}
//	api_key: ${PEARCH_API_KEY}
//	continue_on_fail: true
//	request_timeout: 30s
//
//	defaults:
//	  limit: 20
//	  type: pro
//	  max_wait_time: 300
//	  polling_interval: 10
//
//	searches:
//	  - query: senior Go engineers in Berlin
//	    insights: true
//	  - query: staff SREs with Kubernetes experience
//	    limit: 5
//
//	grids:
//	  - name: regional
//	    query_template: "{{.role}} in {{.city}}"
//	    dimensions:
//	      role: [backend engineers, data engineers]
//	      city: [Lisbon, Warsaw]
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"text/template"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Pearch-ai/pearch"
)

// Config is the root of a batch file.
type Config struct {
	// BaseURL defaults to pearch.DefaultBaseURL. Supports ${VAR} expansion.
	BaseURL string `yaml:"base_url"`

	// APIKey supports ${VAR} and ${VAR:-default} expansion. It may be left
	// empty when the key is supplied another way (flag or environment).
	APIKey string `yaml:"api_key"`

	// Operation is search (default), submit, or status.
	Operation string `yaml:"operation"`

	// ContinueOnFail records failed items and keeps going. It also defers
	// per-search checks (query, task_id, limit, type, poll range) from load
	// time to the item itself.
	ContinueOnFail bool `yaml:"continue_on_fail"`

	// RateLimitRPS caps outgoing requests per second. Zero disables.
	RateLimitRPS float64 `yaml:"rate_limit_rps"`

	// RequestTimeout bounds each HTTP call. Zero keeps the client default.
	RequestTimeout Duration `yaml:"request_timeout"`

	// Defaults are merged under every search and grid.
	Defaults SearchConfig `yaml:"defaults"`

	Searches []SearchConfig `yaml:"searches"`

	Grids []GridConfig `yaml:"grids"`
}

// SearchConfig holds search parameters. Pointer fields distinguish "unset"
// from an explicit zero so entries can override defaults with false.
type SearchConfig struct {
	Query            string `yaml:"query"`
	Limit            *int   `yaml:"limit"`
	Type             string `yaml:"type"`
	Insights         *bool  `yaml:"insights"`
	HighFreshness    *bool  `yaml:"high_freshness"`
	ShowEmails       *bool  `yaml:"show_emails"`
	ShowPhoneNumbers *bool  `yaml:"show_phone_numbers"`
	ProfileScoring   *bool  `yaml:"profile_scoring"`

	// MaxWaitTime is in seconds, 10 to 3600.
	MaxWaitTime *int `yaml:"max_wait_time"`
	// PollingInterval is in seconds, 2 to 60.
	PollingInterval *int `yaml:"polling_interval"`

	// TaskID is used by the status operation.
	TaskID string `yaml:"task_id"`

	// Fields are copied into the item's input JSON and echoed in results.
	Fields map[string]any `yaml:"fields"`
}

// GridConfig expands a query template over the cartesian product of its
// dimensions.
type GridConfig struct {
	// Name is recorded as the "grid" field of every generated item.
	Name string `yaml:"name"`

	// QueryTemplate is a text/template; dimension keys are its variables.
	QueryTemplate string `yaml:"query_template"`

	Dimensions map[string][]string `yaml:"dimensions"`

	// Params override Defaults for this grid. Params.Query is ignored.
	Params SearchConfig `yaml:"params"`

	// Fields are added to every generated item's input JSON.
	Fields map[string]string `yaml:"fields"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default}.
// Group 1: variable name
// Group 2: the ":-default" part, present when a default was given
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a batch file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses batch file data.
//
// Environment variables are expanded in base_url, api_key, queries, and
// query templates. BaseURL defaults to pearch.DefaultBaseURL and Operation
// to "search".
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) expandAndValidate() error {
	var err error

	if c.BaseURL, err = expandEnvVars(c.BaseURL); err != nil {
		return fmt.Errorf("base_url: %w", err)
	}
	if strings.TrimSpace(c.BaseURL) == "" {
		c.BaseURL = pearch.DefaultBaseURL
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("base_url must start with http:// or https://, got %q", c.BaseURL)
	}

	if c.APIKey, err = expandEnvVars(c.APIKey); err != nil {
		return fmt.Errorf("api_key: %w", err)
	}

	op, err := pearch.ParseOperation(c.Operation)
	if err != nil {
		return err
	}
	c.Operation = string(op)

	if c.RateLimitRPS < 0 {
		return fmt.Errorf("rate_limit_rps cannot be negative, got %v", c.RateLimitRPS)
	}
	if c.RequestTimeout != 0 && c.RequestTimeout.Duration() < time.Second {
		return fmt.Errorf("request_timeout must be at least 1s if specified, got %s", c.RequestTimeout.Duration())
	}

	if err := c.Defaults.validate("defaults"); err != nil {
		return err
	}

	for i := range c.Searches {
		s := &c.Searches[i]
		context := fmt.Sprintf("searches[%d]", i)

		if s.Query, err = expandEnvVars(s.Query); err != nil {
			return fmt.Errorf("%s: query: %w", context, err)
		}
		if c.ContinueOnFail {
			// bad entries fail as their own items when the batch runs
			continue
		}
		if err := s.validate(context); err != nil {
			return err
		}

		merged := c.Defaults.merge(*s)
		switch op {
		case pearch.OperationStatus:
			if strings.TrimSpace(merged.TaskID) == "" {
				return fmt.Errorf("%s: task_id is required for the status operation", context)
			}
		default:
			if strings.TrimSpace(merged.Query) == "" {
				return fmt.Errorf("%s: query is required", context)
			}
		}
	}

	for i := range c.Grids {
		g := &c.Grids[i]

		if g.Name == "" {
			return fmt.Errorf("grids[%d]: name is required", i)
		}
		context := fmt.Sprintf("grids[%d] (%s)", i, g.Name)

		if op == pearch.OperationStatus {
			return fmt.Errorf("%s: grids cannot be used with the status operation", context)
		}

		if g.QueryTemplate == "" {
			return fmt.Errorf("%s: query_template is required", context)
		}
		if g.QueryTemplate, err = expandEnvVars(g.QueryTemplate); err != nil {
			return fmt.Errorf("%s: query_template: %w", context, err)
		}
		// fail fast before the SDK tries to render it
		if _, err := template.New("").Parse(g.QueryTemplate); err != nil {
			return fmt.Errorf("%s: invalid query_template: %w", context, err)
		}

		if len(g.Dimensions) == 0 {
			return fmt.Errorf("%s: at least one dimension is required", context)
		}
		for dimName, dimValues := range g.Dimensions {
			if len(dimValues) == 0 {
				return fmt.Errorf("%s: dimension %q has no values", context, dimName)
			}
			seen := make(map[string]struct{}, len(dimValues))
			for _, v := range dimValues {
				if _, exists := seen[v]; exists {
					return fmt.Errorf("%s: dimension %q has duplicate value %q", context, dimName, v)
				}
				seen[v] = struct{}{}
			}
		}

		if _, ok := g.Fields["query"]; ok {
			return fmt.Errorf("%s: field \"query\" is reserved", context)
		}

		if err := g.Params.validate(context + ": params"); err != nil {
			return err
		}
	}

	if len(c.Searches) == 0 && len(c.Grids) == 0 {
		return errors.New("at least one search or grid must be defined")
	}

	return nil
}

// validate checks the fields that are set. Required fields are checked by
// the caller after merging with defaults.
func (s SearchConfig) validate(context string) error {
	if s.Limit != nil && *s.Limit < 1 {
		return fmt.Errorf("%s: limit must be at least 1, got %d", context, *s.Limit)
	}

	switch strings.ToLower(strings.TrimSpace(s.Type)) {
	case "", string(pearch.SearchFast), string(pearch.SearchPro):
	default:
		return fmt.Errorf("%s: type must be fast or pro, got %q", context, s.Type)
	}

	if s.MaxWaitTime != nil || s.PollingInterval != nil {
		if _, err := pearch.NewPollConfig(deref(s.MaxWaitTime), deref(s.PollingInterval)); err != nil {
			return fmt.Errorf("%s: %w", context, err)
		}
	}

	return nil
}

// merge layers s over d. Fields maps are combined key by key with s winning.
func (d SearchConfig) merge(s SearchConfig) SearchConfig {
	out := d
	if s.Query != "" {
		out.Query = s.Query
	}
	if s.Limit != nil {
		out.Limit = s.Limit
	}
	if s.Type != "" {
		out.Type = s.Type
	}
	if s.Insights != nil {
		out.Insights = s.Insights
	}
	if s.HighFreshness != nil {
		out.HighFreshness = s.HighFreshness
	}
	if s.ShowEmails != nil {
		out.ShowEmails = s.ShowEmails
	}
	if s.ShowPhoneNumbers != nil {
		out.ShowPhoneNumbers = s.ShowPhoneNumbers
	}
	if s.ProfileScoring != nil {
		out.ProfileScoring = s.ProfileScoring
	}
	if s.MaxWaitTime != nil {
		out.MaxWaitTime = s.MaxWaitTime
	}
	if s.PollingInterval != nil {
		out.PollingInterval = s.PollingInterval
	}
	if s.TaskID != "" {
		out.TaskID = s.TaskID
	}
	if len(d.Fields) > 0 || len(s.Fields) > 0 {
		out.Fields = make(map[string]any, len(d.Fields)+len(s.Fields))
		for k, v := range d.Fields {
			out.Fields[k] = v
		}
		for k, v := range s.Fields {
			out.Fields[k] = v
		}
	}
	return out
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
