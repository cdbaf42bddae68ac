package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Pearch-ai/pearch"
)

// BuildItems converts a parsed configuration into batch items.
//
// Searches come first in file order, followed by each grid's expansion.
// Every item's parameters are its own settings merged over Defaults.
func BuildItems(cfg *Config) ([]pearch.Item, error) {
	var items []pearch.Item

	for _, sc := range cfg.Searches {
		items = append(items, buildItem(cfg.Defaults.merge(sc)))
	}

	for _, gc := range cfg.Grids {
		gridItems, err := buildGridItems(cfg.Defaults, gc)
		if err != nil {
			return nil, err
		}
		items = append(items, gridItems...)
	}

	return items, nil
}

// BuildCredentials returns the credentials named by cfg.
func BuildCredentials(cfg *Config) pearch.StaticCredentials {
	return pearch.StaticCredentials{BaseURL: cfg.BaseURL, APIKey: cfg.APIKey}
}

// BuildClientOptions maps transport settings onto client options.
func BuildClientOptions(cfg *Config) []pearch.Option {
	var opts []pearch.Option
	if cfg.RequestTimeout != 0 {
		opts = append(opts, pearch.WithRequestTimeout(cfg.RequestTimeout.Duration()))
	}
	if cfg.RateLimitRPS > 0 {
		opts = append(opts, pearch.WithRateLimit(cfg.RateLimitRPS))
	}
	return opts
}

// BuildBatchOptions maps batch settings onto batch options.
func BuildBatchOptions(cfg *Config) []pearch.BatchOption {
	return []pearch.BatchOption{
		pearch.WithOperation(pearch.Operation(cfg.Operation)),
		pearch.WithContinueOnFail(cfg.ContinueOnFail),
	}
}

func buildItem(sc SearchConfig) pearch.Item {
	payload := make(pearch.Payload, len(sc.Fields)+2)
	for k, v := range sc.Fields {
		payload[k] = v
	}
	if sc.Query != "" {
		payload["query"] = sc.Query
	}
	if sc.TaskID != "" {
		payload["task_id"] = sc.TaskID
	}
	return pearch.Item{JSON: payload, Params: sc.params()}
}

func buildGridItems(defaults SearchConfig, gc GridConfig) ([]pearch.Item, error) {
	fields := []string{"grid", gc.Name}
	fields = append(fields, mapToKeyValuePairs(gc.Fields)...)

	items, err := pearch.NewQueryGrid(
		pearch.WithQueryTemplate(gc.QueryTemplate),
		pearch.WithDimensions(gc.Dimensions),
		pearch.WithGridParams(defaults.merge(gc.Params).params()),
		pearch.WithGridFields(fields...),
	)
	if err != nil {
		return nil, fmt.Errorf("grid (%s): %w", gc.Name, err)
	}
	return items, nil
}

// params flattens sc into SDK parameters; unset fields become zero values,
// which the SDK treats as defaults.
func (sc SearchConfig) params() pearch.Params {
	return pearch.Params{
		Query:            sc.Query,
		Limit:            deref(sc.Limit),
		Type:             strings.TrimSpace(sc.Type),
		Insights:         deref(sc.Insights),
		HighFreshness:    deref(sc.HighFreshness),
		ShowEmails:       deref(sc.ShowEmails),
		ShowPhoneNumbers: deref(sc.ShowPhoneNumbers),
		ProfileScoring:   deref(sc.ProfileScoring),
		MaxWaitTime:      deref(sc.MaxWaitTime),
		PollingInterval:  deref(sc.PollingInterval),
		TaskID:           sc.TaskID,
	}
}

// mapToKeyValuePairs converts a map to a key-sorted slice of key-value pairs.
func mapToKeyValuePairs(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(m)*2)
	for _, k := range keys {
		pairs = append(pairs, k, m[k])
	}
	return pairs
}
