package pearch

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/template"
)

// NewQueryGrid creates batch items from a query template and dimensions
// using cartesian product expansion.
//
// The template uses Go's text/template syntax with dimension keys as
// variables. Missing template keys cause an error (fail-fast). Each item
// carries the grid's base [Params] with the rendered query, and an input
// payload holding the dimension values, any static fields from
// [WithGridFields], and the rendered query under "query".
//
// Items are ordered by the sorted dimension keys, rightmost key varying
// fastest.
//
// Example:
//
//	items, err := pearch.NewQueryGrid(
//	    pearch.WithQueryTemplate("{{.role}} engineers in {{.city}}"),
//	    pearch.WithDimensions(map[string][]string{
//	        "role": {"backend", "platform"},
//	        "city": {"Berlin", "Lisbon"},
//	    }),
//	    pearch.WithGridParams(pearch.Params{Limit: 20, Type: "pro"}),
//	)
//	// Returns 4 items, usable with client.RunBatch(ctx, items)
func NewQueryGrid(opts ...GridOption) ([]Item, error) {
	cfg := &gridConfig{
		staticFields: make(map[string]string),
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.queryTemplate == "" {
		return nil, errors.New("query template required")
	}
	if len(cfg.dimensions) == 0 {
		return nil, errors.New("at least one dimension required")
	}

	tmpl, err := template.New("query").Option("missingkey=error").Parse(cfg.queryTemplate)
	if err != nil {
		return nil, fmt.Errorf("invalid query template: %w", err)
	}

	combinations := cartesianProduct(cfg.dimensions)
	if len(combinations) == 0 {
		return nil, nil
	}

	items := make([]Item, 0, len(combinations))
	for _, combo := range combinations {
		query, err := executeTemplate(tmpl, combo)
		if err != nil {
			return nil, fmt.Errorf("template execution failed: %w", err)
		}
		if strings.TrimSpace(query) == "" {
			return nil, fmt.Errorf("query for (%s) is empty", formatCombo(combo))
		}

		params := cfg.params
		params.Query = query

		input := make(Payload, len(combo)+len(cfg.staticFields)+1)
		for k, v := range mergeMaps(combo, cfg.staticFields) {
			input[k] = v
		}
		input["query"] = query

		items = append(items, Item{JSON: input, Params: params})
	}

	return items, nil
}

// cartesianProduct generates all combinations of dimension values.
// Keys are sorted alphabetically for deterministic output.
// Values maintain their original slice order.
//
// Example:
//
//	Input:  {"x": ["a","b"], "y": ["1","2"]}
//	Output: [{"x":"a","y":"1"}, {"x":"a","y":"2"}, {"x":"b","y":"1"}, {"x":"b","y":"2"}]
func cartesianProduct(dims map[string][]string) []map[string]string {
	if len(dims) == 0 {
		return nil
	}

	keys := sortedKeys(dims)
	for _, k := range keys {
		if len(dims[k]) == 0 {
			return nil
		}
	}

	total := 1
	for _, k := range keys {
		total *= len(dims[k])
	}
	result := make([]map[string]string, 0, total)

	indices := make([]int, len(keys))
	for {
		combo := make(map[string]string, len(keys))
		for i, k := range keys {
			combo[k] = dims[k][indices[i]]
		}
		result = append(result, combo)

		// increment indices (rightmost first)
		for i := len(keys) - 1; i >= 0; i-- {
			indices[i]++
			if indices[i] < len(dims[keys[i]]) {
				break
			}
			indices[i] = 0
			if i == 0 {
				return result
			}
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// executeTemplate renders the template with the given data.
func executeTemplate(tmpl *template.Template, data map[string]string) (string, error) {
	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// formatCombo renders a combination as "k1=v1, k2=v2" in key order.
func formatCombo(combo map[string]string) string {
	keys := sortedKeys(combo)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + combo[k]
	}
	return strings.Join(parts, ", ")
}

// mergeMaps merges multiple maps, with later maps taking precedence.
func mergeMaps(maps ...map[string]string) map[string]string {
	result := make(map[string]string)
	for _, m := range maps {
		for k, v := range m {
			result[k] = v
		}
	}
	return result
}
