package pearch

import (
	"errors"
	"fmt"
)

// gridConfig holds configuration during query grid construction.
type gridConfig struct {
	queryTemplate string
	dimensions    map[string][]string
	staticFields  map[string]string
	params        Params
}

// GridOption configures query grid generation.
// GridOption implements the functional options pattern for [NewQueryGrid].
type GridOption func(*gridConfig) error

// WithQueryTemplate sets the query template for item generation.
//
// Example:
//
//	WithQueryTemplate("{{.seniority}} {{.role}} in {{.city}}")
//
// Returns an error if the template string is empty.
func WithQueryTemplate(tmpl string) GridOption {
	return func(cfg *gridConfig) error {
		if tmpl == "" {
			return errors.New("query template required")
		}
		cfg.queryTemplate = tmpl
		return nil
	}
}

// WithDimensions sets the dimension values for cartesian product expansion.
// Each key in the map becomes a template variable.
//
// Returns an error if the map is empty, any dimension has no values,
// or any value is an empty string.
func WithDimensions(dims map[string][]string) GridOption {
	return func(cfg *gridConfig) error {
		if len(dims) == 0 {
			return errors.New("at least one dimension required")
		}
		for k, vals := range dims {
			if len(vals) == 0 {
				return fmt.Errorf("dimension '%s' has no values", k)
			}
			for i, v := range vals {
				if v == "" {
					return fmt.Errorf("dimension '%s' contains empty value at index %d", k, i)
				}
			}
		}
		cfg.dimensions = dims
		return nil
	}
}

// WithGridParams sets the search parameters shared by every generated
// item. The Query field is ignored; it comes from the template.
func WithGridParams(p Params) GridOption {
	return func(cfg *gridConfig) error {
		cfg.params = p
		return nil
	}
}

// WithGridFields adds static fields to every generated item's input
// payload. On collision, static fields take precedence over dimension
// values.
//
// Accepts variadic key-value pairs. The number of arguments must be even.
//
// Example:
//
//	WithGridFields("campaign", "q3-hiring")
func WithGridFields(keyValues ...string) GridOption {
	return func(cfg *gridConfig) error {
		if len(keyValues)%2 != 0 {
			return errors.New("WithGridFields requires an even number of arguments (key-value pairs)")
		}
		if cfg.staticFields == nil {
			cfg.staticFields = make(map[string]string)
		}
		for i := 0; i < len(keyValues); i += 2 {
			if keyValues[i] == "query" {
				return errors.New("field 'query' is reserved")
			}
			cfg.staticFields[keyValues[i]] = keyValues[i+1]
		}
		return nil
	}
}
