package pearch

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Payload is a decoded JSON object as returned by the search service.
//
// Numbers decoded by the default transport are [json.Number] values.
type Payload map[string]any

// Clone returns a deep copy of p. Nested objects and arrays are copied;
// scalar values are shared.
func (p Payload) Clone() Payload {
	if p == nil {
		return nil
	}
	return cloneValue(map[string]any(p)).(map[string]any)
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Payload:
		return Payload(cloneValue(map[string]any(t)).(map[string]any))
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = cloneValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = cloneValue(val)
		}
		return out
	default:
		return v
	}
}

// FieldExtractor pulls a string value out of a response payload.
//
// An empty return value means "not found". Extractors must be pure; they
// are called once per response and may be shared across tasks.
type FieldExtractor func(p Payload) string

// JSONFieldExtractor returns a [FieldExtractor] that reads a field using dot
// notation to navigate nested objects.
//
// For example, "data.task.id" navigates to {"data": {"task": {"id": "abc"}}}.
// Numbers and booleans are converted to their JSON text; objects, arrays
// and null are treated as missing.
func JSONFieldExtractor(path string) FieldExtractor {
	parts := strings.Split(path, ".")

	return func(p Payload) string {
		return extractJSONPath(map[string]any(p), parts)
	}
}

// extractJSONPath walks a JSON structure using dot notation parts.
func extractJSONPath(data any, parts []string) string {
	current := data

	for _, part := range parts {
		var obj map[string]any
		switch t := current.(type) {
		case map[string]any:
			obj = t
		case Payload:
			obj = t
		default:
			return ""
		}
		var ok bool
		current, ok = obj[part]
		if !ok {
			return ""
		}
	}

	switch v := current.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// FirstMatch returns a [FieldExtractor] that tries extractors in order and
// returns the first non-empty value after trimming whitespace.
//
// Example:
//
//	// prefer a nested id, fall back to the top-level one
//	extractor := pearch.FirstMatch(
//	    pearch.JSONFieldExtractor("data.task_id"),
//	    pearch.JSONFieldExtractor("task_id"),
//	)
func FirstMatch(extractors ...FieldExtractor) FieldExtractor {
	return func(p Payload) string {
		for _, extractor := range extractors {
			if v := strings.TrimSpace(extractor(p)); v != "" {
				return v
			}
		}
		return ""
	}
}

// DefaultTaskIDExtractor reads the task id from a submit response: the
// "task_id" field, or "id" when task_id is absent or empty.
var DefaultTaskIDExtractor = FirstMatch(
	JSONFieldExtractor("task_id"),
	JSONFieldExtractor("id"),
)

// DefaultStatusExtractor reads the "status" field of a status response.
var DefaultStatusExtractor = JSONFieldExtractor("status")
