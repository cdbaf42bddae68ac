package pearch

import (
	"encoding/json"
	"testing"
)

func TestJSONFieldExtractor(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		payload Payload
		want    string
	}{
		{"simple string", "status", Payload{"status": "pending"}, "pending"},
		{"nested", "data.task.id", Payload{"data": map[string]any{"task": map[string]any{"id": "abc"}}}, "abc"},
		{"nested payload", "data.id", Payload{"data": Payload{"id": "p"}}, "p"},
		{"json number", "task_id", Payload{"task_id": json.Number("12345678901234567890")}, "12345678901234567890"},
		{"float", "task_id", Payload{"task_id": float64(42)}, "42"},
		{"int", "task_id", Payload{"task_id": 7}, "7"},
		{"bool", "done", Payload{"done": true}, "true"},

		// missing or unusable
		{"missing field", "status", Payload{"state": "x"}, ""},
		{"null", "status", Payload{"status": nil}, ""},
		{"object value", "status", Payload{"status": map[string]any{"a": 1}}, ""},
		{"array value", "status", Payload{"status": []any{"a"}}, ""},
		{"path through scalar", "status.value", Payload{"status": "x"}, ""},
		{"nil payload", "status", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := JSONFieldExtractor(tt.path)(tt.payload)
			if got != tt.want {
				t.Errorf("JSONFieldExtractor(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestDefaultTaskIDExtractor(t *testing.T) {
	tests := []struct {
		name    string
		payload Payload
		want    string
	}{
		{"task_id", Payload{"task_id": "t-1"}, "t-1"},
		{"id fallback", Payload{"id": "i-1"}, "i-1"},
		{"task_id wins", Payload{"task_id": "t-1", "id": "i-1"}, "t-1"},
		{"empty task_id falls back", Payload{"task_id": "  ", "id": "i-1"}, "i-1"},
		{"numeric id", Payload{"id": json.Number("99")}, "99"},
		{"neither", Payload{"status": "submitted"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DefaultTaskIDExtractor(tt.payload); got != tt.want {
				t.Errorf("DefaultTaskIDExtractor() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFirstMatch_Empty(t *testing.T) {
	if got := FirstMatch()(Payload{"status": "x"}); got != "" {
		t.Errorf("FirstMatch() with no extractors = %q, want empty", got)
	}
}

func TestPayloadClone_IsDeep(t *testing.T) {
	orig := Payload{
		"query":  "x",
		"nested": map[string]any{"k": "v"},
		"list":   []any{map[string]any{"a": "b"}},
	}
	cp := orig.Clone()

	cp["query"] = "changed"
	cp["nested"].(map[string]any)["k"] = "changed"
	cp["list"].([]any)[0].(map[string]any)["a"] = "changed"

	if orig["query"] != "x" {
		t.Error("top-level value shared with clone")
	}
	if orig["nested"].(map[string]any)["k"] != "v" {
		t.Error("nested map shared with clone")
	}
	if orig["list"].([]any)[0].(map[string]any)["a"] != "b" {
		t.Error("nested slice shared with clone")
	}

	var nilPayload Payload
	if nilPayload.Clone() != nil {
		t.Error("Clone() of nil payload should be nil")
	}
}

func TestStatusSet_Classify(t *testing.T) {
	s := newStatusSet(DefaultSuccessStatuses, DefaultFailureStatuses)

	tests := []struct {
		status string
		want   Outcome
	}{
		{"completed", OutcomeSucceeded},
		{"done", OutcomeSucceeded},
		{" Completed ", OutcomeSucceeded},
		{"DONE", OutcomeSucceeded},
		{"failed", OutcomeFailed},
		{"error", OutcomeFailed},
		{"Error", OutcomeFailed},
		{"pending", OutcomePending},
		{"running", OutcomePending},
		{"complete", OutcomePending},
		{"", OutcomePending},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			if got := s.classify(tt.status); got != tt.want {
				t.Errorf("classify(%q) = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestState_Terminal(t *testing.T) {
	for _, s := range []State{StateSucceeded, StateFailed, StateTimedOut} {
		if !s.Terminal() {
			t.Errorf("%s.Terminal() = false, want true", s)
		}
	}
	for _, s := range []State{StateSubmitting, StatePolling} {
		if s.Terminal() {
			t.Errorf("%s.Terminal() = true, want false", s)
		}
	}
}
