package pearch

import (
	"strings"
	"testing"
)

// =============================================================================
// Cartesian product
// =============================================================================

func TestCartesianProduct_TwoDimensions(t *testing.T) {
	dims := map[string][]string{
		"x": {"a", "b"},
		"y": {"1", "2"},
	}

	result := cartesianProduct(dims)

	if len(result) != 4 {
		t.Fatalf("cartesianProduct() returned %d combinations, want 4", len(result))
	}

	expected := []map[string]string{
		{"x": "a", "y": "1"},
		{"x": "a", "y": "2"},
		{"x": "b", "y": "1"},
		{"x": "b", "y": "2"},
	}
	for i, want := range expected {
		if result[i]["x"] != want["x"] || result[i]["y"] != want["y"] {
			t.Errorf("combination[%d] = %v, want %v", i, result[i], want)
		}
	}
}

func TestCartesianProduct_ThreeDimensions(t *testing.T) {
	dims := map[string][]string{
		"a": {"1", "2"},
		"b": {"x", "y"},
		"c": {"p", "q"},
	}

	result := cartesianProduct(dims)

	if len(result) != 8 {
		t.Fatalf("cartesianProduct() returned %d combinations, want 8 (2x2x2)", len(result))
	}
	first := result[0]
	if first["a"] != "1" || first["b"] != "x" || first["c"] != "p" {
		t.Errorf("first combination = %v, want {a:1, b:x, c:p}", first)
	}
}

func TestCartesianProduct_EmptyInputs(t *testing.T) {
	if got := cartesianProduct(nil); got != nil {
		t.Errorf("cartesianProduct(nil) = %v, want nil", got)
	}
	if got := cartesianProduct(map[string][]string{"a": {"1"}, "b": {}}); got != nil {
		t.Errorf("cartesianProduct() with empty dimension = %v, want nil", got)
	}
}

// =============================================================================
// Options
// =============================================================================

func TestGridOptions_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		opt     GridOption
		wantErr string
	}{
		{"empty template", WithQueryTemplate(""), "query template required"},
		{"no dimensions", WithDimensions(nil), "at least one dimension required"},
		{"dimension without values", WithDimensions(map[string][]string{"city": {}}), "has no values"},
		{"empty value", WithDimensions(map[string][]string{"city": {"Berlin", ""}}), "empty value at index 1"},
		{"odd fields", WithGridFields("campaign"), "even number"},
		{"reserved field", WithGridFields("query", "x"), "reserved"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opt(&gridConfig{})
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

// =============================================================================
// NewQueryGrid
// =============================================================================

func TestNewQueryGrid_Basic(t *testing.T) {
	items, err := NewQueryGrid(
		WithQueryTemplate("{{.role}} engineers in {{.city}}"),
		WithDimensions(map[string][]string{
			"role": {"backend", "platform"},
			"city": {"Berlin", "Lisbon"},
		}),
		WithGridParams(Params{Query: "ignored", Limit: 20, Type: "pro", Insights: true}),
	)
	if err != nil {
		t.Fatalf("NewQueryGrid() error = %v", err)
	}

	wantQueries := []string{
		"backend engineers in Berlin",
		"platform engineers in Berlin",
		"backend engineers in Lisbon",
		"platform engineers in Lisbon",
	}
	if len(items) != len(wantQueries) {
		t.Fatalf("len(items) = %d, want %d", len(items), len(wantQueries))
	}
	for i, want := range wantQueries {
		if items[i].Params.Query != want {
			t.Errorf("items[%d].Params.Query = %q, want %q", i, items[i].Params.Query, want)
		}
		if items[i].JSON["query"] != want {
			t.Errorf("items[%d].JSON[query] = %v, want %q", i, items[i].JSON["query"], want)
		}
		if items[i].Params.Limit != 20 || items[i].Params.Type != "pro" || !items[i].Params.Insights {
			t.Errorf("items[%d].Params = %+v, want shared params", i, items[i].Params)
		}
	}

	if items[0].JSON["city"] != "Berlin" || items[0].JSON["role"] != "backend" {
		t.Errorf("items[0].JSON = %v, want dimension values", items[0].JSON)
	}
}

func TestNewQueryGrid_StaticFieldsOverrideDimensions(t *testing.T) {
	items, err := NewQueryGrid(
		WithQueryTemplate("{{.city}}"),
		WithDimensions(map[string][]string{"city": {"Paris"}}),
		WithGridFields("city", "override", "campaign", "q3"),
	)
	if err != nil {
		t.Fatalf("NewQueryGrid() error = %v", err)
	}
	if items[0].JSON["city"] != "override" {
		t.Errorf("JSON[city] = %v, want override", items[0].JSON["city"])
	}
	if items[0].JSON["campaign"] != "q3" {
		t.Errorf("JSON[campaign] = %v, want q3", items[0].JSON["campaign"])
	}
	// the template still sees the dimension value
	if items[0].Params.Query != "Paris" {
		t.Errorf("Query = %q, want Paris", items[0].Params.Query)
	}
}

func TestNewQueryGrid_ItemsAreIndependent(t *testing.T) {
	items, err := NewQueryGrid(
		WithQueryTemplate("{{.x}}"),
		WithDimensions(map[string][]string{"x": {"a", "b"}}),
	)
	if err != nil {
		t.Fatalf("NewQueryGrid() error = %v", err)
	}
	items[0].JSON["x"] = "mutated"
	if items[1].JSON["x"] != "b" {
		t.Errorf("items share payload state: %v", items[1].JSON)
	}
}

func TestNewQueryGrid_Errors(t *testing.T) {
	tests := []struct {
		name    string
		opts    []GridOption
		wantErr string
	}{
		{
			name:    "missing template",
			opts:    []GridOption{WithDimensions(map[string][]string{"x": {"a"}})},
			wantErr: "query template required",
		},
		{
			name:    "missing dimensions",
			opts:    []GridOption{WithQueryTemplate("{{.x}}")},
			wantErr: "at least one dimension required",
		},
		{
			name: "invalid template syntax",
			opts: []GridOption{
				WithQueryTemplate("{{.x"),
				WithDimensions(map[string][]string{"x": {"a"}}),
			},
			wantErr: "invalid query template",
		},
		{
			name: "missing key",
			opts: []GridOption{
				WithQueryTemplate("{{.nope}}"),
				WithDimensions(map[string][]string{"x": {"a"}}),
			},
			wantErr: "template execution failed",
		},
		{
			name: "renders empty",
			opts: []GridOption{
				WithQueryTemplate("{{if eq .x \"skip\"}} {{else}}{{.x}}{{end}}"),
				WithDimensions(map[string][]string{"x": {"skip"}}),
			},
			wantErr: "query for (x=skip) is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewQueryGrid(tt.opts...)
			if err == nil {
				t.Fatal("NewQueryGrid() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("NewQueryGrid() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestNewQueryGrid_BuildsValidRequests(t *testing.T) {
	items, err := NewQueryGrid(
		WithQueryTemplate("{{.seniority}} {{.role}}"),
		WithDimensions(map[string][]string{
			"seniority": {"senior", "staff"},
			"role":      {"SRE"},
		}),
	)
	if err != nil {
		t.Fatalf("NewQueryGrid() error = %v", err)
	}
	for i, it := range items {
		if _, err := BuildRequest(it.Params); err != nil {
			t.Errorf("BuildRequest(items[%d]) error = %v", i, err)
		}
	}
}
