package tools

import (
	"strings"
	"testing"
)

func schemaFixture() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":    map[string]any{"type": "string"},
			"active":  map[string]any{"type": "boolean"},
			"count":   map[string]any{"type": "integer"},
			"ratio":   map[string]any{"type": "number"},
			"tags":    map[string]any{"type": "array"},
			"options": map[string]any{"type": "object"},
		},
		"required": []string{"name"},
	}
}

func TestValidateParamsAccepts(t *testing.T) {
	params := map[string]any{
		"name":    "x",
		"active":  true,
		"count":   float64(5),
		"ratio":   1.5,
		"tags":    []any{"a"},
		"options": map[string]any{"k": "v"},
	}
	if err := ValidateParams(schemaFixture(), params); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateParamsMissingRequired(t *testing.T) {
	err := ValidateParams(schemaFixture(), map[string]any{"active": true})
	if err == nil || !strings.Contains(err.Error(), "name") {
		t.Fatalf("err = %v, want missing name", err)
	}
}

func TestValidateParamsTypeMismatch(t *testing.T) {
	cases := []map[string]any{
		{"name": 3},
		{"name": "ok", "active": "yes"},
		{"name": "ok", "count": 1.5},
		{"name": "ok", "tags": "not-a-list"},
	}
	for i, params := range cases {
		if err := ValidateParams(schemaFixture(), params); err == nil {
			t.Errorf("case %d: expected type error for %v", i, params)
		}
	}
}

func TestValidateParamsIntegerAcceptsWholeFloat(t *testing.T) {
	params := map[string]any{"name": "ok", "count": float64(7)}
	if err := ValidateParams(schemaFixture(), params); err != nil {
		t.Fatalf("whole float rejected: %v", err)
	}
}

func TestValidateParamsUnknownKeysIgnored(t *testing.T) {
	params := map[string]any{"name": "ok", "extra": "anything"}
	if err := ValidateParams(schemaFixture(), params); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
