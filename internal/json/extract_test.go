package json

import (
	"strings"
	"testing"
)

type auditProbe struct {
	Name  string `json:"name"`
	Total int    `json:"total"`
}

func TestPureObject(t *testing.T) {
	raw := `{"name": "audit", "total": 3}`
	result, err := Decode[auditProbe](raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Name != "audit" {
		t.Errorf("expected name 'audit', got '%s'", result.Name)
	}
	if result.Total != 3 {
		t.Errorf("expected total 3, got %d", result.Total)
	}
}

func TestObjectWithNpmNoise(t *testing.T) {
	raw := "npm WARN deprecated request@2.88.2\nnpm notice New minor version available\n" +
		`{"name": "audit", "total": 3}` + "\n"
	result, err := Decode[auditProbe](raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 3 {
		t.Errorf("expected total 3, got %d", result.Total)
	}
}

func TestArrayOutput(t *testing.T) {
	raw := "Processed 42 files\n" + `[["a.js","b.js","a.js"]]`
	result, err := Decode[[][]string](raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 1 || len(result[0]) != 3 {
		t.Errorf("unexpected shape: %v", result)
	}
}

func TestSurroundedObject(t *testing.T) {
	result, err := Decode[map[string]int](`prefix {"a": 1, "b": 2} suffix`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result["b"] != 2 {
		t.Errorf("expected b=2, got %d", result["b"])
	}
}

func TestNoJSON(t *testing.T) {
	_, err := Decode[auditProbe]("command not found: madge")
	if err == nil {
		t.Fatal("expected error for output with no JSON")
	}
}

func TestErrorPreviewTruncated(t *testing.T) {
	raw := strings.Repeat("x", 500)
	_, err := Decode[auditProbe](raw)
	if err == nil {
		t.Fatal("expected error")
	}
	if len(err.Error()) > 200 {
		t.Errorf("error message should truncate long output, got %d chars", len(err.Error()))
	}
}

func TestMismatchedType(t *testing.T) {
	_, err := Decode[auditProbe](`{"name": 12}`)
	if err == nil {
		t.Fatal("expected unmarshal error for mismatched type")
	}
}
