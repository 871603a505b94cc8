package tools

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestRegistryRegisterAndGet(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(NewDependencyAudit()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a, ok := r.Get(ToolDependencyAudit)
	if !ok {
		t.Fatal("expected adapter to be registered")
	}
	if a.ID() != ToolDependencyAudit {
		t.Errorf("expected %s, got %s", ToolDependencyAudit, a.ID())
	}
}

func TestRegistryDuplicate(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(NewLicenseScan()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.Register(NewLicenseScan()); err == nil {
		t.Fatal("expected error registering duplicate adapter")
	}
}

func TestDefaultRegistryHasAllTools(t *testing.T) {
	r := NewDefaultRegistry()
	want := []string{
		ToolDependencyAudit,
		ToolLayeringCheck,
		ToolLicenseScan,
		ToolModuleCycleCheck,
		ToolOutdatedScan,
	}
	got := r.IDs()
	if len(got) != len(want) {
		t.Fatalf("expected %d adapters, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("IDs()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestApplicablePreconditions(t *testing.T) {
	dir := t.TempDir()

	audit := NewDependencyAudit()
	if err := audit.Applicable(dir); !errors.Is(err, ErrNotApplicable) {
		t.Errorf("expected ErrNotApplicable without lockfile, got %v", err)
	}

	writeFile(t, dir, "package-lock.json", "{}")
	if err := audit.Applicable(dir); err != nil {
		t.Errorf("expected applicable with lockfile, got %v", err)
	}

	layering := NewLayeringCheck()
	if err := layering.Applicable(dir); !errors.Is(err, ErrNotApplicable) {
		t.Errorf("expected ErrNotApplicable without ruleset, got %v", err)
	}
	writeFile(t, dir, ".dependency-cruiser.json", "{}")
	if err := layering.Applicable(dir); err != nil {
		t.Errorf("expected applicable with ruleset, got %v", err)
	}

	licenses := NewLicenseScan()
	writeFile(t, dir, "package.json", "{}")
	if err := licenses.Applicable(dir); !errors.Is(err, ErrNotApplicable) {
		t.Errorf("expected ErrNotApplicable without node_modules, got %v", err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "node_modules"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := licenses.Applicable(dir); err != nil {
		t.Errorf("expected applicable with node_modules, got %v", err)
	}

	outdated := NewOutdatedScan()
	if err := outdated.Applicable(dir); err != nil {
		t.Errorf("expected applicable with package.json, got %v", err)
	}

	cycles := NewModuleCycleCheck()
	if err := cycles.Applicable(dir); err != nil {
		t.Errorf("expected applicable with package.json, got %v", err)
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}
