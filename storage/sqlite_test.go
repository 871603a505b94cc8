package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/richinex/toolvault/model"
)

func newTestStore(t *testing.T) *SqliteStore {
	t.Helper()
	store, err := NewSqliteInMemory()
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func chunk(id, repo, tool string, role model.AgentRole, executedAt time.Time) model.FindingChunk {
	return model.FindingChunk{
		ID:              id,
		RepositoryID:    repo,
		ToolID:          tool,
		AgentRole:       role,
		Content:         tool + ": 1 finding.",
		ImportanceScore: 10,
		FindingsCount:   1,
		ExecutedAt:      executedAt,
		IsLatest:        true,
		Embedding:       []float32{0.1, 0.2, 0.3},
	}
}

func TestReplaceAndQueryLatest(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	err := store.ReplaceLatest(ctx, "repo-1", "license-scan", []model.FindingChunk{
		chunk("c1", "repo-1", "license-scan", model.RoleSecurity, now),
		chunk("c2", "repo-1", "license-scan", model.RoleDependency, now),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := store.QueryLatest(ctx, "repo-1", model.RoleSecurity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 security chunk, got %d", len(got))
	}
	if got[0].ID != "c1" || !got[0].IsLatest {
		t.Errorf("unexpected chunk: %+v", got[0])
	}
	if len(got[0].Embedding) != 3 || got[0].Embedding[1] != 0.2 {
		t.Errorf("embedding did not round-trip: %v", got[0].Embedding)
	}
	if got[0].ExecutedAt.UnixMilli() != now.UnixMilli() {
		t.Errorf("executedAt did not round-trip")
	}
}

func TestQueryLatestEmpty(t *testing.T) {
	store := newTestStore(t)
	got, err := store.QueryLatest(context.Background(), "never-written", model.RoleSecurity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(got) != 0 {
		t.Fatalf("expected no chunks, got %d", len(got))
	}
}

func TestSupersession(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := []model.FindingChunk{
		chunk("gen1-a", "repo-1", "license-scan", model.RoleSecurity, time.Now()),
		chunk("gen1-b", "repo-1", "license-scan", model.RoleDependency, time.Now()),
	}
	if err := store.ReplaceLatest(ctx, "repo-1", "license-scan", first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second := []model.FindingChunk{
		chunk("gen2-a", "repo-1", "license-scan", model.RoleSecurity, time.Now()),
		chunk("gen2-b", "repo-1", "license-scan", model.RoleDependency, time.Now()),
	}
	if err := store.ReplaceLatest(ctx, "repo-1", "license-scan", second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, role := range []model.AgentRole{model.RoleSecurity, model.RoleDependency} {
		got, err := store.QueryLatest(ctx, "repo-1", role)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("role %s: expected exactly 1 latest chunk, got %d", role, len(got))
		}
		if got[0].ID == "gen1-a" || got[0].ID == "gen1-b" {
			t.Errorf("role %s: superseded generation still visible", role)
		}
	}
}

func TestReplaceLatestEmptyGeneration(t *testing.T) {
	store := newTestStore(t)
	err := store.ReplaceLatest(context.Background(), "repo-1", "license-scan", nil)
	if !errors.Is(err, ErrEmptyGeneration) {
		t.Fatalf("expected ErrEmptyGeneration, got %v", err)
	}
}

func TestReplaceLatestMismatchedChunk(t *testing.T) {
	store := newTestStore(t)
	err := store.ReplaceLatest(context.Background(), "repo-1", "license-scan", []model.FindingChunk{
		chunk("c1", "repo-2", "license-scan", model.RoleSecurity, time.Now()),
	})
	if err == nil {
		t.Fatal("expected error for chunk targeting a different repository")
	}
}

func TestWritesForDifferentToolsAreIndependent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.ReplaceLatest(ctx, "repo-1", "dependency-audit", []model.FindingChunk{
		chunk("audit-1", "repo-1", "dependency-audit", model.RoleSecurity, time.Now()),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.ReplaceLatest(ctx, "repo-1", "license-scan", []model.FindingChunk{
		chunk("lic-1", "repo-1", "license-scan", model.RoleSecurity, time.Now()),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Superseding one tool must not disturb the other.
	if err := store.ReplaceLatest(ctx, "repo-1", "dependency-audit", []model.FindingChunk{
		chunk("audit-2", "repo-1", "dependency-audit", model.RoleSecurity, time.Now()),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := store.QueryLatest(ctx, "repo-1", model.RoleSecurity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 chunks (one per tool), got %d", len(got))
	}
	if got[0].ID != "audit-2" || got[1].ID != "lic-1" {
		t.Errorf("unexpected latest set: %s, %s", got[0].ID, got[1].ID)
	}
}

func TestConcurrentWritersSamePair(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(gen int) {
			defer wg.Done()
			c := chunk(fmt.Sprintf("gen%d", gen), "repo-1", "module-cycle-check", model.RoleArchitecture, time.Now())
			if err := store.ReplaceLatest(ctx, "repo-1", "module-cycle-check", []model.FindingChunk{c}); err != nil {
				t.Errorf("writer %d: %v", gen, err)
			}
		}(i)
	}
	wg.Wait()

	got, err := store.QueryLatest(ctx, "repo-1", model.RoleArchitecture)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected exactly one surviving generation, got %d chunks", len(got))
	}
}

func TestDeleteRepository(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Two generations for repo-1, one for repo-2.
	for gen := 0; gen < 2; gen++ {
		if err := store.ReplaceLatest(ctx, "repo-1", "license-scan", []model.FindingChunk{
			chunk(fmt.Sprintf("r1-g%d-a", gen), "repo-1", "license-scan", model.RoleSecurity, time.Now()),
			chunk(fmt.Sprintf("r1-g%d-b", gen), "repo-1", "license-scan", model.RoleDependency, time.Now()),
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if err := store.ReplaceLatest(ctx, "repo-2", "license-scan", []model.FindingChunk{
		chunk("r2-a", "repo-2", "license-scan", model.RoleSecurity, time.Now()),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	count, err := store.DeleteRepository(ctx, "repo-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// All generations go, superseded rows included.
	if count != 4 {
		t.Errorf("expected 4 deleted chunks, got %d", count)
	}

	got, _ := store.QueryLatest(ctx, "repo-1", model.RoleSecurity)
	if len(got) != 0 {
		t.Errorf("repo-1 chunks survived deletion")
	}
	other, _ := store.QueryLatest(ctx, "repo-2", model.RoleSecurity)
	if len(other) != 1 {
		t.Errorf("repo-2 chunks should be untouched")
	}
}

func TestSummary(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	empty, err := store.Summary(ctx, "repo-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if empty.HasResults || empty.ToolCount != 0 {
		t.Errorf("expected empty summary, got %+v", empty)
	}

	older := time.Now().Add(-time.Hour)
	newer := time.Now()
	if err := store.ReplaceLatest(ctx, "repo-1", "dependency-audit", []model.FindingChunk{
		chunk("a", "repo-1", "dependency-audit", model.RoleSecurity, older),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.ReplaceLatest(ctx, "repo-1", "license-scan", []model.FindingChunk{
		chunk("b", "repo-1", "license-scan", model.RoleSecurity, newer),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	summary, err := store.Summary(ctx, "repo-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !summary.HasResults || summary.ToolCount != 2 {
		t.Errorf("expected 2 tools with results, got %+v", summary)
	}
	if summary.LastExecuted.UnixMilli() != newer.UnixMilli() {
		t.Errorf("lastExecuted should be the max executedAt")
	}
}
