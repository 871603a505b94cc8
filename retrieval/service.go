// Package retrieval serves agent-role-filtered views of the latest tool
// results.
//
// Information Hiding:
// - Aggregation and key-finding selection hidden behind AgentToolResults
// - Per-role fan-out and partial-failure handling hidden in GetForAgents
package retrieval

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/richinex/toolvault/model"
	"github.com/richinex/toolvault/storage"
)

// maxKeyFindings caps how many chunk summaries are surfaced per role.
const maxKeyFindings = 5

// Service is the read-side façade used by downstream agents.
type Service struct {
	store storage.ChunkStore
}

// NewService creates a retrieval service over the given store.
func NewService(store storage.ChunkStore) *Service {
	return &Service{store: store}
}

// GetForAgent aggregates the latest chunks visible to one role. A repository
// with no stored results yields an empty aggregate, not an error: "no
// results yet" is a normal state for callers.
func (s *Service) GetForAgent(ctx context.Context, repositoryID string, role model.AgentRole) (model.AgentToolResults, error) {
	chunks, err := s.store.QueryLatest(ctx, repositoryID, role)
	if err != nil {
		return model.AgentToolResults{}, fmt.Errorf("failed to retrieve results for role %s: %w", role, err)
	}

	results := model.AgentToolResults{
		RepositoryID: repositoryID,
		AgentRole:    role,
		ToolResults:  chunks,
		Summary: model.ResultSummary{
			KeyFindings: []string{},
		},
	}

	seenTools := map[string]bool{}
	var last time.Time
	for _, c := range chunks {
		seenTools[c.ToolID] = true
		if c.ExecutedAt.After(last) {
			last = c.ExecutedAt
		}
	}
	results.Summary.TotalTools = len(seenTools)
	results.Summary.KeyFindings = keyFindings(chunks)
	results.LastExecuted = last
	return results, nil
}

// GetForAgents aggregates independently per role. A failure retrieving one
// role's data does not prevent returning results for the others: the role is
// reported in the error map and omitted from the result map.
func (s *Service) GetForAgents(ctx context.Context, repositoryID string, roles []model.AgentRole) (map[model.AgentRole]model.AgentToolResults, map[model.AgentRole]error) {
	type roleResult struct {
		role    model.AgentRole
		results model.AgentToolResults
		err     error
	}

	out := make([]roleResult, len(roles))
	var wg sync.WaitGroup
	for i, role := range roles {
		wg.Add(1)
		go func(i int, role model.AgentRole) {
			defer wg.Done()
			results, err := s.GetForAgent(ctx, repositoryID, role)
			out[i] = roleResult{role: role, results: results, err: err}
		}(i, role)
	}
	wg.Wait()

	results := make(map[model.AgentRole]model.AgentToolResults, len(roles))
	errs := make(map[model.AgentRole]error)
	for _, r := range out {
		if r.err != nil {
			errs[r.role] = r.err
			continue
		}
		results[r.role] = r.results
	}
	return results, errs
}

// keyFindings picks the highest-importance chunk summaries, capped at
// maxKeyFindings. Ties break on tool ID so output is deterministic.
func keyFindings(chunks []model.FindingChunk) []string {
	sorted := make([]model.FindingChunk, len(chunks))
	copy(sorted, chunks)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].ImportanceScore != sorted[j].ImportanceScore {
			return sorted[i].ImportanceScore > sorted[j].ImportanceScore
		}
		return sorted[i].ToolID < sorted[j].ToolID
	})

	findings := []string{}
	for _, c := range sorted {
		if len(findings) == maxKeyFindings {
			break
		}
		if c.FindingsCount == 0 {
			continue
		}
		findings = append(findings, c.Content)
	}
	return findings
}
