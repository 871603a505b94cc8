// End-to-end pipeline: run tools, normalize, fan out, embed, store.
//
// Information Hiding:
// - Per-tool and per-chunk failure recovery hidden behind RunReport counts
// - Clock injection hidden (tests pin executedAt)

package orchestration

import (
	"context"
	"sort"
	"time"

	"github.com/richinex/toolvault/embed"
	"github.com/richinex/toolvault/model"
	"github.com/richinex/toolvault/normalize"
	"github.com/richinex/toolvault/storage"
)

// RunOptions tune one end-to-end pipeline invocation.
type RunOptions struct {
	// ScheduledRun marks chunks as produced by a background periodic run
	// rather than an on-demand PR-triggered one.
	ScheduledRun bool
	// BatchTimeout bounds the whole tool batch. Zero means
	// DefaultBatchTimeout.
	BatchTimeout time.Duration
}

// Pipeline composes the coordinator, normalizer, embedder, and store.
type Pipeline struct {
	coordinator *Coordinator
	store       storage.ChunkStore
	embedder    embed.Embedder
	now         func() time.Time
}

// NewPipeline wires the pipeline. The clock defaults to time.Now.
func NewPipeline(coordinator *Coordinator, store storage.ChunkStore, embedder embed.Embedder) *Pipeline {
	return &Pipeline{
		coordinator: coordinator,
		store:       store,
		embedder:    embedder,
		now:         time.Now,
	}
}

// WithClock overrides the pipeline clock. Tests use this to pin executedAt.
func (p *Pipeline) WithClock(now func() time.Time) *Pipeline {
	p.now = now
	return p
}

// RunToolsAndStore executes the enabled tools against the checkout and
// persists a new chunk generation per successful tool. Per-tool problems are
// counted in the report; only global conditions (bad repository path,
// unknown tool ID) return an error.
func (p *Pipeline) RunToolsAndStore(ctx context.Context, repositoryID, repoPath string, enabled []string, opts RunOptions) (model.RunReport, error) {
	runs, err := p.coordinator.Run(ctx, repoPath, enabled, opts.BatchTimeout)
	if err != nil {
		return model.RunReport{}, err
	}

	report := model.RunReport{Statuses: make(map[string]model.RunStatus, len(runs))}
	executedAt := p.now()

	// Deterministic iteration keeps store write order stable across runs.
	toolIDs := make([]string, 0, len(runs))
	for id := range runs {
		toolIDs = append(toolIDs, id)
	}
	sort.Strings(toolIDs)

	for _, toolID := range toolIDs {
		run := runs[toolID]
		report.Statuses[toolID] = run.Status

		tpl, ok := normalize.Normalize(run)
		if !ok {
			report.Failed++
			continue
		}

		chunks := normalize.Expand(tpl, repositoryID, executedAt, opts.ScheduledRun)
		if stored := p.embedAndStore(ctx, repositoryID, toolID, chunks); stored {
			report.Stored++
		} else {
			report.Failed++
			report.Statuses[toolID] = model.StatusFailed
		}
	}
	return report, nil
}

// embedAndStore embeds each role chunk and commits the surviving set as the
// new generation. An embedding failure drops only that chunk; a store
// failure (or losing every chunk) leaves the prior generation authoritative.
func (p *Pipeline) embedAndStore(ctx context.Context, repositoryID, toolID string, chunks []model.FindingChunk) bool {
	embedded := make([]model.FindingChunk, 0, len(chunks))
	for _, c := range chunks {
		vec, err := p.embedder.Embed(ctx, c.Content)
		if err != nil {
			continue
		}
		c.Embedding = vec
		embedded = append(embedded, c)
	}
	if len(embedded) == 0 {
		return false
	}
	return p.store.ReplaceLatest(ctx, repositoryID, toolID, embedded) == nil
}

// RepositorySummary is a lightweight existence/staleness check used before
// deciding whether to re-run tools.
func (p *Pipeline) RepositorySummary(ctx context.Context, repositoryID string) (model.RepositorySummary, error) {
	return p.store.Summary(ctx, repositoryID)
}

// PurgeRepository removes every stored chunk for a repository, all
// generations included.
func (p *Pipeline) PurgeRepository(ctx context.Context, repositoryID string) (int64, error) {
	return p.store.DeleteRepository(ctx, repositoryID)
}
