// Package orchestration coordinates tool execution and composes the
// end-to-end run-and-store pipeline.
//
// Information Hiding:
// - Worker-pool sizing and per-tool deadline derivation hidden
// - Per-tool failure recovery hidden: callers always get a complete map
package orchestration

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/richinex/toolvault/model"
	"github.com/richinex/toolvault/tools"
)

// ErrUnknownTool is returned when an enabled tool ID has no registered
// adapter. This is a caller configuration error, not a per-tool outcome.
var ErrUnknownTool = errors.New("unknown tool")

// DefaultBatchTimeout bounds a whole batch when the caller does not supply
// a budget.
const DefaultBatchTimeout = 5 * time.Minute

// Coordinator runs a battery of adapters against a repository checkout.
type Coordinator struct {
	registry   *tools.Registry
	maxWorkers int
}

// NewCoordinator creates a coordinator over the given registry. maxWorkers
// bounds concurrent tool processes; zero or negative means one per CPU.
func NewCoordinator(registry *tools.Registry, maxWorkers int) *Coordinator {
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
	}
	return &Coordinator{registry: registry, maxWorkers: maxWorkers}
}

// Run executes the enabled adapters concurrently and returns one ToolRun per
// requested tool, always covering the complete set. Per-tool failures are
// recorded in the map, never returned as an error; only global conditions
// (missing repository path, unknown tool ID) fail the call.
//
// An empty enabled list means every registered adapter.
func (c *Coordinator) Run(ctx context.Context, repoPath string, enabled []string, timeout time.Duration) (map[string]model.ToolRun, error) {
	info, err := os.Stat(repoPath)
	if err != nil {
		return nil, fmt.Errorf("repository path %s: %w", repoPath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("repository path %s is not a directory", repoPath)
	}

	if len(enabled) == 0 {
		enabled = c.registry.IDs()
	}
	adapters := make([]tools.Adapter, 0, len(enabled))
	for _, id := range enabled {
		adapter, ok := c.registry.Get(id)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTool, id)
		}
		adapters = append(adapters, adapter)
	}

	if timeout <= 0 {
		timeout = DefaultBatchTimeout
	}
	batchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Conservative per-tool soft deadline so one slow tool cannot eat the
	// whole batch budget while others queue behind it.
	perTool := timeout / 2
	if perTool <= 0 {
		perTool = timeout
	}

	runs := make([]model.ToolRun, len(adapters))
	sem := make(chan struct{}, c.maxWorkers)
	var wg sync.WaitGroup

	for i, adapter := range adapters {
		wg.Add(1)
		go func(i int, adapter tools.Adapter) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			runs[i] = c.runOne(batchCtx, adapter, repoPath, perTool)
		}(i, adapter)
	}
	wg.Wait()

	results := make(map[string]model.ToolRun, len(runs))
	for _, run := range runs {
		results[run.ToolID] = run
	}
	return results, nil
}

// runOne executes a single adapter and folds every failure mode into a
// ToolRun status.
func (c *Coordinator) runOne(ctx context.Context, adapter tools.Adapter, repoPath string, perTool time.Duration) model.ToolRun {
	run := model.ToolRun{ToolID: adapter.ID()}

	if err := adapter.Applicable(repoPath); err != nil {
		run.Status = model.StatusSkipped
		run.Err = err
		return run
	}

	toolCtx, cancel := context.WithTimeout(ctx, perTool)
	defer cancel()

	start := time.Now()
	report, raw, err := adapter.Run(toolCtx, repoPath)
	run.ExecutionTimeMs = time.Since(start).Milliseconds()
	run.RawOutput = raw

	switch {
	case err == nil:
		run.Status = model.StatusSuccess
		run.Report = report
	case toolCtx.Err() != nil:
		// Either the tool's soft deadline or the batch budget expired;
		// both surface as a timeout for this tool.
		run.Status = model.StatusTimedOut
		run.Err = fmt.Errorf("tool %s timed out: %w", adapter.ID(), toolCtx.Err())
	default:
		run.Status = model.StatusFailed
		run.Err = err
	}
	return run
}
