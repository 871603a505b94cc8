// Command execution for CLI commands.
//
// Information Hiding:
// - Store/embedder/pipeline wiring hidden
// - Output formatting hidden

package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/richinex/toolvault/config"
	"github.com/richinex/toolvault/embed"
	"github.com/richinex/toolvault/insight"
	"github.com/richinex/toolvault/llm"
	"github.com/richinex/toolvault/model"
	"github.com/richinex/toolvault/normalize"
	"github.com/richinex/toolvault/orchestration"
	"github.com/richinex/toolvault/retrieval"
	"github.com/richinex/toolvault/storage"
	"github.com/richinex/toolvault/tools"
)

// Options holds CLI execution options.
type Options struct {
	Verbose bool
}

// RunTools executes the given tools against a checkout and stores the
// normalized results. Empty toolIDs means every registered tool.
func RunTools(ctx context.Context, repositoryID, repoPath string, toolIDs []string, scheduled bool, opts Options) error {
	settings, err := config.New()
	if err != nil {
		return err
	}

	store, err := storage.OpenSqlite(settings.Storage.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	embedder, err := buildEmbedder(settings)
	if err != nil {
		return err
	}

	coordinator := orchestration.NewCoordinator(tools.NewDefaultRegistry(), settings.Execution.MaxWorkers)
	pipeline := orchestration.NewPipeline(coordinator, store, embedder)

	fmt.Printf("Running tools for %s (%s)...\n\n", repositoryID, repoPath)

	report, err := pipeline.RunToolsAndStore(ctx, repositoryID, repoPath, toolIDs, orchestration.RunOptions{
		ScheduledRun: scheduled,
		BatchTimeout: settings.Execution.BatchTimeout,
	})
	if err != nil {
		return err
	}

	printRunReport(report)

	if report.Failed > 0 && report.Stored == 0 {
		return fmt.Errorf("all %d tools failed", report.Failed)
	}
	return nil
}

// ShowResults prints the latest chunks stored for one agent role.
func ShowResults(ctx context.Context, repositoryID, roleName string, opts Options) error {
	role, err := model.ParseAgentRole(roleName)
	if err != nil {
		return err
	}

	settings, err := config.New()
	if err != nil {
		return err
	}
	store, err := storage.OpenSqlite(settings.Storage.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := retrieval.NewService(store).GetForAgent(ctx, repositoryID, role)
	if err != nil {
		return err
	}

	printResults(results, opts.Verbose)
	return nil
}

// ShowSummary prints whether a repository has stored results and when they
// were last produced.
func ShowSummary(ctx context.Context, repositoryID string, opts Options) error {
	settings, err := config.New()
	if err != nil {
		return err
	}
	store, err := storage.OpenSqlite(settings.Storage.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Summary(ctx, repositoryID)
	if err != nil {
		return err
	}

	if !summary.HasResults {
		fmt.Printf("%s: no stored results\n", repositoryID)
		return nil
	}
	fmt.Printf("%s: %d tools with results, last executed %s\n",
		repositoryID, summary.ToolCount, summary.LastExecuted.UTC().Format("2006-01-02 15:04:05 UTC"))
	return nil
}

// Purge deletes every stored generation for a repository.
func Purge(ctx context.Context, repositoryID string, opts Options) error {
	settings, err := config.New()
	if err != nil {
		return err
	}
	store, err := storage.OpenSqlite(settings.Storage.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	deleted, err := store.DeleteRepository(ctx, repositoryID)
	if err != nil {
		return err
	}
	fmt.Printf("Purged %d chunks for %s\n", deleted, repositoryID)
	return nil
}

// ListTools prints the registered tools and the agent roles each one feeds.
func ListTools(showRoles bool) {
	registry := tools.NewDefaultRegistry()
	for _, id := range registry.IDs() {
		if !showRoles {
			fmt.Println(id)
			continue
		}
		roles := normalize.RolesFor(id)
		names := make([]string, len(roles))
		for i, role := range roles {
			names[i] = string(role)
		}
		fmt.Printf("%-24s -> %s\n", id, strings.Join(names, ", "))
	}
}

// Insight generates a natural-language digest of one role's results.
func Insight(ctx context.Context, repositoryID, roleName, providerName string, opts Options) error {
	role, err := model.ParseAgentRole(roleName)
	if err != nil {
		return err
	}
	providerType, err := llm.ParseProviderType(providerName)
	if err != nil {
		return err
	}
	provider, err := llm.New(providerType, "")
	if err != nil {
		return err
	}

	settings, err := config.New()
	if err != nil {
		return err
	}
	store, err := storage.OpenSqlite(settings.Storage.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := retrieval.NewService(store).GetForAgent(ctx, repositoryID, role)
	if err != nil {
		return err
	}

	if opts.Verbose {
		fmt.Printf("Generating digest with %s (%s)...\n\n", provider.Name(), provider.Model())
	}

	digest, err := insight.NewGenerator(provider).Digest(ctx, results)
	if err != nil {
		return err
	}
	fmt.Println(digest)
	return nil
}

// buildEmbedder wires the configured embedding provider behind an LRU cache.
func buildEmbedder(settings config.Settings) (embed.Embedder, error) {
	apiKey, err := config.EmbedderAPIKey(settings.Embedding.Provider)
	if err != nil {
		return nil, err
	}

	var inner embed.Embedder
	switch settings.Embedding.Provider {
	case "openai":
		inner = embed.NewOpenAIEmbedder(apiKey, settings.Embedding.Model)
	case "gemini":
		inner = embed.NewGeminiEmbedder(apiKey, settings.Embedding.Model)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %q", settings.Embedding.Provider)
	}

	return embed.NewCachedEmbedder(inner, settings.Embedding.CacheSize)
}

func printRunReport(report model.RunReport) {
	ids := make([]string, 0, len(report.Statuses))
	for id := range report.Statuses {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		fmt.Printf("  %-24s %s\n", id, statusLabel(report.Statuses[id]))
	}
	fmt.Printf("\n%d stored, %d failed\n", report.Stored, report.Failed)
}

func statusLabel(status model.RunStatus) string {
	switch status {
	case model.StatusSuccess:
		return color.New(color.FgHiGreen).Sprint(status.String())
	case model.StatusFailed:
		return color.New(color.FgRed).Sprint(status.String())
	case model.StatusTimedOut:
		return color.New(color.FgYellow).Sprint(status.String())
	case model.StatusSkipped:
		return color.New(color.FgHiBlack).Sprint(status.String())
	default:
		return status.String()
	}
}

func printResults(results model.AgentToolResults, verbose bool) {
	if len(results.ToolResults) == 0 {
		fmt.Printf("%s (%s): no stored results\n", results.RepositoryID, results.AgentRole)
		return
	}

	fmt.Printf("%s (%s): %d tools, last executed %s\n\n",
		results.RepositoryID, results.AgentRole, results.Summary.TotalTools,
		results.LastExecuted.UTC().Format("2006-01-02 15:04:05 UTC"))

	for _, c := range results.ToolResults {
		header := fmt.Sprintf("[%s]", c.ToolID)
		if c.CriticalCount > 0 {
			header = color.New(color.FgRed).Sprint(header)
		} else if c.HighCount > 0 {
			header = color.New(color.FgYellow).Sprint(header)
		}
		fmt.Printf("%s %s\n", header, c.Content)
		if verbose {
			fmt.Printf("    findings=%d critical=%d high=%d importance=%d scheduled=%v\n",
				c.FindingsCount, c.CriticalCount, c.HighCount, c.ImportanceScore, c.ScheduledRun)
		}
	}

	if len(results.Summary.KeyFindings) > 0 {
		fmt.Println("\nKey findings:")
		for i, kf := range results.Summary.KeyFindings {
			fmt.Printf("  %d. %s\n", i+1, kf)
		}
	}
}
