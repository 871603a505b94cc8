// Package insight renders tool results into natural-language digests.
//
// Information Hiding:
// - Prompt construction hidden behind BuildPrompt
// - Provider selection hidden behind llm.Provider
package insight

import (
	"context"
	"fmt"
	"strings"

	"github.com/richinex/toolvault/llm"
	"github.com/richinex/toolvault/model"
)

const systemPrompt = `You are a code review assistant. You receive normalized
static-analysis results for one repository, filtered for one reviewer role.
Summarize the findings for that reviewer in plain prose: what matters most,
what can wait, and what is clean. Do not invent findings that are not listed.`

// Generator produces a digest of one role's tool results.
type Generator struct {
	provider llm.Provider
}

// NewGenerator creates a generator over the given provider.
func NewGenerator(provider llm.Provider) *Generator {
	return &Generator{provider: provider}
}

// Digest asks the provider to summarize the given results. A repository with
// no results yields a canned response without spending a provider call.
func (g *Generator) Digest(ctx context.Context, results model.AgentToolResults) (string, error) {
	if len(results.ToolResults) == 0 {
		return fmt.Sprintf("No analysis results are stored yet for %s (role %s).",
			results.RepositoryID, results.AgentRole), nil
	}

	digest, err := g.provider.Complete(ctx, systemPrompt, BuildPrompt(results))
	if err != nil {
		return "", fmt.Errorf("digest generation failed: %w", err)
	}
	return digest, nil
}

// BuildPrompt renders the results into the user prompt. Pure: identical
// results always yield an identical prompt.
func BuildPrompt(results model.AgentToolResults) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Repository: %s\n", results.RepositoryID)
	fmt.Fprintf(&b, "Reviewer role: %s\n", results.AgentRole)
	fmt.Fprintf(&b, "Tools with results: %d\n", results.Summary.TotalTools)
	if !results.LastExecuted.IsZero() {
		fmt.Fprintf(&b, "Last executed: %s\n", results.LastExecuted.UTC().Format("2006-01-02 15:04:05 UTC"))
	}

	b.WriteString("\nTool results:\n")
	for _, c := range results.ToolResults {
		fmt.Fprintf(&b, "- [%s] %s (findings: %d, critical: %d, high: %d, importance: %d)\n",
			c.ToolID, c.Content, c.FindingsCount, c.CriticalCount, c.HighCount, c.ImportanceScore)
	}

	if len(results.Summary.KeyFindings) > 0 {
		b.WriteString("\nKey findings, highest importance first:\n")
		for i, kf := range results.Summary.KeyFindings {
			fmt.Fprintf(&b, "%d. %s\n", i+1, kf)
		}
	}
	return b.String()
}
