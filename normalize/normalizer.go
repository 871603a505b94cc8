package normalize

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/richinex/toolvault/model"
	"github.com/richinex/toolvault/tools"
)

// maxContentLen bounds chunk content so it stays a reasonable embedding
// input.
const maxContentLen = 800

// topFindingsInSummary is how many findings are named in the chunk content.
const topFindingsInSummary = 3

// toolBaseWeight gives some tools a head start in importance scoring:
// vulnerability and license findings matter more to reviewers than a stale
// patch version.
var toolBaseWeight = map[string]int{
	tools.ToolDependencyAudit:  3,
	tools.ToolLicenseScan:      2,
	tools.ToolModuleCycleCheck: 2,
	tools.ToolLayeringCheck:    1,
	tools.ToolOutdatedScan:     1,
}

// Template is a normalized chunk before role fan-out: everything a
// FindingChunk carries except identity, role, and run metadata.
type Template struct {
	ToolID          string
	Content         string
	ImportanceScore int
	FindingsCount   int
	CriticalCount   int
	HighCount       int
}

// Normalize converts a tool run into a chunk template. The second return is
// false when the run produced no data (failed, skipped, or timed out): the
// absence of a chunk is how downstream consumers distinguish "tool did not
// run" from "tool ran and found nothing".
//
// Normalize is pure: identical runs always yield identical templates.
func Normalize(run model.ToolRun) (Template, bool) {
	if run.Status != model.StatusSuccess {
		return Template{}, false
	}

	critical := run.Report.CountBySeverity(model.SeverityCritical)
	high := run.Report.CountBySeverity(model.SeverityHigh)

	return Template{
		ToolID:          run.ToolID,
		Content:         summarize(run.ToolID, run.Report),
		ImportanceScore: importance(run.ToolID, len(run.Report.Findings), critical, high),
		FindingsCount:   len(run.Report.Findings),
		CriticalCount:   critical,
		HighCount:       high,
	}, true
}

// Expand fans a template out into one FindingChunk per mapped role. Content
// is identical across the chunks; only identity and the role tag differ.
func Expand(tpl Template, repositoryID string, executedAt time.Time, scheduledRun bool) []model.FindingChunk {
	roles := RolesFor(tpl.ToolID)
	chunks := make([]model.FindingChunk, 0, len(roles))
	for _, role := range roles {
		chunks = append(chunks, model.FindingChunk{
			ID:              uuid.NewString(),
			RepositoryID:    repositoryID,
			ToolID:          tpl.ToolID,
			AgentRole:       role,
			Content:         tpl.Content,
			ImportanceScore: tpl.ImportanceScore,
			FindingsCount:   tpl.FindingsCount,
			CriticalCount:   tpl.CriticalCount,
			HighCount:       tpl.HighCount,
			ExecutedAt:      executedAt,
			IsLatest:        true,
			ScheduledRun:    scheduledRun,
		})
	}
	return chunks
}

// importance scores a run for downstream prioritization. Any critical finding
// dominates the score; high counts and volume contribute with caps so one
// noisy tool cannot drown out the others.
func importance(toolID string, findings, critical, high int) int {
	score := toolBaseWeight[toolID]
	if critical > 0 {
		score += 100
	}
	h := high * 10
	if h > 50 {
		h = 50
	}
	score += h
	f := findings
	if f > 20 {
		f = 20
	}
	score += f
	return score
}

// summarize renders the bounded, human-readable chunk content.
func summarize(toolID string, report model.Report) string {
	if len(report.Findings) == 0 {
		return fmt.Sprintf("%s: no findings.", toolID)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d finding%s", toolID, len(report.Findings), plural(len(report.Findings)))

	critical := report.CountBySeverity(model.SeverityCritical)
	high := report.CountBySeverity(model.SeverityHigh)
	if critical > 0 || high > 0 {
		fmt.Fprintf(&b, " (%d critical, %d high)", critical, high)
	}
	b.WriteString(". Top: ")

	top := topFindings(report.Findings, topFindingsInSummary)
	titles := make([]string, len(top))
	for i, f := range top {
		titles[i] = fmt.Sprintf("[%s] %s", f.Severity, f.Title)
	}
	b.WriteString(strings.Join(titles, "; "))
	b.WriteString(".")

	content := b.String()
	if len(content) > maxContentLen {
		// Back up to a rune boundary so truncation never emits invalid UTF-8.
		cut := maxContentLen - 3
		for cut > 0 && !utf8.RuneStart(content[cut]) {
			cut--
		}
		content = content[:cut] + "..."
	}
	return content
}

// topFindings returns the n most severe findings, preserving report order
// within a severity so the summary stays deterministic.
func topFindings(findings []model.Finding, n int) []model.Finding {
	sorted := make([]model.Finding, len(findings))
	copy(sorted, findings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Severity > sorted[j].Severity
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
