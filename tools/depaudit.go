// Dependency audit adapter - wraps `npm audit`.
//
// Information Hiding:
// - npm audit report format (v2) hidden behind ParseAuditOutput
// - Exit-code semantics hidden: npm audit exits 1 when vulnerabilities exist

package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	jsonutil "github.com/richinex/toolvault/internal/json"
	"github.com/richinex/toolvault/model"
)

// DependencyAudit scans the dependency lockfile for known vulnerabilities.
type DependencyAudit struct{}

// NewDependencyAudit creates the dependency-audit adapter.
func NewDependencyAudit() *DependencyAudit {
	return &DependencyAudit{}
}

// ID returns the stable tool identifier.
func (a *DependencyAudit) ID() string {
	return ToolDependencyAudit
}

// Applicable requires a package-lock.json; npm audit cannot run without one.
func (a *DependencyAudit) Applicable(repoPath string) error {
	return requireFile(repoPath, "package-lock.json")
}

// Run invokes `npm audit --json` and parses the report.
func (a *DependencyAudit) Run(ctx context.Context, repoPath string) (model.Report, string, error) {
	res, err := runCommand(ctx, repoPath, "npm", "audit", "--json")
	if err != nil {
		return model.Report{}, "", err
	}
	// Exit 1 means vulnerabilities were found; anything above that is a
	// real npm failure unless the output still parses.
	report, parseErr := ParseAuditOutput(res.Stdout)
	if parseErr != nil {
		if res.ExitCode > 1 {
			return model.Report{}, res.Stdout, fmt.Errorf("npm audit exited with code %d: %s", res.ExitCode, firstLine(res.Stderr))
		}
		return model.Report{}, res.Stdout, parseErr
	}
	return report, res.Stdout, nil
}

// auditVulnerability mirrors one entry of the npm audit v2 report.
type auditVulnerability struct {
	Name     string        `json:"name"`
	Severity string        `json:"severity"`
	Range    string        `json:"range"`
	Via      []interface{} `json:"via"`
}

type auditReport struct {
	Vulnerabilities map[string]auditVulnerability `json:"vulnerabilities"`
}

// ParseAuditOutput converts raw `npm audit --json` output into a report.
// It is pure: identical output always yields identical findings.
func ParseAuditOutput(raw string) (model.Report, error) {
	parsed, err := jsonutil.Decode[auditReport](raw)
	if err != nil {
		return model.Report{}, fmt.Errorf("malformed npm audit output: %w", err)
	}

	// Map iteration order is random; sort by package name for determinism.
	names := make([]string, 0, len(parsed.Vulnerabilities))
	for name := range parsed.Vulnerabilities {
		names = append(names, name)
	}
	sort.Strings(names)

	var findings []model.Finding
	for _, name := range names {
		v := parsed.Vulnerabilities[name]
		findings = append(findings, model.Finding{
			Title:    fmt.Sprintf("%s (%s)", name, vulnerabilityAdvisory(v)),
			Severity: model.ParseSeverity(v.Severity),
			Detail:   fmt.Sprintf("vulnerable range %s", v.Range),
		})
	}
	return model.Report{Findings: findings}, nil
}

// vulnerabilityAdvisory pulls the first advisory title out of the "via"
// field, which mixes advisory objects with plain package-name strings.
func vulnerabilityAdvisory(v auditVulnerability) string {
	for _, via := range v.Via {
		if advisory, ok := via.(map[string]interface{}); ok {
			if title, ok := advisory["title"].(string); ok && title != "" {
				return title
			}
		}
	}
	return "known vulnerability"
}

// requireFile wraps ErrNotApplicable when the given file is absent from the
// checkout.
func requireFile(repoPath, rel string) error {
	if _, err := os.Stat(filepath.Join(repoPath, rel)); err != nil {
		return fmt.Errorf("%w: missing %s", ErrNotApplicable, rel)
	}
	return nil
}
