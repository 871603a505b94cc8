// Outdated package scan adapter - wraps `npm outdated`.
//
// Information Hiding:
// - npm outdated JSON format hidden behind ParseOutdatedOutput
// - Exit-code semantics hidden: npm outdated exits 1 when anything is stale

package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	jsonutil "github.com/richinex/toolvault/internal/json"
	"github.com/richinex/toolvault/model"
)

// OutdatedScan reports dependencies whose installed version lags the
// registry.
type OutdatedScan struct{}

// NewOutdatedScan creates the outdated-package-scan adapter.
func NewOutdatedScan() *OutdatedScan {
	return &OutdatedScan{}
}

// ID returns the stable tool identifier.
func (a *OutdatedScan) ID() string {
	return ToolOutdatedScan
}

// Applicable requires a package.json.
func (a *OutdatedScan) Applicable(repoPath string) error {
	return requireFile(repoPath, "package.json")
}

// Run invokes `npm outdated --json` and parses the version table.
func (a *OutdatedScan) Run(ctx context.Context, repoPath string) (model.Report, string, error) {
	res, err := runCommand(ctx, repoPath, "npm", "outdated", "--json")
	if err != nil {
		return model.Report{}, "", err
	}
	// npm outdated prints nothing and exits 0 when everything is current.
	if strings.TrimSpace(res.Stdout) == "" && res.ExitCode == 0 {
		return model.Report{}, res.Stdout, nil
	}
	report, parseErr := ParseOutdatedOutput(res.Stdout)
	if parseErr != nil {
		if res.ExitCode > 1 {
			return model.Report{}, res.Stdout, fmt.Errorf("npm outdated exited with code %d: %s", res.ExitCode, firstLine(res.Stderr))
		}
		return model.Report{}, res.Stdout, parseErr
	}
	return report, res.Stdout, nil
}

type outdatedEntry struct {
	Current string `json:"current"`
	Wanted  string `json:"wanted"`
	Latest  string `json:"latest"`
}

// ParseOutdatedOutput converts raw `npm outdated --json` output into a
// report. A package that is a major version behind rates medium severity;
// anything else rates low. Pure.
func ParseOutdatedOutput(raw string) (model.Report, error) {
	parsed, err := jsonutil.Decode[map[string]outdatedEntry](raw)
	if err != nil {
		return model.Report{}, fmt.Errorf("malformed npm outdated output: %w", err)
	}

	pkgs := make([]string, 0, len(parsed))
	for pkg := range parsed {
		pkgs = append(pkgs, pkg)
	}
	sort.Strings(pkgs)

	var findings []model.Finding
	for _, pkg := range pkgs {
		e := parsed[pkg]
		sev := model.SeverityLow
		if majorVersion(e.Current) != majorVersion(e.Latest) {
			sev = model.SeverityMedium
		}
		findings = append(findings, model.Finding{
			Title:    fmt.Sprintf("%s %s is behind latest %s", pkg, e.Current, e.Latest),
			Severity: sev,
			Detail:   fmt.Sprintf("current %s, wanted %s, latest %s", e.Current, e.Wanted, e.Latest),
		})
	}
	return model.Report{Findings: findings}, nil
}

// majorVersion returns the leading version component, ignoring range
// prefixes like "^" or "~".
func majorVersion(v string) string {
	v = strings.TrimLeft(v, "^~=v")
	if i := strings.Index(v, "."); i != -1 {
		return v[:i]
	}
	return v
}
