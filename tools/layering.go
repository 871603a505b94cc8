// Layering rule check adapter - wraps `depcruise` (dependency-cruiser).
//
// Information Hiding:
// - dependency-cruiser violation format hidden behind ParseLayeringOutput
// - Exit-code semantics hidden: depcruise exits non-zero per error violation

package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	jsonutil "github.com/richinex/toolvault/internal/json"
	"github.com/richinex/toolvault/model"
)

// Rule-set files dependency-cruiser recognizes, in lookup order.
var layeringConfigs = []string{
	".dependency-cruiser.js",
	".dependency-cruiser.cjs",
	".dependency-cruiser.json",
}

// LayeringCheck validates the repository's own layering rules with
// dependency-cruiser.
type LayeringCheck struct{}

// NewLayeringCheck creates the layering-rule-check adapter.
func NewLayeringCheck() *LayeringCheck {
	return &LayeringCheck{}
}

// ID returns the stable tool identifier.
func (a *LayeringCheck) ID() string {
	return ToolLayeringCheck
}

// Applicable requires a dependency-cruiser rule set; without one there are
// no layering rules to validate.
func (a *LayeringCheck) Applicable(repoPath string) error {
	for _, cfg := range layeringConfigs {
		if _, err := os.Stat(filepath.Join(repoPath, cfg)); err == nil {
			return nil
		}
	}
	return fmt.Errorf("%w: no dependency-cruiser config", ErrNotApplicable)
}

// Run invokes `depcruise --validate --output-type json src` and parses the
// violation summary.
func (a *LayeringCheck) Run(ctx context.Context, repoPath string) (model.Report, string, error) {
	target := "src"
	if _, err := os.Stat(filepath.Join(repoPath, target)); err != nil {
		target = "."
	}
	res, err := runCommand(ctx, repoPath, "depcruise", "--validate", "--output-type", "json", target)
	if err != nil {
		return model.Report{}, "", err
	}
	report, parseErr := ParseLayeringOutput(res.Stdout)
	if parseErr != nil {
		if res.ExitCode != 0 {
			return model.Report{}, res.Stdout, fmt.Errorf("depcruise exited with code %d: %s", res.ExitCode, firstLine(res.Stderr))
		}
		return model.Report{}, res.Stdout, parseErr
	}
	return report, res.Stdout, nil
}

type layeringViolation struct {
	From string `json:"from"`
	To   string `json:"to"`
	Rule struct {
		Name     string `json:"name"`
		Severity string `json:"severity"`
	} `json:"rule"`
}

type layeringReport struct {
	Summary struct {
		Violations []layeringViolation `json:"violations"`
	} `json:"summary"`
}

// ParseLayeringOutput converts raw dependency-cruiser JSON output into a
// report. Pure.
func ParseLayeringOutput(raw string) (model.Report, error) {
	parsed, err := jsonutil.Decode[layeringReport](raw)
	if err != nil {
		return model.Report{}, fmt.Errorf("malformed depcruise output: %w", err)
	}

	var findings []model.Finding
	for _, v := range parsed.Summary.Violations {
		name := v.Rule.Name
		if name == "" {
			name = "unnamed rule"
		}
		findings = append(findings, model.Finding{
			Title:    fmt.Sprintf("%s: %s -> %s", name, v.From, v.To),
			Severity: model.ParseSeverity(v.Rule.Severity),
			Detail:   fmt.Sprintf("dependency from %s to %s violates %s", v.From, v.To, name),
		})
	}
	return model.Report{Findings: findings}, nil
}
