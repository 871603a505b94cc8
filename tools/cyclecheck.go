// Module cycle check adapter - wraps `madge --circular`.
//
// Information Hiding:
// - madge cycle-array format hidden behind ParseCycleOutput
// - Exit-code semantics hidden: madge exits 1 when cycles exist

package tools

import (
	"context"
	"fmt"
	"strings"

	jsonutil "github.com/richinex/toolvault/internal/json"
	"github.com/richinex/toolvault/model"
)

// ModuleCycleCheck detects circular imports in the module graph.
type ModuleCycleCheck struct{}

// NewModuleCycleCheck creates the module-cycle-check adapter.
func NewModuleCycleCheck() *ModuleCycleCheck {
	return &ModuleCycleCheck{}
}

// ID returns the stable tool identifier.
func (a *ModuleCycleCheck) ID() string {
	return ToolModuleCycleCheck
}

// Applicable requires a package.json so madge can resolve the module root.
func (a *ModuleCycleCheck) Applicable(repoPath string) error {
	return requireFile(repoPath, "package.json")
}

// Run invokes `madge --circular --json .` and parses the cycle list.
func (a *ModuleCycleCheck) Run(ctx context.Context, repoPath string) (model.Report, string, error) {
	res, err := runCommand(ctx, repoPath, "madge", "--circular", "--json", ".")
	if err != nil {
		return model.Report{}, "", err
	}
	report, parseErr := ParseCycleOutput(res.Stdout)
	if parseErr != nil {
		if res.ExitCode > 1 {
			return model.Report{}, res.Stdout, fmt.Errorf("madge exited with code %d: %s", res.ExitCode, firstLine(res.Stderr))
		}
		return model.Report{}, res.Stdout, parseErr
	}
	return report, res.Stdout, nil
}

// ParseCycleOutput converts raw `madge --circular --json` output (an array
// of cycles, each an ordered list of module paths) into a report. Pure.
func ParseCycleOutput(raw string) (model.Report, error) {
	cycles, err := jsonutil.Decode[[][]string](raw)
	if err != nil {
		return model.Report{}, fmt.Errorf("malformed madge output: %w", err)
	}

	var findings []model.Finding
	for _, cycle := range cycles {
		if len(cycle) == 0 {
			continue
		}
		findings = append(findings, model.Finding{
			Title:    fmt.Sprintf("circular dependency through %s", cycle[0]),
			Severity: model.SeverityHigh,
			Detail:   strings.Join(cycle, " -> "),
		})
	}
	return model.Report{Findings: findings}, nil
}
