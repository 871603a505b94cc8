// Package tools provides the static-analysis adapter system.
//
// Information Hiding:
// - Tool invocation details hidden behind the Adapter interface
// - Output parsing internalized per adapter
// - Registry implementation details hidden from consumers
package tools

import (
	"context"
	"errors"

	"github.com/richinex/toolvault/model"
)

// Stable tool identifiers. These double as keys in the role mapping and in
// the chunk store, so they must never change once data has been written.
const (
	ToolDependencyAudit  = "dependency-audit"
	ToolLicenseScan      = "license-scan"
	ToolModuleCycleCheck = "module-cycle-check"
	ToolLayeringCheck    = "layering-rule-check"
	ToolOutdatedScan     = "outdated-package-scan"
)

// ErrNotApplicable is wrapped by Applicable when a tool's precondition is
// missing (no lockfile, no ruleset). The coordinator records such tools as
// skipped instead of attempting to run them.
var ErrNotApplicable = errors.New("tool not applicable")

// Adapter wraps one external static-analysis CLI tool.
//
// Implementations hide how the tool is invoked and how its raw stdout is
// parsed into the shared report shape.
type Adapter interface {
	// ID returns the stable tool identifier.
	ID() string

	// Applicable reports whether the adapter can run against the checkout.
	// A nil return means the tool applies; otherwise the error (wrapping
	// ErrNotApplicable) explains why the tool will be skipped.
	Applicable(repoPath string) error

	// Run invokes the underlying CLI tool against the checkout and parses
	// its output. The raw output is returned alongside the report for
	// diagnostics. Run must honor ctx cancellation: the underlying process
	// is killed when the deadline passes.
	Run(ctx context.Context, repoPath string) (model.Report, string, error)
}

// DefaultAdapters returns one instance of every built-in adapter.
func DefaultAdapters() []Adapter {
	return []Adapter{
		NewDependencyAudit(),
		NewLicenseScan(),
		NewModuleCycleCheck(),
		NewLayeringCheck(),
		NewOutdatedScan(),
	}
}
