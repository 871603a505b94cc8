// Package model provides domain types shared across packages.
package model

import (
	"fmt"
	"time"
)

// AgentRole is a category of downstream consumer with its own filtered
// view of findings.
type AgentRole string

const (
	RoleSecurity     AgentRole = "security"
	RoleArchitecture AgentRole = "architecture"
	RoleDependency   AgentRole = "dependency"
	RoleEducational  AgentRole = "educational"
)

// Roles lists every known agent role in stable order.
func Roles() []AgentRole {
	return []AgentRole{RoleSecurity, RoleArchitecture, RoleDependency, RoleEducational}
}

// ParseAgentRole parses a role from string (case-sensitive, lowercase).
func ParseAgentRole(s string) (AgentRole, error) {
	for _, r := range Roles() {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown agent role: %s", s)
}

// RunStatus is the outcome of a single adapter invocation.
type RunStatus int

const (
	StatusSuccess RunStatus = iota
	StatusFailed
	StatusSkipped
	StatusTimedOut
)

// String returns the string representation of the run status.
func (s RunStatus) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	case StatusTimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// Severity classifies a single finding.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityHigh:
		return "high"
	case SeverityMedium:
		return "medium"
	case SeverityLow:
		return "low"
	default:
		return "info"
	}
}

// ParseSeverity maps common tool severity labels onto the shared scale.
// Unknown labels map to info rather than failing the whole parse.
func ParseSeverity(s string) Severity {
	switch s {
	case "critical":
		return SeverityCritical
	case "high", "error":
		return SeverityHigh
	case "moderate", "medium", "warn", "warning":
		return SeverityMedium
	case "low", "minor":
		return SeverityLow
	default:
		return SeverityInfo
	}
}

// Finding is one normalized issue reported by a tool.
type Finding struct {
	Title    string
	Severity Severity
	Detail   string
}

// Report is the tool-specific parse result an adapter returns on success.
type Report struct {
	Findings []Finding
}

// CountBySeverity returns how many findings have exactly the given severity.
func (r Report) CountBySeverity(sev Severity) int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == sev {
			n++
		}
	}
	return n
}

// ToolRun is one invocation of one adapter. It lives only for the duration
// of a coordinator batch and is never persisted.
type ToolRun struct {
	ToolID          string
	Status          RunStatus
	Report          Report
	RawOutput       string
	ExecutionTimeMs int64
	Err             error // set iff Status != StatusSuccess
}

// FindingChunk is the normalized, embeddable unit of one tool's output
// tagged for one consumer role.
type FindingChunk struct {
	ID              string
	RepositoryID    string
	ToolID          string
	AgentRole       AgentRole
	Content         string
	ImportanceScore int
	FindingsCount   int
	CriticalCount   int
	HighCount       int
	ExecutedAt      time.Time
	IsLatest        bool
	ScheduledRun    bool
	Embedding       []float32
}

// ResultSummary is the read-side digest attached to AgentToolResults.
type ResultSummary struct {
	TotalTools  int
	KeyFindings []string
}

// AgentToolResults is the read-side aggregate served to one agent role.
// ToolResults holds only latest-generation chunks.
type AgentToolResults struct {
	RepositoryID string
	AgentRole    AgentRole
	ToolResults  []FindingChunk
	Summary      ResultSummary
	LastExecuted time.Time
}

// RunReport is returned by the end-to-end pipeline: how many tools had their
// generation committed and how many did not.
type RunReport struct {
	Stored   int
	Failed   int
	Statuses map[string]RunStatus
}

// RepositorySummary is a lightweight existence/staleness check used before
// deciding whether to re-run tools.
type RepositorySummary struct {
	HasResults   bool
	ToolCount    int
	LastExecuted time.Time
}
