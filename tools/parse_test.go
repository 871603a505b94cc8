package tools

import (
	"strings"
	"testing"

	"github.com/richinex/toolvault/model"
)

const auditFixture = `{
  "auditReportVersion": 2,
  "vulnerabilities": {
    "lodash": {
      "name": "lodash",
      "severity": "critical",
      "via": [{"title": "Prototype Pollution", "url": "https://example.invalid/advisory/1"}],
      "range": "<4.17.21"
    },
    "minimist": {
      "name": "minimist",
      "severity": "high",
      "via": ["mkdirp"],
      "range": "<1.2.6"
    }
  },
  "metadata": {"vulnerabilities": {"critical": 1, "high": 1, "total": 2}}
}`

func TestParseAuditOutput(t *testing.T) {
	report, err := ParseAuditOutput(auditFixture)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Findings) != 2 {
		t.Fatalf("expected 2 findings, got %d", len(report.Findings))
	}
	// Findings are sorted by package name.
	if !strings.Contains(report.Findings[0].Title, "Prototype Pollution") {
		t.Errorf("expected advisory title in finding, got %q", report.Findings[0].Title)
	}
	if report.Findings[0].Severity != model.SeverityCritical {
		t.Errorf("expected critical, got %v", report.Findings[0].Severity)
	}
	if !strings.Contains(report.Findings[1].Title, "known vulnerability") {
		t.Errorf("expected fallback advisory title, got %q", report.Findings[1].Title)
	}
	if report.CountBySeverity(model.SeverityHigh) != 1 {
		t.Errorf("expected 1 high finding")
	}
}

func TestParseAuditOutputWithNoise(t *testing.T) {
	raw := "npm WARN audit something\n" + auditFixture
	report, err := ParseAuditOutput(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Findings) != 2 {
		t.Errorf("expected 2 findings, got %d", len(report.Findings))
	}
}

func TestParseAuditOutputDeterministic(t *testing.T) {
	a, err := ParseAuditOutput(auditFixture)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 10; i++ {
		b, err := ParseAuditOutput(auditFixture)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for j := range a.Findings {
			if a.Findings[j] != b.Findings[j] {
				t.Fatalf("parse not deterministic: %v vs %v", a.Findings[j], b.Findings[j])
			}
		}
	}
}

func TestParseAuditOutputMalformed(t *testing.T) {
	if _, err := ParseAuditOutput("npm ERR! network timeout"); err == nil {
		t.Fatal("expected error for non-JSON output")
	}
}

func TestParseLicenseOutput(t *testing.T) {
	raw := `{
	  "left-pad@1.3.0": {"licenses": "WTFPL"},
	  "copyleft-lib@2.0.0": {"licenses": "GPL-3.0-or-later"},
	  "dual-lib@1.0.0": {"licenses": ["MIT", "LGPL-2.1"]},
	  "mystery-lib@0.1.0": {"licenses": "UNKNOWN"},
	  "guessed-lib@0.2.0": {"licenses": "AGPL-3.0*"}
	}`
	report, err := ParseLicenseOutput(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Findings) != 4 {
		t.Fatalf("expected 4 findings (2 GPL-family, 1 LGPL, 1 unknown), got %d: %v",
			len(report.Findings), report.Findings)
	}
	if report.CountBySeverity(model.SeverityHigh) != 3 {
		t.Errorf("expected 3 copyleft findings at high severity")
	}
	if report.CountBySeverity(model.SeverityMedium) != 1 {
		t.Errorf("expected 1 unknown-license finding at medium severity")
	}
}

func TestParseCycleOutput(t *testing.T) {
	raw := "Processed 120 files\n" + `[["src/a.js","src/b.js","src/a.js"],["src/x.js","src/y.js"]]`
	report, err := ParseCycleOutput(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Findings) != 2 {
		t.Fatalf("expected 2 findings, got %d", len(report.Findings))
	}
	if report.Findings[0].Severity != model.SeverityHigh {
		t.Errorf("cycles should be high severity")
	}
	if !strings.Contains(report.Findings[0].Detail, "src/a.js -> src/b.js") {
		t.Errorf("expected cycle path in detail, got %q", report.Findings[0].Detail)
	}
}

func TestParseCycleOutputEmpty(t *testing.T) {
	report, err := ParseCycleOutput(`[]`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Findings) != 0 {
		t.Errorf("expected no findings, got %d", len(report.Findings))
	}
}

func TestParseLayeringOutput(t *testing.T) {
	raw := `{
	  "summary": {
	    "violations": [
	      {"from": "src/ui/view.ts", "to": "src/db/conn.ts",
	       "rule": {"name": "no-ui-to-db", "severity": "error"}},
	      {"from": "src/util/x.ts", "to": "src/ui/view.ts",
	       "rule": {"name": "no-util-to-ui", "severity": "warn"}}
	    ]
	  }
	}`
	report, err := ParseLayeringOutput(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Findings) != 2 {
		t.Fatalf("expected 2 findings, got %d", len(report.Findings))
	}
	if report.Findings[0].Severity != model.SeverityHigh {
		t.Errorf("error violations should map to high, got %v", report.Findings[0].Severity)
	}
	if report.Findings[1].Severity != model.SeverityMedium {
		t.Errorf("warn violations should map to medium, got %v", report.Findings[1].Severity)
	}
}

func TestParseOutdatedOutput(t *testing.T) {
	raw := `{
	  "lodash": {"current": "4.17.20", "wanted": "4.17.21", "latest": "4.17.21"},
	  "react": {"current": "17.0.2", "wanted": "17.0.2", "latest": "18.2.0"}
	}`
	report, err := ParseOutdatedOutput(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Findings) != 2 {
		t.Fatalf("expected 2 findings, got %d", len(report.Findings))
	}
	// Sorted order: lodash (patch behind, low) then react (major behind, medium).
	if report.Findings[0].Severity != model.SeverityLow {
		t.Errorf("patch-level lag should be low, got %v", report.Findings[0].Severity)
	}
	if report.Findings[1].Severity != model.SeverityMedium {
		t.Errorf("major-version lag should be medium, got %v", report.Findings[1].Severity)
	}
}
