// License scan adapter - wraps `license-checker`.
//
// Information Hiding:
// - license-checker JSON format hidden behind ParseLicenseOutput
// - Copyleft classification table internalized

package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	jsonutil "github.com/richinex/toolvault/internal/json"
	"github.com/richinex/toolvault/model"
)

// Copyleft license families that trigger a finding. Matching is by prefix so
// "GPL-3.0-or-later" and friends are covered.
var copyleftPrefixes = []string{"GPL", "AGPL", "LGPL", "SSPL"}

// LicenseScan inventories dependency licenses and flags copyleft or
// unresolvable ones.
type LicenseScan struct{}

// NewLicenseScan creates the license-scan adapter.
func NewLicenseScan() *LicenseScan {
	return &LicenseScan{}
}

// ID returns the stable tool identifier.
func (a *LicenseScan) ID() string {
	return ToolLicenseScan
}

// Applicable requires an installed dependency tree; license-checker walks
// node_modules rather than the lockfile.
func (a *LicenseScan) Applicable(repoPath string) error {
	if err := requireFile(repoPath, "package.json"); err != nil {
		return err
	}
	return requireFile(repoPath, "node_modules")
}

// Run invokes `license-checker --json` and parses the inventory.
func (a *LicenseScan) Run(ctx context.Context, repoPath string) (model.Report, string, error) {
	res, err := runCommand(ctx, repoPath, "license-checker", "--json")
	if err != nil {
		return model.Report{}, "", err
	}
	if res.ExitCode != 0 {
		return model.Report{}, res.Stdout, fmt.Errorf("license-checker exited with code %d: %s", res.ExitCode, firstLine(res.Stderr))
	}
	report, parseErr := ParseLicenseOutput(res.Stdout)
	if parseErr != nil {
		return model.Report{}, res.Stdout, parseErr
	}
	return report, res.Stdout, nil
}

type licenseEntry struct {
	Licenses   interface{} `json:"licenses"` // string or []string
	Repository string      `json:"repository"`
}

// ParseLicenseOutput converts raw `license-checker --json` output into a
// report. Only copyleft and unresolvable licenses become findings; the rest
// of the inventory is noise for every consumer role. Pure.
func ParseLicenseOutput(raw string) (model.Report, error) {
	parsed, err := jsonutil.Decode[map[string]licenseEntry](raw)
	if err != nil {
		return model.Report{}, fmt.Errorf("malformed license-checker output: %w", err)
	}

	pkgs := make([]string, 0, len(parsed))
	for pkg := range parsed {
		pkgs = append(pkgs, pkg)
	}
	sort.Strings(pkgs)

	var findings []model.Finding
	for _, pkg := range pkgs {
		for _, lic := range licenseStrings(parsed[pkg].Licenses) {
			switch {
			case isCopyleft(lic):
				findings = append(findings, model.Finding{
					Title:    fmt.Sprintf("%s is licensed %s", pkg, lic),
					Severity: model.SeverityHigh,
					Detail:   "copyleft license in the dependency tree",
				})
			case lic == "UNKNOWN" || lic == "UNLICENSED":
				findings = append(findings, model.Finding{
					Title:    fmt.Sprintf("%s has unresolvable license", pkg),
					Severity: model.SeverityMedium,
					Detail:   "license could not be determined",
				})
			}
		}
	}
	return model.Report{Findings: findings}, nil
}

// licenseStrings flattens the licenses field, which license-checker emits as
// either a single string or an array.
func licenseStrings(v interface{}) []string {
	switch lic := v.(type) {
	case string:
		return []string{lic}
	case []interface{}:
		var out []string
		for _, l := range lic {
			if s, ok := l.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func isCopyleft(license string) bool {
	// A trailing "*" means license-checker guessed from the README.
	license = strings.TrimSuffix(license, "*")
	for _, prefix := range copyleftPrefixes {
		if strings.HasPrefix(license, prefix) {
			return true
		}
	}
	return false
}
