// Package json provides JSON extraction utilities for parsing CLI tool output.
//
// Analysis tools in the npm ecosystem routinely interleave deprecation
// warnings, progress lines, or npm notices with the JSON document they print
// to stdout. This package extracts the JSON portion from such output.
package json

import (
	"encoding/json"
	"fmt"
	"strings"
)

// extract finds and returns the JSON portion of raw tool output.
// It handles the common patterns:
// 1. Pure JSON output - returns the full string
// 2. JSON object or array preceded/followed by log noise - finds the
//    outermost '{'..'}' or '['..']' span that parses
//
// Limitations:
// - Uses outermost delimiter matching, not full JSON scanning
// - May fail if unbalanced braces appear inside log noise
func extract(raw string) (string, error) {
	raw = strings.TrimSpace(raw)

	// Try the full output first.
	var probe interface{}
	if err := json.Unmarshal([]byte(raw), &probe); err == nil {
		return raw, nil
	}

	for _, pair := range [][2]string{{"{", "}"}, {"[", "]"}} {
		start := strings.Index(raw, pair[0])
		end := strings.LastIndex(raw, pair[1])
		if start == -1 || end <= start {
			continue
		}
		candidate := raw[start : end+1]
		if err := json.Unmarshal([]byte(candidate), &probe); err == nil {
			return candidate, nil
		}
	}

	preview := raw
	if len(preview) > 100 {
		preview = preview[:100] + "..."
	}
	return "", fmt.Errorf("no valid JSON in tool output: %q", preview)
}

// Decode extracts the JSON portion of raw tool output and unmarshals it.
func Decode[T any](raw string) (T, error) {
	var result T
	doc, err := extract(raw)
	if err != nil {
		return result, err
	}
	if err := json.Unmarshal([]byte(doc), &result); err != nil {
		return result, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return result, nil
}

