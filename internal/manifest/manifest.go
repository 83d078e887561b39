// Package manifest parses pinned-dependency declarations out of the two
// supported manifest formats: pip-style "name == version" pin files and
// package.json dependency objects.
package manifest

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"
)

// Pin is one (name, version spec) pair extracted from a manifest.
type Pin struct {
	Name string
	Spec string
}

// pipLinePattern matches "name == version" with an optional environment
// marker after ';'. The version runs to the next whitespace or ';'.
var pipLinePattern = regexp.MustCompile(`^\s*([A-Za-z0-9_.-]+)\s*==\s*([^\s;]+)`)

// npmVersionPattern matches the first MAJOR.MINOR.PATCH (with optional
// pre-release or build suffix) inside an npm version-range expression.
var npmVersionPattern = regexp.MustCompile(`(\d+\.\d+\.\d+(?:[-+][0-9A-Za-z.-]+)?)`)

// ParsePip extracts the exact pins from a pip-style manifest. Blank lines,
// comment lines, and lines that do not match the pin pattern are skipped
// silently; order is preserved.
func ParsePip(content string) []Pin {
	var pins []Pin
	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		match := pipLinePattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		pins = append(pins, Pin{Name: match[1], Spec: match[2]})
	}
	return pins
}

// ParseNpm extracts the "dependencies" entries from a package.json document.
// Non-string values and names starting with one of the excluded prefixes are
// skipped. Malformed JSON or a missing/invalid dependencies field yields an
// empty list, never an error.
func ParseNpm(data []byte, excludedPrefixes []string) []Pin {
	var doc struct {
		Dependencies map[string]json.RawMessage `json:"dependencies"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil
	}

	names := make([]string, 0, len(doc.Dependencies))
	for name := range doc.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)

	var pins []Pin
	for _, name := range names {
		var spec string
		if err := json.Unmarshal(doc.Dependencies[name], &spec); err != nil {
			continue
		}
		if hasAnyPrefix(name, excludedPrefixes) {
			continue
		}
		pins = append(pins, Pin{Name: name, Spec: spec})
	}
	return pins
}

// ExtractNpmPinnedVersion returns the first exact version embedded in an npm
// version specifier, or "" when the specifier carries none (e.g.
// "workspace:*").
func ExtractNpmPinnedVersion(spec string) string {
	match := npmVersionPattern.FindStringSubmatch(spec)
	if match == nil {
		return ""
	}
	return match[1]
}

func hasAnyPrefix(name string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if prefix != "" && strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}
