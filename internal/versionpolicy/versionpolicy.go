// Package versionpolicy provides the ecosystem-aware version-comparison
// capability: stability classification, latest-stable selection, and
// deterministic version ordering.
package versionpolicy

import (
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	modsemver "golang.org/x/mod/semver"
)

// Selector is the version-comparison capability consumed by the staleness
// calculator. Implementations that cannot compare versions must fail closed:
// nothing is classified stable and selection returns empty so callers fall
// back to the registry's declared latest.
type Selector interface {
	// IsStable reports whether a version has no pre-release, post-release,
	// dev-release, or local-segment markers.
	IsStable(version string) bool
	// LatestStable returns the maximum stable version, or "" when none.
	LatestStable(versions []string) string
	// LatestStableSameMajor restricts LatestStable to versions sharing the
	// current version's major component. Returns "" when the current major
	// cannot be parsed or no candidate exists.
	LatestStableSameMajor(versions []string, current string) string
	// CanCompare reports whether real version comparison is available.
	CanCompare() bool
}

// PolicySemver selects the full semver-backed capability; PolicyRegistry
// selects the degraded capability that defers to registry-declared versions.
const (
	PolicySemver   = "semver"
	PolicyRegistry = "registry"
)

// NewSelector returns the Selector for the configured policy name. Unknown
// names fall back to the semver policy.
func NewSelector(policy string) Selector {
	if strings.EqualFold(policy, PolicyRegistry) {
		return RegistrySelector{}
	}
	return SemverSelector{}
}

// SemverSelector implements Selector with lenient semantic-version parsing.
// Versions that do not parse (PEP 440 post/dev/local forms included) are
// treated as unstable.
type SemverSelector struct{}

func (SemverSelector) CanCompare() bool { return true }

func (SemverSelector) IsStable(version string) bool {
	parsed, err := semver.NewVersion(version)
	if err != nil {
		return false
	}
	return parsed.Prerelease() == "" && parsed.Metadata() == ""
}

func (s SemverSelector) LatestStable(versions []string) string {
	return s.latestStableWhere(versions, func(*semver.Version) bool { return true })
}

func (s SemverSelector) LatestStableSameMajor(versions []string, current string) string {
	currentParsed, err := semver.NewVersion(current)
	if err != nil {
		return ""
	}
	major := currentParsed.Major()
	return s.latestStableWhere(versions, func(v *semver.Version) bool {
		return v.Major() == major
	})
}

// latestStableWhere walks the deterministically ordered version list and
// returns the first (hence maximum) stable version passing the filter.
// Equal parsed versions are indistinguishable here; the pre-sort makes the
// pick stable across runs.
func (s SemverSelector) latestStableWhere(versions []string, keep func(*semver.Version) bool) string {
	for _, version := range SortVersionsDescending(versions) {
		parsed, err := semver.NewVersion(version)
		if err != nil {
			continue
		}
		if parsed.Prerelease() != "" || parsed.Metadata() != "" {
			continue
		}
		if keep(parsed) {
			return version
		}
	}
	return ""
}

// RegistrySelector is the degraded capability used when version comparison
// is unavailable. It classifies nothing as stable and selects nothing, so
// the caller reports whatever the registry declares as latest.
type RegistrySelector struct{}

func (RegistrySelector) CanCompare() bool { return false }

func (RegistrySelector) IsStable(string) bool { return false }

func (RegistrySelector) LatestStable([]string) string { return "" }

func (RegistrySelector) LatestStableSameMajor([]string, string) string { return "" }

// SortVersionsDescending returns a copy of the versions sorted newest first.
// Valid semver strings are ordered semantically; anything else falls back to
// string comparison.
func SortVersionsDescending(versions []string) []string {
	sorted := make([]string, len(versions))
	copy(sorted, versions)

	sort.Slice(sorted, func(i, j int) bool {
		v1 := normalizeVersion(sorted[i])
		v2 := normalizeVersion(sorted[j])

		// Use semver comparison if both are valid semver
		if modsemver.IsValid(v1) && modsemver.IsValid(v2) {
			if cmp := modsemver.Compare(v1, v2); cmp != 0 {
				return cmp > 0
			}
			// Equal parsed versions: break the tie on the raw string so the
			// order does not depend on map iteration.
			return sorted[i] > sorted[j]
		}

		// Fall back to string comparison
		return sorted[i] > sorted[j]
	})
	return sorted
}

// normalizeVersion ensures version has 'v' prefix for semver compatibility
func normalizeVersion(version string) string {
	if strings.HasPrefix(version, "v") {
		return version
	}
	return "v" + version
}
