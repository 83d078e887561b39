package commands

import (
	"strings"

	"github.com/rios0rios0/pinreport/internal/domain/entities"
	"github.com/rios0rios0/pinreport/internal/manifest"
	"github.com/rios0rios0/pinreport/internal/versionpolicy"
)

// resolveVersionInfo resolves one dependency record against its registry
// metadata: the release date of the pinned version, the latest stable
// version per the ecosystem's rules, and the version used for the
// approval-ledger lookup. A nil metadata document (failed fetch) leaves
// every resolved field unset; the record still produces a row.
func resolveVersionInfo(
	record entities.DependencyRecord,
	meta *entities.RegistryMetadata,
	sel versionpolicy.Selector,
	sameMajorPackages map[string]bool,
) entities.ResolvedVersionInfo {
	info := entities.ResolvedVersionInfo{CurrentVersion: record.VersionSpec}

	switch record.Ecosystem {
	case entities.EcosystemPyPI:
		// The ledger records the pin exactly as written.
		info.LookupVersion = record.VersionSpec
	case entities.EcosystemNpm:
		// Range specifiers are reduced to the embedded exact version; a
		// spec carrying none (e.g. "workspace:*") cannot be looked up.
		info.LookupVersion = manifest.ExtractNpmPinnedVersion(record.VersionSpec)
	}

	if meta == nil {
		return info
	}

	switch record.Ecosystem {
	case entities.EcosystemPyPI:
		info.CurrentReleaseDate = meta.ReleaseDate(record.VersionSpec)
		info.LatestVersion = latestPyPI(record, meta, sel, sameMajorPackages)
	case entities.EcosystemNpm:
		info.CurrentReleaseDate = meta.ReleaseDate(info.LookupVersion)
		info.LatestVersion = latestNpm(meta, sel)
	}
	info.LatestReleaseDate = meta.ReleaseDate(info.LatestVersion)

	return info
}

// latestPyPI picks the maximum stable release. Packages on the same-major
// list are resolved within the pinned major first, falling back to the
// global latest when that yields nothing. Without comparison capability the
// registry's declared current version is reported as-is.
func latestPyPI(
	record entities.DependencyRecord,
	meta *entities.RegistryMetadata,
	sel versionpolicy.Selector,
	sameMajorPackages map[string]bool,
) string {
	versions := meta.Versions()

	latest := ""
	if sameMajorPackages[strings.ToLower(record.Name)] {
		latest = sel.LatestStableSameMajor(versions, record.VersionSpec)
	}
	if latest == "" {
		latest = sel.LatestStable(versions)
	}
	if latest == "" && !sel.CanCompare() {
		latest = meta.DeclaredLatest
	}
	return latest
}

// latestNpm prefers the registry's declared latest tag when it is stable,
// otherwise scans the known versions for the maximum stable one. Without
// comparison capability the declared tag is reported as-is; with it, an
// unstable tag and no stable fallback yields no latest at all.
func latestNpm(meta *entities.RegistryMetadata, sel versionpolicy.Selector) string {
	if !sel.CanCompare() {
		return meta.DeclaredLatest
	}
	if meta.DeclaredLatest != "" && sel.IsStable(meta.DeclaredLatest) {
		return meta.DeclaredLatest
	}
	return sel.LatestStable(meta.Versions())
}
