package entities

import "time"

// RegistryMetadata is the normalized per-package registry document.
// Both registries are reduced to the same shape: a declared latest
// version and, per known version, the publish timestamps of every
// distribution artifact. A version with no recoverable timestamp keeps
// its key with an empty slice so it still counts as a release.
type RegistryMetadata struct {
	Ecosystem      Ecosystem
	DeclaredLatest string                 // info.version (pypi) or dist-tags.latest (npm)
	Releases       map[string][]time.Time // version -> artifact publish timestamps
}

// Versions returns every known release version.
func (m *RegistryMetadata) Versions() []string {
	versions := make([]string, 0, len(m.Releases))
	for version := range m.Releases {
		if version != "" {
			versions = append(versions, version)
		}
	}
	return versions
}

// ReleaseDate returns the date of the earliest published artifact for the
// given version, or nil when the version is unknown or carries no timestamp.
func (m *RegistryMetadata) ReleaseDate(version string) *time.Time {
	if version == "" {
		return nil
	}

	var earliest *time.Time
	for _, ts := range m.Releases[version] {
		ts := ts
		if earliest == nil || ts.Before(*earliest) {
			earliest = &ts
		}
	}
	if earliest == nil {
		return nil
	}

	date := DateOnly(*earliest)
	return &date
}

// DateOnly truncates a timestamp to its wall-clock date, pinned to UTC so
// day arithmetic is exact.
func DateOnly(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole days from 'from' to 'until'. Both inputs
// are expected to be DateOnly values.
func DaysBetween(from, until time.Time) int {
	return int(until.Sub(from).Hours() / 24) //nolint:mnd // hours per day
}
