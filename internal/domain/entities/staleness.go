package entities

import (
	"sort"
	"time"
)

// StalenessThresholdDays is the fixed day-count after which a dependency
// release is considered alert-worthy (roughly two years minus two months).
const StalenessThresholdDays = 2*365 - 2*31

// ResolvedVersionInfo is the outcome of resolving one DependencyRecord
// against registry metadata. Any field may be unset when the fetch failed,
// the pinned version is unknown to the registry, or no artifact carried a
// publish timestamp.
type ResolvedVersionInfo struct {
	CurrentVersion     string
	CurrentReleaseDate *time.Time
	LatestVersion      string
	LatestReleaseDate  *time.Time
	LookupVersion      string // exact version used for the approval-ledger lookup
}

// StalenessRow is a resolved dependency with its derived day metrics.
// Every derived field is nil whenever one of its date inputs is nil.
type StalenessRow struct {
	Name               string
	Ecosystem          Ecosystem
	CurrentVersion     string
	CurrentReleaseDate *time.Time
	LatestVersion      string
	LatestReleaseDate  *time.Time
	DaysDifference     *int // latest release date - current release date (may be negative)
	DaysSinceLatest    *int // today - latest release date
	DaysSinceCurrent   *int // today - current release date
	LookupVersion      string
}

// NewStalenessRow derives the day metrics for one resolved dependency.
// 'today' must be a DateOnly value.
func NewStalenessRow(record DependencyRecord, info ResolvedVersionInfo, today time.Time) StalenessRow {
	row := StalenessRow{
		Name:               record.Name,
		Ecosystem:          record.Ecosystem,
		CurrentVersion:     info.CurrentVersion,
		CurrentReleaseDate: info.CurrentReleaseDate,
		LatestVersion:      info.LatestVersion,
		LatestReleaseDate:  info.LatestReleaseDate,
		LookupVersion:      info.LookupVersion,
	}

	if info.CurrentReleaseDate != nil && info.LatestReleaseDate != nil {
		diff := DaysBetween(*info.CurrentReleaseDate, *info.LatestReleaseDate)
		row.DaysDifference = &diff
	}
	if info.LatestReleaseDate != nil {
		since := DaysBetween(*info.LatestReleaseDate, today)
		row.DaysSinceLatest = &since
	}
	if info.CurrentReleaseDate != nil {
		since := DaysBetween(*info.CurrentReleaseDate, today)
		row.DaysSinceCurrent = &since
	}

	return row
}

// IsAlert reports whether the row is stale: the pinned release is older than
// the staleness threshold and a genuinely newer release exists.
func (r StalenessRow) IsAlert() bool {
	return r.DaysSinceCurrent != nil && *r.DaysSinceCurrent > StalenessThresholdDays &&
		r.DaysDifference != nil && *r.DaysDifference > 0
}

// IsZeroDiff reports whether the row qualifies for the replace/remove view:
// the pin already matches the latest release, but that release itself has
// gone stale, suggesting the package line is abandoned.
func (r StalenessRow) IsZeroDiff() bool {
	return r.DaysDifference != nil && *r.DaysDifference == 0 &&
		r.DaysSinceLatest != nil && *r.DaysSinceLatest > StalenessThresholdDays
}

// SortStalenessRows orders rows descending by DaysSinceLatest, with rows
// lacking that value sorted last.
func SortStalenessRows(rows []StalenessRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		return lessDaysNilFirst(rows[j].DaysSinceLatest, rows[i].DaysSinceLatest)
	})
}

// lessDaysNilFirst reports whether 'a' orders strictly before 'b' when
// sorting ascending with nil treated as below every numeric value. Callers
// swap the arguments to obtain the descending, nil-last order.
func lessDaysNilFirst(a, b *int) bool {
	switch {
	case a == nil:
		return b != nil
	case b == nil:
		return false
	default:
		return *a < *b
	}
}
