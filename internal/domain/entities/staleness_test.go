package entities_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rios0rios0/pinreport/internal/domain/entities"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func datePtr(year int, month time.Month, day int) *time.Time {
	d := date(year, month, day)
	return &d
}

func intPtr(v int) *int {
	return &v
}

func TestNewStalenessRow(t *testing.T) {
	t.Parallel()

	t.Run("should derive all three day metrics when both dates resolve", func(t *testing.T) {
		t.Parallel()

		// given
		record := entities.DependencyRecord{Name: "requests", Ecosystem: entities.EcosystemPyPI}
		info := entities.ResolvedVersionInfo{
			CurrentVersion:     "2.25.0",
			CurrentReleaseDate: datePtr(2020, time.November, 1),
			LatestVersion:      "2.31.0",
			LatestReleaseDate:  datePtr(2023, time.May, 22),
			LookupVersion:      "2.25.0",
		}
		today := date(2023, time.June, 1)

		// when
		row := entities.NewStalenessRow(record, info, today)

		// then
		assert.Equal(t, 932, *row.DaysDifference)
		assert.Equal(t, 10, *row.DaysSinceLatest)
		assert.Equal(t, 942, *row.DaysSinceCurrent)
	})

	t.Run("should keep a negative difference when current postdates latest", func(t *testing.T) {
		t.Parallel()

		// given
		record := entities.DependencyRecord{Name: "pkg", Ecosystem: entities.EcosystemPyPI}
		info := entities.ResolvedVersionInfo{
			CurrentReleaseDate: datePtr(2024, time.March, 10),
			LatestReleaseDate:  datePtr(2024, time.March, 1),
		}

		// when
		row := entities.NewStalenessRow(record, info, date(2024, time.April, 1))

		// then
		assert.Equal(t, -9, *row.DaysDifference)
	})

	t.Run("should leave dependent metrics nil when a date is missing", func(t *testing.T) {
		t.Parallel()

		// given
		record := entities.DependencyRecord{Name: "pkg", Ecosystem: entities.EcosystemNpm}
		info := entities.ResolvedVersionInfo{
			LatestVersion:     "4.0.0",
			LatestReleaseDate: datePtr(2024, time.January, 1),
		}

		// when
		row := entities.NewStalenessRow(record, info, date(2024, time.February, 1))

		// then
		assert.Nil(t, row.DaysDifference)
		assert.Nil(t, row.DaysSinceCurrent)
		assert.Equal(t, 31, *row.DaysSinceLatest)
	})
}

func TestStalenessRowIsAlert(t *testing.T) {
	t.Parallel()

	t.Run("should alert when over threshold with a newer release", func(t *testing.T) {
		t.Parallel()

		// given
		row := entities.StalenessRow{
			DaysSinceCurrent: intPtr(entities.StalenessThresholdDays + 1),
			DaysDifference:   intPtr(1),
		}

		// when
		result := row.IsAlert()

		// then
		assert.True(t, result)
	})

	t.Run("should not alert exactly at the threshold", func(t *testing.T) {
		t.Parallel()

		// given
		row := entities.StalenessRow{
			DaysSinceCurrent: intPtr(entities.StalenessThresholdDays),
			DaysDifference:   intPtr(500),
		}

		// when
		result := row.IsAlert()

		// then
		assert.False(t, result)
	})

	t.Run("should not alert when already on the latest release", func(t *testing.T) {
		t.Parallel()

		// given
		row := entities.StalenessRow{
			DaysSinceCurrent: intPtr(entities.StalenessThresholdDays + 400),
			DaysDifference:   intPtr(0),
		}

		// when
		result := row.IsAlert()

		// then
		assert.False(t, result)
	})

	t.Run("should not alert when metrics are unresolved", func(t *testing.T) {
		t.Parallel()

		// given
		row := entities.StalenessRow{}

		// when
		result := row.IsAlert()

		// then
		assert.False(t, result)
	})
}

func TestStalenessRowIsZeroDiff(t *testing.T) {
	t.Parallel()

	t.Run("should flag an up-to-date pin whose latest release went stale", func(t *testing.T) {
		t.Parallel()

		// given
		row := entities.StalenessRow{
			DaysDifference:  intPtr(0),
			DaysSinceLatest: intPtr(entities.StalenessThresholdDays + 1),
		}

		// when
		result := row.IsZeroDiff()

		// then
		assert.True(t, result)
	})

	t.Run("should not flag a recent latest release", func(t *testing.T) {
		t.Parallel()

		// given
		row := entities.StalenessRow{
			DaysDifference:  intPtr(0),
			DaysSinceLatest: intPtr(30),
		}

		// when
		result := row.IsZeroDiff()

		// then
		assert.False(t, result)
	})

	t.Run("should not flag when a newer release exists", func(t *testing.T) {
		t.Parallel()

		// given
		row := entities.StalenessRow{
			DaysDifference:  intPtr(12),
			DaysSinceLatest: intPtr(entities.StalenessThresholdDays + 100),
		}

		// when
		result := row.IsZeroDiff()

		// then
		assert.False(t, result)
	})
}

func TestSortStalenessRows(t *testing.T) {
	t.Parallel()

	t.Run("should sort descending by days since latest with nil last", func(t *testing.T) {
		t.Parallel()

		// given
		rows := []entities.StalenessRow{
			{Name: "unresolved"},
			{Name: "fresh", DaysSinceLatest: intPtr(3)},
			{Name: "stale", DaysSinceLatest: intPtr(900)},
		}

		// when
		entities.SortStalenessRows(rows)

		// then
		assert.Equal(t, "stale", rows[0].Name)
		assert.Equal(t, "fresh", rows[1].Name)
		assert.Equal(t, "unresolved", rows[2].Name)
	})

	t.Run("should keep the original order between equal rows", func(t *testing.T) {
		t.Parallel()

		// given
		rows := []entities.StalenessRow{
			{Name: "first", DaysSinceLatest: intPtr(10)},
			{Name: "second", DaysSinceLatest: intPtr(10)},
		}

		// when
		entities.SortStalenessRows(rows)

		// then
		assert.Equal(t, "first", rows[0].Name)
		assert.Equal(t, "second", rows[1].Name)
	})
}

func TestDaysBetween(t *testing.T) {
	t.Parallel()

	t.Run("should count whole days across a DST boundary", func(t *testing.T) {
		t.Parallel()

		// given
		from := date(2024, time.March, 1)
		until := date(2024, time.April, 1)

		// when
		days := entities.DaysBetween(from, until)

		// then
		assert.Equal(t, 31, days)
	})

	t.Run("should be negative when until precedes from", func(t *testing.T) {
		t.Parallel()

		// given
		from := date(2024, time.June, 10)
		until := date(2024, time.June, 1)

		// when
		days := entities.DaysBetween(from, until)

		// then
		assert.Equal(t, -9, days)
	})
}
