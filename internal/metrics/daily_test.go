package metrics_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenforge/sage/internal/metrics"
)

func newDaily(t *testing.T, dir string) *metrics.Daily {
	t.Helper()
	d, err := metrics.NewDaily(dir)
	require.NoError(t, err)
	return d
}

func TestDayOf(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*60*60)
	ts := time.Date(2026, 8, 29, 2, 0, 0, 0, loc)
	// 02:00 at UTC+5 is still the previous day in UTC.
	assert.Equal(t, "2026-08-28", metrics.DayOf(ts))
}

func TestDaily_AdditiveIncrements(t *testing.T) {
	d := newDaily(t, "")
	day := "2026-08-29"

	d.AddInteraction(day)
	d.AddInteraction(day)
	d.AddRating(day, true)
	d.AddRating(day, false)
	d.AddRating(day, false)
	d.AddGap(day)
	d.AddEntryCreated(day)
	d.AddEntryUpdated(day)

	row := d.Day(day)
	assert.Equal(t, int64(2), row.Interactions)
	assert.Equal(t, int64(1), row.PositiveRatings)
	assert.Equal(t, int64(2), row.NegativeRatings)
	assert.Equal(t, int64(1), row.GapsIdentified)
	assert.Equal(t, int64(1), row.EntriesCreated)
	assert.Equal(t, int64(1), row.EntriesUpdated)
}

func TestDaily_EmptyDayIsZeroRow(t *testing.T) {
	d := newDaily(t, "")
	row := d.Day("2026-01-01")
	assert.Equal(t, "2026-01-01", row.Day)
	assert.Zero(t, row.Interactions)
}

func TestDaily_AllOldestFirst(t *testing.T) {
	d := newDaily(t, "")
	d.AddInteraction("2026-08-29")
	d.AddInteraction("2026-08-27")
	d.AddInteraction("2026-08-28")

	all := d.All()
	require.Len(t, all, 3)
	assert.Equal(t, "2026-08-27", all[0].Day)
	assert.Equal(t, "2026-08-29", all[2].Day)
}

func TestDaily_WritersOverSharedDirComposeOneRow(t *testing.T) {
	dir := t.TempDir()
	day := "2026-08-29"

	// The API process counts interactions and minted entries; the learning
	// process counts ratings and gaps. Each sees the complete row.
	api := newDaily(t, dir)
	worker := newDaily(t, dir)

	api.AddInteraction(day)
	api.AddInteraction(day)
	api.AddEntryCreated(day)
	worker.AddRating(day, true)
	worker.AddRating(day, false)
	worker.AddGap(day)
	worker.AddEntryUpdated(day)

	for _, d := range []*metrics.Daily{api, worker} {
		row := d.Day(day)
		assert.Equal(t, int64(2), row.Interactions)
		assert.Equal(t, int64(1), row.PositiveRatings)
		assert.Equal(t, int64(1), row.NegativeRatings)
		assert.Equal(t, int64(1), row.GapsIdentified)
		assert.Equal(t, int64(1), row.EntriesCreated)
		assert.Equal(t, int64(1), row.EntriesUpdated)
	}
}

func TestDaily_AllMergesWritersPerDay(t *testing.T) {
	dir := t.TempDir()
	a := newDaily(t, dir)
	b := newDaily(t, dir)

	a.AddInteraction("2026-08-28")
	a.AddInteraction("2026-08-29")
	b.AddRating("2026-08-29", true)

	all := a.All()
	require.Len(t, all, 2)
	assert.Equal(t, "2026-08-28", all[0].Day)
	assert.Equal(t, int64(1), all[1].Interactions)
	assert.Equal(t, int64(1), all[1].PositiveRatings)
}

func TestDaily_RowsSurviveReopen(t *testing.T) {
	dir := t.TempDir()
	day := "2026-08-29"

	first := newDaily(t, dir)
	first.AddInteraction(day)
	first.AddGap(day)

	reopened := newDaily(t, dir)
	row := reopened.Day(day)
	assert.Equal(t, int64(1), row.Interactions)
	assert.Equal(t, int64(1), row.GapsIdentified)
}
