package calendar

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/rugby-club-api/internal/models"
)

func TestBuildMonthGridShape(t *testing.T) {
	cases := []struct {
		year  int
		month time.Month
		days  int
	}{
		{2023, time.February, 28},
		{2024, time.February, 29},
		{2000, time.February, 29},
		{2100, time.February, 28},
		{2024, time.April, 30},
		{2024, time.August, 31},
	}
	for _, tc := range cases {
		grid := BuildMonth(tc.year, tc.month, nil, time.UTC)
		assert.Equal(t, tc.days, grid.DaysInMonth, "%d-%02d", tc.year, tc.month)
		assert.Zero(t, len(grid.Cells)%7, "%d-%02d", tc.year, tc.month)

		current := 0
		for _, cell := range grid.Cells {
			if cell.IsCurrentMonth {
				current++
			}
		}
		assert.Equal(t, tc.days, current)
		assert.Equal(t, grid.LeadingDays+grid.DaysInMonth+grid.TrailingDays, len(grid.Cells))
		assert.Len(t, grid.Weeks(), len(grid.Cells)/7)
	}
}

func TestBuildMonthEveryMonthIsWholeWeeks(t *testing.T) {
	for year := 1999; year <= 2030; year++ {
		for month := time.January; month <= time.December; month++ {
			grid := BuildMonth(year, month, nil, time.UTC)
			require.Zero(t, len(grid.Cells)%7)
			require.Equal(t, int(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Weekday()), grid.FirstWeekday)
			require.Less(t, grid.LeadingDays, 7)
			require.Less(t, grid.TrailingDays, 7)
		}
	}
}

func TestBuildMonthDecemberTrailsIntoNextYear(t *testing.T) {
	grid := BuildMonth(2024, time.December, nil, time.UTC)

	require.Equal(t, 0, grid.LeadingDays)
	require.Equal(t, 4, grid.TrailingDays)
	last := grid.Cells[len(grid.Cells)-1]
	assert.Equal(t, "2025-01-04", last.Date)
	assert.False(t, last.IsCurrentMonth)
	for _, cell := range grid.Cells[len(grid.Cells)-grid.TrailingDays:] {
		assert.Equal(t, "2025-01", cell.Date[:7])
	}
}

func TestBuildMonthJanuaryLeadsFromPreviousYear(t *testing.T) {
	grid := BuildMonth(2025, time.January, nil, time.UTC)

	require.Equal(t, 3, grid.LeadingDays)
	assert.Equal(t, "2024-12-29", grid.Cells[0].Date)
	assert.Equal(t, 29, grid.Cells[0].Day)
	assert.Equal(t, "2024-12-31", grid.Cells[2].Date)
	assert.Equal(t, "2025-01-01", grid.Cells[3].Date)
	assert.True(t, grid.Cells[3].IsCurrentMonth)
}

func TestBuildMonthNormalisesOutOfRangeMonth(t *testing.T) {
	grid := BuildMonth(2024, time.Month(13), nil, time.UTC)

	assert.Equal(t, 2025, grid.Year)
	assert.Equal(t, time.January, grid.Month)
}

func TestBuildMonthBucketsByCalendarDay(t *testing.T) {
	activities := []models.Activity{
		{ID: "morning", Date: time.Date(2024, 12, 10, 8, 0, 0, 0, time.UTC)},
		{ID: "evening", Date: time.Date(2024, 12, 10, 21, 0, 0, 0, time.UTC)},
		{ID: "nye", Date: time.Date(2024, 12, 31, 23, 30, 0, 0, time.UTC)},
	}

	grid := BuildMonth(2024, time.December, activities, time.UTC)
	byDate := map[string]Cell{}
	for _, cell := range grid.Cells {
		byDate[cell.Date] = cell
	}
	require.Len(t, byDate["2024-12-10"].Activities, 2)
	assert.Equal(t, "morning", byDate["2024-12-10"].Activities[0].ID)
	assert.Len(t, byDate["2024-12-31"].Activities, 1)
	assert.NotNil(t, byDate["2024-12-11"].Activities)
	assert.Empty(t, byDate["2024-12-11"].Activities)

	plusOne := time.FixedZone("UTC+1", 3600)
	shifted := BuildMonth(2024, time.December, activities, plusOne)
	for _, cell := range shifted.Cells {
		if cell.Date == "2024-12-31" {
			require.Len(t, cell.Activities, 1)
			assert.Equal(t, "nye", cell.Activities[0].ID)
		}
		if cell.Date == "2025-01-01" {
			assert.Empty(t, cell.Activities)
		}
	}
}

func TestBuildMonthKeepsStoredDatesWestOfUTC(t *testing.T) {
	eastern := time.FixedZone("EDT", -4*3600)
	activities := []models.Activity{
		{ID: "a1", Date: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)},
		{ID: "a2", Date: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
	}

	grid := BuildMonth(2026, time.March, activities, eastern)
	byDate := map[string]Cell{}
	for _, cell := range grid.Cells {
		byDate[cell.Date] = cell
	}
	require.Len(t, byDate["2026-03-10"].Activities, 1)
	assert.Equal(t, "a1", byDate["2026-03-10"].Activities[0].ID)
	assert.Empty(t, byDate["2026-03-09"].Activities)
	require.Len(t, byDate["2026-03-01"].Activities, 1)
	assert.Empty(t, byDate["2026-02-28"].Activities)
}

func TestAdjacentMonths(t *testing.T) {
	y, m := PreviousMonth(2024, time.January)
	assert.Equal(t, 2023, y)
	assert.Equal(t, time.December, m)

	y, m = NextMonth(2024, time.December)
	assert.Equal(t, 2025, y)
	assert.Equal(t, time.January, m)

	y, m = NextMonth(2024, time.June)
	assert.Equal(t, 2024, y)
	assert.Equal(t, time.July, m)
}

func TestGridRangeCoversFillers(t *testing.T) {
	start, end := GridRange(2025, time.January, time.UTC)

	assert.Equal(t, time.Date(2024, 12, 29, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 2, 2, 0, 0, 0, 0, time.UTC), end)
}

func TestMonthGridEncodesEachActivityOnce(t *testing.T) {
	activities := []models.Activity{{ID: "derby-day", Date: time.Date(2024, 12, 10, 0, 0, 0, 0, time.UTC)}}
	grid := BuildMonth(2024, time.December, activities, time.UTC)

	payload, err := json.Marshal(grid)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(payload), "derby-day"))
	assert.NotContains(t, string(payload), `"weeks"`)

	var decoded MonthGrid
	require.NoError(t, json.Unmarshal(payload, &decoded))
	weeks := decoded.Weeks()
	require.Len(t, weeks, len(grid.Cells)/7)
	require.Len(t, weeks[1], 7)
	assert.Equal(t, grid.Cells[7].Date, weeks[1][0].Date)
	assert.Equal(t, grid.Cells[13].Date, weeks[1][6].Date)
}
