// Package calendar derives the month grid, countdown and display labels used
// by the activity calendar.
package calendar

import (
	"time"

	"github.com/noah-isme/rugby-club-api/internal/models"
)

// DateLayout is the ISO date format used for cell keys.
const DateLayout = "2006-01-02"

// Cell is one day square of a month grid.
type Cell struct {
	Day            int               `json:"day"`
	Date           string            `json:"date"`
	IsCurrentMonth bool              `json:"is_current_month"`
	Activities     []models.Activity `json:"activities"`
}

// MonthGrid is the full Sunday-first grid for a month including filler days.
type MonthGrid struct {
	Year         int        `json:"year"`
	Month        time.Month `json:"month"`
	DaysInMonth  int        `json:"days_in_month"`
	FirstWeekday int        `json:"first_weekday"`
	LeadingDays  int        `json:"leading_days"`
	TrailingDays int        `json:"trailing_days"`
	Cells        []Cell     `json:"cells"`
}

// Weeks splits the cells into rows of seven, Sunday first.
func (g MonthGrid) Weeks() [][]Cell {
	weeks := make([][]Cell, 0, len(g.Cells)/7)
	for i := 0; i+7 <= len(g.Cells); i += 7 {
		weeks = append(weeks, g.Cells[i:i+7])
	}
	return weeks
}

// DaysInMonth returns the Gregorian length of the month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// PreviousMonth returns the month before the given one, rolling the year in January.
func PreviousMonth(year int, month time.Month) (int, time.Month) {
	if month == time.January {
		return year - 1, time.December
	}
	return year, month - 1
}

// NextMonth returns the month after the given one, rolling the year in December.
func NextMonth(year int, month time.Month) (int, time.Month) {
	if month == time.December {
		return year + 1, time.January
	}
	return year, month + 1
}

// MonthRange returns the first instant of the month and of the following month in loc.
func MonthRange(year int, month time.Month, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}

// GridRange returns the span covered by the grid including filler days, end exclusive.
func GridRange(year int, month time.Month, loc *time.Location) (time.Time, time.Time) {
	start, end := MonthRange(year, month, loc)
	leading := int(start.Weekday())
	trailing := (7 - (leading+DaysInMonth(start.Year(), start.Month()))%7) % 7
	return start.AddDate(0, 0, -leading), end.AddDate(0, 0, trailing)
}

// BuildMonth lays out the month containing (year, month) and buckets activities
// by their calendar date. Months outside 1..12 are normalised.
func BuildMonth(year int, month time.Month, activities []models.Activity, loc *time.Location) MonthGrid {
	if loc == nil {
		loc = time.UTC
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	year, month = first.Year(), first.Month()

	days := DaysInMonth(year, month)
	leading := int(first.Weekday())
	trailing := (7 - (leading+days)%7) % 7
	buckets := bucketByDay(activities)

	cells := make([]Cell, 0, leading+days+trailing)

	prevYear, prevMonth := PreviousMonth(year, month)
	prevDays := DaysInMonth(prevYear, prevMonth)
	for day := prevDays - leading + 1; day <= prevDays; day++ {
		cells = append(cells, newCell(prevYear, prevMonth, day, false, buckets))
	}
	for day := 1; day <= days; day++ {
		cells = append(cells, newCell(year, month, day, true, buckets))
	}
	nextYear, nextMonth := NextMonth(year, month)
	for day := 1; day <= trailing; day++ {
		cells = append(cells, newCell(nextYear, nextMonth, day, false, buckets))
	}

	return MonthGrid{
		Year:         year,
		Month:        month,
		DaysInMonth:  days,
		FirstWeekday: leading,
		LeadingDays:  leading,
		TrailingDays: trailing,
		Cells:        cells,
	}
}

// DayKey formats the instant t as the ISO calendar date it falls on in loc.
func DayKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DateLayout)
}

// DateKey formats a stored calendar date. The date is read from the value's
// own wall clock and never shifted into another zone: DATE columns arrive as
// UTC midnight.
func DateKey(date time.Time) string {
	return date.Format(DateLayout)
}

// CalendarDay places the calendar date carried by date at midnight in loc.
func CalendarDay(date time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
}

func newCell(year int, month time.Month, day int, current bool, buckets map[string][]models.Activity) Cell {
	key := time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Format(DateLayout)
	items := buckets[key]
	if items == nil {
		items = []models.Activity{}
	}
	return Cell{Day: day, Date: key, IsCurrentMonth: current, Activities: items}
}

func bucketByDay(activities []models.Activity) map[string][]models.Activity {
	buckets := make(map[string][]models.Activity, len(activities))
	for _, activity := range activities {
		key := DateKey(activity.Date)
		buckets[key] = append(buckets[key], activity)
	}
	return buckets
}
