package calendar

import (
	"time"

	"github.com/noah-isme/rugby-club-api/internal/models"
)

// Capacity labels.
const (
	CapacityNoLimit    = "No Limit"
	CapacityFull       = "Full"
	CapacityAlmostFull = "Almost Full"
	CapacityAvailable  = "Available"
)

// Temporal labels.
const (
	StatusPast     = "Past"
	StatusToday    = "Today"
	StatusUpcoming = "Upcoming"
)

// ActivityDetail is an activity decorated with its derived display fields.
type ActivityDetail struct {
	models.Activity
	CapacityLabel string         `json:"capacity_label"`
	CapacityText  string         `json:"capacity_text"`
	StatusLabel   string         `json:"status_label"`
	StatusText    string         `json:"status_text"`
	SpotsLeft     *int           `json:"spots_left,omitempty"`
	StartsAt      time.Time      `json:"starts_at"`
	Countdown     CountdownState `json:"countdown"`
}

// CapacityLabel classifies how full an activity is. A nil max means unlimited.
// "Almost Full" starts at 80% of max.
func CapacityLabel(count int, max *int) string {
	if max == nil {
		return CapacityNoLimit
	}
	if count >= *max {
		return CapacityFull
	}
	if count*5 >= *max*4 {
		return CapacityAlmostFull
	}
	return CapacityAvailable
}

// TemporalLabel compares the calendar date carried by date with the day now
// falls on in loc. Any time on the current day is "Today".
func TemporalLabel(date, now time.Time, loc *time.Location) string {
	day, today := DateKey(date), DayKey(now, loc)
	switch {
	case day == today:
		return StatusToday
	case day < today:
		return StatusPast
	default:
		return StatusUpcoming
	}
}

// Present derives the labels, spots left and a countdown snapshot for activity.
func Present(activity models.Activity, now time.Time, loc *time.Location) ActivityDetail {
	return PresentLocalized(activity, now, loc, DefaultLocale)
}

// PresentLocalized is Present with label text translated for locale.
func PresentLocalized(activity models.Activity, now time.Time, loc *time.Location, locale string) ActivityDetail {
	capacity := CapacityLabel(activity.ParticipantCount, activity.MaxParticipants)
	status := TemporalLabel(activity.Date, now, loc)
	startsAt := Target(activity.Date, activity.Clock(), loc)

	detail := ActivityDetail{
		Activity:      activity,
		CapacityLabel: capacity,
		CapacityText:  Translate(locale, capacity),
		StatusLabel:   status,
		StatusText:    Translate(locale, status),
		StartsAt:      startsAt,
		Countdown:     Compute(startsAt, now),
	}
	if activity.MaxParticipants != nil {
		left := *activity.MaxParticipants - activity.ParticipantCount
		if left < 0 {
			left = 0
		}
		detail.SpotsLeft = &left
	}
	return detail
}
