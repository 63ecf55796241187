package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/rugby-club-api/internal/models"
)

func intPtr(v int) *int { return &v }

func TestCapacityLabel(t *testing.T) {
	cases := []struct {
		name  string
		count int
		max   *int
		want  string
	}{
		{"unlimited", 500, nil, CapacityNoLimit},
		{"full", 10, intPtr(10), CapacityFull},
		{"over full", 12, intPtr(10), CapacityFull},
		{"eighty percent", 8, intPtr(10), CapacityAlmostFull},
		{"just below threshold", 7, intPtr(10), CapacityAvailable},
		{"empty", 0, intPtr(10), CapacityAvailable},
		{"odd max threshold", 4, intPtr(5), CapacityAlmostFull},
		{"odd max below", 3, intPtr(5), CapacityAvailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CapacityLabel(tc.count, tc.max))
		})
	}
}

func TestTemporalLabel(t *testing.T) {
	now := time.Date(2024, 6, 15, 14, 0, 0, 0, time.UTC)

	assert.Equal(t, StatusToday, TemporalLabel(time.Date(2024, 6, 15, 8, 0, 0, 0, time.UTC), now, time.UTC))
	assert.Equal(t, StatusToday, TemporalLabel(time.Date(2024, 6, 15, 20, 0, 0, 0, time.UTC), now, time.UTC))
	assert.Equal(t, StatusToday, TemporalLabel(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), now, time.UTC))
	assert.Equal(t, StatusPast, TemporalLabel(time.Date(2024, 6, 14, 23, 59, 0, 0, time.UTC), now, time.UTC))
	assert.Equal(t, StatusUpcoming, TemporalLabel(time.Date(2024, 6, 16, 0, 0, 0, 0, time.UTC), now, time.UTC))
}

func TestTemporalLabelRespectsLocation(t *testing.T) {
	now := time.Date(2024, 6, 15, 23, 30, 0, 0, time.UTC)
	date := time.Date(2024, 6, 16, 0, 30, 0, 0, time.UTC)

	assert.Equal(t, StatusUpcoming, TemporalLabel(date, now, time.UTC))
	assert.Equal(t, StatusToday, TemporalLabel(date, now, time.FixedZone("UTC+2", 2*3600)))
}

func TestTemporalLabelKeepsStoredDateWestOfUTC(t *testing.T) {
	eastern := time.FixedZone("EDT", -4*3600)
	stored := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, StatusToday, TemporalLabel(stored, time.Date(2026, 3, 10, 12, 0, 0, 0, eastern), eastern))
	assert.Equal(t, StatusToday, TemporalLabel(stored, time.Date(2026, 3, 10, 23, 30, 0, 0, eastern), eastern))
	assert.Equal(t, StatusUpcoming, TemporalLabel(stored, time.Date(2026, 3, 9, 21, 0, 0, 0, eastern), eastern))
	assert.Equal(t, StatusPast, TemporalLabel(stored, time.Date(2026, 3, 11, 0, 30, 0, 0, eastern), eastern))
}

func TestPresent(t *testing.T) {
	now := time.Date(2024, 6, 15, 14, 0, 0, 0, time.UTC)
	clock := "18:30"
	activity := models.Activity{
		ID:               "a1",
		Title:            "Junior skills clinic",
		Date:             time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		StartTime:        &clock,
		MaxParticipants:  intPtr(20),
		ParticipantCount: 17,
	}

	detail := Present(activity, now, time.UTC)

	assert.Equal(t, CapacityAlmostFull, detail.CapacityLabel)
	assert.Equal(t, StatusToday, detail.StatusLabel)
	require.NotNil(t, detail.SpotsLeft)
	assert.Equal(t, 3, *detail.SpotsLeft)
	assert.Equal(t, time.Date(2024, 6, 15, 18, 30, 0, 0, time.UTC), detail.StartsAt)
	assert.Equal(t, int64(4), detail.Countdown.Hours)
	assert.Equal(t, int64(30), detail.Countdown.Minutes)
	assert.Equal(t, "a1", detail.ID)
}

func TestPresentLocalizedAndUnlimited(t *testing.T) {
	now := time.Date(2024, 6, 15, 14, 0, 0, 0, time.UTC)
	activity := models.Activity{ID: "a2", Date: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), ParticipantCount: 40}

	detail := PresentLocalized(activity, now, time.UTC, "fr")

	assert.Equal(t, CapacityNoLimit, detail.CapacityLabel)
	assert.Equal(t, "Sans limite", detail.CapacityText)
	assert.Equal(t, StatusPast, detail.StatusLabel)
	assert.Equal(t, "Passé", detail.StatusText)
	assert.Nil(t, detail.SpotsLeft)
	assert.True(t, detail.Countdown.IsExpired)
}

func TestTranslateFallsBackToLabel(t *testing.T) {
	assert.Equal(t, CapacityFull, Translate("de", CapacityFull))
	assert.Equal(t, "Completo", Translate("ES", CapacityFull))
	assert.True(t, SupportedLocale("en"))
	assert.False(t, SupportedLocale("de"))
}
