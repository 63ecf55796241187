package ical

import (
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderSerializesEntriesInOrder(t *testing.T) {
	b := NewBuilder("Harbour RFC", "harbourrfc.test", WithReminder(time.Hour), WithTimezone("Europe/London"))
	kickoff := time.Date(2024, 9, 14, 15, 0, 0, 0, time.UTC)
	b.Add(
		Entry{UID: "match-2", Summary: "Harbour vs Quay", Start: kickoff.AddDate(0, 0, 7), Location: "Harbour Park"},
		Entry{UID: "match-1", Summary: "Harbour vs Dock", Start: kickoff, End: kickoff.Add(2 * time.Hour), Categories: []string{"Fixture"}},
	)
	require.Equal(t, 2, b.Len())

	out := b.Serialize(kickoff.Add(-24 * time.Hour))

	assert.Contains(t, out, "X-WR-CALNAME:Harbour RFC")
	assert.Contains(t, out, "UID:match-1@harbourrfc.test")
	assert.Contains(t, out, "TRIGGER:-PT60M")
	assert.Less(t, strings.Index(out, "match-1@"), strings.Index(out, "match-2@"))

	cal, err := ics.ParseCalendar(strings.NewReader(out))
	require.NoError(t, err)
	events := cal.Events()
	require.Len(t, events, 2)

	start, err := events[1].GetStartAt()
	require.NoError(t, err)
	end, err := events[1].GetEndAt()
	require.NoError(t, err)
	assert.Equal(t, time.Hour, end.Sub(start))
}

func TestBuilderAllDayEntriesSkipAlarms(t *testing.T) {
	b := NewBuilder("Club", "", WithReminder(30*time.Minute))
	b.Add(Entry{UID: "fun-day", Summary: "Family fun day", Start: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), AllDay: true})

	out := b.Serialize(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	assert.Contains(t, out, "UID:fun-day")
	assert.NotContains(t, out, "BEGIN:VALARM")
	assert.Contains(t, out, "VALUE=DATE")
	assert.Contains(t, out, "20240701")
}
