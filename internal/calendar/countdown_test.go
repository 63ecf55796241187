package calendar

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeDecomposesRemainingTime(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	state := Compute(now.Add(time.Hour+2*time.Minute+3*time.Second), now)
	assert.Equal(t, CountdownState{Hours: 1, Minutes: 2, Seconds: 3, Target: now.Add(time.Hour + 2*time.Minute + 3*time.Second)}, state)

	state = Compute(now.Add(50*time.Hour+59*time.Second+999*time.Millisecond), now)
	assert.Equal(t, int64(2), state.Days)
	assert.Equal(t, int64(2), state.Hours)
	assert.Equal(t, int64(0), state.Minutes)
	assert.Equal(t, int64(59), state.Seconds)
	assert.False(t, state.IsExpired)
}

func TestComputeExpiresWhenTargetReached(t *testing.T) {
	target := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, Compute(target, target).IsExpired)
	assert.True(t, Compute(target, target.Add(time.Second)).IsExpired)

	almost := Compute(target, target.Add(-time.Millisecond))
	assert.False(t, almost.IsExpired)
	assert.Zero(t, almost.Seconds)

	expired := Compute(target, target.Add(time.Hour))
	assert.Zero(t, expired.Days+expired.Hours+expired.Minutes+expired.Seconds)
}

func TestParseClock(t *testing.T) {
	cases := []struct {
		raw    string
		hour   int
		minute int
		ok     bool
	}{
		{"18:30", 18, 30, true},
		{"00:00", 0, 0, true},
		{"07:05:00", 7, 5, true},
		{" 09:15 ", 9, 15, true},
		{"24:00", 0, 0, false},
		{"12:60", 0, 0, false},
		{"9:15", 0, 0, false},
		{"noon", 0, 0, false},
		{"", 0, 0, false},
	}
	for _, tc := range cases {
		h, m, ok := ParseClock(tc.raw)
		assert.Equal(t, tc.ok, ok, tc.raw)
		assert.Equal(t, tc.hour, h, tc.raw)
		assert.Equal(t, tc.minute, m, tc.raw)
	}
}

func TestTargetUsesClockOrMidnight(t *testing.T) {
	date := time.Date(2024, 9, 14, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2024, 9, 14, 15, 45, 0, 0, time.UTC), Target(date, "15:45", time.UTC))
	assert.Equal(t, date, Target(date, "", time.UTC))
	assert.Equal(t, date, Target(date, "25:99", time.UTC))

	plusTwo := time.FixedZone("UTC+2", 2*3600)
	late := time.Date(2024, 9, 14, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 9, 14, 10, 0, 0, 0, plusTwo), Target(late, "10:00", plusTwo))
}

func TestTargetKeepsStoredDateWestOfUTC(t *testing.T) {
	eastern := time.FixedZone("EDT", -4*3600)
	stored := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	target := Target(stored, "18:00", eastern)
	assert.Equal(t, time.Date(2026, 3, 10, 18, 0, 0, 0, eastern), target)
	assert.Equal(t, "2026-03-10", DayKey(target, eastern))
}

func TestWatchStopsAfterExpiry(t *testing.T) {
	target := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	var calls atomic.Int64
	clock := func() time.Time {
		return target.Add(time.Duration(calls.Add(1)-3) * time.Second)
	}

	states := collect(t, Watch(context.Background(), target, time.Millisecond, clock))

	require.Len(t, states, 3)
	assert.Equal(t, int64(2), states[0].Seconds)
	assert.Equal(t, int64(1), states[1].Seconds)
	assert.True(t, states[2].IsExpired)
}

func TestWatchReleasesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := Watch(ctx, time.Now().Add(time.Hour), time.Millisecond, nil)

	first := <-ch
	assert.False(t, first.IsExpired)
	cancel()

	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("watch channel not closed after cancel")
		}
	}
}

func collect(t *testing.T, ch <-chan CountdownState) []CountdownState {
	t.Helper()
	var out []CountdownState
	deadline := time.After(time.Second)
	for {
		select {
		case state, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, state)
		case <-deadline:
			t.Fatal("watch did not finish")
			return nil
		}
	}
}
