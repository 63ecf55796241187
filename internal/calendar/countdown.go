package calendar

import (
	"context"
	"strconv"
	"strings"
	"time"
)

const (
	msPerDay    = 86400000
	msPerHour   = 3600000
	msPerMinute = 60000
	msPerSecond = 1000

	// DefaultClock is used when an activity has no valid start time.
	DefaultClock = "00:00"
)

// CountdownState is the remaining time until a target instant.
type CountdownState struct {
	Days      int64     `json:"days"`
	Hours     int64     `json:"hours"`
	Minutes   int64     `json:"minutes"`
	Seconds   int64     `json:"seconds"`
	IsExpired bool      `json:"is_expired"`
	Target    time.Time `json:"target"`
}

// ParseClock parses a 24h "HH:MM" string. A trailing ":SS" is tolerated and ignored.
func ParseClock(raw string) (hour, minute int, ok bool) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, 0, false
	}
	if len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}

// Target places the calendar date carried by date at an "HH:MM" clock in loc.
// Empty or malformed clocks fall back to midnight.
func Target(date time.Time, clock string, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	hour, minute, ok := ParseClock(clock)
	if !ok {
		hour, minute, _ = ParseClock(DefaultClock)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, loc)
}

// Compute decomposes target-now into days, hours, minutes and seconds.
func Compute(target, now time.Time) CountdownState {
	diff := target.Sub(now).Milliseconds()
	if diff <= 0 {
		return CountdownState{IsExpired: true, Target: target}
	}
	return CountdownState{
		Days:    diff / msPerDay,
		Hours:   diff % msPerDay / msPerHour,
		Minutes: diff % msPerHour / msPerMinute,
		Seconds: diff % msPerMinute / msPerSecond,
		Target:  target,
	}
}

// Watch emits the countdown immediately and then on every tick until ctx ends.
// Once the target has passed a single expired state is sent and the channel closes.
// The ticker is always stopped and the channel closed when Watch returns.
func Watch(ctx context.Context, target time.Time, interval time.Duration, now func() time.Time) <-chan CountdownState {
	if interval <= 0 {
		interval = time.Second
	}
	if now == nil {
		now = time.Now
	}
	out := make(chan CountdownState, 1)

	go func() {
		defer close(out)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			state := Compute(target, now())
			select {
			case <-ctx.Done():
				return
			case out <- state:
			}
			if state.IsExpired {
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return out
}
