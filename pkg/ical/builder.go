// Package ical renders club fixtures, activities and training sessions as an iCalendar feed.
package ical

import (
	"fmt"
	"sort"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
)

// Entry is one calendar item in the feed.
type Entry struct {
	UID         string
	Summary     string
	Description string
	Location    string
	URL         string
	Start       time.Time
	End         time.Time
	AllDay      bool
	Categories  []string
	UpdatedAt   time.Time
}

// Builder accumulates entries and serialises them to text/calendar.
type Builder struct {
	name      string
	productID string
	domain    string
	timezone  string
	reminder  time.Duration
	entries   []Entry
}

// Option customises a Builder.
type Option func(*Builder)

// WithReminder adds a display alarm the given duration before each entry.
func WithReminder(before time.Duration) Option {
	return func(b *Builder) {
		if before > 0 {
			b.reminder = before
		}
	}
}

// WithTimezone sets the X-WR-TIMEZONE hint for clients.
func WithTimezone(name string) Option {
	return func(b *Builder) { b.timezone = name }
}

// NewBuilder creates a feed named name. domain qualifies entry UIDs.
func NewBuilder(name, domain string, opts ...Option) *Builder {
	b := &Builder{
		name:      name,
		productID: fmt.Sprintf("-//%s//Club Calendar//EN", name),
		domain:    domain,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Add appends entries. Entries without an end get a one hour slot, all-day entries a full day.
func (b *Builder) Add(entries ...Entry) {
	for _, entry := range entries {
		if entry.End.IsZero() || !entry.End.After(entry.Start) {
			if entry.AllDay {
				entry.End = entry.Start.AddDate(0, 0, 1)
			} else {
				entry.End = entry.Start.Add(time.Hour)
			}
		}
		b.entries = append(b.entries, entry)
	}
}

// Len reports how many entries have been added.
func (b *Builder) Len() int {
	return len(b.entries)
}

// Serialize renders the calendar sorted by start time.
func (b *Builder) Serialize(now time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(b.productID)
	cal.SetXWRCalName(b.name)
	if b.timezone != "" {
		cal.SetXWRTimezone(b.timezone)
	}

	entries := make([]Entry, len(b.entries))
	copy(entries, b.entries)
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Start.Before(entries[j].Start) })

	for _, entry := range entries {
		event := cal.AddEvent(b.uid(entry.UID))
		event.SetDtStampTime(now.UTC())
		if !entry.UpdatedAt.IsZero() {
			event.SetModifiedAt(entry.UpdatedAt.UTC())
		}
		if entry.AllDay {
			event.SetAllDayStartAt(entry.Start)
			event.SetAllDayEndAt(entry.End)
		} else {
			event.SetStartAt(entry.Start.UTC())
			event.SetEndAt(entry.End.UTC())
		}
		event.SetSummary(entry.Summary)
		if entry.Description != "" {
			event.SetDescription(entry.Description)
		}
		if entry.Location != "" {
			event.SetLocation(entry.Location)
		}
		if entry.URL != "" {
			event.SetURL(entry.URL)
		}
		if len(entry.Categories) > 0 {
			event.SetProperty(ics.ComponentPropertyCategories, strings.Join(entry.Categories, ","))
		}
		if b.reminder > 0 && !entry.AllDay {
			alarm := event.AddAlarm()
			alarm.SetAction(ics.ActionDisplay)
			alarm.SetTrigger(fmt.Sprintf("-PT%dM", int(b.reminder/time.Minute)))
			alarm.SetProperty(ics.ComponentPropertyDescription, entry.Summary)
		}
	}
	return cal.Serialize()
}

func (b *Builder) uid(id string) string {
	if b.domain == "" {
		return id
	}
	return id + "@" + b.domain
}
