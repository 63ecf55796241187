package models

import (
	"time"

	"github.com/lib/pq"
)

// TrainingProgram is a recurring training slot described by an RRULE.
type TrainingProgram struct {
	ID              string         `db:"id" json:"id"`
	Name            string         `db:"name" json:"name"`
	Description     *string        `db:"description" json:"description,omitempty"`
	AgeGroup        *string        `db:"age_group" json:"age_group,omitempty"`
	CoachName       *string        `db:"coach_name" json:"coach_name,omitempty"`
	Location        string         `db:"location" json:"location"`
	Recurrence      string         `db:"recurrence" json:"recurrence"`
	StartsOn        time.Time      `db:"starts_on" json:"starts_on"`
	StartTime       string         `db:"start_time" json:"start_time"`
	DurationMinutes int            `db:"duration_minutes" json:"duration_minutes"`
	EndsOn          *time.Time     `db:"ends_on" json:"ends_on,omitempty"`
	ExcludedDates   pq.StringArray `db:"excluded_dates" json:"excluded_dates"`
	Active          bool           `db:"active" json:"active"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

// TrainingSession is one expanded occurrence of a program.
type TrainingSession struct {
	ProgramID   string    `json:"program_id"`
	ProgramName string    `json:"program_name"`
	Location    string    `json:"location"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
}

// UpsertTrainingProgramRequest is the admin payload for programs.
type UpsertTrainingProgramRequest struct {
	Name            string     `json:"name" validate:"required,max=150"`
	Description     *string    `json:"description" validate:"omitempty,max=2000"`
	AgeGroup        *string    `json:"age_group" validate:"omitempty,max=30"`
	CoachName       *string    `json:"coach_name" validate:"omitempty,max=150"`
	Location        string     `json:"location" validate:"required,max=255"`
	Recurrence      string     `json:"recurrence" validate:"required,rrule"`
	StartsOn        time.Time  `json:"starts_on" validate:"required"`
	StartTime       string     `json:"start_time" validate:"required,hhmm"`
	DurationMinutes int        `json:"duration_minutes" validate:"required,min=15,max=480"`
	EndsOn          *time.Time `json:"ends_on"`
	ExcludedDates   []string   `json:"excluded_dates" validate:"omitempty,dive,datetime=2006-01-02"`
	Active          *bool      `json:"active"`
}
