package models

import "time"

// Activity is a schedulable club event with optional capacity.
type Activity struct {
	ID               string    `db:"id" json:"id"`
	Title            string    `db:"title" json:"title"`
	Description      string    `db:"description" json:"description"`
	Date             time.Time `db:"date" json:"date"`
	StartTime        *string   `db:"start_time" json:"start_time,omitempty"`
	Location         string    `db:"location" json:"location"`
	MaxParticipants  *int      `db:"max_participants" json:"max_participants,omitempty"`
	ParticipantCount int       `db:"participant_count" json:"participant_count"`
	CreatedBy        *string   `db:"created_by" json:"created_by,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// Clock returns the configured start time or an empty string.
func (a Activity) Clock() string {
	if a.StartTime == nil {
		return ""
	}
	return *a.StartTime
}

// ActivityFilter narrows down activity listings.
type ActivityFilter struct {
	From      *time.Time
	To        *time.Time
	Search    string
	Page      int
	PageSize  int
	SortOrder string
}

// ActivityParticipant is a registration against an activity.
type ActivityParticipant struct {
	ID           string    `db:"id" json:"id"`
	ActivityID   string    `db:"activity_id" json:"activity_id"`
	UserID       *string   `db:"user_id" json:"user_id,omitempty"`
	FullName     string    `db:"full_name" json:"full_name"`
	Email        string    `db:"email" json:"email"`
	Phone        *string   `db:"phone" json:"phone,omitempty"`
	RegisteredAt time.Time `db:"registered_at" json:"registered_at"`
}

// UpsertActivityRequest is the admin payload for creating or replacing an activity.
type UpsertActivityRequest struct {
	Title           string    `json:"title" validate:"required,max=200"`
	Description     string    `json:"description" validate:"max=5000"`
	Date            time.Time `json:"date" validate:"required"`
	StartTime       *string   `json:"start_time" validate:"omitempty,hhmm"`
	Location        string    `json:"location" validate:"required,max=255"`
	MaxParticipants *int      `json:"max_participants" validate:"omitempty,min=1"`
}

// RegisterParticipantRequest is the public payload for joining an activity.
type RegisterParticipantRequest struct {
	FullName string  `json:"full_name" validate:"required,max=150"`
	Email    string  `json:"email" validate:"required,email"`
	Phone    *string `json:"phone" validate:"omitempty,max=30"`
}
