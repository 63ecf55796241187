package models

import "time"

// MatchStatus tracks a fixture through its lifecycle.
type MatchStatus string

const (
	MatchStatusScheduled MatchStatus = "SCHEDULED"
	MatchStatusLive      MatchStatus = "LIVE"
	MatchStatusFinished  MatchStatus = "FINISHED"
	MatchStatusPostponed MatchStatus = "POSTPONED"
	MatchStatusCancelled MatchStatus = "CANCELLED"
)

// Match is a fixture or result against an opponent.
type Match struct {
	ID             string      `db:"id" json:"id"`
	TournamentID   *string     `db:"tournament_id" json:"tournament_id,omitempty"`
	TournamentName *string     `db:"tournament_name" json:"tournament_name,omitempty"`
	Opponent       string      `db:"opponent" json:"opponent"`
	IsHome         bool        `db:"is_home" json:"is_home"`
	Venue          string      `db:"venue" json:"venue"`
	MatchDate      time.Time   `db:"match_date" json:"match_date"`
	KickoffTime    *string     `db:"kickoff_time" json:"kickoff_time,omitempty"`
	Status         MatchStatus `db:"status" json:"status"`
	HomeScore      *int        `db:"home_score" json:"home_score,omitempty"`
	AwayScore      *int        `db:"away_score" json:"away_score,omitempty"`
	Notes          *string     `db:"notes" json:"notes,omitempty"`
	CreatedAt      time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time   `db:"updated_at" json:"updated_at"`
}

// Kickoff returns the configured kickoff clock or an empty string.
func (m Match) Kickoff() string {
	if m.KickoffTime == nil {
		return ""
	}
	return *m.KickoffTime
}

// MatchFilter narrows down fixture listings.
type MatchFilter struct {
	Status       *MatchStatus
	TournamentID string
	From         *time.Time
	To           *time.Time
	Page         int
	PageSize     int
	SortOrder    string
}

// UpsertMatchRequest is the admin payload for fixtures.
type UpsertMatchRequest struct {
	TournamentID *string     `json:"tournament_id" validate:"omitempty,uuid"`
	Opponent     string      `json:"opponent" validate:"required,max=150"`
	IsHome       bool        `json:"is_home"`
	Venue        string      `json:"venue" validate:"required,max=255"`
	MatchDate    time.Time   `json:"match_date" validate:"required"`
	KickoffTime  *string     `json:"kickoff_time" validate:"omitempty,hhmm"`
	Status       MatchStatus `json:"status" validate:"omitempty,match_status"`
	Notes        *string     `json:"notes" validate:"omitempty,max=2000"`
}

// UpdateScoreRequest sets the live or final score.
type UpdateScoreRequest struct {
	HomeScore *int        `json:"home_score" validate:"required,min=0"`
	AwayScore *int        `json:"away_score" validate:"required,min=0"`
	Status    MatchStatus `json:"status" validate:"omitempty,match_status"`
}

// ScoreUpdate is broadcast to live score subscribers.
type ScoreUpdate struct {
	MatchID   string      `json:"match_id"`
	HomeScore int         `json:"home_score"`
	AwayScore int         `json:"away_score"`
	Status    MatchStatus `json:"status"`
	UpdatedAt time.Time   `json:"updated_at"`
}
