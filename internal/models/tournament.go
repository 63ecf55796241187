package models

import "time"

// Tournament is a league or cup competition.
type Tournament struct {
	ID          string     `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	Season      string     `db:"season" json:"season"`
	StartDate   time.Time  `db:"start_date" json:"start_date"`
	EndDate     *time.Time `db:"end_date" json:"end_date,omitempty"`
	Description *string    `db:"description" json:"description,omitempty"`
	LogoURL     *string    `db:"logo_url" json:"logo_url,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// TournamentStanding is a row of the tournament_standings view.
type TournamentStanding struct {
	TournamentID  string `db:"tournament_id" json:"tournament_id"`
	Position      int    `db:"position" json:"position"`
	TeamName      string `db:"team_name" json:"team_name"`
	Played        int    `db:"played" json:"played"`
	Won           int    `db:"won" json:"won"`
	Drawn         int    `db:"drawn" json:"drawn"`
	Lost          int    `db:"lost" json:"lost"`
	PointsFor     int    `db:"points_for" json:"points_for"`
	PointsAgainst int    `db:"points_against" json:"points_against"`
	PointsDiff    int    `db:"points_diff" json:"points_diff"`
	BonusPoints   int    `db:"bonus_points" json:"bonus_points"`
	TotalPoints   int    `db:"total_points" json:"total_points"`
}

// UpsertTournamentRequest is the admin payload for tournaments.
type UpsertTournamentRequest struct {
	Name        string     `json:"name" validate:"required,max=150"`
	Season      string     `json:"season" validate:"required,max=20"`
	StartDate   time.Time  `json:"start_date" validate:"required"`
	EndDate     *time.Time `json:"end_date"`
	Description *string    `json:"description" validate:"omitempty,max=2000"`
	LogoURL     *string    `json:"logo_url" validate:"omitempty,url"`
}
