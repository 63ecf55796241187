package models

import "time"

// MemberRole classifies a squad member.
type MemberRole string

const (
	MemberRolePlayer MemberRole = "PLAYER"
	MemberRoleCoach  MemberRole = "COACH"
	MemberRoleStaff  MemberRole = "STAFF"
)

// TeamMember is a player, coach or staff member shown on the team page.
type TeamMember struct {
	ID           string     `db:"id" json:"id"`
	FullName     string     `db:"full_name" json:"full_name"`
	Role         MemberRole `db:"role" json:"role"`
	Position     *string    `db:"position" json:"position,omitempty"`
	JerseyNumber *int       `db:"jersey_number" json:"jersey_number,omitempty"`
	PhotoURL     *string    `db:"photo_url" json:"photo_url,omitempty"`
	Bio          *string    `db:"bio" json:"bio,omitempty"`
	Active       bool       `db:"active" json:"active"`
	SortOrder    int        `db:"sort_order" json:"sort_order"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// TeamMemberFilter narrows down member listings.
type TeamMemberFilter struct {
	Role     *MemberRole
	Active   *bool
	Search   string
	Page     int
	PageSize int
}

// TeamRoster groups active members by role for the public team page.
type TeamRoster struct {
	Players []TeamMember `json:"players"`
	Coaches []TeamMember `json:"coaches"`
	Staff   []TeamMember `json:"staff"`
}

// UpsertTeamMemberRequest is the admin payload for members.
type UpsertTeamMemberRequest struct {
	FullName     string     `json:"full_name" validate:"required,max=150"`
	Role         MemberRole `json:"role" validate:"required,member_role"`
	Position     *string    `json:"position" validate:"omitempty,max=50"`
	JerseyNumber *int       `json:"jersey_number" validate:"omitempty,min=1,max=99"`
	PhotoURL     *string    `json:"photo_url" validate:"omitempty,url"`
	Bio          *string    `json:"bio" validate:"omitempty,max=2000"`
	Active       *bool      `json:"active"`
	SortOrder    int        `json:"sort_order" validate:"min=0"`
}
