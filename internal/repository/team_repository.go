package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/rugby-club-api/internal/models"
)

const teamMemberColumns = "id, full_name, role, position, jersey_number, photo_url, bio, active, sort_order, created_at, updated_at"

// TeamRepository persists squad members.
type TeamRepository struct {
	db *sqlx.DB
}

// NewTeamRepository constructs a team repository.
func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

// List returns members matching the filter ordered for display.
func (r *TeamRepository) List(ctx context.Context, filter models.TeamMemberFilter) ([]models.TeamMember, int, error) {
	base := "FROM team_members"
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.Role != nil {
		where = append(where, fmt.Sprintf("role = $%d", len(args)+1))
		args = append(args, string(*filter.Role))
	}
	if filter.Active != nil {
		where = append(where, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		where = append(where, fmt.Sprintf("LOWER(full_name) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(search)+"%")
	}
	whereClause := strings.Join(where, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 100
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s WHERE %s ORDER BY sort_order ASC, jersey_number ASC NULLS LAST, full_name ASC LIMIT %d OFFSET %d", teamMemberColumns, base, whereClause, size, offset)
	var members []models.TeamMember
	if err := r.db.SelectContext(ctx, &members, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list team members: %w", err)
	}
	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", base, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count team members: %w", err)
	}
	return members, total, nil
}

// FindByID fetches a member.
func (r *TeamRepository) FindByID(ctx context.Context, id string) (*models.TeamMember, error) {
	var member models.TeamMember
	query := fmt.Sprintf("SELECT %s FROM team_members WHERE id = $1", teamMemberColumns)
	if err := r.db.GetContext(ctx, &member, query, id); err != nil {
		return nil, err
	}
	return &member, nil
}

// JerseyTaken reports whether an active player other than excludeID wears number.
func (r *TeamRepository) JerseyTaken(ctx context.Context, number int, excludeID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM team_members WHERE role = 'PLAYER' AND active = TRUE AND jersey_number = $1 AND id <> $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, number, excludeID); err != nil {
		return false, fmt.Errorf("check jersey number: %w", err)
	}
	return exists, nil
}

// Create inserts a member.
func (r *TeamRepository) Create(ctx context.Context, member *models.TeamMember) error {
	if member.ID == "" {
		member.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	member.CreatedAt = now
	member.UpdatedAt = now
	query := `INSERT INTO team_members (id, full_name, role, position, jersey_number, photo_url, bio, active, sort_order, created_at, updated_at)
VALUES (:id, :full_name, :role, :position, :jersey_number, :photo_url, :bio, :active, :sort_order, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, member); err != nil {
		return fmt.Errorf("create team member: %w", err)
	}
	return nil
}

// Update modifies a member.
func (r *TeamRepository) Update(ctx context.Context, member *models.TeamMember) error {
	member.UpdatedAt = time.Now().UTC()
	query := `UPDATE team_members SET full_name = :full_name, role = :role, position = :position, jersey_number = :jersey_number,
photo_url = :photo_url, bio = :bio, active = :active, sort_order = :sort_order, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, member); err != nil {
		return fmt.Errorf("update team member: %w", err)
	}
	return nil
}

// Delete removes a member.
func (r *TeamRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM team_members WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete team member: %w", err)
	}
	return nil
}
