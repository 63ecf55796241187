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

const matchSelect = `SELECT m.id, m.tournament_id, t.name AS tournament_name, m.opponent, m.is_home, m.venue, m.match_date,
m.kickoff_time, m.status, m.home_score, m.away_score, m.notes, m.created_at, m.updated_at
FROM matches m LEFT JOIN tournaments t ON t.id = m.tournament_id`

// MatchRepository persists fixtures and results.
type MatchRepository struct {
	db *sqlx.DB
}

// NewMatchRepository constructs a match repository.
func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

// List returns fixtures matching the filter.
func (r *MatchRepository) List(ctx context.Context, filter models.MatchFilter) ([]models.Match, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.Status != nil {
		where = append(where, fmt.Sprintf("m.status = $%d", len(args)+1))
		args = append(args, string(*filter.Status))
	}
	if filter.TournamentID != "" {
		where = append(where, fmt.Sprintf("m.tournament_id = $%d", len(args)+1))
		args = append(args, filter.TournamentID)
	}
	if filter.From != nil {
		where = append(where, fmt.Sprintf("m.match_date >= $%d::date", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		where = append(where, fmt.Sprintf("m.match_date < $%d::date", len(args)+1))
		args = append(args, *filter.To)
	}
	whereClause := strings.Join(where, " AND ")

	order := "ASC"
	if strings.EqualFold(filter.SortOrder, "desc") {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("%s WHERE %s ORDER BY m.match_date %s, m.kickoff_time %s NULLS FIRST LIMIT %d OFFSET %d", matchSelect, whereClause, order, order, size, offset)
	var matches []models.Match
	if err := r.db.SelectContext(ctx, &matches, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list matches: %w", err)
	}
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM matches m WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count matches: %w", err)
	}
	return matches, total, nil
}

// ListUpcoming returns scheduled fixtures on or after since, up to limit rows.
func (r *MatchRepository) ListUpcoming(ctx context.Context, since time.Time, limit int) ([]models.Match, error) {
	if limit <= 0 {
		limit = 1
	}
	query := fmt.Sprintf("%s WHERE m.status = $1 AND m.match_date >= $2::date ORDER BY m.match_date ASC, m.kickoff_time ASC NULLS FIRST LIMIT %d", matchSelect, limit)
	var matches []models.Match
	if err := r.db.SelectContext(ctx, &matches, query, string(models.MatchStatusScheduled), since); err != nil {
		return nil, fmt.Errorf("list upcoming matches: %w", err)
	}
	return matches, nil
}

// FindByID fetches a fixture.
func (r *MatchRepository) FindByID(ctx context.Context, id string) (*models.Match, error) {
	var match models.Match
	if err := r.db.GetContext(ctx, &match, matchSelect+" WHERE m.id = $1", id); err != nil {
		return nil, err
	}
	return &match, nil
}

// Create inserts a fixture.
func (r *MatchRepository) Create(ctx context.Context, match *models.Match) error {
	if match.ID == "" {
		match.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	match.CreatedAt = now
	match.UpdatedAt = now
	query := `INSERT INTO matches (id, tournament_id, opponent, is_home, venue, match_date, kickoff_time, status, home_score, away_score, notes, created_at, updated_at)
VALUES (:id, :tournament_id, :opponent, :is_home, :venue, :match_date, :kickoff_time, :status, :home_score, :away_score, :notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, match); err != nil {
		return fmt.Errorf("create match: %w", err)
	}
	return nil
}

// Update modifies a fixture.
func (r *MatchRepository) Update(ctx context.Context, match *models.Match) error {
	match.UpdatedAt = time.Now().UTC()
	query := `UPDATE matches SET tournament_id = :tournament_id, opponent = :opponent, is_home = :is_home, venue = :venue,
match_date = :match_date, kickoff_time = :kickoff_time, status = :status, notes = :notes, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, match); err != nil {
		return fmt.Errorf("update match: %w", err)
	}
	return nil
}

// UpdateScore sets the score and status of a fixture.
func (r *MatchRepository) UpdateScore(ctx context.Context, id string, home, away int, status models.MatchStatus, updatedAt time.Time) error {
	const query = `UPDATE matches SET home_score = $2, away_score = $3, status = $4, updated_at = $5 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, home, away, string(status), updatedAt); err != nil {
		return fmt.Errorf("update match score: %w", err)
	}
	return nil
}

// Delete removes a fixture.
func (r *MatchRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM matches WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete match: %w", err)
	}
	return nil
}
