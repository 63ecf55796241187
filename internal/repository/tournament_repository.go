package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/rugby-club-api/internal/models"
)

const tournamentColumns = "id, name, season, start_date, end_date, description, logo_url, created_at, updated_at"

// TournamentRepository persists competitions and reads their standings view.
type TournamentRepository struct {
	db *sqlx.DB
}

// NewTournamentRepository constructs a tournament repository.
func NewTournamentRepository(db *sqlx.DB) *TournamentRepository {
	return &TournamentRepository{db: db}
}

// List returns tournaments, newest season first.
func (r *TournamentRepository) List(ctx context.Context) ([]models.Tournament, error) {
	query := fmt.Sprintf("SELECT %s FROM tournaments ORDER BY start_date DESC, name ASC", tournamentColumns)
	var tournaments []models.Tournament
	if err := r.db.SelectContext(ctx, &tournaments, query); err != nil {
		return nil, fmt.Errorf("list tournaments: %w", err)
	}
	return tournaments, nil
}

// FindByID fetches a tournament.
func (r *TournamentRepository) FindByID(ctx context.Context, id string) (*models.Tournament, error) {
	var tournament models.Tournament
	query := fmt.Sprintf("SELECT %s FROM tournaments WHERE id = $1", tournamentColumns)
	if err := r.db.GetContext(ctx, &tournament, query, id); err != nil {
		return nil, err
	}
	return &tournament, nil
}

// Standings reads the ranked table computed by the tournament_standings view.
func (r *TournamentRepository) Standings(ctx context.Context, tournamentID string) ([]models.TournamentStanding, error) {
	const query = `SELECT tournament_id, position, team_name, played, won, drawn, lost, points_for, points_against, points_diff, bonus_points, total_points
FROM tournament_standings WHERE tournament_id = $1 ORDER BY position ASC`
	var rows []models.TournamentStanding
	if err := r.db.SelectContext(ctx, &rows, query, tournamentID); err != nil {
		return nil, fmt.Errorf("list standings: %w", err)
	}
	return rows, nil
}

// Create inserts a tournament.
func (r *TournamentRepository) Create(ctx context.Context, tournament *models.Tournament) error {
	if tournament.ID == "" {
		tournament.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	tournament.CreatedAt = now
	tournament.UpdatedAt = now
	query := `INSERT INTO tournaments (id, name, season, start_date, end_date, description, logo_url, created_at, updated_at)
VALUES (:id, :name, :season, :start_date, :end_date, :description, :logo_url, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, tournament); err != nil {
		return fmt.Errorf("create tournament: %w", err)
	}
	return nil
}

// Update modifies a tournament.
func (r *TournamentRepository) Update(ctx context.Context, tournament *models.Tournament) error {
	tournament.UpdatedAt = time.Now().UTC()
	query := `UPDATE tournaments SET name = :name, season = :season, start_date = :start_date, end_date = :end_date,
description = :description, logo_url = :logo_url, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, tournament); err != nil {
		return fmt.Errorf("update tournament: %w", err)
	}
	return nil
}

// Delete removes a tournament. Fixtures keep their rows with a null tournament.
func (r *TournamentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM tournaments WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete tournament: %w", err)
	}
	return nil
}
