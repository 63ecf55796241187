package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/rugby-club-api/internal/models"
)

const trainingColumns = "id, name, description, age_group, coach_name, location, recurrence, starts_on, start_time, duration_minutes, ends_on, excluded_dates, active, created_at, updated_at"

// TrainingRepository persists recurring training programs.
type TrainingRepository struct {
	db *sqlx.DB
}

// NewTrainingRepository constructs a training repository.
func NewTrainingRepository(db *sqlx.DB) *TrainingRepository {
	return &TrainingRepository{db: db}
}

// List returns programs, active ones only unless includeInactive is set.
func (r *TrainingRepository) List(ctx context.Context, includeInactive bool) ([]models.TrainingProgram, error) {
	query := fmt.Sprintf("SELECT %s FROM training_programs", trainingColumns)
	if !includeInactive {
		query += " WHERE active = TRUE"
	}
	query += " ORDER BY name ASC"
	var programs []models.TrainingProgram
	if err := r.db.SelectContext(ctx, &programs, query); err != nil {
		return nil, fmt.Errorf("list training programs: %w", err)
	}
	return programs, nil
}

// FindByID fetches a program.
func (r *TrainingRepository) FindByID(ctx context.Context, id string) (*models.TrainingProgram, error) {
	var program models.TrainingProgram
	query := fmt.Sprintf("SELECT %s FROM training_programs WHERE id = $1", trainingColumns)
	if err := r.db.GetContext(ctx, &program, query, id); err != nil {
		return nil, err
	}
	return &program, nil
}

// Create inserts a program.
func (r *TrainingRepository) Create(ctx context.Context, program *models.TrainingProgram) error {
	if program.ID == "" {
		program.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	program.CreatedAt = now
	program.UpdatedAt = now
	query := `INSERT INTO training_programs (id, name, description, age_group, coach_name, location, recurrence, starts_on, start_time, duration_minutes, ends_on, excluded_dates, active, created_at, updated_at)
VALUES (:id, :name, :description, :age_group, :coach_name, :location, :recurrence, :starts_on, :start_time, :duration_minutes, :ends_on, :excluded_dates, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, program); err != nil {
		return fmt.Errorf("create training program: %w", err)
	}
	return nil
}

// Update modifies a program.
func (r *TrainingRepository) Update(ctx context.Context, program *models.TrainingProgram) error {
	program.UpdatedAt = time.Now().UTC()
	query := `UPDATE training_programs SET name = :name, description = :description, age_group = :age_group, coach_name = :coach_name,
location = :location, recurrence = :recurrence, starts_on = :starts_on, start_time = :start_time, duration_minutes = :duration_minutes,
ends_on = :ends_on, excluded_dates = :excluded_dates, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, program); err != nil {
		return fmt.Errorf("update training program: %w", err)
	}
	return nil
}

// Delete removes a program.
func (r *TrainingRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM training_programs WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete training program: %w", err)
	}
	return nil
}
