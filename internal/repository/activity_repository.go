package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/rugby-club-api/internal/models"
)

var (
	// ErrActivityFull is returned when a registration would exceed max_participants.
	ErrActivityFull = errors.New("activity full")
	// ErrAlreadyRegistered is returned when the email is already registered for the activity.
	ErrAlreadyRegistered = errors.New("already registered")
)

const activityColumns = `a.id, a.title, a.description, a.date, a.start_time, a.location, a.max_participants,
(SELECT COUNT(*) FROM activity_participants p WHERE p.activity_id = a.id) AS participant_count,
a.created_by, a.created_at, a.updated_at`

// ActivityRepository persists club activities and their registrations.
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository constructs an activity repository.
func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// List returns activities matching filters sorted by date.
func (r *ActivityRepository) List(ctx context.Context, filter models.ActivityFilter) ([]models.Activity, int, error) {
	base := "FROM activities a"
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.From != nil {
		where = append(where, fmt.Sprintf("a.date >= $%d::date", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		where = append(where, fmt.Sprintf("a.date < $%d::date", len(args)+1))
		args = append(args, *filter.To)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		where = append(where, fmt.Sprintf("(LOWER(a.title) LIKE $%d OR LOWER(a.location) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(search)+"%")
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

	query := fmt.Sprintf(`SELECT %s
%s WHERE %s ORDER BY a.date %s, a.start_time %s NULLS FIRST LIMIT %d OFFSET %d`, activityColumns, base, whereClause, order, order, size, offset)
	var activities []models.Activity
	if err := r.db.SelectContext(ctx, &activities, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list activities: %w", err)
	}
	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", base, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count activities: %w", err)
	}
	return activities, total, nil
}

// ListBetween returns every activity in [from, to) without paging, for calendar grids and feeds.
func (r *ActivityRepository) ListBetween(ctx context.Context, from, to time.Time) ([]models.Activity, error) {
	query := fmt.Sprintf(`SELECT %s
FROM activities a WHERE a.date >= $1::date AND a.date < $2::date ORDER BY a.date ASC, a.start_time ASC NULLS FIRST`, activityColumns)
	var activities []models.Activity
	if err := r.db.SelectContext(ctx, &activities, query, from, to); err != nil {
		return nil, fmt.Errorf("list activities between: %w", err)
	}
	return activities, nil
}

// GetByID fetches an activity with its participant count.
func (r *ActivityRepository) GetByID(ctx context.Context, id string) (*models.Activity, error) {
	query := fmt.Sprintf(`SELECT %s
FROM activities a WHERE a.id = $1`, activityColumns)
	var activity models.Activity
	if err := r.db.GetContext(ctx, &activity, query, id); err != nil {
		return nil, err
	}
	return &activity, nil
}

// Create inserts an activity.
func (r *ActivityRepository) Create(ctx context.Context, activity *models.Activity) error {
	if activity.ID == "" {
		activity.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = now
	}
	activity.UpdatedAt = now
	query := `INSERT INTO activities (id, title, description, date, start_time, location, max_participants, created_by, created_at, updated_at)
VALUES (:id, :title, :description, :date, :start_time, :location, :max_participants, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, activity); err != nil {
		return fmt.Errorf("create activity: %w", err)
	}
	return nil
}

// Update modifies an activity.
func (r *ActivityRepository) Update(ctx context.Context, activity *models.Activity) error {
	activity.UpdatedAt = time.Now().UTC()
	query := `UPDATE activities SET title = :title, description = :description, date = :date, start_time = :start_time,
location = :location, max_participants = :max_participants, updated_at = :updated_at
WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, activity); err != nil {
		return fmt.Errorf("update activity: %w", err)
	}
	return nil
}

// Delete removes an activity and its registrations.
func (r *ActivityRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM activities WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	return nil
}

// Register inserts a participant while holding a row lock on the activity so
// the participant count can never exceed max_participants.
func (r *ActivityRepository) Register(ctx context.Context, participant *models.ActivityParticipant) (err error) {
	if participant.ID == "" {
		participant.ID = uuid.NewString()
	}
	if participant.RegisteredAt.IsZero() {
		participant.RegisteredAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin register participant: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var maxParticipants *int
	if err = tx.GetContext(ctx, &maxParticipants, `SELECT max_participants FROM activities WHERE id = $1 FOR UPDATE`, participant.ActivityID); err != nil {
		return err
	}

	var existing int
	if err = tx.GetContext(ctx, &existing, `SELECT COUNT(*) FROM activity_participants WHERE activity_id = $1 AND LOWER(email) = LOWER($2)`, participant.ActivityID, participant.Email); err != nil {
		return fmt.Errorf("check existing registration: %w", err)
	}
	if existing > 0 {
		err = ErrAlreadyRegistered
		return err
	}

	if maxParticipants != nil {
		var count int
		if err = tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM activity_participants WHERE activity_id = $1`, participant.ActivityID); err != nil {
			return fmt.Errorf("count participants: %w", err)
		}
		if count >= *maxParticipants {
			err = ErrActivityFull
			return err
		}
	}

	const insert = `INSERT INTO activity_participants (id, activity_id, user_id, full_name, email, phone, registered_at)
VALUES (:id, :activity_id, :user_id, :full_name, :email, :phone, :registered_at)`
	if _, err = tx.NamedExecContext(ctx, insert, participant); err != nil {
		return fmt.Errorf("insert participant: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit register participant: %w", err)
	}
	return nil
}

// ListParticipants returns registrations for an activity in sign-up order.
func (r *ActivityRepository) ListParticipants(ctx context.Context, activityID string) ([]models.ActivityParticipant, error) {
	const query = `SELECT id, activity_id, user_id, full_name, email, phone, registered_at
FROM activity_participants WHERE activity_id = $1 ORDER BY registered_at ASC`
	var participants []models.ActivityParticipant
	if err := r.db.SelectContext(ctx, &participants, query, activityID); err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	return participants, nil
}
