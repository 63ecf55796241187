package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/noah-isme/rugby-club-api/internal/calendar"
	"github.com/noah-isme/rugby-club-api/internal/models"
	appErrors "github.com/noah-isme/rugby-club-api/pkg/errors"
)

const (
	maxSessionsPerRequest = 500
	maxSessionWindow      = 366 * 24 * time.Hour
	maxOccurrenceScan     = 100000
)

type trainingStore interface {
	List(ctx context.Context, includeInactive bool) ([]models.TrainingProgram, error)
	FindByID(ctx context.Context, id string) (*models.TrainingProgram, error)
	Create(ctx context.Context, program *models.TrainingProgram) error
	Update(ctx context.Context, program *models.TrainingProgram) error
	Delete(ctx context.Context, id string) error
}

// TrainingService manages recurring training programs and expands their sessions.
type TrainingService struct {
	repo      trainingStore
	validator *validator.Validate
	logger    *zap.Logger
	loc       *time.Location
}

// NewTrainingService constructs the service.
func NewTrainingService(repo trainingStore, validate *validator.Validate, logger *zap.Logger, loc *time.Location) *TrainingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &TrainingService{repo: repo, validator: ensureValidator(validate), logger: logger, loc: loc}
}

// List returns programs. Inactive programs are only listed for admins.
func (s *TrainingService) List(ctx context.Context, viewer models.Viewer) ([]models.TrainingProgram, error) {
	programs, err := s.repo.List(ctx, viewer.IsAdmin)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list training programs")
	}
	return programs, nil
}

// Get returns a program by id.
func (s *TrainingService) Get(ctx context.Context, id string) (*models.TrainingProgram, error) {
	program, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "training program not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load training program")
	}
	return program, nil
}

// Create adds a program.
func (s *TrainingService) Create(ctx context.Context, req models.UpsertTrainingProgramRequest) (*models.TrainingProgram, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}
	program := &models.TrainingProgram{Active: true}
	applyTrainingRequest(program, req)
	if err := s.repo.Create(ctx, program); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create training program")
	}
	return program, nil
}

// Update replaces a program.
func (s *TrainingService) Update(ctx context.Context, id string, req models.UpsertTrainingProgramRequest) (*models.TrainingProgram, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}
	program, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applyTrainingRequest(program, req)
	if err := s.repo.Update(ctx, program); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update training program")
	}
	return program, nil
}

// Delete removes a program.
func (s *TrainingService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete training program")
	}
	return nil
}

// Location returns the club time zone sessions are expanded in.
func (s *TrainingService) Location() *time.Location {
	return s.loc
}

// Sessions expands one program's occurrences in [from, to).
func (s *TrainingService) Sessions(ctx context.Context, id string, from, to time.Time) ([]models.TrainingSession, error) {
	if err := validateSessionWindow(from, to); err != nil {
		return nil, err
	}
	program, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	sessions, err := s.expand(*program, from, to, maxSessionsPerRequest)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "training program has an invalid recurrence")
	}
	return sessions, nil
}

// AllSessions expands every active program in [from, to) sorted by start.
func (s *TrainingService) AllSessions(ctx context.Context, from, to time.Time) ([]models.TrainingSession, error) {
	if err := validateSessionWindow(from, to); err != nil {
		return nil, err
	}
	programs, err := s.repo.List(ctx, false)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list training programs")
	}
	sessions := []models.TrainingSession{}
	for _, program := range programs {
		expanded, err := s.expand(program, from, to, maxSessionsPerRequest)
		if err != nil {
			s.logger.Warn("skip training program with invalid recurrence", zap.String("program_id", program.ID), zap.Error(err))
			continue
		}
		sessions = append(sessions, expanded...)
	}
	sort.SliceStable(sessions, func(i, j int) bool { return sessions[i].Start.Before(sessions[j].Start) })
	if len(sessions) > maxSessionsPerRequest {
		sessions = sessions[:maxSessionsPerRequest]
	}
	return sessions, nil
}

func (s *TrainingService) expand(program models.TrainingProgram, from, to time.Time, limit int) ([]models.TrainingSession, error) {
	set, err := s.recurrenceSet(program)
	if err != nil {
		return nil, err
	}
	duration := time.Duration(program.DurationMinutes) * time.Minute
	sessions := []models.TrainingSession{}
	next := set.Iterator()
	for scanned := 0; len(sessions) < limit && scanned < maxOccurrenceScan; scanned++ {
		start, ok := next()
		if !ok || !start.Before(to) {
			break
		}
		if start.Before(from) {
			continue
		}
		sessions = append(sessions, models.TrainingSession{
			ProgramID:   program.ID,
			ProgramName: program.Name,
			Location:    program.Location,
			Start:       start,
			End:         start.Add(duration),
		})
	}
	return sessions, nil
}

// recurrenceSet builds the rrule set of a program anchored at its first
// session in the club time zone, with excluded dates removed.
func (s *TrainingService) recurrenceSet(program models.TrainingProgram) (*rrule.Set, error) {
	option, err := rrule.StrToROption(strings.TrimPrefix(strings.TrimSpace(program.Recurrence), "RRULE:"))
	if err != nil {
		return nil, err
	}
	option.Dtstart = s.sessionStart(program.StartsOn, program.StartTime)
	if program.EndsOn != nil {
		until := s.sessionStart(*program.EndsOn, "23:59")
		if option.Until.IsZero() || until.Before(option.Until) {
			option.Until = until
		}
	}
	rule, err := rrule.NewRRule(*option)
	if err != nil {
		return nil, err
	}
	set := &rrule.Set{}
	set.RRule(rule)
	for _, raw := range program.ExcludedDates {
		day, err := time.Parse("2006-01-02", strings.TrimSpace(raw))
		if err != nil {
			continue
		}
		set.ExDate(s.sessionStart(day, program.StartTime))
	}
	return set, nil
}

// sessionStart places a stored calendar date at clock in the club time zone.
func (s *TrainingService) sessionStart(date time.Time, clock string) time.Time {
	return calendar.Target(date, clock, s.loc)
}

func (s *TrainingService) validateRequest(req models.UpsertTrainingProgramRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid training program payload")
	}
	if req.EndsOn != nil && req.EndsOn.Before(req.StartsOn) {
		return appErrors.Clone(appErrors.ErrValidation, "ends_on must not be before starts_on")
	}
	return nil
}

func validateSessionWindow(from, to time.Time) error {
	if !to.After(from) {
		return appErrors.Clone(appErrors.ErrValidation, "to must be after from")
	}
	if to.Sub(from) > maxSessionWindow {
		return appErrors.Clone(appErrors.ErrValidation, "session window is limited to one year")
	}
	return nil
}

func applyTrainingRequest(program *models.TrainingProgram, req models.UpsertTrainingProgramRequest) {
	program.Name = strings.TrimSpace(req.Name)
	program.Description = req.Description
	program.AgeGroup = req.AgeGroup
	program.CoachName = req.CoachName
	program.Location = strings.TrimSpace(req.Location)
	program.Recurrence = strings.TrimPrefix(strings.TrimSpace(req.Recurrence), "RRULE:")
	program.StartsOn = req.StartsOn
	program.StartTime = req.StartTime
	program.DurationMinutes = req.DurationMinutes
	program.EndsOn = req.EndsOn
	program.ExcludedDates = append([]string{}, req.ExcludedDates...)
	if req.Active != nil {
		program.Active = *req.Active
	}
}
