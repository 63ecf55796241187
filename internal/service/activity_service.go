package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/rugby-club-api/internal/calendar"
	"github.com/noah-isme/rugby-club-api/internal/models"
	"github.com/noah-isme/rugby-club-api/internal/repository"
	appErrors "github.com/noah-isme/rugby-club-api/pkg/errors"
	"github.com/noah-isme/rugby-club-api/pkg/events"
)

type activityStore interface {
	List(ctx context.Context, filter models.ActivityFilter) ([]models.Activity, int, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]models.Activity, error)
	GetByID(ctx context.Context, id string) (*models.Activity, error)
	Create(ctx context.Context, activity *models.Activity) error
	Update(ctx context.Context, activity *models.Activity) error
	Delete(ctx context.Context, id string) error
	Register(ctx context.Context, participant *models.ActivityParticipant) error
	ListParticipants(ctx context.Context, activityID string) ([]models.ActivityParticipant, error)
}

// ActivityServiceConfig carries the club calendar settings.
type ActivityServiceConfig struct {
	Location    *time.Location
	CalendarTTL time.Duration
}

// ActivityListRequest describes filters for listing activities.
type ActivityListRequest struct {
	From      *time.Time
	To        *time.Time
	Search    string
	Page      int
	PageSize  int
	SortOrder string
}

// CalendarView is a month grid plus the navigation data the calendar page needs.
type CalendarView struct {
	calendar.MonthGrid
	IsAdmin  bool   `json:"is_admin"`
	Today    string `json:"today"`
	Previous string `json:"previous"`
	Next     string `json:"next"`
}

// ActivityService manages club activities, the month calendar and registrations.
type ActivityService struct {
	repo      activityStore
	cache     *CacheService
	events    eventEmitter
	validator *validator.Validate
	logger    *zap.Logger
	loc       *time.Location
	ttl       time.Duration
	now       func() time.Time
}

// NewActivityService constructs the service.
func NewActivityService(repo activityStore, cache *CacheService, publisher events.Publisher, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg ActivityServiceConfig) *ActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.CalendarTTL <= 0 {
		cfg.CalendarTTL = 5 * time.Minute
	}
	return &ActivityService{
		repo:      repo,
		cache:     cache,
		events:    newEventEmitter(publisher, metrics, logger),
		validator: ensureValidator(validate),
		logger:    logger,
		loc:       cfg.Location,
		ttl:       cfg.CalendarTTL,
		now:       time.Now,
	}
}

// Location returns the club time zone used for calendar days.
func (s *ActivityService) Location() *time.Location {
	return s.loc
}

// List returns activities sorted by date.
func (s *ActivityService) List(ctx context.Context, req ActivityListRequest) ([]models.Activity, *models.Pagination, error) {
	if req.From != nil && req.To != nil && !req.To.After(*req.From) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "to must be after from")
	}
	filter := models.ActivityFilter{
		From:      req.From,
		To:        req.To,
		Search:    req.Search,
		Page:      req.Page,
		PageSize:  req.PageSize,
		SortOrder: req.SortOrder,
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}
	activities, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list activities")
	}
	return activities, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Between returns every activity in [from, to).
func (s *ActivityService) Between(ctx context.Context, from, to time.Time) ([]models.Activity, error) {
	activities, err := s.repo.ListBetween(ctx, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activities")
	}
	return activities, nil
}

// Get returns an activity decorated with its labels and a countdown snapshot.
func (s *ActivityService) Get(ctx context.Context, id string, viewer models.Viewer) (*calendar.ActivityDetail, error) {
	activity, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := calendar.PresentLocalized(*activity, s.now(), s.loc, viewer.Locale)
	return &detail, nil
}

// CountdownTarget returns the instant an activity starts.
func (s *ActivityService) CountdownTarget(ctx context.Context, id string) (time.Time, error) {
	activity, err := s.find(ctx, id)
	if err != nil {
		return time.Time{}, err
	}
	return calendar.Target(activity.Date, activity.Clock(), s.loc), nil
}

// Calendar builds the month grid. The bool reports whether it came from cache.
func (s *ActivityService) Calendar(ctx context.Context, year int, month time.Month, viewer models.Viewer) (*CalendarView, bool, error) {
	if month < time.January || month > time.December {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "month must be between 1 and 12")
	}
	if year < 1900 || year > 9999 {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "year out of range")
	}
	key := CalendarMonthKey(year, month, viewer.IsAdmin)
	var cached calendar.MonthGrid
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return s.calendarView(cached, viewer), true, nil
	}

	from, to := calendar.GridRange(year, month, s.loc)
	activities, err := s.repo.ListBetween(ctx, from, to)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load calendar activities")
	}
	grid := calendar.BuildMonth(year, month, activities, s.loc)
	_ = s.cache.Set(ctx, key, grid, s.ttl)
	return s.calendarView(grid, viewer), false, nil
}

// WarmCalendar renders the current and next month into the cache.
func (s *ActivityService) WarmCalendar(ctx context.Context) error {
	if !s.cache.Enabled() {
		return nil
	}
	now := s.now().In(s.loc)
	year, month := now.Year(), now.Month()
	for i := 0; i < 2; i++ {
		if err := s.cache.Invalidate(ctx, CalendarMonthKey(year, month, false)); err != nil {
			return err
		}
		if _, _, err := s.Calendar(ctx, year, month, models.Viewer{}); err != nil {
			return err
		}
		year, month = calendar.NextMonth(year, month)
	}
	return nil
}

// Create adds a new activity.
func (s *ActivityService) Create(ctx context.Context, req models.UpsertActivityRequest, viewer models.Viewer) (*models.Activity, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid activity payload")
	}
	activity := &models.Activity{CreatedBy: viewer.UserID()}
	applyActivityRequest(activity, req)
	if err := s.repo.Create(ctx, activity); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create activity")
	}
	s.invalidateCalendar(ctx)
	s.events.emit(ctx, events.ActivityCreated, activity.ID, activity)
	return activity, nil
}

// Update replaces an activity.
func (s *ActivityService) Update(ctx context.Context, id string, req models.UpsertActivityRequest) (*models.Activity, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid activity payload")
	}
	activity, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.MaxParticipants != nil && *req.MaxParticipants < activity.ParticipantCount {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("activity already has %d participants", activity.ParticipantCount))
	}
	applyActivityRequest(activity, req)
	if err := s.repo.Update(ctx, activity); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update activity")
	}
	s.invalidateCalendar(ctx)
	s.events.emit(ctx, events.ActivityUpdated, activity.ID, activity)
	return activity, nil
}

// Delete removes an activity.
func (s *ActivityService) Delete(ctx context.Context, id string) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete activity")
	}
	s.invalidateCalendar(ctx)
	s.events.emit(ctx, events.ActivityDeleted, id, map[string]string{"id": id})
	return nil
}

// Register signs a participant up. Capacity is enforced by the repository.
func (s *ActivityService) Register(ctx context.Context, id string, req models.RegisterParticipantRequest, viewer models.Viewer) (*models.ActivityParticipant, error) {
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}
	activity, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if calendar.TemporalLabel(activity.Date, s.now(), s.loc) == calendar.StatusPast {
		return nil, appErrors.Clone(appErrors.ErrValidation, "activity has already taken place")
	}

	participant := &models.ActivityParticipant{
		ActivityID: id,
		UserID:     viewer.UserID(),
		FullName:   req.FullName,
		Email:      req.Email,
		Phone:      req.Phone,
	}
	if err := s.repo.Register(ctx, participant); err != nil {
		switch {
		case errors.Is(err, repository.ErrActivityFull):
			return nil, appErrors.Clone(appErrors.ErrCapacityReached, "activity is full")
		case errors.Is(err, repository.ErrAlreadyRegistered):
			return nil, appErrors.Clone(appErrors.ErrAlreadyRegistered, "email already registered for this activity")
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "activity not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register participant")
	}
	s.invalidateCalendar(ctx)
	s.events.emit(ctx, events.ActivityParticipantJoined, id, map[string]interface{}{
		"activity_id":    id,
		"participant_id": participant.ID,
		"registered_at":  participant.RegisteredAt,
	})
	return participant, nil
}

// Participants lists registrations for an activity.
func (s *ActivityService) Participants(ctx context.Context, id string) ([]models.ActivityParticipant, error) {
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}
	participants, err := s.repo.ListParticipants(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list participants")
	}
	return participants, nil
}

func (s *ActivityService) find(ctx context.Context, id string) (*models.Activity, error) {
	activity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "activity not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activity")
	}
	return activity, nil
}

func (s *ActivityService) calendarView(grid calendar.MonthGrid, viewer models.Viewer) *CalendarView {
	prevYear, prevMonth := calendar.PreviousMonth(grid.Year, grid.Month)
	nextYear, nextMonth := calendar.NextMonth(grid.Year, grid.Month)
	return &CalendarView{
		MonthGrid: grid,
		IsAdmin:   viewer.IsAdmin,
		Today:     calendar.DayKey(s.now(), s.loc),
		Previous:  fmt.Sprintf("%04d-%02d", prevYear, int(prevMonth)),
		Next:      fmt.Sprintf("%04d-%02d", nextYear, int(nextMonth)),
	}
}

func (s *ActivityService) invalidateCalendar(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, CalendarPattern()); err != nil {
		s.logger.Warn("calendar cache invalidation failed", zap.Error(err))
	}
}

func applyActivityRequest(activity *models.Activity, req models.UpsertActivityRequest) {
	activity.Title = strings.TrimSpace(req.Title)
	activity.Description = req.Description
	activity.Date = calendar.CalendarDay(req.Date, time.UTC)
	activity.StartTime = req.StartTime
	activity.Location = strings.TrimSpace(req.Location)
	activity.MaxParticipants = req.MaxParticipants
}
