package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/rugby-club-api/internal/calendar"
	"github.com/noah-isme/rugby-club-api/internal/models"
	appErrors "github.com/noah-isme/rugby-club-api/pkg/errors"
	"github.com/noah-isme/rugby-club-api/pkg/events"
	"github.com/noah-isme/rugby-club-api/pkg/realtime"
)

type matchStore interface {
	List(ctx context.Context, filter models.MatchFilter) ([]models.Match, int, error)
	ListUpcoming(ctx context.Context, since time.Time, limit int) ([]models.Match, error)
	FindByID(ctx context.Context, id string) (*models.Match, error)
	Create(ctx context.Context, match *models.Match) error
	Update(ctx context.Context, match *models.Match) error
	UpdateScore(ctx context.Context, id string, home, away int, status models.MatchStatus, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error
}

// ScoreTopic is the realtime topic carrying score updates for a match.
func ScoreTopic(matchID string) string {
	return "match:" + matchID + ":score"
}

// NextMatch is the next scheduled fixture with a countdown snapshot.
type NextMatch struct {
	models.Match
	KickoffAt time.Time               `json:"kickoff_at"`
	Countdown calendar.CountdownState `json:"countdown"`
}

// MatchService manages fixtures, results and live scores.
type MatchService struct {
	repo      matchStore
	broker    realtime.Broker
	cache     *CacheService
	events    eventEmitter
	validator *validator.Validate
	logger    *zap.Logger
	loc       *time.Location
	now       func() time.Time
}

// NewMatchService constructs the service.
func NewMatchService(repo matchStore, broker realtime.Broker, cache *CacheService, publisher events.Publisher, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, loc *time.Location) *MatchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &MatchService{
		repo:      repo,
		broker:    broker,
		cache:     cache,
		events:    newEventEmitter(publisher, metrics, logger),
		validator: ensureValidator(validate),
		logger:    logger,
		loc:       loc,
		now:       time.Now,
	}
}

// Location returns the club time zone kickoffs are expressed in.
func (s *MatchService) Location() *time.Location {
	return s.loc
}

// List returns fixtures matching the filter.
func (s *MatchService) List(ctx context.Context, filter models.MatchFilter) ([]models.Match, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}
	matches, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list matches")
	}
	return matches, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Upcoming returns up to limit scheduled fixtures from the start of today.
func (s *MatchService) Upcoming(ctx context.Context, limit int) ([]models.Match, error) {
	today := calendar.CalendarDay(s.now().In(s.loc), time.UTC)
	matches, err := s.repo.ListUpcoming(ctx, today, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list upcoming matches")
	}
	return matches, nil
}

// Next returns the next fixture that has not kicked off yet.
func (s *MatchService) Next(ctx context.Context) (*NextMatch, error) {
	matches, err := s.Upcoming(ctx, 5)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for _, match := range matches {
		kickoff := s.kickoff(match)
		if !kickoff.After(now) {
			continue
		}
		return &NextMatch{Match: match, KickoffAt: kickoff, Countdown: calendar.Compute(kickoff, now)}, nil
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "no upcoming match scheduled")
}

// Get returns a fixture by id.
func (s *MatchService) Get(ctx context.Context, id string) (*models.Match, error) {
	match, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "match not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load match")
	}
	return match, nil
}

// CountdownTarget returns the kickoff instant of a fixture.
func (s *MatchService) CountdownTarget(ctx context.Context, id string) (time.Time, error) {
	match, err := s.Get(ctx, id)
	if err != nil {
		return time.Time{}, err
	}
	return s.kickoff(*match), nil
}

// Create adds a fixture.
func (s *MatchService) Create(ctx context.Context, req models.UpsertMatchRequest) (*models.Match, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid match payload")
	}
	match := &models.Match{Status: models.MatchStatusScheduled}
	applyMatchRequest(match, req)
	if err := s.repo.Create(ctx, match); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create match")
	}
	return match, nil
}

// Update replaces a fixture. Scores are changed through UpdateScore.
func (s *MatchService) Update(ctx context.Context, id string, req models.UpsertMatchRequest) (*models.Match, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid match payload")
	}
	match, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applyMatchRequest(match, req)
	if err := s.repo.Update(ctx, match); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update match")
	}
	s.invalidateStandings(ctx)
	return match, nil
}

// UpdateScore records a score, pushes it to live subscribers and publishes a domain event.
func (s *MatchService) UpdateScore(ctx context.Context, id string, req models.UpdateScoreRequest) (*models.Match, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid score payload")
	}
	match, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	status := match.Status
	if req.Status != "" {
		status = models.MatchStatus(strings.ToUpper(string(req.Status)))
	} else if status == models.MatchStatusScheduled {
		status = models.MatchStatusLive
	}
	if status == models.MatchStatusCancelled || status == models.MatchStatusPostponed {
		return nil, appErrors.Clone(appErrors.ErrValidation, "cannot score a cancelled or postponed match")
	}
	updatedAt := s.now().UTC()
	if err := s.repo.UpdateScore(ctx, id, *req.HomeScore, *req.AwayScore, status, updatedAt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update score")
	}
	match.HomeScore = req.HomeScore
	match.AwayScore = req.AwayScore
	match.Status = status
	match.UpdatedAt = updatedAt

	update := models.ScoreUpdate{MatchID: id, HomeScore: *req.HomeScore, AwayScore: *req.AwayScore, Status: status, UpdatedAt: updatedAt}
	s.broadcastScore(ctx, update)
	s.events.emit(ctx, events.MatchScoreUpdated, id, update)
	s.invalidateStandings(ctx)
	return match, nil
}

// SubscribeScores opens a live score subscription for a match.
func (s *MatchService) SubscribeScores(ctx context.Context, id string) (*realtime.Subscription, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if s.broker == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "live updates unavailable")
	}
	sub, err := s.broker.Subscribe(ctx, ScoreTopic(id))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to subscribe to score updates")
	}
	return sub, nil
}

// Delete removes a fixture.
func (s *MatchService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete match")
	}
	s.invalidateStandings(ctx)
	return nil
}

// kickoff returns the instant a fixture starts in the club time zone.
func (s *MatchService) kickoff(match models.Match) time.Time {
	return calendar.Target(match.MatchDate, match.Kickoff(), s.loc)
}

func (s *MatchService) broadcastScore(ctx context.Context, update models.ScoreUpdate) {
	if s.broker == nil {
		return
	}
	payload, err := json.Marshal(update)
	if err != nil {
		s.logger.Warn("encode score update failed", zap.Error(err))
		return
	}
	if err := s.broker.Publish(ctx, ScoreTopic(update.MatchID), payload); err != nil {
		s.logger.Warn("broadcast score update failed", zap.String("match_id", update.MatchID), zap.Error(err))
	}
}

func (s *MatchService) invalidateStandings(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, StandingsPattern()); err != nil {
		s.logger.Warn("standings cache invalidation failed", zap.Error(err))
	}
}

func applyMatchRequest(match *models.Match, req models.UpsertMatchRequest) {
	match.TournamentID = req.TournamentID
	match.Opponent = strings.TrimSpace(req.Opponent)
	match.IsHome = req.IsHome
	match.Venue = strings.TrimSpace(req.Venue)
	match.MatchDate = calendar.CalendarDay(req.MatchDate, time.UTC)
	match.KickoffTime = req.KickoffTime
	if req.Status != "" {
		match.Status = models.MatchStatus(strings.ToUpper(string(req.Status)))
	}
	match.Notes = req.Notes
}
