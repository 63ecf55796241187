package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/rugby-club-api/internal/models"
	appErrors "github.com/noah-isme/rugby-club-api/pkg/errors"
)

type tournamentStore interface {
	List(ctx context.Context) ([]models.Tournament, error)
	FindByID(ctx context.Context, id string) (*models.Tournament, error)
	Standings(ctx context.Context, tournamentID string) ([]models.TournamentStanding, error)
	Create(ctx context.Context, tournament *models.Tournament) error
	Update(ctx context.Context, tournament *models.Tournament) error
	Delete(ctx context.Context, id string) error
}

// TournamentService manages competitions and serves cached standings.
type TournamentService struct {
	repo      tournamentStore
	cache     *CacheService
	ttl       time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTournamentService constructs the service.
func NewTournamentService(repo tournamentStore, cache *CacheService, standingsTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *TournamentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TournamentService{repo: repo, cache: cache, ttl: standingsTTL, validator: ensureValidator(validate), logger: logger}
}

// List returns all tournaments.
func (s *TournamentService) List(ctx context.Context) ([]models.Tournament, error) {
	tournaments, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list tournaments")
	}
	return tournaments, nil
}

// Get returns a tournament by id.
func (s *TournamentService) Get(ctx context.Context, id string) (*models.Tournament, error) {
	tournament, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "tournament not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load tournament")
	}
	return tournament, nil
}

// Standings returns the league table. The bool reports whether it came from cache.
func (s *TournamentService) Standings(ctx context.Context, id string) ([]models.TournamentStanding, bool, error) {
	key := StandingsKey(id)
	var cached []models.TournamentStanding
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, true, nil
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, false, err
	}
	rows, err := s.repo.Standings(ctx, id)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load standings")
	}
	if rows == nil {
		rows = []models.TournamentStanding{}
	}
	_ = s.cache.Set(ctx, key, rows, s.ttl)
	return rows, false, nil
}

// Create adds a tournament.
func (s *TournamentService) Create(ctx context.Context, req models.UpsertTournamentRequest) (*models.Tournament, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	tournament := &models.Tournament{}
	applyTournamentRequest(tournament, req)
	if err := s.repo.Create(ctx, tournament); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create tournament")
	}
	return tournament, nil
}

// Update replaces a tournament.
func (s *TournamentService) Update(ctx context.Context, id string, req models.UpsertTournamentRequest) (*models.Tournament, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	tournament, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applyTournamentRequest(tournament, req)
	if err := s.repo.Update(ctx, tournament); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update tournament")
	}
	return tournament, nil
}

// Delete removes a tournament and its cached table.
func (s *TournamentService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete tournament")
	}
	_ = s.cache.Invalidate(ctx, StandingsKey(id))
	return nil
}

func (s *TournamentService) validate(req models.UpsertTournamentRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid tournament payload")
	}
	if req.EndDate != nil && req.EndDate.Before(req.StartDate) {
		return appErrors.Clone(appErrors.ErrValidation, "end_date must not be before start_date")
	}
	return nil
}

func applyTournamentRequest(tournament *models.Tournament, req models.UpsertTournamentRequest) {
	tournament.Name = strings.TrimSpace(req.Name)
	tournament.Season = strings.TrimSpace(req.Season)
	tournament.StartDate = req.StartDate
	tournament.EndDate = req.EndDate
	tournament.Description = req.Description
	tournament.LogoURL = req.LogoURL
}
