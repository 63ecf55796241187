package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/rugby-club-api/internal/models"
	appErrors "github.com/noah-isme/rugby-club-api/pkg/errors"
)

type teamStore interface {
	List(ctx context.Context, filter models.TeamMemberFilter) ([]models.TeamMember, int, error)
	FindByID(ctx context.Context, id string) (*models.TeamMember, error)
	JerseyTaken(ctx context.Context, number int, excludeID string) (bool, error)
	Create(ctx context.Context, member *models.TeamMember) error
	Update(ctx context.Context, member *models.TeamMember) error
	Delete(ctx context.Context, id string) error
}

// TeamService manages the squad shown on the team page.
type TeamService struct {
	repo      teamStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeamService constructs the service.
func NewTeamService(repo teamStore, validate *validator.Validate, logger *zap.Logger) *TeamService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeamService{repo: repo, validator: ensureValidator(validate), logger: logger}
}

// Roster returns active members grouped by role.
func (s *TeamService) Roster(ctx context.Context) (*models.TeamRoster, error) {
	active := true
	members, _, err := s.repo.List(ctx, models.TeamMemberFilter{Active: &active, PageSize: 200})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load team")
	}
	roster := &models.TeamRoster{Players: []models.TeamMember{}, Coaches: []models.TeamMember{}, Staff: []models.TeamMember{}}
	for _, member := range members {
		switch member.Role {
		case models.MemberRolePlayer:
			roster.Players = append(roster.Players, member)
		case models.MemberRoleCoach:
			roster.Coaches = append(roster.Coaches, member)
		default:
			roster.Staff = append(roster.Staff, member)
		}
	}
	return roster, nil
}

// List returns members for the admin listing.
func (s *TeamService) List(ctx context.Context, filter models.TeamMemberFilter) ([]models.TeamMember, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 100
	}
	members, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list team members")
	}
	return members, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Get returns a member by id.
func (s *TeamService) Get(ctx context.Context, id string) (*models.TeamMember, error) {
	member, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "team member not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load team member")
	}
	return member, nil
}

// Create adds a member.
func (s *TeamService) Create(ctx context.Context, req models.UpsertTeamMemberRequest) (*models.TeamMember, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid team member payload")
	}
	member := &models.TeamMember{Active: true}
	applyTeamMemberRequest(member, req)
	if err := s.ensureJerseyFree(ctx, member, ""); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, member); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create team member")
	}
	return member, nil
}

// Update replaces a member.
func (s *TeamService) Update(ctx context.Context, id string, req models.UpsertTeamMemberRequest) (*models.TeamMember, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid team member payload")
	}
	member, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applyTeamMemberRequest(member, req)
	if err := s.ensureJerseyFree(ctx, member, id); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, member); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update team member")
	}
	return member, nil
}

// Delete removes a member.
func (s *TeamService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete team member")
	}
	return nil
}

func (s *TeamService) ensureJerseyFree(ctx context.Context, member *models.TeamMember, excludeID string) error {
	if member.Role != models.MemberRolePlayer || !member.Active || member.JerseyNumber == nil {
		return nil
	}
	taken, err := s.repo.JerseyTaken(ctx, *member.JerseyNumber, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check jersey number")
	}
	if taken {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("jersey number %d already assigned", *member.JerseyNumber))
	}
	return nil
}

func applyTeamMemberRequest(member *models.TeamMember, req models.UpsertTeamMemberRequest) {
	member.FullName = strings.TrimSpace(req.FullName)
	member.Role = models.MemberRole(strings.ToUpper(string(req.Role)))
	member.Position = req.Position
	member.JerseyNumber = req.JerseyNumber
	member.PhotoURL = req.PhotoURL
	member.Bio = req.Bio
	member.SortOrder = req.SortOrder
	if req.Active != nil {
		member.Active = *req.Active
	}
}
