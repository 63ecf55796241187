package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/rugby-club-api/internal/models"
	appErrors "github.com/noah-isme/rugby-club-api/pkg/errors"
)

var sponsorTierOrder = map[string]int{"platinum": 0, "gold": 1, "silver": 2, "bronze": 3}

// ClubService serves the static club profile.
type ClubService struct {
	profile *models.ClubProfile
	logger  *zap.Logger
}

// LoadClubProfile reads and validates the YAML profile at path.
func LoadClubProfile(path string) (*models.ClubProfile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open club profile: %w", err)
	}
	defer file.Close()
	return ParseClubProfile(file)
}

// ParseClubProfile decodes a profile, rejecting unknown keys.
func ParseClubProfile(r io.Reader) (*models.ClubProfile, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read club profile: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(raw))
	decoder.KnownFields(true)
	var profile models.ClubProfile
	if err := decoder.Decode(&profile); err != nil {
		return nil, fmt.Errorf("decode club profile: %w", err)
	}
	profile.Name = strings.TrimSpace(profile.Name)
	if profile.Name == "" {
		return nil, fmt.Errorf("club profile: name is required")
	}
	if profile.Colours == nil {
		profile.Colours = []string{}
	}
	if profile.Socials == nil {
		profile.Socials = []models.SocialLink{}
	}
	if profile.Sponsors == nil {
		profile.Sponsors = []models.Sponsor{}
	}
	sort.SliceStable(profile.Sponsors, func(i, j int) bool {
		return tierRank(profile.Sponsors[i].Tier) < tierRank(profile.Sponsors[j].Tier)
	})
	return &profile, nil
}

// NewClubService wraps a loaded profile. A nil profile makes Profile report not found.
func NewClubService(profile *models.ClubProfile, logger *zap.Logger) *ClubService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClubService{profile: profile, logger: logger}
}

// Profile returns a copy of the club profile.
func (s *ClubService) Profile(ctx context.Context) (*models.ClubProfile, error) {
	if s.profile == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "club profile not configured")
	}
	cp := *s.profile
	return &cp, nil
}

// Name returns the club name, used for feed and export titles.
func (s *ClubService) Name() string {
	if s == nil || s.profile == nil {
		return "Rugby Club"
	}
	return s.profile.Name
}

// Domain returns the domain used for iCalendar UIDs.
func (s *ClubService) Domain() string {
	if s == nil || s.profile == nil || s.profile.Domain == "" {
		return "rugby-club.local"
	}
	return s.profile.Domain
}

func tierRank(tier string) int {
	if rank, ok := sponsorTierOrder[strings.ToLower(strings.TrimSpace(tier))]; ok {
		return rank
	}
	return len(sponsorTierOrder)
}
