package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/rugby-club-api/internal/calendar"
	"github.com/noah-isme/rugby-club-api/internal/models"
	appErrors "github.com/noah-isme/rugby-club-api/pkg/errors"
	"github.com/noah-isme/rugby-club-api/pkg/ical"
)

const maxFeedReminder = 7 * 24 * time.Hour

type feedActivitySource interface {
	Between(ctx context.Context, from, to time.Time) ([]models.Activity, error)
}

type feedMatchSource interface {
	List(ctx context.Context, filter models.MatchFilter) ([]models.Match, *models.Pagination, error)
}

type feedTrainingSource interface {
	AllSessions(ctx context.Context, from, to time.Time) ([]models.TrainingSession, error)
}

// FeedOptions selects what a calendar feed contains.
type FeedOptions struct {
	IncludeMatches  bool
	IncludeTraining bool
	Reminder        time.Duration
}

// FeedService renders the club calendar as iCalendar.
type FeedService struct {
	activities feedActivitySource
	matches    feedMatchSource
	training   feedTrainingSource
	club       *ClubService
	logger     *zap.Logger
	loc        *time.Location
	horizon    time.Duration
	now        func() time.Time
}

// NewFeedService constructs the service. matches and training may be nil.
func NewFeedService(activities feedActivitySource, matches feedMatchSource, training feedTrainingSource, club *ClubService, logger *zap.Logger, loc *time.Location, horizon time.Duration) *FeedService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	if horizon <= 0 {
		horizon = 90 * 24 * time.Hour
	}
	return &FeedService{
		activities: activities,
		matches:    matches,
		training:   training,
		club:       club,
		logger:     logger,
		loc:        loc,
		horizon:    horizon,
		now:        time.Now,
	}
}

// Render builds the feed covering today through the configured horizon.
func (s *FeedService) Render(ctx context.Context, opts FeedOptions) (string, error) {
	if opts.Reminder < 0 || opts.Reminder > maxFeedReminder {
		return "", appErrors.Clone(appErrors.ErrValidation, "reminder must be between 0 and 10080 minutes")
	}
	now := s.now()
	local := now.In(s.loc)
	from := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)
	to := from.Add(s.horizon)

	builder := ical.NewBuilder(s.club.Name(), s.club.Domain(), ical.WithReminder(opts.Reminder), ical.WithTimezone(s.loc.String()))

	activities, err := s.activities.Between(ctx, from, to)
	if err != nil {
		return "", err
	}
	for _, activity := range activities {
		builder.Add(s.activityEntry(activity))
	}

	if opts.IncludeMatches && s.matches != nil {
		matches, _, err := s.matches.List(ctx, models.MatchFilter{From: &from, To: &to, PageSize: 200, SortOrder: "asc"})
		if err != nil {
			return "", err
		}
		for _, match := range matches {
			if match.Status == models.MatchStatusCancelled {
				continue
			}
			builder.Add(s.matchEntry(match))
		}
	}

	if opts.IncludeTraining && s.training != nil {
		sessions, err := s.training.AllSessions(ctx, from, minTime(to, from.Add(maxSessionWindow)))
		if err != nil {
			return "", err
		}
		for _, session := range sessions {
			builder.Add(ical.Entry{
				UID:        fmt.Sprintf("training-%s-%d", session.ProgramID, session.Start.Unix()),
				Summary:    session.ProgramName,
				Location:   session.Location,
				Start:      session.Start,
				End:        session.End,
				Categories: []string{"TRAINING"},
			})
		}
	}

	s.logger.Debug("calendar feed rendered", zap.Int("entries", builder.Len()))
	return builder.Serialize(now), nil
}

func (s *FeedService) activityEntry(activity models.Activity) ical.Entry {
	entry := ical.Entry{
		UID:         "activity-" + activity.ID,
		Summary:     activity.Title,
		Description: activity.Description,
		Location:    activity.Location,
		Categories:  []string{"ACTIVITY"},
		UpdatedAt:   activity.UpdatedAt,
	}
	if _, _, ok := calendar.ParseClock(activity.Clock()); ok {
		entry.Start = calendar.Target(activity.Date, activity.Clock(), s.loc)
	} else {
		entry.Start = calendar.CalendarDay(activity.Date, time.UTC)
		entry.AllDay = true
	}
	return entry
}

func (s *FeedService) matchEntry(match models.Match) ical.Entry {
	home, away := s.club.Name(), match.Opponent
	if !match.IsHome {
		home, away = away, home
	}
	entry := ical.Entry{
		UID:        "match-" + match.ID,
		Summary:    fmt.Sprintf("%s vs %s", home, away),
		Location:   match.Venue,
		Start:      calendar.Target(match.MatchDate, match.Kickoff(), s.loc),
		Categories: []string{"MATCH"},
		UpdatedAt:  match.UpdatedAt,
	}
	entry.End = entry.Start.Add(2 * time.Hour)
	if match.TournamentName != nil {
		entry.Description = *match.TournamentName
	}
	return entry
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
