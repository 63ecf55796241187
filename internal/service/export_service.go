package service

import (
	"context"
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/rugby-club-api/internal/calendar"
	"github.com/noah-isme/rugby-club-api/internal/models"
	appErrors "github.com/noah-isme/rugby-club-api/pkg/errors"
	"github.com/noah-isme/rugby-club-api/pkg/export"
)

const exportPrefix = "exports"

type exportFileStorage interface {
	Save(relPath string, data []byte) (string, error)
	Open(relPath string) (*os.File, error)
	CleanupOlderThan(prefix string, ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, head export.Letterhead) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	Retention time.Duration
}

// ExportService renders fixture and activity lists and stores them behind signed links.
type ExportService struct {
	activities feedActivitySource
	matches    feedMatchSource
	storage    exportFileStorage
	signer     urlSigner
	csv        csvRenderer
	pdf        pdfRenderer
	club       *ClubService
	logger     *zap.Logger
	loc        *time.Location
	cfg        ExportConfig
	now        func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(activities feedActivitySource, matches feedMatchSource, files exportFileStorage, signer urlSigner, club *ClubService, cfg ExportConfig, logger *zap.Logger, loc *time.Location) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 72 * time.Hour
	}
	return &ExportService{
		activities: activities,
		matches:    matches,
		storage:    files,
		signer:     signer,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		club:       club,
		logger:     logger,
		loc:        loc,
		cfg:        cfg,
		now:        time.Now,
	}
}

// Location returns the club time zone export dates are rendered in.
func (s *ExportService) Location() *time.Location {
	return s.loc
}

// Fixtures exports matches in the requested range.
func (s *ExportService) Fixtures(ctx context.Context, req models.ExportRequest) (*models.ExportResult, error) {
	format, err := normalizeExportFormat(req.Format)
	if err != nil {
		return nil, err
	}
	from, to := s.exportRange(req)
	matches, _, err := s.matches.List(ctx, models.MatchFilter{From: &from, To: &to, PageSize: 200, SortOrder: "asc"})
	if err != nil {
		return nil, err
	}
	rows := make([]map[string]string, 0, len(matches))
	for _, match := range matches {
		kickoff := calendar.Target(match.MatchDate, match.Kickoff(), s.loc)
		venue := "Away"
		if match.IsHome {
			venue = "Home"
		}
		rows = append(rows, map[string]string{
			"Date":       kickoff.Format("2006-01-02"),
			"Kickoff":    match.Kickoff(),
			"Opponent":   match.Opponent,
			"H/A":        venue,
			"Venue":      match.Venue,
			"Tournament": deref(match.TournamentName),
			"Status":     string(match.Status),
			"Score":      formatScore(match.HomeScore, match.AwayScore),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Date", "Kickoff", "Opponent", "H/A", "Venue", "Tournament", "Status", "Score"},
		Rows:    rows,
	}
	return s.store(models.ExportKindFixtures, format, dataset, s.letterhead("Fixtures", from, to))
}

// Activities exports activities with their registration counts.
func (s *ExportService) Activities(ctx context.Context, req models.ExportRequest) (*models.ExportResult, error) {
	format, err := normalizeExportFormat(req.Format)
	if err != nil {
		return nil, err
	}
	from, to := s.exportRange(req)
	activities, err := s.activities.Between(ctx, from, to)
	if err != nil {
		return nil, err
	}
	rows := make([]map[string]string, 0, len(activities))
	for _, activity := range activities {
		rows = append(rows, map[string]string{
			"Date":         calendar.DateKey(activity.Date),
			"Start":        activity.Clock(),
			"Title":        activity.Title,
			"Location":     activity.Location,
			"Participants": strconv.Itoa(activity.ParticipantCount),
			"Capacity":     calendar.CapacityLabel(activity.ParticipantCount, activity.MaxParticipants),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Date", "Start", "Title", "Location", "Participants", "Capacity"},
		Rows:    rows,
	}
	return s.store(models.ExportKindActivities, format, dataset, s.letterhead("Activities", from, to))
}

// Open verifies a download token and opens the referenced export.
func (s *ExportService) Open(token string) (*os.File, string, error) {
	claims, err := s.signer.Verify(token)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrForbidden, "export link invalid or expired")
	}
	file, err := s.storage.Open(claims.Path)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "export no longer available")
	}
	return file, path.Base(claims.Path), nil
}

// Cleanup removes exports older than ttl, defaulting to the configured retention.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.Retention
	}
	return s.storage.CleanupOlderThan(exportPrefix, ttl)
}

func (s *ExportService) store(kind models.ExportKind, format models.ExportFormat, dataset export.Dataset, head export.Letterhead) (*models.ExportResult, error) {
	var (
		payload []byte
		err     error
	)
	switch format {
	case models.ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, head)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	filename := fmt.Sprintf("%s_%s.%s", kind, s.now().UTC().Format("20060102_150405"), format)
	relPath, err := s.storage.Save(path.Join(exportPrefix, filename), payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store export")
	}
	token, expiresAt, err := s.signer.Sign(string(kind), relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign export")
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	s.logger.Info("export generated", zap.String("kind", string(kind)), zap.String("format", string(format)), zap.Int("rows", len(dataset.Rows)))
	return &models.ExportResult{
		Kind:         kind,
		Format:       format,
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/exports/%s", prefix, token),
		Rows:         len(dataset.Rows),
		ExpiresAt:    expiresAt,
	}, nil
}

func (s *ExportService) letterhead(subject string, from, to time.Time) export.Letterhead {
	return export.Letterhead{
		Title:     fmt.Sprintf("%s %s", s.club.Name(), subject),
		Subtitle:  fmt.Sprintf("%s to %s", from.In(s.loc).Format("2 Jan 2006"), to.In(s.loc).Format("2 Jan 2006")),
		Club:      s.club.Name(),
		Generated: s.now().In(s.loc),
	}
}

// exportRange defaults to the current season window: one year back to one year ahead.
func (s *ExportService) exportRange(req models.ExportRequest) (time.Time, time.Time) {
	now := s.now().In(s.loc)
	from := now.AddDate(-1, 0, 0)
	to := now.AddDate(1, 0, 0)
	if req.From != nil {
		from = *req.From
	}
	if req.To != nil {
		to = *req.To
	}
	return from, to
}

func normalizeExportFormat(format models.ExportFormat) (models.ExportFormat, error) {
	switch models.ExportFormat(strings.ToLower(string(format))) {
	case "", models.ExportFormatCSV:
		return models.ExportFormatCSV, nil
	case models.ExportFormatPDF:
		return models.ExportFormatPDF, nil
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

func formatScore(home, away *int) string {
	if home == nil || away == nil {
		return ""
	}
	return fmt.Sprintf("%d-%d", *home, *away)
}

func deref(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}
