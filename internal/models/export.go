package models

import "time"

// ExportFormat enumerates supported export formats.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportKind names the dataset being exported.
type ExportKind string

const (
	ExportKindFixtures   ExportKind = "fixtures"
	ExportKindActivities ExportKind = "activities"
)

// ExportResult describes a stored export and its signed download link.
type ExportResult struct {
	Kind         ExportKind   `json:"kind"`
	Format       ExportFormat `json:"format"`
	RelativePath string       `json:"-"`
	Token        string       `json:"token"`
	URL          string       `json:"url"`
	Rows         int          `json:"rows"`
	ExpiresAt    time.Time    `json:"expires_at"`
}

// ExportRequest narrows the exported rows to a date range.
type ExportRequest struct {
	Format ExportFormat
	From   *time.Time
	To     *time.Time
}
