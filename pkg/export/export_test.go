package export

import (
	"bytes"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterEscapesFormulaCells(t *testing.T) {
	data := Dataset{
		Headers: []string{"Title", "Score"},
		Rows: []map[string]string{
			{"Title": "=HYPERLINK(\"http://x\")", "Score": "24-17"},
			{"Title": "@boss", "Score": ""},
			{"Title": "Quiz night, 2nd round"},
		},
	}

	out, err := NewCSVExporter().Render(data)
	require.NoError(t, err)
	body := string(out)
	assert.Contains(t, body, "Title,Score\n")
	assert.Contains(t, body, `"'=HYPERLINK(""http://x"")",24-17`)
	assert.Contains(t, body, "'@boss,\n")
	assert.Contains(t, body, `"Quiz night, 2nd round",`)
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterPaginatesLongTables(t *testing.T) {
	rows := make([]map[string]string, 0, 120)
	for i := 0; i < 120; i++ {
		rows = append(rows, map[string]string{"Date": "2024-09-07", "Opponent": fmt.Sprintf("Stade Français %d", i)})
	}
	head := Letterhead{
		Title:     "Riverside RFC Fixtures",
		Subtitle:  "1 Sep 2024 to 1 Sep 2025",
		Club:      "Riverside RFC",
		Generated: time.Date(2024, 9, 1, 10, 0, 0, 0, time.UTC),
	}

	out, err := NewPDFExporter().Render(Dataset{Headers: []string{"Date", "Opponent"}, Rows: rows}, head)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	pages := regexp.MustCompile(`/Type /Page\b`).FindAll(out, -1)
	assert.Greater(t, len(pages), 1)
}

func TestPDFExporterRendersEmptyDataset(t *testing.T) {
	out, err := NewPDFExporter().Render(Dataset{Headers: []string{"Date", "Title"}}, Letterhead{Title: "Activities"})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	_, err = NewPDFExporter().Render(Dataset{}, Letterhead{})
	assert.Error(t, err)
}
