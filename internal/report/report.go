// Package report renders a human-readable summary of an analysis run.
package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/yudduy/ira/internal/models"
	"github.com/yudduy/ira/pkg/metadata"
)

// statusOrder fixes the order of the status breakdown.
var statusOrder = []models.Status{
	models.StatusCompleted,
	models.StatusAnalysisError,
	models.StatusContentExtractionFailed,
	models.StatusInsufficientSnapshots,
	models.StatusPending,
}

var tableHeader = []string{"Company", "Domain", "Status", "Pre words", "Post words", "Change level", "Confidence"}

// Report is the input to rendering.
type Report struct {
	GeneratedAt time.Time
	RunID       string
	Records     []models.ChangeRecord
}

// Summary counts records per status and per overall change level.
type Summary struct {
	ByStatus     map[models.Status]int
	ByChange     map[string]int
	ChangeLevels []string
	Total        int
}

// Summarize tallies records. ChangeLevels lists levels in first-seen order.
func Summarize(records []models.ChangeRecord) Summary {
	s := Summary{
		ByStatus: make(map[models.Status]int),
		ByChange: make(map[string]int),
		Total:    len(records),
	}

	for _, rec := range records {
		s.ByStatus[rec.Status()]++

		level, ok := rec.Fields().Get("overall_change_level")
		if !ok || level == nil {
			continue
		}

		key := fmt.Sprint(level)
		if s.ByChange[key] == 0 {
			s.ChangeLevels = append(s.ChangeLevels, key)
		}

		s.ByChange[key]++
	}

	return s
}

// Markdown renders and signs the report.
func Markdown(r Report) string {
	summary := Summarize(r.Records)

	var sb strings.Builder

	sb.WriteString("# IRA Messaging Change Analysis\n\n")
	fmt.Fprintf(&sb, "- Run: `%s`\n", r.RunID)
	fmt.Fprintf(&sb, "- Generated: %s\n", r.GeneratedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&sb, "- Subjects: %d\n\n", summary.Total)

	sb.WriteString("## Status\n\n")

	for _, st := range statusOrder {
		if n := summary.ByStatus[st]; n > 0 {
			fmt.Fprintf(&sb, "- %s: %d\n", st, n)
		}
	}

	if len(summary.ChangeLevels) > 0 {
		sb.WriteString("\n## Change levels\n\n")

		for _, level := range summary.ChangeLevels {
			fmt.Fprintf(&sb, "- %s: %d\n", level, summary.ByChange[level])
		}
	}

	sb.WriteString("\n## Subjects\n\n")

	rows := make([][]string, 0, len(r.Records))
	for _, rec := range r.Records {
		rows = append(rows, recordRow(rec))
	}

	sb.WriteString(strings.Join(renderTable(tableHeader, rows), "\n"))
	sb.WriteString("\n")

	return metadata.Sign(sb.String(), metadata.Metadata{
		RunID:       r.RunID,
		Subjects:    summary.Total,
		Complete:    summary.ByStatus[models.StatusCompleted] == summary.Total,
		GeneratedAt: r.GeneratedAt,
	})
}

func recordRow(rec models.ChangeRecord) []string {
	fields := rec.Fields()

	cell := func(key string) string {
		v, ok := fields.Get(key)
		if !ok || v == nil {
			return ""
		}

		return fmt.Sprint(v)
	}

	return []string{
		rec.Subject.Name,
		rec.Subject.Domain,
		string(rec.Status()),
		cell(models.ColPreWordCount),
		cell(models.ColPostWordCount),
		cell("overall_change_level"),
		cell("overall_confidence"),
	}
}

// HTML converts report markdown to an HTML fragment. The metadata block is not rendered.
func HTML(markdown string) (string, error) {
	_, clean := metadata.Extract(markdown)

	md := goldmark.New(goldmark.WithExtensions(extension.Table))

	var buf bytes.Buffer
	if err := md.Convert([]byte(clean), &buf); err != nil {
		return "", fmt.Errorf("failed to render html: %w", err)
	}

	return buf.String(), nil
}

// WriteFile renders r to path, as HTML when the extension is .html or .htm.
func WriteFile(path string, r Report) error {
	content := Markdown(r)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		html, err := HTML(content)
		if err != nil {
			return err
		}

		content = html
	}

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}
