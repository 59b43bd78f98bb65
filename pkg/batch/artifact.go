package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/entrhq/dossier/pkg/types"
)

// ArtifactWriter writes run reports.
type ArtifactWriter struct {
	outputDir string
}

// NewArtifactWriter creates a writer for outputDir.
func NewArtifactWriter(outputDir string) *ArtifactWriter {
	return &ArtifactWriter{outputDir: outputDir}
}

// WriteAll writes the JSON and Markdown reports for summary, named after
// its run id, and returns their paths.
func (w *ArtifactWriter) WriteAll(summary *Summary) ([]string, error) {
	if err := os.MkdirAll(w.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}

	jsonPath, err := w.WriteRunJSON(summary)
	if err != nil {
		return nil, err
	}
	mdPath, err := w.WriteSummaryMarkdown(summary)
	if err != nil {
		return nil, err
	}
	return []string{jsonPath, mdPath}, nil
}

func (w *ArtifactWriter) path(summary *Summary, ext string) string {
	stamp := summary.StartTime.Format("20060102-150405")
	return filepath.Join(w.outputDir, fmt.Sprintf("%s-%s-%s.%s", stamp, summary.Mode, shortID(summary.RunID), ext))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// WriteRunJSON writes the full summary, records included.
func (w *ArtifactWriter) WriteRunJSON(summary *Summary) (string, error) {
	path := w.path(summary, "json")

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal run summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write run JSON: %w", err)
	}
	return path, nil
}

// WriteSummaryMarkdown writes a human-readable report with one table row
// per record.
func (w *ArtifactWriter) WriteSummaryMarkdown(summary *Summary) (string, error) {
	path := w.path(summary, "md")

	var md strings.Builder
	md.WriteString("# Dossier Batch Summary\n\n")
	fmt.Fprintf(&md, "**Mode:** %s\n\n", summary.Mode)
	fmt.Fprintf(&md, "**Run:** %s\n\n", summary.RunID)
	fmt.Fprintf(&md, "**Started:** %s\n\n", summary.StartTime.Format(time.RFC3339))
	fmt.Fprintf(&md, "**Completed:** %s\n\n", summary.EndTime.Format(time.RFC3339))
	fmt.Fprintf(&md, "**Duration:** %s\n\n", summary.Duration.Round(time.Second))
	fmt.Fprintf(&md, "**Result:** %s\n\n", summary)

	md.WriteString("## Records\n\n")
	md.WriteString("| # | Identifier | Programme | Decision | Status | Error |\n")
	md.WriteString("|---|---|---|---|---|---|\n")
	for i, r := range summary.Records {
		fmt.Fprintf(&md, "| %d | %s | %s | %s | %s | %s |\n",
			i+1, r.Identifier, r.Programme, r.Decision, statusMark(r.Status), escapeCell(r.Error))
	}

	if err := os.WriteFile(path, []byte(md.String()), 0o600); err != nil {
		return "", fmt.Errorf("failed to write summary markdown: %w", err)
	}
	return path, nil
}

func statusMark(s types.Status) string {
	switch s {
	case types.StatusSuccess:
		return "✅ success"
	case types.StatusFailed:
		return "❌ failed"
	case types.StatusPausedForReview:
		return "⏸ paused for review"
	default:
		return string(s)
	}
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
