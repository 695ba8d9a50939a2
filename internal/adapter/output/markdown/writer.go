// Package markdown renders the run report artifact.
package markdown

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/bkyoung/code-refactor/internal/domain"
)

type clock func() string

// summaryRounding keeps elapsed times readable in reports.
const summaryRounding = 10 * time.Millisecond

// Writer renders run summaries into Markdown files.
type Writer struct {
	now clock
}

// NewWriter constructs a Markdown writer with a timestamp supplier.
func NewWriter(now clock) *Writer {
	return &Writer{now: now}
}

// Write persists a run report to outputDir and returns the file path.
func (w *Writer) Write(ctx context.Context, outputDir string, summary domain.RunSummary) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	filename := fmt.Sprintf("refactor_%s_%s.md", sanitise(filepath.Base(summary.TargetDir)), w.now())
	path := filepath.Join(outputDir, filename)

	if err := os.WriteFile(path, []byte(buildContent(summary)), 0o644); err != nil {
		return "", fmt.Errorf("write markdown: %w", err)
	}
	return path, nil
}

func buildContent(summary domain.RunSummary) string {
	var builder strings.Builder
	caser := cases.Title(language.English)

	builder.WriteString("# Refactoring Run Report\n\n")
	builder.WriteString(fmt.Sprintf("- Target: %s\n", summary.TargetDir))
	builder.WriteString(fmt.Sprintf("- Files: %d\n", summary.TotalFiles))
	builder.WriteString(fmt.Sprintf("- Succeeded: %d\n", summary.Succeeded))
	builder.WriteString(fmt.Sprintf("- Failed: %d\n", summary.Failed))
	builder.WriteString(fmt.Sprintf("- Skipped: %d\n", summary.Skipped))
	builder.WriteString(fmt.Sprintf("- Success rate: %.0f%%\n", summary.SuccessRate()*100))
	builder.WriteString(fmt.Sprintf("- Elapsed: %s\n\n", summary.Elapsed.Round(summaryRounding)))

	if len(summary.Results) == 0 {
		builder.WriteString("No candidate files found.\n")
		return builder.String()
	}

	builder.WriteString("## Files\n\n")
	for _, result := range summary.Results {
		builder.WriteString(fmt.Sprintf("### %s\n", result.File))
		builder.WriteString(fmt.Sprintf("- Status: %s\n", statusLabel(caser, result.Status)))
		builder.WriteString(fmt.Sprintf("- Iterations: %d\n", result.Iterations))
		if result.FinalScore > 0 {
			builder.WriteString(fmt.Sprintf("- Final score: %.2f/10\n", result.FinalScore))
		}
		for _, rec := range result.Records {
			builder.WriteString(fmt.Sprintf("- Iteration %d: %d issue(s), %s, verdict %s (score %.2f)\n",
				rec.Index, rec.IssuesFound, strings.ToLower(string(rec.Fix.Action)), rec.Validation.Verdict, rec.Validation.QualityScore))
		}
		builder.WriteString("\n")
	}
	return builder.String()
}

// statusLabel turns SNAKE_CASE terminal statuses into report headings.
func statusLabel(caser cases.Caser, status domain.Status) string {
	return caser.String(strings.ToLower(strings.ReplaceAll(string(status), "_", " ")))
}

func sanitise(value string) string {
	if value == "" {
		return "unknown"
	}
	value = strings.ToLower(value)
	value = strings.ReplaceAll(value, string(filepath.Separator), "-")
	value = strings.ReplaceAll(value, " ", "-")
	return value
}
