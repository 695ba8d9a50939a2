package markdown_test

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkyoung/code-refactor/internal/adapter/output/markdown"
	"github.com/bkyoung/code-refactor/internal/domain"
)

func fixedClock() string { return "20260102T030405Z" }

func TestWriterProducesRunReport(t *testing.T) {
	dir := t.TempDir()
	writer := markdown.NewWriter(fixedClock)

	summary := domain.RunSummary{
		TargetDir:  "/work/project",
		TotalFiles: 2,
		Succeeded:  1,
		Failed:     1,
		Elapsed:    1500 * time.Millisecond,
		Results: []domain.FileRunResult{
			{
				File:       "/work/project/calc.py",
				Status:     domain.StatusSuccess,
				Iterations: 2,
				FinalScore: 8.5,
				Records: []domain.IterationRecord{
					{Index: 1, IssuesFound: 3, Fix: domain.FixOutcome{Action: domain.ActionFix}, Validation: domain.ValidationResult{Verdict: domain.VerdictRetry, QualityScore: 6.0}},
					{Index: 2, IssuesFound: 1, Fix: domain.FixOutcome{Action: domain.ActionFix}, Validation: domain.ValidationResult{Verdict: domain.VerdictPass, QualityScore: 8.5}},
				},
			},
			{File: "/work/project/util.py", Status: domain.StatusMaxIterations, Iterations: 10, FinalScore: 5.0},
		},
	}

	path, err := writer.Write(context.Background(), dir, summary)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "refactor_project_20260102T030405Z.md"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "# Refactoring Run Report")
	assert.Contains(t, content, "- Success rate: 50%")
	assert.Contains(t, content, "### /work/project/calc.py")
	// SNAKE_CASE statuses render as title-cased headings.
	assert.Contains(t, content, "- Status: Max Iterations")
	assert.Contains(t, content, "verdict PASS (score 8.50)")
}

func TestWriterEmptyRun(t *testing.T) {
	dir := t.TempDir()
	writer := markdown.NewWriter(fixedClock)

	path, err := writer.Write(context.Background(), dir, domain.RunSummary{TargetDir: "/work/empty"})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "No candidate files found.")
}
