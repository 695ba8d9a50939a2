package render

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bkyoung/code-refactor/internal/domain"
)

func sampleSummary() domain.RunSummary {
	return domain.RunSummary{
		TargetDir:  "/work/project",
		TotalFiles: 3,
		Succeeded:  2,
		Failed:     1,
		Elapsed:    2 * time.Second,
		Results: []domain.FileRunResult{
			{File: "/work/project/calc.py", Status: domain.StatusSuccess, Iterations: 2, FinalScore: 8.5},
			{File: "/work/project/util.py", Status: domain.StatusClean, Iterations: 1},
			{File: "/work/project/bad.py", Status: domain.StatusMaxIterations, Iterations: 10, FinalScore: 4.0},
		},
	}
}

func TestSummaryPlainOutput(t *testing.T) {
	out := Summary(sampleSummary(), false)

	assert.Contains(t, out, "Refactoring run: /work/project")
	assert.Contains(t, out, "67% success")
	assert.Contains(t, out, "✓ SUCCESS")
	assert.Contains(t, out, "✓ CLEAN")
	assert.Contains(t, out, "✗ MAX_ITERATIONS")
	assert.Contains(t, out, "score 8.50")
	// Plain mode carries no ANSI escapes.
	assert.NotContains(t, out, "\x1b[")
}

func TestSummaryEmptyRun(t *testing.T) {
	out := Summary(domain.RunSummary{TargetDir: "/empty"}, false)
	assert.Contains(t, out, "no candidate files found")
}

func TestSummarySkippedMarker(t *testing.T) {
	summary := domain.RunSummary{
		TargetDir:  "/work",
		TotalFiles: 1,
		Skipped:    1,
		Results: []domain.FileRunResult{
			{File: "/work/frozen.py", Status: domain.StatusSkipped, Iterations: 1},
		},
	}
	out := Summary(summary, false)
	assert.Contains(t, out, "- SKIPPED")
}
