package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkyoung/code-refactor/internal/adapter/store/sqlite"
	"github.com/bkyoung/code-refactor/internal/domain"
)

func setupTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	// Use in-memory database for testing
	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err, "failed to create test store")

	t.Cleanup(func() {
		s.Close()
	})

	return s
}

func sampleResults() []domain.FileRunResult {
	passed := true
	return []domain.FileRunResult{
		{
			File:       "/work/calc.py",
			Status:     domain.StatusSuccess,
			Iterations: 2,
			FinalScore: 8.5,
			Records: []domain.IterationRecord{
				{
					Index:       1,
					IssuesFound: 3,
					Fix:         domain.FixOutcome{Action: domain.ActionFix, FilesChanged: []string{"/work/calc.py"}},
					Validation:  domain.ValidationResult{Verdict: domain.VerdictRetry, QualityScore: 6.0},
				},
				{
					Index:       2,
					IssuesFound: 1,
					Fix:         domain.FixOutcome{Action: domain.ActionFix, FilesChanged: []string{"/work/calc.py"}},
					Validation:  domain.ValidationResult{Verdict: domain.VerdictPass, QualityScore: 8.5, TestPassed: &passed},
					ScoreDelta:  2.5,
				},
			},
		},
		{File: "/work/util.py", Status: domain.StatusClean, Iterations: 1},
	}
}

func TestSaveRunPersistsEverything(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	results := sampleResults()
	run := domain.RunSummary{
		TargetDir:  "/work",
		TotalFiles: 2,
		Succeeded:  2,
		Elapsed:    3 * time.Second,
	}

	require.NoError(t, s.SaveRun(ctx, run, results))

	count, err := s.RunCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSaveRunIsRepeatable(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	run := domain.RunSummary{TargetDir: "/work", TotalFiles: 0}
	require.NoError(t, s.SaveRun(ctx, run, nil))
	require.NoError(t, s.SaveRun(ctx, run, nil))

	count, err := s.RunCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestSaveRunEmptyResults(t *testing.T) {
	s := setupTestStore(t)

	err := s.SaveRun(context.Background(), domain.RunSummary{TargetDir: "/empty"}, nil)
	assert.NoError(t, err)
}
