package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/bkyoung/code-refactor/internal/domain"
)

// Controller orchestrates a full run: sandbox pre-flight, scan, sequential
// per-file iteration loops, aggregation, and persistence.
type Controller struct {
	guard      Guard
	scanner    Scanner
	iterations *IterationController
	journal    Journal
	logger     Logger
	store      Store
	clock      func() time.Time
}

// NewController wires the pipeline. store may be nil when history
// persistence is disabled.
func NewController(guard Guard, scanner Scanner, iterations *IterationController, journal Journal, logger Logger, store Store) *Controller {
	return &Controller{
		guard:      guard,
		scanner:    scanner,
		iterations: iterations,
		journal:    journal,
		logger:     logger,
		store:      store,
		clock:      time.Now,
	}
}

// Run processes every candidate file under targetDir and returns the run
// summary plus per-file results. A sandbox violation on the target directory
// itself aborts before any agent call. Cancellation stops advancement to new
// files; the file mid-loop finishes its current step first.
func (c *Controller) Run(ctx context.Context, targetDir string) (domain.RunSummary, []domain.FileRunResult, error) {
	started := c.clock()

	if err := c.guard.Contains(targetDir); err != nil {
		c.journalEvent("target_rejected", JournalStatusFailed, map[string]interface{}{
			"target_dir": targetDir, "error": err.Error(),
		})
		return domain.RunSummary{}, nil, fmt.Errorf("target directory: %w", err)
	}

	files, err := c.scanner.Scan(targetDir)
	if err != nil {
		return domain.RunSummary{}, nil, fmt.Errorf("scan %s: %w", targetDir, err)
	}

	c.journalEvent("run_started", JournalStatusSuccess, map[string]interface{}{
		"target_dir": targetDir, "candidates": len(files),
	})
	c.logger.LogInfo(ctx, "pipeline started", map[string]interface{}{
		"target_dir": targetDir, "candidates": len(files),
	})

	results := make([]domain.FileRunResult, 0, len(files))
	for _, file := range files {
		if ctx.Err() != nil {
			c.logger.LogWarning(ctx, "run cancelled, skipping remaining files", map[string]interface{}{
				"processed": len(results), "remaining": len(files) - len(results),
			})
			break
		}

		c.journalEvent("file_started", JournalStatusSuccess, map[string]interface{}{"file": file})
		result, err := c.iterations.ProcessFile(ctx, file)
		if err != nil {
			// Only sandbox violations escape the per-file loop; they abort
			// the whole run.
			c.journalEvent("write_rejected", JournalStatusFailed, map[string]interface{}{
				"file": file, "error": err.Error(),
			})
			return domain.RunSummary{}, results, err
		}
		results = append(results, result)
		c.journalEvent("file_finished", fileStatusLabel(result), map[string]interface{}{
			"file":       file,
			"status":     string(result.Status),
			"iterations": result.Iterations,
			"score":      result.FinalScore,
		})
	}

	summary := summarize(targetDir, results, c.clock().Sub(started))
	c.journalEvent("run_finished", JournalStatusSuccess, map[string]interface{}{
		"total":     summary.TotalFiles,
		"succeeded": summary.Succeeded,
		"failed":    summary.Failed,
		"skipped":   summary.Skipped,
	})

	if c.store != nil {
		if err := c.store.SaveRun(ctx, summary, results); err != nil {
			c.logger.LogWarning(ctx, "failed to persist run history", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	return summary, results, nil
}

func summarize(targetDir string, results []domain.FileRunResult, elapsed time.Duration) domain.RunSummary {
	summary := domain.RunSummary{TargetDir: targetDir, Elapsed: elapsed}
	for _, result := range results {
		summary.Tally(result)
	}
	return summary
}

func (c *Controller) journalEvent(event, status string, details map[string]interface{}) {
	if c.journal == nil {
		return
	}
	details["event"] = event
	if err := c.journal.Record("pipeline", "", JournalPipeline, status, details); err != nil {
		c.logger.LogWarning(context.Background(), "journal write failed", map[string]interface{}{
			"event": event, "error": err.Error(),
		})
	}
}

// fileStatusLabel maps a file outcome onto the journal's status field.
// SKIPPED is neither: the fixer declined, nothing failed.
func fileStatusLabel(result domain.FileRunResult) string {
	if result.Succeeded() || result.Status == domain.StatusSkipped {
		return JournalStatusSuccess
	}
	return JournalStatusFailed
}
