package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/bkyoung/code-refactor/internal/domain"
	"github.com/bkyoung/code-refactor/internal/sandbox"
)

// retryWarnThreshold is how many RETRY verdicts a single file tolerates
// before the controller starts warning. Purely observability; the loop is
// bounded by maxIterations alone.
const retryWarnThreshold = 3

// IterationController drives one file through the audit/fix/validate loop
// until a terminal status is reached or the iteration cap is hit.
type IterationController struct {
	auditor       Auditor
	fixer         Fixer
	judge         Judge
	logger        Logger
	checkpointer  Checkpointer
	maxIterations int
}

// NewIterationController wires the per-file loop. checkpointer may be nil.
func NewIterationController(auditor Auditor, fixer Fixer, judge Judge, logger Logger, checkpointer Checkpointer, maxIterations int) *IterationController {
	if maxIterations <= 0 {
		maxIterations = 10
	}
	return &IterationController{
		auditor:       auditor,
		fixer:         fixer,
		judge:         judge,
		logger:        logger,
		checkpointer:  checkpointer,
		maxIterations: maxIterations,
	}
}

// ProcessFile runs the iteration loop for a single file and returns its
// frozen result. Capability errors become terminal statuses here; the only
// error that escapes is a sandbox violation, which must abort the whole run.
func (c *IterationController) ProcessFile(ctx context.Context, file string) (domain.FileRunResult, error) {
	result := domain.FileRunResult{File: file}
	previousScore := -1.0
	retries := 0

	for index := 1; index <= c.maxIterations; index++ {
		result.Iterations = index

		issues, err := c.auditor.Audit(ctx, file)
		if err != nil {
			c.logger.LogWarning(ctx, "audit failed", map[string]interface{}{
				"file": file, "iteration": index, "error": err.Error(),
			})
			result.Status = domain.StatusAuditFailed
			return result, nil
		}

		if len(issues) == 0 {
			result.Status = domain.StatusClean
			return result, nil
		}

		outcome, err := c.fixer.Fix(ctx, file, issues)
		if errors.Is(err, sandbox.ErrSecurityViolation) {
			return result, err
		}
		if err != nil {
			c.logger.LogWarning(ctx, "fix failed", map[string]interface{}{
				"file": file, "iteration": index, "error": err.Error(),
			})
			result.Status = domain.StatusFixFailed
			return result, nil
		}
		switch outcome.Action {
		case domain.ActionFix:
			// continue
		case domain.ActionSkip:
			result.Status = domain.StatusSkipped
			return result, nil
		default:
			c.logger.LogWarning(ctx, "fixer returned unexpected action", map[string]interface{}{
				"file": file, "action": string(outcome.Action), "reason": outcome.Reason,
			})
			result.Status = domain.StatusUnexpectedAction
			return result, nil
		}

		c.checkpoint(ctx, file, index, outcome)

		testFile := LocateCompanionTest(file)
		if testFile == "" {
			c.logger.LogInfo(ctx, "no companion test, validating in score-only mode", map[string]interface{}{
				"file": file,
			})
		}

		validation, err := c.judge.Validate(ctx, file, testFile, previousScore)
		if err != nil {
			c.logger.LogWarning(ctx, "validation failed", map[string]interface{}{
				"file": file, "iteration": index, "error": err.Error(),
			})
			result.Status = domain.StatusUnknownVerdict
			result.Detail = fmt.Sprintf("validation error: %s", err)
			return result, nil
		}

		delta := 0.0
		if previousScore >= 0 {
			delta = validation.QualityScore - previousScore
		}
		previousScore = validation.QualityScore
		result.FinalScore = validation.QualityScore
		result.Records = append(result.Records, domain.IterationRecord{
			Index:       index,
			IssuesFound: len(issues),
			Fix:         outcome,
			Validation:  validation,
			ScoreDelta:  delta,
		})

		switch validation.Verdict {
		case domain.VerdictPass:
			result.Status = domain.StatusSuccess
			return result, nil
		case domain.VerdictRetry:
			retries++
			if retries > retryWarnThreshold {
				c.logger.LogWarning(ctx, "file keeps retrying", map[string]interface{}{
					"file": file, "retries": retries, "score": validation.QualityScore,
				})
			}
		case domain.VerdictFail:
			// full re-audit next cycle
		default:
			result.Status = domain.StatusUnknownVerdict
			result.Detail = fmt.Sprintf("unrecognized verdict %q", validation.Verdict)
			return result, nil
		}
	}

	result.Status = domain.StatusMaxIterations
	return result, nil
}

func (c *IterationController) checkpoint(ctx context.Context, file string, index int, outcome domain.FixOutcome) {
	if c.checkpointer == nil || len(outcome.FilesChanged) == 0 {
		return
	}
	message := fmt.Sprintf("rf: fix %s (iteration %d)", file, index)
	if err := c.checkpointer.Checkpoint(ctx, outcome.FilesChanged, message); err != nil {
		c.logger.LogWarning(ctx, "checkpoint failed", map[string]interface{}{
			"file": file, "error": err.Error(),
		})
	}
}
