package agent

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/bkyoung/code-refactor/internal/adapter/journal"
	"github.com/bkyoung/code-refactor/internal/adapter/llm/httpx"
	"github.com/bkyoung/code-refactor/internal/adapter/runner"
	"github.com/bkyoung/code-refactor/internal/domain"
	"github.com/bkyoung/code-refactor/internal/prompt"
	"github.com/bkyoung/code-refactor/internal/sandbox"
	"github.com/bkyoung/code-refactor/internal/syntax"
)

// DefaultPassThreshold is the pylint score at or above which a file passes.
const DefaultPassThreshold = 8.0

// pylint prints "Your code has been rated at 7.50/10" on its report tail.
var scoreRegex = regexp.MustCompile(`rated at (-?\d+(?:\.\d+)?)/10`)

// CommandRunner runs local tool subprocesses for the Judge.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (runner.CommandResult, error)
}

// JudgeConfig tunes validation behavior.
type JudgeConfig struct {
	// PassThreshold is the minimum quality score for a PASS verdict.
	// Zero means DefaultPassThreshold.
	PassThreshold float64

	// GenerateTests lets the Judge ask the model for a pytest file when no
	// companion test exists. Off by default; score-only mode is the normal
	// path for untested files.
	GenerateTests bool
}

// Judge validates a fixed file with pylint and, when a test file exists,
// pytest, then derives a verdict.
type Judge struct {
	runner    CommandRunner
	client    ChatClient
	templates prompt.Templates
	guard     *sandbox.Guard
	validator *syntax.PythonValidator
	journal   Journal
	logger    Logger
	config    JudgeConfig
}

// NewJudge constructs the validation capability. client may be nil when test
// generation is disabled.
func NewJudge(cmdRunner CommandRunner, client ChatClient, templates prompt.Templates, guard *sandbox.Guard, validator *syntax.PythonValidator, j Journal, logger Logger, config JudgeConfig) *Judge {
	if config.PassThreshold <= 0 {
		config.PassThreshold = DefaultPassThreshold
	}
	return &Judge{
		runner:    cmdRunner,
		client:    client,
		templates: templates,
		guard:     guard,
		validator: validator,
		journal:   j,
		logger:    logger,
		config:    config,
	}
}

// Validate scores file with pylint, runs testFile with pytest when present,
// and derives the verdict. Subprocess timeouts become FAIL verdicts with a
// "timeout" reason, never errors.
func (j *Judge) Validate(ctx context.Context, file, testFile string, previousScore float64) (domain.ValidationResult, error) {
	if testFile == "" && j.config.GenerateTests && j.client != nil {
		testFile = j.generateTest(ctx, file)
	}

	lintResult, err := j.runner.Run(ctx, "pylint", "--score=y", file)
	if errors.Is(err, runner.ErrTimeout) {
		return timeoutResult(0, lintResult.Combined()), nil
	}
	if err != nil {
		return domain.ValidationResult{}, fmt.Errorf("run pylint on %s: %w", file, err)
	}

	score, ok := ParseScore(lintResult.Combined())
	if !ok {
		j.logger.LogWarning(ctx, "could not parse pylint score, assuming 0", map[string]interface{}{
			"file": file,
		})
	}

	var testPassed *bool
	rawOutput := lintResult.Combined()
	if testFile != "" {
		testResult, err := j.runner.Run(ctx, "pytest", testFile)
		if errors.Is(err, runner.ErrTimeout) {
			return timeoutResult(score, testResult.Combined()), nil
		}
		if err != nil {
			return domain.ValidationResult{}, fmt.Errorf("run pytest on %s: %w", testFile, err)
		}
		passed := testResult.ExitCode == 0
		testPassed = &passed
		rawOutput = testResult.Combined()
	}

	verdict, reason := DeriveVerdict(score, testPassed, previousScore, j.config.PassThreshold)
	result := domain.ValidationResult{
		Verdict:      verdict,
		QualityScore: score,
		TestPassed:   testPassed,
		Reason:       reason,
		RawOutput:    rawOutput,
	}

	status := journal.StatusSuccess
	if verdict == domain.VerdictFail {
		status = journal.StatusFailed
	}
	record(ctx, j.journal, j.logger, "judge", j.model(), journal.ActionDebug, status, map[string]interface{}{
		"file":      file,
		"test_file": testFile,
		"score":     score,
		"verdict":   string(verdict),
		"reason":    reason,
	})
	return result, nil
}

func (j *Judge) model() string {
	if j.client == nil {
		return ""
	}
	return j.client.Model()
}

func timeoutResult(score float64, output string) domain.ValidationResult {
	failed := false
	return domain.ValidationResult{
		Verdict:      domain.VerdictFail,
		QualityScore: score,
		TestPassed:   &failed,
		Reason:       "timeout",
		RawOutput:    output,
	}
}

// ParseScore extracts the quality score from pylint's report output.
func ParseScore(output string) (float64, bool) {
	match := scoreRegex.FindStringSubmatch(output)
	if match == nil {
		return 0, false
	}
	score, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, false
	}
	return score, true
}

// DeriveVerdict applies the verdict policy: a failing test blocks
// unconditionally; at or above threshold passes; below threshold continues
// only while the score is not regressing. A negative previousScore means no
// earlier measurement exists.
func DeriveVerdict(score float64, testPassed *bool, previousScore, threshold float64) (domain.Verdict, string) {
	if testPassed != nil && !*testPassed {
		return domain.VerdictFail, "tests failed"
	}
	if score >= threshold {
		return domain.VerdictPass, fmt.Sprintf("score %.2f meets threshold %.2f", score, threshold)
	}
	if previousScore < 0 || score >= previousScore {
		return domain.VerdictRetry, fmt.Sprintf("score %.2f below threshold but not regressing", score)
	}
	return domain.VerdictFail, fmt.Sprintf("score regressed from %.2f to %.2f", previousScore, score)
}

// generateTest asks the model for a pytest file next to the source file.
// Any failure logs a warning and falls back to score-only validation.
func (j *Judge) generateTest(ctx context.Context, file string) string {
	code, err := os.ReadFile(file)
	if err != nil {
		j.logger.LogWarning(ctx, "test generation skipped, cannot read source", map[string]interface{}{
			"file": file, "error": err.Error(),
		})
		return ""
	}

	base := filepath.Base(file)
	module := strings.TrimSuffix(base, filepath.Ext(base))
	rendered := prompt.Render(j.templates.TestGen, map[string]string{
		"module": module,
		"code":   string(code),
	})

	response, err := j.client.Chat(ctx, rendered)
	if err != nil {
		j.logger.LogWarning(ctx, "test generation failed", map[string]interface{}{
			"file": file, "error": err.Error(),
		})
		return ""
	}

	record(ctx, j.journal, j.logger, "judge", j.model(), journal.ActionGeneration, journal.StatusSuccess, map[string]interface{}{
		"file":            file,
		"input_prompt":    rendered,
		"output_response": response,
	})

	source := httpx.ExtractFenced(response)
	if err := j.validator.Validate(ctx, []byte(source)); err != nil {
		j.logger.LogWarning(ctx, "discarding syntax-invalid generated test", map[string]interface{}{
			"file": file, "error": err.Error(),
		})
		return ""
	}

	target := filepath.Join(filepath.Dir(file), "test_"+base)
	resolved, err := j.guard.Authorize(target)
	if err != nil {
		j.logger.LogWarning(ctx, "generated test rejected by sandbox", map[string]interface{}{
			"file": target, "error": err.Error(),
		})
		return ""
	}
	if err := os.WriteFile(resolved, []byte(source), 0o644); err != nil {
		j.logger.LogWarning(ctx, "could not write generated test", map[string]interface{}{
			"file": resolved, "error": err.Error(),
		})
		return ""
	}
	return resolved
}
