package domain

import "time"

// Issue represents a single problem reported by the Auditor for one file.
// Issues live for exactly one iteration; a fresh audit produces a fresh,
// unrelated set and nothing tracks issue identity across cycles.
type Issue struct {
	File        string `json:"file"`
	Line        int    `json:"line"`
	IssueType   string `json:"issue_type"`
	Description string `json:"description"`
}

// FixOutcome is the structured result of one Fixer invocation.
type FixOutcome struct {
	Action          Action
	Reason          string
	FilesChanged    []string
	IssuesAddressed int
}

// ValidationResult is the structured result of one Judge invocation.
// TestPassed is nil when no companion test was available; the verdict is
// then derived from QualityScore alone (score-only mode).
type ValidationResult struct {
	Verdict      Verdict
	QualityScore float64
	TestPassed   *bool
	Reason       string
	RawOutput    string
}

// IterationRecord captures one completed audit/fix/validate cycle for
// reporting. The controller never reads history back; it carries only the
// latest previous score forward.
type IterationRecord struct {
	Index       int
	IssuesFound int
	Fix         FixOutcome
	Validation  ValidationResult
	ScoreDelta  float64
}

// FileRunResult is the frozen outcome of processing one candidate file.
// Detail says why a failure terminal was reached when the status alone is
// ambiguous, e.g. a validation environment error versus a verdict value the
// controller does not recognize.
type FileRunResult struct {
	File       string
	Status     Status
	Iterations int
	FinalScore float64
	Detail     string
	Records    []IterationRecord
}

// Succeeded reports whether the file ended in a passing terminal state.
// CLEAN counts as success: the file needed no work at all.
func (r FileRunResult) Succeeded() bool {
	return r.Status == StatusSuccess || r.Status == StatusClean
}

// RunSummary aggregates per-file outcomes for one pipeline run. It is pure
// reporting and never feeds back into control flow.
type RunSummary struct {
	TargetDir  string
	TotalFiles int
	Succeeded  int
	Failed     int
	Skipped    int
	Elapsed    time.Duration
	Results    []FileRunResult
}

// SuccessRate returns the fraction of files that ended SUCCESS or CLEAN,
// in [0,1]. Zero files yields zero.
func (s RunSummary) SuccessRate() float64 {
	if s.TotalFiles == 0 {
		return 0
	}
	return float64(s.Succeeded) / float64(s.TotalFiles)
}

// Tally folds one file result into the summary counters.
func (s *RunSummary) Tally(result FileRunResult) {
	s.TotalFiles++
	s.Results = append(s.Results, result)
	switch {
	case result.Succeeded():
		s.Succeeded++
	case result.Status == StatusSkipped:
		s.Skipped++
	default:
		s.Failed++
	}
}
