// Package json renders the run report as a machine-readable artifact.
package json

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bkyoung/code-refactor/internal/domain"
)

type clock func() string

// Writer renders run summaries into JSON files.
type Writer struct {
	now clock
}

// NewWriter constructs a JSON writer with a timestamp supplier.
func NewWriter(now clock) *Writer {
	return &Writer{now: now}
}

// report is the serialized shape of one run. Domain types stay free of
// encoding tags; this adapter owns the wire format.
type report struct {
	TargetDir   string       `json:"target_dir"`
	TotalFiles  int          `json:"total_files"`
	Succeeded   int          `json:"succeeded"`
	Failed      int          `json:"failed"`
	Skipped     int          `json:"skipped"`
	SuccessRate float64      `json:"success_rate"`
	ElapsedMS   int64        `json:"elapsed_ms"`
	Files       []fileReport `json:"files"`
}

type fileReport struct {
	File       string            `json:"file"`
	Status     string            `json:"status"`
	Iterations int               `json:"iterations"`
	FinalScore float64           `json:"final_score"`
	Detail     string            `json:"detail,omitempty"`
	Records    []iterationReport `json:"records,omitempty"`
}

type iterationReport struct {
	Index       int     `json:"index"`
	IssuesFound int     `json:"issues_found"`
	Action      string  `json:"action"`
	Reason      string  `json:"reason,omitempty"`
	Verdict     string  `json:"verdict"`
	Score       float64 `json:"score"`
	ScoreDelta  float64 `json:"score_delta"`
	TestPassed  *bool   `json:"test_passed,omitempty"`
}

// Write persists a run report to outputDir and returns the file path.
func (w *Writer) Write(ctx context.Context, outputDir string, summary domain.RunSummary) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	filename := fmt.Sprintf("refactor_%s_%s.json", sanitise(filepath.Base(summary.TargetDir)), w.now())
	path := filepath.Join(outputDir, filename)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create json file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(buildReport(summary)); err != nil {
		return "", fmt.Errorf("encode run report: %w", err)
	}

	return path, nil
}

func buildReport(summary domain.RunSummary) report {
	out := report{
		TargetDir:   summary.TargetDir,
		TotalFiles:  summary.TotalFiles,
		Succeeded:   summary.Succeeded,
		Failed:      summary.Failed,
		Skipped:     summary.Skipped,
		SuccessRate: summary.SuccessRate(),
		ElapsedMS:   summary.Elapsed.Milliseconds(),
		Files:       make([]fileReport, 0, len(summary.Results)),
	}
	for _, result := range summary.Results {
		file := fileReport{
			File:       result.File,
			Status:     string(result.Status),
			Iterations: result.Iterations,
			FinalScore: result.FinalScore,
			Detail:     result.Detail,
		}
		for _, rec := range result.Records {
			file.Records = append(file.Records, iterationReport{
				Index:       rec.Index,
				IssuesFound: rec.IssuesFound,
				Action:      string(rec.Fix.Action),
				Reason:      rec.Fix.Reason,
				Verdict:     string(rec.Validation.Verdict),
				Score:       rec.Validation.QualityScore,
				ScoreDelta:  rec.ScoreDelta,
				TestPassed:  rec.Validation.TestPassed,
			})
		}
		out.Files = append(out.Files, file)
	}
	return out
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
