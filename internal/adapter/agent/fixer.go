package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bkyoung/code-refactor/internal/adapter/journal"
	"github.com/bkyoung/code-refactor/internal/adapter/llm/httpx"
	"github.com/bkyoung/code-refactor/internal/domain"
	"github.com/bkyoung/code-refactor/internal/prompt"
	"github.com/bkyoung/code-refactor/internal/sandbox"
	"github.com/bkyoung/code-refactor/internal/syntax"
	"github.com/bkyoung/code-refactor/internal/usecase/pipeline"
)

// maxIssuesPerAttempt caps how many issues one fix prompt carries. Large
// issue lists dilute the model's attention and produce sprawling rewrites;
// remaining issues are picked up by the next iteration's re-audit.
const maxIssuesPerAttempt = 5

// Fixer asks the model for a corrected version of a file and applies it
// under the sandbox guard.
type Fixer struct {
	client    ChatClient
	templates prompt.Templates
	guard     *sandbox.Guard
	validator *syntax.PythonValidator
	journal   Journal
	logger    Logger
}

// NewFixer constructs the fix capability.
func NewFixer(client ChatClient, templates prompt.Templates, guard *sandbox.Guard, validator *syntax.PythonValidator, j Journal, logger Logger) *Fixer {
	return &Fixer{
		client:    client,
		templates: templates,
		guard:     guard,
		validator: validator,
		journal:   j,
		logger:    logger,
	}
}

// fixEnvelope is the JSON shape the fixer model is instructed to return.
type fixEnvelope struct {
	Action string       `json:"action"`
	Reason string       `json:"reason"`
	Files  []fileChange `json:"files"`
}

type fileChange struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Fix attempts to resolve issues in file. Syntax-invalid proposals are
// discarded with the original preserved; a write outside the sandbox root
// aborts with ErrSecurityViolation.
func (f *Fixer) Fix(ctx context.Context, file string, issues []domain.Issue) (domain.FixOutcome, error) {
	code, err := os.ReadFile(file)
	if err != nil {
		return domain.FixOutcome{}, fmt.Errorf("read %s: %w", file, err)
	}

	batch := issues
	if len(batch) > maxIssuesPerAttempt {
		batch = batch[:maxIssuesPerAttempt]
		f.logger.LogInfo(ctx, "capping issues for this fix attempt", map[string]interface{}{
			"file": file, "total": len(issues), "sent": len(batch),
		})
	}

	issueJSON, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		return domain.FixOutcome{}, fmt.Errorf("encode issues: %w", err)
	}

	rendered := prompt.Render(f.templates.Fixer, map[string]string{
		"file":           file,
		"code":           string(code),
		"issues":         string(issueJSON),
		"expected_names": expectedNamesHint(file),
	})

	response, err := f.client.Chat(ctx, rendered)
	if err != nil {
		return domain.FixOutcome{}, fmt.Errorf("fix %s: %w", file, err)
	}

	envelope, ok := f.parseEnvelope(ctx, file, response)
	outcome := domain.FixOutcome{
		Action:          domain.ParseAction(envelope.Action),
		Reason:          envelope.Reason,
		IssuesAddressed: len(batch),
	}
	if !ok {
		// Degrade to a no-op FIX so the loop re-audits instead of dying on
		// one bad response. Nothing was applied, so nothing was addressed.
		outcome.Action = domain.ActionFix
		outcome.Reason = "unparseable fixer response"
		outcome.IssuesAddressed = 0
	}

	status := journal.StatusSuccess
	if !ok {
		status = journal.StatusFailed
	}
	record(ctx, f.journal, f.logger, "fixer", f.client.Model(), journal.ActionFix, status, map[string]interface{}{
		"file":            file,
		"action":          string(outcome.Action),
		"issues_sent":     len(batch),
		"input_prompt":    rendered,
		"output_response": response,
	})

	if outcome.Action != domain.ActionFix || !ok {
		return outcome, nil
	}

	for _, change := range envelope.Files {
		written, err := f.apply(ctx, file, change)
		if err != nil {
			return outcome, err
		}
		if written != "" {
			outcome.FilesChanged = append(outcome.FilesChanged, written)
		}
	}
	return outcome, nil
}

func (f *Fixer) parseEnvelope(ctx context.Context, file, response string) (fixEnvelope, bool) {
	payload := httpx.SliceJSONObject(httpx.ExtractFenced(response))

	var envelope fixEnvelope
	if err := json.Unmarshal([]byte(payload), &envelope); err != nil || envelope.Action == "" {
		f.logger.LogWarning(ctx, "unparseable fixer response", map[string]interface{}{
			"file": file,
		})
		return fixEnvelope{}, false
	}
	return envelope, true
}

// apply gates one proposed change through the syntax validator and the
// sandbox guard, then writes it. Returns the written path, or empty when
// the change was discarded.
func (f *Fixer) apply(ctx context.Context, sourceFile string, change fileChange) (string, error) {
	target := change.Path
	if target == "" {
		target = sourceFile
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(sourceFile), target)
	}

	if err := f.validator.Validate(ctx, []byte(change.Content)); err != nil {
		f.logger.LogWarning(ctx, "discarding syntax-invalid fix", map[string]interface{}{
			"file": target, "error": err.Error(),
		})
		return "", nil
	}

	resolved, err := f.guard.Authorize(target)
	if err != nil {
		return "", fmt.Errorf("apply fix to %s: %w", target, err)
	}

	if err := os.WriteFile(resolved, []byte(change.Content), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", resolved, err)
	}
	return resolved, nil
}

var (
	importLineRegex = regexp.MustCompile(`(?m)^\s*from\s+\w+\s+import\s+(.+)$`)
	testNameRegex   = regexp.MustCompile(`(?m)^\s*def\s+test_(\w+)\s*\(`)
)

// expectedNamesHint mines the companion test for the names it depends on,
// so the fixer is told which definitions must survive the rewrite. No
// companion test yields an empty hint.
func expectedNamesHint(file string) string {
	testFile := pipeline.LocateCompanionTest(file)
	if testFile == "" {
		return ""
	}
	data, err := os.ReadFile(testFile)
	if err != nil {
		return ""
	}

	seen := map[string]bool{}
	for _, match := range importLineRegex.FindAllStringSubmatch(string(data), -1) {
		for _, name := range strings.Split(match[1], ",") {
			name = strings.TrimSpace(name)
			if name != "" && name != "*" {
				seen[name] = true
			}
		}
	}
	for _, match := range testNameRegex.FindAllStringSubmatch(string(data), -1) {
		seen[match[1]] = true
	}

	if len(seen) == 0 {
		return ""
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("\nThe test suite depends on these names; they must exist after the fix: %s.\n", strings.Join(names, ", "))
}
