package pipeline

import (
	"context"
	"sync"

	"github.com/bkyoung/code-refactor/internal/domain"
)

type mockAuditor struct {
	issues map[string][]domain.Issue
	err    error
	calls  []string
}

func (m *mockAuditor) Audit(ctx context.Context, file string) ([]domain.Issue, error) {
	m.calls = append(m.calls, file)
	if m.err != nil {
		return nil, m.err
	}
	return m.issues[file], nil
}

type mockFixer struct {
	outcome domain.FixOutcome
	err     error
	calls   int
}

func (m *mockFixer) Fix(ctx context.Context, file string, issues []domain.Issue) (domain.FixOutcome, error) {
	m.calls++
	if m.err != nil {
		return domain.FixOutcome{}, m.err
	}
	return m.outcome, nil
}

// mockJudge returns scripted validations in order, repeating the last one
// when the script runs out.
type mockJudge struct {
	results []domain.ValidationResult
	err     error
	calls   int
	gotPrev []float64
	gotTest []string
}

func (m *mockJudge) Validate(ctx context.Context, file, testFile string, previousScore float64) (domain.ValidationResult, error) {
	m.calls++
	m.gotPrev = append(m.gotPrev, previousScore)
	m.gotTest = append(m.gotTest, testFile)
	if m.err != nil {
		return domain.ValidationResult{}, m.err
	}
	idx := m.calls - 1
	if idx >= len(m.results) {
		idx = len(m.results) - 1
	}
	return m.results[idx], nil
}

type mockLogger struct {
	mu       sync.Mutex
	warnings []string
	infos    []string
}

func (m *mockLogger) LogWarning(ctx context.Context, message string, fields map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.warnings = append(m.warnings, message)
}

func (m *mockLogger) LogInfo(ctx context.Context, message string, fields map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infos = append(m.infos, message)
}

type journalCall struct {
	agent   string
	action  JournalAction
	status  string
	details map[string]interface{}
}

type mockJournal struct {
	entries []journalCall
}

func (m *mockJournal) Record(agent, model string, action JournalAction, status string, details map[string]interface{}) error {
	m.entries = append(m.entries, journalCall{agent: agent, action: action, status: status, details: details})
	return nil
}

func (m *mockJournal) events() []string {
	var out []string
	for _, e := range m.entries {
		if event, ok := e.details["event"].(string); ok {
			out = append(out, event)
		}
	}
	return out
}

type mockGuard struct {
	err error
}

func (m *mockGuard) Contains(path string) error { return m.err }

type mockScanner struct {
	files []string
	err   error
}

func (m *mockScanner) Scan(targetDir string) ([]string, error) {
	return m.files, m.err
}

type mockStore struct {
	saved   []domain.RunSummary
	saveErr error
}

func (m *mockStore) SaveRun(ctx context.Context, run domain.RunSummary, results []domain.FileRunResult) error {
	m.saved = append(m.saved, run)
	return m.saveErr
}

func (m *mockStore) Close() error { return nil }

type mockCheckpointer struct {
	messages []string
	err      error
}

func (m *mockCheckpointer) Checkpoint(ctx context.Context, files []string, message string) error {
	m.messages = append(m.messages, message)
	return m.err
}
