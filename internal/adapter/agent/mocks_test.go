package agent

import (
	"context"
	"fmt"

	"github.com/bkyoung/code-refactor/internal/adapter/journal"
	"github.com/bkyoung/code-refactor/internal/adapter/runner"
)

type testLogger struct {
	warnings []string
	infos    []string
}

func (l *testLogger) LogWarning(ctx context.Context, message string, fields map[string]interface{}) {
	l.warnings = append(l.warnings, message)
}

func (l *testLogger) LogInfo(ctx context.Context, message string, fields map[string]interface{}) {
	l.infos = append(l.infos, message)
}

type journalEntry struct {
	agent   string
	action  journal.ActionKind
	status  string
	details map[string]interface{}
}

type testJournal struct {
	entries []journalEntry
}

func (j *testJournal) Record(agent, model string, action journal.ActionKind, status string, details map[string]interface{}) error {
	j.entries = append(j.entries, journalEntry{agent: agent, action: action, status: status, details: details})
	return nil
}

// capturingClient records prompts and replays one canned reply.
type capturingClient struct {
	reply   string
	err     error
	prompts []string
}

func (c *capturingClient) Chat(ctx context.Context, prompt string) (string, error) {
	c.prompts = append(c.prompts, prompt)
	if c.err != nil {
		return "", c.err
	}
	return c.reply, nil
}

func (c *capturingClient) Model() string { return "test-model" }

// scriptedRunner returns canned results keyed by command name.
type scriptedRunner struct {
	results  map[string]runner.CommandResult
	timeouts map[string]bool
	calls    []string
}

func (r *scriptedRunner) Run(ctx context.Context, name string, args ...string) (runner.CommandResult, error) {
	r.calls = append(r.calls, name)
	if r.timeouts[name] {
		return runner.CommandResult{}, fmt.Errorf("%s: %w", name, runner.ErrTimeout)
	}
	return r.results[name], nil
}
