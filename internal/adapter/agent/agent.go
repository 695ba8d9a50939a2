// Package agent implements the three pipeline capabilities (audit, fix,
// validate) on top of an LLM chat client, the sandbox guard, and local
// tool subprocesses.
package agent

import (
	"context"

	"github.com/bkyoung/code-refactor/internal/adapter/journal"
)

// ChatClient is the LLM transport the agents talk through.
type ChatClient interface {
	Chat(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Journal records agent activity, including full model I/O and the outcome
// status of each action.
type Journal interface {
	Record(agent, model string, action journal.ActionKind, status string, details map[string]interface{}) error
}

// Logger provides structured logging for the agents.
type Logger interface {
	LogInfo(ctx context.Context, message string, fields map[string]interface{})
	LogWarning(ctx context.Context, message string, fields map[string]interface{})
}

// record writes a journal entry and downgrades journal failures to warnings.
// A broken journal must not take the pipeline down with it.
func record(ctx context.Context, j Journal, logger Logger, agent, model string, action journal.ActionKind, status string, details map[string]interface{}) {
	if j == nil {
		return
	}
	if err := j.Record(agent, model, action, status, details); err != nil {
		logger.LogWarning(ctx, "journal write failed", map[string]interface{}{
			"agent": agent, "action": string(action), "error": err.Error(),
		})
	}
}
