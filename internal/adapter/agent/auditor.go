package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/bkyoung/code-refactor/internal/adapter/journal"
	"github.com/bkyoung/code-refactor/internal/adapter/llm/httpx"
	"github.com/bkyoung/code-refactor/internal/domain"
	"github.com/bkyoung/code-refactor/internal/prompt"
)

// Auditor asks the model to enumerate issues in a source file.
type Auditor struct {
	client    ChatClient
	templates prompt.Templates
	journal   Journal
	logger    Logger
}

// NewAuditor constructs the audit capability.
func NewAuditor(client ChatClient, templates prompt.Templates, j Journal, logger Logger) *Auditor {
	return &Auditor{client: client, templates: templates, journal: j, logger: logger}
}

// Audit returns the issues the model found in file. A malformed response
// degrades to an empty issue list; only transport failures are errors.
func (a *Auditor) Audit(ctx context.Context, file string) ([]domain.Issue, error) {
	code, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file, err)
	}

	rendered := prompt.Render(a.templates.Auditor, map[string]string{
		"file": file,
		"code": string(code),
	})

	response, err := a.client.Chat(ctx, rendered)
	if err != nil {
		return nil, fmt.Errorf("audit %s: %w", file, err)
	}

	issues, parsed := a.parse(ctx, file, response)
	status := journal.StatusSuccess
	if !parsed {
		status = journal.StatusFailed
	}
	record(ctx, a.journal, a.logger, "auditor", a.client.Model(), journal.ActionCodeAnalysis, status, map[string]interface{}{
		"file":            file,
		"issues_found":    len(issues),
		"input_prompt":    rendered,
		"output_response": response,
	})
	return issues, nil
}

func (a *Auditor) parse(ctx context.Context, file, response string) ([]domain.Issue, bool) {
	payload := httpx.SliceJSONArray(httpx.ExtractFenced(response))

	var issues []domain.Issue
	if err := json.Unmarshal([]byte(payload), &issues); err != nil {
		// A single garbled response must not wedge the loop; treat the file
		// as issue-free this round.
		a.logger.LogWarning(ctx, "unparseable auditor response, treating as no issues", map[string]interface{}{
			"file": file, "error": err.Error(),
		})
		return nil, false
	}

	for i := range issues {
		if issues[i].File == "" {
			issues[i].File = file
		}
	}
	return issues, true
}
