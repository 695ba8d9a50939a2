// Package journal records every agent action to an append-only JSONL file.
// Each line is one self-contained entry; the file is never rewritten, so a
// crash mid-run loses at most the entry being written.
package journal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ActionKind labels what a journal entry records.
type ActionKind string

const (
	// ActionCodeAnalysis is an auditor model call.
	ActionCodeAnalysis ActionKind = "CODE_ANALYSIS"
	// ActionFix is a fixer model call.
	ActionFix ActionKind = "FIX"
	// ActionDebug is a judge validation step.
	ActionDebug ActionKind = "DEBUG"
	// ActionGeneration is a test-generation model call.
	ActionGeneration ActionKind = "GENERATION"
	// ActionPipeline is an orchestration event with no model involved.
	ActionPipeline ActionKind = "PIPELINE"
)

// Outcome labels for the status field every entry carries.
const (
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"
)

// requiresModelIO reports whether entries of this kind must carry the full
// prompt and response. Recording a model call without its exact input and
// output makes the run unreproducible, so the writer rejects it outright.
func (k ActionKind) requiresModelIO() bool {
	switch k {
	case ActionCodeAnalysis, ActionFix, ActionGeneration:
		return true
	}
	return false
}

// Entry is one journal line.
type Entry struct {
	Timestamp string                 `json:"timestamp"`
	Agent     string                 `json:"agent"`
	Model     string                 `json:"model"`
	Action    ActionKind             `json:"action_type"`
	Status    string                 `json:"status"`
	Details   map[string]interface{} `json:"details"`
}

// Writer appends entries to a JSONL journal file. Safe for concurrent use.
type Writer struct {
	mu   sync.Mutex
	file *os.File
	now  func() time.Time
}

// Open creates or opens the journal file for appending.
func Open(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	return &Writer{file: file, now: time.Now}, nil
}

// Close closes the underlying file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

// Record validates and appends one entry. Model-call kinds must include
// non-empty input_prompt and output_response details; violating entries are
// rejected with an error rather than written incomplete. An empty status
// records as SUCCESS.
func (w *Writer) Record(agent, model string, action ActionKind, status string, details map[string]interface{}) error {
	if details == nil {
		details = map[string]interface{}{}
	}
	if err := validate(action, details); err != nil {
		return err
	}
	if status == "" {
		status = StatusSuccess
	}

	entry := Entry{
		Timestamp: w.now().UTC().Format(time.RFC3339),
		Agent:     agent,
		Model:     model,
		Action:    action,
		Status:    status,
		Details:   details,
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode journal entry: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append journal entry: %w", err)
	}
	return nil
}

func validate(action ActionKind, details map[string]interface{}) error {
	if !action.requiresModelIO() {
		return nil
	}
	for _, field := range []string{"input_prompt", "output_response"} {
		value, ok := details[field]
		if !ok {
			return fmt.Errorf("journal entry %s is missing required field %q", action, field)
		}
		text, ok := value.(string)
		if !ok || text == "" {
			return fmt.Errorf("journal entry %s requires a non-empty string %q", action, field)
		}
	}
	return nil
}

// Read loads every entry from a journal file, for reports and tests.
func Read(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read journal %s: %w", path, err)
	}

	var entries []Entry
	decoder := json.NewDecoder(bytes.NewReader(data))
	for decoder.More() {
		var entry Entry
		if err := decoder.Decode(&entry); err != nil {
			return nil, fmt.Errorf("decode journal %s: %w", path, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
