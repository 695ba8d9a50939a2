package observability

import (
	"context"

	"github.com/bkyoung/code-refactor/internal/adapter/llm/httpx"
	"github.com/bkyoung/code-refactor/internal/usecase/pipeline"
)

// PipelineLogger adapts httpx.Logger to the pipeline's Logger port so the
// orchestration layer shares the same structured logging infrastructure as
// the LLM transport.
type PipelineLogger struct {
	logger httpx.Logger
}

// NewPipelineLogger creates a new pipeline logger adapter.
func NewPipelineLogger(logger httpx.Logger) pipeline.Logger {
	return &PipelineLogger{logger: logger}
}

// LogWarning logs a warning message with structured fields.
func (l *PipelineLogger) LogWarning(ctx context.Context, message string, fields map[string]interface{}) {
	l.logger.LogWarning(ctx, message, fields)
}

// LogInfo logs an informational message with structured fields.
func (l *PipelineLogger) LogInfo(ctx context.Context, message string, fields map[string]interface{}) {
	l.logger.LogInfo(ctx, message, fields)
}
