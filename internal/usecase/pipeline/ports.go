package pipeline

import (
	"context"

	"github.com/bkyoung/code-refactor/internal/domain"
)

// Auditor defines the outbound port for code analysis.
type Auditor interface {
	// Audit returns the issues found in the file, or an empty slice when the
	// code is clean. Transport failures surface as errors.
	Audit(ctx context.Context, file string) ([]domain.Issue, error)
}

// Fixer defines the outbound port for applying corrections.
type Fixer interface {
	// Fix attempts to resolve the issues in the file and reports what it did.
	// A SKIP outcome means the fixer declined; errors are transport or
	// security failures.
	Fix(ctx context.Context, file string, issues []domain.Issue) (domain.FixOutcome, error)
}

// Judge defines the outbound port for validating a fixed file.
type Judge interface {
	// Validate scores the file and, when testFile is non-empty, runs its
	// tests. previousScore lets the judge distinguish improvement from
	// regression; pass a negative value on the first iteration.
	Validate(ctx context.Context, file, testFile string, previousScore float64) (domain.ValidationResult, error)
}

// Journal records pipeline and agent activity.
type Journal interface {
	Record(agent, model string, action JournalAction, status string, details map[string]interface{}) error
}

// JournalAction mirrors the journal adapter's action kinds so the use case
// does not import the adapter.
type JournalAction string

// Journal action kinds.
const (
	JournalPipeline JournalAction = "PIPELINE"
	JournalDebug    JournalAction = "DEBUG"
)

// Journal status labels, mirroring the journal adapter.
const (
	JournalStatusSuccess = "SUCCESS"
	JournalStatusFailed  = "FAILED"
)

// Logger provides structured logging for the pipeline use case.
type Logger interface {
	LogInfo(ctx context.Context, message string, fields map[string]interface{})
	LogWarning(ctx context.Context, message string, fields map[string]interface{})
}

// Guard is the sandbox pre-flight check for the target directory.
type Guard interface {
	Contains(path string) error
}

// Scanner enumerates candidate files under the target directory.
type Scanner interface {
	Scan(targetDir string) ([]string, error)
}

// Store defines the outbound port for persisting run history.
type Store interface {
	SaveRun(ctx context.Context, run domain.RunSummary, results []domain.FileRunResult) error
	Close() error
}

// Checkpointer commits applied fixes to version control. Implementations
// treat failures as non-fatal; the pipeline only logs them.
type Checkpointer interface {
	Checkpoint(ctx context.Context, files []string, message string) error
}
