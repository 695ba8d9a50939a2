// Package runner executes external tools (pylint, pytest) for the Judge.
// Process spawning stays behind this adapter so the pipeline never depends
// on subprocess details directly.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ErrTimeout indicates the command exceeded its wall-clock budget.
var ErrTimeout = errors.New("command timed out")

// CommandResult carries the structured outcome of one subprocess run.
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Combined returns stdout and stderr joined, the way test output is
// reported to the Judge.
func (r CommandResult) Combined() string {
	return r.Stdout + "\n" + r.Stderr
}

// Runner executes commands in a working directory with a hard timeout.
type Runner struct {
	dir     string
	timeout time.Duration
}

// NewRunner creates a Runner rooted at dir. A zero timeout means 30s.
func NewRunner(dir string, timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Runner{dir: dir, timeout: timeout}
}

// Run executes the command and returns its structured result. A non-zero
// exit code is a result, not an error; errors are reserved for failures to
// run at all. Exceeding the wall-clock budget returns ErrTimeout so the
// caller can report a distinguishable timeout outcome instead of silently
// swallowing it.
func (r *Runner) Run(ctx context.Context, name string, args ...string) (CommandResult, error) {
	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	command := exec.CommandContext(runCtx, name, args...)
	command.Dir = r.dir

	var stdout, stderr strings.Builder
	command.Stdout = &stdout
	command.Stderr = &stderr

	err := command.Run()

	result := CommandResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if runCtx.Err() == context.DeadlineExceeded {
		return result, fmt.Errorf("%w after %s: %s %s", ErrTimeout, r.timeout, name, strings.Join(args, " "))
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, fmt.Errorf("run %s: %w", name, err)
	}

	return result, nil
}
