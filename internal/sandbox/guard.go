// Package sandbox enforces the write boundary for the refactoring pipeline.
// Every mutation the Fixer produces must land inside a single authorized
// directory subtree; anything else is a fatal security violation.
package sandbox

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrSecurityViolation indicates a path that resolves outside the sandbox
// root. It is fatal for the whole run: callers must abort the pipeline, not
// just the current file, to avoid silently executing with a weaker safety
// guarantee than configured.
var ErrSecurityViolation = errors.New("sandbox security violation")

// Guard validates write targets against a sandbox root. Containment is
// checked on resolved, symlink-free paths compared segment-wise, never by
// string prefix, so sibling directories sharing a prefix (/data vs
// /data-secret) are classified correctly.
type Guard struct {
	root string
}

// NewGuard creates a Guard for the given root directory.
func NewGuard(root string) *Guard {
	return &Guard{root: root}
}

// Root returns the configured sandbox root as given.
func (g *Guard) Root() string {
	return g.root
}

// Authorize validates that writePath lies within the sandbox root and, on
// success, creates any missing parent directories of the target. Directory
// creation is bundled with the grant because a write permission without a
// writable parent is useless to callers.
//
// Returns the resolved path to write to, or ErrSecurityViolation.
func (g *Guard) Authorize(writePath string) (string, error) {
	resolved, err := g.contain(writePath)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return "", fmt.Errorf("create parent directories for %s: %w", resolved, err)
	}
	return resolved, nil
}

// Contains checks that path resolves inside the sandbox root without any
// side effects. Used for the pre-flight check on the target directory
// before any agent is constructed.
func (g *Guard) Contains(path string) error {
	_, err := g.contain(path)
	return err
}

// contain resolves path to canonical form and verifies containment.
// Symlinks in both the root and the candidate are resolved first so a link
// pointing outside the sandbox cannot smuggle a write out.
func (g *Guard) contain(path string) (string, error) {
	candidate := path
	if !filepath.IsAbs(candidate) {
		abs, err := filepath.Abs(candidate)
		if err != nil {
			return "", fmt.Errorf("resolve %s: %w", path, err)
		}
		candidate = abs
	}
	candidate = filepath.Clean(candidate)

	realRoot, err := filepath.EvalSymlinks(g.root)
	if err != nil {
		abs, absErr := filepath.Abs(g.root)
		if absErr != nil {
			return "", fmt.Errorf("resolve sandbox root %s: %w", g.root, absErr)
		}
		realRoot = filepath.Clean(abs)
	}

	resolved, err := filepath.EvalSymlinks(candidate)
	if err != nil {
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("resolve symlinks for %s: %w", path, err)
		}
		// Target does not exist yet. Resolve the nearest existing ancestor
		// so a symlinked parent directory cannot escape the root.
		resolved, err = resolveMissing(candidate)
		if err != nil {
			return "", fmt.Errorf("resolve %s: %w", path, err)
		}
	}

	rel, err := filepath.Rel(realRoot, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s is outside sandbox root %s", ErrSecurityViolation, path, g.root)
	}
	return resolved, nil
}

// resolveMissing resolves symlinks for a path that does not exist by
// resolving the deepest existing ancestor and rejoining the remainder.
func resolveMissing(path string) (string, error) {
	dir := path
	var tail []string
	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		if _, err := os.Stat(dir); err == nil {
			break
		}
		tail = append([]string{filepath.Base(dir)}, tail...)
		dir = parent
	}

	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		if os.IsNotExist(err) {
			resolved = dir
		} else {
			return "", err
		}
	}
	return filepath.Join(append([]string{resolved}, tail...)...), nil
}
