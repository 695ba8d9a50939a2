// Package checkpoint commits applied fixes to git so every iteration of the
// pipeline leaves a recoverable point in history.
package checkpoint

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	goGit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Committer checkpoints changed files in the git worktree containing the
// target directory.
type Committer struct {
	repoDir string
	now     func() time.Time
}

// NewCommitter creates a Committer rooted at repoDir. The repository is
// discovered lazily on the first checkpoint, so constructing a Committer for
// a non-repo directory is not an error.
func NewCommitter(repoDir string) *Committer {
	return &Committer{repoDir: repoDir, now: time.Now}
}

// Checkpoint stages the given files and commits them with the provided
// message. Callers treat errors as non-fatal; a target tree outside any git
// repository simply cannot be checkpointed.
func (c *Committer) Checkpoint(ctx context.Context, files []string, message string) error {
	if len(files) == 0 {
		return nil
	}

	repo, err := goGit.PlainOpenWithOptions(c.repoDir, &goGit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return fmt.Errorf("open repository at %s: %w", c.repoDir, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("open worktree: %w", err)
	}
	rootDir := worktree.Filesystem.Root()

	for _, file := range files {
		rel, err := filepath.Rel(rootDir, file)
		if err != nil {
			return fmt.Errorf("relativize %s against %s: %w", file, rootDir, err)
		}
		if _, err := worktree.Add(filepath.ToSlash(rel)); err != nil {
			return fmt.Errorf("stage %s: %w", rel, err)
		}
	}

	_, err = worktree.Commit(message, &goGit.CommitOptions{
		Author: &object.Signature{
			Name:  "rf",
			Email: "rf@localhost",
			When:  c.now(),
		},
	})
	if err != nil {
		return fmt.Errorf("commit checkpoint: %w", err)
	}
	return nil
}
