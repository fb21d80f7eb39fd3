// Package gitops commits the manifest and its archive snapshot after a
// successful save, mirroring how the hosted workflow publishes the
// files.
package gitops

import (
	"fmt"
	"log"
	"path/filepath"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
)

// Committer stages and commits manifest changes in a local clone.
type Committer struct {
	RepoDir string
	Remote  string
	Push    bool
	Name    string
	Email   string
	Token   string
}

// Commit stages the given paths (relative to the repo root) and
// commits them with the given message. A clean worktree is not an
// error; it just means the run changed nothing.
func (c *Committer) Commit(paths []string, message string) error {
	repo, err := git.PlainOpenWithOptions(c.RepoDir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return fmt.Errorf("failed to open git repository at %s: %w", c.RepoDir, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}

	staged := 0
	for _, p := range paths {
		rel, err := filepath.Rel(c.RepoDir, p)
		if err != nil {
			rel = p
		}
		if _, err := wt.Add(filepath.ToSlash(rel)); err != nil {
			return fmt.Errorf("failed to stage %s: %w", rel, err)
		}
		staged++
	}

	status, err := wt.Status()
	if err != nil {
		return fmt.Errorf("failed to read worktree status: %w", err)
	}
	if status.IsClean() {
		log.Println("No manifest changes to commit.")
		return nil
	}

	commit, err := wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  c.Name,
			Email: c.Email,
			When:  time.Now(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	log.Printf("Committed %d staged paths as %s", staged, commit.String()[:8])

	if !c.Push {
		return nil
	}
	err = repo.Push(&git.PushOptions{
		RemoteName: c.Remote,
		Auth:       &http.BasicAuth{Username: "x-access-token", Password: c.Token},
	})
	if err == git.NoErrAlreadyUpToDate {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to push to %s: %w", c.Remote, err)
	}
	return nil
}
