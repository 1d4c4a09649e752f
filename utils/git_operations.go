package utils

import (
	"fmt"
	"os/exec"
	"strings"
)

// GitOperations handles git-related operations for auto-committing a
// successfully applied batch.
type GitOperations struct {
	workingDir string
}

// NewGitOperations creates a new GitOperations instance.
func NewGitOperations(workingDir string) *GitOperations {
	return &GitOperations{workingDir: workingDir}
}

// CheckGitRepo checks if the working directory is inside a git repository.
func (g *GitOperations) CheckGitRepo() error {
	cmd := exec.Command("git", "rev-parse", "--git-dir")
	cmd.Dir = g.workingDir
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("not a git repository")
	}
	return nil
}

// AddFiles stages the given paths; with no paths, stages everything.
func (g *GitOperations) AddFiles(paths ...string) error {
	args := append([]string{"add"}, paths...)
	if len(paths) == 0 {
		args = append(args, ".")
	}
	cmd := exec.Command("git", args...)
	cmd.Dir = g.workingDir
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to stage files: %w", err)
	}
	return nil
}

// Commit creates a git commit with the given message.
func (g *GitOperations) Commit(message string) error {
	cmd := exec.Command("git", "commit", "-m", message)
	cmd.Dir = g.workingDir
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to create commit: %w", err)
	}
	return nil
}

// GetGitStatus returns the porcelain status output.
func (g *GitOperations) GetGitStatus() (string, error) {
	cmd := exec.Command("git", "status", "--porcelain")
	cmd.Dir = g.workingDir
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("failed to get git status: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}
