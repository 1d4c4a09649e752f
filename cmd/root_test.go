package cmd

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCheckWorkspaceAllowed(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "project", "sub")

	// Empty allowlist permits everything.
	assert.NoError(t, checkWorkspaceAllowed(nested, nil))

	assert.NoError(t, checkWorkspaceAllowed(root, []string{root}))
	assert.NoError(t, checkWorkspaceAllowed(nested, []string{root}))

	other := t.TempDir()
	assert.Error(t, checkWorkspaceAllowed(other, []string{root}))
}

func TestParseDurationOr(t *testing.T) {
	assert.Equal(t, 30*time.Minute, parseDurationOr("30m", time.Hour))
	assert.Equal(t, time.Hour, parseDurationOr("", time.Hour))
	assert.Equal(t, time.Hour, parseDurationOr("not-a-duration", time.Hour))
	assert.Equal(t, time.Hour, parseDurationOr("-5m", time.Hour))
}
