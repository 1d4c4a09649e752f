package utils

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morler/codeflow/operations"
)

func TestGetSupportedLanguage(t *testing.T) {
	assert.Equal(t, "go", GetSupportedLanguage("cmd/main.go"))
	assert.Equal(t, "javascript", GetSupportedLanguage("src/app.jsx"))
	assert.Equal(t, "typescript", GetSupportedLanguage("src/app.ts"))
	assert.Equal(t, "python", GetSupportedLanguage("scripts/run.py"))
	assert.Equal(t, "csharp", GetSupportedLanguage("Program.cs"))
	assert.Equal(t, "", GetSupportedLanguage("binary.bin"))
}

func TestValidateCommand_RejectsDangerousPatterns(t *testing.T) {
	for _, cmd := range []string{
		"rm -rf /",
		"sudo RM -RF /",
		"dd if=/dev/zero of=/dev/sda",
		"mkfs.ext4 /dev/sda1",
	} {
		assert.Error(t, ValidateCommand(cmd), "command %q must be rejected", cmd)
	}

	assert.NoError(t, ValidateCommand("go test ./..."))
	assert.NoError(t, ValidateCommand("npm install"))
}

func TestCommandExecutor_RunsInWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	ce := NewCommandExecutor(dir)

	output, err := ce.ExecuteCommand(context.Background(), "pwd")
	require.NoError(t, err)
	resolved, _ := filepath.EvalSymlinks(dir)
	assert.Contains(t, output, resolved)
}

func TestCommandExecutor_EmptyCommand(t *testing.T) {
	ce := NewCommandExecutor(t.TempDir())

	_, err := ce.ExecuteCommand(context.Background(), "   ")
	assert.Error(t, err)
}

func TestLoadIgnoreMatcher_MergesDefaultsAndGitignore(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("secrets/\n# comment\n*.tmp\n"), 0644))

	ign := LoadIgnoreMatcher(dir)
	assert.True(t, ign.MatchesPath("node_modules/left-pad/index.js"))
	assert.True(t, ign.MatchesPath("secrets/key.pem"))
	assert.True(t, ign.MatchesPath("scratch.tmp"))
	assert.False(t, ign.MatchesPath("src/app.go"))
}

func TestIsDefaultIgnored(t *testing.T) {
	assert.True(t, IsDefaultIgnored(".git/config"))
	assert.True(t, IsDefaultIgnored("photo.png"))
	assert.False(t, IsDefaultIgnored("main.go"))
}

func TestGenerateCommitMessage_SingleCreate(t *testing.T) {
	report := operations.NewExecutionReport([]operations.OperationResult{
		{Kind: operations.KindCreateFile, Path: "src/app.go", Outcome: operations.OutcomeSucceeded},
	})

	msg := GenerateCommitMessage(report)
	assert.Contains(t, msg, "Add src/app.go")
	assert.Contains(t, msg, "- create src/app.go")
}

func TestGenerateCommitMessage_MixedBatch(t *testing.T) {
	report := operations.NewExecutionReport([]operations.OperationResult{
		{Kind: operations.KindCreateFile, Path: "a.go", Outcome: operations.OutcomeSucceeded},
		{Kind: operations.KindModifyFile, Path: "b.go", Outcome: operations.OutcomeSucceeded},
		{Kind: operations.KindDeleteFile, Path: "c.go", Outcome: operations.OutcomeSucceeded},
		{Kind: operations.KindCreateFile, Path: "rejected.go", Outcome: operations.OutcomeRejected},
	})

	msg := GenerateCommitMessage(report)
	assert.Contains(t, msg, "Apply assistant changes (3 files)")
	assert.NotContains(t, msg, "rejected.go")
}

func TestDetectLanguageFromCodeBlock(t *testing.T) {
	assert.Equal(t, "go", DetectLanguageFromCodeBlock("```go\nfunc main() {}\n```"))
	assert.Equal(t, "markdown", DetectLanguageFromCodeBlock("plain prose"))
}
