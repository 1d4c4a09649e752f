package utils

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// CommandExecutor runs model-suggested shell commands inside the workspace,
// after a denylist check. Output is captured for the execution report.
type CommandExecutor struct {
	workingDir string
}

// NewCommandExecutor creates a command executor bound to a working directory.
func NewCommandExecutor(workingDir string) *CommandExecutor {
	return &CommandExecutor{workingDir: workingDir}
}

// ExecuteCommand validates and runs one command, returning its combined
// output. The context carries the per-operation timeout.
func (ce *CommandExecutor) ExecuteCommand(ctx context.Context, command string) (string, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		return "", fmt.Errorf("empty command provided")
	}

	if err := ValidateCommand(command); err != nil {
		return "", err
	}

	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.CommandContext(ctx, "cmd", "/C", command)
	} else {
		cmd = exec.CommandContext(ctx, "bash", "-c", command)
	}
	cmd.Dir = ce.workingDir

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Run(); err != nil {
		return output.String(), fmt.Errorf("command execution failed: %w", err)
	}
	return output.String(), nil
}

// dangerousPatterns reject commands that can destroy data or the host.
var dangerousPatterns = []string{
	"rm -rf /",
	":(){ :|:& };:", // fork bomb
	"> /dev/sd",
	"wipefs",
	"mkfs",
	"dd if=",
	"shutdown",
	"reboot",
}

// ValidateCommand performs denylist checks on a proposed command.
func ValidateCommand(command string) error {
	cmdLower := strings.ToLower(command)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(cmdLower, strings.ToLower(pattern)) {
			return fmt.Errorf("potentially dangerous command detected: %s", pattern)
		}
	}
	return nil
}
