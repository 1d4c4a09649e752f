package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/morler/codeflow/constants/lipgloss"
)

// applyCmd: codeflow apply [file]
var applyCmd = &cobra.Command{
	Use:   "apply [file]",
	Short: "Extract and apply file operations from saved model output.",
	Long: `The 'apply' subcommand reads raw model output from a file (or stdin when no
file is given), extracts the file-operation directives, orders them by
dependency, and applies them to the current workspace. With --json the
execution report is printed as JSON for scripting.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rootDependencies := handleRootCommand(cmd)
		return handleApplyCommand(cmd, args, rootDependencies)
	},
}

func init() {
	applyCmd.Flags().Bool("json", false, "Print the execution report as JSON")
	applyCmd.Flags().BoolP("yes", "y", false, "Apply all operations without per-operation confirmation")
}

func handleApplyCommand(cmd *cobra.Command, args []string, rootDependencies *RootDependencies) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var modelOutput []byte
	var err error
	if len(args) == 1 {
		modelOutput, err = os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading model output: %w", err)
		}
	} else {
		modelOutput, err = io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
	}

	asJSON, _ := cmd.Flags().GetBool("json")

	// apply is non-interactive; without --yes it refuses rather than prompts,
	// so it stays usable in pipes.
	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		return fmt.Errorf("apply requires --yes to run without confirmation prompts")
	}

	report, skipped, err := runPipeline(ctx, rootDependencies, string(modelOutput), nil)
	if err != nil {
		return err
	}

	if !asJSON {
		for _, parseErr := range skipped {
			fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("Skipped directive: %v", parseErr)))
		}
	}

	if report == nil {
		if asJSON {
			fmt.Println(`{"operations":[],"summary":{"succeeded":0,"failed":0,"rejected":0}}`)
		} else {
			fmt.Println(lipgloss.Yellow.Render("No operation directives found in input."))
		}
		return nil
	}

	if asJSON {
		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	printReport(report)
	return nil
}
