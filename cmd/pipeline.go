package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/morler/codeflow/action_executor"
	"github.com/morler/codeflow/action_extractor"
	"github.com/morler/codeflow/constants/lipgloss"
	"github.com/morler/codeflow/dependency_graph"
	"github.com/morler/codeflow/operations"
	"github.com/morler/codeflow/path_validator"
	"github.com/morler/codeflow/utils"
)

// runPipeline extracts directives from model output, orders them, filters
// them through the confirm callback, and applies the survivors to the
// current workspace. A nil confirm applies every operation.
func runPipeline(ctx context.Context, deps *RootDependencies, modelOutput string, confirm func(op *operations.PendingOperation) (bool, error)) (*operations.ExecutionReport, []*action_extractor.ParseError, error) {
	extracted := action_extractor.Extract(modelOutput)
	if len(extracted.Operations) == 0 {
		return nil, extracted.Skipped, nil
	}

	ordered := dependency_graph.Order(extracted.Operations)

	var accepted []*operations.PendingOperation
	for _, op := range ordered {
		if confirm != nil {
			ok, err := confirm(op)
			if err != nil {
				return nil, extracted.Skipped, err
			}
			if !ok {
				continue
			}
		}
		accepted = append(accepted, op)
	}
	if len(accepted) == 0 {
		return nil, extracted.Skipped, nil
	}

	validator, err := path_validator.NewValidator(deps.Cwd, deps.Config.MaxPathLength)
	if err != nil {
		return nil, extracted.Skipped, fmt.Errorf("initializing path validator: %w", err)
	}

	ix, err := deps.ContextCache.Index(ctx, deps.Cwd)
	if err != nil {
		return nil, extracted.Skipped, fmt.Errorf("indexing workspace: %w", err)
	}

	executor := action_executor.NewExecutor(validator, ix, deps.Locks, action_executor.Options{
		OpTimeout: parseDurationOr(deps.Config.OperationTimeout, 30*time.Second),
	})

	report := executor.Execute(ctx, accepted)

	// The workspace changed under the cached analysis; force a rebuild on the
	// next context request instead of waiting for a fingerprint mismatch.
	if report.Summary.Succeeded > 0 {
		deps.ContextCache.Invalidate(deps.Cwd)
	}

	if deps.Config.AutoCommit && report.Summary.Succeeded > 0 {
		commitApplied(deps, report)
	}

	return report, extracted.Skipped, nil
}

// commitApplied stages and commits files touched by successful operations.
func commitApplied(deps *RootDependencies, report *operations.ExecutionReport) {
	git := utils.NewGitOperations(deps.Cwd)
	if err := git.CheckGitRepo(); err != nil {
		fmt.Println(lipgloss.Yellow.Render("Not a git repository, skipping auto-commit."))
		return
	}

	var paths []string
	for _, res := range report.Operations {
		if res.Outcome == operations.OutcomeSucceeded && res.Path != "" {
			paths = append(paths, res.Path)
		}
	}
	if len(paths) == 0 {
		return
	}

	if err := git.AddFiles(paths...); err != nil {
		fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("Staging files failed: %v", err)))
		return
	}
	if err := git.Commit(utils.GenerateCommitMessage(report)); err != nil {
		fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("Commit failed: %v", err)))
		return
	}
	fmt.Println(lipgloss.Green.Render("✔️ Changes committed."))
}

// printReport summarizes a batch outcome per operation.
func printReport(report *operations.ExecutionReport) {
	for _, res := range report.Operations {
		label := res.Path
		if label == "" {
			label = res.Kind.String()
		}
		switch res.Outcome {
		case operations.OutcomeSucceeded:
			if res.Downgraded {
				fmt.Println(lipgloss.Green.Render(fmt.Sprintf("✔️ %s (created, file did not exist)", label)))
			} else {
				fmt.Println(lipgloss.Green.Render(fmt.Sprintf("✔️ %s", label)))
			}
		case operations.OutcomeRejected:
			fmt.Println(lipgloss.Red.Render(fmt.Sprintf("✖ %s rejected: %s", label, res.Error)))
		case operations.OutcomeFailed:
			fmt.Println(lipgloss.Red.Render(fmt.Sprintf("✖ %s failed: %s", label, res.Error)))
		case operations.OutcomeCancelled:
			fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("∅ %s cancelled", label)))
		}
	}
	fmt.Println(lipgloss.Info.Render(fmt.Sprintf(
		"%d succeeded, %d failed, %d rejected, %d cancelled",
		report.Summary.Succeeded, report.Summary.Failed, report.Summary.Rejected, report.Summary.Cancelled,
	)))
}
