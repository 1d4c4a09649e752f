package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/morler/codeflow/constants/lipgloss"
)

// contextCmd: codeflow context [query]
var contextCmd = &cobra.Command{
	Use:   "context [query]",
	Short: "Print the bounded workspace context that would be sent to the model.",
	Long: `The 'context' subcommand builds (or reuses) the cached analysis of the current
workspace and prints the bounded context text. An optional query re-ranks the
file listing the same way a session request would.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rootDependencies := handleRootCommand(cmd)

		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		query := strings.Join(args, " ")
		text, err := rootDependencies.ContextCache.GetOrBuild(ctx, rootDependencies.Cwd, query)
		if err != nil {
			return err
		}
		fmt.Println(text)
		return nil
	},
}

// resetContextCmd: codeflow reset-context
var resetContextCmd = &cobra.Command{
	Use:   "reset-context",
	Short: "Drop all cached workspace analyses.",
	Long: `The 'reset-context' command clears the in-process context cache. The next
request rebuilds the workspace analysis from scratch. Use it when the cached
view looks stale despite fingerprint checks.`,
	Run: func(cmd *cobra.Command, args []string) {
		rootDependencies := handleRootCommand(cmd)

		showStats, _ := cmd.Flags().GetBool("stats")
		if showStats {
			stats := rootDependencies.ContextCache.Stats()
			fmt.Println(lipgloss.BlueSky.Render("Context cache statistics:"))
			for _, key := range []string{"entries", "hits", "misses", "builds", "hit_rate", "memoized_rank"} {
				fmt.Printf("  %s: %v\n", key, stats[key])
			}
			return
		}

		rootDependencies.ContextCache.Clear()
		fmt.Println(lipgloss.Green.Render("✓ Context cache has been cleared."))
	},
}

func init() {
	resetContextCmd.Flags().Bool("stats", false, "Print cache statistics instead of clearing")
}
