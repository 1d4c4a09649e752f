package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/morler/codeflow/action_executor"
	"github.com/morler/codeflow/chat_history"
	contracts_history "github.com/morler/codeflow/chat_history/contracts"
	"github.com/morler/codeflow/code_context"
	"github.com/morler/codeflow/config"
	"github.com/morler/codeflow/constants/lipgloss"
	"github.com/morler/codeflow/logging"
	"github.com/morler/codeflow/providers"
	contracts_provider "github.com/morler/codeflow/providers/contracts"
	"github.com/morler/codeflow/token_management"
	contracts_token "github.com/morler/codeflow/token_management/contracts"
)

// RootDependencies holds the wired dependencies shared by all subcommands.
type RootDependencies struct {
	Config              *config.Config
	Cwd                 string
	TokenManagement     contracts_token.ITokenManagement
	ChatHistory         contracts_history.IChatHistory
	CurrentChatProvider contracts_provider.IChatAIProvider
	ContextCache        *code_context.Cache
	Locks               *action_executor.WorkspaceLocks
}

var rootCmd = &cobra.Command{
	Use:   "codeflow",
	Short: "codeflow is an AI code assistant that applies model-suggested file operations safely.",
	Long: `codeflow is an AI code assistant for your terminal. It builds a bounded view of
the current workspace, sends it with your request to a chat model, extracts the
file-operation directives from the response, orders them by dependency, and
applies them inside the workspace after validation.`,
	Run: func(cmd *cobra.Command, args []string) {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Println(config.DefaultConfig.Version)
			return
		}
		_ = cmd.Help()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		os.Exit(1)
	}
}

func init() {
	config.InitFlags(rootCmd)
	rootCmd.AddCommand(codeCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(contextCmd)
	rootCmd.AddCommand(resetContextCmd)
}

// handleRootCommand wires the process dependencies from configuration. It
// exits the process when the working directory is outside the configured
// workspace allowlist.
func handleRootCommand(cmd *cobra.Command) *RootDependencies {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Error getting current directory: %v", err)))
		os.Exit(1)
	}

	cfg := config.LoadConfigs(cmd.Root(), cwd)

	logging.Init(logging.Options{FilePath: cfg.LogFile, Level: slog.LevelInfo})

	if err := checkWorkspaceAllowed(cwd, cfg.WorkspaceRoots); err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		os.Exit(1)
	}

	ttl := parseDurationOr(cfg.CacheTTL, time.Hour)

	tokenManagement := token_management.NewTokenManager()
	chatHistory := chat_history.NewChatHistory()

	provider, err := providers.ChatProviderFactory(cfg.AIProviderConfig, tokenManagement)
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		os.Exit(1)
	}

	contextCache := code_context.NewCache(code_context.Options{
		TTL: ttl,
		Limits: code_context.ScanLimits{
			MaxFiles:    cfg.MaxIndexedFiles,
			MaxFileSize: cfg.MaxFileSizeBytes,
		},
		TokenBudget: cfg.ContextTokenBudget,
		Tokens:      tokenManagement,
	})

	return &RootDependencies{
		Config:              cfg,
		Cwd:                 cwd,
		TokenManagement:     tokenManagement,
		ChatHistory:         chatHistory,
		CurrentChatProvider: provider,
		ContextCache:        contextCache,
		Locks:               action_executor.NewWorkspaceLocks(),
	}
}

// checkWorkspaceAllowed enforces the workspace_roots allowlist. An empty
// allowlist permits any directory.
func checkWorkspaceAllowed(cwd string, roots []string) error {
	if len(roots) == 0 {
		return nil
	}
	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(abs, cwd)
		if err != nil {
			continue
		}
		if rel == "." || (!strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel)) {
			return nil
		}
	}
	return fmt.Errorf("workspace %q is not inside any configured workspace root", cwd)
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
