package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/morler/codeflow/constants/lipgloss"
	"github.com/morler/codeflow/embed_data"
	"github.com/morler/codeflow/operations"
	"github.com/morler/codeflow/utils"
)

// CodeCmd: codeflow code
var codeCmd = &cobra.Command{
	Use:   "code",
	Short: "Run the AI-powered code assistant for various coding tasks within a session.",
	Long: `The 'code' subcommand starts a session-based AI assistant. Each request is sent
with a bounded, relevance-ranked view of the current workspace; file-operation
directives in the response are ordered by dependency, confirmed, and applied
inside the workspace.`,
	Run: func(cmd *cobra.Command, args []string) {
		rootDependencies := handleRootCommand(cmd)
		handleCodeCommand(rootDependencies)
	},
}

func handleCodeCommand(rootDependencies *RootDependencies) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	spinner := pterm.DefaultSpinner.WithStyle(pterm.NewStyle(pterm.FgLightBlue)).WithSequence("⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏").WithDelay(100).WithRemoveWhenDone(true)

	go utils.GracefulShutdown(ctx, func() {
		rootDependencies.ChatHistory.ClearHistory()
		rootDependencies.TokenManagement.ClearToken()
	})

	reader := bufio.NewReader(os.Stdin)

	codeOptionsBox := lipgloss.BoxStyle.Render("/help  Help for code subcommand")
	fmt.Println(codeOptionsBox)

startLoop: // Label for the start loop
	for {
		select {
		case <-ctx.Done():
			return

		default:
			displayTokens := func() {
				rootDependencies.TokenManagement.DisplayTokens(rootDependencies.Config.AIProviderConfig.Provider, rootDependencies.Config.AIProviderConfig.Model)
			}

			userInput, err := utils.InputPromptWithContext(ctx, reader)

			if err != nil {
				if err == context.Canceled {
					fmt.Println(lipgloss.Yellow.Render("\n🔄 Exiting..."))
					return
				}
				fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
				continue
			}

			if userInput == "" {
				fmt.Print("\r")
				continue
			}

			isSubCommand, exit := findCodeSubCommand(userInput, rootDependencies)

			if isSubCommand {
				continue
			}

			if exit {
				return
			}

			spinnerLoadContext, _ := spinner.Start("Loading context...")

			projectContext, err := rootDependencies.ContextCache.GetOrBuild(ctx, rootDependencies.Cwd, userInput)

			spinnerLoadContext.Stop()
			fmt.Print("\r")

			if err != nil {
				fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
				continue
			}

			var aiResponseBuilder strings.Builder

			chatRequestOperation := func() error {
				finalPrompt, userInputPrompt := buildPrompt(projectContext, rootDependencies.ChatHistory.GetHistory(), userInput)

				aiSpinner := pterm.DefaultSpinner.
					WithStyle(pterm.NewStyle(pterm.FgCyan)).
					WithSequence("🤔", "🧠", "💭", "✨", "🚀", "💡").
					WithDelay(1000).
					WithRemoveWhenDone(true)

				spinnerAI, _ := aiSpinner.Start("AI is thinking...")

				responseChan := rootDependencies.CurrentChatProvider.ChatCompletionRequest(ctx, userInputPrompt, finalPrompt)

				firstResponse := true
				for response := range responseChan {
					if response.Err != nil {
						spinnerAI.Stop()
						return response.Err
					}

					if response.Done {
						if firstResponse {
							spinnerAI.Stop()
						}
						rootDependencies.ChatHistory.AddToHistory(userInput, aiResponseBuilder.String())
						return nil
					}

					if firstResponse && response.Content != "" {
						spinnerAI.Stop()
						fmt.Print("\n")
						firstResponse = false
					}

					aiResponseBuilder.WriteString(response.Content)

					language := utils.DetectLanguageFromCodeBlock(response.Content)
					if err := utils.RenderAndPrintMarkdownWithContext(ctx, response.Content, language, rootDependencies.Config.Theme); err != nil {
						if err == context.Canceled {
							return fmt.Errorf("output cancelled by user")
						}
						return fmt.Errorf("error rendering markdown: %v", err)
					}
				}

				return nil
			}

			if err := chatRequestOperation(); err != nil {
				fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
				displayTokens()
				continue startLoop
			}

			fmt.Print("\n")

			confirm := func(op *operations.PendingOperation) (bool, error) {
				label := fmt.Sprintf("%s %s", op.Kind.String(), op.RawPath)
				if op.Kind == operations.KindRunCommand {
					label = fmt.Sprintf("%s %q", op.Kind.String(), strings.TrimSpace(string(op.Content)))
				}
				return utils.ConfirmPrompt(label, reader)
			}

			report, skipped, err := runPipeline(ctx, rootDependencies, aiResponseBuilder.String(), confirm)
			if err != nil {
				fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
				displayTokens()
				continue
			}

			for _, parseErr := range skipped {
				fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("Skipped directive: %v", parseErr)))
			}

			if report == nil {
				fmt.Println()
				displayTokens()
				continue
			}

			printReport(report)
			displayTokens()
		}
	}
}

// buildPrompt assembles the system and user prompts from the embedded
// template, the bounded workspace context and the session history.
func buildPrompt(projectContext string, history string, userInput string) (string, string) {
	var finalPrompt strings.Builder
	finalPrompt.Write(embed_data.CodeAssistantPrompt)
	finalPrompt.WriteString("\n\n")
	finalPrompt.WriteString(projectContext)

	var userPrompt strings.Builder
	if history != "" {
		userPrompt.WriteString("## Session history\n")
		userPrompt.WriteString(history)
		userPrompt.WriteString("\n")
	}
	userPrompt.WriteString("## Request\n")
	userPrompt.WriteString(userInput)

	return finalPrompt.String(), userPrompt.String()
}

func findCodeSubCommand(command string, rootDependencies *RootDependencies) (bool, bool) {
	switch command {
	case "/help":
		helps := "/clear  Clear screen\n/exit  Exit from codeflow\n/token  Token information\n/live-token  Session token stats with details\n/clear-token  Clear token from session\n/clear-history  Clear history of chat from session\n/context-stats  Context cache statistics\n/reset-context  Drop all cached workspace contexts"
		styledHelps := lipgloss.BoxStyle.Render(helps)
		fmt.Println(styledHelps)
		return true, false
	case "/clear":
		fmt.Print("\033[2J\033[H")
		return true, false
	case "/exit":
		return false, true
	case "/token":
		rootDependencies.TokenManagement.DisplayTokens(
			rootDependencies.Config.AIProviderConfig.Provider,
			rootDependencies.Config.AIProviderConfig.Model,
		)
		return true, false
	case "/live-token":
		total, input, output := rootDependencies.TokenManagement.GetCurrentTokenUsage()
		cost := rootDependencies.TokenManagement.CalculateCost(
			rootDependencies.Config.AIProviderConfig.Provider,
			rootDependencies.Config.AIProviderConfig.Model,
			input, output,
		)
		fmt.Printf("📊 Session Token Stats:\n")
		fmt.Printf("   Total: %d tokens (Input: %d, Output: %d)\n", total, input, output)
		fmt.Printf("   Cost: $%.6f\n", cost)
		fmt.Printf("   Model: %s\n", rootDependencies.Config.AIProviderConfig.Model)
		return true, false
	case "/clear-token":
		rootDependencies.TokenManagement.ClearToken()
		return true, false
	case "/clear-history":
		rootDependencies.ChatHistory.ClearHistory()
		return true, false
	case "/context-stats":
		stats := rootDependencies.ContextCache.Stats()
		fmt.Println(lipgloss.Info.Render("Context Cache Statistics:"))
		for _, key := range []string{"entries", "hits", "misses", "builds", "hit_rate", "memoized_rank"} {
			if v, ok := stats[key]; ok {
				fmt.Printf("  %s: %v\n", key, v)
			}
		}
		return true, false
	case "/reset-context":
		rootDependencies.ContextCache.Clear()
		fmt.Println(lipgloss.Green.Render("✓ Context cache cleared."))
		return true, false
	default:
		return false, false
	}
}
