package contracts

import (
	"context"

	"github.com/morler/codeflow/providers/models"
)

// IChatAIProvider defines the interface for streaming chat completions.
type IChatAIProvider interface {
	ChatCompletionRequest(ctx context.Context, userInput string, prompt string) <-chan models.StreamResponse
}
