package chat_history

import (
	"strings"
	"sync"

	"github.com/morler/codeflow/chat_history/contracts"
)

// chatHistory keeps the running transcript of a session so follow-up
// requests carry earlier exchanges.
type chatHistory struct {
	mu      sync.Mutex
	history strings.Builder
}

// NewChatHistory creates an empty session transcript.
func NewChatHistory() contracts.IChatHistory {
	return &chatHistory{}
}

func (ch *chatHistory) AddToHistory(userInput string, aiResponse string) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.history.WriteString("### User:\n")
	ch.history.WriteString(userInput)
	ch.history.WriteString("\n### Assistant:\n")
	ch.history.WriteString(aiResponse)
	ch.history.WriteString("\n")
}

func (ch *chatHistory) GetHistory() string {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.history.String()
}

func (ch *chatHistory) ClearHistory() {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.history.Reset()
}
