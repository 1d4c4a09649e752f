package chat_history

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChatHistory_AccumulatesExchanges(t *testing.T) {
	ch := NewChatHistory()
	assert.Empty(t, ch.GetHistory())

	ch.AddToHistory("add a button", "done, see Button.jsx")
	ch.AddToHistory("make it red", "updated the styles")

	history := ch.GetHistory()
	assert.Contains(t, history, "add a button")
	assert.Contains(t, history, "done, see Button.jsx")
	assert.Contains(t, history, "make it red")

	ch.ClearHistory()
	assert.Empty(t, ch.GetHistory())
}
