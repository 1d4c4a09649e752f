package token_management

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenManager_AccumulatesAndClears(t *testing.T) {
	tm := NewTokenManager()

	tm.UsedTokens(100, 40)
	tm.UsedTokens(10, 5)

	total, input, output := tm.GetCurrentTokenUsage()
	assert.Equal(t, 155, total)
	assert.Equal(t, 110, input)
	assert.Equal(t, 45, output)

	tm.ClearToken()
	total, input, output = tm.GetCurrentTokenUsage()
	assert.Zero(t, total)
	assert.Zero(t, input)
	assert.Zero(t, output)
}

func TestTokenManager_EstimateTokens(t *testing.T) {
	tm := NewTokenManager()

	assert.Equal(t, 0, tm.EstimateTokens(""))
	assert.Equal(t, 1, tm.EstimateTokens("abc"))
	assert.Equal(t, 1, tm.EstimateTokens("abcd"))
	assert.Equal(t, 2, tm.EstimateTokens("abcde"))
}

func TestTokenManager_TruncateToBudget(t *testing.T) {
	tm := NewTokenManager()

	short := "too short to cut"
	assert.Equal(t, short, tm.TruncateToBudget(short, 1000))
	assert.Equal(t, short, tm.TruncateToBudget(short, 0))

	long := strings.Repeat("line of text\n", 100)
	cut := tm.TruncateToBudget(long, 20)
	assert.Less(t, len(cut), len(long))
	assert.True(t, strings.HasSuffix(cut, "... (truncated to context budget)"))
	// Cuts at a line boundary: no partial line before the truncation marker.
	trimmed := strings.TrimSuffix(cut, "\n... (truncated to context budget)")
	assert.True(t, strings.HasSuffix(trimmed, "line of text"))
}

func TestTokenManager_CalculateCostForKnownModel(t *testing.T) {
	tm := NewTokenManager()

	cost := tm.CalculateCost("openai", "gpt-4o", 1_000_000, 1_000_000)
	assert.Greater(t, cost, 0.0)
}

func TestTokenManager_CalculateCostForUnknownModelIsZero(t *testing.T) {
	tm := NewTokenManager()

	assert.Zero(t, tm.CalculateCost("openai", "no-such-model", 1000, 1000))
}
