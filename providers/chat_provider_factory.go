package providers

import (
	"fmt"

	"github.com/morler/codeflow/providers/contracts"
	"github.com/morler/codeflow/providers/ollama"
	contracts2 "github.com/morler/codeflow/token_management/contracts"
)

// AIProviderConfig holds the provider settings from the configuration file.
type AIProviderConfig struct {
	Provider    string   `mapstructure:"provider"`
	BaseURL     string   `mapstructure:"base_url"`
	Model       string   `mapstructure:"model"`
	Stream      bool     `mapstructure:"stream"`
	Temperature *float32 `mapstructure:"temperature"`
	MaxTokens   int      `mapstructure:"max_tokens"`
	ApiKey      string   `mapstructure:"api_key"`
	ApiVersion  string   `mapstructure:"api_version"`
}

// ChatProviderFactory creates a chat provider based on the configured provider name.
func ChatProviderFactory(config *AIProviderConfig, tokenManagement contracts2.ITokenManagement) (contracts.IChatAIProvider, error) {
	switch config.Provider {
	case "ollama":
		return ollama.NewOllamaChatProvider(&ollama.OllamaConfig{
			BaseURL:         config.BaseURL,
			Model:           config.Model,
			Temperature:     config.Temperature,
			MaxTokens:       config.MaxTokens,
			TokenManagement: tokenManagement,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported chat provider: %s", config.Provider)
	}
}
