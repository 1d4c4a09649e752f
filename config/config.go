package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/morler/codeflow/constants/lipgloss"
	"github.com/morler/codeflow/providers"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config represents the structure of the configuration file.
type Config struct {
	Version            string                      `mapstructure:"version"`
	Theme              string                      `mapstructure:"theme"`
	WorkspaceRoots     []string                    `mapstructure:"workspace_roots"`
	CacheTTL           string                      `mapstructure:"cache_ttl"`
	MaxIndexedFiles    int                         `mapstructure:"max_indexed_files"`
	MaxFileSizeBytes   int64                       `mapstructure:"max_file_size_bytes"`
	MaxPathLength      int                         `mapstructure:"max_path_length"`
	ContextTokenBudget int                         `mapstructure:"context_token_budget"`
	OperationTimeout   string                      `mapstructure:"operation_timeout"`
	AutoCommit         bool                        `mapstructure:"auto_commit"`
	LogFile            string                      `mapstructure:"log_file"`
	AIProviderConfig   *providers.AIProviderConfig `mapstructure:"ai_provider_config"`
}

// DefaultConfig values.
var DefaultConfig = Config{
	Version:            "0.3.0",
	Theme:              "dracula",
	WorkspaceRoots:     nil,
	CacheTTL:           "1h",
	MaxIndexedFiles:    5000,
	MaxFileSizeBytes:   100 * 1024,
	MaxPathLength:      4096,
	ContextTokenBudget: 8000,
	OperationTimeout:   "30s",
	AutoCommit:         false,
	LogFile:            "",
	AIProviderConfig: &providers.AIProviderConfig{
		Provider:    "ollama",
		BaseURL:     "http://localhost:11434/api",
		Model:       "qwen2.5-coder",
		Stream:      true,
		Temperature: nil,
		ApiKey:      "",
		ApiVersion:  "",
	},
}

// cfgFile holds the path to the configuration file (set via CLI).
var cfgFile string

// LoadConfigs initializes the configuration from file, flags, and environment variables, and returns the final config.
func LoadConfigs(rootCmd *cobra.Command, cwd string) *Config {
	var config *Config

	setDefaults()

	viper.AutomaticEnv()
	bindEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Error reading config file: %v", err)))
			os.Exit(1)
		}
	} else {
		viper.SetConfigName("codeflow-config")
		viper.AddConfigPath(cwd)

		viper.SetConfigType("yaml")
		if err := viper.ReadInConfig(); err != nil {
			viper.SetConfigType("json")
			if err := viper.ReadInConfig(); err != nil {
				fmt.Println(lipgloss.Yellow.Render("No configuration file found, using defaults"))
			}
		}
	}

	bindFlags(rootCmd)

	if err := viper.Unmarshal(&config); err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Unable to decode into struct: %v", err)))
		os.Exit(1)
	}

	return config
}

// setDefaults sets all default configuration values.
func setDefaults() {
	viper.SetDefault("version", DefaultConfig.Version)
	viper.SetDefault("theme", DefaultConfig.Theme)
	viper.SetDefault("workspace_roots", DefaultConfig.WorkspaceRoots)
	viper.SetDefault("cache_ttl", DefaultConfig.CacheTTL)
	viper.SetDefault("max_indexed_files", DefaultConfig.MaxIndexedFiles)
	viper.SetDefault("max_file_size_bytes", DefaultConfig.MaxFileSizeBytes)
	viper.SetDefault("max_path_length", DefaultConfig.MaxPathLength)
	viper.SetDefault("context_token_budget", DefaultConfig.ContextTokenBudget)
	viper.SetDefault("operation_timeout", DefaultConfig.OperationTimeout)
	viper.SetDefault("auto_commit", DefaultConfig.AutoCommit)
	viper.SetDefault("log_file", DefaultConfig.LogFile)
	viper.SetDefault("ai_provider_config.provider", DefaultConfig.AIProviderConfig.Provider)
	viper.SetDefault("ai_provider_config.base_url", DefaultConfig.AIProviderConfig.BaseURL)
	viper.SetDefault("ai_provider_config.model", DefaultConfig.AIProviderConfig.Model)
	viper.SetDefault("ai_provider_config.stream", DefaultConfig.AIProviderConfig.Stream)
	viper.SetDefault("ai_provider_config.temperature", DefaultConfig.AIProviderConfig.Temperature)
	viper.SetDefault("ai_provider_config.api_key", DefaultConfig.AIProviderConfig.ApiKey)
	viper.SetDefault("ai_provider_config.api_version", DefaultConfig.AIProviderConfig.ApiVersion)
}

// bindEnv explicitly binds environment variables to configuration keys.
func bindEnv() {
	_ = viper.BindEnv("theme", "THEME")
	_ = viper.BindEnv("cache_ttl", "CACHE_TTL")
	_ = viper.BindEnv("context_token_budget", "CONTEXT_TOKEN_BUDGET")
	_ = viper.BindEnv("auto_commit", "AUTO_COMMIT")
	_ = viper.BindEnv("log_file", "LOG_FILE")
	_ = viper.BindEnv("ai_provider_config.provider", "PROVIDER")
	_ = viper.BindEnv("ai_provider_config.base_url", "BASE_URL")
	_ = viper.BindEnv("ai_provider_config.model", "MODEL")
	_ = viper.BindEnv("ai_provider_config.temperature", "TEMPERATURE")
	_ = viper.BindEnv("ai_provider_config.api_key", "API_KEY")
	_ = viper.BindEnv("ai_provider_config.api_version", "API_VERSION")
}

// bindFlags binds the CLI flags to configuration values.
func bindFlags(rootCmd *cobra.Command) {
	_ = viper.BindPFlag("theme", rootCmd.PersistentFlags().Lookup("theme"))
	_ = viper.BindPFlag("cache_ttl", rootCmd.PersistentFlags().Lookup("cache_ttl"))
	_ = viper.BindPFlag("context_token_budget", rootCmd.PersistentFlags().Lookup("context_token_budget"))
	_ = viper.BindPFlag("auto_commit", rootCmd.PersistentFlags().Lookup("auto_commit"))
	_ = viper.BindPFlag("log_file", rootCmd.PersistentFlags().Lookup("log_file"))
	_ = viper.BindPFlag("ai_provider_config.provider", rootCmd.PersistentFlags().Lookup("provider"))
	_ = viper.BindPFlag("ai_provider_config.base_url", rootCmd.PersistentFlags().Lookup("base_url"))
	_ = viper.BindPFlag("ai_provider_config.model", rootCmd.PersistentFlags().Lookup("model"))
	_ = viper.BindPFlag("ai_provider_config.temperature", rootCmd.PersistentFlags().Lookup("temperature"))
	_ = viper.BindPFlag("ai_provider_config.api_key", rootCmd.PersistentFlags().Lookup("api_key"))
	_ = viper.BindPFlag("ai_provider_config.api_version", rootCmd.PersistentFlags().Lookup("api_version"))
}

// InitFlags initializes the flags for the root command.
func InitFlags(rootCmd *cobra.Command) {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Specifies the path to a configuration file (JSON or YAML) that contains all the settings for the application.")

	rootCmd.PersistentFlags().String("theme", DefaultConfig.Theme, "Set customize theme for buffering response from ai. (e.g., 'dracula', 'light', 'dark')")
	rootCmd.PersistentFlags().String("cache_ttl", DefaultConfig.CacheTTL, "How long a built workspace context stays fresh before it falls back to fingerprint checks (e.g., '1h', '30m').")
	rootCmd.PersistentFlags().Int("context_token_budget", DefaultConfig.ContextTokenBudget, "Upper bound on the number of tokens of workspace context sent with each request.")
	rootCmd.PersistentFlags().Bool("auto_commit", DefaultConfig.AutoCommit, "Automatically stage and commit files changed by applied operations.")
	rootCmd.PersistentFlags().String("log_file", DefaultConfig.LogFile, "Path to the rotating log file. Empty disables file logging.")

	rootCmd.Flags().BoolP("version", "v", false, "Specifies the version of the application.")

	rootCmd.PersistentFlags().String("provider", DefaultConfig.AIProviderConfig.Provider, "The name of the AI provider (e.g., 'ollama')")
	rootCmd.PersistentFlags().String("base_url", DefaultConfig.AIProviderConfig.BaseURL, "The base URL of AI Provider (e.g., default is 'http://localhost:11434/api').")
	rootCmd.PersistentFlags().String("model", DefaultConfig.AIProviderConfig.Model, "The name of the model used for chat completions, such as 'qwen2.5-coder'.")
	rootCmd.PersistentFlags().Float32("temperature", 0, "Adjusts the AI model's creativity (0-1, default 0.2).")
	rootCmd.PersistentFlags().String("api_key", DefaultConfig.AIProviderConfig.ApiKey, "The API key used to authenticate with the AI service provider.")
	rootCmd.PersistentFlags().String("api_version", DefaultConfig.AIProviderConfig.ApiVersion, "The API version used to authenticate with the chat AI service provider.")
}

// GetConfigFileType returns the type of the configuration file based on its extension.
func GetConfigFileType(filename string) string {
	if strings.HasSuffix(filename, ".json") {
		return "json"
	} else if strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml") {
		return "yaml"
	}
	return ""
}
