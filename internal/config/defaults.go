package config

// DefaultModels maps each provider to the model used when none is configured.
var DefaultModels = map[ProviderType]string{
	ProviderGoogle: "gemini-2.0-flash",
	ProviderOpenAI: "gpt-4o-mini",
}

// DefaultAccept are the file name globs accepted for chat attachments.
var DefaultAccept = []string{"*.pdf"}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:                  "0.0.0.0",
			Port:                  8080,
			BaseURL:               "http://localhost:8080",
			RequestTimeoutSeconds: 60,
			AllowedOrigins:        []string{"*"},
		},
		LLM: LLMConfig{
			Provider: ProviderGoogle,
			Model:    DefaultModels[ProviderGoogle],
			Generation: GenerationConfig{
				Temperature:     0.7,
				MaxOutputTokens: 150,
				TopP:            0.8,
				TopK:            40,
			},
		},
		Widget: WidgetConfig{
			TypingDelayMS: 500,
		},
		Chat: ChatConfig{
			Accept: DefaultAccept,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// DefaultModel returns the default model for provider, or "".
func DefaultModel(provider ProviderType) string {
	return DefaultModels[provider]
}
