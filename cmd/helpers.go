package cmd

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/weblave/weblave/internal/chatbot"
	"github.com/weblave/weblave/internal/config"
	"github.com/weblave/weblave/internal/llm"
	"github.com/weblave/weblave/internal/relay"
	"github.com/weblave/weblave/internal/rules"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `weblave init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// generation converts the configured sampling parameters.
func generation(cfg *config.Config) llm.GenerationConfig {
	g := cfg.LLM.Generation
	return llm.GenerationConfig{
		Temperature:     g.Temperature,
		MaxOutputTokens: g.MaxOutputTokens,
		TopP:            g.TopP,
		TopK:            g.TopK,
	}
}

// newRelay creates the server-wide relay from the configured provider.
func newRelay(cfg *config.Config, logger zerolog.Logger) (*relay.Relay, error) {
	provider, err := llm.NewProvider(llm.Settings{
		Provider: string(cfg.LLM.Provider),
		Model:    cfg.LLM.Model,
		APIKey:   cfg.LLM.APIKey,
		BaseURL:  cfg.LLM.BaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating LLM provider: %w", err)
	}
	return relay.New(provider, logger).WithGeneration(generation(cfg)), nil
}

// widgetSenders builds a relay per chatbot key. Widget keys are always
// Gemini keys, whatever provider the server itself uses.
func widgetSenders(cfg *config.Config, logger zerolog.Logger) chatbot.SenderFunc {
	model := cfg.LLM.Model
	if cfg.LLM.Provider != config.ProviderGoogle {
		model = config.DefaultModel(config.ProviderGoogle)
	}
	gen := generation(cfg)
	return func(apiKey string) rules.Sender {
		p := llm.NewGoogleProvider(apiKey, model)
		if cfg.LLM.Provider == config.ProviderGoogle && cfg.LLM.BaseURL != "" {
			p.WithBaseURL(cfg.LLM.BaseURL)
		}
		return relay.New(p, logger).WithGeneration(gen)
	}
}

// newGenerator creates the snippet generator, sealing keys with the
// configured widget secret.
func newGenerator(cfg *config.Config, logger zerolog.Logger) (*chatbot.Generator, error) {
	sealer, generated, err := chatbot.NewSealer(cfg.Widget.Secret)
	if err != nil {
		return nil, fmt.Errorf("creating widget sealer: %w", err)
	}
	if generated {
		logger.Warn().Msg("widget.secret is not set; AI widgets generated now stop working after a restart")
	}
	delay := time.Duration(cfg.Widget.TypingDelayMS) * time.Millisecond
	return chatbot.NewGenerator(sealer, cfg.Server.BaseURL, delay), nil
}
