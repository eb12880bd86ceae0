package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// DefaultPath is the project-local configuration file.
const DefaultPath = ".weblave.yml"

// EnvPrefix prefixes environment overrides. A double underscore separates
// nesting levels: WEBLAVE_LLM__MODEL sets llm.model.
const EnvPrefix = "WEBLAVE_"

// LoadDotEnv loads variables from the given .env files without overriding
// ones already set. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (WEBLAVE_*), then fills empty secrets from
// their conventional variables.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// A provider switch without a model picks that provider's default.
	if k.Exists("llm.provider") && !k.Exists("llm.model") {
		cfg.LLM.Model = DefaultModel(cfg.LLM.Provider)
	}

	cfg.applyEnvFallbacks()
	return cfg, nil
}

// envKey maps WEBLAVE_LLM__API_KEY to llm.api_key.
func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	return strings.ToLower(strings.ReplaceAll(s, "__", "."))
}

func (c *Config) applyEnvFallbacks() {
	if c.LLM.APIKey == "" {
		if v := APIKeyEnvVar(c.LLM.Provider); v != "" {
			c.LLM.APIKey = os.Getenv(v)
		}
	}
	if c.Auth.SupabaseURL == "" {
		c.Auth.SupabaseURL = firstEnv("SUPABASE_URL", "VITE_SUPABASE_URL")
	}
	if c.Auth.SupabaseAnonKey == "" {
		c.Auth.SupabaseAnonKey = firstEnv("SUPABASE_ANON_KEY", "VITE_SUPABASE_ANON_KEY")
	}
	if c.Widget.Secret == "" {
		c.Widget.Secret = os.Getenv("WEBLAVE_WIDGET_SECRET")
	}
}

func firstEnv(names ...string) string {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return v
		}
	}
	return ""
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validProviders is the set of recognized provider values.
var validProviders = map[ProviderType]bool{
	ProviderGoogle: true,
	ProviderOpenAI: true,
}

var validLogFormats = map[string]bool{"console": true, "json": true}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.LLM.Provider == "" {
		return fmt.Errorf("llm.provider is required")
	}
	if !validProviders[c.LLM.Provider] {
		return fmt.Errorf("invalid llm.provider %q: must be one of google, openai", c.LLM.Provider)
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("llm.model is required")
	}

	g := c.LLM.Generation
	if g.Temperature < 0 || g.Temperature > 2 {
		return fmt.Errorf("llm.generation.temperature must be between 0 and 2")
	}
	if g.MaxOutputTokens <= 0 {
		return fmt.Errorf("llm.generation.max_output_tokens must be positive")
	}
	if g.TopP < 0 || g.TopP > 1 {
		return fmt.Errorf("llm.generation.top_p must be between 0 and 1")
	}
	if g.TopK < 0 {
		return fmt.Errorf("llm.generation.top_k must be non-negative")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Server.RequestTimeoutSeconds < 0 {
		return fmt.Errorf("server.request_timeout_seconds must be non-negative")
	}
	if c.Widget.TypingDelayMS < 0 {
		return fmt.Errorf("widget.typing_delay_ms must be non-negative")
	}
	if c.Log.Format != "" && !validLogFormats[c.Log.Format] {
		return fmt.Errorf("invalid log.format %q: must be console or json", c.Log.Format)
	}
	if (c.Auth.SupabaseURL == "") != (c.Auth.SupabaseAnonKey == "") {
		return fmt.Errorf("auth.supabase_url and auth.supabase_anon_key must be set together")
	}

	return nil
}

// APIKeyEnvVar returns the conventional environment variable name for
// the API key of the given provider.
func APIKeyEnvVar(provider ProviderType) string {
	switch provider {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderGoogle:
		return "GOOGLE_API_KEY"
	default:
		return ""
	}
}
