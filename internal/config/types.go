package config

// ProviderType identifies an LLM provider.
type ProviderType string

const (
	ProviderGoogle ProviderType = "google"
	ProviderOpenAI ProviderType = "openai"
)

// Config is the top-level weblave configuration, corresponding to .weblave.yml.
type Config struct {
	Server ServerConfig `yaml:"server" koanf:"server"`
	LLM    LLMConfig    `yaml:"llm" koanf:"llm"`
	Auth   AuthConfig   `yaml:"auth" koanf:"auth"`
	Widget WidgetConfig `yaml:"widget" koanf:"widget"`
	Chat   ChatConfig   `yaml:"chat" koanf:"chat"`
	Log    LogConfig    `yaml:"log" koanf:"log"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host string `yaml:"host" koanf:"host"`
	Port int    `yaml:"port" koanf:"port"`
	// BaseURL is the public origin; generated widgets call back to it.
	BaseURL               string   `yaml:"base_url" koanf:"base_url"`
	SecureCookies         bool     `yaml:"secure_cookies" koanf:"secure_cookies"`
	RequestTimeoutSeconds int      `yaml:"request_timeout_seconds" koanf:"request_timeout_seconds"`
	AllowedOrigins        []string `yaml:"allowed_origins" koanf:"allowed_origins"`
}

// LLMConfig selects the generative-language provider.
type LLMConfig struct {
	Provider   ProviderType     `yaml:"provider" koanf:"provider"`
	Model      string           `yaml:"model" koanf:"model"`
	APIKey     string           `yaml:"api_key,omitempty" koanf:"api_key"`
	BaseURL    string           `yaml:"base_url,omitempty" koanf:"base_url"`
	Generation GenerationConfig `yaml:"generation" koanf:"generation"`
}

// GenerationConfig holds the sampling parameters sent with every request.
type GenerationConfig struct {
	Temperature     float64 `yaml:"temperature" koanf:"temperature"`
	MaxOutputTokens int     `yaml:"max_output_tokens" koanf:"max_output_tokens"`
	TopP            float64 `yaml:"top_p" koanf:"top_p"`
	TopK            int     `yaml:"top_k" koanf:"top_k"`
}

// AuthConfig points at the hosted identity provider.
type AuthConfig struct {
	SupabaseURL     string `yaml:"supabase_url,omitempty" koanf:"supabase_url"`
	SupabaseAnonKey string `yaml:"supabase_anon_key,omitempty" koanf:"supabase_anon_key"`
}

// WidgetConfig holds settings for generated chatbot widgets.
type WidgetConfig struct {
	// Secret seals bot API keys into widget tokens. When empty an ephemeral
	// secret is generated at startup.
	Secret        string `yaml:"secret,omitempty" koanf:"secret"`
	TypingDelayMS int    `yaml:"typing_delay_ms" koanf:"typing_delay_ms"`
}

// ChatConfig holds direct-chat settings.
type ChatConfig struct {
	Accept []string `yaml:"accept" koanf:"accept"`
}

// LogConfig controls zerolog output.
type LogConfig struct {
	Level  string `yaml:"level" koanf:"level"`
	Format string `yaml:"format" koanf:"format"` // "console" or "json"
}
