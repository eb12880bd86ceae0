package chatbot

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/weblave/weblave/internal/keyseal"
	"github.com/weblave/weblave/internal/rules"
	"github.com/weblave/weblave/internal/widget"
)

// ProxyPath is where generated widgets send unmatched messages.
const ProxyPath = "/api/widget/reply"

// ErrNoProxy is returned when an AI-enabled bot cannot be given a token.
var ErrNoProxy = errors.New("AI replies need a widget secret and a public base URL")

// Config describes one bot.
type Config struct {
	Name           string      `yaml:"name" json:"name"`
	WelcomeMessage string      `yaml:"welcome_message" json:"welcomeMessage"`
	Commands       rules.Table `yaml:"commands" json:"commands"`
	APIKey         string      `yaml:"api_key,omitempty" json:"apiKey,omitempty"`
}

// AIEnabled reports whether unmatched messages go to the model.
func (c Config) AIEnabled() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// Validate checks that every command has both sides.
func (c Config) Validate() error {
	for i, rule := range c.Commands {
		if strings.TrimSpace(rule.Trigger) == "" || strings.TrimSpace(rule.Response) == "" {
			return fmt.Errorf("command %d: %w", i+1, rules.ErrBlankRule)
		}
	}
	return nil
}

// Load reads a bot definition from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading chatbot %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing chatbot %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("chatbot %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes the bot definition to a YAML file.
func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling chatbot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing chatbot: %w", err)
	}
	return nil
}

// Options converts the bot into widget options. The API key is sealed into an
// opaque token the proxy at proxyURL can open.
func (c Config) Options(sealer *keyseal.Sealer, proxyURL string) (widget.Options, error) {
	opts := widget.Options{
		Name:           c.Name,
		WelcomeMessage: c.WelcomeMessage,
		Commands:       c.Commands,
	}
	if !c.AIEnabled() {
		return opts, nil
	}
	if sealer == nil || proxyURL == "" {
		return widget.Options{}, ErrNoProxy
	}
	token, err := sealer.Seal(strings.TrimSpace(c.APIKey))
	if err != nil {
		return widget.Options{}, fmt.Errorf("sealing api key: %w", err)
	}
	opts.Endpoint = proxyURL
	opts.Token = token
	return opts, nil
}

// Generator turns bot definitions into snippets.
type Generator struct {
	Sealer      *keyseal.Sealer
	ProxyURL    string
	TypingDelay time.Duration
}

// NewGenerator creates a generator whose widgets call back to baseURL.
func NewGenerator(sealer *keyseal.Sealer, baseURL string, delay time.Duration) *Generator {
	proxy := ""
	if baseURL != "" {
		proxy = strings.TrimRight(baseURL, "/") + ProxyPath
	}
	return &Generator{Sealer: sealer, ProxyURL: proxy, TypingDelay: delay}
}

// Generate validates cfg and renders its snippet.
func (g *Generator) Generate(cfg Config) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	opts, err := cfg.Options(g.Sealer, g.ProxyURL)
	if err != nil {
		return "", err
	}
	opts.TypingDelay = g.TypingDelay
	return widget.Generate(opts)
}
