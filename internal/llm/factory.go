package llm

import (
	"fmt"
	"os"
)

// Settings selects and configures a provider.
type Settings struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
}

// NewProvider creates a new LLM provider from settings. An empty APIKey falls
// back to the provider's conventional environment variable.
// Supported provider types: "google", "openai".
func NewProvider(s Settings) (Provider, error) {
	switch s.Provider {
	case "google", "":
		apiKey := s.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("GOOGLE_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("GOOGLE_API_KEY environment variable is not set")
		}
		p := NewGoogleProvider(apiKey, s.Model)
		if s.BaseURL != "" {
			p.WithBaseURL(s.BaseURL)
		}
		return p, nil

	case "openai":
		apiKey := s.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
		}
		return NewOpenAIProvider(apiKey, s.Model, s.BaseURL), nil

	default:
		return nil, fmt.Errorf("unsupported provider type: %s", s.Provider)
	}
}
