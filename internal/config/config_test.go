package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// clearSecrets keeps the developer's environment out of the tests.
func clearSecrets(t *testing.T) {
	t.Helper()
	for _, v := range []string{
		"GOOGLE_API_KEY", "OPENAI_API_KEY",
		"SUPABASE_URL", "SUPABASE_ANON_KEY", "VITE_SUPABASE_URL", "VITE_SUPABASE_ANON_KEY",
		"WEBLAVE_WIDGET_SECRET",
	} {
		t.Setenv(v, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.LLM.Provider != ProviderGoogle {
		t.Errorf("expected default provider %q, got %q", ProviderGoogle, cfg.LLM.Provider)
	}
	if cfg.LLM.Model != "gemini-2.0-flash" {
		t.Errorf("expected default model gemini-2.0-flash, got %q", cfg.LLM.Model)
	}
	g := cfg.LLM.Generation
	if g.Temperature != 0.7 || g.MaxOutputTokens != 150 || g.TopP != 0.8 || g.TopK != 40 {
		t.Errorf("unexpected generation defaults: %+v", g)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Widget.TypingDelayMS != 500 {
		t.Errorf("expected 500ms typing delay, got %d", cfg.Widget.TypingDelayMS)
	}
}

func TestSaveAndLoad(t *testing.T) {
	clearSecrets(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "test.weblave.yml")

	original := DefaultConfig()
	original.LLM.Provider = ProviderOpenAI
	original.LLM.Model = "gpt-4o"
	original.Server.Port = 9090
	original.Server.BaseURL = "https://bots.example.com"
	original.Chat.Accept = []string{"*.pdf", "reports/**/*.pdf"}

	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.LLM.Provider != original.LLM.Provider {
		t.Errorf("provider: got %q, want %q", loaded.LLM.Provider, original.LLM.Provider)
	}
	if loaded.LLM.Model != original.LLM.Model {
		t.Errorf("model: got %q, want %q", loaded.LLM.Model, original.LLM.Model)
	}
	if loaded.Server.Port != 9090 || loaded.Server.BaseURL != "https://bots.example.com" {
		t.Errorf("server: got %+v", loaded.Server)
	}
	if len(loaded.Chat.Accept) != 2 || loaded.Chat.Accept[1] != "reports/**/*.pdf" {
		t.Errorf("accept: got %v", loaded.Chat.Accept)
	}
	if loaded.LLM.Generation != original.LLM.Generation {
		t.Errorf("generation: got %+v", loaded.LLM.Generation)
	}
}

func TestSaveOmitsEmptySecrets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yml")
	if err := DefaultConfig().Save(path); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	for _, key := range []string{"api_key", "secret", "supabase_anon_key"} {
		if strings.Contains(string(data), key+":") {
			t.Errorf("saved config should not contain empty %s", key)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearSecrets(t)
	path := filepath.Join(t.TempDir(), "nonexistent.yml")

	// Loading a missing file should return defaults, not an error.
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if cfg.LLM.Provider != ProviderGoogle {
		t.Errorf("expected default provider, got %q", cfg.LLM.Provider)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	clearSecrets(t)
	path := filepath.Join(t.TempDir(), "test.yml")
	if err := os.WriteFile(path, []byte("server:\n  port: 7000\n"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("WEBLAVE_LLM__MODEL", "gemini-1.5-pro")
	t.Setenv("WEBLAVE_SERVER__BASE_URL", "https://env.example.com")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.LLM.Model != "gemini-1.5-pro" {
		t.Errorf("env override failed: got %q", loaded.LLM.Model)
	}
	if loaded.Server.BaseURL != "https://env.example.com" {
		t.Errorf("nested env override failed: got %q", loaded.Server.BaseURL)
	}
	if loaded.Server.Port != 7000 {
		t.Errorf("file value lost: got %d", loaded.Server.Port)
	}
}

func TestLoadProviderSwitchPicksDefaultModel(t *testing.T) {
	clearSecrets(t)
	path := filepath.Join(t.TempDir(), "test.yml")
	os.WriteFile(path, []byte("llm:\n  provider: openai\n"), 0644)

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.LLM.Model != "gpt-4o-mini" {
		t.Errorf("expected openai default model, got %q", loaded.LLM.Model)
	}
}

func TestLoadSecretFallbacks(t *testing.T) {
	clearSecrets(t)
	t.Setenv("GOOGLE_API_KEY", "g-key")
	t.Setenv("VITE_SUPABASE_URL", "https://proj.supabase.co")
	t.Setenv("SUPABASE_ANON_KEY", "anon")
	t.Setenv("WEBLAVE_WIDGET_SECRET", "seal")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LLM.APIKey != "g-key" {
		t.Errorf("api key fallback: got %q", cfg.LLM.APIKey)
	}
	if cfg.Auth.SupabaseURL != "https://proj.supabase.co" || cfg.Auth.SupabaseAnonKey != "anon" {
		t.Errorf("auth fallback: got %+v", cfg.Auth)
	}
	if cfg.Widget.Secret != "seal" {
		t.Errorf("widget secret fallback: got %q", cfg.Widget.Secret)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	os.WriteFile(envPath, []byte("WEBLAVE_TEST_DOTENV=loaded\nWEBLAVE_TEST_KEPT=from-file\n"), 0644)
	t.Setenv("WEBLAVE_TEST_KEPT", "from-env")
	t.Cleanup(func() { os.Unsetenv("WEBLAVE_TEST_DOTENV") })

	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), envPath); err != nil {
		t.Fatalf("LoadDotEnv failed: %v", err)
	}
	if v := os.Getenv("WEBLAVE_TEST_DOTENV"); v != "loaded" {
		t.Errorf("expected variable from .env, got %q", v)
	}
	if v := os.Getenv("WEBLAVE_TEST_KEPT"); v != "from-env" {
		t.Errorf("existing variable overridden: %q", v)
	}
}

func TestValidateValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig should be valid, got: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"invalid provider", func(c *Config) { c.LLM.Provider = "invalid" }},
		{"empty provider", func(c *Config) { c.LLM.Provider = "" }},
		{"empty model", func(c *Config) { c.LLM.Model = "" }},
		{"temperature", func(c *Config) { c.LLM.Generation.Temperature = 3 }},
		{"max tokens", func(c *Config) { c.LLM.Generation.MaxOutputTokens = 0 }},
		{"top p", func(c *Config) { c.LLM.Generation.TopP = 1.5 }},
		{"top k", func(c *Config) { c.LLM.Generation.TopK = -1 }},
		{"port", func(c *Config) { c.Server.Port = 70000 }},
		{"timeout", func(c *Config) { c.Server.RequestTimeoutSeconds = -1 }},
		{"typing delay", func(c *Config) { c.Widget.TypingDelayMS = -5 }},
		{"log format", func(c *Config) { c.Log.Format = "xml" }},
		{"half auth", func(c *Config) { c.Auth.SupabaseURL = "https://x.supabase.co" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestAPIKeyEnvVar(t *testing.T) {
	tests := []struct {
		provider ProviderType
		want     string
	}{
		{ProviderGoogle, "GOOGLE_API_KEY"},
		{ProviderOpenAI, "OPENAI_API_KEY"},
		{"unknown", ""},
	}
	for _, tt := range tests {
		if got := APIKeyEnvVar(tt.provider); got != tt.want {
			t.Errorf("APIKeyEnvVar(%q) = %q, want %q", tt.provider, got, tt.want)
		}
	}
}

func TestValidatePort(t *testing.T) {
	for _, ok := range []string{"80", "8080", " 65535 "} {
		if err := validatePort(ok); err != nil {
			t.Errorf("validatePort(%q) unexpected error: %v", ok, err)
		}
	}
	for _, bad := range []string{"", "0", "abc", "70000"} {
		if err := validatePort(bad); err == nil {
			t.Errorf("validatePort(%q) expected error", bad)
		}
	}
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b , c ", []string{"a", "b", "c"}},
		{"**/*.pdf", []string{"**/*.pdf"}},
		{"", nil},
		{"  ,  , ", nil},
	}
	for _, tt := range tests {
		got := SplitAndTrim(tt.input)
		if len(got) != len(tt.want) {
			t.Errorf("SplitAndTrim(%q) len = %d, want %d", tt.input, len(got), len(tt.want))
			continue
		}
		for i, v := range got {
			if v != tt.want[i] {
				t.Errorf("SplitAndTrim(%q)[%d] = %q, want %q", tt.input, i, v, tt.want[i])
			}
		}
	}
}
