package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/weblave/weblave/internal/chatbot"
	"github.com/weblave/weblave/internal/rules"
	"github.com/weblave/weblave/internal/widget"
)

func TestMatchBotFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.chatbot.yml", "nested/b.chatbot.yml", "notes.txt"} {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("name: x\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	files, err := matchBotFiles([]string{
		filepath.Join(dir, "**", "*.chatbot.yml"),
		filepath.Join(dir, "a.chatbot.yml"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Fatalf("files = %v, want 2 unique matches", files)
	}
	if !strings.HasSuffix(files[0], "a.chatbot.yml") {
		t.Errorf("files not sorted: %v", files)
	}
}

func TestGenerateOne(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "support.chatbot.yml")
	bot := chatbot.Config{
		Name:           "Support",
		WelcomeMessage: "Hi!",
		Commands:       rules.Table{{Trigger: "pricing", Response: "$10/mo"}},
	}
	if err := bot.Save(path); err != nil {
		t.Fatal(err)
	}

	gen := chatbot.NewGenerator(nil, "http://localhost:8080", 0)
	if err := generateOne(gen, path, dir); err != nil {
		t.Fatalf("generateOne: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "support.html"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), widget.Marker) {
		t.Errorf("snippet = %.60q", data)
	}
}

func TestGenerateOneAIWithoutSealer(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ai.yml")
	if err := (chatbot.Config{Name: "AI", APIKey: "AIza-x"}).Save(path); err != nil {
		t.Fatal(err)
	}

	gen := chatbot.NewGenerator(nil, "http://localhost:8080", 0)
	if err := generateOne(gen, path, dir); err == nil {
		t.Error("expected an error for an AI bot without a sealer")
	}
}
