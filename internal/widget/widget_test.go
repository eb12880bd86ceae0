package widget

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/weblave/weblave/internal/rules"
)

func testOptions() Options {
	return Options{
		Name:           "Support Bot",
		WelcomeMessage: "Hello! How can I help you today?",
		Commands:       rules.Table{{Trigger: "pricing", Response: "$10/mo"}, {Trigger: "hours", Response: "9 to 5"}},
	}
}

// extractModel pulls the inlined JSON model back out of a snippet.
func extractModel(t *testing.T, snippet string) payload {
	t.Helper()
	const prefix = "var model = "
	start := strings.Index(snippet, prefix)
	if start < 0 {
		t.Fatal("snippet has no model")
	}
	rest := snippet[start+len(prefix):]
	end := strings.Index(rest, ";\n")
	var p payload
	if err := json.Unmarshal([]byte(rest[:end]), &p); err != nil {
		t.Fatalf("model is not valid JSON: %v", err)
	}
	return p
}

func TestGenerateIsDeterministic(t *testing.T) {
	a, err := Generate(testOptions())
	if err != nil {
		t.Fatal(err)
	}
	b, err := Generate(testOptions())
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatal("same options should produce identical snippets")
	}
}

func TestSnippetShape(t *testing.T) {
	out, err := Generate(testOptions())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, Marker+"\n<script>\n") {
		t.Errorf("unexpected prefix: %q", out[:40])
	}
	if !strings.HasSuffix(out, "})();\n</script>\n") {
		t.Error("snippet should end with the closing script tag")
	}
	if strings.Count(out, "</script>") != 1 {
		t.Error("snippet should contain exactly one closing script tag")
	}
	for _, want := range []string{"DOMContentLoaded", "createElement", "textContent", "@keyframes weblave-typing"} {
		if !strings.Contains(out, want) {
			t.Errorf("snippet missing %q", want)
		}
	}
	if strings.Contains(out, "innerHTML") {
		t.Error("runtime must not use innerHTML")
	}
}

func TestModelCarriesBotData(t *testing.T) {
	out, _ := Generate(testOptions())
	p := extractModel(t, out)

	if p.Data.Name != "Support Bot" || p.Data.WelcomeMessage != "Hello! How can I help you today?" {
		t.Errorf("unexpected data: %+v", p.Data)
	}
	if len(p.Data.Commands) != 2 || p.Data.Commands[0].Trigger != "pricing" {
		t.Errorf("unexpected commands: %+v", p.Data.Commands)
	}
	if p.Data.TypingDelayMS != 500 {
		t.Errorf("expected 500ms delay, got %d", p.Data.TypingDelayMS)
	}
	if p.Data.FallbackReply != rules.FallbackReply || p.Data.ErrorReply != ErrorReply {
		t.Error("fallback strings missing")
	}
	if p.Data.Endpoint != "" || p.Data.Token != "" {
		t.Error("no endpoint expected without a token")
	}
	if len(p.Bindings) != 2 || p.Bindings[1].Key != "Enter" || p.Bindings[0].Action != ActionToggle {
		t.Errorf("unexpected bindings: %+v", p.Bindings)
	}
}

func TestEmptyCommandsRenderAsArray(t *testing.T) {
	out, _ := Generate(Options{Name: "x"})
	if !strings.Contains(out, `"commands":[]`) {
		t.Error("commands should render as an empty array")
	}
}

func TestUserTextIsEscaped(t *testing.T) {
	opts := Options{
		Name:           `</script><script>alert("x")</script>`,
		WelcomeMessage: "line\u2028break & <b>bold</b>",
	}
	out, err := Generate(opts)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(out, "</script>") != 1 {
		t.Fatal("user text closed the script element")
	}
	if strings.Contains(out, "<b>") || strings.Contains(out, "\u2028") {
		t.Error("markup and line separators must be escaped")
	}
	p := extractModel(t, out)
	if p.Data.Name != opts.Name {
		t.Errorf("round-tripped name = %q", p.Data.Name)
	}
}

func TestAIEndpointNeedsToken(t *testing.T) {
	opts := testOptions()
	opts.Endpoint = "https://weblave.example/api/widget/reply"
	p := extractModel(t, mustGenerate(t, opts))
	if p.Data.Endpoint != "" {
		t.Error("endpoint without token should be dropped")
	}

	opts.Token = "sealed-token"
	p = extractModel(t, mustGenerate(t, opts))
	if p.Data.Endpoint != opts.Endpoint || p.Data.Token != "sealed-token" {
		t.Errorf("unexpected AI data: %+v", p.Data)
	}
}

func TestBuildDefaults(t *testing.T) {
	doc := Build(Options{TypingDelay: 2 * time.Second})
	if doc.Data.Name != DefaultName {
		t.Errorf("expected default name, got %q", doc.Data.Name)
	}
	if doc.Data.TypingDelayMS != 2000 {
		t.Errorf("expected 2000ms, got %d", doc.Data.TypingDelayMS)
	}

	refs := map[string]bool{}
	var walk func(e Element)
	walk = func(e Element) {
		if e.Ref != "" {
			refs[e.Ref] = true
		}
		for _, c := range e.Children {
			walk(c)
		}
	}
	for _, e := range doc.Elements {
		walk(e)
	}
	for _, b := range doc.Bindings {
		if !refs[b.Target] {
			t.Errorf("binding target %q has no element", b.Target)
		}
	}
	if !refs["messages"] || !refs["panel"] {
		t.Error("runtime refs missing")
	}
}

func TestBuildCopiesCommands(t *testing.T) {
	table := rules.Table{{Trigger: "a", Response: "1"}}
	doc := Build(Options{Commands: table})
	table[0].Response = "changed"
	if doc.Data.Commands[0].Response != "1" {
		t.Error("document should not alias the caller's table")
	}
}

func TestStylesheetCSS(t *testing.T) {
	css := Stylesheet{
		Rules:     []StyleRule{{Selector: ".a", Declarations: []Declaration{{"color", "red"}}}},
		Keyframes: []Keyframes{{Name: "k", Frames: []StyleRule{{Selector: "from", Declarations: []Declaration{{"opacity", "0"}}}}}},
	}.CSS()
	want := ".a {\n  color: red;\n}\n@keyframes k {\n  from {\n    opacity: 0;\n  }\n}\n"
	if css != want {
		t.Errorf("CSS() = %q, want %q", css, want)
	}
}

func mustGenerate(t *testing.T, opts Options) string {
	t.Helper()
	out, err := Generate(opts)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func TestRuntimeSkipsEmptyTriggers(t *testing.T) {
	out, err := Generate(testOptions())
	if err != nil {
		t.Fatal(err)
	}
	// Same rule as rules.Table.Match: a blank trigger never matches.
	if !strings.Contains(out, "cmd.trigger && lower.indexOf(cmd.trigger.toLowerCase()) !== -1") {
		t.Error("runtime rule lookup should skip empty triggers")
	}
}
