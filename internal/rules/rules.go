// Package rules holds a chatbot's ordered trigger/response table and resolves
// visitor messages against it, falling back to a generative reply when allowed.
package rules

import (
	"errors"
	"strings"

	"github.com/weblave/weblave/internal/llm"
)

// Rule maps a trigger phrase to a canned response.
type Rule struct {
	Trigger  string `json:"trigger" yaml:"trigger"`
	Response string `json:"response" yaml:"response"`
}

// ErrBlankRule is returned by Add when either side of a rule is blank.
var ErrBlankRule = errors.New("trigger and response are both required")

// Table is an ordered rule list. Duplicate triggers are allowed; the earliest
// one wins.
type Table []Rule

// Match returns the first rule whose trigger appears in text, ignoring case.
// Rules with an empty trigger never match, here and in the widget runtime.
// Add and chatbot validation reject them, so only a hand-built Table can
// hold one.
func (t Table) Match(text string) (Rule, bool) {
	lower := strings.ToLower(text)
	for _, r := range t {
		if r.Trigger == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(r.Trigger)) {
			return r, true
		}
	}
	return Rule{}, false
}

// Add appends a rule. Surrounding whitespace is kept; only all-blank sides
// are rejected.
func (t Table) Add(trigger, response string) (Table, error) {
	if strings.TrimSpace(trigger) == "" || strings.TrimSpace(response) == "" {
		return t, ErrBlankRule
	}
	return append(t, Rule{Trigger: trigger, Response: response}), nil
}

// Remove drops the rule at index. Out-of-range indexes leave the table as is.
func (t Table) Remove(index int) Table {
	if index < 0 || index >= len(t) {
		return t
	}
	out := make(Table, 0, len(t)-1)
	out = append(out, t[:index]...)
	return append(out, t[index+1:]...)
}

// FromTranscript turns a conversation into rules: each user message that is
// immediately followed by an assistant message becomes one rule.
func FromTranscript(messages []llm.Message) Table {
	var t Table
	for i := 0; i+1 < len(messages); i++ {
		if messages[i].Role == llm.RoleUser && messages[i+1].Role == llm.RoleAssistant {
			t = append(t, Rule{Trigger: messages[i].Content, Response: messages[i+1].Content})
		}
	}
	return t
}
