// Package widget builds the embeddable chatbot widget: a typed document
// model rendered into one self-contained script tag.
package widget

import (
	"time"

	"github.com/weblave/weblave/internal/rules"
)

const (
	// ErrorReply is shown by the widget when the AI endpoint fails.
	ErrorReply = "I'm sorry, I couldn't process that request. Please try again later."
	// DefaultName titles a widget whose bot has no name.
	DefaultName = "Chatbot"
	// InputPlaceholder is the hint in the widget's text box.
	InputPlaceholder = "Type your message..."

	svgNS = "http://www.w3.org/2000/svg"
)

// Element is one node of the widget's DOM.
type Element struct {
	Tag       string    `json:"tag"`
	Namespace string    `json:"ns,omitempty"`
	ID        string    `json:"id,omitempty"`
	Class     string    `json:"class,omitempty"`
	Attrs     []Attr    `json:"attrs,omitempty"`
	Text      string    `json:"text,omitempty"`
	Ref       string    `json:"ref,omitempty"`
	Children  []Element `json:"children,omitempty"`
}

// Attr is an element attribute. A slice keeps the rendered order stable.
type Attr struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Declaration is one CSS property.
type Declaration struct {
	Property string
	Value    string
}

// StyleRule is a selector with its declarations.
type StyleRule struct {
	Selector     string
	Declarations []Declaration
}

// Keyframes is a named animation.
type Keyframes struct {
	Name   string
	Frames []StyleRule
}

// Stylesheet is the widget's CSS.
type Stylesheet struct {
	Rules     []StyleRule
	Keyframes []Keyframes
}

// Binding attaches an action to an element event. Key, when set, filters
// keyboard events.
type Binding struct {
	Target string `json:"target"`
	Event  string `json:"event"`
	Action string `json:"action"`
	Key    string `json:"key,omitempty"`
}

const (
	ActionToggle = "toggle"
	ActionSubmit = "submit"
)

// Data is the behaviour the runtime reads.
type Data struct {
	Name           string       `json:"name"`
	WelcomeMessage string       `json:"welcomeMessage"`
	Commands       []rules.Rule `json:"commands"`
	TypingDelayMS  int64        `json:"typingDelayMs"`
	FallbackReply  string       `json:"fallbackReply"`
	ErrorReply     string       `json:"errorReply"`
	Endpoint       string       `json:"endpoint,omitempty"`
	Token          string       `json:"token,omitempty"`
}

// Document is the complete widget before rendering.
type Document struct {
	Elements []Element
	Styles   Stylesheet
	Bindings []Binding
	Data     Data
}

// Options describe one bot.
type Options struct {
	Name           string
	WelcomeMessage string
	Commands       rules.Table
	// Endpoint and Token enable AI replies through the widget proxy.
	Endpoint    string
	Token       string
	TypingDelay time.Duration
}

// Build assembles the widget document for opts.
func Build(opts Options) Document {
	name := opts.Name
	if name == "" {
		name = DefaultName
	}
	delay := opts.TypingDelay
	if delay <= 0 {
		delay = rules.DefaultTypingDelay
	}
	commands := make([]rules.Rule, len(opts.Commands))
	copy(commands, opts.Commands)

	data := Data{
		Name:           name,
		WelcomeMessage: opts.WelcomeMessage,
		Commands:       commands,
		TypingDelayMS:  delay.Milliseconds(),
		FallbackReply:  rules.FallbackReply,
		ErrorReply:     ErrorReply,
	}
	if opts.Endpoint != "" && opts.Token != "" {
		data.Endpoint = opts.Endpoint
		data.Token = opts.Token
	}

	return Document{
		Elements: []Element{container(name, opts.WelcomeMessage)},
		Styles:   defaultStyles(),
		Bindings: []Binding{
			{Target: "launcher", Event: "click", Action: ActionToggle},
			{Target: "input", Event: "keypress", Action: ActionSubmit, Key: "Enter"},
		},
		Data: data,
	}
}

func container(name, welcome string) Element {
	messages := Element{Tag: "div", Class: "weblave-chat-messages", Ref: "messages"}
	if welcome != "" {
		messages.Children = []Element{{Tag: "div", Class: "weblave-message bot", Text: welcome}}
	}

	return Element{
		Tag: "div",
		ID:  "weblave-chatbot",
		Children: []Element{
			{
				Tag:   "button",
				Class: "weblave-chatbot-button",
				Ref:   "launcher",
				Attrs: []Attr{{Name: "type", Value: "button"}, {Name: "aria-label", Value: "Open chat"}},
				Children: []Element{launcherIcon()},
			},
			{
				Tag:   "div",
				Class: "weblave-chat-window",
				Ref:   "panel",
				Children: []Element{
					{Tag: "div", Class: "weblave-chat-header", Children: []Element{{Tag: "h3", Text: name}}},
					messages,
					{
						Tag:   "div",
						Class: "weblave-chat-input",
						Children: []Element{{
							Tag:   "input",
							Ref:   "input",
							Attrs: []Attr{{Name: "type", Value: "text"}, {Name: "placeholder", Value: InputPlaceholder}},
						}},
					},
				},
			},
		},
	}
}

func launcherIcon() Element {
	return Element{
		Tag:       "svg",
		Namespace: svgNS,
		Attrs: []Attr{
			{Name: "width", Value: "24"},
			{Name: "height", Value: "24"},
			{Name: "viewBox", Value: "0 0 24 24"},
			{Name: "fill", Value: "none"},
			{Name: "stroke", Value: "currentColor"},
			{Name: "stroke-width", Value: "2"},
			{Name: "stroke-linecap", Value: "round"},
			{Name: "stroke-linejoin", Value: "round"},
		},
		Children: []Element{{
			Tag:       "path",
			Namespace: svgNS,
			Attrs:     []Attr{{Name: "d", Value: "M21 15a2 2 0 0 1-2 2H7l-4 4V5a2 2 0 0 1 2-2h14a2 2 0 0 1 2 2z"}},
		}},
	}
}
