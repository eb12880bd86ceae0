package widget

import "strings"

func d(property, value string) Declaration {
	return Declaration{Property: property, Value: value}
}

func defaultStyles() Stylesheet {
	return Stylesheet{
		Rules: []StyleRule{
			{"#weblave-chatbot", []Declaration{
				d("position", "fixed"), d("bottom", "20px"), d("right", "20px"),
				d("z-index", "1000"), d("font-family", "system-ui, -apple-system, sans-serif"),
			}},
			{".weblave-chatbot-button", []Declaration{
				d("background", "#2563eb"), d("color", "white"), d("border", "none"),
				d("border-radius", "50%"), d("width", "56px"), d("height", "56px"),
				d("cursor", "pointer"), d("box-shadow", "0 2px 8px rgba(0,0,0,0.15)"),
				d("display", "flex"), d("align-items", "center"), d("justify-content", "center"),
				d("transition", "transform 0.2s"),
			}},
			{".weblave-chatbot-button:hover", []Declaration{d("transform", "scale(1.05)")}},
			{".weblave-chat-window", []Declaration{
				d("position", "fixed"), d("bottom", "80px"), d("right", "20px"),
				d("width", "350px"), d("height", "500px"), d("background", "white"),
				d("border-radius", "12px"), d("box-shadow", "0 4px 12px rgba(0,0,0,0.15)"),
				d("display", "none"), d("flex-direction", "column"),
				d("transition", "opacity 0.3s, transform 0.3s"),
			}},
			{".weblave-chat-window.open", []Declaration{
				d("display", "flex"), d("animation", "weblave-slide-in 0.3s ease-out"),
			}},
			{".weblave-chat-header", []Declaration{
				d("padding", "16px"), d("background", "#2563eb"), d("color", "white"),
				d("border-radius", "12px 12px 0 0"), d("font-weight", "600"),
			}},
			{".weblave-chat-header h3", []Declaration{d("margin", "0"), d("font-size", "16px")}},
			{".weblave-chat-messages", []Declaration{
				d("flex", "1"), d("overflow-y", "auto"), d("padding", "16px"),
				d("scroll-behavior", "smooth"),
			}},
			{".weblave-chat-input", []Declaration{d("padding", "16px"), d("border-top", "1px solid #e5e7eb")}},
			{".weblave-chat-input input", []Declaration{
				d("width", "100%"), d("box-sizing", "border-box"), d("padding", "8px 12px"),
				d("border", "1px solid #e5e7eb"), d("border-radius", "6px"),
				d("transition", "border-color 0.2s"),
			}},
			{".weblave-chat-input input:focus", []Declaration{
				d("outline", "none"), d("border-color", "#2563eb"),
				d("box-shadow", "0 0 0 2px rgba(37, 99, 235, 0.1)"),
			}},
			{".weblave-message", []Declaration{
				d("margin-bottom", "12px"), d("max-width", "80%"), d("width", "fit-content"),
				d("white-space", "pre-wrap"), d("word-wrap", "break-word"),
				d("animation", "weblave-message-in 0.3s ease-out"),
			}},
			{".weblave-message.bot", []Declaration{
				d("margin-right", "auto"), d("background", "#f3f4f6"), d("padding", "10px 14px"),
				d("border-radius", "14px"), d("color", "#1f2937"),
			}},
			{".weblave-message.user", []Declaration{
				d("margin-left", "auto"), d("background", "#2563eb"), d("color", "white"),
				d("padding", "10px 14px"), d("border-radius", "14px"),
			}},
			{".weblave-typing", []Declaration{
				d("display", "flex"), d("gap", "4px"), d("padding", "8px 12px"),
				d("background", "#f3f4f6"), d("border-radius", "12px"),
				d("width", "fit-content"), d("margin-bottom", "12px"),
			}},
			{".weblave-typing-dot", []Declaration{
				d("width", "6px"), d("height", "6px"), d("background", "#6b7280"),
				d("border-radius", "50%"), d("animation", "weblave-typing 1.4s infinite"),
			}},
			{".weblave-typing-dot:nth-child(2)", []Declaration{d("animation-delay", "0.2s")}},
			{".weblave-typing-dot:nth-child(3)", []Declaration{d("animation-delay", "0.4s")}},
		},
		Keyframes: []Keyframes{
			{"weblave-slide-in", []StyleRule{
				{"from", []Declaration{d("opacity", "0"), d("transform", "translateY(20px)")}},
				{"to", []Declaration{d("opacity", "1"), d("transform", "translateY(0)")}},
			}},
			{"weblave-message-in", []StyleRule{
				{"from", []Declaration{d("opacity", "0"), d("transform", "translateY(10px)")}},
				{"to", []Declaration{d("opacity", "1"), d("transform", "translateY(0)")}},
			}},
			{"weblave-typing", []StyleRule{
				{"0%, 60%, 100%", []Declaration{d("transform", "translateY(0)")}},
				{"30%", []Declaration{d("transform", "translateY(-4px)")}},
			}},
		},
	}
}

// CSS renders the stylesheet.
func (s Stylesheet) CSS() string {
	var b strings.Builder
	for _, r := range s.Rules {
		writeRule(&b, r, "")
	}
	for _, k := range s.Keyframes {
		b.WriteString("@keyframes ")
		b.WriteString(k.Name)
		b.WriteString(" {\n")
		for _, f := range k.Frames {
			writeRule(&b, f, "  ")
		}
		b.WriteString("}\n")
	}
	return b.String()
}

func writeRule(b *strings.Builder, r StyleRule, indent string) {
	b.WriteString(indent)
	b.WriteString(r.Selector)
	b.WriteString(" {\n")
	for _, decl := range r.Declarations {
		b.WriteString(indent)
		b.WriteString("  ")
		b.WriteString(decl.Property)
		b.WriteString(": ")
		b.WriteString(decl.Value)
		b.WriteString(";\n")
	}
	b.WriteString(indent)
	b.WriteString("}\n")
}
