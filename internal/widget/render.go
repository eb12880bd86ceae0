package widget

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/weblave/weblave/internal/metrics"
)

// Marker is the first line of every snippet.
const Marker = "<!-- Weblave Chatbot -->"

// payload is the model as the runtime reads it.
type payload struct {
	Elements []Element `json:"elements"`
	CSS      string    `json:"css"`
	Bindings []Binding `json:"bindings"`
	Data     Data      `json:"data"`
}

// Render turns doc into a snippet. The model is inlined as JSON; encoding/json
// escapes <, > and & so user text cannot close the script element.
func Render(doc Document) (string, error) {
	model, err := json.Marshal(payload{
		Elements: doc.Elements,
		CSS:      doc.Styles.CSS(),
		Bindings: doc.Bindings,
		Data:     doc.Data,
	})
	if err != nil {
		return "", fmt.Errorf("encoding widget model: %w", err)
	}

	var b strings.Builder
	b.WriteString(Marker)
	b.WriteString("\n<script>\n(function() {\n  var model = ")
	b.Write(model)
	b.WriteString(";\n")
	b.WriteString(runtime)
	b.WriteString("})();\n</script>\n")
	return b.String(), nil
}

// Generate builds and renders the widget for opts. The same options always
// produce the same bytes.
func Generate(opts Options) (string, error) {
	out, err := Render(Build(opts))
	if err != nil {
		return "", err
	}
	metrics.SnippetsGenerated.Inc()
	return out, nil
}

// runtime never assigns user text through innerHTML.
const runtime = `  var data = model.data;
  var refs = {};

  function build(spec) {
    var el = spec.ns ? document.createElementNS(spec.ns, spec.tag) : document.createElement(spec.tag);
    if (spec.id) el.id = spec.id;
    if (spec['class']) el.setAttribute('class', spec['class']);
    (spec.attrs || []).forEach(function(a) { el.setAttribute(a.name, a.value); });
    if (spec.text) el.textContent = spec.text;
    (spec.children || []).forEach(function(child) { el.appendChild(build(child)); });
    if (spec.ref) refs[spec.ref] = el;
    return el;
  }

  function scrollDown() {
    refs.messages.scrollTop = refs.messages.scrollHeight;
  }

  function addMessage(text, who) {
    var msg = document.createElement('div');
    msg.className = 'weblave-message ' + who;
    msg.textContent = text;
    refs.messages.appendChild(msg);
    scrollDown();
  }

  function showTyping() {
    var typing = document.createElement('div');
    typing.className = 'weblave-typing';
    for (var i = 0; i < 3; i++) {
      var dot = document.createElement('div');
      dot.className = 'weblave-typing-dot';
      typing.appendChild(dot);
    }
    refs.messages.appendChild(typing);
    scrollDown();
    return typing;
  }

  function pause() {
    return new Promise(function(resolve) { setTimeout(resolve, data.typingDelayMs); });
  }

  function match(text) {
    var lower = text.toLowerCase();
    for (var i = 0; i < data.commands.length; i++) {
      var cmd = data.commands[i];
      if (cmd.trigger && lower.indexOf(cmd.trigger.toLowerCase()) !== -1) return cmd;
    }
    return null;
  }

  function resolveReply(text) {
    var cmd = match(text);
    if (cmd) return pause().then(function() { return cmd.response; });
    if (data.endpoint) {
      return fetch(data.endpoint, {
        method: 'POST',
        headers: { 'Content-Type': 'application/json' },
        body: JSON.stringify({ token: data.token, message: text })
      }).then(function(res) {
        if (!res.ok) throw new Error('request failed');
        return res.json();
      }).then(function(body) {
        if (!body || typeof body.reply !== 'string') throw new Error('invalid response');
        return body.reply;
      })['catch'](function() {
        return data.errorReply;
      });
    }
    return pause().then(function() { return data.fallbackReply; });
  }

  var actions = {
    toggle: function() {
      refs.panel.classList.toggle('open');
    },
    submit: function() {
      var text = refs.input.value.trim();
      if (!text) return;
      refs.input.value = '';
      addMessage(text, 'user');
      var typing = showTyping();
      resolveReply(text).then(function(reply) {
        if (typing.parentNode) typing.parentNode.removeChild(typing);
        addMessage(reply, 'bot');
      });
    }
  };

  function mount() {
    var style = document.createElement('style');
    style.textContent = model.css;
    document.head.appendChild(style);
    model.elements.forEach(function(spec) { document.body.appendChild(build(spec)); });
    model.bindings.forEach(function(b) {
      refs[b.target].addEventListener(b.event, function(e) {
        if (b.key && e.key !== b.key) return;
        actions[b.action](e);
      });
    });
  }

  if (document.readyState === 'loading') {
    document.addEventListener('DOMContentLoaded', mount);
  } else {
    mount();
  }
`
