package web

// layoutTemplate wraps every page: navigation, flash notice and the auth
// dialog. Pages define "content".
const layoutTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}} | Weblave</title>
  <link rel="stylesheet" href="/static/weblave.css">
</head>
<body>
  <nav class="nav">
    <div class="nav-links">
      <a href="/" class="brand">Weblave</a>
      <a href="/">Home</a>
      <a href="/direct-chat">Direct Chat</a>
      <a href="/chatbot-generator">Chatbot Generator</a>
    </div>
    <div class="nav-profile">
      {{if .User}}
        <span class="avatar">{{initial .User.DisplayName}}</span>
        <span class="profile-text"><strong>{{.User.DisplayName}}</strong> {{.User.Email}}</span>
        <form method="post" action="/auth/signout">
          <input type="hidden" name="return" value="{{.Return}}">
          <button type="submit" class="link-button">Sign out</button>
        </form>
      {{else}}
        <a href="{{.Path}}{{.Modals.Open "login"}}" class="button ghost">Log in</a>
        <a href="{{.Path}}{{.Modals.Open "signup"}}" class="button">Sign up</a>
      {{end}}
    </div>
  </nav>

  {{if .Notice}}<div class="notice">{{.Notice}}</div>{{end}}

  <main class="page">
    {{template "content" .}}
  </main>

  {{if .Modals.Auth}}
  <div class="overlay">
    <div class="modal narrow">
      <div class="modal-header">
        <h2>{{if eq .Modals.Auth "login"}}Log In{{else}}Sign Up{{end}}</h2>
        <a href="{{.Path}}{{.Modals.Close "auth"}}" class="close" aria-label="Close">&times;</a>
      </div>
      <form method="post" action="/auth/{{.Modals.Auth}}" class="stack">
        <input type="hidden" name="return" value="{{.Return}}">
        {{if eq .Modals.Auth "signup"}}
        <label>Name
          <input type="text" name="name" required>
        </label>
        {{end}}
        <label>Email
          <input type="email" name="email" required>
        </label>
        <label>Password
          <input type="password" name="password" required>
        </label>
        {{if .AuthError}}<p class="error">{{.AuthError}}</p>{{end}}
        <button type="submit" class="button wide">{{if eq .Modals.Auth "login"}}Log In{{else}}Sign Up{{end}}</button>
      </form>
    </div>
  </div>
  {{end}}
  <script src="/static/weblave.js"></script>
</body>
</html>
`

const landingTemplate = `{{define "content"}}
<section class="hero">
  <h1><span>Transform your</span> <span class="accent">conversations with AI</span></h1>
  <p>Weblave brings you powerful AI tools to enhance your communication and automate your workflows. Start with direct chat or create your own custom chatbot.</p>
  <div class="actions">
    <a href="/direct-chat" class="button">Direct Chat</a>
    <a href="/chatbot-generator" class="button ghost">Chatbot Generator</a>
  </div>
</section>
<section class="features">
  <h2>Features</h2>
  <p class="lead">AI-powered solutions for everyone</p>
  <div class="grid">
    <div class="card">
      <h3>Direct Chat</h3>
      <p>Engage in real-time conversations with our advanced AI. Upload documents and get instant analysis and responses.</p>
    </div>
    <div class="card">
      <h3>Chatbot Generator</h3>
      <p>Create custom chatbots tailored to your needs. Train them with your data and deploy them anywhere.</p>
    </div>
  </div>
</section>
{{end}}`

const chatTemplate = `{{define "content"}}
<div class="chat">
  <div class="chat-header">
    <h1>Weblave - Direct Command</h1>
    <div class="actions">
      <form method="post" action="/direct-chat/chatbot">
        <button type="submit" class="button ghost"{{if not .Chat.Messages}} disabled{{end}}>Create Chatbot from Chat</button>
      </form>
      <form method="post" action="/direct-chat/clear">
        <button type="submit" class="button ghost">Clear</button>
      </form>
    </div>
  </div>

  <div class="messages" id="messages">
    {{range .Chat.Messages}}
      <div class="message {{if isUser .Role}}user{{else}}assistant{{end}}">
        <div class="bubble">{{if isUser .Role}}{{.Content}}{{else}}{{markdown .Content}}{{end}}</div>
      </div>
    {{else}}
      <p class="empty">Ask anything, or attach a PDF to ask about it.</p>
    {{end}}
    {{if .Chat.Loading}}<div class="message assistant"><div class="bubble typing">Thinking...</div></div>{{end}}
  </div>

  {{if .Chat.LastError}}<p class="error">{{.Chat.LastError}}</p>{{end}}
  {{if .FormError}}<p class="error">{{.FormError}}</p>{{end}}

  {{with .Chat.Document}}
  <div class="attachment">
    <span>{{.Name}}</span>
    <form method="post" action="/direct-chat/document/remove">
      <button type="submit" class="link-button" aria-label="Remove document">&times;</button>
    </form>
  </div>
  {{end}}

  <form method="post" action="/direct-chat/messages" class="composer">
    <input type="text" name="message" placeholder="Type your message..." required autocomplete="off">
    <button type="submit" class="button">Send</button>
  </form>
  {{if not .Chat.Document}}
  <form method="post" action="/direct-chat/document" enctype="multipart/form-data" class="upload">
    <input type="file" name="file" accept="{{.Accept}}" required>
    <button type="submit" class="button ghost">Attach PDF</button>
  </form>
  {{end}}
</div>
{{end}}`

const generatorTemplate = `{{define "content"}}
<div class="generator">
  <div class="chat-header">
    <h1>Chatbot Generator</h1>
    <a href="{{.Path}}{{.Modals.Open "create"}}" class="button">Create New Chatbot</a>
  </div>
  {{if .Draft.Name}}<p class="lead">Current draft: <strong>{{.Draft.Name}}</strong>, {{len .Draft.Commands}} command(s).</p>{{end}}
</div>

{{if .Modals.Create}}
<div class="overlay">
  <div class="modal">
    <div class="modal-header">
      <h2>Create New Chatbot</h2>
      <a href="{{.Path}}{{.Modals.Close "create"}}" class="close" aria-label="Close">&times;</a>
    </div>

    <form method="post" action="/chatbot-generator/details{{.Modals.Query}}" class="stack">
      <label>Name
        <input type="text" name="name" value="{{.Draft.Name}}" placeholder="My Chatbot">
      </label>
      <label>Welcome Message
        <input type="text" name="welcome_message" value="{{.Draft.WelcomeMessage}}" placeholder="Hello! How can I help you today?">
      </label>
      <label class="inline">
        <input type="checkbox" name="use_ai" value="1"{{if .Draft.UseAI}} checked{{end}}>
        Enable AI responses (Gemini API)
      </label>
      <label>API Key
        <input type="password" name="api_key" placeholder="Your Gemini API Key"{{if .Draft.APIKey}} data-set="1"{{end}}>
      </label>
      <button type="submit" class="button ghost">Save</button>
    </form>

    <h3>Commands</h3>
    <div class="stack">
      {{range $i, $cmd := .Draft.Commands}}
      <div class="command">
        <div>
          <p><strong>Trigger:</strong> {{$cmd.Trigger}}</p>
          <p class="muted">Response: {{$cmd.Response}}</p>
        </div>
        <form method="post" action="/chatbot-generator/commands/{{$i}}/delete{{$.Modals.Query}}">
          <button type="submit" class="link-button danger">Remove</button>
        </form>
      </div>
      {{end}}
      <form method="post" action="/chatbot-generator/commands{{.Modals.Query}}" class="stack">
        <input type="text" name="trigger" placeholder="Command trigger (e.g., 'pricing')" required>
        <textarea name="response" rows="3" placeholder="Response" required></textarea>
        <button type="submit" class="button ghost wide">Add Command</button>
      </form>
      {{if .FormError}}<p class="error">{{.FormError}}</p>{{end}}
    </div>

    <div class="actions end">
      <a href="{{.Path}}{{.Modals.Open "preview"}}" class="button ghost">Preview Chatbot</a>
      <a href="{{.Path}}{{.Modals.Open "code"}}" class="button">View Code</a>
    </div>
  </div>
</div>
{{end}}

{{if .Modals.Preview}}
<div class="overlay">
  <div class="modal preview">
    <div class="modal-header accent">
      <h2>{{.Draft.Name}} - Preview Mode</h2>
      <a href="{{.Path}}{{.Modals.Close "preview"}}" class="close" aria-label="Close">&times;</a>
    </div>
    <div class="messages">
      {{range .Preview}}
      <div class="message {{if .User}}user{{else}}assistant{{end}}"><div class="bubble">{{.Content}}</div></div>
      {{end}}
    </div>
    <form method="post" action="/chatbot-generator/preview{{.Modals.Query}}" class="composer">
      <input type="text" name="message" placeholder="Type a message..." required autocomplete="off">
      <button type="submit" class="button">Send</button>
    </form>
  </div>
</div>
{{end}}

{{if .Modals.Code}}
<div class="overlay">
  <div class="modal wide">
    <div class="modal-header">
      <h2>Embed Code</h2>
      <div class="actions">
        <button type="button" class="button" data-copy="snippet">Copy Code</button>
        <a href="{{.Path}}{{.Modals.Close "code"}}" class="close" aria-label="Close">&times;</a>
      </div>
    </div>
    {{if .SnippetError}}<p class="error">{{.SnippetError}}</p>{{end}}
    <pre class="code" id="snippet">{{.Snippet}}</pre>
  </div>
</div>
{{end}}
{{end}}`

// cssContent styles every page.
const cssContent = `:root {
  --dark: #0B2E33;
  --medium: #4F7C82;
  --light: #93B1B5;
  --lightest: #B8E3E9;
  --accent: #2563eb;
  --danger: #dc2626;
}
* { box-sizing: border-box; }
body { margin: 0; font-family: system-ui, -apple-system, sans-serif; background: #f4fbfc; color: #111827; }
a { color: inherit; }
.nav { position: sticky; top: 0; display: flex; justify-content: space-between; align-items: center; padding: 0 24px; height: 64px; background: var(--dark); color: white; z-index: 10; }
.nav-links, .nav-profile { display: flex; align-items: center; gap: 20px; }
.nav a { text-decoration: none; font-size: 14px; }
.brand { font-weight: 800; font-size: 20px !important; }
.avatar { width: 32px; height: 32px; border-radius: 50%; background: var(--medium); display: inline-flex; align-items: center; justify-content: center; font-weight: 700; }
.profile-text { font-size: 13px; }
.page { max-width: 1100px; margin: 0 auto; padding: 32px 24px; }
.notice { background: var(--lightest); color: var(--dark); padding: 12px 24px; text-align: center; }
.button { display: inline-block; padding: 8px 16px; border-radius: 8px; border: none; background: var(--accent); color: white; cursor: pointer; text-decoration: none; font-size: 14px; }
.button.ghost { background: #f3f4f6; color: #374151; }
.button.wide { width: 100%; }
.button[disabled] { opacity: .5; cursor: not-allowed; }
.link-button { background: none; border: none; color: inherit; cursor: pointer; font-size: 14px; }
.link-button.danger { color: var(--danger); }
.hero { text-align: center; padding: 64px 0; }
.hero h1 { font-size: 48px; margin: 0; }
.hero h1 span { display: block; }
.hero .accent, .accent { color: var(--medium); }
.hero p { max-width: 640px; margin: 20px auto; color: #6b7280; font-size: 18px; }
.actions { display: flex; gap: 12px; align-items: center; }
.hero .actions { justify-content: center; }
.actions.end { justify-content: flex-end; margin-top: 24px; }
.features { text-align: center; }
.features h2 { text-transform: uppercase; font-size: 14px; color: var(--dark); letter-spacing: .05em; }
.lead { font-size: 20px; font-weight: 700; }
.grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(280px, 1fr)); gap: 24px; margin-top: 32px; text-align: left; }
.card { background: white; border-radius: 12px; padding: 24px; box-shadow: 0 1px 3px rgba(0,0,0,.1); }
.chat, .generator { background: white; border-radius: 12px; padding: 24px; box-shadow: 0 1px 3px rgba(0,0,0,.1); }
.chat-header { display: flex; justify-content: space-between; align-items: center; margin-bottom: 16px; }
.chat-header h1 { font-size: 24px; margin: 0; }
.messages { min-height: 320px; max-height: 60vh; overflow-y: auto; padding: 16px; background: #f9fafb; border-radius: 8px; }
.message { display: flex; margin-bottom: 12px; }
.message.user { justify-content: flex-end; }
.bubble { max-width: 80%; padding: 10px 14px; border-radius: 12px; background: #f3f4f6; line-height: 1.5; overflow-wrap: anywhere; }
.message.user .bubble { background: var(--accent); color: white; white-space: pre-wrap; }
.bubble pre { overflow-x: auto; padding: 8px; border-radius: 6px; }
.typing { color: #6b7280; font-style: italic; }
.empty { color: #9ca3af; text-align: center; margin-top: 120px; }
.error { color: var(--danger); font-size: 14px; }
.muted { color: #6b7280; }
.attachment { display: inline-flex; gap: 8px; align-items: center; margin-top: 12px; padding: 6px 12px; border-radius: 8px; background: var(--lightest); }
.composer { display: flex; gap: 8px; margin-top: 16px; }
.composer input { flex: 1; }
.upload { display: flex; gap: 8px; margin-top: 8px; align-items: center; }
input[type=text], input[type=email], input[type=password], textarea { width: 100%; padding: 8px; border: 1px solid #d1d5db; border-radius: 6px; font: inherit; }
label { display: block; font-size: 14px; font-weight: 700; color: #374151; }
label.inline { display: flex; gap: 8px; align-items: center; font-weight: 400; }
.stack > * + * { margin-top: 12px; }
.overlay { position: fixed; inset: 0; background: rgba(0,0,0,.5); display: flex; align-items: center; justify-content: center; z-index: 20; }
.modal { background: white; border-radius: 12px; padding: 32px; width: 100%; max-width: 640px; max-height: 90vh; overflow-y: auto; }
.modal.narrow { max-width: 420px; }
.modal.wide { max-width: 900px; }
.modal.preview { padding: 0; display: flex; flex-direction: column; height: 600px; }
.modal.preview .messages { flex: 1; max-height: none; border-radius: 0; }
.modal.preview .composer { padding: 16px; margin: 0; }
.modal-header { display: flex; justify-content: space-between; align-items: center; margin-bottom: 16px; }
.modal-header h2 { margin: 0; font-size: 22px; }
.modal-header.accent { background: var(--accent); color: white; padding: 16px; margin: 0; border-radius: 12px 12px 0 0; }
.close { font-size: 28px; text-decoration: none; line-height: 1; }
.command { display: flex; justify-content: space-between; align-items: center; padding: 8px; background: #f9fafb; border-radius: 6px; }
.command p { margin: 2px 0; }
.code { background: #111827; color: #d1d5db; padding: 16px; border-radius: 8px; font-size: 13px; white-space: pre-wrap; overflow-x: auto; }
`

// jsContent keeps the transcript scrolled and wires the copy button.
const jsContent = `(function() {
  document.querySelectorAll('.messages').forEach(function(el) {
    el.scrollTop = el.scrollHeight;
  });
  document.querySelectorAll('[data-copy]').forEach(function(btn) {
    btn.addEventListener('click', function() {
      var target = document.getElementById(btn.getAttribute('data-copy'));
      if (!target || !navigator.clipboard) return;
      navigator.clipboard.writeText(target.textContent).then(function() {
        btn.textContent = 'Copied!';
        setTimeout(function() { btn.textContent = 'Copy Code'; }, 2000);
      });
    });
  });
})();
`
