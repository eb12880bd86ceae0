// Package relay sends a user's prompt, optionally with an attached PDF, to
// the configured generative-language provider and returns the reply text.
package relay

import (
	"context"
	"encoding/base64"
	"strings"
	"unicode/utf16"

	"github.com/rs/zerolog"

	"github.com/weblave/weblave/internal/llm"
	"github.com/weblave/weblave/internal/metrics"
)

const (
	// MaxDocumentSize is the largest attachment accepted, in bytes.
	MaxDocumentSize = 20 * 1024 * 1024
	// MaxEncodedLength caps the base64 document text placed in a prompt.
	MaxEncodedLength = 25000
	// MaxContentLength caps the assembled prompt.
	MaxContentLength = 30000

	DefaultInstruction = "Provide concise, direct responses. Keep answers brief and to the point."
	SummaryInstruction = "Provide a 2-3 line summary of the document's main contents. Focus only on key information and main topics. Ignore formatting, styling, and document structure."
)

// Generation holds the fixed sampling parameters of every relay call.
var Generation = llm.GenerationConfig{
	Temperature:     0.7,
	MaxOutputTokens: 150,
	TopP:            0.8,
	TopK:            40,
}

// Document is a file attached to a prompt.
type Document struct {
	Name        string
	ContentType string
	Data        []byte
}

// Relay forwards prompts to a single provider.
type Relay struct {
	provider llm.Provider
	logger   zerolog.Logger
	gen      llm.GenerationConfig
}

// New creates a Relay over provider using the Generation parameters.
func New(provider llm.Provider, logger zerolog.Logger) *Relay {
	return &Relay{provider: provider, logger: logger, gen: Generation}
}

// WithGeneration overrides the sampling parameters.
func (r *Relay) WithGeneration(g llm.GenerationConfig) *Relay {
	r.gen = g
	return r
}

// Send builds the instructed prompt for userText and doc and returns the
// provider's reply. Failures are always *Error.
func (r *Relay) Send(ctx context.Context, userText string, doc *Document) (string, error) {
	if doc != nil && len(doc.Data) > MaxDocumentSize {
		return "", r.fail(errFileTooLarge)
	}

	var encoded string
	if doc != nil {
		encoded = r.encode(doc)
	}

	prompt := BuildPrompt(userText, encoded, doc != nil)
	gen := r.gen
	return r.complete(ctx, prompt, &gen)
}

// Forward sends userText as-is, with the same ceilings and error taxonomy as
// Send. No generation parameters are sent, so the provider's defaults apply
// as they do for a widget's own request.
func (r *Relay) Forward(ctx context.Context, userText string) (string, error) {
	return r.complete(ctx, userText, nil)
}

// ContentLength measures s in UTF-16 code units, the unit the content
// ceilings are expressed in.
func ContentLength(s string) int {
	n := 0
	for _, c := range s {
		n += utf16.RuneLen(c)
	}
	return n
}

// BuildPrompt assembles the instruction, the user's query and, when attached,
// the encoded document.
func BuildPrompt(userText, encoded string, attached bool) string {
	instruction := DefaultInstruction
	if attached {
		lower := strings.ToLower(userText)
		if strings.Contains(lower, "summarize") || strings.Contains(lower, "summary") {
			instruction = SummaryInstruction
		}
	}

	var b strings.Builder
	b.WriteString(instruction)
	b.WriteString("\n\nUser Query: ")
	b.WriteString(userText)
	if attached {
		b.WriteString("\n\nPDF Content: ")
		b.WriteString(encoded)
	}
	return b.String()
}

// encode returns the document as base64, cut to MaxEncodedLength.
func (r *Relay) encode(doc *Document) string {
	encoded := base64.StdEncoding.EncodeToString(doc.Data)
	if len(encoded) > MaxEncodedLength {
		r.logger.Warn().
			Str("document", doc.Name).
			Int("encoded_length", len(encoded)).
			Int("kept", MaxEncodedLength).
			Msg("document content truncated")
		metrics.DocumentTruncations.Inc()
		encoded = encoded[:MaxEncodedLength]
	}
	return encoded
}

func (r *Relay) complete(ctx context.Context, prompt string, gen *llm.GenerationConfig) (string, error) {
	if ContentLength(prompt) > MaxContentLength {
		return "", r.fail(errMessageTooLong)
	}

	resp, err := r.provider.Complete(ctx, llm.CompletionRequest{
		Messages:   []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		Generation: gen,
	})
	if err != nil {
		rerr := classify(err)
		r.logger.Error().
			Str("provider", r.provider.Name()).
			Str("kind", string(rerr.Kind)).
			Err(err).
			Msg("relay request failed")
		return "", r.fail(rerr)
	}

	metrics.RelayRequests.WithLabelValues("ok").Inc()
	return resp.Content, nil
}

func (r *Relay) fail(e *Error) error {
	metrics.RelayRequests.WithLabelValues(string(e.Kind)).Inc()
	return e
}
