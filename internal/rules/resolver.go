package rules

import (
	"context"
	"time"

	"github.com/weblave/weblave/internal/metrics"
)

const (
	// DefaultTypingDelay is the pause before a canned reply.
	DefaultTypingDelay = 500 * time.Millisecond
	// FallbackReply answers unmatched messages when no AI is configured.
	FallbackReply = "I'm sorry, I don't understand that command."
)

// Source says where a reply came from.
type Source string

const (
	SourceRule     Source = "rule"
	SourceAI       Source = "ai"
	SourceFallback Source = "fallback"
)

// Sender produces a generative reply for unmatched messages.
type Sender interface {
	Forward(ctx context.Context, text string) (string, error)
}

// Reply is a resolved answer.
type Reply struct {
	Text   string `json:"text"`
	Source Source `json:"source"`
}

// Resolver answers visitor messages from a table, then AI, then a fallback.
type Resolver struct {
	Table       Table
	Sender      Sender
	AIEnabled   bool
	TypingDelay time.Duration
}

// Resolve answers text. Sender errors are returned unchanged; the caller
// picks the wording shown to the visitor.
func (r *Resolver) Resolve(ctx context.Context, text string) (Reply, error) {
	if rule, ok := r.Table.Match(text); ok {
		if err := r.pause(ctx); err != nil {
			return Reply{}, err
		}
		metrics.RuleResolutions.WithLabelValues(string(SourceRule)).Inc()
		return Reply{Text: rule.Response, Source: SourceRule}, nil
	}

	if r.AIEnabled && r.Sender != nil {
		answer, err := r.Sender.Forward(ctx, text)
		if err != nil {
			return Reply{}, err
		}
		metrics.RuleResolutions.WithLabelValues(string(SourceAI)).Inc()
		return Reply{Text: answer, Source: SourceAI}, nil
	}

	if err := r.pause(ctx); err != nil {
		return Reply{}, err
	}
	metrics.RuleResolutions.WithLabelValues(string(SourceFallback)).Inc()
	return Reply{Text: FallbackReply, Source: SourceFallback}, nil
}

func (r *Resolver) pause(ctx context.Context) error {
	if r.TypingDelay <= 0 {
		return nil
	}
	timer := time.NewTimer(r.TypingDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
