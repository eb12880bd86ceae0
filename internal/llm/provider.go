package llm

import (
	"context"
	"errors"
	"fmt"
)

// Provider defines the interface for LLM providers.
type Provider interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	// Name returns the name of this provider.
	Name() string
}

var (
	// ErrNoCandidates is returned when the provider answered 200 but produced
	// no candidates.
	ErrNoCandidates = errors.New("no candidates in response")
	// ErrEmptyContent is returned when the first candidate carries no text part.
	ErrEmptyContent = errors.New("first candidate has no text part")
)

// APIError is a non-2xx answer from the provider.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("provider returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("provider returned status %d: %s", e.StatusCode, e.Message)
}

// TransportError means the request never produced a response.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "provider unreachable: " + e.Err.Error() }

func (e *TransportError) Unwrap() error { return e.Err }
