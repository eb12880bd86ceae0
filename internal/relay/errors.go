package relay

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/weblave/weblave/internal/llm"
)

// Kind classifies a relay failure.
type Kind string

const (
	KindFileTooLarge      Kind = "file_too_large"
	KindMessageTooLong    Kind = "message_too_long"
	KindBadRequest        Kind = "bad_request"
	KindInvalidCredential Kind = "invalid_credential"
	KindRateLimited       Kind = "rate_limited"
	KindPayloadTooLarge   Kind = "payload_too_large"
	KindUnavailable       Kind = "unavailable"
	KindUnreachable       Kind = "unreachable"
	KindAPI               Kind = "api_error"
	KindNoCandidates      Kind = "no_candidates"
	KindInvalidResponse   Kind = "invalid_response"
	KindCanceled          Kind = "canceled"
)

// Error is a relay failure with a message fit to show the user as-is.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

var (
	errFileTooLarge = &Error{
		Kind:    KindFileTooLarge,
		Message: "PDF file is too large. Maximum size allowed is 20MB.",
	}
	errMessageTooLong = &Error{
		Kind:    KindMessageTooLong,
		Message: "Message is too long. Please try a shorter message or a smaller PDF file.",
	}
)

// classify maps a provider error onto the user-facing taxonomy.
func classify(err error) *Error {
	var apiErr *llm.APIError
	switch {
	case errors.As(err, &apiErr):
		return fromStatus(apiErr, err)
	case errors.Is(err, llm.ErrNoCandidates):
		return &Error{Kind: KindNoCandidates, Message: "No response generated. The API may be experiencing issues.", Err: err}
	case errors.Is(err, llm.ErrEmptyContent):
		return &Error{Kind: KindInvalidResponse, Message: "Invalid response format from Gemini API.", Err: err}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: KindCanceled, Message: "Request failed: " + err.Error(), Err: err}
	default:
		var te *llm.TransportError
		if errors.As(err, &te) {
			return &Error{Kind: KindUnreachable, Message: "Unable to reach the Gemini API. Please check your internet connection.", Err: err}
		}
		return &Error{Kind: KindInvalidResponse, Message: "Invalid response received from Gemini API.", Err: err}
	}
}

func fromStatus(apiErr *llm.APIError, err error) *Error {
	switch code := apiErr.StatusCode; {
	case code == http.StatusBadRequest:
		msg := apiErr.Message
		if msg == "" {
			msg = "Bad request format"
		}
		return &Error{Kind: KindBadRequest, Message: "Invalid request: " + msg, Err: err}
	case code == http.StatusUnauthorized:
		return &Error{Kind: KindInvalidCredential, Message: "Invalid API key. Please check your credentials.", Err: err}
	case code == http.StatusTooManyRequests:
		return &Error{Kind: KindRateLimited, Message: "API rate limit exceeded. Please try again in a few moments.", Err: err}
	case code == http.StatusRequestEntityTooLarge:
		return &Error{Kind: KindPayloadTooLarge, Message: "Content too large for the API. Please try a smaller message or PDF.", Err: err}
	case code >= http.StatusInternalServerError:
		return &Error{Kind: KindUnavailable, Message: "Gemini API service is currently experiencing issues. Please try again later.", Err: err}
	default:
		msg := apiErr.Message
		if msg == "" {
			msg = "Unknown error occurred"
		}
		return &Error{Kind: KindAPI, Message: fmt.Sprintf("API Error (%d): %s", code, msg), Err: err}
	}
}
