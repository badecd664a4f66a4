package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/openai/openai-go/v3"
	"google.golang.org/genai"
)

// Kind classifies a failed call to the remote capability.
type Kind string

const (
	KindAuth       Kind = "auth"
	KindRateLimit  Kind = "rate_limit"
	KindBadRequest Kind = "bad_request"
	KindServer     Kind = "server"
	KindTimeout    Kind = "timeout"
	KindConnection Kind = "connection"
	KindEmpty      Kind = "empty_response"
	KindUnknown    Kind = "unknown"
)

type ErrUnsupportedProvider struct {
	Provider string
}

func (e ErrUnsupportedProvider) Error() string {
	return fmt.Sprintf("unsupported LLM provider: %s", e.Provider)
}

type ErrMissingAPIKey struct {
	Provider string
}

func (e ErrMissingAPIKey) Error() string {
	return fmt.Sprintf("missing API key for %s provider", e.Provider)
}

// Error is returned by every Provider for every failure.
type Error struct {
	Provider string
	Kind     Kind
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func emptyResponse(provider string) *Error {
	return &Error{Provider: provider, Kind: KindEmpty, Err: errors.New("response had no content")}
}

func classify(provider string, err error) *Error {
	return &Error{Provider: provider, Kind: kindOf(err), Err: err}
}

func kindOf(err error) Kind {
	if status := statusCodeOf(err); status != 0 {
		return kindOfStatus(status)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return KindTimeout
		}
		return KindConnection
	}

	return KindUnknown
}

func statusCodeOf(err error) int {
	var openaiErr *openai.Error
	if errors.As(err, &openaiErr) {
		return openaiErr.StatusCode
	}

	var anthropicErr *anthropic.Error
	if errors.As(err, &anthropicErr) {
		return anthropicErr.StatusCode
	}

	var geminiErr genai.APIError
	if errors.As(err, &geminiErr) {
		return geminiErr.Code
	}

	var geminiErrPtr *genai.APIError
	if errors.As(err, &geminiErrPtr) {
		return geminiErrPtr.Code
	}

	return 0
}

func kindOfStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuth
	case status == http.StatusTooManyRequests:
		return KindRateLimit
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return KindTimeout
	case status >= http.StatusInternalServerError:
		return KindServer
	case status >= http.StatusBadRequest:
		return KindBadRequest
	default:
		return KindUnknown
	}
}
