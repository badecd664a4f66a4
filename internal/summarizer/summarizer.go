package summarizer

import (
	"context"
	"log/slog"
	"strings"
	"swipewrite/internal/llm"
)

const systemPrompt = "Summarize the following website content in 5 bullet points with key insights or tips."

// Error is returned by Summarize when the remote capability fails.
type Error struct {
	Err error
}

func (e *Error) Error() string {
	return "Summary unavailable. Error: " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Summarizer turns page text into five bullet points.
type Summarizer struct {
	provider llm.Provider
	log      *slog.Logger
}

func New(provider llm.Provider, log *slog.Logger) *Summarizer {
	return &Summarizer{
		provider: provider,
		log:      log,
	}
}

// Summarize returns the model output verbatim apart from surrounding whitespace.
// The input length is not checked here.
func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	summary, err := s.provider.Complete(ctx, llm.Request{
		System: systemPrompt,
		Prompt: text,
	})
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to summarize text",
			"error", err,
			"textLen", len(text))

		return "", &Error{Err: err}
	}

	return strings.TrimSpace(summary), nil
}
