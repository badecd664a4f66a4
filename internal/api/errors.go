package api

import (
	"errors"
	"net/http"
	"swipewrite/internal/chat"
	"swipewrite/internal/llm"
	"swipewrite/internal/page"
)

// writeFailure renders err as an error payload, keeping the display
// message the core produced.
func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	status, kind := classify(err)

	s.log.WarnContext(r.Context(), "Request failed",
		"error", err,
		"status", status,
		"kind", kind,
		"path", r.URL.Path,
		"requestID", RequestIDFrom(r.Context()))

	writeError(w, status, kind, err)
}

func classify(err error) (int, string) {
	if errors.Is(err, chat.ErrEmptyMessage) {
		return http.StatusBadRequest, "invalid_request"
	}

	if fetchErr, ok := page.IsFetchError(err); ok {
		if fetchErr.Kind == page.KindInvalidURL {
			return http.StatusBadRequest, string(fetchErr.Kind)
		}
		if fetchErr.Kind == page.KindTimeout {
			return http.StatusGatewayTimeout, string(fetchErr.Kind)
		}
		return http.StatusBadGateway, string(fetchErr.Kind)
	}

	var llmErr *llm.Error
	if errors.As(err, &llmErr) {
		switch llmErr.Kind {
		case llm.KindRateLimit:
			return http.StatusTooManyRequests, string(llmErr.Kind)
		case llm.KindTimeout:
			return http.StatusGatewayTimeout, string(llmErr.Kind)
		default:
			return http.StatusBadGateway, string(llmErr.Kind)
		}
	}

	return http.StatusInternalServerError, "internal"
}
