package api

import (
	"context"
	"log/slog"
	"net/http"
	"swipewrite/internal/domain"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	maxJSONBytes    = 1 << 20
	maxImageBytes   = 20 << 20
)

type Extractor interface {
	Extract(ctx context.Context, url string) (domain.PageContent, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

type Chatter interface {
	Chat(ctx context.Context, message string) (string, error)
	Analyze(ctx context.Context, message string, image *domain.Image) (domain.Reply, error)
}

type Server struct {
	extractor  Extractor
	summarizer Summarizer
	chat       Chatter
	log        *slog.Logger
}

func NewServer(extractor Extractor, summarizer Summarizer, chat Chatter, log *slog.Logger) *Server {
	return &Server{
		extractor:  extractor,
		summarizer: summarizer,
		chat:       chat,
		log:        log,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.health)
	r.Post("/chat", s.handleChat)
	r.Post("/analyze", s.handleAnalyze)
	r.Post("/extract", s.handleExtract)
	r.Post("/summarize", s.handleSummarize)

	return r
}

type requestIDKey struct{}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

// RequestIDFrom returns the id assigned to the request carried by ctx.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		if r.Method == http.MethodGet && r.URL.Path == "/health" {
			return
		}

		s.log.InfoContext(r.Context(), "Request is handled",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"durationMs", time.Since(start).Milliseconds(),
			"requestID", RequestIDFrom(r.Context()))
	})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
