package page

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"swipewrite/internal/domain"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

const (
	FetchTimeout    = 5 * time.Second
	MaxContentChars = 5000
	MaxBodyBytes    = 10 << 20

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36"
)

// Mode selects how the text is pulled out of the document.
type Mode string

const (
	// ModeText keeps every visible text node.
	ModeText Mode = "text"
	// ModeReadability narrows the document to its main article first.
	ModeReadability Mode = "readability"
)

type Fetcher struct {
	client *http.Client
	mode   Mode
	log    *slog.Logger
}

func NewFetcher(mode Mode, log *slog.Logger) *Fetcher {
	if mode == "" {
		mode = ModeText
	}

	return &Fetcher{
		client: &http.Client{Timeout: FetchTimeout},
		mode:   mode,
		log:    log,
	}
}

// Extract downloads rawURL and returns its cleaned visible text, truncated to
// MaxContentChars. Every failure is a *FetchError.
func (f *Fetcher) Extract(ctx context.Context, rawURL string) (domain.PageContent, error) {
	raw, pageURL, err := f.fetch(ctx, rawURL)
	if err != nil {
		return domain.PageContent{}, err
	}

	text, err := f.extractText(ctx, raw, pageURL)
	if err != nil {
		return domain.PageContent{}, &FetchError{URL: rawURL, Kind: KindParse, Err: err}
	}

	return domain.PageContent{
		URL:  rawURL,
		Text: Truncate(CleanText(text), MaxContentChars),
	}, nil
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string) ([]byte, *url.URL, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, nil, &FetchError{URL: rawURL, Kind: KindInvalidURL, Err: fmt.Errorf("create request: %w", err)}
	}

	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req) //nolint:gosec // Fetching arbitrary pages is the point.
	if err != nil {
		return nil, nil, &FetchError{URL: rawURL, Kind: transportKind(err), Err: fmt.Errorf("do request: %w", err)}
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			f.log.ErrorContext(ctx, "Failed to close response body",
				"error", err,
				"url", rawURL,
				"operation", "fetch")
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, nil, &FetchError{
			URL:  rawURL,
			Kind: KindStatus,
			Err:  fmt.Errorf("do request: %w", &StatusError{StatusCode: resp.StatusCode}),
		}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes))
	if err != nil {
		kind := KindParse
		if transportKind(err) == KindTimeout {
			kind = KindTimeout
		}

		return nil, nil, &FetchError{URL: rawURL, Kind: kind, Err: fmt.Errorf("read body: %w", err)}
	}

	return raw, resp.Request.URL, nil
}

func (f *Fetcher) extractText(ctx context.Context, raw []byte, pageURL *url.URL) (string, error) {
	if f.mode == ModeReadability {
		article, err := readability.FromReader(bytes.NewReader(raw), pageURL)
		if err == nil && strings.TrimSpace(article.TextContent) != "" {
			return article.TextContent, nil
		}

		f.log.WarnContext(ctx, "Readability failed so visible text will be used",
			"error", err,
			"url", pageURL.String())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("create document from reader: %w", err)
	}

	return VisibleText(doc), nil
}

// IsFetchError reports whether err came from Extract and returns it.
func IsFetchError(err error) (*FetchError, bool) {
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr, true
	}

	return nil, false
}
