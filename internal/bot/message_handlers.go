package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"swipewrite/internal/domain"
	"swipewrite/internal/markdown"
	"swipewrite/internal/page"
	"unicode/utf8"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"mvdan.cc/xurls/v2"
)

const (
	// Escaping at most doubles the text, which keeps it under the 4096 limit.
	maxReplyChars = 2000
	maxURLChars   = 200
	maxPhotoBytes = 20 << 20

	startText = `Hi\! I help you swipe and write better on dating apps\. ✨

Send me a message and I will suggest a reply\.
Send a photo with a caption and I will give feedback on it\.
Send a link or use /summarize and I will summarize the page\.`

	summarizeUsageText = `Usage: /summarize https://example\.com`

	defaultPhotoCaption = "Rate my photo."
)

//nolint:gochecknoglobals // Compiled once.
var httpsURL = func() func(string) string {
	re, err := xurls.StrictMatchingScheme("https://")
	if err != nil {
		re = xurls.Strict()
	}

	return func(text string) string {
		for _, match := range re.FindAllString(text, -1) {
			if strings.HasPrefix(strings.ToLower(match), "https://") {
				return match
			}
		}
		return ""
	}
}()

func (b *Bot) handleMessage(ctx context.Context, message *models.Message) error {
	chatID := message.Chat.ID

	return b.withSpinner(ctx, chatID, func() error {
		if len(message.Photo) > 0 {
			return b.handlePhoto(ctx, chatID, message.Photo, message.Caption)
		}

		text := strings.TrimSpace(message.Text)

		switch command, args := splitCommand(text); command {
		case "":
		case "/start":
			return b.sendMessage(ctx, chatID, startText)
		case "/summarize":
			url := httpsURL(args)
			if url == "" {
				return b.sendMessage(ctx, chatID, summarizeUsageText)
			}
			return b.handleURL(ctx, chatID, url)
		}

		if text == "" {
			return nil
		}

		if url := httpsURL(text); url != "" {
			return b.handleURL(ctx, chatID, url)
		}

		return b.handleChat(ctx, chatID, text)
	})
}

func (b *Bot) handleChat(ctx context.Context, chatID int64, text string) error {
	reply, err := b.chat.Chat(ctx, text)
	if err != nil {
		return b.sendFailure(ctx, chatID, "chat", err)
	}

	return b.sendMessage(ctx, chatID, markdown.EscapeV2(page.Truncate(reply, maxReplyChars)))
}

func (b *Bot) handleURL(ctx context.Context, chatID int64, url string) error {
	content, err := b.extractor.Extract(ctx, url)
	if err != nil {
		return b.sendFailure(ctx, chatID, "extract", err)
	}

	summary, err := b.summarizer.Summarize(ctx, content.Text)
	if err != nil {
		return b.sendFailure(ctx, chatID, "summarize", err)
	}

	title := "Summary of " + page.Truncate(content.URL, maxURLChars)
	body := page.Truncate(summary, maxReplyChars-utf8.RuneCountInString(title))

	text := markdown.Bold(markdown.EscapeV2(title)) + "\n\n" + markdown.EscapeV2(body)

	return b.sendMessage(ctx, chatID, text)
}

func (b *Bot) handlePhoto(
	ctx context.Context,
	chatID int64,
	photos []models.PhotoSize,
	caption string,
) error {
	image, err := b.downloadPhoto(ctx, largestPhoto(photos))
	if err != nil {
		return b.sendFailure(ctx, chatID, "download photo", err)
	}

	caption = strings.TrimSpace(caption)
	if caption == "" {
		caption = defaultPhotoCaption
	}

	reply, err := b.chat.Analyze(ctx, caption, image)
	if err != nil {
		return b.sendFailure(ctx, chatID, "analyze", err)
	}

	return b.sendMessage(ctx, chatID, markdown.EscapeV2(page.Truncate(reply.Text, maxReplyChars)))
}

func (b *Bot) downloadPhoto(ctx context.Context, photo models.PhotoSize) (*domain.Image, error) {
	file, err := b.api.GetFile(ctx, &bot.GetFileParams{FileID: photo.FileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.api.FileDownloadLink(file), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			b.log.ErrorContext(ctx, "Failed to close response body",
				"error", err,
				"fileID", photo.FileID,
				"operation", "download_photo")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("do request: %w", &page.StatusError{StatusCode: resp.StatusCode})
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPhotoBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &domain.Image{
		Data:      data,
		MediaType: http.DetectContentType(data),
	}, nil
}

// sendFailure shows cause to the user and returns it wrapped with op so the
// update handler logs it.
func (b *Bot) sendFailure(ctx context.Context, chatID int64, op string, cause error) error {
	text := "✖️ " + markdown.EscapeV2(page.Truncate(cause.Error(), maxReplyChars))

	err := fmt.Errorf("%s: %w", op, cause)
	if sendErr := b.sendMessage(ctx, chatID, text); sendErr != nil {
		return errors.Join(err, fmt.Errorf("send message: %w", sendErr))
	}

	return err
}

func splitCommand(text string) (string, string) {
	if !strings.HasPrefix(text, "/") {
		return "", ""
	}

	command, args, _ := strings.Cut(text, " ")
	command, _, _ = strings.Cut(command, "@")

	return strings.ToLower(command), strings.TrimSpace(args)
}

func largestPhoto(photos []models.PhotoSize) models.PhotoSize {
	largest := photos[0]

	for _, photo := range photos[1:] {
		if photo.Width*photo.Height > largest.Width*largest.Height {
			largest = photo
		}
	}

	return largest
}
