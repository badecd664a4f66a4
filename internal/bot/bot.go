package bot

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"swipewrite/internal/domain"
	"swipewrite/internal/ratelimiter"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const (
	updateProcessingTimeout = 60 * time.Second
	photoDownloadTimeout    = 30 * time.Second
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

// telegramAPI is the part of *bot.Bot used besides sending messages.
type telegramAPI interface {
	GetFile(ctx context.Context, params *bot.GetFileParams) (*models.File, error)
	FileDownloadLink(file *models.File) string
	SendChatAction(ctx context.Context, params *bot.SendChatActionParams) (bool, error)
}

type Bot struct {
	client       *bot.Bot
	api          telegramAPI
	sender       ratelimiter.Sender
	rateLimiter  *ratelimiter.RateLimiter
	extractor    Extractor
	summarizer   Summarizer
	chat         Chatter
	httpClient   *http.Client
	allowedUsers []int64
	log          *slog.Logger
}

func New(
	token string,
	extractor Extractor,
	summarizer Summarizer,
	chat Chatter,
	allowedUsers []int64,
	log *slog.Logger,
) (*Bot, error) {
	b := &Bot{
		extractor:    extractor,
		summarizer:   summarizer,
		chat:         chat,
		httpClient:   &http.Client{Timeout: photoDownloadTimeout},
		allowedUsers: allowedUsers,
		log:          log,
	}

	client, err := bot.New(strings.TrimSpace(token),
		bot.WithDefaultHandler(b.handleUpdate),
		bot.WithErrorsHandler(func(err error) {
			log.Error("Telegram polling failed",
				"error", err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	b.client = client
	b.api = client
	b.rateLimiter = ratelimiter.New(client, log)
	b.sender = b.rateLimiter

	return b, nil
}

// Start polls for updates until ctx is done.
func (b *Bot) Start(ctx context.Context) {
	b.client.Start(ctx)
}

func (b *Bot) Stop() {
	if b.rateLimiter != nil {
		b.rateLimiter.Stop()
	}
}

func (b *Bot) handleUpdate(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update == nil || update.Message == nil {
		return
	}

	updateCtx, cancel := context.WithTimeout(ctx, updateProcessingTimeout)
	defer cancel()

	message := update.Message
	chatID := message.Chat.ID

	var userID int64
	var username string
	if message.From != nil {
		userID = message.From.ID
		username = message.From.Username
	}

	if !b.userAllowed(userID) {
		b.log.DebugContext(updateCtx, "User is not allowed",
			"userID", userID,
			"chatID", chatID,
			"username", username,
			"chatType", message.Chat.Type)

		return
	}

	if err := b.handleMessage(updateCtx, message); err != nil {
		b.log.ErrorContext(updateCtx, "Failed to handle message",
			"error", err,
			"chatID", chatID,
			"userID", userID,
			"chatType", message.Chat.Type,
			"messageID", message.ID)
	}
}

func (b *Bot) userAllowed(userID int64) bool {
	return len(b.allowedUsers) == 0 || slices.Contains(b.allowedUsers, userID)
}
