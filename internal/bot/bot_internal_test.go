package bot

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"swipewrite/internal/domain"
	"swipewrite/internal/page"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type stubAPI struct {
	mu          sync.Mutex
	downloadURL string
	fileIDs     []string
	actions     int
}

func (s *stubAPI) GetFile(_ context.Context, params *bot.GetFileParams) (*models.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fileIDs = append(s.fileIDs, params.FileID)

	return &models.File{FileID: params.FileID, FilePath: "photos/" + params.FileID + ".png"}, nil
}

func (s *stubAPI) FileDownloadLink(file *models.File) string {
	return s.downloadURL + "/" + file.FilePath
}

func (s *stubAPI) SendChatAction(context.Context, *bot.SendChatActionParams) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions++

	return true, nil
}

type stubSender struct {
	mu   sync.Mutex
	sent []*bot.SendMessageParams
}

func (s *stubSender) SendMessage(_ context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, params)

	return &models.Message{Text: params.Text}, nil
}

func (s *stubSender) texts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var texts []string
	for _, params := range s.sent {
		texts = append(texts, params.Text)
	}

	return texts
}

type stubExtractor struct {
	calls []string
	err   error
}

func (s *stubExtractor) Extract(_ context.Context, url string) (domain.PageContent, error) {
	s.calls = append(s.calls, url)
	if s.err != nil {
		return domain.PageContent{}, s.err
	}

	return domain.PageContent{URL: url, Text: "page text"}, nil
}

type stubSummarizer struct {
	input   string
	summary string
}

func (s *stubSummarizer) Summarize(_ context.Context, text string) (string, error) {
	s.input = text
	if s.summary != "" {
		return s.summary, nil
	}
	return "- short point.", nil
}

type stubChat struct {
	message string
	image   *domain.Image
	err     error
}

func (s *stubChat) Chat(_ context.Context, message string) (string, error) {
	s.message = message
	return "Try asking about their dog!", s.err
}

func (s *stubChat) Analyze(_ context.Context, message string, image *domain.Image) (domain.Reply, error) {
	s.message = message
	s.image = image
	return domain.Reply{Text: "Great smile.", Image: image != nil}, s.err
}

type testBot struct {
	*Bot
	api       *stubAPI
	sender    *stubSender
	extractor *stubExtractor
	sum       *stubSummarizer
	chat      *stubChat
}

func newTestBot(allowedUsers ...int64) *testBot {
	tb := &testBot{
		api:       &stubAPI{},
		sender:    &stubSender{},
		extractor: &stubExtractor{},
		sum:       &stubSummarizer{},
		chat:      &stubChat{},
	}

	tb.Bot = &Bot{
		api:          tb.api,
		sender:       tb.sender,
		extractor:    tb.extractor,
		summarizer:   tb.sum,
		chat:         tb.chat,
		httpClient:   http.DefaultClient,
		allowedUsers: allowedUsers,
		log:          slog.Default(),
	}

	return tb
}

func textMessage(text string) *models.Message {
	return &models.Message{
		ID:   1,
		From: &models.User{ID: 42, Username: "tester"},
		Chat: models.Chat{ID: 42, Type: models.ChatTypePrivate},
		Text: text,
	}
}

func TestHandleMessageChat(t *testing.T) {
	tb := newTestBot()

	if err := tb.handleMessage(context.Background(), textMessage("  what should I say?  ")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tb.chat.message != "what should I say?" {
		t.Fatalf("expected trimmed message, got %q", tb.chat.message)
	}

	texts := tb.sender.texts()
	if len(texts) != 1 || texts[0] != `Try asking about their dog\!` {
		t.Fatalf("unexpected replies: %v", texts)
	}

	if tb.sender.sent[0].ParseMode != models.ParseModeMarkdown {
		t.Fatalf("expected MarkdownV2 parse mode, got %q", tb.sender.sent[0].ParseMode)
	}
}

func TestHandleMessageURL(t *testing.T) {
	tb := newTestBot()

	err := tb.handleMessage(context.Background(), textMessage("look at https://example.com/profile please"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(tb.extractor.calls) != 1 || tb.extractor.calls[0] != "https://example.com/profile" {
		t.Fatalf("unexpected extract calls: %v", tb.extractor.calls)
	}

	if tb.sum.input != "page text" {
		t.Fatalf("expected extracted text to be summarized, got %q", tb.sum.input)
	}

	texts := tb.sender.texts()
	if len(texts) != 1 || !strings.HasSuffix(texts[0], `\- short point\.`) {
		t.Fatalf("unexpected replies: %v", texts)
	}
}

func TestHandleMessageURLReplyFitsTelegramLimit(t *testing.T) {
	tb := newTestBot()
	tb.sum.summary = strings.Repeat("a.b-", 1500)

	longURL := "https://example.com/" + strings.Repeat("x.y_", 1500)

	if err := tb.handleMessage(context.Background(), textMessage(longURL)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	texts := tb.sender.texts()
	if len(texts) != 1 {
		t.Fatalf("expected one reply, got %d", len(texts))
	}

	if n := utf8.RuneCountInString(texts[0]); n > 4096 {
		t.Fatalf("expected reply within 4096 characters, got %d", n)
	}

	if !strings.Contains(texts[0], `\_`) || !strings.Contains(texts[0], `a\.b\-`) {
		t.Fatalf("expected both url and summary in reply")
	}
}

func TestHandleMessageSummarizeCommand(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantCalls int
	}{
		{"With URL", "/summarize https://example.com", 1},
		{"With bot name", "/summarize@swipe_bot https://example.com", 1},
		{"Without URL", "/summarize", 0},
		{"With plain http", "/summarize http://example.com", 0},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			tb := newTestBot()

			if err := tb.handleMessage(context.Background(), textMessage(test.text)); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(tb.extractor.calls) != test.wantCalls {
				t.Errorf("Expected %d extract calls, got %d", test.wantCalls, len(tb.extractor.calls))
			}

			if test.wantCalls == 0 {
				texts := tb.sender.texts()
				if len(texts) != 1 || texts[0] != summarizeUsageText {
					t.Errorf("Expected usage reply, got %v", texts)
				}
			}
		})
	}
}

func TestHandleMessageStart(t *testing.T) {
	tb := newTestBot()

	if err := tb.handleMessage(context.Background(), textMessage("/start")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	texts := tb.sender.texts()
	if len(texts) != 1 || texts[0] != startText {
		t.Fatalf("unexpected replies: %v", texts)
	}

	if tb.chat.message != "" {
		t.Fatalf("expected /start not to reach chat")
	}
}

func TestHandleMessageFailureIsShown(t *testing.T) {
	tb := newTestBot()
	tb.extractor.err = &page.FetchError{
		URL:  "https://example.com",
		Kind: page.KindConnection,
		Err:  errors.New("connection refused"),
	}

	err := tb.handleMessage(context.Background(), textMessage("https://example.com"))
	if err == nil {
		t.Fatalf("expected error to be returned for logging")
	}

	if _, ok := page.IsFetchError(err); !ok {
		t.Fatalf("expected wrapped fetch error, got %v", err)
	}

	texts := tb.sender.texts()
	want := `✖️ Could not fetch content from https://example\.com\. Error: connection refused`
	if len(texts) != 1 || texts[0] != want {
		t.Fatalf("unexpected replies: %v", texts)
	}

	if tb.sum.input != "" {
		t.Fatalf("expected summarizer not to run")
	}
}

func TestHandleMessagePhoto(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/photos/big.png" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write(pngHeader)
	}))
	t.Cleanup(server.Close)

	tb := newTestBot()
	tb.api.downloadURL = server.URL

	message := textMessage("")
	message.Caption = " rate my photo "
	message.Photo = []models.PhotoSize{
		{FileID: "small", Width: 90, Height: 90},
		{FileID: "big", Width: 1280, Height: 960},
		{FileID: "medium", Width: 320, Height: 240},
	}

	if err := tb.handleMessage(context.Background(), message); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tb.chat.image == nil || !bytes.Equal(tb.chat.image.Data, pngHeader) {
		t.Fatalf("expected downloaded image, got %+v", tb.chat.image)
	}

	if tb.chat.image.MediaType != "image/png" {
		t.Fatalf("expected image/png, got %q", tb.chat.image.MediaType)
	}

	if tb.chat.message != "rate my photo" {
		t.Fatalf("expected trimmed caption, got %q", tb.chat.message)
	}

	texts := tb.sender.texts()
	if len(texts) != 1 || texts[0] != `Great smile\.` {
		t.Fatalf("unexpected replies: %v", texts)
	}
}

func TestUserAllowed(t *testing.T) {
	tests := []struct {
		name    string
		allowed []int64
		userID  int64
		want    bool
	}{
		{"Empty list allows everyone", nil, 7, true},
		{"Listed user", []int64{7, 8}, 8, true},
		{"Unlisted user", []int64{7, 8}, 9, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			tb := newTestBot(test.allowed...)

			if got := tb.userAllowed(test.userID); got != test.want {
				t.Errorf("Expected %v, got %v", test.want, got)
			}
		})
	}
}

func TestHandleUpdateSkipsUnknownUsers(t *testing.T) {
	tb := newTestBot(1)

	tb.handleUpdate(context.Background(), nil, &models.Update{Message: textMessage("hello")})

	if len(tb.sender.texts()) != 0 || tb.chat.message != "" {
		t.Fatalf("expected message from unknown user to be ignored")
	}
}

func TestSplitCommand(t *testing.T) {
	tests := []struct {
		in       string
		wantCmd  string
		wantArgs string
	}{
		{"/start", "/start", ""},
		{"/Summarize@bot  https://a.b ", "/summarize", "https://a.b"},
		{"hello /start", "", ""},
		{"", "", ""},
	}

	for _, test := range tests {
		t.Run(test.in, func(t *testing.T) {
			cmd, args := splitCommand(test.in)
			if cmd != test.wantCmd || args != test.wantArgs {
				t.Errorf("Expected (%q, %q), got (%q, %q)", test.wantCmd, test.wantArgs, cmd, args)
			}
		})
	}
}

func TestLargestPhoto(t *testing.T) {
	got := largestPhoto([]models.PhotoSize{
		{FileID: "a", Width: 10, Height: 10},
		{FileID: "b", Width: 30, Height: 20},
		{FileID: "c", Width: 20, Height: 20},
	})

	if got.FileID != "b" {
		t.Fatalf("expected largest photo b, got %q", got.FileID)
	}
}
