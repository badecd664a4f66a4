package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"swipewrite/internal/api"
	"swipewrite/internal/bot"
	"swipewrite/internal/chat"
	"swipewrite/internal/config"
	"swipewrite/internal/llm"
	"swipewrite/internal/page"
	"swipewrite/internal/summarizer"
	"syscall"
	"time"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
)

func main() {
	start := time.Now()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log, level := newLogger(os.Stdout)
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.ErrorContext(ctx, "Failed to load config",
			"error", err)

		return
	}
	level.Set(cfg.LogLevel)

	log.InfoContext(ctx, "Config is loaded",
		"httpAddr", cfg.HTTPAddr,
		"llmProvider", cfg.LLMProvider,
		"extractMode", cfg.ExtractMode)

	provider, err := llm.NewProvider(ctx, llm.Config{
		Provider:        cfg.LLMProvider,
		Model:           cfg.LLMModel,
		BaseURL:         cfg.LLMBaseURL,
		OpenAIAPIKey:    cfg.OpenAIAPIKey,
		AnthropicAPIKey: cfg.AnthropicAPIKey,
		GoogleAPIKey:    cfg.GoogleAPIKey,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize LLM provider",
			"error", err,
			"provider", cfg.LLMProvider)

		return
	}
	log.InfoContext(ctx, "LLM provider is initialized",
		"provider", cfg.LLMProvider,
		"model", cfg.LLMModel)

	fetcher := page.NewFetcher(page.Mode(cfg.ExtractMode), log)
	sum := summarizer.New(provider, log)
	chatService := chat.New(provider, log)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewServer(fetcher, sum, chatService, log).Router(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()
	log.InfoContext(ctx, "HTTP server is started",
		"addr", cfg.HTTPAddr)

	var botInst *bot.Bot
	if cfg.TelegramToken != "" {
		botInst, err = bot.New(cfg.TelegramToken, fetcher, sum, chatService, cfg.AllowedUsers, log)
		if err != nil {
			log.ErrorContext(ctx, "Failed to initialize bot",
				"error", err,
				"allowedUsersCount", len(cfg.AllowedUsers))

			return
		}
		log.InfoContext(ctx, "Bot is initialized",
			"allowedUsersCount", len(cfg.AllowedUsers))

		go func() {
			botInst.Start(ctx)
		}()
		log.InfoContext(ctx, "Bot is started")
	} else {
		log.InfoContext(ctx, "TELEGRAM_TOKEN is missing so bot is disabled",
			"envVar", "TELEGRAM_TOKEN")
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-c:
		log.InfoContext(ctx, "Shutdown signal is received",
			"signal", sig.String())
	case err = <-serverErr:
		log.ErrorContext(ctx, "HTTP server failed",
			"error", err,
			"addr", cfg.HTTPAddr)
	}
	cancel()

	log.InfoContext(ctx, "Exiting...",
		"uptimeSeconds", time.Since(start).Seconds())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err = server.Shutdown(shutdownCtx); err != nil {
		log.ErrorContext(shutdownCtx, "Failed to shut down HTTP server",
			"error", err)
	}
	log.InfoContext(shutdownCtx, "HTTP server is stopped",
		"uptimeSeconds", time.Since(start).Seconds())

	if botInst != nil {
		botInst.Stop()
		log.InfoContext(shutdownCtx, "Bot is stopped",
			"uptimeSeconds", time.Since(start).Seconds())
	}
}

// newLogger logs JSON to w at info until the returned level is changed.
func newLogger(w io.Writer) (*slog.Logger, *slog.LevelVar) {
	level := new(slog.LevelVar)

	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})), level
}
