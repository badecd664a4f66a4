package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr        string     `env:"HTTP_ADDR"         envDefault:":8000"`
	LLMProvider     string     `env:"LLM_PROVIDER"      envDefault:"openai"`
	LLMModel        string     `env:"LLM_MODEL"`
	LLMBaseURL      string     `env:"LLM_BASE_URL"`
	OpenAIAPIKey    string     `env:"OPENAI_API_KEY"`
	AnthropicAPIKey string     `env:"ANTHROPIC_API_KEY"`
	GoogleAPIKey    string     `env:"GOOGLE_API_KEY"`
	ExtractMode     string     `env:"EXTRACT_MODE"      envDefault:"text"`
	TelegramToken   string     `env:"TELEGRAM_TOKEN"`
	AllowedUsers    []int64    `env:"ALLOWED_USERS"`
	LogLevel        slog.Level `env:"LOG_LEVEL"         envDefault:"info"`
}

// Load reads an optional .env file from the working directory and then parses
// the environment. Variables already set take precedence over the file.
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.LLMProvider = strings.ToLower(strings.TrimSpace(cfg.LLMProvider))
	cfg.ExtractMode = strings.ToLower(strings.TrimSpace(cfg.ExtractMode))

	if err = cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	switch c.ExtractMode {
	case "text", "readability":
	default:
		return fmt.Errorf("EXTRACT_MODE must be text or readability, got %q", c.ExtractMode)
	}

	return nil
}
