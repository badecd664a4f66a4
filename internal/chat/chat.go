package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"swipewrite/internal/domain"
	"swipewrite/internal/llm"
)

const (
	// ImageMaxOutputTokens caps the answer to a photo review.
	ImageMaxOutputTokens int64 = 500

	chatPrompt = "You are Swipe Write, a sassy, razor-sharp, no-BS dating guru who delivers hilariously blunt, " +
		"swagger-filled advice that transforms boring dating profiles and limp messages into irresistible, " +
		"high-flirt masterpieces. You balance flirty with fun, sarcastic with charming, and never cross into " +
		"creepy or mean. Your tone is bold, teasing, and confident—with a flair for dramatic transformations " +
		"and mic-drop moments."

	photoPrompt = "You're Swipe Write, the brutally fabulous dating coach who roasts photos with care and " +
		"confidence. You point out red flags, good lighting, outfit wins, pose fails, and give real, " +
		"high-flirt feedback that gets results—always cheeky, never mean."

	fallbackPrompt = "You are Swipe Write, the same spicy dating profile guru..."
)

var ErrEmptyMessage = errors.New("message is empty")

// Service relays user messages and photos to the model under the Swipe Write persona.
type Service struct {
	provider llm.Provider
	log      *slog.Logger
}

func New(provider llm.Provider, log *slog.Logger) *Service {
	return &Service{
		provider: provider,
		log:      log,
	}
}

func (s *Service) Chat(ctx context.Context, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", ErrEmptyMessage
	}

	return s.complete(ctx, llm.Request{
		System: chatPrompt,
		Prompt: message,
	})
}

// Analyze reviews image when present and falls back to a text answer otherwise.
func (s *Service) Analyze(ctx context.Context, message string, image *domain.Image) (domain.Reply, error) {
	if image == nil || len(image.Data) == 0 {
		text, err := s.complete(ctx, llm.Request{
			System: fallbackPrompt,
			Prompt: message,
		})
		if err != nil {
			return domain.Reply{}, err
		}

		return domain.Reply{Text: text}, nil
	}

	text, err := s.complete(ctx, llm.Request{
		System:          photoPrompt,
		Prompt:          message,
		Image:           image,
		MaxOutputTokens: ImageMaxOutputTokens,
	})
	if err != nil {
		return domain.Reply{}, err
	}

	return domain.Reply{Text: text, Image: true}, nil
}

func (s *Service) complete(ctx context.Context, req llm.Request) (string, error) {
	text, err := s.provider.Complete(ctx, req)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to complete chat",
			"error", err,
			"withImage", req.Image != nil,
			"messageLen", len(req.Prompt))

		return "", err
	}

	return strings.TrimSpace(text), nil
}
