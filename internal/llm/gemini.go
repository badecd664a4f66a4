package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const geminiRoleUser = "user"

type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// GeminiProvider calls the GenerateContent API.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

func NewGeminiProvider(ctx context.Context, cfg GeminiConfig) (*GeminiProvider, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}

	return &GeminiProvider{
		client: client,
		model:  defaultIfEmpty(cfg.Model, DefaultGeminiModel),
	}, nil
}

func (p *GeminiProvider) Complete(ctx context.Context, req Request) (string, error) {
	user := &genai.Content{
		Role:  geminiRoleUser,
		Parts: []*genai.Part{{Text: req.Prompt}},
	}
	if req.Image != nil {
		user.Parts = append(user.Parts, &genai.Part{
			InlineData: &genai.Blob{
				MIMEType: mediaTypeOf(req.Image),
				Data:     req.Image.Data,
			},
		})
	}

	config := &genai.GenerateContentConfig{}
	if req.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}
	if req.MaxOutputTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxOutputTokens) //nolint:gosec // Small positive caps only.
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, []*genai.Content{user}, config)
	if err != nil {
		return "", classify(ProviderGemini, err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", emptyResponse(ProviderGemini)
	}

	var content strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			content.WriteString(part.Text)
		}
	}

	result := strings.TrimSpace(content.String())
	if result == "" {
		return "", emptyResponse(ProviderGemini)
	}

	return result, nil
}
