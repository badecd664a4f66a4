package llm

import (
	"context"
	"encoding/base64"
	"strings"
	"swipewrite/internal/domain"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const defaultImageMediaType = "image/jpeg"

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// OpenAIProvider calls the Chat Completions API.
type OpenAIProvider struct {
	client openai.Client
	model  string
}

func NewOpenAIProvider(cfg OpenAIConfig, opts ...option.RequestOption) *OpenAIProvider {
	clientOpts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.BaseURL))
	}
	clientOpts = append(clientOpts, opts...)

	return &OpenAIProvider{
		client: openai.NewClient(clientOpts...),
		model:  defaultIfEmpty(cfg.Model, DefaultOpenAIModel),
	}
}

func (p *OpenAIProvider) Complete(ctx context.Context, req Request) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: p.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openAIUserMessage(req.Prompt, req.Image),
		},
	}
	if req.MaxOutputTokens > 0 {
		params.MaxTokens = openai.Int(req.MaxOutputTokens)
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", classify(ProviderOpenAI, err)
	}

	if len(resp.Choices) == 0 {
		return "", emptyResponse(ProviderOpenAI)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", emptyResponse(ProviderOpenAI)
	}

	return content, nil
}

func openAIUserMessage(text string, image *domain.Image) openai.ChatCompletionMessageParamUnion {
	if image == nil {
		return openai.UserMessage(text)
	}

	return openai.ChatCompletionMessageParamUnion{
		OfUser: &openai.ChatCompletionUserMessageParam{
			Content: openai.ChatCompletionUserMessageParamContentUnion{
				OfArrayOfContentParts: []openai.ChatCompletionContentPartUnionParam{
					{
						OfText: &openai.ChatCompletionContentPartTextParam{
							Text: text,
						},
					},
					{
						OfImageURL: &openai.ChatCompletionContentPartImageParam{
							ImageURL: openai.ChatCompletionContentPartImageImageURLParam{
								URL: DataURL(image),
							},
						},
					},
				},
			},
		},
	}
}

// DataURL encodes image as a base64 data URL.
func DataURL(image *domain.Image) string {
	return "data:" + mediaTypeOf(image) + ";base64," + base64.StdEncoding.EncodeToString(image.Data)
}

func mediaTypeOf(image *domain.Image) string {
	if mediaType := strings.TrimSpace(image.MediaType); strings.HasPrefix(mediaType, "image/") {
		return mediaType
	}
	return defaultImageMediaType
}
