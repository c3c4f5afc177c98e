package freya

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// ErrProvider marks upstream LLM failures. Callers log the run as an error and
// do not retry the trigger automatically.
var ErrProvider = errors.New("llm provider call failed")

// GenerateRequest carries the prompts plus optional image URLs.
type GenerateRequest struct {
	SystemPrompt string
	UserPrompt   string
	Images       []string
}

// Reply is the generated text plus token usage for budget accounting.
type Reply struct {
	Text      string
	TokensIn  int
	TokensOut int
	Model     string
}

type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (*Reply, error)
}

// OpenAIGenerator calls a chat-completions endpoint. The vision model is used
// whenever images are attached, the text model otherwise.
type OpenAIGenerator struct {
	client      *openai.Client
	modelText   string
	modelVision string
	maxTokens   int
}

func NewOpenAIGenerator(apiKey, baseURL, modelText, modelVision string) (*OpenAIGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: api key not configured", ErrProvider)
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIGenerator{
		client:      openai.NewClientWithConfig(cfg),
		modelText:   modelText,
		modelVision: modelVision,
		maxTokens:   600,
	}, nil
}

func (g *OpenAIGenerator) Generate(ctx context.Context, req GenerateRequest) (*Reply, error) {
	model := g.modelText
	userMsg := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.UserPrompt}
	if len(req.Images) > 0 {
		model = g.modelVision
		parts := []openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeText, Text: req.UserPrompt},
		}
		for _, url := range req.Images {
			parts = append(parts, openai.ChatMessagePart{
				Type:     openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{URL: url},
			})
		}
		userMsg = openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, MultiContent: parts}
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.SystemPrompt},
			userMsg,
		},
		MaxTokens:   g.maxTokens,
		Temperature: 0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty response", ErrProvider)
	}
	return &Reply{
		Text:      resp.Choices[0].Message.Content,
		TokensIn:  resp.Usage.PromptTokens,
		TokensOut: resp.Usage.CompletionTokens,
		Model:     model,
	}, nil
}
