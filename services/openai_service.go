package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var ErrAIDisabled = errors.New("ai completions are disabled")

// Completer produces a single chat completion.
type Completer interface {
	Complete(ctx context.Context, system, prompt string, maxTokens int64) (string, error)
}

// OpenAIService wraps the OpenAI client. If client is nil, every call
// returns ErrAIDisabled and callers use their rule-based fallback.
type OpenAIService struct {
	client *openai.Client
	model  string
}

// NewOpenAIService creates the service. Pass an empty apiKey to disable calls.
func NewOpenAIService(apiKey, model string) *OpenAIService {
	if apiKey == "" {
		return &OpenAIService{client: nil, model: model}
	}
	c := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIService{client: &c, model: model}
}

func (s *OpenAIService) Complete(ctx context.Context, system, prompt string, maxTokens int64) (string, error) {
	if s.client == nil {
		return "", ErrAIDisabled
	}

	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(prompt),
		},
		MaxTokens:   openai.Int(maxTokens),
		Temperature: openai.Float(0.7),
	})
	if err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: no choices returned")
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", errors.New("openai: empty completion")
	}
	return out, nil
}
