package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/evida/coaching-pipeline/pkg/logging"
)

const jsonSystemPrompt = "You are a JSON-only responder. Reply with JSON."

// chatClient is the slice of the OpenAI client this package needs.
type chatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIClient produces JSON-mode completions via the OpenAI chat API.
type OpenAIClient struct {
	client chatClient
	model  string
	logger *logging.Logger
}

// NewOpenAIClient returns the default language-model client.
func NewOpenAIClient(apiKey, model string, logger *logging.Logger) (*OpenAIClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("llm: openai api key is required")
	}
	if strings.TrimSpace(model) == "" {
		model = "gpt-4.1-mini"
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &OpenAIClient{
		client: openai.NewClient(apiKey),
		model:  model,
		logger: logger,
	}, nil
}

// CompleteJSON sends the prompt with response_format constrained to a JSON
// object and returns the raw completion text.
func (c *OpenAIClient) CompleteJSON(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: jsonSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", fmt.Errorf("llm: openai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("llm: openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
