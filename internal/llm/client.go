package llm

import (
	"context"
	"fmt"

	"github.com/evida/coaching-pipeline/internal/config"
	"github.com/evida/coaching-pipeline/pkg/logging"
)

// Client is the language-model slice the plan generator needs: one
// JSON-mode completion, returning the raw response text.
type Client interface {
	CompleteJSON(ctx context.Context, prompt string) (string, error)
}

// New maps the configured token to a constructed client. The token set is
// closed; anything outside it is a configuration error.
func New(ctx context.Context, cfg *config.Config, logger *logging.Logger) (Client, error) {
	if logger == nil {
		logger = logging.Default()
	}
	switch cfg.LLMProvider {
	case config.LLMOpenAI:
		return NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAILLMModel, logger)
	case config.LLMGemini:
		return NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiLLMModel, logger)
	default:
		return nil, fmt.Errorf("llm: unknown provider %q (must be %q or %q)",
			cfg.LLMProvider, config.LLMOpenAI, config.LLMGemini)
	}
}
