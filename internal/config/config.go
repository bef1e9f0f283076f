package config

import (
	"fmt"
	"os"
	"strings"
)

// Supported provider tokens.
const (
	ProviderWhisper    = "whisper"
	ProviderElevenLabs = "elevenlabs"

	LLMOpenAI = "openai"
	LLMGemini = "gemini"
)

// Config holds application configuration
type Config struct {
	Port     string
	LogLevel string

	// Credentials. The OpenAI key backs both the default transcription
	// provider and the default language model, so it is always required.
	OpenAIAPIKey     string
	ElevenLabsAPIKey string
	GeminiAPIKey     string

	// Model overrides.
	OpenAITranscribeModel string
	OpenAILLMModel        string
	GeminiLLMModel        string
	ElevenLabsSTTModel    string

	// Stage selection.
	DefaultTranscriptionProvider string
	LLMProvider                  string

	OutputDir string

	// Reserved for a future live-meeting integration. Loaded but unused
	// outside the webhook stub's optional signature check.
	MeetingProviderBaseURL       string
	MeetingProviderAPIKey        string
	MeetingProviderWebhookSecret string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		ElevenLabsAPIKey: getEnv("ELEVENLABS_API_KEY", ""),
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),

		OpenAITranscribeModel: getEnv("OPENAI_TRANSCRIBE_MODEL", "gpt-4o-mini-transcribe"),
		OpenAILLMModel:        getEnv("OPENAI_LLM_MODEL", "gpt-4.1-mini"),
		GeminiLLMModel:        getEnv("GEMINI_LLM_MODEL", "gemini-2.5-flash"),
		ElevenLabsSTTModel:    getEnv("ELEVENLABS_STT_MODEL", "scribe_v2"),

		DefaultTranscriptionProvider: strings.ToLower(strings.TrimSpace(getEnv("DEFAULT_TRANSCRIPTION_PROVIDER", ProviderWhisper))),
		LLMProvider:                  strings.ToLower(strings.TrimSpace(getEnv("LLM_PROVIDER", LLMOpenAI))),

		OutputDir: getEnv("OUTPUT_DIR", "./output"),

		MeetingProviderBaseURL:       getEnv("MEETING_PROVIDER_BASE_URL", ""),
		MeetingProviderAPIKey:        getEnv("MEETING_PROVIDER_API_KEY", ""),
		MeetingProviderWebhookSecret: getEnv("MEETING_PROVIDER_WEBHOOK_SECRET", ""),
	}
}

// Validate fails fast on configuration that would leave the pipeline unable
// to run. It must be called before any component is constructed.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.OpenAIAPIKey) == "" {
		return fmt.Errorf("config: OPENAI_API_KEY is required")
	}

	switch c.DefaultTranscriptionProvider {
	case ProviderWhisper, ProviderElevenLabs:
	default:
		return fmt.Errorf("config: unknown DEFAULT_TRANSCRIPTION_PROVIDER %q (must be %q or %q)",
			c.DefaultTranscriptionProvider, ProviderWhisper, ProviderElevenLabs)
	}

	switch c.LLMProvider {
	case LLMOpenAI:
	case LLMGemini:
		if strings.TrimSpace(c.GeminiAPIKey) == "" {
			return fmt.Errorf("config: GEMINI_API_KEY is required when LLM_PROVIDER=%s", LLMGemini)
		}
	default:
		return fmt.Errorf("config: unknown LLM_PROVIDER %q (must be %q or %q)",
			c.LLMProvider, LLMOpenAI, LLMGemini)
	}

	if strings.TrimSpace(c.OutputDir) == "" {
		return fmt.Errorf("config: OUTPUT_DIR cannot be empty")
	}

	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
