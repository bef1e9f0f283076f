package transcription

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/evida/coaching-pipeline/internal/config"
	"github.com/evida/coaching-pipeline/internal/transcript"
	"github.com/evida/coaching-pipeline/pkg/logging"
)

// Provider turns raw audio bytes into a normalized session transcript.
// Implementations are blocking and must not retry.
type Provider interface {
	Transcribe(ctx context.Context, audio []byte, sessionID string) (*transcript.SessionTranscript, error)
}

// ErrNotImplemented marks the reserved meeting-provider path.
var ErrNotImplemented = errors.New("meeting provider integration is not implemented")

// Error wraps any transcription failure (network, auth, or decoding) with
// the provider that produced it.
type Error struct {
	Provider string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("transcription: %s provider: %v", e.Provider, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NewProvider maps a provider token to a constructed instance. The token
// set is closed; anything outside it is a configuration error raised before
// any network activity. An empty token selects the configured default.
func NewProvider(token string, cfg *config.Config, logger *logging.Logger) (Provider, error) {
	if logger == nil {
		logger = logging.Default()
	}
	name := strings.ToLower(strings.TrimSpace(token))
	if name == "" {
		name = cfg.DefaultTranscriptionProvider
	}

	switch name {
	case config.ProviderWhisper:
		return NewWhisperProvider(cfg.OpenAIAPIKey, cfg.OpenAITranscribeModel, logger)
	case config.ProviderElevenLabs:
		return NewElevenLabsProvider(cfg.ElevenLabsAPIKey, cfg.ElevenLabsSTTModel, logger)
	default:
		return nil, fmt.Errorf("transcription: unknown provider %q (must be %q or %q)",
			name, config.ProviderWhisper, config.ProviderElevenLabs)
	}
}
