package transcription

import (
	"bytes"
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/evida/coaching-pipeline/internal/transcript"
	"github.com/evida/coaching-pipeline/pkg/logging"
)

// audioTranscriber is the slice of the OpenAI client the provider needs.
type audioTranscriber interface {
	CreateTranscription(ctx context.Context, request openai.AudioRequest) (openai.AudioResponse, error)
}

// WhisperProvider sends audio to OpenAI's hosted speech-to-text endpoint.
// The response is a single block of text with no diarization, so the
// transcript always contains exactly one synthetic "unknown" utterance.
type WhisperProvider struct {
	client audioTranscriber
	model  string
	logger *logging.Logger
}

// NewWhisperProvider returns the default transcription provider.
func NewWhisperProvider(apiKey, model string, logger *logging.Logger) (*WhisperProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("transcription: openai api key is required for the whisper provider")
	}
	if strings.TrimSpace(model) == "" {
		model = "gpt-4o-mini-transcribe"
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &WhisperProvider{
		client: openai.NewClient(apiKey),
		model:  model,
		logger: logger,
	}, nil
}

// Transcribe uploads the audio and wraps the full response text into a
// one-utterance transcript.
func (p *WhisperProvider) Transcribe(ctx context.Context, audio []byte, sessionID string) (*transcript.SessionTranscript, error) {
	p.logger.Info("transcribing audio via whisper", "session_id", sessionID, "model", p.model, "bytes", len(audio))

	resp, err := p.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    p.model,
		Reader:   bytes.NewReader(audio),
		FilePath: "session.wav",
	})
	if err != nil {
		return nil, &Error{Provider: "whisper", Err: err}
	}

	return &transcript.SessionTranscript{
		SessionID: sessionID,
		RawText:   resp.Text,
		Utterances: []transcript.Utterance{
			{Speaker: transcript.SpeakerUnknown, Text: resp.Text},
		},
	}, nil
}
