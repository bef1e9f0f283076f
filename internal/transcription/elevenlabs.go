package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/evida/coaching-pipeline/internal/transcript"
	"github.com/evida/coaching-pipeline/pkg/logging"
)

const elevenLabsSTTURL = "https://api.elevenlabs.io/v1/speech-to-text"

// ElevenLabsProvider uploads audio to the ElevenLabs speech-to-text
// endpoint with diarization requested. The remote schema drifts, so the
// response mapping tolerates missing optional fields instead of failing.
type ElevenLabsProvider struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	logger  *logging.Logger
}

// NewElevenLabsProvider returns the diarizing transcription provider.
func NewElevenLabsProvider(apiKey, model string, logger *logging.Logger) (*ElevenLabsProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("transcription: ELEVENLABS_API_KEY is required for the elevenlabs provider")
	}
	if strings.TrimSpace(model) == "" {
		model = "scribe_v2"
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ElevenLabsProvider{
		apiKey:  apiKey,
		model:   model,
		baseURL: elevenLabsSTTURL,
		client:  &http.Client{Timeout: 120 * time.Second},
		logger:  logger,
	}, nil
}

// elevenLabsItem is one speaker-attributed segment. Every field is optional
// at the wire level; absence is treated as empty, not as an error.
type elevenLabsItem struct {
	Speaker      string   `json:"speaker"`
	SpeakerLabel string   `json:"speaker_label"`
	Text         string   `json:"text"`
	Start        *float64 `json:"start"`
	End          *float64 `json:"end"`
}

type elevenLabsResponse struct {
	Transcript     []elevenLabsItem `json:"transcript"`
	Segments       []elevenLabsItem `json:"segments"`
	Text           string           `json:"text"`
	TranscriptText string           `json:"transcript_text"`
}

// Transcribe posts the audio as a multipart upload and maps each returned
// segment to one utterance. RawText is the newline join of segment texts in
// response order.
func (p *ElevenLabsProvider) Transcribe(ctx context.Context, audio []byte, sessionID string) (*transcript.SessionTranscript, error) {
	p.logger.Info("transcribing audio via elevenlabs", "session_id", sessionID, "model", p.model, "bytes", len(audio))

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", "session.wav")
	if err != nil {
		return nil, &Error{Provider: "elevenlabs", Err: fmt.Errorf("create form file: %w", err)}
	}
	if _, err := part.Write(audio); err != nil {
		return nil, &Error{Provider: "elevenlabs", Err: fmt.Errorf("write audio to form: %w", err)}
	}
	// ElevenLabs expects model_id rather than model.
	if err := writer.WriteField("model_id", p.model); err != nil {
		return nil, &Error{Provider: "elevenlabs", Err: fmt.Errorf("write model_id field: %w", err)}
	}
	if err := writer.WriteField("diarize", "true"); err != nil {
		return nil, &Error{Provider: "elevenlabs", Err: fmt.Errorf("write diarize field: %w", err)}
	}
	if err := writer.WriteField("language", "en"); err != nil {
		return nil, &Error{Provider: "elevenlabs", Err: fmt.Errorf("write language field: %w", err)}
	}
	if err := writer.Close(); err != nil {
		return nil, &Error{Provider: "elevenlabs", Err: fmt.Errorf("close multipart writer: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, &buf)
	if err != nil {
		return nil, &Error{Provider: "elevenlabs", Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("xi-api-key", p.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &Error{Provider: "elevenlabs", Err: fmt.Errorf("send request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Provider: "elevenlabs", Err: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode >= 300 {
		p.logger.Error("elevenlabs transcription failed", "status", resp.StatusCode, "body", string(body))
		return nil, &Error{Provider: "elevenlabs", Err: fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))}
	}

	var decoded elevenLabsResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, &Error{Provider: "elevenlabs", Err: fmt.Errorf("decode response: %w", err)}
	}

	return mapElevenLabsResponse(sessionID, &decoded), nil
}

func mapElevenLabsResponse(sessionID string, resp *elevenLabsResponse) *transcript.SessionTranscript {
	items := resp.Transcript
	if len(items) == 0 {
		items = resp.Segments
	}

	var utterances []transcript.Utterance
	var rawParts []string
	for _, item := range items {
		text := item.Text
		if text == "" {
			continue
		}
		speaker := item.Speaker
		if speaker == "" {
			speaker = item.SpeakerLabel
		}
		if speaker == "" {
			speaker = transcript.SpeakerUnknown
		}
		utterances = append(utterances, transcript.Utterance{
			Speaker:   speaker,
			StartTime: item.Start,
			EndTime:   item.End,
			Text:      text,
		})
		rawParts = append(rawParts, text)
	}

	if len(utterances) == 0 {
		fallback := resp.Text
		if fallback == "" {
			fallback = resp.TranscriptText
		}
		if fallback != "" {
			utterances = append(utterances, transcript.Utterance{Speaker: transcript.SpeakerUnknown, Text: fallback})
			rawParts = append(rawParts, fallback)
		}
	}

	return &transcript.SessionTranscript{
		SessionID:  sessionID,
		RawText:    strings.TrimSpace(strings.Join(rawParts, "\n")),
		Utterances: utterances,
	}
}
