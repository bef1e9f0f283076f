package transcript

import (
	"encoding/json"
	"fmt"
	"os"
)

// Utterance is one speaker-attributed span of a session transcript.
// Timing is optional; providers without diarization leave it nil.
type Utterance struct {
	Speaker   string   `json:"speaker"`
	StartTime *float64 `json:"start_time,omitempty"`
	EndTime   *float64 `json:"end_time,omitempty"`
	Text      string   `json:"text"`
}

// SessionTranscript is the normalized output of a transcription provider.
// It is created once per run and never mutated afterwards. RawText is the
// provider-defined join of the utterance texts.
type SessionTranscript struct {
	SessionID  string      `json:"session_id"`
	RawText    string      `json:"raw_text"`
	Utterances []Utterance `json:"transcript"`
}

// SpeakerUnknown labels synthetic utterances from providers that do not
// support diarization.
const SpeakerUnknown = "unknown"

// LoadFile reads a previously persisted session_transcript.json, so a run
// can skip speech-to-text and reuse an existing transcript.
func LoadFile(path string) (*SessionTranscript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("transcript: read %s: %w", path, err)
	}
	var tr SessionTranscript
	if err := json.Unmarshal(data, &tr); err != nil {
		return nil, fmt.Errorf("transcript: decode %s: %w", path, err)
	}
	if tr.SessionID == "" {
		return nil, fmt.Errorf("transcript: %s has no session_id", path)
	}
	return &tr, nil
}
