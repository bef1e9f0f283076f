package transcription

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/evida/coaching-pipeline/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		OpenAIAPIKey:                 "sk-test",
		ElevenLabsAPIKey:             "el-test",
		OpenAITranscribeModel:        "gpt-4o-mini-transcribe",
		ElevenLabsSTTModel:           "scribe_v2",
		DefaultTranscriptionProvider: config.ProviderWhisper,
	}
}

func TestNewProviderTokenMapping(t *testing.T) {
	cfg := testConfig()

	p, err := NewProvider("whisper", cfg, nil)
	require.NoError(t, err)
	require.IsType(t, &WhisperProvider{}, p)

	p, err = NewProvider("elevenlabs", cfg, nil)
	require.NoError(t, err)
	require.IsType(t, &ElevenLabsProvider{}, p)
}

func TestNewProviderNormalizesToken(t *testing.T) {
	p, err := NewProvider("  ElevenLabs ", testConfig(), nil)
	require.NoError(t, err)
	require.IsType(t, &ElevenLabsProvider{}, p)
}

func TestNewProviderEmptyTokenUsesDefault(t *testing.T) {
	cfg := testConfig()
	cfg.DefaultTranscriptionProvider = config.ProviderElevenLabs

	p, err := NewProvider("", cfg, nil)
	require.NoError(t, err)
	require.IsType(t, &ElevenLabsProvider{}, p)
}

func TestNewProviderRejectsUnknownToken(t *testing.T) {
	for _, token := range []string{"deepgram", "meeting", "local"} {
		_, err := NewProvider(token, testConfig(), nil)
		require.Error(t, err, "token %q", token)
	}
}

func TestNewProviderElevenLabsRequiresKey(t *testing.T) {
	cfg := testConfig()
	cfg.ElevenLabsAPIKey = ""
	_, err := NewProvider("elevenlabs", cfg, nil)
	require.Error(t, err)
}

func TestNewProviderWhisperRequiresKey(t *testing.T) {
	cfg := testConfig()
	cfg.OpenAIAPIKey = ""
	_, err := NewProvider("whisper", cfg, nil)
	require.Error(t, err)
}
