package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/evida/coaching-pipeline/internal/output"
	"github.com/evida/coaching-pipeline/internal/plan"
	"github.com/evida/coaching-pipeline/internal/plangen"
	"github.com/evida/coaching-pipeline/internal/transcript"
	"github.com/evida/coaching-pipeline/internal/transcription"
	"github.com/evida/coaching-pipeline/pkg/logging"
)

type stubProvider struct {
	transcript *transcript.SessionTranscript
	err        error
	calls      int
}

func (s *stubProvider) Transcribe(_ context.Context, _ []byte, sessionID string) (*transcript.SessionTranscript, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	tr := *s.transcript
	tr.SessionID = sessionID
	return &tr, nil
}

type stubGenerator struct {
	plan  *plan.LifestylePlan
	raw   string
	err   error
	calls int
}

func (s *stubGenerator) Generate(_ context.Context, _ *transcript.SessionTranscript, _ string) (*plan.LifestylePlan, string, error) {
	s.calls++
	if s.err != nil {
		return nil, s.raw, s.err
	}
	return s.plan, s.raw, nil
}

func validPlan() *plan.LifestylePlan {
	d := plan.Domain{Baseline: "ok", SmartGoals: []string{"g"}, TrackingKPIs: []string{"k1", "k2"}}
	return &plan.LifestylePlan{
		HealthyEating: d, PhysicalActivity: d, Substances: d,
		StressManagement: d, Sleep: d, SocialConnections: d,
	}
}

func testTranscript() *transcript.SessionTranscript {
	return &transcript.SessionTranscript{
		SessionID:  "abc123",
		RawText:    "Hello",
		Utterances: []transcript.Utterance{{Speaker: transcript.SpeakerUnknown, Text: "Hello"}},
	}
}

func newProcessor(root string, provider transcription.Provider, gen planGenerator) *Processor {
	return &Processor{
		provider:     provider,
		providerName: "whisper",
		generator:    gen,
		writer:       output.NewWriter(root, logging.Default()),
		logger:       logging.Default(),
	}
}

func TestRunHappyPath(t *testing.T) {
	root := t.TempDir()
	provider := &stubProvider{transcript: testTranscript()}
	gen := &stubGenerator{plan: validPlan(), raw: "{}"}
	p := newProcessor(root, provider, gen)

	res, err := p.Run(context.Background(), RunInput{Audio: []byte("audio"), SessionID: "abc123", Notes: "notes"})
	require.NoError(t, err)

	require.Equal(t, filepath.Join(root, "abc123"), res.OutputDir)
	require.Equal(t, 1, provider.calls)
	require.Equal(t, 1, gen.calls)

	entries, err := os.ReadDir(res.OutputDir)
	require.NoError(t, err)
	require.Len(t, entries, 3)
}

func TestRunTranscriptionFailureWritesNothing(t *testing.T) {
	root := t.TempDir()
	provider := &stubProvider{err: &transcription.Error{Provider: "whisper", Err: errors.New("boom")}}
	gen := &stubGenerator{plan: validPlan()}
	p := newProcessor(root, provider, gen)

	_, err := p.Run(context.Background(), RunInput{Audio: []byte("audio"), SessionID: "abc123"})
	require.Error(t, err)

	var terr *transcription.Error
	require.ErrorAs(t, err, &terr)
	require.Equal(t, 0, gen.calls)

	// No session directory, no files.
	entries, readErr := os.ReadDir(root)
	require.NoError(t, readErr)
	require.Empty(t, entries)
}

func TestRunPlanFailurePreservesTranscript(t *testing.T) {
	root := t.TempDir()
	provider := &stubProvider{transcript: testTranscript()}
	gen := &stubGenerator{
		raw: `{"broken":`,
		err: &plangen.GenerationError{Message: "failed to parse language model response", RawResponse: `{"broken":`},
	}
	p := newProcessor(root, provider, gen)

	_, err := p.Run(context.Background(), RunInput{Audio: []byte("audio"), SessionID: "abc123"})
	require.Error(t, err)

	var gerr *plangen.GenerationError
	require.ErrorAs(t, err, &gerr)

	dir := filepath.Join(root, "abc123")
	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	require.Len(t, entries, 2)
	names := []string{entries[0].Name(), entries[1].Name()}
	require.ElementsMatch(t, []string{"session_transcript.json", "plan_failure.txt"}, names)

	data, readErr := os.ReadFile(filepath.Join(dir, "plan_failure.txt"))
	require.NoError(t, readErr)
	require.Contains(t, string(data), `{"broken":`)
}

func TestRunMeetingStubNeverReachesGenerator(t *testing.T) {
	root := t.TempDir()
	gen := &stubGenerator{plan: validPlan()}
	p := newProcessor(root, transcription.NewMeetingStubProvider(), gen)

	_, err := p.Run(context.Background(), RunInput{Audio: nil, SessionID: "conv-1"})
	require.ErrorIs(t, err, transcription.ErrNotImplemented)
	require.Equal(t, 0, gen.calls)

	entries, readErr := os.ReadDir(root)
	require.NoError(t, readErr)
	require.Empty(t, entries)
}

func TestRunWithTranscriptSkipsProvider(t *testing.T) {
	root := t.TempDir()
	provider := &stubProvider{transcript: testTranscript()}
	gen := &stubGenerator{plan: validPlan()}
	p := newProcessor(root, provider, gen)

	res, err := p.RunWithTranscript(context.Background(), testTranscript(), "")
	require.NoError(t, err)
	require.Equal(t, 0, provider.calls)
	require.Equal(t, 1, gen.calls)
	require.Equal(t, filepath.Join(root, "abc123"), res.OutputDir)
}
