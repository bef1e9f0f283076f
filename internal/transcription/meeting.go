package transcription

import (
	"context"

	"github.com/evida/coaching-pipeline/internal/transcript"
)

// MeetingStubProvider reserves the extension point for a live meeting
// transcript integration (Granola, Zoom, and similar). No suitable public
// API exists yet: every call fails with ErrNotImplemented and no network
// request is ever made.
type MeetingStubProvider struct{}

// NewMeetingStubProvider returns the placeholder provider.
func NewMeetingStubProvider() *MeetingStubProvider {
	return &MeetingStubProvider{}
}

// Transcribe always fails, regardless of input.
func (p *MeetingStubProvider) Transcribe(_ context.Context, _ []byte, _ string) (*transcript.SessionTranscript, error) {
	return nil, &Error{Provider: "meeting", Err: ErrNotImplemented}
}
