package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/evida/coaching-pipeline/internal/plan"
	"github.com/evida/coaching-pipeline/internal/transcript"
	"github.com/evida/coaching-pipeline/pkg/logging"
)

const (
	transcriptFile  = "session_transcript.json"
	planFile        = "session_plan.json"
	planMarkdown    = "session_plan.md"
	planFailureFile = "plan_failure.txt"
)

// Writer persists session artifacts to a per-session directory under a
// configured root. Saves are idempotent: re-running for the same session
// overwrites the same files. There is no cross-file atomicity.
type Writer struct {
	root   string
	logger *logging.Logger
}

// NewWriter returns a writer rooted at the given output directory.
func NewWriter(root string, logger *logging.Logger) *Writer {
	if logger == nil {
		logger = logging.Default()
	}
	return &Writer{root: root, logger: logger}
}

// SaveSession writes the transcript JSON, plan JSON, and plan Markdown for
// a completed run and returns the session directory path.
func (w *Writer) SaveSession(sessionID string, tr *transcript.SessionTranscript, p *plan.LifestylePlan) (string, error) {
	dir, err := w.sessionDir(sessionID)
	if err != nil {
		return "", err
	}

	if err := w.writeJSON(filepath.Join(dir, transcriptFile), tr); err != nil {
		return "", err
	}
	if err := w.writeJSON(filepath.Join(dir, planFile), p); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(dir, planMarkdown), []byte(RenderMarkdown(sessionID, p)), 0o644); err != nil {
		return "", fmt.Errorf("output: write %s: %w", planMarkdown, err)
	}

	w.logger.Info("session artifacts written", "session_id", sessionID, "dir", dir)
	return dir, nil
}

// SaveFailure persists the transcript plus a plan_failure.txt describing a
// failed generation, so the transcription work is not lost. The raw
// language-model response is included when one was received.
func (w *Writer) SaveFailure(sessionID string, tr *transcript.SessionTranscript, rawResponse, errMessage string) (string, error) {
	dir, err := w.sessionDir(sessionID)
	if err != nil {
		return "", err
	}

	if err := w.writeJSON(filepath.Join(dir, transcriptFile), tr); err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Plan generation failed: %s\n\n", errMessage)
	if rawResponse != "" {
		b.WriteString("Raw LLM response:\n")
		b.WriteString(rawResponse)
	}
	if err := os.WriteFile(filepath.Join(dir, planFailureFile), []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("output: write %s: %w", planFailureFile, err)
	}

	w.logger.Warn("plan generation failure artifacts written", "session_id", sessionID, "dir", dir)
	return dir, nil
}

func (w *Writer) sessionDir(sessionID string) (string, error) {
	dir := filepath.Join(w.root, sessionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("output: create session dir %s: %w", dir, err)
	}
	return dir, nil
}

func (w *Writer) writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("output: encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("output: write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// RenderMarkdown produces the human-readable plan: one top-level heading
// for the session, then each domain in fixed order with its baseline,
// SMART goals, and tracking KPIs.
func RenderMarkdown(sessionID string, p *plan.LifestylePlan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Lifestyle Plan for session %s\n\n", sessionID)

	for _, d := range p.Domains() {
		fmt.Fprintf(&b, "## %s\n\n", d.DisplayName)
		fmt.Fprintf(&b, "**Baseline**\n\n%s\n\n", d.Domain.Baseline)

		b.WriteString("**SMART Goals**\n\n")
		for _, goal := range d.Domain.SmartGoals {
			fmt.Fprintf(&b, "- %s\n", goal)
		}

		b.WriteString("\n**Tracking KPIs**\n\n")
		for _, kpi := range d.Domain.TrackingKPIs {
			fmt.Fprintf(&b, "- %s\n", kpi)
		}
		b.WriteString("\n\n")
	}

	return b.String()
}
