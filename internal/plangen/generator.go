package plangen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/evida/coaching-pipeline/internal/llm"
	"github.com/evida/coaching-pipeline/internal/plan"
	"github.com/evida/coaching-pipeline/internal/transcript"
	"github.com/evida/coaching-pipeline/pkg/logging"
)

var planTracer = otel.Tracer("evida.internal.plangen")

const promptTemplate = `You are a health coaching documentation assistant.

You will receive:
1) A transcript of a non-clinical health coaching session between a coach and a client.
2) Optional notes about the client.

Your job is to produce a structured lifestyle plan with the following domains:
- healthy_eating
- physical_activity
- substances
- stress_management
- sleep
- social_connections

For each domain, extract:
- "baseline": 1-3 sentences summarising the client's current situation.
- "smart_goals": a list of 1-3 SMART goals, phrased concretely and, where possible, in the client's tone.
- "tracking_kpis": a list of 2-5 measurable indicators (e.g. steps per day, alcohol units per week, bedtime consistency).

Use only information present or strongly implied in the transcript and notes. Do NOT invent or hallucinate.
If there is not enough information for a domain:
- set "baseline" to a short statement that information is incomplete,
- set "smart_goals": [],
- set "tracking_kpis": [].

Return ONLY valid JSON with this structure:

{
  "healthy_eating": {
    "baseline": "...",
    "smart_goals": ["..."],
    "tracking_kpis": ["..."]
  },
  "physical_activity": { ... },
  "substances": { ... },
  "stress_management": { ... },
  "sleep": { ... },
  "social_connections": { ... }
}

----

TRANSCRIPT:
<<TRANSCRIPT_TEXT>>

NOTES:
<<NOTES_TEXT>>
`

// GenerationError marks any plan-generation failure. RawResponse carries
// the language-model output (when one was received) so that a failure
// artifact can still be persisted alongside the transcript.
type GenerationError struct {
	Message     string
	RawResponse string
	Err         error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("plangen: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("plangen: %s", e.Message)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Generator prompts a language model for a lifestyle plan and validates
// the result. The model response is a trust boundary: validation is strict
// even though the prompt only encourages conformance.
type Generator struct {
	client llm.Client
	logger *logging.Logger
}

// NewGenerator returns a plan generator backed by the given LLM client.
func NewGenerator(client llm.Client, logger *logging.Logger) *Generator {
	if client == nil {
		panic("plangen: llm client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Generator{client: client, logger: logger}
}

// Generate produces a validated lifestyle plan from the transcript and
// optional free-text notes. The raw JSON is returned alongside the plan so
// callers can persist it.
func (g *Generator) Generate(ctx context.Context, tr *transcript.SessionTranscript, notes string) (*plan.LifestylePlan, string, error) {
	ctx, span := planTracer.Start(ctx, "plangen.generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("evida.session_id", tr.SessionID),
		attribute.Int("evida.transcript_chars", len(tr.RawText)),
		attribute.Int("evida.notes_chars", len(notes)),
	)

	g.logger.Info("generating lifestyle plan",
		"session_id", tr.SessionID,
		"transcript_chars", len(tr.RawText),
		"notes_chars", len(notes),
	)

	prompt := BuildPrompt(tr.RawText, notes)
	raw, err := g.client.CompleteJSON(ctx, prompt)
	if err != nil {
		span.RecordError(err)
		return nil, "", &GenerationError{Message: "language model call failed", Err: err}
	}
	g.logger.Debug("llm raw response received", "session_id", tr.SessionID, "chars", len(raw))

	if !json.Valid([]byte(raw)) {
		err := &GenerationError{Message: "failed to parse language model response", RawResponse: raw}
		span.RecordError(err)
		return nil, raw, err
	}

	p, err := plan.Parse([]byte(raw))
	if err != nil {
		gerr := &GenerationError{Message: "language model response did not match schema", RawResponse: raw, Err: err}
		span.RecordError(gerr)
		return nil, raw, gerr
	}

	return p, raw, nil
}

// BuildPrompt substitutes the transcript and notes into the fixed
// instructional template.
func BuildPrompt(transcriptText, notes string) string {
	prompt := strings.ReplaceAll(promptTemplate, "<<TRANSCRIPT_TEXT>>", transcriptText)
	return strings.ReplaceAll(prompt, "<<NOTES_TEXT>>", notes)
}
