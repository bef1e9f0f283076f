package pipeline

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/evida/coaching-pipeline/internal/observability/metrics"
	"github.com/evida/coaching-pipeline/internal/output"
	"github.com/evida/coaching-pipeline/internal/plan"
	"github.com/evida/coaching-pipeline/internal/plangen"
	"github.com/evida/coaching-pipeline/internal/transcript"
	"github.com/evida/coaching-pipeline/internal/transcription"
	"github.com/evida/coaching-pipeline/pkg/logging"
)

var pipelineTracer = otel.Tracer("evida.internal.pipeline")

// planGenerator is the slice of plangen the processor needs.
type planGenerator interface {
	Generate(ctx context.Context, tr *transcript.SessionTranscript, notes string) (*plan.LifestylePlan, string, error)
}

// artifactWriter is the slice of output the processor needs.
type artifactWriter interface {
	SaveSession(sessionID string, tr *transcript.SessionTranscript, p *plan.LifestylePlan) (string, error)
	SaveFailure(sessionID string, tr *transcript.SessionTranscript, rawResponse, errMessage string) (string, error)
}

// Processor runs the three pipeline stages strictly in sequence:
// transcription, plan generation, persistence. There is no retry and no
// parallelism; any stage failure aborts the run.
type Processor struct {
	provider     transcription.Provider
	providerName string
	generator    planGenerator
	writer       artifactWriter
	metrics      *metrics.PipelineMetrics
	logger       *logging.Logger
}

// RunInput carries one session's inputs.
type RunInput struct {
	Audio     []byte
	SessionID string
	Notes     string
}

// Result reports where the artifacts landed.
type Result struct {
	SessionID  string
	OutputDir  string
	Transcript *transcript.SessionTranscript
	Plan       *plan.LifestylePlan
}

// NewProcessor wires the pipeline stages together. The metrics handle may
// be nil.
func NewProcessor(provider transcription.Provider, providerName string, generator *plangen.Generator, writer *output.Writer, m *metrics.PipelineMetrics, logger *logging.Logger) *Processor {
	if generator == nil {
		panic("pipeline: generator cannot be nil")
	}
	if writer == nil {
		panic("pipeline: writer cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Processor{
		provider:     provider,
		providerName: providerName,
		generator:    generator,
		writer:       writer,
		metrics:      m,
		logger:       logger,
	}
}

// Run processes one audio recording end to end and returns the session
// output directory. Nothing is written when transcription fails; a plan
// failure still persists the transcript plus a failure note.
func (p *Processor) Run(ctx context.Context, in RunInput) (*Result, error) {
	if p.provider == nil {
		return nil, errors.New("pipeline: no transcription provider configured")
	}

	ctx, span := pipelineTracer.Start(ctx, "pipeline.run")
	defer span.End()
	span.SetAttributes(
		attribute.String("evida.session_id", in.SessionID),
		attribute.String("evida.provider", p.providerName),
	)

	start := time.Now()
	tr, err := p.provider.Transcribe(ctx, in.Audio, in.SessionID)
	p.metrics.ObserveStageLatency(metrics.StageTranscription, time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		p.metrics.ObserveSession(p.providerName, metrics.StatusTranscriptionFailed)
		p.logger.Error("transcription failed", "session_id", in.SessionID, "provider", p.providerName, "error", err)
		return nil, err
	}
	p.logger.Info("transcription completed", "session_id", in.SessionID, "utterances", len(tr.Utterances))

	return p.generateAndSave(ctx, tr, in.Notes)
}

// RunWithTranscript skips speech-to-text and processes a previously
// persisted transcript.
func (p *Processor) RunWithTranscript(ctx context.Context, tr *transcript.SessionTranscript, notes string) (*Result, error) {
	ctx, span := pipelineTracer.Start(ctx, "pipeline.run_with_transcript")
	defer span.End()
	span.SetAttributes(attribute.String("evida.session_id", tr.SessionID))

	return p.generateAndSave(ctx, tr, notes)
}

func (p *Processor) generateAndSave(ctx context.Context, tr *transcript.SessionTranscript, notes string) (*Result, error) {
	start := time.Now()
	lifestylePlan, _, err := p.generator.Generate(ctx, tr, notes)
	p.metrics.ObserveStageLatency(metrics.StagePlanGen, time.Since(start).Seconds())
	if err != nil {
		p.metrics.ObserveSession(p.providerName, metrics.StatusPlanFailed)
		p.logger.Error("plan generation failed", "session_id", tr.SessionID, "error", err)

		var gerr *plangen.GenerationError
		if errors.As(err, &gerr) {
			if dir, saveErr := p.writer.SaveFailure(tr.SessionID, tr, gerr.RawResponse, gerr.Error()); saveErr != nil {
				p.logger.Error("failed to persist failure artifacts", "session_id", tr.SessionID, "error", saveErr)
			} else {
				p.logger.Info("transcript preserved despite plan failure", "session_id", tr.SessionID, "dir", dir)
			}
		}
		return nil, err
	}

	start = time.Now()
	dir, err := p.writer.SaveSession(tr.SessionID, tr, lifestylePlan)
	p.metrics.ObserveStageLatency(metrics.StageOutput, time.Since(start).Seconds())
	if err != nil {
		p.metrics.ObserveSession(p.providerName, metrics.StatusWriteFailed)
		return nil, err
	}

	p.metrics.ObserveSession(p.providerName, metrics.StatusOK)
	return &Result{
		SessionID:  tr.SessionID,
		OutputDir:  dir,
		Transcript: tr,
		Plan:       lifestylePlan,
	}, nil
}
