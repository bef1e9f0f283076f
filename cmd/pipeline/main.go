package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	appconfig "github.com/evida/coaching-pipeline/internal/config"
	"github.com/evida/coaching-pipeline/internal/llm"
	"github.com/evida/coaching-pipeline/internal/observability/metrics"
	"github.com/evida/coaching-pipeline/internal/output"
	"github.com/evida/coaching-pipeline/internal/pipeline"
	"github.com/evida/coaching-pipeline/internal/plangen"
	"github.com/evida/coaching-pipeline/internal/transcript"
	"github.com/evida/coaching-pipeline/internal/transcription"
	"github.com/evida/coaching-pipeline/pkg/logging"
)

const usageText = `Usage: pipeline <command> [flags]

Commands:
  process-local-audio         Transcribe a local audio file, generate a lifestyle plan, and persist outputs.
  process-meeting-transcript  Reserved: meeting provider integration is not implemented.

Run "pipeline <command> -h" for command flags.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usageText)
		os.Exit(2)
	}

	// Load environment variables from a local .env file if present.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	switch os.Args[1] {
	case "process-local-audio":
		os.Exit(runProcessLocalAudio(os.Args[2:]))
	case "process-meeting-transcript":
		os.Exit(runProcessMeetingTranscript(os.Args[2:]))
	case "-h", "--help", "help":
		fmt.Print(usageText)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usageText)
		os.Exit(2)
	}
}

func runProcessLocalAudio(args []string) int {
	fs := flag.NewFlagSet("process-local-audio", flag.ExitOnError)
	audioPath := fs.String("audio-path", "", "Path to the session audio file (required)")
	notesPath := fs.String("notes-path", "", "Optional path to free-text notes about the client")
	providerToken := fs.String("provider", "", `Transcription provider: "whisper" or "elevenlabs" (default from env)`)
	sessionID := fs.String("session-id", "", "Optional session identifier; defaults to the audio filename stem")
	transcriptPath := fs.String("transcript-path", "", "Optional path to a saved transcript JSON to skip speech-to-text")
	_ = fs.Parse(args)

	if *audioPath == "" && *transcriptPath == "" {
		fmt.Fprintln(os.Stderr, "error: --audio-path is required (or --transcript-path to skip speech-to-text)")
		fs.Usage()
		return 2
	}

	cfg := appconfig.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	logger := logging.New(cfg.LogLevel)

	id := strings.TrimSpace(*sessionID)
	if id == "" && *audioPath != "" {
		id = strings.TrimSuffix(filepath.Base(*audioPath), filepath.Ext(*audioPath))
	}
	if id == "" {
		id = uuid.NewString()
	}

	notes, err := loadNotes(*notesPath)
	if err != nil {
		logger.Error("failed to read notes", "path", *notesPath, "error", err)
		return 1
	}

	ctx := context.Background()

	llmClient, err := llm.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to construct llm client", "error", err)
		return 1
	}
	generator := plangen.NewGenerator(llmClient, logger)
	writer := output.NewWriter(cfg.OutputDir, logger)
	pipelineMetrics := metrics.NewPipelineMetrics(nil)

	// The transcript-path flow never touches a transcription provider.
	if *transcriptPath != "" {
		tr, err := transcript.LoadFile(*transcriptPath)
		if err != nil {
			logger.Error("failed to load transcript", "path", *transcriptPath, "error", err)
			return 1
		}
		logger.Info("loaded existing transcript", "path", *transcriptPath, "session_id", tr.SessionID)

		processor := pipeline.NewProcessor(nil, "file", generator, writer, pipelineMetrics, logger)
		result, err := processor.RunWithTranscript(ctx, tr, notes)
		if err != nil {
			logger.Error("processing failed", "session_id", tr.SessionID, "error", err)
			return 1
		}
		fmt.Println(result.OutputDir)
		return 0
	}

	providerName := strings.ToLower(strings.TrimSpace(*providerToken))
	if providerName == "" {
		providerName = cfg.DefaultTranscriptionProvider
	}
	provider, err := transcription.NewProvider(providerName, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	logger.Info("processing session",
		"session_id", id,
		"provider", providerName,
		"notes", *notesPath != "",
	)

	audio, err := os.ReadFile(*audioPath)
	if err != nil {
		logger.Error("failed to read audio file", "path", *audioPath, "error", err)
		return 1
	}

	processor := pipeline.NewProcessor(provider, providerName, generator, writer, pipelineMetrics, logger)
	result, err := processor.Run(ctx, pipeline.RunInput{Audio: audio, SessionID: id, Notes: notes})
	if err != nil {
		logger.Error("processing failed", "session_id", id, "error", err)
		return 1
	}

	fmt.Println(result.OutputDir)
	return 0
}

func runProcessMeetingTranscript(args []string) int {
	fs := flag.NewFlagSet("process-meeting-transcript", flag.ExitOnError)
	conversationID := fs.String("conversation-id", "", "Conversation identifier (required)")
	_ = fs.Parse(args)

	if *conversationID == "" {
		fmt.Fprintln(os.Stderr, "error: --conversation-id is required")
		fs.Usage()
		return 2
	}

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	stub := transcription.NewMeetingStubProvider()
	_, err := stub.Transcribe(context.Background(), nil, *conversationID)
	logger.Warn("meeting provider integration is not implemented; this is a stub",
		"conversation_id", *conversationID, "error", err)
	return 1
}

func loadNotes(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
