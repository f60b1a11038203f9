package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"descant/internal/config"
	"descant/internal/logging"
	"descant/internal/queue"
	"descant/internal/services"
	"descant/internal/services/vad"
	"descant/internal/stage"
	"descant/internal/timeline"
)

// speechDetector is the slice of the VAD service the analyze stage needs.
type speechDetector interface {
	DetectSpeech(ctx context.Context, path string) (vad.Result, error)
}

// transcriber is the slice of the whisper service the analyze stage needs.
type transcriber interface {
	Transcribe(ctx context.Context, source, workDir string) ([]timeline.TranscriptSegment, error)
}

// analyzeHandler finds where nobody is talking and what is said everywhere
// else. The result is persisted as the analysis artifact.
type analyzeHandler struct {
	cfg        *config.Config
	detector   speechDetector
	transcribe transcriber
	logger     *slog.Logger
}

func newAnalyzeHandler(cfg *config.Config, detector speechDetector, transcribe transcriber, logger *slog.Logger) *analyzeHandler {
	return &analyzeHandler{
		cfg:        cfg,
		detector:   detector,
		transcribe: transcribe,
		logger:     logging.NewComponentLogger(logger, "analyze"),
	}
}

func (h *analyzeHandler) Prepare(_ context.Context, item *queue.Item) error {
	if item.AnalysisAudioPath == "" {
		return services.Wrap(services.ErrValidation, "analyze", "prepare",
			"no analysis audio recorded; run extraction first", nil)
	}
	if _, err := os.Stat(item.AnalysisAudioPath); err != nil {
		return services.Wrap(services.ErrNotFound, "analyze", "prepare",
			"analysis audio file is missing", err)
	}
	return nil
}

func (h *analyzeHandler) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, h.logger)

	detection, err := h.detector.DetectSpeech(ctx, item.AnalysisAudioPath)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "analyze", "vad",
			"voice activity detection failed", err)
	}
	logger.Info("speech detected",
		logging.Int("speech_spans", len(detection.Speech)),
		logging.Float64("duration", detection.Duration))

	nonDialogue, err := timeline.ComputeNonDialogue(detection.Speech, detection.Duration)
	if err != nil {
		if errors.Is(err, timeline.ErrInvalidDuration) {
			return services.Wrap(services.ErrValidation, "analyze", "non-dialogue",
				fmt.Sprintf("audio duration %.3f is unusable", detection.Duration), err)
		}
		return services.Wrap(services.ErrTransient, "analyze", "non-dialogue",
			"could not derive non-dialogue intervals", err)
	}

	transcript, err := h.transcribe.Transcribe(ctx, item.AnalysisAudioPath, item.WorkDir)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "analyze", "transcribe",
			"transcription failed", err)
	}

	artifact := analysisArtifact{
		Duration:    detection.Duration,
		Speech:      detection.Speech,
		NonDialogue: nonDialogue,
		Transcript:  transcript,
	}
	if err := writeAnalysis(item, artifact); err != nil {
		return services.Wrap(services.ErrTransient, "analyze", "persist", "", err)
	}

	logger.Info("analysis complete",
		logging.Int("non_dialogue_intervals", len(nonDialogue)),
		logging.Int("transcript_segments", len(transcript)))
	item.ProgressMessage = fmt.Sprintf("%d non-dialogue intervals", len(nonDialogue))
	item.ProgressPercent = 100
	return nil
}

func (h *analyzeHandler) HealthCheck(context.Context) stage.Health {
	if h.cfg.VAD.ModelPath == "" {
		return stage.Unhealthy("analyze", "vad.model_path is not configured")
	}
	if _, err := os.Stat(h.cfg.VAD.ModelPath); err != nil {
		return stage.Unhealthy("analyze", fmt.Sprintf("VAD model missing at %s", h.cfg.VAD.ModelPath))
	}
	return stage.Healthy("analyze")
}
