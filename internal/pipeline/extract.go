package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"descant/internal/config"
	"descant/internal/logging"
	"descant/internal/media/ffprobe"
	"descant/internal/queue"
	"descant/internal/services"
	"descant/internal/stage"
)

// audioExtractor is the slice of the ffmpeg service the extract stage needs.
type audioExtractor interface {
	ExtractAnalysisAudio(ctx context.Context, source, dest string) error
	ExtractOriginalAudio(ctx context.Context, source, dest string) error
}

// extractHandler pulls the soundtrack out of the source video: once at full
// quality for mixing, once downsampled for analysis.
type extractHandler struct {
	cfg       *config.Config
	extractor audioExtractor
	probe     func(ctx context.Context, binary, path string) (ffprobe.Result, error)
	logger    *slog.Logger
}

func newExtractHandler(cfg *config.Config, extractor audioExtractor, logger *slog.Logger) *extractHandler {
	return &extractHandler{
		cfg:       cfg,
		extractor: extractor,
		probe:     ffprobe.Inspect,
		logger:    logging.NewComponentLogger(logger, "extract"),
	}
}

func (h *extractHandler) Prepare(_ context.Context, item *queue.Item) error {
	if item.SourcePath == "" {
		return services.Wrap(services.ErrValidation, "extract", "prepare", "queue item has no source path", nil)
	}
	if _, err := os.Stat(item.SourcePath); err != nil {
		return services.Wrap(services.ErrNotFound, "extract", "prepare",
			fmt.Sprintf("source video %s is missing", item.SourcePath), err)
	}
	if item.Title == "" {
		item.Title = queue.InferTitle(item.SourcePath)
	}
	if item.WorkDir == "" {
		item.WorkDir = filepath.Join(h.cfg.Paths.WorkDir, fmt.Sprintf("item-%d", item.ID))
	}
	return nil
}

func (h *extractHandler) Execute(ctx context.Context, item *queue.Item) error {
	if err := os.MkdirAll(item.WorkDir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "extract", "work dir",
			"could not create item work directory", err)
	}

	result, err := h.probe(ctx, h.cfg.Media.FFprobeBinary, item.SourcePath)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "extract", "probe",
			"ffprobe could not inspect the source", err)
	}
	if result.AudioStreamCount() == 0 {
		return services.Wrap(services.ErrValidation, "extract", "probe",
			"source video has no audio stream", nil)
	}
	if result.DurationSeconds() <= 0 {
		return services.Wrap(services.ErrValidation, "extract", "probe",
			"source video reports no duration", nil)
	}

	logger := logging.WithContext(ctx, h.logger)
	logger.Info("extracting audio",
		logging.String("source", item.SourcePath),
		logging.Float64("duration", result.DurationSeconds()),
		logging.Int("audio_streams", result.AudioStreamCount()))

	originalPath := filepath.Join(item.WorkDir, originalAudioFile)
	if err := h.extractor.ExtractOriginalAudio(ctx, item.SourcePath, originalPath); err != nil {
		return services.Wrap(services.ErrExternalTool, "extract", "original audio",
			"full-quality audio extraction failed", err)
	}
	monoPath := filepath.Join(item.WorkDir, analysisAudioFile)
	if err := h.extractor.ExtractAnalysisAudio(ctx, item.SourcePath, monoPath); err != nil {
		return services.Wrap(services.ErrExternalTool, "extract", "analysis audio",
			"analysis audio extraction failed", err)
	}

	item.AudioPath = originalPath
	item.AnalysisAudioPath = monoPath
	item.ProgressMessage = "audio extracted"
	item.ProgressPercent = 100
	return nil
}

func (h *extractHandler) HealthCheck(context.Context) stage.Health {
	if _, err := exec.LookPath(h.cfg.Media.FFmpegBinary); err != nil {
		return stage.Unhealthy("extract", fmt.Sprintf("ffmpeg binary %q not found", h.cfg.Media.FFmpegBinary))
	}
	if _, err := exec.LookPath(h.cfg.Media.FFprobeBinary); err != nil {
		return stage.Unhealthy("extract", fmt.Sprintf("ffprobe binary %q not found", h.cfg.Media.FFprobeBinary))
	}
	return stage.Healthy("extract")
}
