package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"descant/internal/config"
	"descant/internal/logging"
	"descant/internal/mix"
	"descant/internal/narration"
	"descant/internal/queue"
	"descant/internal/services"
	"descant/internal/stage"
)

type trackMixer interface {
	Mix(ctx context.Context, originalAudio string, segments []mix.Segment, outputPath string, bgReductionDB, narrationAdjustDB float64) (bool, error)
}

// mixHandler overlays the narration clips onto the original soundtrack and
// writes the final described track to the output directory.
type mixHandler struct {
	cfg    *config.Config
	mixer  trackMixer
	logger *slog.Logger
}

func newMixHandler(cfg *config.Config, mixer trackMixer, logger *slog.Logger) *mixHandler {
	return &mixHandler{
		cfg:    cfg,
		mixer:  mixer,
		logger: logging.NewComponentLogger(logger, "mix"),
	}
}

func (h *mixHandler) Prepare(_ context.Context, item *queue.Item) error {
	if item.ScenesJSON == "" {
		return services.Wrap(services.ErrValidation, "mix", "prepare",
			"queue item has no scene timeline; run narration first", nil)
	}
	if item.AudioPath == "" {
		return services.Wrap(services.ErrValidation, "mix", "prepare",
			"queue item has no extracted soundtrack", nil)
	}
	if _, err := os.Stat(item.AudioPath); err != nil {
		return services.Wrap(services.ErrNotFound, "mix", "prepare",
			fmt.Sprintf("extracted soundtrack is missing: %s", item.AudioPath), err)
	}
	return nil
}

func (h *mixHandler) Execute(ctx context.Context, item *queue.Item) error {
	scenes, err := DecodeScenes(item.ScenesJSON)
	if err != nil {
		return services.Wrap(services.ErrValidation, "mix", "scenes",
			"stored scene timeline is unreadable", err)
	}

	segments := narration.Segments(scenes)
	segments = mix.AdjustSegmentTiming(segments, h.cfg.Mix.MinNarrationGap)
	if len(segments) == 0 {
		logging.WithContext(ctx, h.logger).Warn("no narration segments to mix; output will match the original soundtrack")
	}

	if err := os.MkdirAll(h.cfg.Paths.OutputDir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "mix", "output dir", "", err)
	}
	outputPath := filepath.Join(h.cfg.Paths.OutputDir, item.Title+".mp3")

	ok, err := h.mixer.Mix(ctx, item.AudioPath, segments, outputPath,
		h.cfg.Mix.BackgroundReductionDB, h.cfg.Mix.NarrationAdjustDB)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return services.Wrap(services.ErrNotFound, "mix", "mix",
				"mix input audio is missing", err)
		}
		return services.Wrap(services.ErrExternalTool, "mix", "mix",
			"audio mixing failed", err)
	}
	if !ok {
		return services.Wrap(services.ErrExternalTool, "mix", "mix",
			"audio mixing produced no output", nil)
	}

	item.OutputPath = outputPath
	logging.WithContext(ctx, h.logger).Info("described track written",
		logging.String("output", outputPath),
		logging.Int("segments", len(segments)))
	item.ProgressMessage = "described track written"
	item.ProgressPercent = 100
	return nil
}

func (h *mixHandler) HealthCheck(context.Context) stage.Health {
	if h.cfg.Mix.BackgroundReductionDB > 0 {
		return stage.Unhealthy("mix", "background reduction must be expressed in negative dB")
	}
	return stage.Healthy("mix")
}
