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
	"descant/internal/queue"
	"descant/internal/services"
	"descant/internal/stage"
	"descant/internal/timeline"
)

type sceneDescriber interface {
	DescribeScenes(ctx context.Context, videoPath string, scenes []timeline.Scene, workDir string) ([]timeline.Scene, error)
}

type narrationRenderer interface {
	ProcessScenes(ctx context.Context, scenes []timeline.Scene, outputDir string) ([]timeline.Scene, error)
}

// narrateHandler captions the non-language scenes and synthesizes a narration
// clip for each one.
type narrateHandler struct {
	cfg      *config.Config
	describe sceneDescriber
	render   narrationRenderer
	logger   *slog.Logger
}

func newNarrateHandler(cfg *config.Config, describe sceneDescriber, render narrationRenderer, logger *slog.Logger) *narrateHandler {
	return &narrateHandler{
		cfg:      cfg,
		describe: describe,
		render:   render,
		logger:   logging.NewComponentLogger(logger, "narrate"),
	}
}

func (h *narrateHandler) Prepare(_ context.Context, item *queue.Item) error {
	if item.ScenesJSON == "" {
		return services.Wrap(services.ErrValidation, "narrate", "prepare",
			"queue item has no scene timeline; run segmentation first", nil)
	}
	if item.WorkDir == "" {
		return services.Wrap(services.ErrValidation, "narrate", "prepare",
			"queue item has no work directory", nil)
	}
	return nil
}

func (h *narrateHandler) Execute(ctx context.Context, item *queue.Item) error {
	scenes, err := DecodeScenes(item.ScenesJSON)
	if err != nil {
		return services.Wrap(services.ErrValidation, "narrate", "scenes",
			"stored scene timeline is unreadable", err)
	}

	frameDir := filepath.Join(item.WorkDir, framesDir)
	if err := os.MkdirAll(frameDir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "narrate", "frames dir", "", err)
	}
	described, err := h.describe.DescribeScenes(ctx, item.SourcePath, scenes, frameDir)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "narrate", "describe",
			"scene description failed", err)
	}
	item.ProgressMessage = "scenes described"
	item.ProgressPercent = 50

	narrationDir := filepath.Join(item.WorkDir, narrationsDir)
	if err := os.MkdirAll(narrationDir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "narrate", "narrations dir", "", err)
	}
	narrated, err := h.render.ProcessScenes(ctx, described, narrationDir)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "narrate", "synthesize",
			"narration synthesis failed", err)
	}

	payload, err := EncodeScenes(narrated)
	if err != nil {
		return services.Wrap(services.ErrTransient, "narrate", "persist", "", err)
	}
	item.ScenesJSON = payload

	clips := 0
	for _, scene := range narrated {
		if scene.NarrationPath != "" {
			clips++
		}
	}
	logging.WithContext(ctx, h.logger).Info("narration generated",
		logging.Int("clips", clips))
	item.ProgressMessage = fmt.Sprintf("%d narration clips ready", clips)
	item.ProgressPercent = 100
	return nil
}

func (h *narrateHandler) HealthCheck(context.Context) stage.Health {
	if h.cfg.Caption.APIKey == "" {
		return stage.Unhealthy("narrate", "caption API key is not configured")
	}
	if _, err := exec.LookPath(h.cfg.TTS.Binary); err != nil {
		return stage.Unhealthy("narrate", fmt.Sprintf("tts binary %q not found", h.cfg.TTS.Binary))
	}
	return stage.Healthy("narrate")
}
