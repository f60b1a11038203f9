package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"descant/internal/logging"
	"descant/internal/queue"
	"descant/internal/services"
	"descant/internal/stage"
	"descant/internal/timeline"
)

// segmentHandler carves the program into contiguous scenes around the
// non-dialogue intervals.
type segmentHandler struct {
	logger *slog.Logger
}

func newSegmentHandler(logger *slog.Logger) *segmentHandler {
	return &segmentHandler{logger: logging.NewComponentLogger(logger, "segment")}
}

func (h *segmentHandler) Prepare(_ context.Context, item *queue.Item) error {
	if item.WorkDir == "" {
		return services.Wrap(services.ErrValidation, "segment", "prepare",
			"queue item has no work directory", nil)
	}
	if _, err := os.Stat(analysisPath(item)); err != nil {
		return services.Wrap(services.ErrNotFound, "segment", "prepare",
			"analysis artifact is missing; run analysis first", err)
	}
	return nil
}

func (h *segmentHandler) Execute(ctx context.Context, item *queue.Item) error {
	artifact, err := loadAnalysis(item)
	if err != nil {
		return services.Wrap(services.ErrTransient, "segment", "load analysis", "", err)
	}

	scenes, err := timeline.Segment(artifact.NonDialogue, artifact.Transcript, artifact.Duration)
	if err != nil {
		return services.Wrap(services.ErrValidation, "segment", "scenes",
			"scene segmentation failed", err)
	}

	payload, err := EncodeScenes(scenes)
	if err != nil {
		return services.Wrap(services.ErrTransient, "segment", "persist", "", err)
	}
	item.ScenesJSON = payload

	narratable := 0
	for _, scene := range scenes {
		if scene.NonLanguage() {
			narratable++
		}
	}
	logging.WithContext(ctx, h.logger).Info("scenes segmented",
		logging.Int("scenes", len(scenes)),
		logging.Int("non_language", narratable))
	item.ProgressMessage = fmt.Sprintf("%d scenes (%d to narrate)", len(scenes), narratable)
	item.ProgressPercent = 100
	return nil
}

func (h *segmentHandler) HealthCheck(context.Context) stage.Health {
	return stage.Healthy("segment")
}
