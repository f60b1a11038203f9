package narration

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"descant/internal/logging"
	"descant/internal/mix"
	"descant/internal/timeline"
)

// Synthesizer renders text to a WAV clip nudged toward a target duration.
type Synthesizer interface {
	SynthesizeTimed(ctx context.Context, text, outPath string, targetDuration float64) (float64, error)
}

// Generator produces narration clips for scenes.
type Generator struct {
	tts    Synthesizer
	logger *slog.Logger
}

// New constructs a Generator.
func New(tts Synthesizer, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Generator{tts: tts, logger: logger}
}

// ProcessScenes synthesizes narration for every scene carrying narration
// text and returns a copy of scenes with NarrationPath filled in. Scenes
// whose synthesis fails keep an empty path and are logged.
func (g *Generator) ProcessScenes(ctx context.Context, scenes []timeline.Scene, outputDir string) ([]timeline.Scene, error) {
	if outputDir == "" {
		return nil, fmt.Errorf("narration: output directory required")
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("narration: ensure output dir: %w", err)
	}

	out := make([]timeline.Scene, len(scenes))
	copy(out, scenes)

	generated := 0
	for i := range out {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		scene := &out[i]
		if scene.NarrationText == "" {
			continue
		}

		clipPath := filepath.Join(outputDir, fmt.Sprintf("narration_%.2f.wav", scene.Start))
		duration, err := g.tts.SynthesizeTimed(ctx, scene.NarrationText, clipPath, scene.Duration())
		if err != nil {
			g.logger.Warn("narration synthesis failed",
				logging.Int("scene_id", scene.ID),
				logging.Float64("start", scene.Start),
				logging.Error(err))
			scene.NarrationPath = ""
			continue
		}
		scene.NarrationPath = clipPath
		generated++
		g.logger.Debug("narration generated",
			logging.Int("scene_id", scene.ID),
			logging.String("clip", clipPath),
			logging.Float64("duration", duration))
	}

	g.logger.Info("narration generation complete",
		logging.Int("scenes", len(out)),
		logging.Int("generated", generated))
	return out, nil
}

// Segments converts narrated scenes into mixer segments, dropping scenes
// without a clip.
func Segments(scenes []timeline.Scene) []mix.Segment {
	segments := make([]mix.Segment, 0, len(scenes))
	for _, scene := range scenes {
		if scene.NarrationPath == "" {
			continue
		}
		segments = append(segments, mix.Segment{
			StartTime:     scene.Start,
			EndTime:       scene.End,
			NarrationPath: scene.NarrationPath,
		})
	}
	return segments
}
