package describer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"descant/internal/logging"
	"descant/internal/timeline"
)

// NoVisualInformation is recorded when every frame caption fails.
const NoVisualInformation = "No visual information available"

// DefaultFramesPerScene is the sample count used when none is configured.
const DefaultFramesPerScene = 3

// FrameGrabber extracts a single video frame at a timestamp.
type FrameGrabber interface {
	GrabFrame(ctx context.Context, source string, timestamp float64, dest string) error
}

// Captioner produces a description of an image file.
type Captioner interface {
	CaptionFrame(ctx context.Context, path string) (string, error)
}

// Describer fills scene descriptions from sampled video frames.
type Describer struct {
	frames         FrameGrabber
	captioner      Captioner
	framesPerScene int
	logger         *slog.Logger
}

// Option customizes a Describer.
type Option func(*Describer)

// WithFramesPerScene overrides the per-scene sample count.
func WithFramesPerScene(n int) Option {
	return func(d *Describer) {
		if n > 0 {
			d.framesPerScene = n
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Describer) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// New constructs a Describer.
func New(frames FrameGrabber, captioner Captioner, opts ...Option) *Describer {
	d := &Describer{
		frames:         frames,
		captioner:      captioner,
		framesPerScene: DefaultFramesPerScene,
		logger:         logging.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DescribeScenes returns a copy of scenes with visual descriptions filled in.
// Dialogue carries its own information, so only non-language scenes are
// described; per-scene failures are logged and leave the original label in
// place. workDir receives the sampled frame images.
func (d *Describer) DescribeScenes(ctx context.Context, videoPath string, scenes []timeline.Scene, workDir string) ([]timeline.Scene, error) {
	if videoPath == "" {
		return nil, fmt.Errorf("describe: video path required")
	}
	if _, err := os.Stat(videoPath); err != nil {
		return nil, fmt.Errorf("describe: video not found: %w", err)
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, fmt.Errorf("describe: ensure work dir: %w", err)
	}

	out := make([]timeline.Scene, len(scenes))
	copy(out, scenes)

	described := 0
	for i := range out {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !out[i].NonLanguage() {
			continue
		}
		description, err := d.describeScene(ctx, videoPath, out[i], workDir)
		if err != nil {
			d.logger.Warn("scene description failed",
				logging.Int("scene_id", out[i].ID),
				logging.Float64("start", out[i].Start),
				logging.Error(err))
			continue
		}
		out[i].Description = description
		out[i].NarrationText = description
		described++
	}

	d.logger.Info("scene description complete",
		logging.Int("scenes", len(out)),
		logging.Int("described", described))
	return out, nil
}

func (d *Describer) describeScene(ctx context.Context, videoPath string, scene timeline.Scene, workDir string) (string, error) {
	timestamps := sampleTimestamps(scene.Start, scene.End, d.framesPerScene)
	if len(timestamps) == 0 {
		return "", fmt.Errorf("scene %d has no sampleable range", scene.ID)
	}

	var captions []string
	for frameIdx, ts := range timestamps {
		framePath := filepath.Join(workDir, fmt.Sprintf("scene_%03d_frame_%d.jpg", scene.ID, frameIdx))
		if err := d.frames.GrabFrame(ctx, videoPath, ts, framePath); err != nil {
			d.logger.Debug("frame grab failed",
				logging.Int("scene_id", scene.ID),
				logging.Float64("timestamp", ts),
				logging.Error(err))
			continue
		}
		caption, err := d.captioner.CaptionFrame(ctx, framePath)
		if err != nil {
			d.logger.Debug("frame caption failed",
				logging.Int("scene_id", scene.ID),
				logging.Float64("timestamp", ts),
				logging.Error(err))
			continue
		}
		if caption != "" {
			captions = append(captions, caption)
		}
	}

	if len(captions) == 0 {
		return NoVisualInformation, nil
	}

	// The longest caption is usually the most informative one.
	best := captions[0]
	for _, caption := range captions[1:] {
		if len(caption) > len(best) {
			best = caption
		}
	}
	return best, nil
}

// sampleTimestamps spreads n timestamps evenly across [start, end],
// inclusive of both endpoints. A single sample lands on the midpoint.
func sampleTimestamps(start, end float64, n int) []float64 {
	if end <= start || n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{start + (end-start)/2}
	}
	out := make([]float64, 0, n)
	span := end - start
	for i := 0; i < n; i++ {
		out = append(out, start+float64(i)*span/float64(n-1))
	}
	return out
}
