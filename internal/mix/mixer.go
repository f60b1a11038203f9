package mix

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// DefaultBackgroundReductionDB is how much the original track is ducked
// while a narration plays.
const DefaultBackgroundReductionDB = -15.0

// TranscodeFunc converts the assembled WAV into the requested output
// container. The mixer's export settings (192k libmp3lame for MP3 output)
// live in the ffmpeg service that supplies this function.
type TranscodeFunc func(ctx context.Context, wavPath, outputPath string) error

// Mixer overlays narration clips onto an original soundtrack.
type Mixer struct {
	logger    *slog.Logger
	transcode TranscodeFunc
}

// Option customizes a Mixer.
type Option func(*Mixer)

// WithLogger sets the mixer's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Mixer) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithTranscoder sets the converter used for non-WAV output paths.
func WithTranscoder(fn TranscodeFunc) Option {
	return func(m *Mixer) {
		m.transcode = fn
	}
}

// New constructs a Mixer.
func New(opts ...Option) *Mixer {
	m := &Mixer{logger: slog.Default()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// placedClip is one slice of the mixed timeline, tagged with its absolute
// start offset in seconds.
type placedClip struct {
	start float64
	clip  *clip
}

// Mix composes originalAudio and the given narration segments into
// outputPath.
//
// The original audio must exist; a missing file is the one precondition
// that returns an error. Segments without a readable narration clip are
// skipped so the mix proceeds with whatever narration is usable. Every
// other failure is logged and reported through the boolean so the caller
// can fall back to the unmodified original track.
//
// During each narration the background is attenuated by bgReductionDB and
// both signals play simultaneously; outside narration windows the original
// audio passes through verbatim. The composed track's duration equals the
// original's exactly.
func (m *Mixer) Mix(ctx context.Context, originalAudio string, segments []Segment, outputPath string, bgReductionDB, narrationAdjustDB float64) (bool, error) {
	if _, err := os.Stat(originalAudio); err != nil {
		return false, fmt.Errorf("original audio not found: %s: %w", originalAudio, err)
	}

	original, err := loadClip(originalAudio)
	if err != nil {
		m.logger.Error("load original audio failed", "path", originalAudio, "error", err)
		return false, nil
	}
	released := []*clip{original}
	defer func() {
		// Release must never abort an otherwise-successful mix.
		for i := len(released) - 1; i >= 0; i-- {
			released[i].release()
		}
	}()

	usable := make([]Segment, 0, len(segments))
	for _, seg := range segments {
		if seg.NarrationPath == "" {
			continue
		}
		if _, statErr := os.Stat(seg.NarrationPath); statErr != nil {
			m.logger.Warn("skipping segment without narration audio",
				"start", seg.StartTime, "path", seg.NarrationPath)
			continue
		}
		usable = append(usable, seg)
	}
	usable = sortByStart(usable)
	m.logger.Info("mixing narration segments", "count", len(usable), "output", outputPath)

	placed := make([]placedClip, 0, 3*len(usable)+1)
	lastEndTime := 0.0

	for i, seg := range usable {
		if ctx.Err() != nil {
			m.logger.Error("mix canceled", "error", ctx.Err())
			return false, nil
		}

		// Original audio between narrations is carried over untouched.
		if seg.StartTime > lastEndTime {
			part := original.slice(lastEndTime, seg.StartTime)
			released = append(released, part)
			placed = append(placed, placedClip{start: lastEndTime, clip: part})
		}

		narration, loadErr := loadClip(seg.NarrationPath)
		if loadErr != nil {
			m.logger.Error("load narration failed", "path", seg.NarrationPath, "error", loadErr)
			return false, nil
		}
		released = append(released, narration)

		// The synthesized clip's real length decides the overlay window,
		// not the scene's estimate.
		endTime := seg.StartTime + narration.duration()

		background := original.slice(seg.StartTime, endTime)
		released = append(released, background)
		ducked := background.withGain(bgReductionDB)
		if ducked != background {
			released = append(released, ducked)
		}

		aligned := narration.resampled(original.rate)
		if aligned != narration {
			released = append(released, aligned)
		}
		adjusted := aligned.withGain(narrationAdjustDB)
		if adjusted != aligned {
			released = append(released, adjusted)
		}

		placed = append(placed,
			placedClip{start: seg.StartTime, clip: ducked},
			placedClip{start: seg.StartTime, clip: adjusted},
		)
		m.logger.Debug("segment prepared", "index", i+1, "total", len(usable),
			"start", seg.StartTime, "narration_duration", narration.duration())
		lastEndTime = endTime
	}

	if lastEndTime < original.duration() {
		tail := original.slice(lastEndTime, original.duration())
		released = append(released, tail)
		placed = append(placed, placedClip{start: lastEndTime, clip: tail})
	}

	composed := compose(placed, original)
	released = append(released, composed)

	if err := m.export(ctx, composed, outputPath); err != nil {
		m.logger.Error("mix export failed", "output", outputPath, "error", err)
		return false, nil
	}

	m.logger.Info("audio mixing complete", "output", outputPath)
	return true, nil
}

// compose flattens the placed slices into one track whose duration equals
// the original's exactly. Overlapping slices sum; the result is clamped on
// encode.
func compose(placed []placedClip, original *clip) *clip {
	numChannels := len(original.channels)
	frames := original.frames()
	channels := make([][]float64, numChannels)
	for ch := range channels {
		channels[ch] = make([]float64, frames)
	}

	for _, p := range placed {
		offset := int(float64(p.clip.rate)*p.start + 0.5)
		for ch := 0; ch < numChannels; ch++ {
			src := channelFor(p.clip, ch)
			if src == nil {
				continue
			}
			for i, sample := range src {
				at := offset + i
				if at >= frames {
					break
				}
				channels[ch][at] += sample
			}
		}
	}
	return &clip{channels: channels, rate: original.rate}
}

// channelFor maps a source clip channel onto output channel ch, spreading
// mono narration across every output channel.
func channelFor(c *clip, ch int) []float64 {
	if len(c.channels) == 0 {
		return nil
	}
	if ch < len(c.channels) {
		return c.channels[ch]
	}
	return c.channels[0]
}

// export writes the composed track. Assembly lands in a temporary file
// first; outputPath only appears once the full track has been encoded.
func (m *Mixer) export(ctx context.Context, composed *clip, outputPath string) error {
	if dir := filepath.Dir(outputPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure output dir: %w", err)
		}
	}

	tmpWAV := outputPath + ".assembling.wav"
	if err := writeWAV(tmpWAV, composed); err != nil {
		_ = os.Remove(tmpWAV)
		return err
	}

	if strings.EqualFold(filepath.Ext(outputPath), ".wav") {
		return os.Rename(tmpWAV, outputPath)
	}
	if m.transcode == nil {
		_ = os.Remove(tmpWAV)
		return fmt.Errorf("no transcoder configured for %s output", filepath.Ext(outputPath))
	}
	defer os.Remove(tmpWAV)
	if err := m.transcode(ctx, tmpWAV, outputPath); err != nil {
		_ = os.Remove(outputPath)
		return fmt.Errorf("transcode output: %w", err)
	}
	return nil
}
