package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"descant/internal/mix"
)

// Service provides ffmpeg-backed media operations.
type Service struct {
	cfg           Config
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewService creates an ffmpeg service with the given configuration.
func NewService(cfg Config) *Service {
	if cfg.Binary == "" {
		cfg.Binary = DefaultBinary
	}
	return &Service{cfg: cfg}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

func (s *Service) run(ctx context.Context, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, s.cfg.Binary, args...)
	}
	cmd := exec.CommandContext(ctx, s.cfg.Binary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", s.cfg.Binary, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// ExtractAnalysisAudio extracts the first audio stream as mono 16 kHz PCM,
// the shape voice-activity detection and transcription expect.
func (s *Service) ExtractAnalysisAudio(ctx context.Context, source, dest string) error {
	if source == "" || dest == "" {
		return fmt.Errorf("extract analysis audio: source and dest required")
	}
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-map", "0:a:0",
		"-vn", "-sn", "-dn",
		"-ac", "1",
		"-ar", fmt.Sprintf("%d", AnalysisSampleRate),
		"-c:a", "pcm_s16le",
		dest,
	}
	if err := s.run(ctx, args...); err != nil {
		return fmt.Errorf("ffmpeg extract analysis audio: %w", err)
	}
	return nil
}

// ExtractOriginalAudio extracts the first audio stream at its native channel
// layout and sample rate as PCM, for mixing.
func (s *Service) ExtractOriginalAudio(ctx context.Context, source, dest string) error {
	if source == "" || dest == "" {
		return fmt.Errorf("extract original audio: source and dest required")
	}
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-map", "0:a:0",
		"-vn", "-sn", "-dn",
		"-c:a", "pcm_s16le",
		dest,
	}
	if err := s.run(ctx, args...); err != nil {
		return fmt.Errorf("ffmpeg extract original audio: %w", err)
	}
	return nil
}

// GrabFrame captures a single video frame at the given timestamp.
func (s *Service) GrabFrame(ctx context.Context, source string, timestamp float64, dest string) error {
	if source == "" || dest == "" {
		return fmt.Errorf("grab frame: source and dest required")
	}
	if timestamp < 0 {
		timestamp = 0
	}
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-ss", formatSeconds(timestamp),
		"-i", source,
		"-frames:v", "1",
		"-q:v", "2",
		dest,
	}
	if err := s.run(ctx, args...); err != nil {
		return fmt.Errorf("ffmpeg grab frame: %w", err)
	}
	return nil
}

// TimeStretch re-times an audio clip by the given tempo factor. A tempo of
// 1.2 plays 20% faster (shorter), 0.8 plays slower (longer).
func (s *Service) TimeStretch(ctx context.Context, source, dest string, tempo float64) error {
	if source == "" || dest == "" {
		return fmt.Errorf("time stretch: source and dest required")
	}
	if tempo < MinTempo || tempo > MaxTempo {
		return fmt.Errorf("time stretch: tempo %.3f outside supported range", tempo)
	}
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-filter:a", fmt.Sprintf("atempo=%.6f", tempo),
		dest,
	}
	if err := s.run(ctx, args...); err != nil {
		return fmt.Errorf("ffmpeg time stretch: %w", err)
	}
	return nil
}

// TranscodeToMP3 encodes a WAV file as MP3 at the export bitrate.
func (s *Service) TranscodeToMP3(ctx context.Context, source, dest string) error {
	if source == "" || dest == "" {
		return fmt.Errorf("transcode: source and dest required")
	}
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-codec:a", MP3Codec,
		"-b:a", MP3Bitrate,
		dest,
	}
	if err := s.run(ctx, args...); err != nil {
		return fmt.Errorf("ffmpeg transcode: %w", err)
	}
	return nil
}

// MixTranscoder adapts the service for use as the mixer's export step.
func (s *Service) MixTranscoder() mix.TranscodeFunc {
	return func(ctx context.Context, wavPath, outputPath string) error {
		return s.TranscodeToMP3(ctx, wavPath, outputPath)
	}
}

func formatSeconds(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.3f", v), "0"), ".")
}
