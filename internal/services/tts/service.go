package tts

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/go-audio/wav"
)

// Tempo adjustment bounds. Narration may be sped up or slowed down by at
// most 30% to approach its target duration.
const (
	MaxTempo = 1.3
	MinTempo = 0.7

	// tempoDeadband leaves clips alone when they are already close enough.
	tempoDeadband = 0.02
)

// DefaultBinary is the Coqui TTS entry point used when Config.Binary is empty.
const DefaultBinary = "tts"

// Config captures runtime settings for speech synthesis.
type Config struct {
	// Binary is the tts executable name or path.
	Binary string
	// Model is the Coqui model name (e.g. "tts_models/en/ljspeech/tacotron2-DDC").
	Model string
	// Speaker selects a speaker index for multi-speaker models.
	Speaker string
	// UseCUDA enables GPU synthesis.
	UseCUDA bool
}

// Stretcher re-times an audio clip by a tempo factor. A tempo above 1
// shortens the clip.
type Stretcher interface {
	TimeStretch(ctx context.Context, source, dest string, tempo float64) error
}

// Service synthesizes narration clips.
type Service struct {
	cfg           Config
	stretcher     Stretcher
	commandRunner func(ctx context.Context, name string, args ...string) error
	clipDuration  func(path string) (float64, error)
}

// NewService creates a TTS service. The stretcher may be nil, in which case
// target durations are ignored.
func NewService(cfg Config, stretcher Stretcher) *Service {
	if cfg.Binary == "" {
		cfg.Binary = DefaultBinary
	}
	return &Service{
		cfg:          cfg,
		stretcher:    stretcher,
		clipDuration: wavDuration,
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// WithClipDuration sets a custom duration probe (for testing).
func (s *Service) WithClipDuration(probe func(path string) (float64, error)) {
	if probe != nil {
		s.clipDuration = probe
	}
}

// Synthesize renders text to a WAV file at outPath.
func (s *Service) Synthesize(ctx context.Context, text, outPath string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("tts: empty text")
	}
	if outPath == "" {
		return fmt.Errorf("tts: output path required")
	}

	args := []string{
		"--text", text,
		"--model_name", s.cfg.Model,
		"--out_path", outPath,
	}
	if s.cfg.Speaker != "" {
		args = append(args, "--speaker_idx", s.cfg.Speaker)
	}
	if s.cfg.UseCUDA {
		args = append(args, "--use_cuda", "true")
	} else {
		args = append(args, "--use_cuda", "false")
	}

	if err := s.run(ctx, args...); err != nil {
		return fmt.Errorf("tts synthesize: %w", err)
	}
	if _, err := os.Stat(outPath); err != nil {
		return fmt.Errorf("tts synthesize: no output produced: %w", err)
	}
	return nil
}

// SynthesizeTimed renders text and nudges the clip toward targetDuration
// seconds. The clip is left untouched when it is already close, when no
// stretcher is configured, or when targetDuration is not positive. The
// returned value is the final clip duration.
func (s *Service) SynthesizeTimed(ctx context.Context, text, outPath string, targetDuration float64) (float64, error) {
	if err := s.Synthesize(ctx, text, outPath); err != nil {
		return 0, err
	}

	actual, err := s.clipDuration(outPath)
	if err != nil {
		return 0, fmt.Errorf("tts: measure clip: %w", err)
	}
	if s.stretcher == nil || targetDuration <= 0 || actual <= 0 {
		return actual, nil
	}

	tempo := actual / targetDuration
	if tempo > 1-tempoDeadband && tempo < 1+tempoDeadband {
		return actual, nil
	}
	if tempo > MaxTempo {
		tempo = MaxTempo
	}
	if tempo < MinTempo {
		tempo = MinTempo
	}

	stretched := outPath + ".stretched.wav"
	if err := s.stretcher.TimeStretch(ctx, outPath, stretched, tempo); err != nil {
		return 0, fmt.Errorf("tts: time stretch: %w", err)
	}
	if err := os.Rename(stretched, outPath); err != nil {
		return 0, fmt.Errorf("tts: replace clip: %w", err)
	}

	final, err := s.clipDuration(outPath)
	if err != nil {
		return 0, fmt.Errorf("tts: measure stretched clip: %w", err)
	}
	return final, nil
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

func wavDuration(path string) (float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		return 0, fmt.Errorf("%s is not a valid WAV file", path)
	}
	duration, err := decoder.Duration()
	if err != nil {
		return 0, err
	}
	return duration.Seconds(), nil
}
