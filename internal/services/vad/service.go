package vad

import (
	"context"
	"fmt"
	"os"

	"github.com/go-audio/wav"
	"github.com/streamer45/silero-vad-go/speech"

	"descant/internal/interval"
)

// RequiredSampleRate is the only sample rate the Silero model accepts.
const RequiredSampleRate = 16000

// Detection constants tuned for film audio rather than conversation.
const (
	minSilenceDurationMs = 100
	speechPadMs          = 30
)

// Config captures runtime settings for speech detection.
type Config struct {
	// ModelPath locates the Silero ONNX model on disk.
	ModelPath string
	// Threshold is the speech probability cutoff, between 0 and 1.
	Threshold float64
}

// Result is the outcome of analyzing one audio file.
type Result struct {
	// Speech lists detected speech spans in seconds, ordered by start.
	Speech []interval.Span
	// Duration is the audio length in seconds derived from the PCM data.
	Duration float64
}

type detector interface {
	Detect(pcm []float32) ([]speech.Segment, error)
	Destroy() error
}

// Service runs Silero voice-activity detection over WAV files.
type Service struct {
	cfg         Config
	newDetector func(cfg speech.DetectorConfig) (detector, error)
}

// NewService creates a VAD service with the given configuration.
func NewService(cfg Config) *Service {
	if cfg.Threshold <= 0 || cfg.Threshold >= 1 {
		cfg.Threshold = 0.5
	}
	return &Service{
		cfg: cfg,
		newDetector: func(dc speech.DetectorConfig) (detector, error) {
			return speech.NewDetector(dc)
		},
	}
}

// WithDetectorFactory sets a custom detector constructor (for testing).
func (s *Service) WithDetectorFactory(factory func(cfg speech.DetectorConfig) (detector, error)) {
	s.newDetector = factory
}

// DetectSpeech analyzes the WAV file at path and returns the speech spans
// found in it. The file must be mono PCM at 16 kHz.
func (s *Service) DetectSpeech(ctx context.Context, path string) (Result, error) {
	var result Result

	pcm, sampleRate, err := readMonoPCM(path)
	if err != nil {
		return result, err
	}
	if sampleRate != RequiredSampleRate {
		return result, fmt.Errorf("vad: expected %d Hz audio, got %d (resample with ffmpeg -ar %d)", RequiredSampleRate, sampleRate, RequiredSampleRate)
	}
	result.Duration = float64(len(pcm)) / float64(sampleRate)

	if err := ctx.Err(); err != nil {
		return result, err
	}

	sd, err := s.newDetector(speech.DetectorConfig{
		ModelPath:            s.cfg.ModelPath,
		SampleRate:           RequiredSampleRate,
		Threshold:            float32(s.cfg.Threshold),
		MinSilenceDurationMs: minSilenceDurationMs,
		SpeechPadMs:          speechPadMs,
	})
	if err != nil {
		return result, fmt.Errorf("vad: create detector: %w", err)
	}
	defer sd.Destroy() //nolint:errcheck

	segments, err := sd.Detect(pcm)
	if err != nil {
		return result, fmt.Errorf("vad: detect: %w", err)
	}

	spans := make([]interval.Span, 0, len(segments))
	for _, seg := range segments {
		end := seg.SpeechEndAt
		// An end of zero means speech ran to the end of the file.
		if end <= 0 {
			end = result.Duration
		}
		if end <= seg.SpeechStartAt {
			continue
		}
		spans = append(spans, interval.Span{Start: seg.SpeechStartAt, End: end})
	}
	result.Speech = interval.Sort(spans)
	return result, nil
}

func readMonoPCM(path string) ([]float32, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("vad: open audio: %w", err)
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		return nil, 0, fmt.Errorf("vad: %s is not a valid WAV file", path)
	}
	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("vad: read PCM: %w", err)
	}
	if buf.Format.NumChannels != 1 {
		return nil, 0, fmt.Errorf("vad: expected mono audio, got %d channels (preprocess with -ac 1)", buf.Format.NumChannels)
	}
	return buf.AsFloat32Buffer().Data, buf.Format.SampleRate, nil
}
