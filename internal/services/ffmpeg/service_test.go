package ffmpeg_test

import (
	"context"
	"strings"
	"testing"

	"descant/internal/services/ffmpeg"
)

type capturedCommand struct {
	name string
	args []string
}

func captureRunner(captured *[]capturedCommand) func(ctx context.Context, name string, args ...string) error {
	return func(_ context.Context, name string, args ...string) error {
		*captured = append(*captured, capturedCommand{name: name, args: args})
		return nil
	}
}

func TestExtractAnalysisAudioArgs(t *testing.T) {
	var captured []capturedCommand
	svc := ffmpeg.NewService(ffmpeg.Config{Binary: "ffmpeg-test"})
	svc.WithCommandRunner(captureRunner(&captured))

	if err := svc.ExtractAnalysisAudio(context.Background(), "movie.mkv", "audio.wav"); err != nil {
		t.Fatalf("ExtractAnalysisAudio: %v", err)
	}
	if len(captured) != 1 {
		t.Fatalf("expected 1 command, got %d", len(captured))
	}
	cmd := captured[0]
	if cmd.name != "ffmpeg-test" {
		t.Fatalf("unexpected binary: %s", cmd.name)
	}
	joined := strings.Join(cmd.args, " ")
	for _, want := range []string{"-map 0:a:0", "-ac 1", "-ar 16000", "-c:a pcm_s16le", "audio.wav"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("missing %q in args %q", want, joined)
		}
	}
}

func TestExtractOriginalAudioKeepsChannels(t *testing.T) {
	var captured []capturedCommand
	svc := ffmpeg.NewService(ffmpeg.Config{})
	svc.WithCommandRunner(captureRunner(&captured))

	if err := svc.ExtractOriginalAudio(context.Background(), "movie.mkv", "orig.wav"); err != nil {
		t.Fatalf("ExtractOriginalAudio: %v", err)
	}
	joined := strings.Join(captured[0].args, " ")
	if strings.Contains(joined, "-ac ") || strings.Contains(joined, "-ar ") {
		t.Fatalf("original extraction must not resample or downmix: %q", joined)
	}
}

func TestGrabFrameClampsNegativeTimestamp(t *testing.T) {
	var captured []capturedCommand
	svc := ffmpeg.NewService(ffmpeg.Config{})
	svc.WithCommandRunner(captureRunner(&captured))

	if err := svc.GrabFrame(context.Background(), "movie.mkv", -2.5, "frame.jpg"); err != nil {
		t.Fatalf("GrabFrame: %v", err)
	}
	joined := strings.Join(captured[0].args, " ")
	if !strings.Contains(joined, "-ss 0 ") {
		t.Fatalf("expected clamped timestamp in %q", joined)
	}
	if !strings.Contains(joined, "-frames:v 1") {
		t.Fatalf("expected single frame grab in %q", joined)
	}
}

func TestTimeStretchRejectsOutOfRangeTempo(t *testing.T) {
	svc := ffmpeg.NewService(ffmpeg.Config{})
	svc.WithCommandRunner(captureRunner(&[]capturedCommand{}))

	if err := svc.TimeStretch(context.Background(), "in.wav", "out.wav", 2.5); err == nil {
		t.Fatal("expected error for tempo above range")
	}
	if err := svc.TimeStretch(context.Background(), "in.wav", "out.wav", 0.3); err == nil {
		t.Fatal("expected error for tempo below range")
	}
}

func TestTimeStretchBuildsAtempoFilter(t *testing.T) {
	var captured []capturedCommand
	svc := ffmpeg.NewService(ffmpeg.Config{})
	svc.WithCommandRunner(captureRunner(&captured))

	if err := svc.TimeStretch(context.Background(), "in.wav", "out.wav", 1.25); err != nil {
		t.Fatalf("TimeStretch: %v", err)
	}
	joined := strings.Join(captured[0].args, " ")
	if !strings.Contains(joined, "atempo=1.250000") {
		t.Fatalf("expected atempo filter in %q", joined)
	}
}

func TestTranscodeToMP3UsesExportSettings(t *testing.T) {
	var captured []capturedCommand
	svc := ffmpeg.NewService(ffmpeg.Config{})
	svc.WithCommandRunner(captureRunner(&captured))

	if err := svc.TranscodeToMP3(context.Background(), "mix.wav", "movie.mp3"); err != nil {
		t.Fatalf("TranscodeToMP3: %v", err)
	}
	joined := strings.Join(captured[0].args, " ")
	for _, want := range []string{"-codec:a libmp3lame", "-b:a 192k", "movie.mp3"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("missing %q in %q", want, joined)
		}
	}
}

func TestMixTranscoderDelegates(t *testing.T) {
	var captured []capturedCommand
	svc := ffmpeg.NewService(ffmpeg.Config{})
	svc.WithCommandRunner(captureRunner(&captured))

	transcode := svc.MixTranscoder()
	if err := transcode(context.Background(), "assembled.wav", "final.mp3"); err != nil {
		t.Fatalf("transcode: %v", err)
	}
	if len(captured) != 1 {
		t.Fatalf("expected 1 command, got %d", len(captured))
	}
	joined := strings.Join(captured[0].args, " ")
	if !strings.Contains(joined, "assembled.wav") || !strings.Contains(joined, "final.mp3") {
		t.Fatalf("unexpected args: %q", joined)
	}
}
