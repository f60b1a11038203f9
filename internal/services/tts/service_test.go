package tts_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"descant/internal/services/tts"
)

type fakeStretcher struct {
	calls []float64
	dest  string
}

func (f *fakeStretcher) TimeStretch(_ context.Context, _, dest string, tempo float64) error {
	f.calls = append(f.calls, tempo)
	f.dest = dest
	return os.WriteFile(dest, []byte("stretched"), 0o644)
}

func synthRunner(t *testing.T) func(ctx context.Context, name string, args ...string) error {
	t.Helper()
	return func(_ context.Context, _ string, args ...string) error {
		for i, arg := range args {
			if arg == "--out_path" && i+1 < len(args) {
				return os.WriteFile(args[i+1], []byte("wav"), 0o644)
			}
		}
		t.Fatal("no --out_path in args")
		return nil
	}
}

func TestSynthesizeBuildsCoquiArgs(t *testing.T) {
	out := filepath.Join(t.TempDir(), "clip.wav")
	svc := tts.NewService(tts.Config{Model: "tts_models/en/vctk/vits", Speaker: "p376"}, nil)

	var gotName string
	var gotArgs []string
	svc.WithCommandRunner(func(_ context.Context, name string, args ...string) error {
		gotName = name
		gotArgs = args
		return os.WriteFile(out, []byte("wav"), 0o644)
	})

	if err := svc.Synthesize(context.Background(), "A door creaks open.", out); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if gotName != "tts" {
		t.Fatalf("unexpected binary: %q", gotName)
	}
	joined := strings.Join(gotArgs, " ")
	for _, want := range []string{"--text A door creaks open.", "--model_name tts_models/en/vctk/vits", "--speaker_idx p376", "--use_cuda false"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("missing %q in args %q", want, joined)
		}
	}
}

func TestSynthesizeFailsWhenNoOutputAppears(t *testing.T) {
	svc := tts.NewService(tts.Config{}, nil)
	svc.WithCommandRunner(func(context.Context, string, ...string) error { return nil })

	err := svc.Synthesize(context.Background(), "text", filepath.Join(t.TempDir(), "missing.wav"))
	if err == nil || !strings.Contains(err.Error(), "no output produced") {
		t.Fatalf("expected missing output error, got %v", err)
	}
}

func TestSynthesizeRejectsEmptyText(t *testing.T) {
	svc := tts.NewService(tts.Config{}, nil)
	if err := svc.Synthesize(context.Background(), "   ", "out.wav"); err == nil {
		t.Fatal("expected empty text error")
	}
}

func TestSynthesizeTimedStretchesLongClip(t *testing.T) {
	out := filepath.Join(t.TempDir(), "clip.wav")
	stretcher := &fakeStretcher{}
	svc := tts.NewService(tts.Config{}, stretcher)
	svc.WithCommandRunner(synthRunner(t))

	durations := []float64{6.0, 5.0}
	svc.WithClipDuration(func(string) (float64, error) {
		d := durations[0]
		if len(durations) > 1 {
			durations = durations[1:]
		}
		return d, nil
	})

	final, err := svc.SynthesizeTimed(context.Background(), "text", out, 5.0)
	if err != nil {
		t.Fatalf("SynthesizeTimed: %v", err)
	}
	if len(stretcher.calls) != 1 {
		t.Fatalf("expected 1 stretch, got %d", len(stretcher.calls))
	}
	if tempo := stretcher.calls[0]; tempo < 1.19 || tempo > 1.21 {
		t.Fatalf("unexpected tempo: %v", tempo)
	}
	if final != 5.0 {
		t.Fatalf("unexpected final duration: %v", final)
	}
	// The stretched clip replaces the original.
	data, err := os.ReadFile(out)
	if err != nil || string(data) != "stretched" {
		t.Fatalf("expected stretched clip at output path, got %q err %v", data, err)
	}
}

func TestSynthesizeTimedClampsTempo(t *testing.T) {
	out := filepath.Join(t.TempDir(), "clip.wav")
	stretcher := &fakeStretcher{}
	svc := tts.NewService(tts.Config{}, stretcher)
	svc.WithCommandRunner(synthRunner(t))
	svc.WithClipDuration(func(string) (float64, error) { return 10.0, nil })

	// 10s clip into a 2s slot wants tempo 5.0, clamp to 1.3.
	if _, err := svc.SynthesizeTimed(context.Background(), "text", out, 2.0); err != nil {
		t.Fatalf("SynthesizeTimed: %v", err)
	}
	if len(stretcher.calls) != 1 || stretcher.calls[0] != tts.MaxTempo {
		t.Fatalf("expected clamped tempo %v, got %v", tts.MaxTempo, stretcher.calls)
	}
}

func TestSynthesizeTimedSkipsCloseEnoughClip(t *testing.T) {
	out := filepath.Join(t.TempDir(), "clip.wav")
	stretcher := &fakeStretcher{}
	svc := tts.NewService(tts.Config{}, stretcher)
	svc.WithCommandRunner(synthRunner(t))
	svc.WithClipDuration(func(string) (float64, error) { return 5.02, nil })

	final, err := svc.SynthesizeTimed(context.Background(), "text", out, 5.0)
	if err != nil {
		t.Fatalf("SynthesizeTimed: %v", err)
	}
	if len(stretcher.calls) != 0 {
		t.Fatalf("expected no stretch, got %v", stretcher.calls)
	}
	if final != 5.02 {
		t.Fatalf("unexpected duration: %v", final)
	}
}

func TestSynthesizeTimedWithoutStretcherReturnsActual(t *testing.T) {
	out := filepath.Join(t.TempDir(), "clip.wav")
	svc := tts.NewService(tts.Config{}, nil)
	svc.WithCommandRunner(synthRunner(t))
	svc.WithClipDuration(func(string) (float64, error) { return 7.5, nil })

	final, err := svc.SynthesizeTimed(context.Background(), "text", out, 3.0)
	if err != nil {
		t.Fatalf("SynthesizeTimed: %v", err)
	}
	if final != 7.5 {
		t.Fatalf("unexpected duration: %v", final)
	}
}
