package narration

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"descant/internal/timeline"
)

type fakeSynth struct {
	calls   []string
	targets []float64
	failOn  string
}

func (f *fakeSynth) SynthesizeTimed(_ context.Context, text, outPath string, target float64) (float64, error) {
	f.calls = append(f.calls, text)
	f.targets = append(f.targets, target)
	if text == f.failOn {
		return 0, errors.New("synthesis failed")
	}
	if err := os.WriteFile(outPath, []byte("wav"), 0o644); err != nil {
		return 0, err
	}
	return target, nil
}

func TestProcessScenesSynthesizesNarratableScenes(t *testing.T) {
	synth := &fakeSynth{}
	gen := New(synth, nil)
	dir := t.TempDir()

	scenes := []timeline.Scene{
		{ID: 0, Start: 0, End: 5, Description: "Hello", Transcription: "Hello"},
		{ID: 1, Start: 5, End: 8.5, Description: "A car chase", NarrationText: "A car chase"},
		{ID: 2, Start: 8.5, End: 12, Description: "Dark alley", NarrationText: "Dark alley"},
	}
	out, err := gen.ProcessScenes(context.Background(), scenes, dir)
	if err != nil {
		t.Fatalf("ProcessScenes: %v", err)
	}
	if len(synth.calls) != 2 {
		t.Fatalf("expected 2 syntheses, got %v", synth.calls)
	}
	if synth.targets[0] != 3.5 {
		t.Fatalf("expected scene duration as target, got %v", synth.targets[0])
	}
	if out[0].NarrationPath != "" {
		t.Fatal("dialogue scene should have no narration")
	}
	if !strings.HasSuffix(out[1].NarrationPath, "narration_5.00.wav") {
		t.Fatalf("unexpected clip path: %q", out[1].NarrationPath)
	}
	if _, err := os.Stat(out[1].NarrationPath); err != nil {
		t.Fatalf("clip not written: %v", err)
	}
}

func TestProcessScenesToleratesFailure(t *testing.T) {
	synth := &fakeSynth{failOn: "broken scene"}
	gen := New(synth, nil)

	scenes := []timeline.Scene{
		{ID: 0, Start: 0, End: 2, NarrationText: "broken scene"},
		{ID: 1, Start: 2, End: 4, NarrationText: "good scene"},
	}
	out, err := gen.ProcessScenes(context.Background(), scenes, t.TempDir())
	if err != nil {
		t.Fatalf("ProcessScenes: %v", err)
	}
	if out[0].NarrationPath != "" {
		t.Fatal("failed scene should keep empty path")
	}
	if out[1].NarrationPath == "" {
		t.Fatal("second scene should still be narrated")
	}
}

func TestProcessScenesRequiresOutputDir(t *testing.T) {
	gen := New(&fakeSynth{}, nil)
	if _, err := gen.ProcessScenes(context.Background(), nil, ""); err == nil {
		t.Fatal("expected error for empty output dir")
	}
}

func TestSegmentsDropsScenesWithoutClips(t *testing.T) {
	scenes := []timeline.Scene{
		{ID: 0, Start: 0, End: 2},
		{ID: 1, Start: 2, End: 4, NarrationPath: filepath.Join("work", "narration_2.00.wav")},
		{ID: 2, Start: 4, End: 6, NarrationText: "failed", NarrationPath: ""},
	}
	segments := Segments(scenes)
	if len(segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segments))
	}
	if segments[0].StartTime != 2 || segments[0].EndTime != 4 {
		t.Fatalf("unexpected segment: %+v", segments[0])
	}
}
