package describer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"descant/internal/timeline"
)

type fakeGrabber struct {
	timestamps []float64
	failAt     map[float64]bool
}

func (f *fakeGrabber) GrabFrame(_ context.Context, _ string, ts float64, dest string) error {
	f.timestamps = append(f.timestamps, ts)
	if f.failAt[ts] {
		return errors.New("grab failed")
	}
	return os.WriteFile(dest, []byte("jpg"), 0o644)
}

type fakeCaptioner struct {
	captions map[string]string
	err      error
	calls    int
}

func (f *fakeCaptioner) CaptionFrame(_ context.Context, path string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if caption, ok := f.captions[filepath.Base(path)]; ok {
		return caption, nil
	}
	return fmt.Sprintf("caption %d", f.calls), nil
}

func nonLanguageScene(id int, start, end float64) timeline.Scene {
	return timeline.Scene{ID: id, Start: start, End: end, Description: timeline.NonLanguageDescription}
}

func writeVideo(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "movie.mkv")
	if err := os.WriteFile(path, []byte("mkv"), 0o644); err != nil {
		t.Fatalf("write video: %v", err)
	}
	return path
}

func TestDescribeScenesPicksLongestCaption(t *testing.T) {
	video := writeVideo(t)
	grabber := &fakeGrabber{}
	captioner := &fakeCaptioner{captions: map[string]string{
		"scene_000_frame_0.jpg": "short",
		"scene_000_frame_1.jpg": "a much longer and richer description",
		"scene_000_frame_2.jpg": "medium length text",
	}}
	d := New(grabber, captioner)

	scenes := []timeline.Scene{nonLanguageScene(0, 10, 16)}
	out, err := d.DescribeScenes(context.Background(), video, scenes, t.TempDir())
	if err != nil {
		t.Fatalf("DescribeScenes: %v", err)
	}
	if out[0].Description != "a much longer and richer description" {
		t.Fatalf("unexpected description: %q", out[0].Description)
	}
	// Frames are sampled at start, midpoint, end.
	want := []float64{10, 13, 16}
	if len(grabber.timestamps) != 3 {
		t.Fatalf("expected 3 frames, got %v", grabber.timestamps)
	}
	for i, ts := range want {
		if grabber.timestamps[i] != ts {
			t.Fatalf("timestamp %d: got %v want %v", i, grabber.timestamps[i], ts)
		}
	}
}

func TestDescribeScenesSkipsDialogueScenes(t *testing.T) {
	video := writeVideo(t)
	grabber := &fakeGrabber{}
	captioner := &fakeCaptioner{}
	d := New(grabber, captioner)

	scenes := []timeline.Scene{
		{ID: 0, Start: 0, End: 5, Description: "Hello there", Transcription: "Hello there"},
		nonLanguageScene(1, 5, 8),
	}
	out, err := d.DescribeScenes(context.Background(), video, scenes, t.TempDir())
	if err != nil {
		t.Fatalf("DescribeScenes: %v", err)
	}
	if out[0].Description != "Hello there" {
		t.Fatalf("dialogue scene modified: %q", out[0].Description)
	}
	if out[1].Description == timeline.NonLanguageDescription {
		t.Fatal("non-language scene not described")
	}
}

func TestDescribeScenesDegradesWhenAllCaptionsFail(t *testing.T) {
	video := writeVideo(t)
	d := New(&fakeGrabber{}, &fakeCaptioner{err: errors.New("api down")})

	out, err := d.DescribeScenes(context.Background(), video, []timeline.Scene{nonLanguageScene(0, 0, 3)}, t.TempDir())
	if err != nil {
		t.Fatalf("DescribeScenes: %v", err)
	}
	if out[0].Description != NoVisualInformation {
		t.Fatalf("expected fallback description, got %q", out[0].Description)
	}
}

func TestDescribeScenesToleratesPartialFrameFailures(t *testing.T) {
	video := writeVideo(t)
	grabber := &fakeGrabber{failAt: map[float64]bool{0: true}}
	captioner := &fakeCaptioner{captions: map[string]string{
		"scene_000_frame_1.jpg": "survivor caption",
		"scene_000_frame_2.jpg": "x",
	}}
	d := New(grabber, captioner)

	out, err := d.DescribeScenes(context.Background(), video, []timeline.Scene{nonLanguageScene(0, 0, 4)}, t.TempDir())
	if err != nil {
		t.Fatalf("DescribeScenes: %v", err)
	}
	if out[0].Description != "survivor caption" {
		t.Fatalf("unexpected description: %q", out[0].Description)
	}
}

func TestDescribeScenesMissingVideo(t *testing.T) {
	d := New(&fakeGrabber{}, &fakeCaptioner{})
	if _, err := d.DescribeScenes(context.Background(), filepath.Join(t.TempDir(), "gone.mkv"), nil, t.TempDir()); err == nil {
		t.Fatal("expected error for missing video")
	}
}

func TestSampleTimestamps(t *testing.T) {
	if got := sampleTimestamps(2, 2, 3); got != nil {
		t.Fatalf("expected nil for empty range, got %v", got)
	}
	if got := sampleTimestamps(0, 10, 1); len(got) != 1 || got[0] != 5 {
		t.Fatalf("expected midpoint sample, got %v", got)
	}
	got := sampleTimestamps(0, 9, 4)
	want := []float64{0, 3, 6, 9}
	if len(got) != len(want) {
		t.Fatalf("unexpected samples: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sample %d: got %v want %v", i, got[i], want[i])
		}
	}
}
