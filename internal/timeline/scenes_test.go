package timeline_test

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"descant/internal/interval"
	"descant/internal/timeline"
)

func segment(start, end float64, text string) timeline.TranscriptSegment {
	return timeline.TranscriptSegment{Start: start, End: end, Text: text}
}

func checkContiguous(t *testing.T, scenes []timeline.Scene) {
	t.Helper()
	for i := range scenes {
		if scenes[i].ID != i {
			t.Fatalf("scene %d has id %d", i, scenes[i].ID)
		}
		if i > 0 && scenes[i].Start != scenes[i-1].End {
			t.Fatalf("timeline gap between scene %d (end %.2f) and scene %d (start %.2f)",
				i-1, scenes[i-1].End, i, scenes[i].Start)
		}
	}
}

func TestSegmentAlternatesContentAndNonLanguage(t *testing.T) {
	nonDialogue := []interval.Span{
		{Start: 2.0, End: 5.0},
		{Start: 8.0, End: 10.0},
	}
	transcript := []timeline.TranscriptSegment{
		segment(0.5, 1.5, "Hello"),
		segment(6.0, 7.0, "World"),
		segment(11.0, 14.0, "Test"),
	}

	scenes, err := timeline.Segment(nonDialogue, transcript, 15.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scenes) != 5 {
		t.Fatalf("expected 5 scenes, got %d: %+v", len(scenes), scenes)
	}
	checkContiguous(t, scenes)

	type expectation struct {
		start, end  float64
		description string
	}
	want := []expectation{
		{0, 2, "Hello"},
		{2, 5, timeline.NonLanguageDescription},
		{5, 8, "World"},
		{8, 10, timeline.NonLanguageDescription},
		{10, 15, "Test"},
	}
	for i, exp := range want {
		got := scenes[i]
		if got.Start != exp.start || got.End != exp.end || got.Description != exp.description {
			t.Fatalf("scene %d: got [%.1f-%.1f %q] want [%.1f-%.1f %q]",
				i, got.Start, got.End, got.Description, exp.start, exp.end, exp.description)
		}
	}
	if scenes[1].NonLanguage() != true || scenes[0].NonLanguage() {
		t.Fatal("non-language classification mismatch")
	}
}

func TestSegmentMergesOverlappingNonDialogue(t *testing.T) {
	nonDialogue := []interval.Span{
		{Start: 2.0, End: 5.0},
		{Start: 4.0, End: 7.0},
	}
	scenes, err := timeline.Segment(nonDialogue, nil, 15.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scenes) != 3 {
		t.Fatalf("expected 3 scenes, got %d: %+v", len(scenes), scenes)
	}
	checkContiguous(t, scenes)
	if scenes[1].Start != 2.0 || scenes[1].End != 7.0 {
		t.Fatalf("expected merged span [2,7), got [%.1f,%.1f)", scenes[1].Start, scenes[1].End)
	}
	if scenes[0].Description != timeline.ContentPlaceholder {
		t.Fatalf("expected placeholder for empty transcript, got %q", scenes[0].Description)
	}
	if scenes[2].Description != timeline.FinalPlaceholder {
		t.Fatalf("expected final placeholder, got %q", scenes[2].Description)
	}
}

func TestSegmentMergesNearbyNonDialogue(t *testing.T) {
	// 1.5s gap between spans is below the 2.0s merge threshold.
	nonDialogue := []interval.Span{
		{Start: 2.0, End: 4.0},
		{Start: 5.5, End: 8.0},
	}
	scenes, err := timeline.Segment(nonDialogue, nil, 12.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scenes) != 3 {
		t.Fatalf("expected 3 scenes, got %d: %+v", len(scenes), scenes)
	}
	if scenes[1].Start != 2.0 || scenes[1].End != 8.0 {
		t.Fatalf("expected merged span [2,8), got %+v", scenes[1])
	}
}

func TestSegmentSkipsShortContentGap(t *testing.T) {
	// 0.8s between spans is under the 1.0s minimum content scene, but the
	// 2.0s merge threshold already combines them; use a 2.5s gap followed
	// by a span that leaves only 0.5s before the end.
	nonDialogue := []interval.Span{
		{Start: 0.0, End: 4.0},
		{Start: 6.5, End: 9.5},
	}
	scenes, err := timeline.Segment(nonDialogue, nil, 10.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// [0,4) non-language, [4,6.5) content, [6.5,9.5) non-language, [9.5,10) final.
	if len(scenes) != 4 {
		t.Fatalf("expected 4 scenes, got %d: %+v", len(scenes), scenes)
	}
	checkContiguous(t, scenes)
}

func TestSegmentScenesPassThroughWithoutNonDialogue(t *testing.T) {
	baseline := []timeline.Scene{
		{ID: 0, Start: 0, End: 30, Description: "Opening"},
		{ID: 1, Start: 30, End: 60, Description: "Closing"},
	}
	scenes, err := timeline.SegmentScenes(timeline.Analysis{Scenes: baseline})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(scenes, baseline) {
		t.Fatalf("expected pass-through, got %+v", scenes)
	}
}

func TestSegmentScenesRequiresBaseline(t *testing.T) {
	_, err := timeline.SegmentScenes(timeline.Analysis{
		NonDialogue: []interval.Span{{Start: 1, End: 2}},
	})
	if !errors.Is(err, timeline.ErrSegmentation) {
		t.Fatalf("expected ErrSegmentation, got %v", err)
	}
}

func TestSegmentRejectsNonPositiveDuration(t *testing.T) {
	_, err := timeline.Segment(nil, nil, 0)
	if !errors.Is(err, timeline.ErrSegmentation) {
		t.Fatalf("expected ErrSegmentation, got %v", err)
	}
}

func TestSegmentWrapsMalformedSpans(t *testing.T) {
	cases := [][]interval.Span{
		{{Start: math.NaN(), End: 2}},
		{{Start: 1, End: math.NaN()}},
		{{Start: 5, End: 3}},
		{{Start: -2, End: 1}},
	}
	for _, spans := range cases {
		_, err := timeline.Segment(spans, nil, 10)
		if !errors.Is(err, timeline.ErrSegmentation) {
			t.Fatalf("spans %v: expected ErrSegmentation, got %v", spans, err)
		}
	}
}

func TestSegmentTrailingSceneCollectsOpenEndedTranscript(t *testing.T) {
	nonDialogue := []interval.Span{{Start: 2.0, End: 5.0}}
	transcript := []timeline.TranscriptSegment{
		// Ends past the known program end; still belongs to the final scene.
		segment(6.0, 10.5, "Credits roll"),
	}
	scenes, err := timeline.Segment(nonDialogue, transcript, 10.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	last := scenes[len(scenes)-1]
	if last.Description != "Credits roll" {
		t.Fatalf("expected trailing transcript text, got %q", last.Description)
	}
}

func TestSegmentAttachesTranscriptionToContentScenes(t *testing.T) {
	nonDialogue := []interval.Span{{Start: 5.0, End: 8.0}}
	transcript := []timeline.TranscriptSegment{
		segment(0.5, 2.0, "First line."),
		segment(2.5, 4.5, "Second line."),
	}
	scenes, err := timeline.Segment(nonDialogue, transcript, 12.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scenes[0].Transcription != "First line. Second line." {
		t.Fatalf("unexpected transcription: %q", scenes[0].Transcription)
	}
	if scenes[1].Transcription != "" {
		t.Fatalf("non-language scene should carry no transcription, got %q", scenes[1].Transcription)
	}
}

func TestTranscriptSegmentNonLanguageCutoff(t *testing.T) {
	if (timeline.TranscriptSegment{NoSpeechProb: 0.8}).NonLanguage() {
		t.Fatal("probability exactly at cutoff must stay language")
	}
	if !(timeline.TranscriptSegment{NoSpeechProb: 0.81}).NonLanguage() {
		t.Fatal("probability above cutoff must be non-language")
	}
}
