package mix

import (
	"reflect"
	"testing"
)

func TestAdjustSegmentTimingEnforcesMinimumGap(t *testing.T) {
	segments := []Segment{
		{StartTime: 0.0, EndTime: 2.0, NarrationPath: "a.wav"},
		{StartTime: 2.1, EndTime: 5.0, NarrationPath: "b.wav"},
		{StartTime: 5.2, EndTime: 9.0, NarrationPath: "c.wav"},
	}
	adjusted := AdjustSegmentTiming(segments, DefaultMinGap)
	if len(adjusted) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(adjusted))
	}
	lastEnd := 0.0
	for i, seg := range adjusted {
		if gap := seg.StartTime - lastEnd; gap < DefaultMinGap {
			t.Fatalf("segment %d gap %.2f below minimum", i, gap)
		}
		lastEnd = seg.EndTime
	}
	if adjusted[1].StartTime != 2.5 {
		t.Fatalf("expected second start pushed to 2.5, got %.2f", adjusted[1].StartTime)
	}
}

func TestAdjustSegmentTimingDropsSegmentsWithNoRoom(t *testing.T) {
	segments := []Segment{
		{StartTime: 0.0, EndTime: 4.0, NarrationPath: "a.wav"},
		// Pushed start (4.5) meets its end; nothing left to speak.
		{StartTime: 4.0, EndTime: 4.5, NarrationPath: "b.wav"},
		{StartTime: 6.0, EndTime: 8.0, NarrationPath: "c.wav"},
	}
	adjusted := AdjustSegmentTiming(segments, 0.5)
	want := []Segment{
		{StartTime: 0.5, EndTime: 4.0, NarrationPath: "a.wav"},
		{StartTime: 6.0, EndTime: 8.0, NarrationPath: "c.wav"},
	}
	if !reflect.DeepEqual(adjusted, want) {
		t.Fatalf("got %+v want %+v", adjusted, want)
	}
}

func TestAdjustSegmentTimingSkipsSegmentsWithoutNarration(t *testing.T) {
	segments := []Segment{
		{StartTime: 1.0, EndTime: 2.0},
		{StartTime: 3.0, EndTime: 4.0, NarrationPath: "ok.wav"},
	}
	adjusted := AdjustSegmentTiming(segments, 0.5)
	if len(adjusted) != 1 || adjusted[0].NarrationPath != "ok.wav" {
		t.Fatalf("unexpected result: %+v", adjusted)
	}
}

func TestAdjustSegmentTimingSortsInput(t *testing.T) {
	segments := []Segment{
		{StartTime: 5.0, EndTime: 7.0, NarrationPath: "b.wav"},
		{StartTime: 1.0, EndTime: 3.0, NarrationPath: "a.wav"},
	}
	adjusted := AdjustSegmentTiming(segments, 0.5)
	if len(adjusted) != 2 || adjusted[0].NarrationPath != "a.wav" {
		t.Fatalf("expected sorted output, got %+v", adjusted)
	}
	if segments[0].NarrationPath != "b.wav" {
		t.Fatal("input slice was mutated")
	}
}
