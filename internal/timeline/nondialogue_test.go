package timeline_test

import (
	"errors"
	"reflect"
	"testing"

	"descant/internal/interval"
	"descant/internal/timeline"
)

func TestComputeNonDialogueInvertsAndFilters(t *testing.T) {
	speech := []interval.Span{
		{Start: 1.0, End: 3.0},
		{Start: 3.2, End: 6.0}, // 0.2s gap at 3.0 is noise
		{Start: 8.0, End: 9.0},
	}
	got, err := timeline.ComputeNonDialogue(speech, 12.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []interval.Span{
		{Start: 0, End: 1.0},
		{Start: 6.0, End: 8.0},
		{Start: 9.0, End: 12.0},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestComputeNonDialogueToleratesUnsortedOverlappingInput(t *testing.T) {
	speech := []interval.Span{
		{Start: 5.0, End: 7.0},
		{Start: 1.0, End: 3.0},
		{Start: 2.0, End: 4.0},
	}
	got, err := timeline.ComputeNonDialogue(speech, 10.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []interval.Span{
		{Start: 0, End: 1.0},
		{Start: 4.0, End: 5.0},
		{Start: 7.0, End: 10.0},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestComputeNonDialogueDeterministic(t *testing.T) {
	speech := []interval.Span{{Start: 2, End: 4}, {Start: 6, End: 8}}
	first, err := timeline.ComputeNonDialogue(speech, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := timeline.ComputeNonDialogue(speech, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("results differ: %v vs %v", first, second)
	}
}

func TestComputeNonDialogueRejectsNonPositiveDuration(t *testing.T) {
	for _, total := range []float64{0, -1} {
		_, err := timeline.ComputeNonDialogue(nil, total)
		if !errors.Is(err, timeline.ErrInvalidDuration) {
			t.Fatalf("total %v: expected ErrInvalidDuration, got %v", total, err)
		}
	}
}

func TestComputeNonDialogueNoSpeechCoversWholeProgram(t *testing.T) {
	got, err := timeline.ComputeNonDialogue(nil, 42.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []interval.Span{{Start: 0, End: 42.0}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}
