package interval_test

import (
	"math"
	"reflect"
	"testing"

	"descant/internal/interval"
)

func spans(pairs ...float64) []interval.Span {
	if len(pairs)%2 != 0 {
		panic("spans requires start/end pairs")
	}
	out := make([]interval.Span, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, interval.Span{Start: pairs[i], End: pairs[i+1]})
	}
	return out
}

func TestSortOrdersByStartAndPreservesInput(t *testing.T) {
	input := spans(8, 10, 2, 5, 6, 7)
	got := interval.Sort(input)
	want := spans(2, 5, 6, 7, 8, 10)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected order: got %v want %v", got, want)
	}
	if input[0].Start != 8 {
		t.Fatal("Sort mutated its input")
	}
}

func TestMergeNear(t *testing.T) {
	tests := []struct {
		name      string
		input     []interval.Span
		threshold float64
		want      []interval.Span
	}{
		{"empty", nil, 2.0, nil},
		{"single", spans(1, 2), 2.0, spans(1, 2)},
		{"gap below threshold merges", spans(0, 3, 4, 6), 2.0, spans(0, 6)},
		{"gap at threshold stays split", spans(0, 3, 5, 6), 2.0, spans(0, 3, 5, 6)},
		{"overlapping spans merge", spans(2, 5, 4, 7), 2.0, spans(2, 7)},
		{"contained span keeps outer end", spans(0, 10, 2, 4), 2.0, spans(0, 10)},
		{"chain of near spans collapses", spans(0, 1, 1.5, 2, 2.5, 3), 1.0, spans(0, 3)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := interval.MergeNear(tc.input, tc.threshold)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got %v want %v", got, tc.want)
			}
		})
	}
}

func TestMergeNearIdempotent(t *testing.T) {
	input := spans(0, 1, 1.2, 2, 5, 6, 6.5, 8, 20, 21)
	once := interval.MergeNear(input, 1.0)
	twice := interval.MergeNear(once, 1.0)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("merge not idempotent: once %v twice %v", once, twice)
	}
}

func TestInvert(t *testing.T) {
	tests := []struct {
		name  string
		input []interval.Span
		total float64
		want  []interval.Span
	}{
		{"empty covers whole range", nil, 10, spans(0, 10)},
		{"leading gap emitted", spans(2, 4), 10, spans(0, 2, 4, 10)},
		{"starts at zero", spans(0, 4), 10, spans(4, 10)},
		{"ends at total", spans(6, 10), 10, spans(0, 6)},
		{"multiple gaps", spans(1, 2, 4, 5), 6, spans(0, 1, 2, 4, 5, 6)},
		{"overlapping occupied spans", spans(1, 5, 3, 4), 8, spans(0, 1, 5, 8)},
		{"fully covered", spans(0, 10), 10, []interval.Span{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := interval.Invert(tc.input, tc.total)
			if len(got) == 0 && len(tc.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got %v want %v", got, tc.want)
			}
		})
	}
}

// Inverting the complement reconstructs the gaps between the original spans.
func TestInvertRoundTrip(t *testing.T) {
	speech := spans(1, 2, 4, 6, 9, 10)
	const total = 12.0

	free := interval.Invert(speech, total)
	back := interval.Invert(free, total)

	want := spans(1, 2, 4, 6, 9, 10)
	if !reflect.DeepEqual(back, want) {
		t.Fatalf("round trip mismatch: got %v want %v", back, want)
	}
}

func TestFilterMinDuration(t *testing.T) {
	input := spans(0, 0.4, 1, 2, 3, 3.49, 5, 8)
	got := interval.FilterMinDuration(input, 0.5)
	want := spans(1, 2, 5, 8)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestSpanValid(t *testing.T) {
	valid := interval.Span{Start: 0, End: 1}
	if !valid.Valid() {
		t.Fatal("expected valid span")
	}
	cases := []interval.Span{
		{Start: math.NaN(), End: 1},
		{Start: 0, End: math.NaN()},
		{Start: math.Inf(1), End: math.Inf(1)},
		{Start: -1, End: 2},
		{Start: 3, End: 3},
		{Start: 5, End: 4},
	}
	for _, s := range cases {
		if s.Valid() {
			t.Fatalf("expected invalid span: %v", s)
		}
	}
}
