package interval

import (
	"fmt"
	"math"
	"sort"
)

// Span is a half-open time range [Start, End) in seconds.
type Span struct {
	Start float64
	End   float64
}

// Duration returns the span length in seconds.
func (s Span) Duration() float64 {
	return s.End - s.Start
}

// Valid reports whether the span has finite, ordered, non-negative bounds.
func (s Span) Valid() bool {
	if math.IsNaN(s.Start) || math.IsNaN(s.End) {
		return false
	}
	if math.IsInf(s.Start, 0) || math.IsInf(s.End, 0) {
		return false
	}
	return s.Start >= 0 && s.End > s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("[%.3f, %.3f)", s.Start, s.End)
}

// Sort returns a copy of spans ordered ascending by start time. The sort is
// stable so spans sharing a start keep their relative order.
func Sort(spans []Span) []Span {
	out := append([]Span(nil), spans...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start < out[j].Start
	})
	return out
}

// MergeNear collapses consecutive spans whose gap is smaller than gapThreshold.
// Input must be sorted ascending by start. Overlapping spans merge as well,
// since their gap is negative. The input slice is never mutated.
func MergeNear(spans []Span, gapThreshold float64) []Span {
	if len(spans) == 0 {
		return nil
	}
	merged := make([]Span, 0, len(spans))
	current := spans[0]
	for _, next := range spans[1:] {
		if next.Start-current.End < gapThreshold {
			if next.End > current.End {
				current.End = next.End
			}
			continue
		}
		merged = append(merged, current)
		current = next
	}
	merged = append(merged, current)
	return merged
}

// Invert returns the free spans not covered by the given occupied spans over
// [0, totalDuration]. Input must be sorted ascending by start; overlapping
// spans are tolerated by tracking a running covered-until cursor.
func Invert(spans []Span, totalDuration float64) []Span {
	free := make([]Span, 0, len(spans)+1)
	covered := 0.0
	for _, s := range spans {
		if s.Start > covered {
			free = append(free, Span{Start: covered, End: s.Start})
		}
		if s.End > covered {
			covered = s.End
		}
	}
	if covered < totalDuration {
		free = append(free, Span{Start: covered, End: totalDuration})
	}
	return free
}

// FilterMinDuration drops spans shorter than minDuration, preserving order.
func FilterMinDuration(spans []Span, minDuration float64) []Span {
	kept := make([]Span, 0, len(spans))
	for _, s := range spans {
		if s.Duration() >= minDuration {
			kept = append(kept, s)
		}
	}
	return kept
}
