package mix

import "sort"

// DefaultMinGap is the smallest pause kept between consecutive narrations.
const DefaultMinGap = 0.5

// Segment describes one narration placement on the timeline. It is the
// post-synthesis projection of a scene: StartTime and EndTime come from the
// scene boundaries, NarrationPath points at the synthesized clip. The mixer
// treats segments as read-only values and never mutates caller state.
type Segment struct {
	StartTime     float64 `json:"start_time"`
	EndTime       float64 `json:"end_time"`
	NarrationPath string  `json:"narration_path,omitempty"`
}

// sortByStart returns a copy of segments ordered ascending by start time.
func sortByStart(segments []Segment) []Segment {
	out := append([]Segment(nil), segments...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartTime < out[j].StartTime
	})
	return out
}

// AdjustSegmentTiming pushes each narration's start forward so that at
// least minGap seconds separate it from the previous narration's end. A
// segment whose pushed start meets or passes its own end is dropped: there
// is no room left to speak. Segments without a narration path are dropped
// as well. The input is never mutated.
func AdjustSegmentTiming(segments []Segment, minGap float64) []Segment {
	adjusted := make([]Segment, 0, len(segments))
	lastEnd := 0.0
	for _, seg := range sortByStart(segments) {
		if seg.NarrationPath == "" {
			continue
		}
		start := seg.StartTime
		if floor := lastEnd + minGap; start < floor {
			start = floor
		}
		if start >= seg.EndTime {
			continue
		}
		seg.StartTime = start
		adjusted = append(adjusted, seg)
		lastEnd = seg.EndTime
	}
	return adjusted
}
