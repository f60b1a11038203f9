// Package interval provides pure helpers over lists of time spans.
//
// A Span is a half-open range [Start, End) measured in seconds. Every
// function treats its input as immutable and returns fresh slices, so
// callers can share span lists freely between pipeline stages.
//
// Key operations:
//   - Sort: stable ascending ordering by start time
//   - MergeNear: collapse spans separated by less than a gap threshold
//   - Invert: compute the complementary free spans over a total duration
//   - FilterMinDuration: drop spans shorter than a minimum length
package interval
