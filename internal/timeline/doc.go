// Package timeline converts raw speech detections and transcript segments
// into an ordered, contiguous scene timeline.
//
// Two computations live here:
//
//  1. ComputeNonDialogue inverts detected speech spans against the total
//     program duration and drops detection noise shorter than half a second.
//  2. SegmentScenes partitions the timeline into alternating content and
//     non-language scenes around the merged non-dialogue spans, attaching
//     transcript text to content scenes.
//
// Both are pure, synchronous, and deterministic. Either a complete scene
// list is returned or an error; no partial timeline is ever exposed.
//
// The thresholds in this package (0.5s minimum non-dialogue duration, 2.0s
// merge gap, 1.0s minimum content scene, 0.8 no-speech-probability cutoff)
// are fixed policy, not tunables: together they fully define segmentation
// behavior.
package timeline
