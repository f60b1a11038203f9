package timeline

import (
	"descant/internal/interval"
)

const (
	// MergeGap joins consecutive non-dialogue spans closer than this into
	// one continuous non-language passage.
	MergeGap = 2.0
	// MinContentScene is the shortest stretch between non-dialogue spans
	// that still becomes its own content scene.
	MinContentScene = 1.0

	// ContentPlaceholder labels a content scene with no transcript text.
	ContentPlaceholder = "Scene content"
	// NonLanguageDescription labels every non-language scene.
	NonLanguageDescription = "Non-language segment (music/effects)"
	// FinalPlaceholder labels a trailing content scene with no transcript text.
	FinalPlaceholder = "Final scene"
)

// Analysis is the baseline context produced by the analysis stage and
// consumed by SegmentScenes.
type Analysis struct {
	// Scenes is the pre-existing timeline. It must be non-empty; the end of
	// its last scene defines the known program end. When no non-dialogue
	// spans exist this list is returned unchanged.
	Scenes []Scene
	// NonDialogue holds the spans eligible for narration insertion.
	NonDialogue []interval.Span
	// Transcript holds the timestamped transcription segments.
	Transcript []TranscriptSegment
}

// BaselineAnalysis builds an Analysis whose pre-existing timeline is a
// single scene spanning [0, totalDuration]. This is the common case for a
// fresh program with no prior segmentation.
func BaselineAnalysis(nonDialogue []interval.Span, transcript []TranscriptSegment, totalDuration float64) Analysis {
	return Analysis{
		Scenes:      []Scene{{ID: 0, Start: 0, End: totalDuration, Description: ContentPlaceholder}},
		NonDialogue: nonDialogue,
		Transcript:  transcript,
	}
}

// Segment partitions [0, totalDuration] into contiguous scenes around the
// given non-dialogue spans. It is the entry point for callers without a
// pre-existing scene list.
func Segment(nonDialogue []interval.Span, transcript []TranscriptSegment, totalDuration float64) ([]Scene, error) {
	if totalDuration <= 0 {
		return nil, segmentationError("no usable timeline: total duration %.3f", totalDuration)
	}
	return SegmentScenes(BaselineAnalysis(nonDialogue, transcript, totalDuration))
}

// SegmentScenes builds the final contiguous scene timeline from an analysis
// baseline.
//
// Non-dialogue spans are sorted, then merged when separated by less than
// MergeGap seconds. Walking the merged spans left to right, a content scene
// is emitted for every stretch longer than MinContentScene between the
// previous span's end and the next span's start, carrying the transcript
// text that falls fully inside it (or ContentPlaceholder when none does),
// followed by the non-language scene itself. A trailing content scene covers
// whatever remains before the known program end.
//
// Either a complete scene list is returned or ErrSegmentation; there is no
// partial success.
func SegmentScenes(analysis Analysis) ([]Scene, error) {
	if len(analysis.Scenes) == 0 {
		return nil, segmentationError("no scenes in analysis result")
	}
	if len(analysis.NonDialogue) == 0 {
		// Nothing to carve around; the baseline timeline stands as-is.
		return analysis.Scenes, nil
	}
	for _, span := range analysis.NonDialogue {
		if !span.Valid() {
			return nil, segmentationError("malformed non-dialogue span %v", span)
		}
	}

	merged := interval.MergeNear(interval.Sort(analysis.NonDialogue), MergeGap)
	timelineEnd := analysis.Scenes[len(analysis.Scenes)-1].End

	scenes := make([]Scene, 0, 2*len(merged)+1)
	lastEnd := 0.0
	sceneID := 0

	for _, span := range merged {
		if span.Start-lastEnd > MinContentScene {
			scenes = append(scenes, contentScene(sceneID, lastEnd, span.Start, analysis.Transcript, ContentPlaceholder, false))
			sceneID++
		}
		scenes = append(scenes, Scene{
			ID:          sceneID,
			Start:       span.Start,
			End:         span.End,
			Description: NonLanguageDescription,
		})
		sceneID++
		lastEnd = span.End
	}

	if lastEnd < timelineEnd {
		scenes = append(scenes, contentScene(sceneID, lastEnd, timelineEnd, analysis.Transcript, FinalPlaceholder, true))
	}

	return scenes, nil
}

// contentScene emits a dialogue/content scene spanning [start, end) carrying
// every transcript segment contained in the range. The trailing scene sets
// openEnd: it collects everything from start onward, even text whose
// timestamps run past the known program end.
func contentScene(id int, start, end float64, transcript []TranscriptSegment, placeholder string, openEnd bool) Scene {
	inRange := make([]TranscriptSegment, 0, len(transcript))
	for _, seg := range transcript {
		if seg.Start >= start && (openEnd || seg.End <= end) {
			inRange = append(inRange, seg)
		}
	}
	description := JoinTranscript(inRange)
	transcription := description
	if description == "" {
		description = placeholder
	}
	return Scene{
		ID:            id,
		Start:         start,
		End:           end,
		Description:   description,
		Transcription: transcription,
	}
}
