package timeline

import "strings"

// NoSpeechCutoff is the probability above which a transcript segment is
// classified as non-language (music, effects, silence).
const NoSpeechCutoff = 0.8

// TranscriptSegment is a timestamped block of transcribed text produced by
// the transcription collaborator.
type TranscriptSegment struct {
	Start        float64 `json:"start"`
	End          float64 `json:"end"`
	Text         string  `json:"text"`
	NoSpeechProb float64 `json:"no_speech_prob"`
}

// NonLanguage reports whether the segment is more likely music or effects
// than spoken dialogue.
func (s TranscriptSegment) NonLanguage() bool {
	return s.NoSpeechProb > NoSpeechCutoff
}

// Scene is a contiguous labeled span of the program timeline. IDs are
// 0-based and strictly sequential in emission order; adjacent scenes share
// a boundary so the timeline has no gaps once segmentation completes.
//
// A scene is created once by SegmentScenes and only mutated afterwards to
// attach narration text and the synthesized narration audio path as later
// pipeline stages complete. Scenes are never deleted or reordered.
type Scene struct {
	ID            int     `json:"id"`
	Start         float64 `json:"start"`
	End           float64 `json:"end"`
	Description   string  `json:"description"`
	Transcription string  `json:"transcription,omitempty"`
	NarrationText string  `json:"narration_text,omitempty"`
	NarrationPath string  `json:"narration_path,omitempty"`
}

// Duration returns the scene length in seconds.
func (s Scene) Duration() float64 {
	return s.End - s.Start
}

// NonLanguage reports whether the scene was labeled as a non-language span.
func (s Scene) NonLanguage() bool {
	return s.Description == NonLanguageDescription
}

// JoinTranscript concatenates the text of the given segments in order,
// separated by single spaces, skipping blank entries.
func JoinTranscript(segments []TranscriptSegment) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if text := strings.TrimSpace(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}
