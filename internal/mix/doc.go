// Package mix composes the final described audio track.
//
// The mixer walks narration segments left to right over the original
// soundtrack, preserving dialogue stretches verbatim and overlaying each
// narration clip on top of a volume-ducked copy of the background. All
// composition happens on PCM buffers in memory; the assembled track is
// written to a temporary WAV and handed to a transcoder for the final
// container, so a failed mix never leaves a partially-written output that
// looks successful.
//
// A narration clip's real duration always wins over the scene's estimated
// length when placing the overlay: text-to-speech output that rendered
// longer or shorter than planned still lines up with the original audio
// that follows it.
//
// AdjustSegmentTiming pre-processes a segment list so consecutive
// narrations keep a minimum breathing gap, dropping segments left with no
// room to speak.
package mix
