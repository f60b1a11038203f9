// Package whisper produces timed transcripts of the analysis audio.
//
// Two backends are supported and selected once through configuration: the
// local backend runs WhisperX through uvx, the api backend posts audio to an
// OpenAI-compatible transcription endpoint. Both normalize their output into
// timeline.TranscriptSegment values.
package whisper
