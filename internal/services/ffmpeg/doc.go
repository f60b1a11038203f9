// Package ffmpeg wraps the ffmpeg binary for the audio and frame operations
// the pipeline needs: audio extraction, frame grabs, tempo adjustment, and
// final MP3 export.
//
// All operations go through a pluggable command runner so tests can observe
// the exact invocation without executing ffmpeg.
package ffmpeg
