// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// This package has no descant-specific dependencies and could be extracted
// as a standalone library.
//
// Primary entry point:
//   - Inspect: executes ffprobe and returns a parsed Result
//
// Helper methods on Result expose the pieces the pipeline cares about:
// container duration and the presence and shape of audio streams.
package ffprobe
