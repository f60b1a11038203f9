// Package tts synthesizes narration audio with the Coqui TTS command line
// tool.
//
// Synthesized clips can be re-timed toward a target duration: the tempo
// adjustment is delegated to an injected stretcher (the ffmpeg service in
// production) and clamped to 30% in either direction so narration never
// sounds rushed or dragged.
package tts
