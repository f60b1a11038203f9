// Package vad detects speech in extracted audio using the Silero VAD model.
//
// Input is the mono 16 kHz analysis WAV the ffmpeg service produces. Output
// is the list of speech spans in seconds plus the audio duration, which the
// timeline package inverts into non-dialogue intervals.
package vad
