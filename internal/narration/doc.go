// Package narration renders scene descriptions to speech and prepares the
// clips for mixing.
//
// Each narratable scene gets its own WAV clip, synthesized toward the scene
// duration. A failed scene is logged and skipped so one bad synthesis never
// sinks the whole item.
package narration
