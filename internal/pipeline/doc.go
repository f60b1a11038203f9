// Package pipeline drives a queue item through the description workflow:
// audio extraction, speech analysis, scene segmentation, narration, and
// final mixing.
//
// Each stage is a stage.Handler executed through stageexec.Run, so status
// transitions and failure classification are uniform. Process holds a file
// lock for the duration of a run; two descant processes never chew on the
// same library concurrently.
package pipeline
