// Package queue persists per-movie pipeline jobs in SQLite.
//
// Each item tracks one source video through the description pipeline:
//
//	PENDING -> EXTRACTING -> ANALYZING -> SEGMENTING -> NARRATING -> MIXING -> COMPLETED
//
// with FAILED and REVIEW as terminal error states. Stage handlers read and
// write artifact paths (extracted audio, scene timeline JSON, mixed output)
// through the item so every stage can be resumed or rerun individually.
//
// The store owns schema creation and versioning; a version mismatch is an
// error rather than a silent migration, matching the database's role as a
// cache of resumable work rather than a system of record.
package queue
