// Package config loads and validates descant's TOML configuration.
//
// Configuration is resolved once at process start: defaults, then the
// config file, then environment overrides for secrets. Components receive
// the values they need through constructors; nothing reads the environment
// mid-pipeline. The transcription backend (local WhisperX vs remote API)
// is part of this single resolution.
package config
