// Package main hosts the descant CLI entrypoint and command graph.
//
// The Cobra-based command tree surfaces the description pipeline: queueing
// source videos, running them through extraction, analysis, segmentation,
// narration, and mixing, plus queue maintenance and configuration
// scaffolding. It centralizes configuration resolution and structured
// logging setup so subcommands can focus on user experience instead of
// wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
