// Package services defines shared error-handling utilities consumed by the
// external tool clients and the job pipeline.
//
// Key responsibilities:
//   - Structured error markers plus the Wrap helper that attach a phase and
//     a user-facing message to failures from external tools.
//   - Helpers for classifying cancellation and truncating tool output before
//     it lands on a job record.
//
// Subpackages hold the individual tool clients (demucs, ytdlp).
package services
