// Package services defines shared utilities consumed by the studio operations
// and the backend adapters.
//
// Key responsibilities:
//   - Context helpers that stamp project IDs, render job IDs, stage names, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper, and Outcome, which
//     separates cancellation from failure.
//
// Use these helpers when wiring new operations so error handling and
// observability stay uniform across the studio.
package services
