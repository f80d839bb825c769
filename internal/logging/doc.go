// Package logging assembles structured slog loggers and formatting helpers used
// across dubstudio.
//
// It owns the console and JSON handlers, level parsing, and output plumbing
// (stderr plus an optional debug-level JSON log file). Context helpers tag log
// lines with the project id, render job id, stage, and correlation id carried
// by the context. NewNop provides a silent logger for tests and wiring code.
package logging
