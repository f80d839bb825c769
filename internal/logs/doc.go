// Package logs reads the structured log file for the CLI: the last N lines,
// follow mode that waits for new records, and filtering by project or level.
//
// Reads stop at the last complete line so a record being written is never
// split between two polls.
package logs
