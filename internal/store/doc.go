// Package store persists projects, their caption sets, and render history in
// SQLite.
//
// The database lives under the configured data directory. Writes retry on
// SQLITE_BUSY so two CLI invocations against the same project do not fail on
// lock contention. PRAGMA user_version guards against opening a database
// written by an incompatible build.
package store
