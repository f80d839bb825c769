// Package render turns a source video, a caption snapshot, and an optional
// replacement audio track into one encoded output file.
//
// A Pipeline runs one Job at a time through Idle, Priming, Capturing, and one
// terminal state (Completed, Cancelled, or Failed). Priming probes the media,
// allocates the frame target, snapshots captions, routes audio, and opens the
// encoder sink. Capturing is driven by a Scheduler: each tick pulls one frame,
// looks up the active caption, composites it, and writes the result to the
// sink. Progress is reported through a monotonic reporter that never goes
// backwards and falls silent once the job ends.
//
// Every handle acquired during a job is tracked by Resources and released on
// every exit path before Render returns.
package render
