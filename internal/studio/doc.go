// Package studio runs the localization workflow for a project: audio
// extraction and transcription, caption translation, speech synthesis for a
// dub track, and the caption burn-in render.
//
// Each step is a status-tracked stage. The project's status is set to the
// step's processing value while it runs and to completed or error after.
// A cancelled step restores the status the project had before it started.
// Renders are serialized per project with a file lock in the project's
// working directory and recorded in the render history table.
package studio
