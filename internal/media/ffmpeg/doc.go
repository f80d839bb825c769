// Package ffmpeg adapts the ffmpeg and ffprobe command-line tools to the
// render pipeline.
//
// Source decodes a video file into raw RGBA frames at a fixed rate through a
// pipe. Encoder starts an ffmpeg process that reads raw RGBA frames on stdin,
// muxes the routed audio file, and writes the container to a hidden partial
// file that is renamed into place only when the encode finishes cleanly.
package ffmpeg
