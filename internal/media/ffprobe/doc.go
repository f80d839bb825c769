// Package ffprobe runs ffprobe against a source video and decodes its JSON
// report. Inspect is the entry point; Result answers the questions a render
// needs before it starts: how long, how large, how many frames per second,
// and whether there is an audio stream to route.
package ffprobe
