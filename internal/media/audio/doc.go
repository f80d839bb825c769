// Package audio decodes, holds, and writes the in-memory PCM buffers used for
// dubbing.
//
// Synthesized speech arrives as bytes whose container is not guaranteed:
// Decode tries a WAV container first and falls back to raw 16-bit
// little-endian PCM. The resulting Decoded buffer is read-only once handed to
// a render job; the render pipeline writes it to a temporary WAV that the
// encoder mixes in place of the source audio.
//
// Extract pulls a mono 16 kHz WAV out of a video for transcription.
package audio
