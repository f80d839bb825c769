// Package huggingface calls the hosted Hugging Face inference API for
// speech recognition (Whisper) and speech synthesis (MMS TTS).
//
// Transcriber uploads extracted WAV audio and maps the returned chunks to
// caption segments. Synthesizer posts {"inputs": text} and returns the raw
// audio bytes. Every failure is tagged services.ErrCollaborator except a
// missing token, which is a configuration error.
package huggingface
