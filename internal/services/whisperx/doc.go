// Package whisperx transcribes extracted audio by running the WhisperX CLI
// through uvx and reading its sentence-level JSON output.
//
// Configuration options (model, CUDA, VAD method, language hint) are passed
// via Config. The uvx launcher must be on PATH; preflight checks report it.
package whisperx
