package audio

import (
	"context"
	"os/exec"
	"strings"

	"dubstudio/internal/services"
)

// ExtractArgs returns the ffmpeg arguments that write the first audio stream
// of source to dest as mono 16 kHz signed 16-bit WAV.
func ExtractArgs(source, dest string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-map", "0:a:0",
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		dest,
	}
}

// Extract runs ffmpeg to produce a transcription-ready WAV from source.
func Extract(ctx context.Context, ffmpegBinary, source, dest string) error {
	if strings.TrimSpace(ffmpegBinary) == "" {
		ffmpegBinary = "ffmpeg"
	}
	cmd := exec.CommandContext(ctx, ffmpegBinary, ExtractArgs(source, dest)...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		if ctxErr := services.FromContext(ctx, "extract audio"); ctxErr != nil {
			return ctxErr
		}
		return services.Wrap(services.ErrExternalTool, "extract audio", "ffmpeg", strings.TrimSpace(string(output)), err)
	}
	return nil
}
