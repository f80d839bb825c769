package audio

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gopxl/beep/wav"
)

// WriteWAVFile encodes d as 16-bit PCM WAV at path. The file is written to a
// sibling temp file and renamed into place.
func WriteWAVFile(path string, d *Decoded) error {
	if d.Frames() == 0 {
		return fmt.Errorf("write wav: empty buffer")
	}
	if d.NumChannels() > 2 {
		return fmt.Errorf("write wav: unsupported channel count %d", d.NumChannels())
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*.wav")
	if err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}()

	if err := wav.Encode(tmp, d.Streamer(), d.Format()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write wav: encode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write wav: close: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("write wav: rename: %w", err)
	}
	return nil
}

// ReadWAVFile decodes a WAV file written by WriteWAVFile.
func ReadWAVFile(path string) (*Decoded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read wav: %w", err)
	}
	decoded, err := decodeWAV(data)
	if err != nil {
		return nil, fmt.Errorf("read wav %s: %w", filepath.Base(path), err)
	}
	return decoded, nil
}
