package render

import (
	"fmt"
	"os"
	"path/filepath"

	"dubstudio/internal/media/audio"
	"dubstudio/internal/services"
)

// AudioKind names the single audio signal routed into the output.
type AudioKind int

const (
	AudioNone AudioKind = iota
	AudioSource
	AudioOverride
)

func (k AudioKind) String() string {
	switch k {
	case AudioSource:
		return "source"
	case AudioOverride:
		return "override"
	default:
		return "none"
	}
}

// AudioSignal is the routing decision for a job.
type AudioSignal struct {
	Kind       AudioKind
	SourcePath string
	Override   *audio.Decoded
}

// SelectAudioSource routes the override buffer when present, muting the
// source; otherwise the source's own audio plays in lock-step with the video.
// Original and override audio are never mixed.
func SelectAudioSource(info MediaInfo, override *audio.Decoded) AudioSignal {
	if override != nil && override.Frames() > 0 {
		return AudioSignal{Kind: AudioOverride, Override: override}
	}
	if info.HasAudio {
		return AudioSignal{Kind: AudioSource, SourcePath: info.Path}
	}
	return AudioSignal{Kind: AudioNone}
}

// AudioRoute is the encoder-facing form of an AudioSignal: a file whose first
// audio stream is muxed from time zero.
type AudioRoute struct {
	Kind AudioKind
	Path string
}

// openAudioRoute materialises the signal for the encoder. Override buffers
// are written to a temporary WAV in dir, removed by the returned release.
func openAudioRoute(signal AudioSignal, dir string) (AudioRoute, func(), error) {
	switch signal.Kind {
	case AudioOverride:
		f, err := os.CreateTemp(dir, "dub-*.wav")
		if err != nil {
			return AudioRoute{}, nil, services.Wrap(services.ErrRenderResource, "render", "audio route", "create temp wav", err)
		}
		path := f.Name()
		_ = f.Close()
		if err := audio.WriteWAVFile(path, signal.Override); err != nil {
			_ = os.Remove(path)
			return AudioRoute{}, nil, services.Wrap(services.ErrRenderResource, "render", "audio route", filepath.Base(path), err)
		}
		return AudioRoute{Kind: AudioOverride, Path: path}, func() { _ = os.Remove(path) }, nil
	case AudioSource:
		return AudioRoute{Kind: AudioSource, Path: signal.SourcePath}, func() {}, nil
	case AudioNone:
		return AudioRoute{Kind: AudioNone}, func() {}, nil
	default:
		return AudioRoute{}, nil, fmt.Errorf("unknown audio kind %d", signal.Kind)
	}
}
