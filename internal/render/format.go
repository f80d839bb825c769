package render

import (
	"fmt"
	"strings"
)

// Format is a container with its video and audio codec pair.
type Format struct {
	Container  string
	Extension  string
	MIMEType   string
	VideoCodec string
	AudioCodec string
}

var formats = map[string]Format{
	"webm": {Container: "webm", Extension: "webm", MIMEType: "video/webm", VideoCodec: "libvpx-vp9", AudioCodec: "libopus"},
	"mp4":  {Container: "mp4", Extension: "mp4", MIMEType: "video/mp4", VideoCodec: "libx264", AudioCodec: "aac"},
	"mkv":  {Container: "matroska", Extension: "mkv", MIMEType: "video/x-matroska", VideoCodec: "libvpx-vp9", AudioCodec: "libopus"},
}

// DefaultFormat is WebM with VP9 video and Opus audio.
var DefaultFormat = formats["webm"]

// LookupFormat resolves a container name, applying optional codec overrides.
func LookupFormat(container, videoCodec, audioCodec string) (Format, error) {
	key := strings.ToLower(strings.TrimSpace(container))
	if key == "" {
		key = "webm"
	}
	f, ok := formats[key]
	if !ok {
		return Format{}, fmt.Errorf("unsupported container %q", container)
	}
	if v := strings.TrimSpace(videoCodec); v != "" {
		f.VideoCodec = v
	}
	if a := strings.TrimSpace(audioCodec); a != "" {
		f.AudioCodec = a
	}
	return f, nil
}

// Containers lists the supported container names.
func Containers() []string {
	return []string{"mkv", "mp4", "webm"}
}
