package render

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// DefaultExportPrefix names output files when no prefix is configured.
const DefaultExportPrefix = "dubstudio_export"

// Artifact is the encoded output of a completed job.
type Artifact struct {
	Path     string
	Name     string
	MIMEType string
	Size     int64
	Width    int
	Height   int
	Duration float64
	Audio    AudioKind
}

// ArtifactName returns <prefix>_<unix-millis>.<ext>.
func ArtifactName(prefix string, f Format, at time.Time) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = DefaultExportPrefix
	}
	ext := f.Extension
	if ext == "" {
		ext = DefaultFormat.Extension
	}
	return fmt.Sprintf("%s_%d.%s", prefix, at.UnixMilli(), ext)
}

func artifactPath(dir, prefix string, f Format, at time.Time) string {
	return filepath.Join(dir, ArtifactName(prefix, f, at))
}
