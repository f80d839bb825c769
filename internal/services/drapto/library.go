package drapto

import (
	"context"
	"path/filepath"
	"strings"

	draptolib "github.com/five82/drapto"

	"dubstudio/internal/services"
)

// Archiver produces an archival copy of a finished render.
type Archiver interface {
	Archive(ctx context.Context, inputPath, outputDir string, progress func(ProgressUpdate)) (string, error)
}

// Library implements Archiver using the Drapto Go library directly.
type Library struct{}

// NewLibrary constructs a Library client.
func NewLibrary() *Library {
	return &Library{}
}

// ArchivePath returns where Archive writes the copy of inputPath.
func ArchivePath(inputPath, outputDir string) string {
	base := filepath.Base(inputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = base
	}
	return filepath.Join(strings.TrimSpace(outputDir), stem+".mkv")
}

// Archive AV1-encodes inputPath into outputDir and returns the output path.
func (l *Library) Archive(ctx context.Context, inputPath, outputDir string, progress func(ProgressUpdate)) (string, error) {
	if strings.TrimSpace(inputPath) == "" {
		return "", services.Wrap(services.ErrValidation, "archive", "drapto", "input path required", nil)
	}
	if strings.TrimSpace(outputDir) == "" {
		return "", services.Wrap(services.ErrValidation, "archive", "drapto", "output directory required", nil)
	}
	enc, err := draptolib.New(draptolib.WithResponsive())
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, "archive", "drapto", "create encoder", err)
	}
	var rep draptolib.Reporter
	if progress != nil {
		rep = newReporter(progress)
	}
	if _, err := enc.EncodeWithReporter(ctx, inputPath, strings.TrimSpace(outputDir), rep); err != nil {
		if ctxErr := services.FromContext(ctx, "archive"); ctxErr != nil {
			return "", ctxErr
		}
		return "", services.Wrap(services.ErrExternalTool, "archive", "drapto", "encode failed", err)
	}
	return ArchivePath(inputPath, outputDir), nil
}

var _ Archiver = (*Library)(nil)
