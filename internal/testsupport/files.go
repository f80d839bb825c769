package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile creates path (and its parent directories) holding size filler
// bytes, at least one. Tests use it for source videos that are never decoded.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, bytes.Repeat([]byte{'v'}, int(max(size, 1))), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
