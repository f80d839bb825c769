package deps

import (
	"bufio"
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"
)

const versionTimeout = 5 * time.Second

// WithVersions fills Detail for available tools with the first line of
// their "-version" output. Tools that fail to report keep an empty detail.
func WithVersions(ctx context.Context, statuses []Status) []Status {
	out := make([]Status, len(statuses))
	for i, status := range statuses {
		if status.Available && status.Detail == "" {
			status.Detail = Version(ctx, status.Command)
		}
		out[i] = status
	}
	return out
}

// Version runs command -version and returns the first non-empty line.
func Version(ctx context.Context, command string) string {
	command = strings.TrimSpace(command)
	if command == "" {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()
	output, err := exec.CommandContext(ctx, command, "-version").Output() //nolint:gosec
	if err != nil {
		return ""
	}
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			return line
		}
	}
	return ""
}
