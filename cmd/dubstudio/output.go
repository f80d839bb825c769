package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"dubstudio/internal/language"
	"dubstudio/internal/store"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatTimestamp renders seconds as m:ss.mmm (or h:mm:ss.mmm).
func formatTimestamp(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second)).Round(time.Millisecond)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := d % time.Minute
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%06.3f", h, m, s.Seconds())
	}
	return fmt.Sprintf("%d:%06.3f", m, s.Seconds())
}

func languageLabel(code string) string {
	if strings.TrimSpace(code) == "" {
		return "-"
	}
	if t, ok := language.Lookup(code); ok {
		return fmt.Sprintf("%s (%s)", t.Name, t.Code)
	}
	return code
}

func statusLabel(p *store.Project) string {
	if p.Status == store.StatusError && p.ErrorMessage != "" {
		return fmt.Sprintf("error: %s", truncate(p.ErrorMessage, 60))
	}
	return string(p.Status)
}

func ago(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
