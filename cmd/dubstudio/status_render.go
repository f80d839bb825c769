package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"dubstudio/internal/deps"
	"dubstudio/internal/preflight"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

var statusStyles = map[statusKind]struct {
	label string
	color text.Color
}{
	statusInfo:  {"INFO", text.FgBlue},
	statusOK:    {"OK", text.FgGreen},
	statusWarn:  {"WARN", text.FgYellow},
	statusError: {"ERROR", text.FgRed},
}

// renderStatusLine prints "  Label:  [KIND] message" with the label padded
// so the brackets line up.
func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	style := statusStyles[kind]
	line := fmt.Sprintf("  %-20s [%s]", label+":", style.label)
	if message != "" {
		line += " " + message
	}
	if colorize {
		return style.color.Sprint(line)
	}
	return line
}

func renderSectionHeader(title string, colorize bool) string {
	line := "== " + strings.TrimSpace(title) + " =="
	if colorize {
		return text.FgBlue.Sprint(line)
	}
	return line
}

// toolLine warns, rather than fails, for a missing optional tool.
func toolLine(tool deps.Status, colorize bool) string {
	if tool.Available {
		return renderStatusLine(tool.Name, statusOK, tool.Detail, colorize)
	}
	if tool.Optional {
		return renderStatusLine(tool.Name, statusWarn, tool.Detail+" (optional)", colorize)
	}
	return renderStatusLine(tool.Name, statusError, tool.Detail+"; "+tool.Description, colorize)
}

func checkLine(check preflight.Result, colorize bool) string {
	if check.Passed {
		return renderStatusLine(check.Name, statusOK, check.Detail, colorize)
	}
	return renderStatusLine(check.Name, statusError, check.Detail, colorize)
}

// shouldColorize is true only for a terminal; pipes and buffers get plain text.
func shouldColorize(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
