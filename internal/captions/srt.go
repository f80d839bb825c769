package captions

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// WriteSRT renders caps as a SubRip document.
func WriteSRT(w io.Writer, caps []Caption) error {
	bw := bufio.NewWriter(w)
	for i, c := range caps {
		text := strings.TrimSpace(c.Text)
		if text == "" {
			text = " "
		}
		if _, err := fmt.Fprintf(bw, "%d\n%s --> %s\n%s\n\n", i+1, srtTimestamp(c.Start), srtTimestamp(c.End), text); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func srtTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	ms := int64(math.Round(seconds * 1000))
	h := ms / 3_600_000
	ms -= h * 3_600_000
	m := ms / 60_000
	ms -= m * 60_000
	s := ms / 1000
	ms -= s * 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// ParseSRT reads a SubRip document into raw segments. Cue numbers are
// ignored; blocks without a timing line are skipped.
func ParseSRT(r io.Reader) ([]Segment, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read srt: %w", err)
	}
	content := strings.ReplaceAll(string(data), "\r\n", "\n")
	var out []Segment
	for _, block := range strings.Split(strings.TrimSpace(content), "\n\n") {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		for i, line := range lines {
			if !strings.Contains(line, "-->") {
				continue
			}
			parts := strings.Split(line, "-->")
			if len(parts) != 2 {
				return nil, fmt.Errorf("invalid timing line %q", line)
			}
			start, err := parseSRTTimestamp(parts[0])
			if err != nil {
				return nil, err
			}
			end, err := parseSRTTimestamp(parts[1])
			if err != nil {
				return nil, err
			}
			out = append(out, Segment{
				Start: start,
				End:   end,
				Text:  strings.Join(lines[i+1:], "\n"),
			})
			break
		}
	}
	return out, nil
}

func parseSRTTimestamp(value string) (float64, error) {
	value = strings.ReplaceAll(strings.TrimSpace(value), ".", ",")
	hmsPart, msPart, ok := strings.Cut(value, ",")
	if !ok {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(hmsPart, ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(msPart)
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return float64(hours*3600+minutes*60+seconds) + float64(millis)/1000, nil
}
