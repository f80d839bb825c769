package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// pollInterval is how often Since re-reads a file while waiting.
const pollInterval = 250 * time.Millisecond

// Chunk is a run of complete lines and the byte offset just past them.
type Chunk struct {
	Lines  []string
	Offset int64
}

// Last returns up to limit trailing lines of path. A missing file yields an
// empty chunk at offset 0.
func Last(path string, limit int) (Chunk, error) {
	file, err := open(path)
	if err != nil || file == nil {
		return Chunk{}, err
	}
	defer file.Close()

	if limit <= 0 {
		end, err := file.Seek(0, io.SeekEnd)
		if err != nil {
			return Chunk{}, fmt.Errorf("seek log file: %w", err)
		}
		return Chunk{Offset: end}, nil
	}

	ring := make([]string, 0, limit)
	offset, err := scanLines(file, 0, func(line string) {
		if len(ring) == limit {
			ring = append(ring[:0], ring[1:]...)
		}
		ring = append(ring, line)
	})
	if err != nil {
		return Chunk{}, err
	}
	return Chunk{Lines: ring, Offset: offset}, nil
}

// Since returns the complete lines written after offset. With wait > 0 it
// polls until a line arrives, wait elapses or ctx ends. A file shorter than
// offset was truncated or rotated and is read from the start.
func Since(ctx context.Context, path string, offset int64, wait time.Duration) (Chunk, error) {
	deadline := time.Now().Add(wait)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		chunk, err := readFrom(path, offset)
		if err != nil {
			return Chunk{Offset: offset}, err
		}
		if len(chunk.Lines) > 0 || wait <= 0 || time.Now().After(deadline) {
			return chunk, nil
		}
		offset = chunk.Offset
		select {
		case <-ctx.Done():
			return chunk, ctx.Err()
		case <-ticker.C:
		}
	}
}

func readFrom(path string, offset int64) (Chunk, error) {
	file, err := open(path)
	if err != nil || file == nil {
		return Chunk{}, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return Chunk{}, fmt.Errorf("stat log file: %w", err)
	}
	if offset < 0 || offset > info.Size() {
		offset = 0
	}
	var lines []string
	next, err := scanLines(file, offset, func(line string) { lines = append(lines, line) })
	if err != nil {
		return Chunk{}, err
	}
	return Chunk{Lines: lines, Offset: next}, nil
}

func open(path string) (*os.File, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		file.Close()
		return nil, fmt.Errorf("log path %q is a directory", path)
	}
	return file, nil
}

// scanLines calls fn for each newline-terminated line after offset and
// returns the offset past the last one. A trailing partial line is left for
// the next read so a record being written is never split.
func scanLines(file *os.File, offset int64, fn func(string)) (int64, error) {
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return offset, fmt.Errorf("seek log file: %w", err)
	}
	reader := bufio.NewReaderSize(file, 64*1024)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return offset, nil
			}
			return offset, fmt.Errorf("read log file: %w", err)
		}
		offset += int64(len(line))
		fn(line[:len(line)-1])
	}
}
