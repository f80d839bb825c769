package ffmpeg

import (
	"context"
	"errors"
	"image"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"dubstudio/internal/render"
)

func writeStub(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

// catStub copies stdin to the last argument, standing in for an encoder.
const catStub = "for a in \"$@\"; do out=\"$a\"; done\ncat > \"$out\"\n"

func sinkSpec(dir string) render.SinkSpec {
	return render.SinkSpec{
		OutputPath: filepath.Join(dir, "clip_1.webm"),
		Width:      4,
		Height:     2,
		FPS:        30,
		Format:     render.DefaultFormat,
	}
}

func TestEncodeArgsWithOverrideAudio(t *testing.T) {
	spec := sinkSpec("/out")
	spec.Audio = render.AudioRoute{Kind: render.AudioOverride, Path: "/tmp/dub.wav"}
	spec.Realtime = true
	args := EncodeArgs(spec, "/out/.clip.partial")
	joined := strings.Join(args, " ")
	for _, fragment := range []string{
		"-f rawvideo -pix_fmt rgba -s 4x2 -r 30 -i pipe:0",
		"-i /tmp/dub.wav",
		"-map 0:v:0 -map 1:a:0?",
		"-c:v libvpx-vp9",
		"-deadline realtime",
		"-c:a libopus",
		"-f webm /out/.clip.partial",
	} {
		if !strings.Contains(joined, fragment) {
			t.Fatalf("expected %q in %q", fragment, joined)
		}
	}
}

func TestEncodeArgsWithoutAudio(t *testing.T) {
	args := EncodeArgs(sinkSpec("/out"), "/out/x")
	if !slices.Contains(args, "-an") {
		t.Fatalf("expected -an for silent output: %v", args)
	}
	if slices.Contains(args, "1:a:0?") {
		t.Fatalf("unexpected audio map: %v", args)
	}
}

func TestPlaybackArgs(t *testing.T) {
	args := PlaybackArgs("in.mp4", render.PlaybackSpec{Width: 640, Height: 360, FPS: 30})
	joined := strings.Join(args, " ")
	for _, fragment := range []string{"-i in.mp4", "fps=30,scale=640:360", "-pix_fmt rgba", "-f rawvideo pipe:1"} {
		if !strings.Contains(joined, fragment) {
			t.Fatalf("expected %q in %q", fragment, joined)
		}
	}
}

func TestSinkFinalizeMovesOutput(t *testing.T) {
	dir := t.TempDir()
	enc := NewEncoder(writeStub(t, "ffmpeg", catStub), nil)
	spec := sinkSpec(dir)
	sink, err := enc.OpenSink(context.Background(), spec)
	if err != nil {
		t.Fatalf("OpenSink: %v", err)
	}
	frame := image.NewRGBA(image.Rect(0, 0, 4, 2))
	for i := 0; i < 3; i++ {
		if err := sink.WriteFrame(context.Background(), frame); err != nil {
			t.Fatalf("WriteFrame: %v", err)
		}
	}
	if err := sink.Finalize(context.Background()); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	info, err := os.Stat(spec.OutputPath)
	if err != nil {
		t.Fatalf("expected output: %v", err)
	}
	if info.Size() != 3*4*2*4 {
		t.Fatalf("expected %d bytes, got %d", 3*4*2*4, info.Size())
	}
	if err := sink.Abort(); err != nil {
		t.Fatalf("Abort after Finalize: %v", err)
	}
	if _, err := os.Stat(spec.OutputPath); err != nil {
		t.Fatalf("abort after finalize must keep output: %v", err)
	}
}

func TestSinkWritesSubImageRows(t *testing.T) {
	dir := t.TempDir()
	enc := NewEncoder(writeStub(t, "ffmpeg", catStub), nil)
	spec := sinkSpec(dir)
	sink, err := enc.OpenSink(context.Background(), spec)
	if err != nil {
		t.Fatalf("OpenSink: %v", err)
	}
	big := image.NewRGBA(image.Rect(0, 0, 8, 4))
	sub := big.SubImage(image.Rect(2, 1, 6, 3)).(*image.RGBA)
	if err := sink.WriteFrame(context.Background(), sub); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	if err := sink.Finalize(context.Background()); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	info, err := os.Stat(spec.OutputPath)
	if err != nil || info.Size() != 4*2*4 {
		t.Fatalf("expected one packed frame, got %v err=%v", info, err)
	}
}

func TestSinkAbortRemovesPartial(t *testing.T) {
	dir := t.TempDir()
	enc := NewEncoder(writeStub(t, "ffmpeg", catStub), nil)
	spec := sinkSpec(dir)
	sink, err := enc.OpenSink(context.Background(), spec)
	if err != nil {
		t.Fatalf("OpenSink: %v", err)
	}
	if err := sink.WriteFrame(context.Background(), image.NewRGBA(image.Rect(0, 0, 4, 2))); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	if err := sink.Abort(); err != nil {
		t.Fatalf("Abort: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("expected empty output dir after abort, found %d entries", len(entries))
	}
	if err := sink.WriteFrame(context.Background(), image.NewRGBA(image.Rect(0, 0, 4, 2))); err == nil {
		t.Fatal("expected write after abort to fail")
	}
}

func TestSinkFinalizeReportsEncoderFailure(t *testing.T) {
	dir := t.TempDir()
	enc := NewEncoder(writeStub(t, "ffmpeg", "cat > /dev/null\necho 'Unknown encoder libvpx-vp9' >&2\nexit 1\n"), nil)
	spec := sinkSpec(dir)
	sink, err := enc.OpenSink(context.Background(), spec)
	if err != nil {
		t.Fatalf("OpenSink: %v", err)
	}
	err = sink.Finalize(context.Background())
	if err == nil || !strings.Contains(err.Error(), "Unknown encoder") {
		t.Fatalf("expected encoder stderr in error, got %v", err)
	}
	if _, statErr := os.Stat(spec.OutputPath); !os.IsNotExist(statErr) {
		t.Fatalf("expected no output after failure, stat err=%v", statErr)
	}
}

func TestPlaybackReadsFramesUntilEOF(t *testing.T) {
	src := NewSource("in.mp4", writeStub(t, "ffmpeg", "dd if=/dev/zero bs=32 count=3 2>/dev/null\n"), "")
	pb, err := src.Play(context.Background(), render.PlaybackSpec{Width: 4, Height: 2, FPS: 30})
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	defer pb.Close()
	var times []float64
	for {
		frame, err := pb.Next(context.Background())
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if frame.Image.Bounds().Dx() != 4 {
			t.Fatalf("unexpected frame bounds %v", frame.Image.Bounds())
		}
		times = append(times, frame.Time)
	}
	if len(times) != 3 || times[0] != 0 || times[2] != 2.0/30 {
		t.Fatalf("unexpected frame times %v", times)
	}
}

func TestPlaybackTruncatedFrame(t *testing.T) {
	src := NewSource("in.mp4", writeStub(t, "ffmpeg", "dd if=/dev/zero bs=40 count=1 2>/dev/null\n"), "")
	pb, err := src.Play(context.Background(), render.PlaybackSpec{Width: 4, Height: 2, FPS: 30})
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	defer pb.Close()
	if _, err := pb.Next(context.Background()); err != nil {
		t.Fatalf("first frame: %v", err)
	}
	if _, err := pb.Next(context.Background()); err == nil || errors.Is(err, io.EOF) {
		t.Fatalf("expected truncation error, got %v", err)
	}
}

func TestPlaybackDecoderFailure(t *testing.T) {
	src := NewSource("in.mp4", writeStub(t, "ffmpeg", "echo 'Invalid data found' >&2\nexit 1\n"), "")
	pb, err := src.Play(context.Background(), render.PlaybackSpec{Width: 4, Height: 2, FPS: 30})
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	defer pb.Close()
	_, err = pb.Next(context.Background())
	if err == nil || errors.Is(err, io.EOF) || !strings.Contains(err.Error(), "Invalid data") {
		t.Fatalf("expected decoder failure, got %v", err)
	}
}

func TestSourceProbe(t *testing.T) {
	payload := `{"streams":[{"index":0,"codec_type":"video","width":1920,"height":1080},{"index":1,"codec_type":"audio"}],"format":{"duration":"12.5"}}`
	probe := writeStub(t, "ffprobe", "printf '%s' '"+payload+"'\n")
	info, err := NewSource("/videos/in.mp4", "", probe).Probe(context.Background())
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if info.Width != 1920 || info.Height != 1080 || info.Duration != 12.5 || !info.HasAudio || info.Path != "/videos/in.mp4" {
		t.Fatalf("unexpected info %+v", info)
	}
}

func TestSourceProbeRequiresVideo(t *testing.T) {
	probe := writeStub(t, "ffprobe", "printf '%s' '{\"streams\":[{\"codec_type\":\"audio\"}],\"format\":{}}'\n")
	if _, err := NewSource("a.wav", "", probe).Probe(context.Background()); err == nil {
		t.Fatal("expected error for audio-only input")
	}
}
