package whisperx

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"dubstudio/internal/services"
)

func argValue(args []string, flag string) string {
	idx := slices.Index(args, flag)
	if idx < 0 || idx+1 >= len(args) {
		return ""
	}
	return args[idx+1]
}

func TestTranscribeReadsSegments(t *testing.T) {
	dir := t.TempDir()
	wav := filepath.Join(dir, "audio.wav")
	if err := os.WriteFile(wav, []byte("RIFF"), 0o644); err != nil {
		t.Fatalf("write wav: %v", err)
	}

	var gotArgs []string
	svc := NewService(Config{Model: "small", Language: "es-ES"}).WithCommandRunner(
		func(ctx context.Context, name string, args ...string) error {
			if name != UVXCommand {
				t.Fatalf("unexpected command %q", name)
			}
			gotArgs = args
			out := argValue(args, "--output_dir")
			payload := `{"segments":[{"start":0.5,"end":2,"text":" Hola "},{"start":2,"end":3,"text":"  "},{"start":3,"end":4.25,"text":"amigos"}]}`
			return os.WriteFile(filepath.Join(out, "audio.json"), []byte(payload), 0o644)
		})

	segments, err := svc.Transcribe(context.Background(), wav)
	if err != nil {
		t.Fatalf("Transcribe returned error: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("expected blank segment dropped, got %#v", segments)
	}
	if segments[0].Text != "Hola" || segments[0].Start != 0.5 || segments[1].End != 4.25 {
		t.Fatalf("unexpected segments: %#v", segments)
	}
	if argValue(gotArgs, "--model") != "small" || argValue(gotArgs, "--language") != "es" {
		t.Fatalf("unexpected args: %v", gotArgs)
	}
	if argValue(gotArgs, "--device") != CPUDevice || argValue(gotArgs, "--vad_method") != VADMethodSilero {
		t.Fatalf("expected cpu + silero defaults: %v", gotArgs)
	}
	if _, err := os.Stat(argValue(gotArgs, "--output_dir")); !os.IsNotExist(err) {
		t.Fatalf("expected scratch dir removed, stat err=%v", err)
	}
}

func TestTranscribeFailureIsCollaboratorError(t *testing.T) {
	wav := filepath.Join(t.TempDir(), "audio.wav")
	svc := NewService(Config{}).WithCommandRunner(func(context.Context, string, ...string) error {
		return errors.New("boom")
	})
	if _, err := svc.Transcribe(context.Background(), wav); !errors.Is(err, services.ErrCollaborator) {
		t.Fatalf("expected collaborator error, got %v", err)
	}

	svc = NewService(Config{}).WithCommandRunner(func(context.Context, string, ...string) error { return nil })
	if _, err := svc.Transcribe(context.Background(), wav); !errors.Is(err, services.ErrCollaborator) {
		t.Fatalf("expected missing output to fail, got %v", err)
	}
}

func TestBuildArgsCUDAAndPyannote(t *testing.T) {
	svc := NewService(Config{CUDAEnabled: true, VADMethod: VADMethodPyannote, HFToken: "hf"})
	args := svc.buildArgs("/tmp/a.wav", "/tmp/out")
	if argValue(args, "--index-url") != CUDAIndexURL || argValue(args, "--device") != CUDADevice {
		t.Fatalf("expected cuda args: %v", args)
	}
	if argValue(args, "--hf_token") != "hf" {
		t.Fatalf("expected hf token passed for pyannote: %v", args)
	}
	if slices.Contains(args, "--language") {
		t.Fatalf("expected no language without hint: %v", args)
	}
	if argValue(args, "--model") != DefaultModel {
		t.Fatalf("expected default model: %v", args)
	}
}
