package render

import (
	"context"
	"errors"
	"testing"
	"time"

	"dubstudio/internal/media/audio"
)

func TestProgressReporterMonotonicAndClamped(t *testing.T) {
	var got []float64
	r := newProgressReporter(func(v float64) { got = append(got, v) })
	for _, v := range []float64{-0.5, 0.2, 0.1, 0.2, 0.7, 3} {
		r.report(v)
	}
	want := []float64{0, 0.2, 0.7, 1}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestProgressReporterCompleteAndClose(t *testing.T) {
	var got []float64
	r := newProgressReporter(func(v float64) { got = append(got, v) })
	r.report(0.5)
	r.complete()
	r.report(0.9)
	if got[len(got)-1] != 1 || len(got) != 2 {
		t.Fatalf("unexpected values %v", got)
	}

	got = nil
	closed := newProgressReporter(func(v float64) { got = append(got, v) })
	closed.close()
	closed.report(0.3)
	closed.complete()
	if len(got) != 0 {
		t.Fatalf("closed reporter emitted %v", got)
	}
}

func TestSelectAudioSource(t *testing.T) {
	info := MediaInfo{Path: "in.mp4", HasAudio: true}
	if sig := SelectAudioSource(info, nil); sig.Kind != AudioSource || sig.SourcePath != "in.mp4" {
		t.Fatalf("expected source audio, got %+v", sig)
	}
	buf := &audio.Decoded{SampleRate: 24000, Channels: [][]float32{{0.1}}}
	if sig := SelectAudioSource(info, buf); sig.Kind != AudioOverride || sig.Override != buf || sig.SourcePath != "" {
		t.Fatalf("expected override only, got %+v", sig)
	}
	if sig := SelectAudioSource(MediaInfo{Path: "silent.mp4"}, nil); sig.Kind != AudioNone {
		t.Fatalf("expected no audio, got %+v", sig)
	}
	empty := &audio.Decoded{SampleRate: 24000, Channels: [][]float32{{}}}
	if sig := SelectAudioSource(info, empty); sig.Kind != AudioSource {
		t.Fatalf("expected empty override to be ignored, got %+v", sig)
	}
}

func TestStateTransitions(t *testing.T) {
	j := &job{state: StateIdle}
	j.transition(StateCapturing)
	if j.current() != StateIdle {
		t.Fatalf("idle must not jump to capturing, got %s", j.current())
	}
	j.transition(StatePriming)
	j.transition(StateCapturing)
	j.transition(StateCancelled)
	j.transition(StateCompleted)
	if j.current() != StateCancelled {
		t.Fatalf("terminal state must be final, got %s", j.current())
	}
}

func TestImmediateSchedulerStopsOnDoneAndCancel(t *testing.T) {
	calls := 0
	err := Immediate{}.Run(context.Background(), 30, func() (bool, error) {
		calls++
		return calls == 5, nil
	})
	if err != nil || calls != 5 {
		t.Fatalf("expected 5 calls, got %d err=%v", calls, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	calls = 0
	err = Immediate{}.Run(ctx, 30, func() (bool, error) {
		calls++
		if calls == 2 {
			cancel()
		}
		return false, nil
	})
	if !errors.Is(err, context.Canceled) || calls != 2 {
		t.Fatalf("expected cancellation after 2 calls, got %d err=%v", calls, err)
	}
}

func TestFrameClockPacesSteps(t *testing.T) {
	start := time.Now()
	calls := 0
	err := FrameClock{}.Run(context.Background(), 100, func() (bool, error) {
		calls++
		return calls == 6, nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Fatalf("expected paced capture of about 50ms, took %v", elapsed)
	}
}

func TestFrameClockPropagatesStepError(t *testing.T) {
	boom := errors.New("boom")
	err := FrameClock{}.Run(context.Background(), 1000, func() (bool, error) { return false, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected step error, got %v", err)
	}
}

func TestLookupFormat(t *testing.T) {
	f, err := LookupFormat("", "", "")
	if err != nil || f.MIMEType != "video/webm" || f.VideoCodec != "libvpx-vp9" || f.AudioCodec != "libopus" {
		t.Fatalf("unexpected default format %+v err=%v", f, err)
	}
	f, err = LookupFormat("MP4", "", "libopus")
	if err != nil || f.Extension != "mp4" || f.AudioCodec != "libopus" {
		t.Fatalf("unexpected mp4 format %+v err=%v", f, err)
	}
	if _, err := LookupFormat("avi", "", ""); err == nil {
		t.Fatal("expected unsupported container error")
	}
}

func TestArtifactName(t *testing.T) {
	at := time.UnixMilli(1712345678901)
	if got := ArtifactName("", DefaultFormat, at); got != "dubstudio_export_1712345678901.webm" {
		t.Fatalf("unexpected name %q", got)
	}
}
