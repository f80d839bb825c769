package render

import (
	"context"
	"time"
)

// Step performs one capture tick and reports whether capture is finished.
type Step func() (done bool, err error)

// Scheduler runs a Step repeatedly until it reports done, returns an error,
// or ctx ends. Cancellation is checked before every step.
type Scheduler interface {
	Run(ctx context.Context, fps int, step Step) error
}

// FrameClock paces steps at the frame rate, so capture takes roughly the
// source's playback duration.
type FrameClock struct{}

func (FrameClock) Run(ctx context.Context, fps int, step Step) error {
	if fps <= 0 {
		fps = DefaultFPS
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		done, err := step()
		if err != nil || done {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Immediate runs steps back to back as fast as the sink accepts frames.
type Immediate struct{}

func (Immediate) Run(ctx context.Context, _ int, step Step) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		done, err := step()
		if err != nil || done {
			return err
		}
	}
}
