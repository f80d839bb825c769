package audio

import (
	"time"

	"github.com/gopxl/beep"
)

// Decoded is a PCM buffer with one float32 slice per channel. Samples are in
// [-1, 1]; all channels have the same length.
type Decoded struct {
	SampleRate int
	Channels   [][]float32
}

// NumChannels returns the channel count.
func (d *Decoded) NumChannels() int {
	if d == nil {
		return 0
	}
	return len(d.Channels)
}

// Frames returns the number of samples per channel.
func (d *Decoded) Frames() int {
	if d == nil || len(d.Channels) == 0 {
		return 0
	}
	return len(d.Channels[0])
}

// Duration returns the playback length.
func (d *Decoded) Duration() time.Duration {
	if d == nil || d.SampleRate <= 0 {
		return 0
	}
	return beep.SampleRate(d.SampleRate).D(d.Frames())
}

// Format describes the buffer as a 16-bit beep format.
func (d *Decoded) Format() beep.Format {
	return beep.Format{
		SampleRate:  beep.SampleRate(d.SampleRate),
		NumChannels: d.NumChannels(),
		Precision:   2,
	}
}

// Streamer returns a beep streamer that plays the buffer from the start.
// Mono buffers are duplicated into both stereo slots.
func (d *Decoded) Streamer() beep.Streamer {
	return &bufferStreamer{buf: d}
}

type bufferStreamer struct {
	buf *Decoded
	pos int
}

func (s *bufferStreamer) Stream(samples [][2]float64) (int, bool) {
	total := s.buf.Frames()
	if s.pos >= total {
		return 0, false
	}
	n := 0
	for n < len(samples) && s.pos < total {
		left := float64(s.buf.Channels[0][s.pos])
		right := left
		if len(s.buf.Channels) > 1 {
			right = float64(s.buf.Channels[1][s.pos])
		}
		samples[n] = [2]float64{left, right}
		n++
		s.pos++
	}
	return n, true
}

func (s *bufferStreamer) Err() error { return nil }
