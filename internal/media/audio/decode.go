package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"

	"dubstudio/internal/services"
)

// Default raw PCM layout used by the speech synthesis backend.
const (
	DefaultPCMSampleRate = 24000
	DefaultPCMChannels   = 1
)

// PCMFormat describes headerless 16-bit little-endian PCM.
type PCMFormat struct {
	SampleRate int
	Channels   int
}

func (f PCMFormat) normalized() PCMFormat {
	if f.SampleRate <= 0 {
		f.SampleRate = DefaultPCMSampleRate
	}
	if f.Channels <= 0 {
		f.Channels = DefaultPCMChannels
	}
	return f
}

// Decode interprets data as a WAV container and, when that fails, as raw PCM
// in the given layout. Empty input is a decode error.
func Decode(data []byte, fallback PCMFormat) (*Decoded, error) {
	if len(data) == 0 {
		return nil, services.Wrap(services.ErrMediaDecode, "audio", "decode", "empty audio payload", nil)
	}
	if decoded, err := decodeWAV(data); err == nil {
		return decoded, nil
	}
	return DecodePCM16(data, fallback)
}

// DecodePCM16 converts interleaved signed 16-bit little-endian samples to
// floats by dividing by 32768. A trailing partial frame is ignored.
func DecodePCM16(data []byte, format PCMFormat) (*Decoded, error) {
	format = format.normalized()
	frameBytes := 2 * format.Channels
	frames := len(data) / frameBytes
	if frames == 0 {
		return nil, services.Wrap(services.ErrMediaDecode, "audio", "decode pcm", fmt.Sprintf("%d bytes is shorter than one frame", len(data)), nil)
	}
	out := &Decoded{SampleRate: format.SampleRate, Channels: make([][]float32, format.Channels)}
	for ch := range out.Channels {
		out.Channels[ch] = make([]float32, frames)
	}
	for i := 0; i < frames; i++ {
		for ch := 0; ch < format.Channels; ch++ {
			offset := i*frameBytes + ch*2
			sample := int16(binary.LittleEndian.Uint16(data[offset : offset+2]))
			out.Channels[ch][i] = float32(sample) / 32768
		}
	}
	return out, nil
}

func decodeWAV(data []byte) (*Decoded, error) {
	stream, format, err := wav.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	channels := format.NumChannels
	if channels <= 0 || channels > 2 {
		return nil, fmt.Errorf("unsupported channel count %d", channels)
	}
	out := &Decoded{SampleRate: int(format.SampleRate), Channels: make([][]float32, channels)}
	if n := stream.Len(); n > 0 {
		for ch := range out.Channels {
			out.Channels[ch] = make([]float32, 0, n)
		}
	}
	buf := make([][2]float64, 512)
	for {
		n, ok := stream.Stream(buf)
		for i := 0; i < n; i++ {
			for ch := 0; ch < channels; ch++ {
				out.Channels[ch] = append(out.Channels[ch], float32(buf[i][ch]))
			}
		}
		if !ok {
			break
		}
	}
	if err := stream.Err(); err != nil {
		return nil, err
	}
	if out.Frames() == 0 {
		return nil, fmt.Errorf("wav contains no samples")
	}
	return out, nil
}

var _ beep.Streamer = (*bufferStreamer)(nil)
