// Package audio converts base64 PCM16 speech output into sample buffers
// and WAV files.
package audio

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrMalformedAudio is returned for undecodable or truncated input.
var ErrMalformedAudio = errors.New("malformed audio")

// Format describes interleaved linear PCM.
type Format struct {
	SampleRate    int `json:"sampleRate"`
	Channels      int `json:"channels"`
	BitsPerSample int `json:"bitsPerSample"`
}

// DefaultFormat is what the speech endpoint returns: 24 kHz mono PCM16.
var DefaultFormat = Format{SampleRate: 24000, Channels: 1, BitsPerSample: 16}

// BlockAlign is the byte size of one frame across all channels.
func (f Format) BlockAlign() int {
	return f.Channels * f.BitsPerSample / 8
}

// ByteRate is the number of payload bytes per second.
func (f Format) ByteRate() int {
	return f.SampleRate * f.BlockAlign()
}

func (f Format) withDefaults() Format {
	if f.SampleRate <= 0 {
		f.SampleRate = DefaultFormat.SampleRate
	}
	if f.Channels <= 0 {
		f.Channels = DefaultFormat.Channels
	}
	if f.BitsPerSample <= 0 {
		f.BitsPerSample = DefaultFormat.BitsPerSample
	}
	return f
}

// DecodeBase64PCM16 decodes standard base64 into raw little-endian PCM16
// bytes. Surrounding whitespace is ignored.
func DecodeBase64PCM16(s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedAudio, err)
	}
	if len(b)%2 != 0 {
		return nil, fmt.Errorf("%w: odd byte count %d for 16-bit samples", ErrMalformedAudio, len(b))
	}
	return b, nil
}

// EncodeBase64 is the inverse of DecodeBase64PCM16.
func EncodeBase64(pcm []byte) string {
	return base64.StdEncoding.EncodeToString(pcm)
}

// Samples reinterprets pcm as signed 16-bit little-endian samples.
// A trailing odd byte is ignored.
func Samples(pcm []byte) []int16 {
	out := make([]int16, len(pcm)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(pcm[2*i:]))
	}
	return out
}

// Buffer is a playable, de-interleaved float buffer.
type Buffer struct {
	SampleRate int
	Channels   [][]float32
}

// Frames is the number of samples per channel.
func (b Buffer) Frames() int {
	if len(b.Channels) == 0 {
		return 0
	}
	return len(b.Channels[0])
}

// Duration is the playback length of the buffer.
func (b Buffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(b.Frames()) * time.Second / time.Duration(b.SampleRate)
}

// ToBuffer normalises each sample to [-1, 1] by dividing by 32768 and
// splits interleaved channels.
func ToBuffer(pcm []byte, sampleRate, channels int) Buffer {
	if channels <= 0 {
		channels = 1
	}
	samples := Samples(pcm)
	frames := len(samples) / channels
	buf := Buffer{SampleRate: sampleRate, Channels: make([][]float32, channels)}
	for c := range buf.Channels {
		buf.Channels[c] = make([]float32, frames)
	}
	for i := 0; i < frames*channels; i++ {
		buf.Channels[i%channels][i/channels] = float32(samples[i]) / 32768
	}
	return buf
}

// Duration is the playback length of pcmLen payload bytes.
func Duration(pcmLen int, f Format) time.Duration {
	f = f.withDefaults()
	rate := f.ByteRate()
	if rate <= 0 {
		return 0
	}
	return time.Duration(int64(pcmLen) * int64(time.Second) / int64(rate))
}
