package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// HeaderSize is the length of the canonical RIFF/WAVE header.
const HeaderSize = 44

const pcmFormat = 1

// EncodeWAV prefixes pcm with a canonical 44-byte header. Zero fields of f
// take their DefaultFormat values.
func EncodeWAV(pcm []byte, f Format) []byte {
	f = f.withDefaults()
	dataSize := uint32(len(pcm))

	out := make([]byte, HeaderSize, HeaderSize+len(pcm))
	copy(out[0:4], "RIFF")
	binary.LittleEndian.PutUint32(out[4:8], 36+dataSize)
	copy(out[8:12], "WAVE")
	copy(out[12:16], "fmt ")
	binary.LittleEndian.PutUint32(out[16:20], 16)
	binary.LittleEndian.PutUint16(out[20:22], pcmFormat)
	binary.LittleEndian.PutUint16(out[22:24], uint16(f.Channels))
	binary.LittleEndian.PutUint32(out[24:28], uint32(f.SampleRate))
	binary.LittleEndian.PutUint32(out[28:32], uint32(f.ByteRate()))
	binary.LittleEndian.PutUint16(out[32:34], uint16(f.BlockAlign()))
	binary.LittleEndian.PutUint16(out[34:36], uint16(f.BitsPerSample))
	copy(out[36:40], "data")
	binary.LittleEndian.PutUint32(out[40:44], dataSize)
	return append(out, pcm...)
}

// ParseWAVHeader reads back the format and payload size of a canonical
// PCM WAV file.
func ParseWAVHeader(b []byte) (Format, uint32, error) {
	if len(b) < HeaderSize {
		return Format{}, 0, fmt.Errorf("%w: %d bytes is shorter than a WAV header", ErrMalformedAudio, len(b))
	}
	if !bytes.Equal(b[0:4], []byte("RIFF")) || !bytes.Equal(b[8:12], []byte("WAVE")) {
		return Format{}, 0, fmt.Errorf("%w: missing RIFF/WAVE signature", ErrMalformedAudio)
	}
	if !bytes.Equal(b[12:16], []byte("fmt ")) || !bytes.Equal(b[36:40], []byte("data")) {
		return Format{}, 0, fmt.Errorf("%w: non-canonical chunk layout", ErrMalformedAudio)
	}
	if tag := binary.LittleEndian.Uint16(b[20:22]); tag != pcmFormat {
		return Format{}, 0, fmt.Errorf("%w: audio format %d is not PCM", ErrMalformedAudio, tag)
	}

	f := Format{
		Channels:      int(binary.LittleEndian.Uint16(b[22:24])),
		SampleRate:    int(binary.LittleEndian.Uint32(b[24:28])),
		BitsPerSample: int(binary.LittleEndian.Uint16(b[34:36])),
	}
	return f, binary.LittleEndian.Uint32(b[40:44]), nil
}

// DecodeWAV splits a canonical WAV file into format and payload.
func DecodeWAV(b []byte) (Format, []byte, error) {
	f, size, err := ParseWAVHeader(b)
	if err != nil {
		return Format{}, nil, err
	}
	if int(size) > len(b)-HeaderSize {
		return Format{}, nil, fmt.Errorf("%w: data chunk claims %d bytes, %d present", ErrMalformedAudio, size, len(b)-HeaderSize)
	}
	return f, b[HeaderSize : HeaderSize+int(size)], nil
}
