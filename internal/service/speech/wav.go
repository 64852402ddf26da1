package speech

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
)

// WAVInfo describes the fmt chunk of a RIFF/WAVE file.
type WAVInfo struct {
	FormatTag     uint16
	Channels      int
	SampleRate    int
	BitsPerSample int
	BlockAlign    int
}

// Frames returns how many sample frames pcm holds.
func (i WAVInfo) Frames(pcm []byte) int {
	if i.BlockAlign == 0 {
		return 0
	}
	return len(pcm) / i.BlockAlign
}

// ParseWAV walks the RIFF chunks and returns the fmt header and the data
// chunk payload.
func ParseWAV(data []byte) (WAVInfo, []byte, error) {
	if len(data) == 0 {
		return WAVInfo{}, nil, ErrEmptyAudio
	}
	if len(data) < 12 || !bytes.HasPrefix(data, []byte("RIFF")) || !bytes.Equal(data[8:12], []byte("WAVE")) {
		return WAVInfo{}, nil, fmt.Errorf("%w: missing RIFF/WAVE header", ErrInvalidWAV)
	}

	var (
		info    WAVInfo
		haveFmt bool
	)

	i := 12
	for i+8 <= len(data) {
		chunkID := string(data[i : i+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[i+4 : i+8]))
		body := i + 8
		next := body + chunkSize
		if next > len(data) || next < body {
			if chunkID == "data" && haveFmt {
				// Streaming encoders leave the size unset; take what is present.
				next = len(data)
			} else {
				return WAVInfo{}, nil, fmt.Errorf("%w: %q chunk exceeds file length", ErrInvalidWAV, chunkID)
			}
		}

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return WAVInfo{}, nil, fmt.Errorf("%w: fmt chunk too short", ErrInvalidWAV)
			}
			info = WAVInfo{
				FormatTag:     binary.LittleEndian.Uint16(data[body : body+2]),
				Channels:      int(binary.LittleEndian.Uint16(data[body+2 : body+4])),
				SampleRate:    int(binary.LittleEndian.Uint32(data[body+4 : body+8])),
				BlockAlign:    int(binary.LittleEndian.Uint16(data[body+12 : body+14])),
				BitsPerSample: int(binary.LittleEndian.Uint16(data[body+14 : body+16])),
			}
			if info.FormatTag == wavFormatExtensible && chunkSize >= 26 {
				// WAVE_FORMAT_EXTENSIBLE stores the real tag at the start of the sub-format GUID.
				info.FormatTag = binary.LittleEndian.Uint16(data[body+24 : body+26])
			}
			haveFmt = true
		case "data":
			if !haveFmt {
				return WAVInfo{}, nil, fmt.Errorf("%w: data chunk before fmt chunk", ErrInvalidWAV)
			}
			return info, data[body:next], nil
		}

		if chunkSize%2 != 0 {
			next++
		}
		i = next
	}

	if !haveFmt {
		return WAVInfo{}, nil, fmt.Errorf("%w: fmt chunk not found", ErrInvalidWAV)
	}
	return WAVInfo{}, nil, fmt.Errorf("%w: data chunk not found", ErrInvalidWAV)
}

// ValidateRecognizerFormat checks the mono / 16-bit PCM / 16 kHz constraints
// in that order and reports the first violation. A header whose block align
// disagrees with those fields is rejected as ErrInvalidWAV.
func ValidateRecognizerFormat(info WAVInfo) error {
	if info.Channels != RequiredChannels {
		return &UnsupportedAudioFormatError{Constraint: ConstraintChannels, Got: info.Channels, Want: RequiredChannels}
	}
	if info.BitsPerSample != RequiredSampleBits || info.FormatTag != wavFormatPCM {
		return &UnsupportedAudioFormatError{Constraint: ConstraintSampleWidth, Got: info.BitsPerSample, Want: RequiredSampleBits}
	}
	if info.SampleRate != RequiredSampleRate {
		return &UnsupportedAudioFormatError{Constraint: ConstraintSampleRate, Got: info.SampleRate, Want: RequiredSampleRate}
	}
	if info.BlockAlign != recognizerFrameBytes {
		return fmt.Errorf("%w: block align %d does not match %d-byte frames", ErrInvalidWAV, info.BlockAlign, recognizerFrameBytes)
	}
	return nil
}

// recognizerFrameBytes is the size of one mono 16-bit frame.
const recognizerFrameBytes = RequiredChannels * RequiredSampleBits / 8

// EncodeWAV wraps 16-bit little-endian PCM in a canonical 44-byte header.
func EncodeWAV(pcm []byte, channels, sampleRate int) []byte {
	const bitsPerSample = 16
	blockAlign := channels * bitsPerSample / 8
	byteRate := sampleRate * blockAlign

	buf := bytes.NewBuffer(make([]byte, 0, 44+len(pcm)))
	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(buf, binary.LittleEndian, uint16(wavFormatPCM))
	_ = binary.Write(buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(buf, binary.LittleEndian, uint32(byteRate))
	_ = binary.Write(buf, binary.LittleEndian, uint16(blockAlign))
	_ = binary.Write(buf, binary.LittleEndian, uint16(bitsPerSample))
	buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)
	return buf.Bytes()
}
