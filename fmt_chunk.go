package soundextract

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/riff"
)

// FormatDescriptor is the fmt chunk body carried by bank media: a
// WAVEFORMATEX followed by samples-per-block and a channel mask.
type FormatDescriptor struct {
	FormatTag       uint16
	Channels        uint16
	SampleRate      uint32
	AvgBytesPerSec  uint32
	BlockAlign      uint16
	BitsPerSample   uint16
	ExtraSize       uint16
	SamplesPerBlock uint16
	ChannelMask     uint32
}

// FormatKind classifies the payload selected by a format tag.
type FormatKind int

const (
	KindUnknown FormatKind = iota
	KindADPCM
	KindPCM
	KindVorbis
)

func (k FormatKind) String() string {
	switch k {
	case KindADPCM:
		return "adpcm"
	case KindPCM:
		return "pcm"
	case KindVorbis:
		return "vorbis"
	default:
		return "unknown"
	}
}

// MarshalText lets reports carry the kind as a string.
func (k FormatKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Kind returns the payload kind selected by the format tag.
func (f *FormatDescriptor) Kind() FormatKind {
	if f == nil {
		return KindUnknown
	}

	switch f.FormatTag {
	case formatPackedADPCM, formatIMAADPCM:
		return KindADPCM
	case formatExtensible, formatPCM:
		return KindPCM
	case formatVorbis:
		return KindVorbis
	default:
		return KindUnknown
	}
}

// AudioFormat returns the channel count and sample rate as an audio.Format.
func (f *FormatDescriptor) AudioFormat() *audio.Format {
	if f == nil {
		return nil
	}

	return &audio.Format{
		NumChannels: int(f.Channels),
		SampleRate:  int(f.SampleRate),
	}
}

// Frames returns the number of sample frames in payloadSize bytes, or zero
// when the payload cannot be counted without decoding (Vorbis). A trailing
// partial ADPCM block is not counted.
func (f *FormatDescriptor) Frames(payloadSize int) int {
	if f == nil || payloadSize <= 0 {
		return 0
	}

	switch f.Kind() {
	case KindADPCM:
		spb, err := adpcmSamplesPerBlock(f.BlockAlign, f.Channels, f.BitsPerSample)
		if err != nil {
			return 0
		}

		return payloadSize / int(f.BlockAlign) * int(spb)
	case KindPCM:
		frameSize := int(f.BlockAlign)
		if frameSize == 0 {
			frameSize = int(f.Channels) * int(f.BitsPerSample) / 8
		}

		if frameSize == 0 {
			return 0
		}

		return payloadSize / frameSize
	default:
		return 0
	}
}

// Duration returns the playing time of payloadSize bytes. Countable
// payloads use frames over the sample rate, others fall back to the
// average byte rate.
func (f *FormatDescriptor) Duration(payloadSize int) time.Duration {
	if f == nil {
		return 0
	}

	if format := f.AudioFormat(); format.SampleRate > 0 {
		if frames := f.Frames(payloadSize); frames > 0 {
			return time.Duration(frames) * time.Second / time.Duration(format.SampleRate)
		}
	}

	if f.AvgBytesPerSec == 0 {
		return 0
	}

	return time.Duration(float64(payloadSize) / float64(f.AvgBytesPerSec) * float64(time.Second))
}

func (f *FormatDescriptor) String() string {
	if f == nil {
		return "<nil>"
	}

	return fmt.Sprintf("%s tag=0x%04X %d ch @ %d Hz, %d bits, block %d",
		f.Kind(), f.FormatTag, f.Channels, f.SampleRate, f.BitsPerSample, f.BlockAlign)
}

// adpcmSamplesPerBlock computes the IMA ADPCM samples per block: the 4 byte
// per-channel preamble holds one sample, every other nibble one more.
func adpcmSamplesPerBlock(blockAlign, channels, bitsPerSample uint16) (uint16, error) {
	c := int(channels)
	bits := int(bitsPerSample)

	if c == 0 || bits == 0 || int(blockAlign) < 4*c {
		return 0, fmt.Errorf("%w: block align %d, %d channels, %d bits",
			ErrInvalidDescriptor, blockAlign, channels, bitsPerSample)
	}

	spb := (int(blockAlign)-4*c)*8/(bits*c) + 1
	if spb > 0xFFFF {
		return 0, fmt.Errorf("%w: %d samples per block", ErrInvalidDescriptor, spb)
	}

	return uint16(spb), nil
}

func decodeDescriptor(b []byte) (FormatDescriptor, error) {
	var desc FormatDescriptor

	if len(b) < descriptorSize {
		return desc, fmt.Errorf("%w: fmt descriptor needs %d bytes, %d left", ErrTruncated, descriptorSize, len(b))
	}

	chunk := &riff.Chunk{ID: CIDFmt, Size: descriptorSize, R: bytes.NewReader(b[:descriptorSize])}

	err := chunk.ReadLE(&desc)
	if err != nil {
		return desc, fmt.Errorf("failed to read fmt descriptor: %w", err)
	}

	return desc, nil
}

func (f *FormatDescriptor) appendLE(b []byte) []byte {
	b = binary.LittleEndian.AppendUint16(b, f.FormatTag)
	b = binary.LittleEndian.AppendUint16(b, f.Channels)
	b = binary.LittleEndian.AppendUint32(b, f.SampleRate)
	b = binary.LittleEndian.AppendUint32(b, f.AvgBytesPerSec)
	b = binary.LittleEndian.AppendUint16(b, f.BlockAlign)
	b = binary.LittleEndian.AppendUint16(b, f.BitsPerSample)
	b = binary.LittleEndian.AppendUint16(b, f.ExtraSize)
	b = binary.LittleEndian.AppendUint16(b, f.SamplesPerBlock)
	b = binary.LittleEndian.AppendUint32(b, f.ChannelMask)

	return b
}
