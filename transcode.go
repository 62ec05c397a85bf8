package soundextract

import (
	"fmt"
	"io"
	"time"

	"github.com/go-audio/audio"
)

// Output is a rewritten container.
type Output struct {
	Kind FormatKind
	// Ext is the output file extension including the dot.
	Ext string
	// Data holds the complete output file. For KindVorbis it is the
	// untouched source container, which has to be handed to a repackager.
	Data []byte
	// Format is the descriptor written to the output.
	Format      FormatDescriptor
	PayloadSize int
}

// Delegated reports whether writing the output needs the external Vorbis
// tools.
func (o *Output) Delegated() bool {
	return o != nil && o.Kind == KindVorbis
}

// ContainerInfo describes a container without rewriting it.
type ContainerInfo struct {
	Format FormatDescriptor `json:"format"`
	// Audio is the channel layout and sample rate the payload plays at.
	Audio       *audio.Format `json:"audio"`
	Kind        FormatKind    `json:"kind"`
	FmtSize     uint32        `json:"fmt_size"`
	PayloadSize int           `json:"payload_size"`
	HasPayload  bool          `json:"has_payload"`
	// Frames is zero when the payload cannot be counted without decoding.
	Frames   int           `json:"frames"`
	Duration time.Duration `json:"duration"`
}

func (i *ContainerInfo) String() string {
	if i == nil || i.Audio == nil {
		return "<nil>"
	}

	s := fmt.Sprintf("%s tag=0x%04X %d ch @ %d Hz", i.Kind, i.Format.FormatTag, i.Audio.NumChannels, i.Audio.SampleRate)
	if i.Format.BitsPerSample > 0 {
		s += fmt.Sprintf(", %d bits", i.Format.BitsPerSample)
	}

	if i.Frames > 0 {
		s += fmt.Sprintf(", %d frames", i.Frames)
	}

	return s
}

type container struct {
	raw     []byte
	fmtSize uint32
	desc    FormatDescriptor
}

// payloadStart is where the subchunk scan begins, right after the fmt body.
func (c *container) payloadStart() int {
	return 12 + chunkHeaderSize + int(c.fmtSize)
}

func parseContainer(raw []byte) (*container, error) {
	if len(raw) < 12 {
		return nil, fmt.Errorf("%w: %d bytes, need at least 12", ErrTruncated, len(raw))
	}

	if err := expectTag(raw[0:4], CIDRiff); err != nil {
		return nil, err
	}

	if err := expectTag(raw[8:12], CIDWave); err != nil {
		return nil, err
	}

	id, size, ok := readChunkHeader(raw, 12)
	if !ok {
		return nil, fmt.Errorf("%w: no fmt chunk header", ErrTruncated)
	}

	if id != CIDFmt {
		return nil, &MagicError{Expected: CIDFmt, Found: id}
	}

	desc, err := decodeDescriptor(raw[12+chunkHeaderSize:])
	if err != nil {
		return nil, err
	}

	return &container{raw: raw, fmtSize: size, desc: desc}, nil
}

func expectTag(b []byte, want [4]byte) error {
	var found [4]byte

	copy(found[:], b)

	if found != want {
		return &MagicError{Expected: want, Found: found}
	}

	return nil
}

func (c *container) checkFmtSize(want uint32) error {
	if c.fmtSize != want {
		return &SizeMismatchError{FormatTag: c.desc.FormatTag, Expected: want, Actual: c.fmtSize}
	}

	return nil
}

func (c *container) payload() ([]byte, error) {
	ch, found, truncated := findSubchunk(c.raw, c.payloadStart(), CIDPayload)

	switch {
	case !found:
		return nil, ErrMissingPayload
	case truncated:
		return nil, fmt.Errorf("%w: data chunk declares %d bytes, %d available",
			ErrTruncated, ch.Size, len(c.raw)-ch.Offset)
	case ch.Size == 0:
		return nil, ErrMissingPayload
	}

	return ch.Data, nil
}

// Transcode rewrites a vendor container into a standard one. Packed ADPCM
// becomes IMA ADPCM with its channels deinterleaved, extensible PCM becomes
// plain PCM, and Vorbis is returned as is for external repackaging.
func Transcode(raw []byte) (*Output, error) {
	c, err := parseContainer(raw)
	if err != nil {
		return nil, err
	}

	switch c.desc.FormatTag {
	case formatPackedADPCM:
		return c.transcodeADPCM()
	case formatExtensible:
		return c.transcodePCM()
	case formatVorbis:
		return c.transcodeVorbis()
	default:
		return nil, &UnsupportedFormatError{FormatTag: c.desc.FormatTag}
	}
}

func (c *container) transcodeADPCM() (*Output, error) {
	if err := c.checkFmtSize(descriptorSize); err != nil {
		return nil, err
	}

	desc := c.desc
	desc.FormatTag = formatIMAADPCM

	spb, err := adpcmSamplesPerBlock(desc.BlockAlign, desc.Channels, desc.BitsPerSample)
	if err != nil {
		return nil, err
	}

	desc.SamplesPerBlock = spb

	payload, err := c.payload()
	if err != nil {
		return nil, err
	}

	blockAlign, channels := int(desc.BlockAlign), int(desc.Channels)

	data, err := encodeWave(&desc, len(payload), func(w io.Writer) error {
		if channels <= 1 {
			_, err := w.Write(payload)

			return err
		}

		return transformBlocks(w, payload, blockAlign, channels, deinterleaveBlock)
	})
	if err != nil {
		return nil, err
	}

	return &Output{Kind: KindADPCM, Ext: ExtWave, Data: data, Format: desc, PayloadSize: len(payload)}, nil
}

func (c *container) transcodePCM() (*Output, error) {
	if err := c.checkFmtSize(descriptorSize); err != nil {
		return nil, err
	}

	desc := c.desc
	desc.FormatTag = formatPCM

	payload, err := c.payload()
	if err != nil {
		return nil, err
	}

	data, err := encodeWave(&desc, len(payload), func(w io.Writer) error {
		_, err := w.Write(payload)

		return err
	})
	if err != nil {
		return nil, err
	}

	return &Output{Kind: KindPCM, Ext: ExtWave, Data: data, Format: desc, PayloadSize: len(payload)}, nil
}

func (c *container) transcodeVorbis() (*Output, error) {
	if err := c.checkFmtSize(descriptorSize + vorbisHeaderSize); err != nil {
		return nil, err
	}

	return &Output{Kind: KindVorbis, Ext: ExtOgg, Data: c.raw, Format: c.desc}, nil
}

// Inspect reads the container headers and locates the payload without
// rewriting anything. A missing payload is reported through HasPayload.
func Inspect(raw []byte) (*ContainerInfo, error) {
	c, err := parseContainer(raw)
	if err != nil {
		return nil, err
	}

	info := &ContainerInfo{
		Format:  c.desc,
		Audio:   c.desc.AudioFormat(),
		Kind:    c.desc.Kind(),
		FmtSize: c.fmtSize,
	}

	ch, found, truncated := findSubchunk(raw, c.payloadStart(), CIDPayload)
	if found && !truncated {
		info.HasPayload = true
		info.PayloadSize = len(ch.Data)
		info.Frames = c.desc.Frames(info.PayloadSize)
		info.Duration = c.desc.Duration(info.PayloadSize)
	}

	return info, nil
}
