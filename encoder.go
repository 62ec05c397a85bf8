package soundextract

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// containerWriter assembles a RIFF/WAVE container in memory. Output files
// are only created once the whole container exists.
type containerWriter struct {
	buf *bytes.Buffer

	WrittenBytes int
}

func newContainerWriter(size int) *containerWriter {
	return &containerWriter{buf: bytes.NewBuffer(make([]byte, 0, size))}
}

// AddLE serializes and adds the passed value using little endian.
func (e *containerWriter) AddLE(src any) error {
	e.WrittenBytes += binary.Size(src)

	err := binary.Write(e.buf, binary.LittleEndian, src)
	if err != nil {
		return fmt.Errorf("failed to write little endian: %w", err)
	}

	return nil
}

func (e *containerWriter) Write(p []byte) (int, error) {
	n, err := e.buf.Write(p)
	e.WrittenBytes += n

	return n, err
}

func (e *containerWriter) Bytes() []byte {
	return e.buf.Bytes()
}

var errContainerTooLarge = fmt.Errorf("%w: output exceeds 4 GiB", ErrInvalidContainer)

// encodeWave writes RIFF, WAVE, a fmt chunk holding desc and a data chunk
// of payloadSize bytes produced by writePayload.
func encodeWave(desc *FormatDescriptor, payloadSize int, writePayload func(io.Writer) error) ([]byte, error) {
	riffSize := uint64(4+chunkHeaderSize+descriptorSize+chunkHeaderSize) + uint64(payloadSize)
	if riffSize > math.MaxUint32 {
		return nil, errContainerTooLarge
	}

	e := newContainerWriter(int(riffSize) + chunkHeaderSize)

	for _, v := range []any{
		CIDRiff,
		uint32(riffSize),
		CIDWave,
		CIDFmt,
		uint32(descriptorSize),
	} {
		if err := e.AddLE(v); err != nil {
			return nil, err
		}
	}

	if _, err := e.Write(desc.appendLE(nil)); err != nil {
		return nil, fmt.Errorf("failed to write fmt descriptor: %w", err)
	}

	if err := e.AddLE(CIDPayload); err != nil {
		return nil, err
	}

	if err := e.AddLE(uint32(payloadSize)); err != nil {
		return nil, err
	}

	if err := writePayload(e); err != nil {
		return nil, err
	}

	return e.Bytes(), nil
}
