package soundextract

import (
	"bytes"
	"fmt"
	"io"
)

// transformBufferSize bounds the working buffer used while reordering
// ADPCM blocks. Blocks larger than the buffer are reordered one at a time.
const transformBufferSize = 8192

// groupSize is the size of one nibble group: eight 4-bit samples.
const groupSize = 4

type blockFunc func(dst, src []byte, channels int)

// Deinterleave reorders every blockAlign sized block of payload from
// channel-major nibble groups (all groups of channel 0, then channel 1...)
// to the group-major order IMA ADPCM players expect. Bytes of a block past
// the last whole group, and a trailing partial block, are copied as is, so
// the result always has the length of payload.
func Deinterleave(payload []byte, blockAlign, channels int) ([]byte, error) {
	return reorderBlocks(payload, blockAlign, channels, deinterleaveBlock)
}

// Interleave is the inverse of Deinterleave.
func Interleave(payload []byte, blockAlign, channels int) ([]byte, error) {
	return reorderBlocks(payload, blockAlign, channels, interleaveBlock)
}

func reorderBlocks(payload []byte, blockAlign, channels int, fn blockFunc) ([]byte, error) {
	if channels <= 1 {
		return append([]byte(nil), payload...), nil
	}

	if blockAlign <= 0 {
		return nil, fmt.Errorf("%w: block align %d", ErrInvalidDescriptor, blockAlign)
	}

	out := bytes.NewBuffer(make([]byte, 0, len(payload)))

	err := transformBlocks(out, payload, blockAlign, channels, fn)
	if err != nil {
		return nil, err
	}

	return out.Bytes(), nil
}

// transformBlocks streams src through a bounded working buffer, applying fn
// to each whole block and writing the result to w.
func transformBlocks(w io.Writer, src []byte, blockAlign, channels int, fn blockFunc) error {
	blocksPerPass := transformBufferSize / blockAlign
	if blocksPerPass == 0 {
		blocksPerPass = 1
	}

	passSize := blocksPerPass * blockAlign
	in := make([]byte, passSize)
	out := make([]byte, passSize)

	for len(src) > 0 {
		n := copy(in, src)
		src = src[n:]

		whole := n / blockAlign
		for block := range whole {
			start := block * blockAlign
			fn(out[start:start+blockAlign], in[start:start+blockAlign], channels)
		}

		done := whole * blockAlign
		copy(out[done:n], in[done:n])

		if _, err := w.Write(out[:n]); err != nil {
			return fmt.Errorf("failed to write reordered blocks: %w", err)
		}
	}

	return nil
}

// deinterleaveBlock sets dst group n*channels+s to src group s*groups+n.
func deinterleaveBlock(dst, src []byte, channels int) {
	groups := len(src) / (groupSize * channels)

	for n := range groups {
		for s := range channels {
			d := (n*channels + s) * groupSize
			o := (s*groups + n) * groupSize
			copy(dst[d:d+groupSize], src[o:o+groupSize])
		}
	}

	tail := groups * channels * groupSize
	copy(dst[tail:], src[tail:])
}

// interleaveBlock sets dst group s*groups+n to src group n*channels+s.
func interleaveBlock(dst, src []byte, channels int) {
	groups := len(src) / (groupSize * channels)

	for n := range groups {
		for s := range channels {
			d := (s*groups + n) * groupSize
			o := (n*channels + s) * groupSize
			copy(dst[d:d+groupSize], src[o:o+groupSize])
		}
	}

	tail := groups * channels * groupSize
	copy(dst[tail:], src[tail:])
}
