package soundextract

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

type testChunk struct {
	id   string
	size uint32
	data []byte
}

var (
	errFileTooSmall         = errors.New("file too small")
	errInvalidRiffWaveHdr   = errors.New("invalid riff/wave header")
	errChunkExceedsFileSize = errors.New("chunk exceeds file size")
)

// parseWavChunks splits a RIFF/WAVE file into its top-level chunks.
func parseWavChunks(data []byte) ([]testChunk, error) {
	if len(data) < 12 {
		return nil, errFileTooSmall
	}

	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, errInvalidRiffWaveHdr
	}

	if got, want := binary.LittleEndian.Uint32(data[4:8]), uint32(len(data)-8); got != want {
		return nil, fmt.Errorf("riff size %d, want %d", got, want)
	}

	chunks := make([]testChunk, 0)

	offset := 12
	for offset+8 <= len(data) {
		id := string(data[offset : offset+4])
		size := binary.LittleEndian.Uint32(data[offset+4 : offset+8])
		offset += 8

		end := offset + int(size)
		if end > len(data) {
			return nil, fmt.Errorf("%w: %q", errChunkExceedsFileSize, id)
		}

		chunks = append(chunks, testChunk{id: id, size: size, data: append([]byte(nil), data[offset:end]...)})
		offset = end
	}

	return chunks, nil
}

func findChunk(chunks []testChunk, id string) (*testChunk, int) {
	for i := range chunks {
		if chunks[i].id == id {
			return &chunks[i], i
		}
	}

	return nil, -1
}

// chunkBytes encodes one chunk whose declared size is len(data).
func chunkBytes(id string, data []byte) []byte {
	return chunkBytesSized(id, uint32(len(data)), data)
}

// chunkBytesSized encodes a chunk header declaring size followed by data,
// which may be shorter or longer than size.
func chunkBytesSized(id string, size uint32, data []byte) []byte {
	b := make([]byte, 0, chunkHeaderSize+len(data))
	b = append(b, id[:4]...)
	b = binary.LittleEndian.AppendUint32(b, size)

	return append(b, data...)
}

func concat(parts ...[]byte) []byte {
	var b []byte

	for _, p := range parts {
		b = append(b, p...)
	}

	return b
}

func bankHeaderChunk(bankID uint32) []byte {
	var b []byte

	b = binary.LittleEndian.AppendUint32(b, 0x8C)
	b = binary.LittleEndian.AppendUint32(b, bankID)
	b = binary.LittleEndian.AppendUint32(b, 0)
	b = binary.LittleEndian.AppendUint16(b, 0)
	b = binary.LittleEndian.AppendUint16(b, 1)
	b = binary.LittleEndian.AppendUint32(b, 7)

	return chunkBytes("BKHD", b)
}

func indexBytes(entries ...MediaIndexEntry) []byte {
	var b []byte

	for _, e := range entries {
		b = binary.LittleEndian.AppendUint32(b, e.ID)
		b = binary.LittleEndian.AppendUint32(b, e.Offset)
		b = binary.LittleEndian.AppendUint32(b, e.Size)
	}

	return b
}

// bankFile lays out blobs back to back in a DATA chunk and indexes them
// under ids.
func bankFile(ids []uint32, blobs ...[]byte) []byte {
	var (
		entries []MediaIndexEntry
		data    []byte
	)

	for i, blob := range blobs {
		entries = append(entries, MediaIndexEntry{ID: ids[i], Offset: uint32(len(data)), Size: uint32(len(blob))})
		data = append(data, blob...)
	}

	return concat(
		bankHeaderChunk(42),
		chunkBytes("DIDX", indexBytes(entries...)),
		chunkBytes("DATA", data),
	)
}

// containerBytes builds a vendor container: a fmt chunk declaring fmtSize
// bytes holding desc (zero padded) followed by extra chunks.
func containerBytes(desc FormatDescriptor, fmtSize uint32, chunks ...[]byte) []byte {
	body := desc.appendLE(nil)
	if int(fmtSize) > len(body) {
		body = append(body, make([]byte, int(fmtSize)-len(body))...)
	}

	inner := concat(append([][]byte{[]byte("WAVE"), chunkBytesSized("fmt ", fmtSize, body)}, chunks...)...)

	return concat([]byte("RIFF"), binary.LittleEndian.AppendUint32(nil, uint32(len(inner))), inner)
}

func adpcmDescriptor(channels, blockAlign uint16) FormatDescriptor {
	return FormatDescriptor{
		FormatTag:      formatPackedADPCM,
		Channels:       channels,
		SampleRate:     48000,
		AvgBytesPerSec: 48000 * uint32(blockAlign) / 64,
		BlockAlign:     blockAlign,
		BitsPerSample:  4,
		ExtraSize:      6,
		ChannelMask:    3,
	}
}

func pcmDescriptor(channels uint16) FormatDescriptor {
	return FormatDescriptor{
		FormatTag:      formatExtensible,
		Channels:       channels,
		SampleRate:     44100,
		AvgBytesPerSec: 44100 * 2 * uint32(channels),
		BlockAlign:     2 * channels,
		BitsPerSample:  16,
		ExtraSize:      6,
		ChannelMask:    4,
	}
}

func vorbisDescriptor() FormatDescriptor {
	return FormatDescriptor{
		FormatTag:      formatVorbis,
		Channels:       2,
		SampleRate:     48000,
		AvgBytesPerSec: 16000,
		ExtraSize:      48,
	}
}

func pcmContainer(payload []byte) []byte {
	return containerBytes(pcmDescriptor(1), descriptorSize, chunkBytes("data", payload))
}

func sequence(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i*7 + 3)
	}

	return b
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
