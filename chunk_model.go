package soundextract

import (
	"encoding/binary"
	"fmt"
)

// ChunkInfo describes a top-level chunk encountered while reading a bank.
type ChunkInfo struct {
	ID [4]byte
	// Size is the declared size, which never includes the 8 byte header.
	Size uint32
	// Offset is the file offset of the chunk header.
	Offset int64
	// Order is the index of the chunk in file order.
	Order int
}

func (c ChunkInfo) String() string {
	return fmt.Sprintf("%s %d bytes @ %d", c.ID[:], c.Size, c.Offset)
}

func cloneChunkInfos(chunks []ChunkInfo) []ChunkInfo {
	if len(chunks) == 0 {
		return nil
	}

	return append([]ChunkInfo(nil), chunks...)
}

// subchunk is a view of a chunk inside an in-memory container.
type subchunk struct {
	ID   [4]byte
	Size uint32
	// Offset is the position of the chunk body within the scanned buffer.
	Offset int
	Data   []byte
}

func readChunkHeader(b []byte, off int) ([4]byte, uint32, bool) {
	var id [4]byte

	if off < 0 || off+chunkHeaderSize > len(b) {
		return id, 0, false
	}

	copy(id[:], b[off:off+4])

	return id, binary.LittleEndian.Uint32(b[off+4 : off+8]), true
}

// findSubchunk scans b from off for chunks tagged id and returns the last
// one. Other chunks are skipped by their declared size. A chunk running past
// the end of b ends the scan; if it is tagged id it is reported with
// truncated set.
func findSubchunk(b []byte, off int, id [4]byte) (ch subchunk, found bool, truncated bool) {
	for {
		chunkID, size, ok := readChunkHeader(b, off)
		if !ok {
			return ch, found, false
		}

		body := off + chunkHeaderSize
		end := uint64(body) + uint64(size)

		if end > uint64(len(b)) {
			if chunkID == id {
				return subchunk{ID: chunkID, Size: size, Offset: body}, true, true
			}

			return ch, found, false
		}

		if chunkID == id {
			ch, found = subchunk{ID: chunkID, Size: size, Offset: body, Data: b[body:end:end]}, true
		}

		off = int(end)
	}
}
