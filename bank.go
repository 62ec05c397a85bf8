package soundextract

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/go-audio/riff"
)

// BankHeader is the fixed part of the BKHD chunk.
type BankHeader struct {
	GeneratorVersion uint32
	SoundBankID      uint32
	LanguageID       uint32
	FeedbackInBank   uint16
	DeviceAllocated  uint16
	ProjectID        uint32
}

// MediaIndexEntry locates one embedded media inside the bank data blob.
type MediaIndexEntry struct {
	ID     uint32
	Offset uint32
	Size   uint32
}

// Bank holds the media index and data blob of a sound bank. A Bank read
// from something that is not a bank is empty: HasHeader is false and it
// has neither index nor blob.
type Bank struct {
	Header    BankHeader
	HasHeader bool
	Index     []MediaIndexEntry
	Blob      []byte
	// Chunks lists every top-level chunk in file order.
	Chunks []ChunkInfo
}

// LoadBank reads the bank at path. A missing file is not an error: banks
// are absent whenever the metadata has no embedded media, so an empty Bank
// is returned.
func LoadBank(path string) (*Bank, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Bank{}, nil
		}

		return nil, fmt.Errorf("open bank: %w", err)
	}
	defer f.Close()

	return ReadBank(f)
}

// ReadBank parses a bank from r. Parsing stops silently at the first short
// read, keeping whatever index entries and blob bytes were complete.
func ReadBank(r io.ReadSeeker) (*Bank, error) {
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to seek to the end: %w", err)
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek back to the start: %w", err)
	}

	br := &bankReader{
		r:      r,
		parser: riff.New(r),
		size:   size,
		chunks: newDefaultChunkRegistry(),
	}

	return br.read(), nil
}

type bankReader struct {
	r      io.ReadSeeker
	parser *riff.Parser
	size   int64
	chunks *ChunkRegistry
}

func (br *bankReader) read() *Bank {
	bank := &Bank{}

	// IDnSize does not report a short size field, so whole headers are
	// checked against the file size first.
	if br.size < chunkHeaderSize {
		return bank
	}

	id, size, err := br.parser.IDnSize()
	if err != nil || id != CIDBankHeader {
		return bank
	}

	bank.HasHeader = true
	bank.Chunks = append(bank.Chunks, ChunkInfo{ID: id, Size: size})

	hdr := br.chunk(id, size, 0)
	// a short header leaves the header zeroed
	_ = hdr.ReadLE(&bank.Header)

	if !br.skipTo(chunkHeaderSize + int64(size)) {
		return bank
	}

	for order := 1; ; order++ {
		start, err := br.r.Seek(0, io.SeekCurrent)
		if err != nil || start+chunkHeaderSize > br.size {
			return bank
		}

		id, size, err := br.parser.IDnSize()
		if err != nil {
			return bank
		}

		bank.Chunks = append(bank.Chunks, ChunkInfo{ID: id, Size: size, Offset: start, Order: order})

		_, err = br.chunks.Decode(bank, br.chunk(id, size, start))
		if err != nil {
			return bank
		}

		if !br.skipTo(start + chunkHeaderSize + int64(size)) {
			return bank
		}
	}
}

// chunk wraps the body of the chunk starting at start. The readable size is
// capped at what the file still holds so a bogus declared size never turns
// into an oversized allocation.
func (br *bankReader) chunk(id [4]byte, size uint32, start int64) *riff.Chunk {
	avail := max(br.size-(start+chunkHeaderSize), 0)
	n := min(int64(size), avail)

	return &riff.Chunk{
		ID:   id,
		Size: int(n),
		R:    io.LimitReader(br.r, n),
	}
}

// skipTo positions the reader at the absolute offset pos, trusting the
// declared chunk sizes rather than what the handlers consumed.
func (br *bankReader) skipTo(pos int64) bool {
	if pos >= br.size {
		return false
	}

	_, err := br.r.Seek(pos, io.SeekStart)

	return err == nil
}

// Len returns the number of media index entries.
func (b *Bank) Len() int {
	if b == nil {
		return 0
	}

	return len(b.Index)
}

// Lookup returns the first index entry with the given id.
func (b *Bank) Lookup(id uint32) (MediaIndexEntry, bool) {
	if b == nil {
		return MediaIndexEntry{}, false
	}

	for _, entry := range b.Index {
		if entry.ID == id {
			return entry, true
		}
	}

	return MediaIndexEntry{}, false
}

// Media returns the blob bytes described by entry. The returned slice
// shares the blob's memory and is capped so appends cannot reach into
// neighbouring media.
func (b *Bank) Media(entry MediaIndexEntry) ([]byte, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: id %d, no bank loaded", ErrOutOfRange, entry.ID)
	}

	blobLen := uint64(len(b.Blob))
	start := uint64(entry.Offset)
	end := start + uint64(entry.Size)

	if end > blobLen {
		return nil, fmt.Errorf("%w: id %d wants [%d, %d), data chunk holds %d bytes",
			ErrOutOfRange, entry.ID, start, end, blobLen)
	}

	return b.Blob[start:end:end], nil
}
