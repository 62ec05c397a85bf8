package soundextract

import (
	"fmt"
	"io"

	"github.com/go-audio/riff"
)

// ChunkHandler decodes one kind of top-level bank chunk into a Bank.
// Chunks no handler claims are skipped by their declared size.
type ChunkHandler interface {
	CanHandle(chunkID [4]byte) bool
	Decode(b *Bank, ch *riff.Chunk) error
}

// ChunkRegistry resolves bank chunks to handlers.
type ChunkRegistry struct {
	handlers []ChunkHandler
}

func newDefaultChunkRegistry() *ChunkRegistry {
	r := &ChunkRegistry{}
	r.Register(&dataIndexChunkHandler{})
	r.Register(&dataChunkHandler{})

	return r
}

// Register appends a handler to the registry. Handlers registered earlier
// take precedence.
func (r *ChunkRegistry) Register(handler ChunkHandler) {
	if r == nil || handler == nil {
		return
	}

	r.handlers = append(r.handlers, handler)
}

// Decode dispatches a chunk to the first matching handler.
func (r *ChunkRegistry) Decode(b *Bank, chnk *riff.Chunk) (bool, error) {
	if r == nil || chnk == nil {
		return false, nil
	}

	for _, handler := range r.handlers {
		if handler.CanHandle(chnk.ID) {
			err := handler.Decode(b, chnk)
			if err != nil {
				return true, fmt.Errorf("%s chunk: %w", chnk.ID[:], err)
			}

			return true, nil
		}
	}

	return false, nil
}

type dataIndexChunkHandler struct{}

func (h *dataIndexChunkHandler) CanHandle(chunkID [4]byte) bool {
	return chunkID == CIDDataIndex
}

// Decode reads Size/12 records. A trailing partial record is left for the
// caller to skip.
func (h *dataIndexChunkHandler) Decode(b *Bank, ch *riff.Chunk) error {
	count := ch.Size / mediaIndexEntrySize

	for range count {
		var entry MediaIndexEntry

		err := ch.ReadLE(&entry)
		if err != nil {
			return fmt.Errorf("read media index entry: %w", err)
		}

		b.Index = append(b.Index, entry)
	}

	return nil
}

type dataChunkHandler struct{}

func (h *dataChunkHandler) CanHandle(chunkID [4]byte) bool {
	return chunkID == CIDData
}

// Decode replaces any previous blob with this chunk's bytes.
func (h *dataChunkHandler) Decode(b *Bank, ch *riff.Chunk) error {
	blob := make([]byte, ch.Size)

	n, err := io.ReadFull(ch, blob)
	b.Blob = blob[:n]

	if err != nil {
		return fmt.Errorf("read data chunk: %w", err)
	}

	return nil
}
