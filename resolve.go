package soundextract

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ResolveBytes returns the raw container bytes of entry. Streamed entries
// are read from <basePath>/<id>.<ext>, memory entries are sliced out of
// bank. Every failure wraps ErrUnresolved.
func ResolveBytes(entry CatalogEntry, bank *Bank, basePath, ext string) ([]byte, error) {
	var (
		raw []byte
		err error
	)

	if entry.Streamed {
		raw, err = readStreamed(entry, basePath, ext)
	} else {
		raw, err = lookupMemory(entry, bank)
	}

	if err != nil {
		return nil, err
	}

	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyMedia, entry.ID)
	}

	return raw, nil
}

func readStreamed(entry CatalogEntry, basePath, ext string) ([]byte, error) {
	p := streamedPath(basePath, entry.ID, ext)

	raw, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSiblingMissing, err)
	}

	return raw, nil
}

func lookupMemory(entry CatalogEntry, bank *Bank) ([]byte, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(entry.ID), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, entry.ID)
	}

	media, ok := bank.Lookup(uint32(id))
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrEntryNotFound, id)
	}

	return bank.Media(media)
}
