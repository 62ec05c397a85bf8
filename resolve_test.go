package soundextract

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
)

func TestResolveBytes(t *testing.T) {
	dir := t.TempDir()
	streamed := pcmContainer(sequence(16))
	writeFile(t, filepath.Join(dir, "200.wem"), streamed)
	writeFile(t, filepath.Join(dir, "201.wem"), nil)

	memory := pcmContainer(sequence(8))
	bank := &Bank{
		Index: []MediaIndexEntry{
			{ID: 1001, Offset: 0, Size: uint32(len(memory))},
			{ID: 1002, Offset: 0, Size: 0},
			{ID: 1003, Offset: 0, Size: 1 << 20},
		},
		Blob: memory,
	}

	tests := []struct {
		name  string
		entry CatalogEntry
		want  []byte
		err   error
	}{
		{"streamed", CatalogEntry{ID: "200", Streamed: true}, streamed, nil},
		{"memory", CatalogEntry{ID: "1001"}, memory, nil},
		{"streamed missing", CatalogEntry{ID: "300", Streamed: true}, nil, ErrSiblingMissing},
		{"streamed empty", CatalogEntry{ID: "201", Streamed: true}, nil, ErrEmptyMedia},
		{"not in index", CatalogEntry{ID: "999"}, nil, ErrEntryNotFound},
		{"not a number", CatalogEntry{ID: "abc"}, nil, ErrInvalidID},
		{"too large", CatalogEntry{ID: "4294967296"}, nil, ErrInvalidID},
		{"empty media", CatalogEntry{ID: "1002"}, nil, ErrEmptyMedia},
		{"out of range", CatalogEntry{ID: "1003"}, nil, ErrOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveBytes(tt.entry, bank, dir, "wem")
			if tt.err != nil {
				if !errors.Is(err, tt.err) || !errors.Is(err, ErrUnresolved) {
					t.Fatalf("err=%v, want %v", err, tt.err)
				}

				return
			}

			if err != nil {
				t.Fatalf("ResolveBytes: %v", err)
			}

			if !bytes.Equal(got, tt.want) {
				t.Fatalf("got %d bytes, want %d", len(got), len(tt.want))
			}
		})
	}
}

func TestResolveBytesWithoutBank(t *testing.T) {
	_, err := ResolveBytes(CatalogEntry{ID: "1"}, nil, t.TempDir(), "wem")
	if !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("err=%v, want ErrEntryNotFound", err)
	}
}
