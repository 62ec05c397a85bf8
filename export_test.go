package soundextract

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
)

type fakeRepackager struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeRepackager) Repackage(_ context.Context, in, out string) error {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.err != nil {
		return f.err
	}

	raw, err := os.ReadFile(in)
	if err != nil {
		return err
	}

	return os.WriteFile(out, append([]byte("OggS"), raw[:4]...), 0o644)
}

type fakeRenumberer struct {
	err error
}

func (f *fakeRenumberer) Renumber(_ context.Context, path string) error {
	if f.err != nil {
		return f.err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return os.WriteFile(path, append(raw, '!'), 0o644)
}

func listFiles(t *testing.T, root string) []string {
	t.Helper()

	var files []string

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() {
			rel, _ := filepath.Rel(root, path)
			files = append(files, filepath.ToSlash(rel))
		}

		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}

	return files
}

func TestExportAllMemoryPCM(t *testing.T) {
	payload := sequence(44)
	bank := &Bank{}
	bank.Blob = pcmContainer(payload)
	bank.Index = []MediaIndexEntry{{ID: 1001, Offset: 0, Size: uint32(len(bank.Blob))}}

	dest := t.TempDir()
	entries := []CatalogEntry{{ID: "1001", Name: "Explosion", RelativePath: "SFX"}}

	outcomes := (&Exporter{}).ExportAll(context.Background(), entries, t.TempDir(), bank, dest)
	if len(outcomes) != 1 || outcomes[0].Err != nil {
		t.Fatalf("outcomes=%+v", outcomes)
	}

	want := filepath.Join(dest, "SFX", "Explosion.wav")
	if outcomes[0].Path != want || outcomes[0].Kind != KindPCM {
		t.Fatalf("outcome=%+v, want %s", outcomes[0], want)
	}

	raw, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}

	chunks, err := parseWavChunks(raw)
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}

	data, _ := findChunk(chunks, "data")
	if data == nil || !bytes.Equal(data.data, payload) {
		t.Fatalf("data chunk=%v", data)
	}

	if files := listFiles(t, dest); len(files) != 1 {
		t.Fatalf("files=%v, want only the output", files)
	}
}

func TestExportAllDuplicateNames(t *testing.T) {
	first := pcmContainer(sequence(8))
	second := pcmContainer(sequence(12))
	third := pcmContainer(sequence(16))

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "3.wem"), third)

	bank := &Bank{}
	bank.Blob = append(append([]byte(nil), first...), second...)
	bank.Index = []MediaIndexEntry{
		{ID: 1, Offset: 0, Size: uint32(len(first))},
		{ID: 2, Offset: uint32(len(first)), Size: uint32(len(second))},
	}

	entries := []CatalogEntry{
		{ID: "1", Name: "Explosion", RelativePath: "Weapons"},
		{ID: "2", Name: "Explosion", RelativePath: "Ambience"},
		{ID: "3", Name: "Explosion", RelativePath: "Weapons", Streamed: true},
	}

	dest := t.TempDir()
	x := &Exporter{Workers: 4}

	outcomes := x.ExportAll(context.Background(), entries, dir, bank, dest)
	for _, o := range outcomes {
		if o.Err != nil {
			t.Fatalf("entry %d: %v", o.Index, o.Err)
		}
	}

	if outcomes[0].Path == outcomes[1].Path {
		t.Fatal("different relative paths exported to the same file")
	}

	files := listFiles(t, dest)
	if len(files) != 2 {
		t.Fatalf("files=%v, want 2", files)
	}

	// the later entry overwrote the earlier one in Weapons
	raw, err := os.ReadFile(filepath.Join(dest, "Weapons", "Explosion.wav"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if len(raw) != 52+16 {
		t.Fatalf("Weapons/Explosion.wav has %d bytes, want %d", len(raw), 52+16)
	}
}

func TestExportAllDuplicateNamesKeepsCatalogOrder(t *testing.T) {
	large := pcmContainer(make([]byte, 16<<20))
	small := pcmContainer(sequence(12))

	bank := &Bank{Blob: append(append([]byte(nil), large...), small...)}
	bank.Index = []MediaIndexEntry{
		{ID: 1, Offset: 0, Size: uint32(len(large))},
		{ID: 2, Offset: uint32(len(large)), Size: uint32(len(small))},
	}

	entries := []CatalogEntry{
		{ID: "1", Name: "Explosion", RelativePath: "Weapons"},
		{ID: "2", Name: "Explosion", RelativePath: "Weapons"},
	}

	for run := range 3 {
		dest := t.TempDir()

		outcomes := (&Exporter{Workers: 2}).ExportAll(context.Background(), entries, t.TempDir(), bank, dest)
		for _, o := range outcomes {
			if o.Err != nil {
				t.Fatalf("run %d entry %d: %v", run, o.Index, o.Err)
			}
		}

		info, err := os.Stat(filepath.Join(dest, "Weapons", "Explosion.wav"))
		if err != nil {
			t.Fatalf("run %d: %v", run, err)
		}

		if info.Size() != 52+12 {
			t.Fatalf("run %d: output has %d bytes, want %d from the later entry", run, info.Size(), 52+12)
		}
	}
}

func TestGroupByDestination(t *testing.T) {
	entries := []CatalogEntry{
		{ID: "1", Name: "a", RelativePath: "x"},
		{ID: "2", Name: "b", RelativePath: "x"},
		{ID: "3", Name: "a", RelativePath: "y"},
		{ID: "4", Name: "a", RelativePath: "x"},
		{ID: "5", Name: "b", RelativePath: "x", Streamed: true},
	}

	groups := groupByDestination(entries)

	want := [][]int{{0, 3}, {1, 4}, {2}}
	if len(groups) != len(want) {
		t.Fatalf("groups=%v, want %v", groups, want)
	}

	for i := range want {
		if !slices.Equal(groups[i], want[i]) {
			t.Fatalf("group %d=%v, want %v", i, groups[i], want[i])
		}
	}
}

func TestExportAllSkipsAndContinues(t *testing.T) {
	good := pcmContainer(sequence(8))

	mismatch := containerBytes(adpcmDescriptor(2, 72), 26, chunkBytes("data", sequence(72)))

	unsupported := pcmDescriptor(1)
	unsupported.FormatTag = 0x0055

	blobs := [][]byte{good, mismatch, containerBytes(unsupported, descriptorSize, chunkBytes("data", sequence(4))), good}

	var (
		blob  []byte
		index []MediaIndexEntry
	)

	for i, b := range blobs {
		index = append(index, MediaIndexEntry{ID: uint32(i + 1), Offset: uint32(len(blob)), Size: uint32(len(b))})
		blob = append(blob, b...)
	}

	bank := &Bank{Index: index, Blob: blob}

	entries := []CatalogEntry{
		{ID: "1", Name: "first"},
		{ID: "2", Name: "mismatch"},
		{ID: "3", Name: "unsupported"},
		{ID: "99", Name: "unresolved"},
		{ID: "4", Name: "last"},
	}

	dest := t.TempDir()

	outcomes := (&Exporter{Workers: 3}).ExportAll(context.Background(), entries, t.TempDir(), bank, dest)
	if len(outcomes) != len(entries) {
		t.Fatalf("len=%d, want %d", len(outcomes), len(entries))
	}

	for i, o := range outcomes {
		if o.Index != i || o.Entry != entries[i] {
			t.Fatalf("outcome %d=%+v is out of order", i, o)
		}
	}

	var sizeErr *SizeMismatchError
	if !errors.As(outcomes[1].Err, &sizeErr) || sizeErr.Expected != 24 || sizeErr.Actual != 26 {
		t.Fatalf("mismatch err=%v", outcomes[1].Err)
	}

	if !errors.Is(outcomes[2].Err, ErrUnsupportedFormat) {
		t.Fatalf("unsupported err=%v", outcomes[2].Err)
	}

	if !errors.Is(outcomes[3].Err, ErrEntryNotFound) {
		t.Fatalf("unresolved err=%v", outcomes[3].Err)
	}

	if !outcomes[0].OK() || !outcomes[4].OK() {
		t.Fatalf("good entries failed: %v, %v", outcomes[0].Err, outcomes[4].Err)
	}

	files := listFiles(t, dest)
	if len(files) != 2 || files[0] != "first.wav" || files[1] != "last.wav" {
		t.Fatalf("files=%v, want first.wav and last.wav only", files)
	}
}

func TestExportAllCanceled(t *testing.T) {
	bank := &Bank{Blob: pcmContainer(sequence(8))}
	bank.Index = []MediaIndexEntry{{ID: 1, Size: uint32(len(bank.Blob))}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	entries := []CatalogEntry{{ID: "1", Name: "a"}, {ID: "1", Name: "b"}}
	dest := t.TempDir()

	outcomes := (&Exporter{}).ExportAll(ctx, entries, t.TempDir(), bank, dest)
	for _, o := range outcomes {
		if !errors.Is(o.Err, context.Canceled) {
			t.Fatalf("outcome %d err=%v, want context.Canceled", o.Index, o.Err)
		}
	}

	if files := listFiles(t, dest); len(files) != 0 {
		t.Fatalf("files=%v, want none", files)
	}
}

func TestExportAllVorbis(t *testing.T) {
	raw := containerBytes(vorbisDescriptor(), descriptorSize+vorbisHeaderSize, chunkBytes("data", sequence(20)))
	bank := &Bank{Blob: raw, Index: []MediaIndexEntry{{ID: 7, Size: uint32(len(raw))}}}
	entries := []CatalogEntry{{ID: "7", Name: "Theme", RelativePath: "Music"}}

	t.Run("delegated", func(t *testing.T) {
		dest := t.TempDir()
		repack := &fakeRepackager{}
		x := &Exporter{Vorbis: repack, Renumber: &fakeRenumberer{}}

		outcomes := x.ExportAll(context.Background(), entries, t.TempDir(), bank, dest)
		if outcomes[0].Err != nil {
			t.Fatalf("export: %v", outcomes[0].Err)
		}

		got, err := os.ReadFile(filepath.Join(dest, "Music", "Theme.ogg"))
		if err != nil {
			t.Fatalf("read: %v", err)
		}

		if string(got) != "OggSRIFF!" {
			t.Fatalf("output=%q, want repackaged and renumbered", got)
		}

		if files := listFiles(t, dest); len(files) != 1 {
			t.Fatalf("files=%v, want temporary files removed", files)
		}
	})

	t.Run("tool failure", func(t *testing.T) {
		dest := t.TempDir()
		errRenumber := errors.New("bad stream")
		x := &Exporter{Vorbis: &fakeRepackager{}, Renumber: &fakeRenumberer{err: errRenumber}}

		outcomes := x.ExportAll(context.Background(), entries, t.TempDir(), bank, dest)
		if !errors.Is(outcomes[0].Err, errRenumber) {
			t.Fatalf("err=%v, want %v", outcomes[0].Err, errRenumber)
		}

		if files := listFiles(t, dest); len(files) != 0 {
			t.Fatalf("files=%v, want none", files)
		}
	})

	t.Run("no tools", func(t *testing.T) {
		outcomes := (&Exporter{}).ExportAll(context.Background(), entries, t.TempDir(), bank, t.TempDir())
		if !errors.Is(outcomes[0].Err, ErrNoVorbisTool) {
			t.Fatalf("err=%v, want ErrNoVorbisTool", outcomes[0].Err)
		}
	})
}

func TestWriteFileAtomicReplaces(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.wav")
	writeFile(t, dst, []byte("old"))

	if err := writeFileAtomic(dst, []byte("new")); err != nil {
		t.Fatalf("writeFileAtomic: %v", err)
	}

	got, err := os.ReadFile(dst)
	if err != nil || string(got) != "new" {
		t.Fatalf("content=%q, %v", got, err)
	}

	if err := writeFileAtomic(filepath.Join(t.TempDir(), "missing", "x.wav"), nil); err == nil {
		t.Fatal("write into a missing directory succeeded")
	}
}
