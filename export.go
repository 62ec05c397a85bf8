package soundextract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/soundextract/internal/logger"
)

// Outcome is the result of exporting one catalog entry.
type Outcome struct {
	// Index is the position of the entry in the exported slice.
	Index int
	Entry CatalogEntry
	// Path is the written file, empty on failure.
	Path string
	Ext  string
	Kind FormatKind
	Err  error
}

// OK reports whether the entry was written.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Exporter writes catalog entries as standard containers. The zero value
// exports with one worker per CPU and cannot handle Vorbis media.
type Exporter struct {
	// Workers bounds concurrent exports. Zero or less means GOMAXPROCS.
	Workers int
	// StreamedExt is the extension of streamed media files next to the
	// metadata, DefaultStreamedExt when empty.
	StreamedExt string
	Vorbis      VorbisRepackager
	Renumber    StreamRenumberer
	Logger      logger.Logger
}

func (x *Exporter) workers() int {
	if x.Workers > 0 {
		return x.Workers
	}

	return runtime.GOMAXPROCS(0)
}

func (x *Exporter) streamedExt() string {
	if x.StreamedExt == "" {
		return DefaultStreamedExt
	}

	return x.StreamedExt
}

// ExportAll exports every entry below destRoot. A failing entry never stops
// the others; its error is recorded in the returned outcome, which has the
// same index as the entry. Entries sharing a destination are exported in
// order by one worker, so the later entry is the one left on disk. Once ctx
// is done no further entry is started and the remaining outcomes carry the
// context error. bank is only read.
func (x *Exporter) ExportAll(ctx context.Context, entries []CatalogEntry, basePath string, bank *Bank, destRoot string) []Outcome {
	log := logger.OrDiscard(x.Logger)
	outcomes := make([]Outcome, len(entries))

	var g errgroup.Group

	g.SetLimit(x.workers())

	for _, group := range groupByDestination(entries) {
		g.Go(func() error {
			for _, i := range group {
				entry := entries[i]

				out := x.export(ctx, entry, basePath, bank, destRoot)
				out.Index = i
				outcomes[i] = out

				switch {
				case out.Err == nil:
					log.Info("exported", "entry", entry.Name, "kind", out.Kind.String(), "path", out.Path)
				case out.Err != ctx.Err():
					log.Warn("skipped", "entry", entry.Name, "id", entry.ID, "err", out.Err)
				}
			}

			return nil
		})
	}

	_ = g.Wait()

	return outcomes
}

// groupByDestination returns entry indexes grouped by output file, ignoring
// the extension, in order of first appearance. Indexes within a group keep
// catalog order.
func groupByDestination(entries []CatalogEntry) [][]int {
	var groups [][]int

	seen := make(map[string]int, len(entries))

	for i, entry := range entries {
		key := entry.OutputPath("", "")

		g, ok := seen[key]
		if !ok {
			g = len(groups)
			seen[key] = g
			groups = append(groups, nil)
		}

		groups[g] = append(groups[g], i)
	}

	return groups
}

func (x *Exporter) export(ctx context.Context, entry CatalogEntry, basePath string, bank *Bank, destRoot string) Outcome {
	res := Outcome{Entry: entry}

	if err := ctx.Err(); err != nil {
		res.Err = err

		return res
	}

	raw, err := ResolveBytes(entry, bank, basePath, x.streamedExt())
	if err != nil {
		res.Err = err

		return res
	}

	out, err := Transcode(raw)
	if err != nil {
		res.Err = err

		return res
	}

	res.Kind, res.Ext = out.Kind, out.Ext

	dst := entry.OutputPath(destRoot, out.Ext)
	if err := x.WriteOutput(ctx, out, dst); err != nil {
		res.Err = err

		return res
	}

	res.Path = dst

	return res
}

// WriteOutput writes out to dst, creating missing directories. The file
// only appears once it is complete.
func (x *Exporter) WriteOutput(ctx context.Context, out *Output, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	if out.Delegated() {
		return x.writeVorbis(ctx, out.Data, dst)
	}

	return writeFileAtomic(dst, out.Data)
}

func (x *Exporter) writeVorbis(ctx context.Context, raw []byte, dst string) (err error) {
	if x.Vorbis == nil || x.Renumber == nil {
		return ErrNoVorbisTool
	}

	dir := filepath.Dir(dst)

	in, err := os.CreateTemp(dir, "."+filepath.Base(dst)+".*.wem")
	if err != nil {
		return fmt.Errorf("create vorbis source: %w", err)
	}

	inPath := in.Name()
	stagePath := strings.TrimSuffix(inPath, ".wem") + ".ogg"

	defer func() {
		os.Remove(inPath)

		if err != nil {
			os.Remove(stagePath)
		}
	}()

	_, err = in.Write(raw)
	if closeErr := in.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		return fmt.Errorf("write vorbis source: %w", err)
	}

	if err = x.Vorbis.Repackage(ctx, inPath, stagePath); err != nil {
		return fmt.Errorf("repackage vorbis: %w", err)
	}

	if err = x.Renumber.Renumber(ctx, stagePath); err != nil {
		return fmt.Errorf("renumber vorbis: %w", err)
	}

	if err = os.Rename(stagePath, dst); err != nil {
		return fmt.Errorf("move vorbis output: %w", err)
	}

	return nil
}

// writeFileAtomic writes data to a temporary file next to dst and renames
// it into place.
func writeFileAtomic(dst string, data []byte) (err error) {
	f, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}

	tmp := f.Name()

	defer func() {
		if err != nil {
			os.Remove(tmp)
		}
	}()

	_, err = f.Write(data)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	if err = os.Chmod(tmp, 0o644); err != nil {
		return fmt.Errorf("chmod output: %w", err)
	}

	if err = os.Rename(tmp, dst); err != nil {
		return fmt.Errorf("rename output: %w", err)
	}

	return nil
}
