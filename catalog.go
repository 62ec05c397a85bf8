package soundextract

import (
	"cmp"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
)

// MetadataRoot is the part of the sound bank metadata the catalog is built
// from. A nil group means the element was absent.
type MetadataRoot struct {
	Streamed *FileGroup
	Memory   *FileGroup
}

// FileGroup lists the File elements of one media group.
type FileGroup struct {
	Files []FileNode
}

// FileNode is one File element.
type FileNode struct {
	ID        string
	ShortName string
	Path      string
	// PrefetchSize is set when the element carries a prefetch marker. Such
	// media is only a truncated prefix of the real sound.
	PrefetchSize bool
}

// CatalogEntry is one exportable sound.
type CatalogEntry struct {
	ID string `json:"id"`
	// Name is the display name: the short name without its extension.
	Name string `json:"name"`
	// RelativePath is the forward slash separated directory of the source
	// path, relative to the export root. Empty means the root itself.
	RelativePath string `json:"relative_path,omitempty"`
	Streamed     bool   `json:"streamed"`
}

// OutputPath returns where the entry is written below destRoot.
func (e CatalogEntry) OutputPath(destRoot, ext string) string {
	return filepath.Join(destRoot, filepath.FromSlash(e.RelativePath), e.Name+ext)
}

// ParseCatalog flattens root into entries, streamed files first. Prefetch
// entries are skipped. A short name without an extension fails the parse.
func ParseCatalog(root *MetadataRoot) ([]CatalogEntry, error) {
	if root == nil {
		return nil, nil
	}

	var entries []CatalogEntry

	for _, group := range []struct {
		files    *FileGroup
		streamed bool
	}{
		{root.Streamed, true},
		{root.Memory, false},
	} {
		if group.files == nil {
			continue
		}

		for _, node := range group.files.Files {
			if node.PrefetchSize {
				continue
			}

			entry, err := newCatalogEntry(node, group.streamed)
			if err != nil {
				return nil, err
			}

			entries = append(entries, entry)
		}
	}

	return entries, nil
}

func newCatalogEntry(node FileNode, streamed bool) (CatalogEntry, error) {
	name, err := stripExtension(node.ShortName)
	if err != nil {
		return CatalogEntry{}, fmt.Errorf("file %s: %w", node.ID, err)
	}

	return CatalogEntry{
		ID:           strings.TrimSpace(node.ID),
		Name:         name,
		RelativePath: relativeDir(node.Path),
		Streamed:     streamed,
	}, nil
}

func stripExtension(shortName string) (string, error) {
	i := strings.LastIndexByte(shortName, '.')
	if i < 0 {
		return "", fmt.Errorf("%w: %q", ErrNoExtension, shortName)
	}

	return shortName[:i], nil
}

// relativeDir returns the directory of p with Windows separators
// normalized. The result is kept below the export root.
func relativeDir(p string) string {
	dir := path.Dir(strings.ReplaceAll(strings.TrimSpace(p), `\`, "/"))

	return strings.TrimPrefix(path.Clean("/"+dir), "/")
}

func streamedPath(basePath, id, ext string) string {
	return filepath.Join(basePath, id+"."+strings.TrimPrefix(ext, "."))
}

// FilterStreamed drops streamed entries whose <id>.<ext> file is missing
// from basePath. Memory entries are kept. The backing array of entries is
// reused.
func FilterStreamed(entries []CatalogEntry, basePath, ext string) []CatalogEntry {
	return slices.DeleteFunc(entries, func(e CatalogEntry) bool {
		if !e.Streamed {
			return false
		}

		_, err := os.Stat(streamedPath(basePath, e.ID, ext))

		return err != nil
	})
}

// SortCatalog sorts entries by name, keeping the metadata order of
// duplicate names.
func SortCatalog(entries []CatalogEntry) {
	slices.SortStableFunc(entries, func(a, b CatalogEntry) int {
		return cmp.Compare(a.Name, b.Name)
	})
}

// LoadCatalog parses, filters and sorts root. It fails with ErrNothingFound
// when no entry survives.
func LoadCatalog(root *MetadataRoot, basePath, ext string) ([]CatalogEntry, error) {
	entries, err := ParseCatalog(root)
	if err != nil {
		return nil, err
	}

	entries = FilterStreamed(entries, basePath, ext)
	if len(entries) == 0 {
		return nil, ErrNothingFound
	}

	SortCatalog(entries)

	return entries, nil
}

// FindByName returns the first entry whose display name is name.
func FindByName(entries []CatalogEntry, name string) (CatalogEntry, bool) {
	i := slices.IndexFunc(entries, func(e CatalogEntry) bool { return e.Name == name })
	if i < 0 {
		return CatalogEntry{}, false
	}

	return entries[i], true
}
