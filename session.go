package soundextract

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cwbudde/soundextract/internal/logger"
)

// SessionOptions configures a BankSession.
type SessionOptions struct {
	// StreamedExt is the extension of streamed media files,
	// DefaultStreamedExt when empty.
	StreamedExt string
	Logger      logger.Logger
}

// BankSession holds the catalog and bank of the most recently opened
// metadata file. It is safe for concurrent use: exports share the loaded
// bank while Open waits for them to finish before replacing it.
type BankSession struct {
	opts SessionOptions
	log  logger.Logger

	mu       sync.RWMutex
	xmlPath  string
	basePath string
	catalog  []CatalogEntry
	bank     *Bank
}

// NewSession creates an empty session.
func NewSession(opts SessionOptions) *BankSession {
	if opts.StreamedExt == "" {
		opts.StreamedExt = DefaultStreamedExt
	}

	return &BankSession{opts: opts, log: logger.OrDiscard(opts.Logger)}
}

// BankPathFor returns the bank that belongs to a metadata file: the file
// name up to its first dot with a .bnk extension, in the same directory.
func BankPathFor(xmlPath string) string {
	base, _, _ := strings.Cut(filepath.Base(xmlPath), ".")

	return filepath.Join(filepath.Dir(xmlPath), base+BankExt)
}

// Open reads the metadata at xmlPath and its bank and replaces the session
// state. It returns the number of catalog entries. On error the previous
// state is kept.
func (s *BankSession) Open(xmlPath string) (int, error) {
	root, err := ReadSoundbanksInfo(xmlPath)
	if err != nil {
		return 0, err
	}

	basePath := filepath.Dir(xmlPath)

	working, err := LoadCatalog(root, basePath, s.opts.StreamedExt)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", xmlPath, err)
	}

	bankPath := BankPathFor(xmlPath)

	bank, err := LoadBank(bankPath)
	if err != nil {
		return 0, err
	}

	s.logBank(bankPath, bank)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.xmlPath = xmlPath
	s.basePath = basePath
	s.catalog = working
	s.bank = bank

	return len(working), nil
}

func (s *BankSession) logBank(bankPath string, bank *Bank) {
	if !bank.HasHeader {
		s.log.Warn("no sound bank loaded, memory entries will not resolve", "path", bankPath)

		return
	}

	for _, ch := range bank.Chunks {
		switch ch.ID {
		case CIDBankHeader, CIDDataIndex, CIDData:
		default:
			s.log.Debug("skipped chunk", "path", bankPath, "chunk", string(ch.ID[:]), "size", ch.Size)
		}
	}

	s.log.Debug("loaded bank", "path", bankPath, "media", bank.Len(), "data", len(bank.Blob))
}

// Catalog returns a copy of the current catalog.
func (s *BankSession) Catalog() []CatalogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]CatalogEntry(nil), s.catalog...)
}

// Bank returns the loaded bank, nil before the first Open.
func (s *BankSession) Bank() *Bank {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.bank
}

// Source returns the metadata path of the current catalog.
func (s *BankSession) Source() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.xmlPath
}

// Select returns the entries with the given display names, in the order
// requested. Unknown names fail with ErrUnknownName.
func (s *BankSession) Select(names ...string) ([]CatalogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	selected := make([]CatalogEntry, 0, len(names))

	var unknown []string

	for _, name := range names {
		entry, ok := FindByName(s.catalog, name)
		if !ok {
			unknown = append(unknown, name)

			continue
		}

		selected = append(selected, entry)
	}

	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownName, strings.Join(unknown, ", "))
	}

	return selected, nil
}

// Match returns the entries whose display name matches the shell pattern.
func (s *BankSession) Match(pattern string) ([]CatalogEntry, error) {
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("pattern %q: %w", pattern, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []CatalogEntry

	for _, entry := range s.catalog {
		if ok, _ := path.Match(pattern, entry.Name); ok {
			matched = append(matched, entry)
		}
	}

	return matched, nil
}

// Export writes entries, or the whole catalog when entries is nil, below
// destRoot.
func (s *BankSession) Export(ctx context.Context, x *Exporter, entries []CatalogEntry, destRoot string) []Outcome {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if entries == nil {
		entries = s.catalog
	}

	if x.StreamedExt == "" {
		copied := *x
		copied.StreamedExt = s.opts.StreamedExt
		x = &copied
	}

	return x.ExportAll(ctx, entries, s.basePath, s.bank, destRoot)
}
