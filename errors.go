package soundextract

import (
	"errors"
	"fmt"
)

var (
	// ErrNotSoundbanksInfo is returned when the metadata lacks the
	// SoundBanksInfo/SoundBanks/SoundBank structure.
	ErrNotSoundbanksInfo = errors.New("cannot find the sound bank metadata elements")
	// ErrNothingFound is returned when neither file group yields an entry.
	ErrNothingFound = errors.New("no sounds found in metadata")
	// ErrNoExtension is returned when a short name has no extension separator.
	ErrNoExtension = errors.New("short name has no extension")
	// ErrUnknownName is returned when a selection names no catalog entry.
	ErrUnknownName = errors.New("no catalog entry with that name")

	// ErrUnresolved is the parent of every per-entry resolution error.
	ErrUnresolved = errors.New("unresolved entry")
	// ErrEntryNotFound indicates a memory entry id that is not in the index.
	ErrEntryNotFound = fmt.Errorf("%w: id not in media index", ErrUnresolved)
	// ErrInvalidID indicates a memory entry id that is not an unsigned integer.
	ErrInvalidID = fmt.Errorf("%w: invalid media id", ErrUnresolved)
	// ErrOutOfRange indicates an index record pointing outside the data blob.
	ErrOutOfRange = fmt.Errorf("%w: media range outside data chunk", ErrUnresolved)
	// ErrEmptyMedia indicates a zero length resolution.
	ErrEmptyMedia = fmt.Errorf("%w: empty media", ErrUnresolved)
	// ErrSiblingMissing indicates a streamed entry whose sibling file cannot be read.
	ErrSiblingMissing = fmt.Errorf("%w: streamed file missing", ErrUnresolved)

	// ErrInvalidContainer is the parent of every container validation error.
	ErrInvalidContainer = errors.New("invalid audio container")
	// ErrTruncated indicates a container shorter than its fixed headers.
	ErrTruncated = fmt.Errorf("%w: truncated", ErrInvalidContainer)
	// ErrMissingPayload indicates a missing or zero length data chunk.
	ErrMissingPayload = fmt.Errorf("%w: missing or empty data chunk", ErrInvalidContainer)
	// ErrInvalidDescriptor indicates a fmt descriptor that cannot describe
	// ADPCM blocks (zero channels, zero bit depth, short blocks).
	ErrInvalidDescriptor = fmt.Errorf("%w: invalid format descriptor", ErrInvalidContainer)

	// ErrUnsupportedFormat is returned for format tags this tool cannot rewrite.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrNoVorbisTool is returned when a Vorbis entry is exported without
	// a configured repackager or renumberer.
	ErrNoVorbisTool = errors.New("vorbis repackager not configured")
)

// MagicError reports a four-character code that did not match.
type MagicError struct {
	Expected [4]byte
	Found    [4]byte
}

func (e *MagicError) Error() string {
	return fmt.Sprintf("%s: expected %q, found %q", ErrInvalidContainer, e.Expected[:], e.Found[:])
}

func (e *MagicError) Unwrap() error {
	return ErrInvalidContainer
}

// SizeMismatchError reports a fmt chunk whose declared size does not match
// what the format tag requires.
type SizeMismatchError struct {
	FormatTag uint16
	Expected  uint32
	Actual    uint32
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("%s: fmt chunk for format 0x%04X is %d bytes, expected %d",
		ErrInvalidContainer, e.FormatTag, e.Actual, e.Expected)
}

func (e *SizeMismatchError) Unwrap() error {
	return ErrInvalidContainer
}

// UnsupportedFormatError reports the format tag that was not recognized.
type UnsupportedFormatError struct {
	FormatTag uint16
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("%s: format tag 0x%04X", ErrUnsupportedFormat, e.FormatTag)
}

func (e *UnsupportedFormatError) Unwrap() error {
	return ErrUnsupportedFormat
}
