package soundextract

import "github.com/go-audio/riff"

var (
	// CIDBankHeader is the chunk ID of the bank header section.
	CIDBankHeader = [4]byte{'B', 'K', 'H', 'D'}
	// CIDDataIndex is the chunk ID of the media index section.
	CIDDataIndex = [4]byte{'D', 'I', 'D', 'X'}
	// CIDData is the chunk ID of the section holding embedded media.
	CIDData = [4]byte{'D', 'A', 'T', 'A'}

	// CIDRiff, CIDWave, CIDFmt and CIDPayload are the tags of the audio
	// container carried by every media entry.
	CIDRiff    = riff.RiffID
	CIDWave    = riff.WavFormatID
	CIDFmt     = riff.FmtID
	CIDPayload = riff.DataFormatID
)

const (
	formatPCM         = 0x0001
	formatIMAADPCM    = 0x0011
	formatPackedADPCM = 0x0002
	formatExtensible  = 0xFFFE
	formatVorbis      = 0xFFFF
)

const (
	chunkHeaderSize     = 8
	mediaIndexEntrySize = 12
	// descriptorSize is the on-disk size of FormatDescriptor: the 18 byte
	// WAVEFORMATEX plus samples-per-block and channel mask.
	descriptorSize = 24
	// vorbisHeaderSize is the opaque codec header that follows the
	// descriptor in a Vorbis fmt chunk.
	vorbisHeaderSize = 42
)

const (
	// ExtWave is the extension of rewritten ADPCM and PCM containers.
	ExtWave = ".wav"
	// ExtOgg is the extension of repackaged Vorbis streams.
	ExtOgg = ".ogg"
	// DefaultStreamedExt is the extension of streamed sibling files.
	DefaultStreamedExt = "wem"
	// BankExt is the extension of the bank file next to the metadata.
	BankExt = ".bnk"
)
