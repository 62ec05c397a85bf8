// Package soundextract extracts the sounds packed in game audio banks and
// rewrites their vendor containers into standard playable files.
//
// A bank (.bnk) is read with LoadBank. Its media index locates embedded
// containers inside the DATA chunk. The SoundbanksInfo metadata next to the
// bank names every sound: ReadSoundbanksInfo and LoadCatalog turn it into a
// sorted catalog, where streamed entries live in sibling <id>.wem files.
//
// Transcode rewrites one container:
//
//   - packed ADPCM (0x0002) becomes IMA ADPCM (0x0011) with its channels
//     deinterleaved per block
//   - extensible PCM (0xFFFE) becomes plain PCM (0x0001)
//   - Vorbis (0xFFFF) is handed to an external repackager
//
// BankSession and Exporter tie these together for batch exports.
package soundextract
