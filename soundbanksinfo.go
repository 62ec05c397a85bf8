package soundextract

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
)

type xmlSoundBanksInfo struct {
	XMLName    xml.Name
	SoundBanks *struct {
		SoundBank []xmlSoundBank `xml:"SoundBank"`
	} `xml:"SoundBanks"`
}

type xmlSoundBank struct {
	Streamed *xmlFileGroup `xml:"ReferencedStreamedFiles"`
	Memory   *xmlFileGroup `xml:"IncludedMemoryFiles"`
}

type xmlFileGroup struct {
	Files []xmlFile `xml:"File"`
}

type xmlFile struct {
	ID           string    `xml:"Id,attr"`
	ShortName    string    `xml:"ShortName"`
	Path         string    `xml:"Path"`
	PrefetchSize *struct{} `xml:"PrefetchSize"`
}

// ReadSoundbanksInfo reads the metadata file at path.
func ReadSoundbanksInfo(path string) (*MetadataRoot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open metadata: %w", err)
	}
	defer f.Close()

	return DecodeSoundbanksInfo(f)
}

// DecodeSoundbanksInfo decodes SoundBanksInfo XML. Only the first SoundBank
// element is used.
func DecodeSoundbanksInfo(r io.Reader) (*MetadataRoot, error) {
	var doc xmlSoundBanksInfo

	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: empty document", ErrNotSoundbanksInfo)
		}

		return nil, fmt.Errorf("decode metadata: %w", err)
	}

	if doc.XMLName.Local != "SoundBanksInfo" {
		return nil, fmt.Errorf("%w: root element is <%s>", ErrNotSoundbanksInfo, doc.XMLName.Local)
	}

	if doc.SoundBanks == nil || len(doc.SoundBanks.SoundBank) == 0 {
		return nil, ErrNotSoundbanksInfo
	}

	bank := doc.SoundBanks.SoundBank[0]

	return &MetadataRoot{
		Streamed: bank.Streamed.fileGroup(),
		Memory:   bank.Memory.fileGroup(),
	}, nil
}

func (g *xmlFileGroup) fileGroup() *FileGroup {
	if g == nil {
		return nil
	}

	group := &FileGroup{Files: make([]FileNode, 0, len(g.Files))}

	for _, f := range g.Files {
		group.Files = append(group.Files, FileNode{
			ID:           f.ID,
			ShortName:    f.ShortName,
			Path:         f.Path,
			PrefetchSize: f.PrefetchSize != nil,
		})
	}

	return group
}
