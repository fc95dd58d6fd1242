package wav

import (
	"github.com/nomenaudio/core/internal/core"
)

// Metadata is everything ReadMetadata extracts from one WAV file.
type Metadata struct {
	Technical     Technical
	Fields        map[string]string // merged working set, keyed by FileRecord field name
	CustomFields  map[string]string
	BEXT          *BEXT // nil if the file had no bext chunk
	Info          []InfoEntry
	HasIXML       bool
	HasListInfo   bool
}

// ReadMetadata walks a WAV file's chunks and extracts the merged metadata
// working set per §4.3.5: iXML is read first (ASWG then USER overlay),
// then any field still empty is filled from BEXT (preferred) or INFO.
func ReadMetadata(fs Filesystem, path string) (*Metadata, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, core.Wrap(core.FileNotFound, "open wav file", err)
	}
	defer f.Close()

	osFile := f

	descriptors, err := Walk(osFile)
	if err != nil {
		return nil, err
	}

	md := &Metadata{Fields: make(map[string]string)}
	var formatCode, channels, bitsPerSample uint16
	var sampleRate uint32
	var dataSize uint32
	var bextFields map[string]string
	var infoFields map[string]string

	for _, d := range descriptors {
		switch d.FourCC {
		case "fmt ":
			payload, err := ReadPayload(osFile, d)
			if err != nil {
				return nil, err
			}
			formatCode, channels, sampleRate, bitsPerSample, err = ParseFormatChunk(payload)
			if err != nil {
				return nil, err
			}
		case "data":
			dataSize = d.PayloadSize
		case "bext":
			payload, err := ReadPayload(osFile, d)
			if err != nil {
				return nil, err
			}
			if err := ValidateBEXTPayload(payload); err != nil {
				return nil, err
			}
			b := DecodeBEXT(payload)
			md.BEXT = &b
			bextFields = map[string]string{
				"Description": b.Description,
				"Originator":  b.Originator,
			}
		case "iXML":
			payload, err := ReadPayload(osFile, d)
			if err != nil {
				return nil, err
			}
			fields, custom, err := ReadIXML(payload)
			if err != nil {
				return nil, err
			}
			for k, v := range fields {
				md.Fields[k] = v
			}
			md.CustomFields = custom
			md.HasIXML = true
		case "LIST":
			payload, err := ReadPayload(osFile, d)
			if err != nil {
				return nil, err
			}
			form, entries, err := ParseListPayload(payload)
			if err != nil {
				return nil, err
			}
			if form == "INFO" {
				md.Info = entries
				md.HasListInfo = true
				infoFields = make(map[string]string, len(entries))
				for _, e := range entries {
					infoFields[e.ID] = e.Value
				}
			}
		}
	}

	fi, err := fs.Stat(path)
	if err != nil {
		return nil, core.Wrap(core.FileNotFound, "stat wav file", err)
	}
	md.Technical = BuildTechnical(formatCode, channels, sampleRate, bitsPerSample, dataSize, fi.Size())

	// Fallback fill: BEXT over INFO, only for fields still empty.
	for field, bextKey := range BextFallback {
		if md.Fields[field] != "" {
			continue
		}
		if bextFields != nil && bextFields[bextKey] != "" {
			md.Fields[field] = bextFields[bextKey]
		}
	}
	for field, infoKey := range InfoFallback {
		if md.Fields[field] != "" {
			continue
		}
		if infoFields != nil && infoFields[infoKey] != "" {
			md.Fields[field] = infoFields[infoKey]
		}
	}

	return md, nil
}
