package wav

import (
	"bytes"
	"encoding/binary"

	"github.com/nomenaudio/core/internal/core"
)

// InfoEntry is one RIFF-INFO sub-chunk: an id like "INAM" and its
// null-terminated string payload (terminator stripped here).
type InfoEntry struct {
	ID    string
	Value string
}

// infoFieldOrder is the canonical order new gap-fill sub-chunks are
// appended in, matching the order they appear in the field mapping table.
var infoFieldOrder = []string{"INAM", "IART", "IGNR", "ICMT", "IPRD", "IKEY"}

// ParseListPayload parses a LIST chunk's payload into its 4-byte form
// ("INFO", "adtl", ...) and, for INFO, its ordered sub-chunk entries. Any
// other form is returned with a nil entry list — callers must stream-copy
// those untouched.
func ParseListPayload(payload []byte) (form string, entries []InfoEntry, err error) {
	if len(payload) < 4 {
		return "", nil, core.New(core.InvalidWAV, "LIST payload too short for form tag")
	}
	form = string(payload[0:4])
	if form != "INFO" {
		return form, nil, nil
	}

	rest := payload[4:]
	for len(rest) >= 8 {
		id := string(rest[0:4])
		size := binary.LittleEndian.Uint32(rest[4:8])
		rest = rest[8:]
		if uint32(len(rest)) < size {
			break
		}
		value := rest[:size]
		if idx := indexByte(value, 0); idx >= 0 {
			value = value[:idx]
		}
		entries = append(entries, InfoEntry{ID: id, Value: string(value)})
		rest = rest[size:]
		if size%2 == 1 && len(rest) > 0 {
			rest = rest[1:]
		}
	}
	return form, entries, nil
}

// BuildListPayload serializes form + entries back into a LIST payload
// (the "LIST" fourcc/size of the outer chunk are written by the caller).
func BuildListPayload(form string, entries []InfoEntry) []byte {
	var buf bytes.Buffer
	buf.WriteString(padForm(form))
	for _, e := range entries {
		value := append([]byte(e.Value), 0)
		var header [8]byte
		copy(header[0:4], e.ID)
		binary.LittleEndian.PutUint32(header[4:8], uint32(len(value)))
		buf.Write(header[:])
		buf.Write(value)
		if len(value)%2 == 1 {
			buf.WriteByte(0)
		}
	}
	return buf.Bytes()
}

func padForm(form string) string {
	if len(form) >= 4 {
		return form[:4]
	}
	out := form
	for len(out) < 4 {
		out += " "
	}
	return out
}

// GapFillInfo fills missing or empty INFO sub-chunks from fill (keyed by
// sub-chunk id, e.g. "INAM") without ever overwriting an existing
// non-empty value. New entries are appended in infoFieldOrder.
func GapFillInfo(existing []InfoEntry, fill map[string]string) []InfoEntry {
	present := make(map[string]bool, len(existing))
	out := make([]InfoEntry, len(existing))
	copy(out, existing)
	for _, e := range existing {
		if e.Value != "" {
			present[e.ID] = true
		}
	}

	for _, id := range infoFieldOrder {
		value, ok := fill[id]
		if !ok || value == "" || present[id] {
			continue
		}
		out = appendOrSet(out, id, value)
	}
	// Any fill ids outside the canonical order are still honored.
	for id, value := range fill {
		if value == "" || present[id] || contains(infoFieldOrder, id) {
			continue
		}
		out = appendOrSet(out, id, value)
	}
	return out
}

func appendOrSet(entries []InfoEntry, id, value string) []InfoEntry {
	for i, e := range entries {
		if e.ID == id {
			if e.Value == "" {
				entries[i].Value = value
			}
			return entries
		}
	}
	return append(entries, InfoEntry{ID: id, Value: value})
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
