package wav

import (
	"regexp"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/nomenaudio/core/internal/core"
)

// decodeIXMLBytes turns a raw iXML payload into a UTF-8 string, trying
// UTF-16 BOM (LE/BE) first, then UTF-8, then falling back to latin-1 — the
// encoding fallback chain real-world iXML writers require (some vendors
// emit BOM-prefixed UTF-16, most emit plain UTF-8, a few emit raw Latin-1).
func decodeIXMLBytes(raw []byte) string {
	if len(raw) >= 2 {
		switch {
		case raw[0] == 0xFF && raw[1] == 0xFE:
			return decodeUTF16(raw[2:], false)
		case raw[0] == 0xFE && raw[1] == 0xFF:
			return decodeUTF16(raw[2:], true)
		}
	}
	if utf8.Valid(raw) {
		return string(raw)
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(decoded)
}

func decodeUTF16(b []byte, bigEndian bool) string {
	if len(b)%2 == 1 {
		b = b[:len(b)-1]
	}
	units := make([]uint16, len(b)/2)
	for i := range units {
		if bigEndian {
			units[i] = uint16(b[2*i])<<8 | uint16(b[2*i+1])
		} else {
			units[i] = uint16(b[2*i+1])<<8 | uint16(b[2*i])
		}
	}
	return string(utf16.Decode(units))
}

// IXMLFields is the working set of built-in field values read from an
// iXML chunk, keyed by FileRecord field name.
type IXMLFields map[string]string

// ReadIXML decodes an iXML payload and returns the merged built-in field
// set (ASWG read first, USER overlaid on top, per §4.3.2) plus any USER
// tags outside the known built-in set, collected as custom fields.
func ReadIXML(payload []byte) (IXMLFields, map[string]string, error) {
	text := decodeIXMLBytes(payload)
	root, err := parseXMLTree([]byte(text))
	if err != nil {
		return nil, nil, core.Wrap(core.InvalidWAV, "parse iXML", err)
	}

	working := make(IXMLFields)
	aswg := findChild(root, "ASWG")
	if aswg != nil {
		for field, tag := range ASWGTagOf {
			if v, ok := getText(aswg, tag); ok && v != "" {
				working[field] = v
			}
		}
	}

	user := findChild(root, "USER")
	custom := make(map[string]string)
	if user != nil {
		for field, tag := range UserTagOf {
			if v, ok := getText(user, tag); ok && v != "" {
				working[field] = v
			}
		}
		for _, child := range user.Children {
			if !BuiltinUserTags[child.Tag] {
				custom[child.Tag] = child.Text
			}
		}
	}

	return working, custom, nil
}

var customTagPattern = regexp.MustCompile(`^[A-Z0-9_]{1,32}$`)

// ixmlVersion is the iXML schema version stamped into a freshly synthesized
// chunk's top-level IXML_VERSION element. Matches the version the original
// writer has always emitted; never bumped for an existing chunk's merge.
const ixmlVersion = "1.61"

// WriteIXML merges patch (built-in fields present/changed on the record)
// and customFields into existing (the raw bytes of the source iXML chunk,
// or nil if none existed), returning the new serialized chunk. Unrelated
// top-level elements (PROJECT, SCENE, TAKE, TRACK_LIST, vendor blocks) are
// preserved as-is because the merge only ever touches the USER/ASWG
// subtrees.
func WriteIXML(existing []byte, patch map[string]string, customFields map[string]string) ([]byte, error) {
	var root *xmlNode
	if len(existing) > 0 {
		parsed, err := parseXMLTree([]byte(decodeIXMLBytes(existing)))
		if err != nil {
			return nil, core.Wrap(core.InvalidWAV, "parse existing iXML for merge", err)
		}
		root = parsed
	} else {
		root = &xmlNode{Tag: "BWFXML"}
		setText(root, "IXML_VERSION", ixmlVersion)
	}

	user := ensureChild(root, "USER")
	aswg := ensureChild(root, "ASWG")

	for field, value := range patch {
		if value == "" {
			continue
		}
		if tag, ok := UserTagOf[field]; ok {
			setText(user, tag, value)
		}
		if tag, ok := ASWGTagOf[field]; ok {
			setText(aswg, tag, value)
		}
	}

	setText(user, EmbedderUserTag, EmbedderValue)
	setText(aswg, ContentTypeASWGTag, ContentTypeValue)

	for tag, value := range customFields {
		if !customTagPattern.MatchString(tag) {
			return nil, core.New(core.ValidationError, "invalid custom field tag: "+tag)
		}
		setText(user, tag, value)
	}

	return serializeXMLTree(root), nil
}
