package ucsname

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// illegalChars matches characters disallowed on common filesystems, plus
// ASCII control characters.
var illegalChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

const maxStemLength = 120

// GenerateFields carries the per-record values needed to assemble a
// conforming filename. Empty strings fall back to Defaults / literal
// defaults per §4.2.
type GenerateFields struct {
	CatID        string
	UserCategory string
	FXName       string
	CreatorID    string
	SourceID     string
}

// Defaults supplies settings-derived fallbacks for missing creator/source.
type Defaults struct {
	CreatorID string
	SourceID  string
}

// Generate assembles "CatID[-UserCategory]_FXName_CreatorID_SourceID.wav",
// substituting defaults for missing creator/source and "Untitled" for a
// missing FXName, stripping illegal characters, and truncating the stem to
// stay under common path-length limits without ever truncating inside the
// CatID block.
//
// CreatorID/SourceID blocks that resolve to empty are kept as positional
// empty segments (producing a double underscore) rather than dropped, so
// Parse's positional block assignment round-trips a filename generated with
// an empty CreatorID but a present SourceID correctly. Only wholly trailing
// empty segments are trimmed.
func Generate(fields GenerateFields, defaults Defaults) string {
	fxName := fields.FXName
	if fxName == "" {
		fxName = "Untitled"
	}
	creatorID := fields.CreatorID
	if creatorID == "" {
		creatorID = defaults.CreatorID
	}
	sourceID := fields.SourceID
	if sourceID == "" {
		sourceID = defaults.SourceID
	}

	catID := sanitizeBlock(fields.CatID)
	if userCategory := sanitizeBlock(fields.UserCategory); userCategory != "" {
		catID += "-" + userCategory
	}

	segments := []string{sanitizeBlock(fxName), sanitizeBlock(creatorID), sanitizeBlock(sourceID)}
	for len(segments) > 0 && segments[len(segments)-1] == "" {
		segments = segments[:len(segments)-1]
	}
	stem := strings.Join(append([]string{catID}, segments...), "_")

	if len(stem) > maxStemLength {
		headroom := maxStemLength - len(catID) - 1 // keep CatID block intact
		if headroom < 0 {
			headroom = 0
		}
		rest := stem[len(catID):]
		if len(rest) > headroom {
			rest = rest[:headroom]
		}
		stem = catID + rest
		stem = strings.TrimRight(stem, "_")
	}

	return stem + ".wav"
}

// sanitizeBlock strips filesystem-illegal characters and normalizes to NFC
// so combining-character variants of the same glyph never produce two
// different filenames for what a user typed as one FXName.
func sanitizeBlock(s string) string {
	s = norm.NFC.String(s)
	s = illegalChars.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
