package ucsname

import "strings"

// ParsedName is the decomposition of a UCS-conforming filename stem.
type ParsedName struct {
	CatID          string
	UserCategory   string
	VendorCategory string
	FXName         string
	CreatorID      string
	SourceID       string
	UserData       string

	Category      string
	Subcategory   string
	CategoryFull  string
}

// ParseResult is either a successfully Parsed name, or a set of fuzzy
// Candidates when the stem does not conform to the UCS layout.
type ParseResult struct {
	Parsed     *ParsedName
	Candidates []FuzzyCandidate
}

// Parse decomposes filename ("stem.wav") per §4.2: split on '_', resolve
// the first block as a CatID (optionally carrying a "-UserCategory"
// suffix), and assign the remaining blocks to FXName/CreatorID/SourceID/
// UserData. If the stem has fewer than 3 blocks, or the first block does
// not resolve to a known CatID, fuzzy candidates are returned instead.
func Parse(engine TaxonomyLookup, filename string) ParseResult {
	stem := stemOf(filename)
	blocks := strings.Split(stem, "_")
	if len(blocks) < 3 {
		return ParseResult{Candidates: Fuzzy(engine, filename, 10)}
	}

	first := blocks[0]
	catID := first
	userCategory := ""
	if idx := strings.IndexByte(first, '-'); idx >= 0 {
		catID = first[:idx]
		userCategory = first[idx+1:]
	}

	info, ok := engine.GetCatIDInfo(catID)
	if !ok {
		return ParseResult{Candidates: Fuzzy(engine, filename, 10)}
	}

	remainder := blocks[1:]
	parsed := &ParsedName{
		CatID:        catID,
		UserCategory: userCategory,
		Category:     info.Category,
		Subcategory:  info.Subcategory,
		CategoryFull: info.CategoryFull(),
	}

	switch n := len(remainder); {
	case n == 0:
		// CatID-only stem; nothing else to assign.
	case n == 1:
		parsed.FXName = remainder[0]
	case n == 2:
		parsed.FXName = remainder[0]
		parsed.CreatorID = remainder[1]
	case n == 3:
		parsed.FXName = remainder[0]
		parsed.CreatorID = remainder[1]
		parsed.SourceID = remainder[2]
	default: // n >= 4: trailing blocks collapse into UserData
		parsed.FXName = remainder[0]
		parsed.CreatorID = remainder[1]
		parsed.SourceID = remainder[2]
		parsed.UserData = strings.Join(remainder[3:], "_")
	}

	if idx := strings.IndexByte(parsed.FXName, '-'); idx >= 0 {
		parsed.VendorCategory = parsed.FXName[:idx]
		parsed.FXName = parsed.FXName[idx+1:]
	}

	return ParseResult{Parsed: parsed}
}
