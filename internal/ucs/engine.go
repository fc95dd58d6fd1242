// Package ucs implements the Universal Category System taxonomy engine: a
// read-only, in-memory lookup built once from a workbook at startup.
package ucs

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/nomenaudio/core/internal/core"
)

// CatInfo is the full taxonomy record for one CatID.
type CatInfo struct {
	Category    string
	Subcategory string
	CatID       string
	Explanation string
	Synonyms    []string
}

// CategoryFull is the canonical "CATEGORY-SUBCATEGORY" join, computed on
// demand rather than stored, mirroring the original dataclass's property.
func (c CatInfo) CategoryFull() string {
	return c.Category + "-" + c.Subcategory
}

// extraSynonyms are curated aliases absent from the spreadsheet. Appended
// to the synonym index after spreadsheet-sourced synonyms so a spreadsheet
// hit is never shadowed (resolves the tie-order open question).
var extraSynonyms = map[string]string{
	"guncano": "GUNCano",
	"boom":    "EXPLBlast",
	"creak":   "DOORCreak",
	"timber":  "DOORWood",
}

// Engine is the shared, read-only-after-Load taxonomy index.
type Engine struct {
	mu            sync.RWMutex
	loaded        bool
	byCatID       map[string]CatInfo
	categories    []string
	subcategories map[string][]CatInfo
	synonyms      map[string]map[string]struct{}
}

// New returns an unloaded Engine. Call Load before any lookup.
func New() *Engine {
	return &Engine{
		byCatID:       make(map[string]CatInfo),
		subcategories: make(map[string][]CatInfo),
		synonyms:      make(map[string]map[string]struct{}),
	}
}

const (
	primarySheet    = "UCS v8.2.1"
	primaryDataRow  = 4 // 1-indexed; rows before this are headers/title
	overviewSheet   = "USC Category Overview"
	overviewDataRow = 3
)

// Load reads the taxonomy workbook and builds the three lookup tables.
// Failure is fatal to the whole core: there is no partial-taxonomy mode.
func (e *Engine) Load(path string) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return core.Wrap(core.ValidationError, "open taxonomy workbook", err)
	}
	defer f.Close()

	rows, err := f.GetRows(primarySheet)
	if err != nil {
		return core.Wrap(core.ValidationError, fmt.Sprintf("read sheet %q", primarySheet), err)
	}
	if len(rows) < primaryDataRow {
		return core.New(core.ValidationError, "taxonomy sheet has no data rows")
	}

	header := rows[primaryDataRow-2] // header sits one row above the data row
	col := indexHeader(header)

	catCol, ok1 := col["category"]
	subCol, ok2 := col["subcategory"]
	idCol, ok3 := col["catid"]
	explCol, hasExpl := col["explanation"]
	synCol, hasSyn := col["synonyms"]
	if !ok1 || !ok2 || !ok3 {
		return core.New(core.ValidationError, "taxonomy sheet missing Category/SubCategory/CatID columns")
	}

	byCatID := make(map[string]CatInfo)
	subcategories := make(map[string][]CatInfo)
	var categories []string
	seenCategory := make(map[string]bool)
	synonymIndex := make(map[string]map[string]struct{})

	for _, row := range rows[primaryDataRow-1:] {
		category := cell(row, catCol)
		subcategory := cell(row, subCol)
		catID := cell(row, idCol)
		if catID == "" || category == "" || subcategory == "" {
			continue
		}
		info := CatInfo{
			Category:    category,
			Subcategory: subcategory,
			CatID:       catID,
		}
		if hasExpl {
			info.Explanation = cell(row, explCol)
		}
		if hasSyn {
			info.Synonyms = splitSynonyms(cell(row, synCol))
		}

		byCatID[catID] = info
		subcategories[category] = append(subcategories[category], info)
		if !seenCategory[category] {
			seenCategory[category] = true
			categories = append(categories, category)
		}

		for _, syn := range info.Synonyms {
			key := strings.ToLower(strings.TrimSpace(syn))
			if key == "" {
				continue
			}
			if synonymIndex[key] == nil {
				synonymIndex[key] = make(map[string]struct{})
			}
			synonymIndex[key][catID] = struct{}{}
		}
	}

	// Curated extras appended second: never shadows a spreadsheet hit.
	for term, catID := range extraSynonyms {
		if _, ok := byCatID[catID]; !ok {
			continue
		}
		key := strings.ToLower(term)
		if synonymIndex[key] == nil {
			synonymIndex[key] = make(map[string]struct{})
		}
		synonymIndex[key][catID] = struct{}{}
	}

	// The overview sheet is optional category-level explanation enrichment;
	// its absence is not fatal.
	if overviewRows, err := f.GetRows(overviewSheet); err == nil && len(overviewRows) >= overviewDataRow {
		e.mergeOverview(overviewRows, byCatID, subcategories)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.byCatID = byCatID
	e.categories = categories
	e.subcategories = subcategories
	e.synonyms = synonymIndex
	e.loaded = true
	return nil
}

func (e *Engine) mergeOverview(rows [][]string, byCatID map[string]CatInfo, subcategories map[string][]CatInfo) {
	header := rows[overviewDataRow-2]
	col := indexHeader(header)
	catCol, ok1 := col["category"]
	explCol, ok2 := col["explanation"]
	if !ok1 || !ok2 {
		return
	}
	overview := make(map[string]string)
	for _, row := range rows[overviewDataRow-1:] {
		cat := cell(row, catCol)
		if cat == "" {
			continue
		}
		overview[cat] = cell(row, explCol)
	}
	for catID, info := range byCatID {
		if info.Explanation == "" {
			if expl, ok := overview[info.Category]; ok {
				info.Explanation = expl
				byCatID[catID] = info
			}
		}
	}
	for cat, list := range subcategories {
		expl, ok := overview[cat]
		if !ok {
			continue
		}
		for i := range list {
			if list[i].Explanation == "" {
				list[i].Explanation = expl
			}
		}
	}
}

func indexHeader(header []string) map[string]int {
	out := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.Join(strings.Fields(h), ""))
		if key == "" {
			continue
		}
		if _, exists := out[key]; !exists {
			out[key] = i
		}
	}
	return out
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func splitSynonyms(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';'
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ListCategories returns categories in the order they first appeared in the
// source sheet.
func (e *Engine) ListCategories() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]string, len(e.categories))
	copy(out, e.categories)
	return out
}

// ListSubcategories returns the subcategory records under category, in
// source order, or an empty slice if the category is unknown.
func (e *Engine) ListSubcategories(category string) []CatInfo {
	e.mu.RLock()
	defer e.mu.RUnlock()
	list := e.subcategories[category]
	out := make([]CatInfo, len(list))
	copy(out, list)
	return out
}

// LookupCatID resolves a category/subcategory pair to a CatID, or "" if
// unknown.
func (e *Engine) LookupCatID(category, subcategory string) string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, info := range e.subcategories[category] {
		if info.Subcategory == subcategory {
			return info.CatID
		}
	}
	return ""
}

// GetCatIDInfo returns the full record for a CatID and whether it was found.
func (e *Engine) GetCatIDInfo(catID string) (CatInfo, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	info, ok := e.byCatID[catID]
	return info, ok
}

// SynonymHits returns the set of CatIDs whose synonym list matches token.
// Prefix-aware: a token matches a synonym if it equals the synonym exactly,
// or the synonym starts with the token and the synonym is at least 4 chars.
func (e *Engine) SynonymHits(token string) map[string]struct{} {
	e.mu.RLock()
	defer e.mu.RUnlock()
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return nil
	}
	hits := make(map[string]struct{})
	for syn, catIDs := range e.synonyms {
		if syn == token || (len(syn) >= 4 && strings.HasPrefix(syn, token)) {
			for id := range catIDs {
				hits[id] = struct{}{}
			}
		}
	}
	if len(hits) == 0 {
		return nil
	}
	return hits
}

// Loaded reports whether Load has completed successfully.
func (e *Engine) Loaded() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.loaded
}

// CategoryPrefixHits returns CatIDs whose category name starts with token
// (token length >= 3 required by callers in the filename codec).
func (e *Engine) CategoryPrefixHits(token string) map[string]struct{} {
	e.mu.RLock()
	defer e.mu.RUnlock()
	token = strings.ToLower(token)
	hits := make(map[string]struct{})
	for category, list := range e.subcategories {
		if strings.HasPrefix(strings.ToLower(category), token) {
			for _, info := range list {
				hits[info.CatID] = struct{}{}
			}
		}
	}
	if len(hits) == 0 {
		return nil
	}
	return hits
}

// SubcategoryPrefixHits returns CatIDs whose subcategory name starts with
// token.
func (e *Engine) SubcategoryPrefixHits(token string) map[string]struct{} {
	e.mu.RLock()
	defer e.mu.RUnlock()
	token = strings.ToLower(token)
	hits := make(map[string]struct{})
	for _, info := range e.byCatID {
		if strings.HasPrefix(strings.ToLower(info.Subcategory), token) {
			hits[info.CatID] = struct{}{}
		}
	}
	if len(hits) == 0 {
		return nil
	}
	return hits
}

// AllCatIDsSorted is used by fuzzy-match tie-breaking (lexicographic cat_id
// order) and by tests.
func (e *Engine) AllCatIDsSorted() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]string, 0, len(e.byCatID))
	for id := range e.byCatID {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
