package ucs

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func buildTestWorkbook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := primarySheet
	idx, err := f.NewSheet(sheet)
	if err != nil {
		t.Fatalf("NewSheet: %v", err)
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	rows := [][]string{
		{"UCS v8.2.1 taxonomy"},
		{"generated for tests"},
		{"Category", "SubCategory", "CatID", "CatShort", "CategoryFull", "Explanation", "Synonyms"},
		{"DOORS", "WOOD", "DOORWood", "DOORWood", "DOORS-WOOD", "Wooden doors", "timber, plank"},
		{"DOORS", "CREAK", "DOORCreak", "DOORCreak", "DOORS-CREAK", "Creaking doors", "creak, squeak"},
		{"EXPLOSIONS", "BLAST", "EXPLBlast", "EXPLBlast", "EXPLOSIONS-BLAST", "Large blasts", "boom, detonation"},
	}
	for r, row := range rows {
		for c, v := range row {
			cellName, _ := excelize.CoordinatesToCellName(c+1, r+1)
			f.SetCellValue(sheet, cellName, v)
		}
	}

	path := filepath.Join(t.TempDir(), "ucs.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	return path
}

func TestLoadAndLookup(t *testing.T) {
	path := buildTestWorkbook(t)
	e := New()
	if err := e.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !e.Loaded() {
		t.Fatalf("expected Loaded() true")
	}

	if got := e.LookupCatID("DOORS", "WOOD"); got != "DOORWood" {
		t.Fatalf("LookupCatID = %q, want DOORWood", got)
	}

	info, ok := e.GetCatIDInfo("DOORWood")
	if !ok {
		t.Fatalf("expected DOORWood to be found")
	}
	if info.Category != "DOORS" {
		t.Fatalf("unexpected category %q", info.Category)
	}
	if got := info.CategoryFull(); got != "DOORS-WOOD" {
		t.Fatalf("CategoryFull = %q", got)
	}
}

func TestSynonymHitsPrefixAware(t *testing.T) {
	path := buildTestWorkbook(t)
	e := New()
	if err := e.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}

	hits := e.SynonymHits("timber")
	if _, ok := hits["DOORWood"]; !ok {
		t.Fatalf("expected exact synonym match for timber")
	}

	// "creak" is 5 chars; a 3-char prefix "cre" should match since synonym
	// length >= 4.
	hits = e.SynonymHits("cre")
	if _, ok := hits["DOORCreak"]; !ok {
		t.Fatalf("expected prefix match for 'cre' against 'creak'")
	}
}

func TestExtraSynonymsDoNotShadowSpreadsheet(t *testing.T) {
	path := buildTestWorkbook(t)
	e := New()
	if err := e.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	hits := e.SynonymHits("boom")
	if _, ok := hits["EXPLBlast"]; !ok {
		t.Fatalf("expected spreadsheet-sourced 'boom' synonym to survive extras merge")
	}
}
