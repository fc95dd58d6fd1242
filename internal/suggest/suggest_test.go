package suggest

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nomenaudio/core/internal/settings"
	"github.com/nomenaudio/core/internal/store"
	"github.com/nomenaudio/core/internal/ucs"
)

func buildTestEngine(t *testing.T) *ucs.Engine {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	idx, _ := f.NewSheet("UCS v8.2.1")
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	rows := [][]string{
		{"UCS v8.2.1 taxonomy"},
		{"generated for tests"},
		{"Category", "SubCategory", "CatID", "Explanation", "Synonyms"},
		{"DOORS", "WOOD", "DOORWood", "Wooden doors", "timber, plank, slam"},
		{"DOORS", "CREAK", "DOORCreak", "Creaking doors", "creak, squeak"},
	}
	for r, row := range rows {
		for c, v := range row {
			cellName, _ := excelize.CoordinatesToCellName(c+1, r+1)
			f.SetCellValue("UCS v8.2.1", cellName, v)
		}
	}

	path := filepath.Join(t.TempDir(), "ucs.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	engine := ucs.New()
	if err := engine.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return engine
}

func TestRecomputeNilWithoutHits(t *testing.T) {
	engine := buildTestEngine(t)
	got := Recompute("slam_door_01.wav", &store.AnalysisRecord{}, settings.AppSettings{}, engine)
	if got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}

func TestRecomputePicksTopHit(t *testing.T) {
	engine := buildTestEngine(t)
	analysis := &store.AnalysisRecord{
		Hits: []store.AnalysisHit{
			{CatID: "DOORWood", Confidence: 0.9},
			{CatID: "DOORCreak", Confidence: 0.1},
		},
		AnalyzedAt: time.Now(),
	}

	result := Recompute("heavy_wood_door_slam.wav", analysis, settings.AppSettings{}, engine)
	if result == nil {
		t.Fatalf("expected a result")
	}
	if result.CatID.Value != "DOORWood" {
		t.Fatalf("CatID = %q, want DOORWood", result.CatID.Value)
	}
	if result.Category.Source != SourceClap {
		t.Fatalf("Category.Source = %q, want clap", result.Category.Source)
	}
	if result.Keywords.Value != "timber, plank, slam" {
		t.Fatalf("Keywords = %q", result.Keywords.Value)
	}
	if result.SuggestedFilename.Value == "" {
		t.Fatalf("expected a suggested filename")
	}
}

func TestRecomputeEnrichesWithCaption(t *testing.T) {
	engine := buildTestEngine(t)
	analysis := &store.AnalysisRecord{
		Hits:    []store.AnalysisHit{{CatID: "DOORWood", Confidence: 0.8}},
		Caption: "a heavy wooden door slamming shut loudly in the hallway.",
	}

	result := Recompute("door.wav", analysis, settings.AppSettings{}, engine)
	if result == nil {
		t.Fatalf("expected a result")
	}
	if result.Description.Source != SourceClapCap {
		t.Fatalf("Description.Source = %q", result.Description.Source)
	}
	if result.Description.Value != "A heavy wooden door slamming shut loudly in the hallway" {
		t.Fatalf("Description = %q", result.Description.Value)
	}
	if result.FXName.Value == "" {
		t.Fatalf("expected a non-empty fx_name")
	}
	if len(result.FXName.Value) > maxFXNameLen {
		t.Fatalf("FXName too long: %q", result.FXName.Value)
	}
}

func TestExtractFXNameStripsArticles(t *testing.T) {
	got := extractFXName("a loud metal door slamming shut now")
	if got == "" {
		t.Fatalf("expected non-empty fx_name")
	}
	for _, w := range []string{"A", "a"} {
		if got == w {
			t.Fatalf("article leaked through: %q", got)
		}
	}
}

func TestCleanCaptionCollapsesWhitespaceAndPeriod(t *testing.T) {
	got := cleanCaption("  a   loud   bang.  ")
	if got != "A loud bang" {
		t.Fatalf("cleanCaption = %q", got)
	}
}
