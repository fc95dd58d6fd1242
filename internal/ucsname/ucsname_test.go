package ucsname

import (
	"testing"

	"github.com/nomenaudio/core/internal/ucs"
)

type fakeTaxonomy struct {
	synonyms      map[string]map[string]struct{}
	categoryHits  map[string]map[string]struct{}
	subcatHits    map[string]map[string]struct{}
	catInfo       map[string]ucs.CatInfo
}

func (f fakeTaxonomy) SynonymHits(token string) map[string]struct{}       { return f.synonyms[token] }
func (f fakeTaxonomy) CategoryPrefixHits(token string) map[string]struct{} { return f.categoryHits[token] }
func (f fakeTaxonomy) SubcategoryPrefixHits(token string) map[string]struct{} { return f.subcatHits[token] }
func (f fakeTaxonomy) GetCatIDInfo(catID string) (ucs.CatInfo, bool) {
	info, ok := f.catInfo[catID]
	return info, ok
}

func newFakeTaxonomy() fakeTaxonomy {
	return fakeTaxonomy{
		synonyms: map[string]map[string]struct{}{
			"timber": {"DOORWood": {}},
			"creak":  {"DOORCreak": {}},
		},
		categoryHits: map[string]map[string]struct{}{},
		subcatHits:   map[string]map[string]struct{}{},
		catInfo: map[string]ucs.CatInfo{
			"DOORWood":  {Category: "DOORS", Subcategory: "WOOD", CatID: "DOORWood"},
			"DOORCreak": {Category: "DOORS", Subcategory: "CREAK", CatID: "DOORCreak"},
		},
	}
}

func TestFuzzyBreaksScoreTiesByCatID(t *testing.T) {
	tax := newFakeTaxonomy()
	candidates := Fuzzy(tax, "timber_door_creak_mono.wav", 10)
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %+v", candidates)
	}
	// "door" doesn't hit anything in this fake (no category/subcat seeded for
	// it), so both DOORWood and DOORCreak score 1 each; verify both are
	// present and sorted lexicographically on the tie.
	if candidates[0].CatID != "DOORCreak" || candidates[1].CatID != "DOORWood" {
		t.Fatalf("expected [DOORCreak DOORWood], got %+v", candidates)
	}
	if candidates[0].Score != 1 || candidates[1].Score != 1 {
		t.Fatalf("expected both scores 1, got %+v", candidates)
	}
}

func TestParseConformingStem(t *testing.T) {
	tax := newFakeTaxonomy()
	result := Parse(tax, "DOORWood_Heavy Door Slam_ACME_Lib01.wav")
	if result.Parsed == nil {
		t.Fatalf("expected parsed result, got candidates %+v", result.Candidates)
	}
	p := result.Parsed
	if p.CatID != "DOORWood" {
		t.Fatalf("CatID = %q", p.CatID)
	}
	if p.FXName != "Heavy Door Slam" {
		t.Fatalf("FXName = %q", p.FXName)
	}
	if p.CreatorID != "ACME" || p.SourceID != "Lib01" {
		t.Fatalf("creator/source = %q/%q", p.CreatorID, p.SourceID)
	}
	if p.Category != "DOORS" || p.CategoryFull != "DOORS-WOOD" {
		t.Fatalf("category info wrong: %+v", p)
	}
}

func TestParseFallsBackToFuzzy(t *testing.T) {
	tax := newFakeTaxonomy()
	result := Parse(tax, "timber_door_creak_mono.wav")
	if result.Parsed != nil {
		t.Fatalf("expected fuzzy fallback, got parsed %+v", result.Parsed)
	}
	if len(result.Candidates) == 0 {
		t.Fatalf("expected fuzzy candidates")
	}
}

func TestGenerateNeverTruncatesCatID(t *testing.T) {
	fields := GenerateFields{
		CatID:     "DOORWood",
		FXName:    "A very very very very very very very very very very long fx name that exceeds the stem budget entirely",
		CreatorID: "ACME",
		SourceID:  "Lib01",
	}
	name := Generate(fields, Defaults{})
	if len(name) == 0 {
		t.Fatalf("empty name")
	}
	if name[:len("DOORWood")] != "DOORWood" {
		t.Fatalf("CatID block was truncated or reordered: %s", name)
	}
}

func TestGenerateDefaultsFXName(t *testing.T) {
	name := Generate(GenerateFields{CatID: "DOORWood"}, Defaults{CreatorID: "ACME", SourceID: "Lib01"})
	if name != "DOORWood_Untitled_ACME_Lib01.wav" {
		t.Fatalf("unexpected generated name: %s", name)
	}
}

func TestGeneratePreservesEmptyCreatorIDPositionally(t *testing.T) {
	name := Generate(GenerateFields{CatID: "DOORWood", FXName: "Slam", SourceID: "Lib01"}, Defaults{})
	want := "DOORWood_Slam__Lib01.wav"
	if name != want {
		t.Fatalf("Generate() = %q, want %q", name, want)
	}

	tax := newFakeTaxonomy()
	result := Parse(tax, name)
	if result.Parsed == nil {
		t.Fatalf("expected parsed result, got candidates %+v", result.Candidates)
	}
	if result.Parsed.CreatorID != "" || result.Parsed.SourceID != "Lib01" {
		t.Fatalf("round-trip misread creator/source: creator=%q source=%q", result.Parsed.CreatorID, result.Parsed.SourceID)
	}
}

func TestRenderLibraryTemplate(t *testing.T) {
	got := RenderLibraryTemplate(DefaultLibraryTemplate, "Lib01", "Acme Sound Library")
	if got != "Lib01 Acme Sound Library" {
		t.Fatalf("unexpected render: %q", got)
	}
}
