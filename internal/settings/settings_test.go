package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "settings.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := s.Get().LibraryTemplate; got != "{source_id} {library_name}" {
		t.Fatalf("unexpected default template: %q", got)
	}
}

func TestUpdatePersistsAtomicallyAndPreservesUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	seed := map[string]any{
		"version":        1,
		"creator_id":     "ACME",
		"future_feature": map[string]any{"flag": true},
	}
	encoded, _ := json.Marshal(seed)
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		t.Fatalf("seed write: %v", err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := s.Update(func(a *AppSettings) { a.SourceID = "Lib01" }); err != nil {
		t.Fatalf("Update: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var roundTripped map[string]json.RawMessage
	if err := json.Unmarshal(raw, &roundTripped); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if _, ok := roundTripped["future_feature"]; !ok {
		t.Fatalf("unknown key was not preserved: %s", raw)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := reloaded.Get().SourceID; got != "Lib01" {
		t.Fatalf("SourceID = %q", got)
	}
	if got := reloaded.Get().CreatorID; got != "ACME" {
		t.Fatalf("CreatorID lost on update: %q", got)
	}
}

func TestValidateCustomFieldTagsRejectsBuiltinClash(t *testing.T) {
	err := ValidateCustomFieldTags([]CustomFieldDef{{Tag: "CATEGORY", Label: "x"}})
	if err == nil {
		t.Fatalf("expected rejection of built-in tag clash")
	}
}

func TestValidateCustomFieldTagsRejectsBadFormat(t *testing.T) {
	err := ValidateCustomFieldTags([]CustomFieldDef{{Tag: "lower-case", Label: "x"}})
	if err == nil {
		t.Fatalf("expected rejection of lowercase/hyphenated tag")
	}
}
