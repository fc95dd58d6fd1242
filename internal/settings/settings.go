// Package settings owns the single AppSettings document: a UTF-8 JSON file
// at a well-known path, written atomically, with unknown top-level keys
// preserved verbatim across a read/write cycle.
package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/nomenaudio/core/internal/core"
	"github.com/nomenaudio/core/internal/util"
)

const currentVersion = 1

// CustomFieldDef names one user-defined iXML tag the UI offers for editing.
type CustomFieldDef struct {
	Tag   string `json:"tag"`
	Label string `json:"label"`
}

// AppSettings is the known, schema-versioned subset of the settings
// document.
type AppSettings struct {
	Version             int              `json:"version"`
	CreatorID           string           `json:"creator_id"`
	SourceID            string           `json:"source_id"`
	LibraryName         string           `json:"library_name"`
	LibraryTemplate     string           `json:"library_template"`
	RenameOnSaveDefault bool             `json:"rename_on_save_default"`
	CustomFields        []CustomFieldDef `json:"custom_fields"`
}

func defaultSettings() AppSettings {
	return AppSettings{
		Version:         currentVersion,
		LibraryTemplate: "{source_id} {library_name}",
	}
}

// Store is the loaded settings document plus any unknown top-level JSON
// keys, kept so they survive a read/write cycle unmodified.
type Store struct {
	mu   sync.RWMutex
	path string
	data AppSettings
	raw  map[string]json.RawMessage
}

// Load reads the settings document at path, or returns a Store seeded
// with defaults if the file does not yet exist. A malformed existing file
// is a fatal startup error, per the propagation policy for settings
// parse failures.
func Load(path string) (*Store, error) {
	s := &Store{path: path, data: defaultSettings(), raw: map[string]json.RawMessage{}}

	bytes, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, core.Wrap(core.ValidationError, "read settings file", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(bytes, &raw); err != nil {
		return nil, core.Wrap(core.ValidationError, "parse settings JSON", err)
	}

	known := knownFieldNames()
	unknown := make(map[string]json.RawMessage)
	for k, v := range raw {
		if !known[k] {
			unknown[k] = v
		}
	}

	var data AppSettings
	if err := json.Unmarshal(bytes, &data); err != nil {
		return nil, core.Wrap(core.ValidationError, "decode settings fields", err)
	}
	if data.Version == 0 {
		data.Version = currentVersion
	}

	s.data = data
	s.raw = unknown
	return s, nil
}

func knownFieldNames() map[string]bool {
	return map[string]bool{
		"version": true, "creator_id": true, "source_id": true,
		"library_name": true, "library_template": true,
		"rename_on_save_default": true, "custom_fields": true,
	}
}

// Get returns a copy of the current settings.
func (s *Store) Get() AppSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

// Update applies fn to a copy of the current settings and persists the
// result atomically. Settings mutate only through this explicit path.
func (s *Store) Update(fn func(*AppSettings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := s.data
	fn(&updated)

	if err := ValidateCustomFieldTags(updated.CustomFields); err != nil {
		return err
	}

	if err := s.writeAtomic(updated); err != nil {
		return err
	}
	s.data = updated
	return nil
}

func (s *Store) writeAtomic(data AppSettings) error {
	merged := make(map[string]json.RawMessage, len(s.raw)+8)
	for k, v := range s.raw {
		merged[k] = v
	}

	encoded, err := json.Marshal(data)
	if err != nil {
		return core.Wrap(core.ValidationError, "encode settings", err)
	}
	var knownFields map[string]json.RawMessage
	if err := json.Unmarshal(encoded, &knownFields); err != nil {
		return core.Wrap(core.ValidationError, "re-decode settings", err)
	}
	for k, v := range knownFields {
		merged[k] = v
	}

	payload, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return core.Wrap(core.ValidationError, "marshal settings document", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return core.Wrap(core.WriteFailed, "create settings directory", err)
	}

	tmp, err := os.CreateTemp(dir, ".nomen-settings-*.json.tmp")
	if err != nil {
		return core.Wrap(core.WriteFailed, "create temp settings file", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return core.Wrap(core.WriteFailed, "write temp settings file", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return core.Wrap(core.WriteFailed, "fsync temp settings file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return core.Wrap(core.WriteFailed, "close temp settings file", err)
	}

	if err := util.RetryableRename(tmpPath, s.path, util.DefaultRetryConfig()); err != nil {
		os.Remove(tmpPath)
		return core.Wrap(core.WriteFailed, "rename settings file into place", err)
	}
	return nil
}

var customTagPattern = regexp.MustCompile(`^[A-Z0-9_]{1,32}$`)

// builtinUserTagNames is an independent copy of wav.BuiltinUserTags;
// settings does not import the wav package for it.
var builtinUserTagNames = map[string]bool{
	"CATEGORY": true, "SUBCATEGORY": true, "CATID": true, "CATEGORYFULL": true,
	"FXNAME": true, "DESCRIPTION": true, "KEYWORDS": true, "NOTES": true,
	"DESIGNER": true, "LIBRARY": true, "USERCATEGORY": true, "MICROPHONE": true,
	"MICPERSPECTIVE": true, "RECMEDIUM": true, "RELEASEDATE": true, "RATING": true,
	"MANUFACTURER": true, "RECTYPE": true, "CREATORID": true, "SOURCEID": true,
	"EMBEDDER": true,
}

// ValidateCustomFieldTags checks the [A-Z0-9_]{1,32} tag format and
// disjointness from the built-in USER tag names (§3 invariant 5),
// reused by both the settings update path and FileRecord custom_fields
// validation.
func ValidateCustomFieldTags(fields []CustomFieldDef) error {
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		tag := strings.TrimSpace(f.Tag)
		if !customTagPattern.MatchString(tag) {
			return core.New(core.ValidationError, "invalid custom field tag: "+f.Tag)
		}
		if builtinUserTagNames[tag] {
			return core.New(core.ValidationError, "custom field tag collides with built-in tag: "+tag)
		}
		if seen[tag] {
			return core.New(core.ValidationError, "duplicate custom field tag: "+tag)
		}
		seen[tag] = true
	}
	return nil
}
