package store

import "time"

// Status is one of the FileRecord lifecycle states.
type Status string

const (
	StatusUnmodified Status = "unmodified"
	StatusModified   Status = "modified"
	StatusSaved      Status = "saved"
	StatusFlagged    Status = "flagged"
)

// Technical mirrors wav.Technical: the immutable facts read off a WAV
// file's fmt/data chunks, never user-editable.
type Technical struct {
	SampleRate   uint32
	BitDepth     uint16
	Channels     uint16
	FrameCount   uint64
	DurationSecs float64
	FormatCode   uint16
	ByteSize     int64
}

// BEXTSnapshot is the subset of a read BEXT chunk's fields the repository
// needs to remember, to detect "this field was empty when we read it" at
// write time (§4.3.5's never-overwrite fallback rule).
type BEXTSnapshot struct {
	Description string
	Originator  string
}

// InfoSnapshot mirrors one wav.InfoEntry as read from a LIST-INFO chunk.
type InfoSnapshot struct {
	ID    string
	Value string
}

// FileRecord is the canonical per-file entity: identity, immutable
// technical facts, the mutable metadata working set, and bookkeeping for
// change detection and save/revert.
type FileRecord struct {
	ID       string
	Path     string
	Directory string
	Filename string
	Status   Status
	FileHash string

	Technical Technical

	Category      string
	Subcategory   string
	CatID         string
	CategoryFull  string
	UserCategory  string
	FXName        string
	Description   string
	Keywords      string
	Notes         string
	Designer      string
	Library       string
	Project       string
	Microphone    string
	MicPerspective string
	RecMedium     string
	ReleaseDate   string
	Rating        string
	IsDesigned    string
	Manufacturer  string
	RecType       string
	CreatorID     string
	SourceID      string

	CustomFields map[string]string

	ChangedFields map[string]bool

	BEXT BEXTSnapshot
	Info []InfoSnapshot

	SuggestedFilename string
	RenameOnSave      bool

	Flagged bool

	FirstSeenAt time.Time
	LastUpdate  time.Time
}

// fieldNames lists every mutable metadata field by its FileRecord field
// name, matching the field mapping table in the spec's external
// interfaces section exactly — this is the vocabulary update_metadata,
// apply_metadata, and the wav field maps all speak.
var fieldNames = []string{
	"category", "subcategory", "cat_id", "category_full", "user_category",
	"fx_name", "description", "keywords", "notes", "designer", "library",
	"project", "microphone", "mic_perspective", "rec_medium", "release_date",
	"rating", "is_designed", "manufacturer", "rec_type", "creator_id", "source_id",
}

// MutableFieldNames returns every mutable metadata field name, in the
// fixed order update_metadata/apply_metadata/the wav field maps all use.
func MutableFieldNames() []string {
	out := make([]string, len(fieldNames))
	copy(out, fieldNames)
	return out
}

// Field reads one mutable metadata field by name.
func (r *FileRecord) Field(name string) string {
	switch name {
	case "category":
		return r.Category
	case "subcategory":
		return r.Subcategory
	case "cat_id":
		return r.CatID
	case "category_full":
		return r.CategoryFull
	case "user_category":
		return r.UserCategory
	case "fx_name":
		return r.FXName
	case "description":
		return r.Description
	case "keywords":
		return r.Keywords
	case "notes":
		return r.Notes
	case "designer":
		return r.Designer
	case "library":
		return r.Library
	case "project":
		return r.Project
	case "microphone":
		return r.Microphone
	case "mic_perspective":
		return r.MicPerspective
	case "rec_medium":
		return r.RecMedium
	case "release_date":
		return r.ReleaseDate
	case "rating":
		return r.Rating
	case "is_designed":
		return r.IsDesigned
	case "manufacturer":
		return r.Manufacturer
	case "rec_type":
		return r.RecType
	case "creator_id":
		return r.CreatorID
	case "source_id":
		return r.SourceID
	}
	return ""
}

// SetField writes one mutable metadata field by name and marks it changed
// if the value actually differs from what's currently stored.
func (r *FileRecord) SetField(name, value string) {
	if r.Field(name) == value {
		return
	}
	switch name {
	case "category":
		r.Category = value
	case "subcategory":
		r.Subcategory = value
	case "cat_id":
		r.CatID = value
	case "category_full":
		r.CategoryFull = value
	case "user_category":
		r.UserCategory = value
	case "fx_name":
		r.FXName = value
	case "description":
		r.Description = value
	case "keywords":
		r.Keywords = value
	case "notes":
		r.Notes = value
	case "designer":
		r.Designer = value
	case "library":
		r.Library = value
	case "project":
		r.Project = value
	case "microphone":
		r.Microphone = value
	case "mic_perspective":
		r.MicPerspective = value
	case "rec_medium":
		r.RecMedium = value
	case "release_date":
		r.ReleaseDate = value
	case "rating":
		r.Rating = value
	case "is_designed":
		r.IsDesigned = value
	case "manufacturer":
		r.Manufacturer = value
	case "rec_type":
		r.RecType = value
	case "creator_id":
		r.CreatorID = value
	case "source_id":
		r.SourceID = value
	default:
		return
	}
	if r.ChangedFields == nil {
		r.ChangedFields = make(map[string]bool)
	}
	r.ChangedFields[name] = true
	r.Status = StatusModified
}

// AnalysisHit is one classifier hit, re-exported from the classifier
// package's shape so the store package doesn't need to import classifier
// just for this struct.
type AnalysisHit struct {
	CatID      string
	Confidence float64
}

// AnalysisRecord is the cached classifier output for one content hash; it
// survives renames of the backing file and is garbage-collected only on an
// explicit Reset.
type AnalysisRecord struct {
	FileHash     string
	Hits         []AnalysisHit
	Caption      string
	ModelVersion string
	AnalyzedAt   time.Time
}
