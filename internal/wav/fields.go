package wav

// Field names match the FileRecord metadata field names in the data model.
// These four maps are the Go expression of the field mapping table: any
// implementation must round-trip them exactly.
var (
	// UserTagOf maps a FileRecord field to its iXML <USER> tag (ALL CAPS).
	UserTagOf = map[string]string{
		"category":        "CATEGORY",
		"subcategory":     "SUBCATEGORY",
		"cat_id":          "CATID",
		"category_full":   "CATEGORYFULL",
		"fx_name":         "FXNAME",
		"description":     "DESCRIPTION",
		"keywords":        "KEYWORDS",
		"notes":           "NOTES",
		"designer":        "DESIGNER",
		"library":         "LIBRARY",
		"user_category":   "USERCATEGORY",
		"microphone":      "MICROPHONE",
		"mic_perspective": "MICPERSPECTIVE",
		"rec_medium":      "RECMEDIUM",
		"release_date":    "RELEASEDATE",
		"rating":          "RATING",
		"manufacturer":    "MANUFACTURER",
		"rec_type":        "RECTYPE",
		"creator_id":      "CREATORID",
		"source_id":       "SOURCEID",
	}

	// ASWGTagOf maps a FileRecord field to its iXML <ASWG> tag (camelCase).
	// Fields with no ASWG counterpart are absent from this map.
	ASWGTagOf = map[string]string{
		"category":        "category",
		"subcategory":     "subCategory",
		"cat_id":          "catId",
		"fx_name":         "fxName",
		"notes":           "notes",
		"designer":        "originator",
		"library":         "library",
		"user_category":   "userCategory",
		"microphone":      "micType",
		"manufacturer":    "manufacturer",
		"rec_type":        "recType",
		"creator_id":      "creatorId",
		"source_id":       "sourceId",
		"is_designed":     "isDesigned",
		"project":         "project",
	}

	// BextFallback maps a FileRecord field to the BEXT field it falls back
	// to/from. Only description and designer participate.
	BextFallback = map[string]string{
		"description": "Description",
		"designer":    "Originator",
	}

	// InfoFallback maps a FileRecord field to the LIST-INFO sub-chunk id it
	// falls back to/from.
	InfoFallback = map[string]string{
		"category": "IGNR",
		"fx_name":  "INAM",
		"keywords": "IKEY",
		"notes":    "ICMT",
		"designer": "IART",
		"library":  "IPRD",
	}

	// EmbedderUserTag and EmbedderValue are the literal USER tag the writer
	// always stamps.
	EmbedderUserTag = "EMBEDDER"
	EmbedderValue   = "NomenAudio"

	// ContentTypeASWGTag and ContentTypeValue are the literal ASWG tag the
	// writer always stamps.
	ContentTypeASWGTag = "contentType"
	ContentTypeValue   = "sfx"
)

// BuiltinUserTags is the closed set of USER tags the core understands by
// name. Any other <USER> child collected on read becomes a custom field.
var BuiltinUserTags = func() map[string]bool {
	out := make(map[string]bool, len(UserTagOf)+1)
	for _, tag := range UserTagOf {
		out[tag] = true
	}
	out[EmbedderUserTag] = true
	return out
}()
