package store

import (
	"database/sql"
	"encoding/json"

	"github.com/nomenaudio/core/internal/core"
)

// fileColumns lists every column of the files table in the exact order
// scanFileRow expects them.
const fileColumns = `
	id, path, directory, filename, status, file_hash,
	sample_rate, bit_depth, channels, frame_count, duration_secs, format_code, byte_size,
	category, subcategory, cat_id, category_full, user_category, fx_name, description,
	keywords, notes, designer, library, project, microphone, mic_perspective, rec_medium,
	release_date, rating, is_designed, manufacturer, rec_type, creator_id, source_id,
	custom_fields_json, changed_fields_json, bext_snapshot_json, info_snapshot_json,
	suggested_filename, rename_on_save, flagged, first_seen_at, last_update_at
`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanFileRow(row rowScanner) (*FileRecord, error) {
	var rec FileRecord
	var (
		sampleRate, bitDepth, channels, frameCount, formatCode sql.NullInt64
		durationSecs                                           sql.NullFloat64
		byteSize                                                sql.NullInt64
		category, subcategory, catID, categoryFull, userCategory sql.NullString
		fxName, description, keywords, notes, designer, library  sql.NullString
		project, microphone, micPerspective, recMedium            sql.NullString
		releaseDate, rating, isDesigned, manufacturer, recType    sql.NullString
		creatorID, sourceID, suggestedFilename                    sql.NullString
		customFieldsJSON, changedFieldsJSON                       string
		bextJSON, infoJSON                                        string
		renameOnSave, flagged                                     int
	)

	err := row.Scan(
		&rec.ID, &rec.Path, &rec.Directory, &rec.Filename, &rec.Status, &rec.FileHash,
		&sampleRate, &bitDepth, &channels, &frameCount, &durationSecs, &formatCode, &byteSize,
		&category, &subcategory, &catID, &categoryFull, &userCategory, &fxName, &description,
		&keywords, &notes, &designer, &library, &project, &microphone, &micPerspective, &recMedium,
		&releaseDate, &rating, &isDesigned, &manufacturer, &recType, &creatorID, &sourceID,
		&customFieldsJSON, &changedFieldsJSON, &bextJSON, &infoJSON,
		&suggestedFilename, &renameOnSave, &flagged, &rec.FirstSeenAt, &rec.LastUpdate,
	)
	if err != nil {
		return nil, err
	}

	rec.Technical = Technical{
		SampleRate: uint32(sampleRate.Int64), BitDepth: uint16(bitDepth.Int64),
		Channels: uint16(channels.Int64), FrameCount: uint64(frameCount.Int64),
		DurationSecs: durationSecs.Float64, FormatCode: uint16(formatCode.Int64),
		ByteSize: byteSize.Int64,
	}

	rec.Category, rec.Subcategory, rec.CatID = category.String, subcategory.String, catID.String
	rec.CategoryFull, rec.UserCategory, rec.FXName = categoryFull.String, userCategory.String, fxName.String
	rec.Description, rec.Keywords, rec.Notes = description.String, keywords.String, notes.String
	rec.Designer, rec.Library, rec.Project = designer.String, library.String, project.String
	rec.Microphone, rec.MicPerspective, rec.RecMedium = microphone.String, micPerspective.String, recMedium.String
	rec.ReleaseDate, rec.Rating, rec.IsDesigned = releaseDate.String, rating.String, isDesigned.String
	rec.Manufacturer, rec.RecType = manufacturer.String, recType.String
	rec.CreatorID, rec.SourceID = creatorID.String, sourceID.String
	rec.SuggestedFilename = suggestedFilename.String
	rec.RenameOnSave = renameOnSave != 0
	rec.Flagged = flagged != 0

	if err := json.Unmarshal([]byte(customFieldsJSON), &rec.CustomFields); err != nil {
		return nil, core.Wrap(core.ValidationError, "decode custom_fields", err)
	}
	var changedList []string
	if err := json.Unmarshal([]byte(changedFieldsJSON), &changedList); err != nil {
		return nil, core.Wrap(core.ValidationError, "decode changed_fields", err)
	}
	rec.ChangedFields = make(map[string]bool, len(changedList))
	for _, f := range changedList {
		rec.ChangedFields[f] = true
	}
	if err := json.Unmarshal([]byte(bextJSON), &rec.BEXT); err != nil {
		return nil, core.Wrap(core.ValidationError, "decode bext snapshot", err)
	}
	if err := json.Unmarshal([]byte(infoJSON), &rec.Info); err != nil {
		return nil, core.Wrap(core.ValidationError, "decode info snapshot", err)
	}

	return &rec, nil
}

// upsert writes rec to the files table, inserting or replacing by id.
func (r *Repository) upsert(rec *FileRecord) error {
	customFieldsJSON, err := json.Marshal(rec.CustomFields)
	if err != nil {
		return core.Wrap(core.ValidationError, "encode custom_fields", err)
	}
	changedList := make([]string, 0, len(rec.ChangedFields))
	for f := range rec.ChangedFields {
		changedList = append(changedList, f)
	}
	changedFieldsJSON, err := json.Marshal(changedList)
	if err != nil {
		return core.Wrap(core.ValidationError, "encode changed_fields", err)
	}
	bextJSON, err := json.Marshal(rec.BEXT)
	if err != nil {
		return core.Wrap(core.ValidationError, "encode bext snapshot", err)
	}
	infoJSON, err := json.Marshal(rec.Info)
	if err != nil {
		return core.Wrap(core.ValidationError, "encode info snapshot", err)
	}

	_, err = r.store.db.Exec(`
		INSERT INTO files (
			id, path, directory, filename, status, file_hash,
			sample_rate, bit_depth, channels, frame_count, duration_secs, format_code, byte_size,
			category, subcategory, cat_id, category_full, user_category, fx_name, description,
			keywords, notes, designer, library, project, microphone, mic_perspective, rec_medium,
			release_date, rating, is_designed, manufacturer, rec_type, creator_id, source_id,
			custom_fields_json, changed_fields_json, bext_snapshot_json, info_snapshot_json,
			suggested_filename, rename_on_save, flagged, last_update_at
		) VALUES (
			?, ?, ?, ?, ?, ?,
			?, ?, ?, ?, ?, ?, ?,
			?, ?, ?, ?, ?, ?, ?,
			?, ?, ?, ?, ?, ?, ?, ?,
			?, ?, ?, ?, ?, ?, ?,
			?, ?, ?, ?,
			?, ?, ?, CURRENT_TIMESTAMP
		)
		ON CONFLICT(id) DO UPDATE SET
			path=excluded.path, directory=excluded.directory, filename=excluded.filename,
			status=excluded.status, file_hash=excluded.file_hash,
			sample_rate=excluded.sample_rate, bit_depth=excluded.bit_depth, channels=excluded.channels,
			frame_count=excluded.frame_count, duration_secs=excluded.duration_secs,
			format_code=excluded.format_code, byte_size=excluded.byte_size,
			category=excluded.category, subcategory=excluded.subcategory, cat_id=excluded.cat_id,
			category_full=excluded.category_full, user_category=excluded.user_category,
			fx_name=excluded.fx_name, description=excluded.description, keywords=excluded.keywords,
			notes=excluded.notes, designer=excluded.designer, library=excluded.library,
			project=excluded.project, microphone=excluded.microphone, mic_perspective=excluded.mic_perspective,
			rec_medium=excluded.rec_medium, release_date=excluded.release_date, rating=excluded.rating,
			is_designed=excluded.is_designed, manufacturer=excluded.manufacturer, rec_type=excluded.rec_type,
			creator_id=excluded.creator_id, source_id=excluded.source_id,
			custom_fields_json=excluded.custom_fields_json, changed_fields_json=excluded.changed_fields_json,
			bext_snapshot_json=excluded.bext_snapshot_json, info_snapshot_json=excluded.info_snapshot_json,
			suggested_filename=excluded.suggested_filename, rename_on_save=excluded.rename_on_save,
			flagged=excluded.flagged, last_update_at=CURRENT_TIMESTAMP
	`,
		rec.ID, rec.Path, rec.Directory, rec.Filename, string(rec.Status), rec.FileHash,
		rec.Technical.SampleRate, rec.Technical.BitDepth, rec.Technical.Channels,
		rec.Technical.FrameCount, rec.Technical.DurationSecs, rec.Technical.FormatCode, rec.Technical.ByteSize,
		rec.Category, rec.Subcategory, rec.CatID, rec.CategoryFull, rec.UserCategory, rec.FXName, rec.Description,
		rec.Keywords, rec.Notes, rec.Designer, rec.Library, rec.Project, rec.Microphone, rec.MicPerspective, rec.RecMedium,
		rec.ReleaseDate, rec.Rating, rec.IsDesigned, rec.Manufacturer, rec.RecType, rec.CreatorID, rec.SourceID,
		string(customFieldsJSON), string(changedFieldsJSON), string(bextJSON), string(infoJSON),
		rec.SuggestedFilename, boolToInt(rec.RenameOnSave), boolToInt(rec.Flagged),
	)
	if err != nil {
		return core.Wrap(core.WriteFailed, "upsert file record", err)
	}
	return nil
}
