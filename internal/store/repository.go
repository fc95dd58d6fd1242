// Package store owns the embedded relational store and the File Repository
// operations layered over it: import, list, get, update, save, revert,
// apply-metadata, and the analysis cache. It is the sole writer of its
// SQLite database and serializes mutations per record id.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/nomenaudio/core/internal/core"
	"github.com/nomenaudio/core/internal/ucs"
	"github.com/nomenaudio/core/internal/ucsname"
	"github.com/nomenaudio/core/internal/wav"
)

// importConcurrency bounds the worker pool Import uses to hash and read
// files; writes are serialized by the store's single-connection pool
// regardless, so this only parallelizes the blocking file I/O.
const importConcurrency = 4

// Taxonomy is the subset of the UCS Engine UpdateMetadata validates a
// written cat_id against (invariant 2: "must exist in the UCS Engine,
// enforced at write"). A nil Taxonomy on the Repository skips validation
// rather than failing closed, matching the CLI's graceful degradation when
// no workbook is configured.
type Taxonomy interface {
	GetCatIDInfo(catID string) (ucs.CatInfo, bool)
}

// Repository is the File Repository component: the embedded store plus the
// per-id write serialization and WAV I/O wiring §4.4 and §5 describe.
type Repository struct {
	store    *Store
	fs       Filesystem
	taxonomy Taxonomy

	idLocksMu sync.Mutex
	idLocks   map[string]*sync.Mutex
}

// NewRepository wraps an opened Store. fs is the injected filesystem
// collaborator (OSFilesystem in production, a fake in tests).
func NewRepository(st *Store, fs Filesystem) *Repository {
	return &Repository{store: st, fs: fs, idLocks: make(map[string]*sync.Mutex)}
}

// SetTaxonomy installs (or, passed nil, clears) the UCS Engine
// UpdateMetadata validates cat_id against.
func (r *Repository) SetTaxonomy(t Taxonomy) {
	r.taxonomy = t
}

func (r *Repository) lockFor(id string) *sync.Mutex {
	r.idLocksMu.Lock()
	defer r.idLocksMu.Unlock()
	l, ok := r.idLocks[id]
	if !ok {
		l = &sync.Mutex{}
		r.idLocks[id] = l
	}
	return l
}

// ImportResult is what import(directory, recursive) returns.
type ImportResult struct {
	Imported []*FileRecord
	Skipped  []SkippedPath
	Removed  []string // paths whose backing record was dropped (file gone)
}

// SkippedPath names one file import couldn't ingest and why.
type SkippedPath struct {
	Path   string
	Reason string
}

// ImportProgress is a set of live counters a caller can poll (typically from
// a ticker) to drive a progress display while ImportWithProgress runs.
type ImportProgress struct {
	Found     atomic.Int64
	Processed atomic.Int64
	Imported  atomic.Int64
	Skipped   atomic.Int64
}

// Import walks directory (recursively if requested) for *.wav files. For
// each, it computes the cheap stable hash; if an existing record at that
// path already carries that hash, the record is returned unchanged,
// otherwise the file is (re-)read via the WAV chunk I/O layer and upserted.
// Records whose backing file no longer exists under directory are removed.
func (r *Repository) Import(ctx context.Context, directory string, recursive bool) (*ImportResult, error) {
	return r.ImportWithProgress(ctx, directory, recursive, nil)
}

// ImportWithProgress is Import with an optional live counter for progress
// reporting. File hashing and WAV metadata reads run across a bounded
// worker pool; the record upsert itself is serialized by the store's single
// write connection, so only the blocking I/O is parallelized. The walk
// checks ctx between files, never mid-write.
func (r *Repository) ImportWithProgress(ctx context.Context, directory string, recursive bool, progress *ImportProgress) (*ImportResult, error) {
	paths, err := globWAV(directory, recursive)
	if err != nil {
		return nil, core.Wrap(core.FileNotFound, "scan import directory", err)
	}
	if progress != nil {
		progress.Found.Store(int64(len(paths)))
	}

	type outcome struct {
		path    string
		rec     *FileRecord
		changed bool
		err     error
	}

	jobs := make(chan string)
	outcomes := make(chan outcome)

	var wg sync.WaitGroup
	for i := 0; i < importConcurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				rec, changed, err := r.importOne(path)
				outcomes <- outcome{path: path, rec: rec, changed: changed, err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, path := range paths {
			select {
			case <-ctx.Done():
				return
			case jobs <- path:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	result := &ImportResult{}
	seen := make(map[string]bool, len(paths))
	for o := range outcomes {
		seen[o.path] = true
		if progress != nil {
			progress.Processed.Add(1)
		}
		if o.err != nil {
			result.Skipped = append(result.Skipped, SkippedPath{Path: o.path, Reason: o.err.Error()})
			if progress != nil {
				progress.Skipped.Add(1)
			}
			continue
		}
		if o.changed {
			result.Imported = append(result.Imported, o.rec)
			if progress != nil {
				progress.Imported.Add(1)
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	removed, err := r.pruneMissing(directory, seen)
	if err != nil {
		return result, err
	}
	result.Removed = removed

	return result, nil
}

func (r *Repository) importOne(path string) (*FileRecord, bool, error) {
	hash, err := FileHash(r.fs, path)
	if err != nil {
		return nil, false, err
	}

	existing, err := r.getByPath(path)
	if err != nil {
		return nil, false, err
	}
	if existing != nil && existing.FileHash == hash {
		return existing, false, nil
	}

	md, err := wav.ReadMetadata(r.fs, path)
	if err != nil {
		return nil, false, err
	}

	rec := &FileRecord{
		ID:        uuid.NewString(),
		Path:      path,
		Directory: filepath.Dir(path),
		Filename:  filepath.Base(path),
		Status:    StatusUnmodified,
		FileHash:  hash,
		Technical: Technical{
			SampleRate: md.Technical.SampleRate, BitDepth: md.Technical.BitDepth,
			Channels: md.Technical.Channels, FrameCount: md.Technical.FrameCount,
			DurationSecs: md.Technical.DurationSecs, FormatCode: md.Technical.FormatCode,
			ByteSize: md.Technical.ByteSize,
		},
		CustomFields:  md.CustomFields,
		ChangedFields: map[string]bool{},
		BEXT:          bextSnapshotFrom(md),
		Info:          infoSnapshotFrom(md.Info),
	}
	if existing != nil {
		rec.ID = existing.ID
		rec.FirstSeenAt = existing.FirstSeenAt
		rec.Flagged = existing.Flagged
	}
	for _, name := range fieldNames {
		rec.SetFieldQuiet(name, md.Fields[name])
	}
	rec.ChangedFields = map[string]bool{}
	rec.Status = StatusUnmodified

	if err := r.upsert(rec); err != nil {
		return nil, false, err
	}
	return rec, true, nil
}

// SetFieldQuiet sets a field without marking it changed or flipping status,
// used when populating a freshly-read record from disk.
func (r *FileRecord) SetFieldQuiet(name, value string) {
	changed := r.ChangedFields
	status := r.Status
	r.SetField(name, value)
	r.ChangedFields = changed
	r.Status = status
}

func bextSnapshotFrom(md *wav.Metadata) BEXTSnapshot {
	if md.BEXT == nil {
		return BEXTSnapshot{}
	}
	return BEXTSnapshot{Description: md.BEXT.Description, Originator: md.BEXT.Originator}
}

func infoSnapshotFrom(entries []wav.InfoEntry) []InfoSnapshot {
	out := make([]InfoSnapshot, 0, len(entries))
	for _, e := range entries {
		out = append(out, InfoSnapshot{ID: e.ID, Value: e.Value})
	}
	return out
}

func (r *Repository) pruneMissing(directory string, seen map[string]bool) ([]string, error) {
	rows, err := r.store.db.Query(`SELECT id, path FROM files WHERE directory = ? OR directory LIKE ?`,
		directory, directory+string(filepath.Separator)+"%")
	if err != nil {
		return nil, core.Wrap(core.FileNotFound, "query files for prune", err)
	}
	defer rows.Close()

	type idPath struct{ id, path string }
	var candidates []idPath
	for rows.Next() {
		var ip idPath
		if err := rows.Scan(&ip.id, &ip.path); err != nil {
			return nil, core.Wrap(core.FileNotFound, "scan file for prune", err)
		}
		candidates = append(candidates, ip)
	}

	var removed []string
	for _, c := range candidates {
		if seen[c.path] {
			continue
		}
		if _, statErr := r.fs.Stat(c.path); statErr == nil {
			continue
		}
		if _, err := r.store.db.Exec(`DELETE FROM files WHERE id = ?`, c.id); err != nil {
			return removed, core.Wrap(core.FileNotFound, "remove missing file record", err)
		}
		removed = append(removed, c.path)
	}
	return removed, nil
}

// ListFilters narrows list() results; zero-value fields are unfiltered.
type ListFilters struct {
	Status   Status
	Category string
	Text     string // case-insensitive match against filename/fx_name/description/keywords/category/subcategory
}

// List returns records matching filters, ordered by path.
func (r *Repository) List(filters ListFilters) ([]*FileRecord, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE 1=1`
	var args []any
	if filters.Status != "" {
		query += " AND status = ?"
		args = append(args, string(filters.Status))
	}
	if filters.Category != "" {
		query += " AND category = ?"
		args = append(args, filters.Category)
	}
	if filters.Text != "" {
		query += ` AND (
			LOWER(filename) LIKE ? OR LOWER(COALESCE(fx_name,'')) LIKE ? OR
			LOWER(COALESCE(description,'')) LIKE ? OR LOWER(COALESCE(keywords,'')) LIKE ? OR
			LOWER(COALESCE(category,'')) LIKE ? OR LOWER(COALESCE(subcategory,'')) LIKE ?
		)`
		needle := "%" + strings.ToLower(filters.Text) + "%"
		for i := 0; i < 6; i++ {
			args = append(args, needle)
		}
	}
	query += " ORDER BY path"

	rows, err := r.store.db.Query(query, args...)
	if err != nil {
		return nil, core.Wrap(core.FileNotFound, "list files", err)
	}
	defer rows.Close()

	var out []*FileRecord
	for rows.Next() {
		rec, err := scanFileRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Get retrieves one record by id.
func (r *Repository) Get(id string) (*FileRecord, error) {
	row := r.store.db.QueryRow(`SELECT `+fileColumns+` FROM files WHERE id = ?`, id)
	rec, err := scanFileRow(row)
	if err == sql.ErrNoRows {
		return nil, core.New(core.FileNotFound, "no file record with id "+id)
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *Repository) getByPath(path string) (*FileRecord, error) {
	row := r.store.db.QueryRow(`SELECT `+fileColumns+` FROM files WHERE path = ?`, path)
	rec, err := scanFileRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// filenameFields are the fields that, when touched, require SuggestedFilename
// to be regenerated (it's derived from exactly these).
var filenameFields = map[string]bool{
	"cat_id": true, "fx_name": true, "creator_id": true,
	"source_id": true, "user_category": true,
}

// UpdateMetadata applies partial field edits to record id, marking each
// changed field and flipping status to modified (invariant 3 of §3). A
// cat_id that doesn't resolve in the UCS Engine is rejected (invariant 2)
// when a Taxonomy is configured. If the record was flagged for review, the
// edit's resulting category is re-checked against the review-flag rule and
// the flag is cleared if it no longer applies. SuggestedFilename is
// regenerated whenever a filename-constituent field changes.
func (r *Repository) UpdateMetadata(id string, partial map[string]string) error {
	lock := r.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	if catID, ok := partial["cat_id"]; ok && catID != "" && r.taxonomy != nil {
		if _, found := r.taxonomy.GetCatIDInfo(catID); !found {
			return core.New(core.ValidationError, "cat_id does not resolve in the UCS Engine: "+catID)
		}
	}

	rec, err := r.Get(id)
	if err != nil {
		return err
	}
	for name, value := range partial {
		rec.SetField(name, value)
	}
	if rec.Category != "" && rec.Subcategory != "" {
		rec.CategoryFull = rec.Category + "-" + rec.Subcategory
	}

	if rec.Flagged {
		if analysis, _ := r.GetAnalysis(rec.FileHash); analysis != nil && !shouldFlag(analysis.Hits, rec.Category) {
			rec.Flagged = false
		}
	}

	for name := range partial {
		if filenameFields[name] {
			regenerateSuggestedFilename(rec)
			break
		}
	}

	return r.upsert(rec)
}

// regenerateSuggestedFilename recomputes SuggestedFilename directly from
// the record's own cat_id/fx_name/creator_id/source_id/user_category —
// unlike internal/suggest's classifier-driven recompute, this doesn't touch
// settings defaults or cached analysis, matching a plain user-supplied edit.
func regenerateSuggestedFilename(rec *FileRecord) {
	if rec.CatID == "" {
		return
	}
	rec.SuggestedFilename = ucsname.Generate(ucsname.GenerateFields{
		CatID:        rec.CatID,
		UserCategory: rec.UserCategory,
		FXName:       rec.FXName,
		CreatorID:    rec.CreatorID,
		SourceID:     rec.SourceID,
	}, ucsname.Defaults{})
}

// Remove deletes FileRecords by id; the backing WAV files are untouched.
func (r *Repository) Remove(ids []string) error {
	tx, err := r.store.db.Begin()
	if err != nil {
		return core.Wrap(core.FileNotFound, "begin remove transaction", err)
	}
	defer tx.Rollback()
	for _, id := range ids {
		if _, err := tx.Exec(`DELETE FROM files WHERE id = ?`, id); err != nil {
			return core.Wrap(core.FileNotFound, "remove file record "+id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return core.Wrap(core.FileNotFound, "commit remove transaction", err)
	}
	return nil
}

// Flag and Unflag set the review marker independently of the dirty status;
// a flagged file may also be modified.
func (r *Repository) Flag(ids []string) error   { return r.setFlag(ids, true) }
func (r *Repository) Unflag(ids []string) error { return r.setFlag(ids, false) }

func (r *Repository) setFlag(ids []string, flagged bool) error {
	tx, err := r.store.db.Begin()
	if err != nil {
		return core.Wrap(core.FileNotFound, "begin flag transaction", err)
	}
	defer tx.Rollback()
	for _, id := range ids {
		if _, err := tx.Exec(`UPDATE files SET flagged = ? WHERE id = ?`, boolToInt(flagged), id); err != nil {
			return core.Wrap(core.FileNotFound, "set flag on "+id, err)
		}
	}
	return tx.Commit()
}

// Save writes record id's pending edits to its backing WAV atomically via
// the chunk I/O layer, optionally renaming the file to renameTo, then
// rehashes the written file and updates the record's path, hash and
// status. The copy argument is not used: the original file is always
// rewritten in place (and renamed when renameTo is set); no sibling copy
// is made.
func (r *Repository) Save(ctx context.Context, id, renameTo string, copy bool) (*FileRecord, error) {
	lock := r.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	rec, err := r.Get(id)
	if err != nil {
		return nil, err
	}

	freshHash, err := FileHash(r.fs, rec.Path)
	if err != nil {
		return nil, err
	}
	if freshHash != rec.FileHash {
		return nil, core.New(core.FileChanged, "file changed on disk since it was read: "+rec.Path)
	}

	patch := wav.Patch{Fields: map[string]string{}, CustomFields: rec.CustomFields}
	for _, name := range fieldNames {
		if v := rec.Field(name); v != "" {
			patch.Fields[name] = v
		}
	}

	finalPath, err := wav.Rewrite(r.fs, rec.Path, renameTo, patch)
	if err != nil {
		return nil, err
	}

	newHash, err := FileHash(r.fs, finalPath)
	if err != nil {
		return nil, err
	}

	rec.Path = finalPath
	rec.Directory = filepath.Dir(finalPath)
	rec.Filename = filepath.Base(finalPath)
	rec.FileHash = newHash
	rec.ChangedFields = map[string]bool{}
	rec.Status = StatusSaved
	rec.LastUpdate = time.Now()

	if err := r.upsert(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// BatchResult is save_batch's per-item outcome: each id either succeeds
// independently or lands in Failures, never stopping the batch early.
type BatchResult struct {
	Saved    []*FileRecord
	Failures map[string]string
}

// SaveBatch saves each id in sequence; a failure on one id is recorded and
// does not prevent the remaining ids from being attempted.
func (r *Repository) SaveBatch(ctx context.Context, ids []string, rename bool) (*BatchResult, error) {
	result := &BatchResult{Failures: map[string]string{}}
	for _, id := range ids {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		renameTo := ""
		if rename {
			rec, err := r.Get(id)
			if err != nil {
				result.Failures[id] = err.Error()
				continue
			}
			renameTo = rec.SuggestedFilename
		}

		saved, err := r.Save(ctx, id, renameTo, false)
		if err != nil {
			result.Failures[id] = err.Error()
			continue
		}
		result.Saved = append(result.Saved, saved)
	}
	return result, nil
}

// Revert re-reads record id from disk, discarding any pending edits and
// clearing changed_fields/status back to unmodified.
func (r *Repository) Revert(id string) (*FileRecord, error) {
	lock := r.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	rec, err := r.Get(id)
	if err != nil {
		return nil, err
	}

	hash, err := FileHash(r.fs, rec.Path)
	if err != nil {
		return nil, err
	}
	md, err := wav.ReadMetadata(r.fs, rec.Path)
	if err != nil {
		return nil, err
	}

	rec.FileHash = hash
	rec.CustomFields = md.CustomFields
	rec.BEXT = bextSnapshotFrom(md)
	rec.Info = infoSnapshotFrom(md.Info)
	for _, name := range fieldNames {
		rec.SetFieldQuiet(name, md.Fields[name])
	}
	rec.ChangedFields = map[string]bool{}
	rec.Status = StatusUnmodified

	if err := r.upsert(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// ApplyMetadata copies the named fields from sourceID onto every record in
// targetIDs, marking each target modified.
func (r *Repository) ApplyMetadata(sourceID string, targetIDs []string, fields []string) error {
	source, err := r.Get(sourceID)
	if err != nil {
		return err
	}
	partial := make(map[string]string, len(fields))
	for _, f := range fields {
		partial[f] = source.Field(f)
	}
	for _, targetID := range targetIDs {
		if err := r.UpdateMetadata(targetID, partial); err != nil {
			return err
		}
	}
	return nil
}

// Reset wipes both tables: files and analysis_cache.
func (r *Repository) Reset() error {
	tx, err := r.store.db.Begin()
	if err != nil {
		return core.Wrap(core.FileNotFound, "begin reset transaction", err)
	}
	defer tx.Rollback()
	if _, err := tx.Exec(`DELETE FROM files`); err != nil {
		return core.Wrap(core.FileNotFound, "reset files table", err)
	}
	if _, err := tx.Exec(`DELETE FROM analysis_cache`); err != nil {
		return core.Wrap(core.FileNotFound, "reset analysis_cache table", err)
	}
	return tx.Commit()
}

// --- AnalysisRecord cache ---

// SaveAnalysis upserts the classifier output for a content hash.
func (r *Repository) SaveAnalysis(rec AnalysisRecord) error {
	hitsJSON, err := json.Marshal(rec.Hits)
	if err != nil {
		return core.Wrap(core.AnalysisFailed, "encode analysis hits", err)
	}
	_, err = r.store.db.Exec(`
		INSERT INTO analysis_cache (file_hash, hits_json, caption, model_version, analyzed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(file_hash) DO UPDATE SET
			hits_json = excluded.hits_json, caption = excluded.caption,
			model_version = excluded.model_version, analyzed_at = excluded.analyzed_at
	`, rec.FileHash, string(hitsJSON), rec.Caption, rec.ModelVersion, time.Now())
	if err != nil {
		return core.Wrap(core.AnalysisFailed, "upsert analysis cache", err)
	}
	return nil
}

// GetAnalysis retrieves the cached analysis for a content hash, or nil if
// none is cached.
func (r *Repository) GetAnalysis(fileHash string) (*AnalysisRecord, error) {
	var rec AnalysisRecord
	var hitsJSON string
	var caption, modelVersion sql.NullString
	err := r.store.db.QueryRow(`
		SELECT file_hash, hits_json, caption, model_version, analyzed_at
		FROM analysis_cache WHERE file_hash = ?
	`, fileHash).Scan(&rec.FileHash, &hitsJSON, &caption, &modelVersion, &rec.AnalyzedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, core.Wrap(core.AnalysisFailed, "query analysis cache", err)
	}
	if err := json.Unmarshal([]byte(hitsJSON), &rec.Hits); err != nil {
		return nil, core.Wrap(core.AnalysisFailed, "decode analysis hits", err)
	}
	rec.Caption = caption.String
	rec.ModelVersion = modelVersion.String
	return &rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func globWAV(directory string, recursive bool) ([]string, error) {
	if recursive {
		return globRecursive(directory)
	}
	matches, err := filepath.Glob(filepath.Join(directory, "*.wav"))
	if err != nil {
		return nil, err
	}
	matchesUpper, err := filepath.Glob(filepath.Join(directory, "*.WAV"))
	if err != nil {
		return nil, err
	}
	return append(matches, matchesUpper...), nil
}

func globRecursive(directory string) ([]string, error) {
	var out []string
	err := filepath.Walk(directory, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".wav") {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
