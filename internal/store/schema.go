package store

// schemaV1 creates the two tables the repository owns: files, keyed by id
// with a unique index on path, and analysis_cache, keyed by file_hash.
const schemaV1 = `
CREATE TABLE IF NOT EXISTS schema_version (
  version INTEGER PRIMARY KEY,
  applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS files (
  id TEXT PRIMARY KEY,
  path TEXT NOT NULL,
  directory TEXT NOT NULL,
  filename TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'unmodified',
  file_hash TEXT NOT NULL,

  sample_rate INTEGER,
  bit_depth INTEGER,
  channels INTEGER,
  frame_count INTEGER,
  duration_secs REAL,
  format_code INTEGER,
  byte_size INTEGER,

  category TEXT,
  subcategory TEXT,
  cat_id TEXT,
  category_full TEXT,
  user_category TEXT,
  fx_name TEXT,
  description TEXT,
  keywords TEXT,
  notes TEXT,
  designer TEXT,
  library TEXT,
  project TEXT,
  microphone TEXT,
  mic_perspective TEXT,
  rec_medium TEXT,
  release_date TEXT,
  rating TEXT,
  is_designed TEXT,
  manufacturer TEXT,
  rec_type TEXT,
  creator_id TEXT,
  source_id TEXT,

  custom_fields_json TEXT NOT NULL DEFAULT '{}',
  changed_fields_json TEXT NOT NULL DEFAULT '[]',
  bext_snapshot_json TEXT NOT NULL DEFAULT '{}',
  info_snapshot_json TEXT NOT NULL DEFAULT '[]',

  suggested_filename TEXT,
  rename_on_save INTEGER NOT NULL DEFAULT 0,

  flagged INTEGER NOT NULL DEFAULT 0,

  first_seen_at DATETIME DEFAULT CURRENT_TIMESTAMP,
  last_update_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_files_path ON files(path);
CREATE INDEX IF NOT EXISTS idx_files_status ON files(status);
CREATE INDEX IF NOT EXISTS idx_files_file_hash ON files(file_hash);

CREATE TABLE IF NOT EXISTS analysis_cache (
  file_hash TEXT PRIMARY KEY,
  hits_json TEXT NOT NULL DEFAULT '[]',
  caption TEXT,
  model_version TEXT,
  analyzed_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

// schemaV2 adds indexes over the columns list(filters) matches against, so a
// text/category filter doesn't force a full table scan.
const schemaV2 = `
CREATE INDEX IF NOT EXISTS idx_files_category ON files(category);
CREATE INDEX IF NOT EXISTS idx_files_fx_name ON files(fx_name);
CREATE INDEX IF NOT EXISTS idx_files_filename ON files(filename);
`
