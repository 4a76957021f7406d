package store

// Schema for the SQLite backend. Statements are split on semicolons and
// applied in order; every statement is idempotent.
const migrationsSQL = `
CREATE TABLE IF NOT EXISTS entries (
	id TEXT PRIMARY KEY,
	canonical_term TEXT NOT NULL,
	language TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_entries_term_language
	ON entries(canonical_term, language);

CREATE TABLE IF NOT EXISTS definitions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	entry_id TEXT NOT NULL REFERENCES entries(id) ON DELETE CASCADE,
	text TEXT NOT NULL,
	source_doc_id TEXT NOT NULL DEFAULT '',
	is_primary INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL,
	UNIQUE(entry_id, text, source_doc_id)
);

CREATE TABLE IF NOT EXISTS entry_tags (
	entry_id TEXT NOT NULL REFERENCES entries(id) ON DELETE CASCADE,
	tag TEXT NOT NULL,
	UNIQUE(entry_id, tag)
);

CREATE TABLE IF NOT EXISTS edges (
	from_term_id TEXT NOT NULL,
	to_term_id TEXT NOT NULL,
	type TEXT NOT NULL,
	confidence REAL NOT NULL,
	evidence TEXT NOT NULL DEFAULT '',
	UNIQUE(from_term_id, to_term_id, type)
);

CREATE TABLE IF NOT EXISTS inference_runs (
	run_id TEXT PRIMARY KEY,
	checkpoint INTEGER NOT NULL DEFAULT -1,
	started_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS staged_edges (
	run_id TEXT NOT NULL REFERENCES inference_runs(run_id) ON DELETE CASCADE,
	from_term_id TEXT NOT NULL,
	to_term_id TEXT NOT NULL,
	type TEXT NOT NULL,
	confidence REAL NOT NULL,
	evidence TEXT NOT NULL DEFAULT '',
	UNIQUE(run_id, from_term_id, to_term_id, type)
);
`
