package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/lexigraph/lexigraph/internal/model"
)

// SQLite is the durable backend. A unique index on (canonical_term,
// language) serializes concurrent entry creation; the losing writer
// maps the constraint violation to ErrConflict.
type SQLite struct {
	db *sql.DB
}

var (
	_ EntryStore = (*SQLite)(nil)
	_ GraphStore = (*SQLite)(nil)
)

// OpenSQLite opens (creating if needed) a SQLite database and applies
// the schema.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	for _, stmt := range strings.Split(migrationsSQL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}

	return &SQLite{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func isUniqueConstraintErr(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "constraint failed")
}

// Get loads an entry with its definitions and tags.
func (s *SQLite) Get(ctx context.Context, term, language string) (*model.GlossaryEntry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, canonical_term, language, status, created_at, updated_at
		 FROM entries WHERE canonical_term = ? AND language = ?`, term, language)
	return s.scanEntry(ctx, row)
}

func (s *SQLite) getByID(ctx context.Context, entryID string) (*model.GlossaryEntry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, canonical_term, language, status, created_at, updated_at
		 FROM entries WHERE id = ?`, entryID)
	return s.scanEntry(ctx, row)
}

func (s *SQLite) scanEntry(ctx context.Context, row *sql.Row) (*model.GlossaryEntry, error) {
	var e model.GlossaryEntry
	err := row.Scan(&e.ID, &e.CanonicalTerm, &e.Language, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan entry: %w", err)
	}

	defs, err := s.db.QueryContext(ctx,
		`SELECT text, source_doc_id, is_primary, created_at
		 FROM definitions WHERE entry_id = ? ORDER BY id`, e.ID)
	if err != nil {
		return nil, fmt.Errorf("load definitions: %w", err)
	}
	defer func() { _ = defs.Close() }()
	for defs.Next() {
		var d model.Definition
		if err := defs.Scan(&d.Text, &d.SourceDocID, &d.IsPrimary, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan definition: %w", err)
		}
		e.Definitions = append(e.Definitions, d)
	}
	if err := defs.Err(); err != nil {
		return nil, err
	}

	tags, err := s.db.QueryContext(ctx,
		`SELECT tag FROM entry_tags WHERE entry_id = ? ORDER BY tag`, e.ID)
	if err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}
	defer func() { _ = tags.Close() }()
	for tags.Next() {
		var t string
		if err := tags.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		e.DomainTags = append(e.DomainTags, t)
	}
	if err := tags.Err(); err != nil {
		return nil, err
	}

	return &e, nil
}

// Create inserts the entry and its definitions in one transaction, so
// no reader ever sees an entry without definitions.
func (s *SQLite) Create(ctx context.Context, entry *model.GlossaryEntry) error {
	if err := prepareNew(entry); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO entries (id, canonical_term, language, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.CanonicalTerm, entry.Language, entry.Status, entry.CreatedAt, entry.UpdatedAt)
	if err != nil {
		if isUniqueConstraintErr(err) {
			return ErrConflict
		}
		return fmt.Errorf("insert entry: %w", err)
	}

	for _, d := range entry.Definitions {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO definitions (entry_id, text, source_doc_id, is_primary, created_at)
			 VALUES (?, ?, ?, ?, ?)`,
			entry.ID, d.Text, d.SourceDocID, d.IsPrimary, d.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert definition: %w", err)
		}
	}

	return tx.Commit()
}

// AppendDefinition inserts unless the (text, source) pair exists. The
// primary flag is derived from the definition count inside the same
// transaction.
func (s *SQLite) AppendDefinition(ctx context.Context, entryID string, def model.Definition) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var count int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM definitions WHERE entry_id = ?`, entryID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("count definitions: %w", err)
	}

	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM definitions WHERE entry_id = ? AND text = ? AND source_doc_id = ?`,
		entryID, def.Text, def.SourceDocID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check duplicate: %w", err)
	}
	if exists > 0 {
		return false, nil
	}

	if def.CreatedAt.IsZero() {
		def.CreatedAt = time.Now().UTC()
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO definitions (entry_id, text, source_doc_id, is_primary, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		entryID, def.Text, def.SourceDocID, count == 0, def.CreatedAt)
	if err != nil {
		if isUniqueConstraintErr(err) {
			return false, nil
		}
		return false, fmt.Errorf("insert definition: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return false, nil
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE entries SET updated_at = ? WHERE id = ?`, time.Now().UTC(), entryID)
	if err != nil {
		return false, fmt.Errorf("touch entry: %w", err)
	}

	return true, tx.Commit()
}

// RemoveDefinition deletes by insertion position and promotes the
// oldest remaining definition when the primary was removed.
func (s *SQLite) RemoveDefinition(ctx context.Context, entryID string, index int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx,
		`SELECT id, is_primary FROM definitions WHERE entry_id = ? ORDER BY id`, entryID)
	if err != nil {
		return fmt.Errorf("load definitions: %w", err)
	}
	type defRow struct {
		id      int64
		primary bool
	}
	var all []defRow
	for rows.Next() {
		var d defRow
		if err := rows.Scan(&d.id, &d.primary); err != nil {
			_ = rows.Close()
			return fmt.Errorf("scan definition: %w", err)
		}
		all = append(all, d)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	if index < 0 || index >= len(all) {
		return ErrNotFound
	}
	victim := all[index]

	if _, err := tx.ExecContext(ctx, `DELETE FROM definitions WHERE id = ?`, victim.id); err != nil {
		return fmt.Errorf("delete definition: %w", err)
	}

	if victim.primary {
		remaining := append(all[:index:index], all[index+1:]...)
		if len(remaining) > 0 {
			_, err = tx.ExecContext(ctx,
				`UPDATE definitions SET is_primary = 1 WHERE id = ?`, remaining[0].id)
			if err != nil {
				return fmt.Errorf("promote primary: %w", err)
			}
		}
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE entries SET updated_at = ? WHERE id = ?`, time.Now().UTC(), entryID)
	if err != nil {
		return fmt.Errorf("touch entry: %w", err)
	}

	return tx.Commit()
}

// SetStatus updates validation status.
func (s *SQLite) SetStatus(ctx context.Context, entryID string, status model.ValidationStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE entries SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UTC(), entryID)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetDomainTags replaces the tag set in one transaction.
func (s *SQLite) SetDomainTags(ctx context.Context, entryID string, tags []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM entry_tags WHERE entry_id = ?`, entryID); err != nil {
		return fmt.Errorf("clear tags: %w", err)
	}
	for _, tag := range tags {
		_, err = tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO entry_tags (entry_id, tag) VALUES (?, ?)`, entryID, tag)
		if err != nil {
			return fmt.Errorf("insert tag: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE entries SET updated_at = ? WHERE id = ?`, time.Now().UTC(), entryID)
	if err != nil {
		return fmt.Errorf("touch entry: %w", err)
	}

	return tx.Commit()
}

// List returns entries for a language ordered by term.
func (s *SQLite) List(ctx context.Context, language string) ([]model.GlossaryEntry, error) {
	query := `SELECT id FROM entries`
	args := []interface{}{}
	if language != "" {
		query += ` WHERE language = ?`
		args = append(args, language)
	}
	query += ` ORDER BY canonical_term`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]model.GlossaryEntry, 0, len(ids))
	for _, id := range ids {
		entry, err := s.getByID(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, *entry)
	}
	return out, nil
}

// StageEdges buffers edges under a run ID.
func (s *SQLite) StageEdges(ctx context.Context, runID string, edges []model.RelationshipEdge) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO inference_runs (run_id, checkpoint, started_at) VALUES (?, -1, ?)`,
		runID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("ensure run: %w", err)
	}

	for _, e := range edges {
		_, err = tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO staged_edges (run_id, from_term_id, to_term_id, type, confidence, evidence)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			runID, e.FromTermID, e.ToTermID, string(e.Type), e.Confidence, e.Evidence)
		if err != nil {
			return fmt.Errorf("stage edge: %w", err)
		}
	}

	return tx.Commit()
}

// SaveCheckpoint records chunk progress.
func (s *SQLite) SaveCheckpoint(ctx context.Context, runID string, chunk int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO inference_runs (run_id, checkpoint, started_at) VALUES (?, ?, ?)
		 ON CONFLICT(run_id) DO UPDATE SET checkpoint = excluded.checkpoint`,
		runID, chunk, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

// Checkpoint returns the last completed chunk, -1 when unknown.
func (s *SQLite) Checkpoint(ctx context.Context, runID string) (int, error) {
	var chunk int
	err := s.db.QueryRowContext(ctx,
		`SELECT checkpoint FROM inference_runs WHERE run_id = ?`, runID).Scan(&chunk)
	if err == sql.ErrNoRows {
		return -1, nil
	}
	if err != nil {
		return -1, fmt.Errorf("load checkpoint: %w", err)
	}
	return chunk, nil
}

// CommitRun moves staged edges into the committed edge set atomically.
func (s *SQLite) CommitRun(ctx context.Context, runID string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM inference_runs WHERE run_id = ?`, runID).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("check run: %w", err)
	}
	if exists == 0 {
		return 0, ErrNoRun
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO edges (from_term_id, to_term_id, type, confidence, evidence)
		 SELECT from_term_id, to_term_id, type, confidence, evidence
		 FROM staged_edges WHERE run_id = ?
		 ON CONFLICT(from_term_id, to_term_id, type) DO UPDATE SET
		   confidence = excluded.confidence,
		   evidence = excluded.evidence`,
		runID)
	if err != nil {
		return 0, fmt.Errorf("commit edges: %w", err)
	}
	n, _ := res.RowsAffected()

	if _, err := tx.ExecContext(ctx, `DELETE FROM staged_edges WHERE run_id = ?`, runID); err != nil {
		return 0, fmt.Errorf("clear staged: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM inference_runs WHERE run_id = ?`, runID); err != nil {
		return 0, fmt.Errorf("clear run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return int(n), nil
}

// DiscardRun drops staged edges for a run.
func (s *SQLite) DiscardRun(ctx context.Context, runID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM staged_edges WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("discard staged: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM inference_runs WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("discard run: %w", err)
	}
	return tx.Commit()
}

// Edges returns committed edges ordered for stable output.
func (s *SQLite) Edges(ctx context.Context) ([]model.RelationshipEdge, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT from_term_id, to_term_id, type, confidence, evidence
		 FROM edges ORDER BY from_term_id, to_term_id, type`)
	if err != nil {
		return nil, fmt.Errorf("list edges: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.RelationshipEdge
	for rows.Next() {
		var e model.RelationshipEdge
		var typ string
		if err := rows.Scan(&e.FromTermID, &e.ToTermID, &typ, &e.Confidence, &e.Evidence); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		e.Type = model.RelationType(typ)
		out = append(out, e)
	}
	return out, rows.Err()
}
