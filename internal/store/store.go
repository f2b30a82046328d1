// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists extracted fragments and builds a retrieval
// index so downstream consumers can query them by kind, label, source
// completion, or full text.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/genui-engine/pkg/types"
)

const (
	extractedDir = "extracted"
	indexDir     = "index"
	dbFile       = "fragments.db"
)

// Store manages the fragment SQLite database.
type Store struct {
	db           *sql.DB
	fragmentsDir string
	maxResults   int
}

// NewStore opens or creates the fragment database at
// fragmentsDir/index/fragments.db, creating the schema if needed.
func NewStore(cfg types.FragmentStoreConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.FragmentsDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:           db,
		fragmentsDir: cfg.FragmentsDir,
		maxResults:   maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS completions (
			id TEXT PRIMARY KEY,
			indexed_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS fragments (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			kind TEXT NOT NULL,
			label TEXT,
			content TEXT NOT NULL,
			completion_id TEXT NOT NULL REFERENCES completions(id),
			line INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_fragments_completion_id ON fragments(completion_id)`,
		`CREATE INDEX IF NOT EXISTS idx_fragments_kind ON fragments(kind)`,
		`CREATE TABLE IF NOT EXISTS indexing_status (
			completion_id TEXT PRIMARY KEY,
			file_mod_time TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='fragments_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE fragments_fts USING fts5(content, content=fragments, content_rowid=rowid)`,
			`CREATE TRIGGER fragments_ai AFTER INSERT ON fragments BEGIN
				INSERT INTO fragments_fts(rowid, content) VALUES (new.rowid, new.content);
			END`,
			`CREATE TRIGGER fragments_ad AFTER DELETE ON fragments BEGIN
				INSERT INTO fragments_fts(fragments_fts, rowid, content) VALUES('delete', old.rowid, old.content);
			END`,
			`CREATE TRIGGER fragments_au AFTER UPDATE ON fragments BEGIN
				INSERT INTO fragments_fts(fragments_fts, rowid, content) VALUES('delete', old.rowid, old.content);
				INSERT INTO fragments_fts(rowid, content) VALUES (new.rowid, new.content);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// IngestSummary holds counts from a fragment indexing run.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of completions processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest reads extraction YAML files from fragmentsDir/extracted/ and
// populates the database. It detects new, changed, and unchanged files
// for incremental updates.
func (s *Store) Ingest(ctx context.Context, w io.Writer) (IngestSummary, error) {
	extractDir := filepath.Join(s.fragmentsDir, extractedDir)

	entries, err := os.ReadDir(extractDir)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading extraction directory %s: %w", extractDir, err)
	}

	var summary IngestSummary

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), "-fragments.yaml") {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		completionID := strings.TrimSuffix(entry.Name(), "-fragments.yaml")
		filePath := filepath.Join(extractDir, entry.Name())

		info, err := entry.Info()
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", completionID, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		// Skip files unchanged since last indexing.
		var storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM indexing_status WHERE completion_id = ?`, completionID,
		).Scan(&storedModTime)

		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", completionID)
			summary.Skipped++
			continue
		}

		isUpdate := err == nil

		data, err := os.ReadFile(filePath)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", completionID, err)
			summary.Failed++
			continue
		}

		var result types.ExtractionResult
		if err := yaml.Unmarshal(data, &result); err != nil {
			fmt.Fprintf(w, "failed  %s: parse error: %v\n", completionID, err)
			summary.Failed++
			continue
		}

		if err := s.ingestCompletion(ctx, completionID, &result, modTime, isUpdate); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", completionID, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d fragments)\n", completionID, len(result.Fragments))
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexing %s (%d fragments)\n", completionID, len(result.Fragments))
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)

	// Refresh the export after successful ingestion.
	if summary.Indexed > 0 || summary.Updated > 0 {
		if err := s.ExportYAML(ctx, QueryOptions{}); err != nil {
			fmt.Fprintf(w, "warning: export.yaml write failed: %v\n", err)
		}
	}

	return summary, nil
}

func (s *Store) ingestCompletion(ctx context.Context, completionID string, result *types.ExtractionResult, modTime string, isUpdate bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Remove old fragments if updating.
	if isUpdate {
		if _, err := tx.ExecContext(ctx, `DELETE FROM fragments WHERE completion_id = ?`, completionID); err != nil {
			return fmt.Errorf("deleting old fragments: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO completions (id, indexed_at) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET indexed_at=excluded.indexed_at`,
		completionID, modTime,
	)
	if err != nil {
		return fmt.Errorf("upserting completion: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO fragments (id, kind, label, content, completion_id, line)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, frag := range result.Fragments {
		_, err := stmt.ExecContext(ctx,
			frag.ID, string(frag.Kind), frag.Label, frag.Content,
			frag.CompletionID, frag.Line,
		)
		if err != nil {
			return fmt.Errorf("inserting fragment %s: %w", frag.ID, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO indexing_status (completion_id, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(completion_id) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		completionID, modTime,
	)
	if err != nil {
		return fmt.Errorf("updating indexing status: %w", err)
	}

	return tx.Commit()
}
