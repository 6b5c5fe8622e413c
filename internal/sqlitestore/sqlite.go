// Package sqlitestore persists chunked documents in a single SQLite file.
//
// Tables:
//   - documents: one row per document (summary plus converted Markdown)
//   - chunks: one row per chunk, ordered by seq
//
// The driver is modernc.org/sqlite, so no C toolchain is needed.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dgallion1/docchunk/internal/doctree"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

// Store implements the pipeline sink on SQLite.
type Store struct {
	db *sql.DB
}

func openDatabase(path string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, path)
	if err != nil {
		return nil, err
	}

	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return db, nil
}

// Open opens or creates the database at path and applies migrations.
func Open(path string) (*Store, error) {
	db, err := openDatabase(path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := applyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save replaces any document stored under doc.Name in one transaction.
func (s *Store) Save(ctx context.Context, doc doctree.Document) error {
	if doc.Name == "" {
		return errors.New("document name is required")
	}
	created := doc.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Chunks go with the old row through ON DELETE CASCADE.
	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE name = ?`, doc.Name); err != nil {
		return fmt.Errorf("replace document: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO documents (name, filename, content_hash, strategy, markdown, chunk_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		doc.Name, doc.Filename, doc.ContentHash, doc.Strategy, doc.Markdown, len(doc.Records),
		created.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	docID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("document id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (document_id, seq, title, level, token_count, checksum, content)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare chunk insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range doc.Records {
		_, err := stmt.ExecContext(ctx, docID, rec.ID, rec.Title, rec.Level, rec.TokenCount, rec.Checksum, rec.Content)
		if err != nil {
			return fmt.Errorf("insert chunk %d: %w", rec.ID, err)
		}
	}
	return tx.Commit()
}

// Exists returns the name of a document stored with contentHash.
func (s *Store) Exists(ctx context.Context, contentHash string) (string, bool, error) {
	var name string
	err := s.db.QueryRowContext(ctx,
		`SELECT name FROM documents WHERE content_hash = ? ORDER BY id LIMIT 1`, contentHash,
	).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup hash: %w", err)
	}
	return name, true, nil
}

// List returns document summaries ordered by name.
func (s *Store) List(ctx context.Context) ([]doctree.DocumentInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, filename, content_hash, strategy, chunk_count, created_at
		FROM documents ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []doctree.DocumentInfo
	for rows.Next() {
		var info doctree.DocumentInfo
		var created string
		if err := rows.Scan(&info.Name, &info.Filename, &info.ContentHash, &info.Strategy, &info.Chunks, &created); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
			info.CreatedAt = t
		}
		docs = append(docs, info)
	}
	return docs, rows.Err()
}

// Delete removes a document and its chunks.
func (s *Store) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", doctree.ErrDocumentNotFound, name)
	}
	return nil
}

// Chunks returns the stored records of a document in order.
func (s *Store) Chunks(ctx context.Context, name string) ([]doctree.Record, error) {
	var docID int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM documents WHERE name = ?`, name).Scan(&docID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", doctree.ErrDocumentNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup document: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, title, level, token_count, checksum, content
		FROM chunks WHERE document_id = ? ORDER BY seq`, docID)
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}
	defer rows.Close()

	var recs []doctree.Record
	for rows.Next() {
		var r doctree.Record
		if err := rows.Scan(&r.ID, &r.Title, &r.Level, &r.TokenCount, &r.Checksum, &r.Content); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}
