// Package storage provides SQLite implementation of the Storage interface.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/hyperjump/bunseki/internal/models"
)

// InMemory is the database path that keeps everything in memory for the life of the store.
const InMemory = ":memory:"

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dbPath != InMemory {
		if dir := filepath.Dir(dbPath); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == InMemory {
		// Each connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		title TEXT,
		content TEXT NOT NULL,
		metadata TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_documents_owner ON documents(owner_id);
	CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents(created_at, id);

	CREATE TABLE IF NOT EXISTS document_collaborators (
		document_id TEXT NOT NULL,
		principal_id TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (document_id, principal_id)
	);

	CREATE INDEX IF NOT EXISTS idx_collaborators_principal ON document_collaborators(principal_id);
	`
	_, err := db.Exec(schema)
	return err
}

const documentColumns = `d.id, d.owner_id, COALESCE(d.title, ''), d.content, COALESCE(d.metadata, ''), d.created_at, d.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*models.Document, error) {
	var doc models.Document
	var metadataJSON string
	if err := row.Scan(&doc.ID, &doc.OwnerID, &doc.Title, &doc.Content, &metadataJSON, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		return nil, err
	}
	if metadataJSON != "" {
		if err := json.Unmarshal([]byte(metadataJSON), &doc.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}
	return &doc, nil
}

// CreateDocument inserts a document. OwnerID must be set.
func (s *SQLiteStorage) CreateDocument(ctx context.Context, doc *models.Document) error {
	if doc.OwnerID == "" {
		return fmt.Errorf("create document %s: owner is required", doc.ID)
	}
	metadataJSON, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	now := time.Now()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (id, owner_id, title, content, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.OwnerID, doc.Title, doc.Content, string(metadataJSON), doc.CreatedAt, doc.UpdatedAt,
	)
	if isConstraintViolation(err) {
		return fmt.Errorf("create document %s: %w", doc.ID, ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("create document %s: %w", doc.ID, err)
	}
	return nil
}

func isConstraintViolation(err error) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey || se.ExtendedCode == sqlite3.ErrConstraintUnique
}

// UpsertDocument inserts doc or replaces the title, content and metadata of the existing
// document with the same ID. It returns ErrForbidden when that document has another owner.
func (s *SQLiteStorage) UpsertDocument(ctx context.Context, doc *models.Document) error {
	if doc.OwnerID == "" {
		return fmt.Errorf("upsert document %s: owner is required", doc.ID)
	}
	metadataJSON, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	now := time.Now()
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (id, owner_id, title, content, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			metadata = excluded.metadata,
			updated_at = excluded.updated_at
		 WHERE documents.owner_id = excluded.owner_id`,
		doc.ID, doc.OwnerID, doc.Title, doc.Content, string(metadataJSON), now, now,
	)
	if err != nil {
		return fmt.Errorf("upsert document %s: %w", doc.ID, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("upsert document %s: %w", doc.ID, ErrForbidden)
	}
	doc.UpdatedAt = now
	return nil
}

// GetDocument returns a document by ID regardless of who may access it.
func (s *SQLiteStorage) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	doc, err := scanDocument(s.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents d WHERE d.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// GetAccessibleDocument returns a document the principal owns or collaborates on.
// Documents the principal cannot access are reported as ErrNotFound.
func (s *SQLiteStorage) GetAccessibleDocument(ctx context.Context, principal, id string) (*models.Document, error) {
	doc, err := scanDocument(s.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents d
		 WHERE d.id = ? AND (d.owner_id = ? OR EXISTS (
			SELECT 1 FROM document_collaborators c WHERE c.document_id = d.id AND c.principal_id = ?))`,
		id, principal, principal))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// checkOwner returns nil when principal owns docID, ErrForbidden when it only
// collaborates on it and ErrNotFound otherwise.
func (s *SQLiteStorage) checkOwner(ctx context.Context, principal, docID string) error {
	var owner string
	err := s.db.QueryRowContext(ctx, `SELECT owner_id FROM documents WHERE id = ?`, docID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrNotFound, docID)
	}
	if err != nil {
		return err
	}
	if owner == principal {
		return nil
	}
	ok, err := s.isCollaborator(ctx, docID, principal)
	if err != nil {
		return err
	}
	if ok {
		return fmt.Errorf("%w: only the owner may modify %s", ErrForbidden, docID)
	}
	return fmt.Errorf("%w: %s", ErrNotFound, docID)
}

func (s *SQLiteStorage) isCollaborator(ctx context.Context, docID, principal string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM document_collaborators WHERE document_id = ? AND principal_id = ?`,
		docID, principal,
	).Scan(&n)
	return n > 0, err
}

// UpdateDocument replaces the title, content and metadata of a document the principal owns.
func (s *SQLiteStorage) UpdateDocument(ctx context.Context, principal string, doc *models.Document) error {
	if err := s.checkOwner(ctx, principal, doc.ID); err != nil {
		return err
	}
	metadataJSON, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	doc.UpdatedAt = time.Now()
	doc.OwnerID = principal

	result, err := s.db.ExecContext(ctx,
		`UPDATE documents SET title = ?, content = ?, metadata = ?, updated_at = ?
		 WHERE id = ?`,
		doc.Title, doc.Content, string(metadataJSON), doc.UpdatedAt, doc.ID,
	)
	if err != nil {
		return fmt.Errorf("update document %s: %w", doc.ID, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, doc.ID)
	}
	return nil
}

// DeleteDocument removes a document the principal owns along with its collaborators.
func (s *SQLiteStorage) DeleteDocument(ctx context.Context, principal, id string) error {
	if err := s.checkOwner(ctx, principal, id); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM document_collaborators WHERE document_id = ?`, id); err != nil {
		return fmt.Errorf("delete collaborators of %s: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	return tx.Commit()
}

// ListAccessibleDocuments returns the principal's corpus ordered by creation time, then id.
func (s *SQLiteStorage) ListAccessibleDocuments(ctx context.Context, principal string) ([]*models.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+documentColumns+` FROM documents d
		 WHERE d.owner_id = ? OR EXISTS (
			SELECT 1 FROM document_collaborators c WHERE c.document_id = d.id AND c.principal_id = ?)
		 ORDER BY d.created_at, d.id`,
		principal, principal,
	)
	if err != nil {
		return nil, fmt.Errorf("list documents for %s: %w", principal, err)
	}
	defer rows.Close()

	docs := make([]*models.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// AddCollaborator grants principal access to a document owned by owner. Adding an
// existing collaborator is a no-op.
func (s *SQLiteStorage) AddCollaborator(ctx context.Context, owner, docID, principal string) error {
	if err := s.checkOwner(ctx, owner, docID); err != nil {
		return err
	}
	if principal == "" || principal == owner {
		return fmt.Errorf("add collaborator to %s: invalid principal %q", docID, principal)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO document_collaborators (document_id, principal_id, created_at) VALUES (?, ?, ?)`,
		docID, principal, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("add collaborator to %s: %w", docID, err)
	}
	return nil
}

// RemoveCollaborator revokes principal's access to a document owned by owner.
func (s *SQLiteStorage) RemoveCollaborator(ctx context.Context, owner, docID, principal string) error {
	if err := s.checkOwner(ctx, owner, docID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM document_collaborators WHERE document_id = ? AND principal_id = ?`,
		docID, principal,
	)
	if err != nil {
		return fmt.Errorf("remove collaborator from %s: %w", docID, err)
	}
	return nil
}

// ListCollaborators returns the principals a document is shared with, sorted.
func (s *SQLiteStorage) ListCollaborators(ctx context.Context, docID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT principal_id FROM document_collaborators WHERE document_id = ? ORDER BY principal_id`,
		docID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CountDocuments returns the total number of documents.
func (s *SQLiteStorage) CountDocuments(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
