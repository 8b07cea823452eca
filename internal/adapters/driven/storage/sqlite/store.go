// Package sqlite provides the durable chunk store. Documents, chunks
// (including their embedding blobs), and the feedback audit trail
// survive process restarts; the in-memory indexes rebuild from here on
// reopen without re-embedding anything.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/prism-labs/memogen/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/prism-labs/memogen/internal/core/domain"
	"github.com/prism-labs/memogen/internal/core/ports/driven"
)

// Ensure Store implements the interfaces.
var (
	_ driven.ChunkStore    = (*Store)(nil)
	_ driven.FeedbackStore = (*Store)(nil)
)

// Store is the SQLite-backed chunk and feedback store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates or reopens a SQLite store in the specified data
// directory. If dataDir is empty, defaults to ~/.memogen/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".memogen", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "memogen.db")

	// WAL mode keeps readers unblocked during writes.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// SaveDocument stores a document.
func (s *Store) SaveDocument(ctx context.Context, doc *domain.Document) error {
	if doc.ExtractedAt.IsZero() {
		doc.ExtractedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, source_uri, title, content, supersedes, extracted_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source_uri = excluded.source_uri,
			title = excluded.title,
			content = excluded.content,
			supersedes = excluded.supersedes,
			extracted_at = excluded.extracted_at
	`, doc.ID, doc.SourceURI, doc.Title, doc.Content, doc.Supersedes, doc.ExtractedAt)

	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *Store) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, source_uri, title, content, supersedes, extracted_at
		FROM documents WHERE id = ?
	`, id)

	var doc domain.Document
	if err := row.Scan(&doc.ID, &doc.SourceURI, &doc.Title, &doc.Content,
		&doc.Supersedes, &doc.ExtractedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	return &doc, nil
}

// ListDocuments returns all stored documents, oldest first.
func (s *Store) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source_uri, title, content, supersedes, extracted_at
		FROM documents ORDER BY extracted_at
	`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		var doc domain.Document
		if err := rows.Scan(&doc.ID, &doc.SourceURI, &doc.Title, &doc.Content,
			&doc.Supersedes, &doc.ExtractedAt); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

// SaveChunks stores chunks in one transaction, replacing any with the
// same ID.
func (s *Store) SaveChunks(ctx context.Context, chunks []domain.Chunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, position, text, embedding, provenance, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			document_id = excluded.document_id,
			position = excluded.position,
			text = excluded.text,
			embedding = excluded.embedding,
			provenance = excluded.provenance
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		createdAt := chunk.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.DocumentID, chunk.Position,
			chunk.Text, float32SliceToBytes(chunk.Embedding), string(chunk.Provenance), createdAt); err != nil {
			return fmt.Errorf("saving chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetChunk retrieves a chunk by ID.
func (s *Store) GetChunk(ctx context.Context, id string) (*domain.Chunk, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, document_id, position, text, embedding, provenance, created_at
		FROM chunks WHERE id = ?
	`, id)

	var chunk domain.Chunk
	var embedding []byte
	var provenance string
	if err := row.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Position, &chunk.Text,
		&embedding, &provenance, &chunk.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}
	chunk.Embedding = bytesToFloat32Slice(embedding)
	chunk.Provenance = domain.Provenance(provenance)
	return &chunk, nil
}

// ListChunks returns a document's chunks in position order.
func (s *Store) ListChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	return s.queryChunks(ctx, `
		SELECT id, document_id, position, text, embedding, provenance, created_at
		FROM chunks WHERE document_id = ?
		ORDER BY position
	`, documentID)
}

// AllChunks returns every stored chunk. Used by the indexes to rebuild
// their projections on reopen.
func (s *Store) AllChunks(ctx context.Context) ([]domain.Chunk, error) {
	return s.queryChunks(ctx, `
		SELECT id, document_id, position, text, embedding, provenance, created_at
		FROM chunks ORDER BY id
	`)
}

func (s *Store) queryChunks(ctx context.Context, query string, args ...any) ([]domain.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		var chunk domain.Chunk
		var embedding []byte
		var provenance string
		if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Position, &chunk.Text,
			&embedding, &provenance, &chunk.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		chunk.Embedding = bytesToFloat32Slice(embedding)
		chunk.Provenance = domain.Provenance(provenance)
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return chunks, nil
}

// SaveFeedback appends a feedback record, or updates status fields when
// the ID already exists.
func (s *Store) SaveFeedback(ctx context.Context, rec *domain.FeedbackRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO feedback (id, memo_id, section, original, corrected, status, golden_chunk_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			golden_chunk_id = excluded.golden_chunk_id
	`, rec.ID, rec.MemoID, rec.Section, rec.Original, rec.Corrected,
		string(rec.Status), rec.GoldenChunkID, rec.CreatedAt)

	if err != nil {
		return fmt.Errorf("saving feedback: %w", err)
	}
	return nil
}

// GetFeedback retrieves a record by ID.
func (s *Store) GetFeedback(ctx context.Context, id string) (*domain.FeedbackRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, memo_id, section, original, corrected, status, golden_chunk_id, created_at
		FROM feedback WHERE id = ?
	`, id)

	var rec domain.FeedbackRecord
	var status string
	if err := row.Scan(&rec.ID, &rec.MemoID, &rec.Section, &rec.Original,
		&rec.Corrected, &status, &rec.GoldenChunkID, &rec.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning feedback: %w", err)
	}
	rec.Status = domain.ReviewStatus(status)
	return &rec, nil
}

// ListFeedback returns records newest first, optionally filtered by
// status.
func (s *Store) ListFeedback(ctx context.Context, status domain.ReviewStatus) ([]domain.FeedbackRecord, error) {
	query := `
		SELECT id, memo_id, section, original, corrected, status, golden_chunk_id, created_at
		FROM feedback
	`
	var args []any
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, string(status))
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying feedback: %w", err)
	}
	defer rows.Close()

	var records []domain.FeedbackRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		var rec domain.FeedbackRecord
		var recStatus string
		if err := rows.Scan(&rec.ID, &rec.MemoID, &rec.Section, &rec.Original,
			&rec.Corrected, &recStatus, &rec.GoldenChunkID, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning feedback: %w", err)
		}
		rec.Status = domain.ReviewStatus(recStatus)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating feedback: %w", err)
	}
	return records, nil
}

// FeedbackStats returns aggregate review counts.
func (s *Store) FeedbackStats(ctx context.Context) (domain.FeedbackStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT status, COUNT(*) FROM feedback GROUP BY status
	`)
	if err != nil {
		return domain.FeedbackStats{}, fmt.Errorf("querying feedback stats: %w", err)
	}
	defer rows.Close()

	var stats domain.FeedbackStats
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return domain.FeedbackStats{}, fmt.Errorf("scanning feedback stats: %w", err)
		}
		stats.Total += count
		switch domain.ReviewStatus(status) {
		case domain.ReviewPending:
			stats.Pending += count
		case domain.ReviewApproved:
			stats.Approved += count
		case domain.ReviewRejected:
			stats.Rejected += count
		}
	}
	if err := rows.Err(); err != nil {
		return domain.FeedbackStats{}, fmt.Errorf("iterating feedback stats: %w", err)
	}
	return stats, nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
