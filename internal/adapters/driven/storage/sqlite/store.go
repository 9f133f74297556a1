package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/finsight-labs/finsight-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/finsight-labs/finsight-cli/internal/core/domain"
	"github.com/finsight-labs/finsight-cli/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to the
// document, vector, and history store interfaces through wrapper types.
// Document rows and chunk vectors live in the same database so that an
// ingestion commits or rolls back as one unit.
type Store struct {
	db         *sql.DB
	path       string
	dimensions int
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.finsight/data/metadata.db.
//
// dimensions is the embedding dimension every stored vector must match;
// zero disables the check for stores that hold no vectors yet.
func NewStore(dataDir string, dimensions int) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".finsight", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "metadata.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:         db,
		path:       dbPath,
		dimensions: dimensions,
	}

	// Run migrations
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

// migrate applies any pending schema migrations from the embedded
// filesystem. Migration files are named NNN_description.up.sql and
// applied in ascending order.
func (s *Store) migrate(migrationsFS embed.FS) error {
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	var current int
	if err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("reading migration version: %w", err)
	}

	entries, err := migrationsFS.ReadDir(".")
	if err != nil {
		return fmt.Errorf("reading migrations: %w", err)
	}

	var files []string //nolint:prealloc
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	for _, file := range files {
		var version int
		if _, err := fmt.Sscanf(file, "%d_", &version); err != nil {
			continue
		}
		if version <= current {
			continue
		}

		content, err := migrationsFS.ReadFile(file)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", file, err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning migration transaction: %w", err)
		}

		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("applying migration %s: %w", file, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)",
			version, time.Now().UTC().Format(time.RFC3339),
		); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("recording migration %s: %w", file, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %s: %w", file, err)
		}
	}

	return nil
}

// DocumentStore returns a DocumentStore backed by this store.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{store: s}
}

// VectorIndex returns a VectorIndex backed by this store.
func (s *Store) VectorIndex() driven.VectorIndex {
	return &vectorIndex{store: s}
}

// HistoryStore returns a HistoryStore backed by this store.
func (s *Store) HistoryStore() driven.HistoryStore {
	return &historyStore{store: s}
}

// deleteDocument removes a document row; chunks cascade via foreign key.
func (s *Store) deleteDocument(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// documentStore wraps Store to implement driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

const documentColumns = "id, title, doc_type, content_hash, size_bytes, word_count, chunk_count, created_at, updated_at"

// GetDocument retrieves a document by ID.
func (d *documentStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := d.store.db.QueryRowContext(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE id = ?", id)

	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting document: %w", err)
	}

	return doc, nil
}

// GetDocumentByHash retrieves a document by content hash.
func (d *documentStore) GetDocumentByHash(ctx context.Context, contentHash string) (*domain.Document, error) {
	row := d.store.db.QueryRowContext(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE content_hash = ?", contentHash)

	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting document by hash: %w", err)
	}

	return doc, nil
}

// GetChunks retrieves all chunks for a document, ordered by ordinal.
func (d *documentStore) GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	rows, err := d.store.db.QueryContext(ctx, `
		SELECT id, document_id, ordinal, content, embedding, word_count, overlap
		FROM chunks WHERE document_id = ? ORDER BY ordinal
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk //nolint:prealloc
	for rows.Next() {
		chunk, err := scanChunkRows(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		chunks = append(chunks, *chunk)
	}

	return chunks, rows.Err()
}

// GetChunk retrieves a specific chunk by ID.
func (d *documentStore) GetChunk(ctx context.Context, id string) (*domain.Chunk, error) {
	row := d.store.db.QueryRowContext(ctx, `
		SELECT id, document_id, ordinal, content, embedding, word_count, overlap
		FROM chunks WHERE id = ?
	`, id)

	chunk, err := scanChunk(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting chunk: %w", err)
	}

	return chunk, nil
}

// ListDocuments returns documents, optionally filtered by type, newest first.
func (d *documentStore) ListDocuments(ctx context.Context, typeFilter domain.DocumentType) ([]domain.Document, error) {
	query := "SELECT " + documentColumns + " FROM documents"
	var args []any
	if typeFilter != "" {
		query += " WHERE doc_type = ?"
		args = append(args, typeFilter.String())
	}
	// rowid breaks created_at ties, which have second granularity.
	query += " ORDER BY created_at DESC, rowid DESC"

	rows, err := d.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc
	for rows.Next() {
		doc, err := scanDocumentRows(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, *doc)
	}

	return docs, rows.Err()
}

// DeleteDocument removes a document and its chunks atomically.
func (d *documentStore) DeleteDocument(ctx context.Context, id string) error {
	return d.store.deleteDocument(ctx, id)
}

// CountChunks returns the total number of stored chunks.
func (d *documentStore) CountChunks(ctx context.Context) (int, error) {
	var count int
	if err := d.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return count, nil
}

// CountDocumentsByType returns per-type document counts.
func (d *documentStore) CountDocumentsByType(ctx context.Context) (map[domain.DocumentType]int, error) {
	rows, err := d.store.db.QueryContext(ctx,
		"SELECT doc_type, COUNT(*) FROM documents GROUP BY doc_type")
	if err != nil {
		return nil, fmt.Errorf("counting documents: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.DocumentType]int)
	for rows.Next() {
		var docType string
		var count int
		if err := rows.Scan(&docType, &count); err != nil {
			return nil, fmt.Errorf("scanning count: %w", err)
		}
		counts[domain.DocumentType(docType)] = count
	}

	return counts, rows.Err()
}

// vectorIndex wraps Store to implement driven.VectorIndex.
type vectorIndex struct {
	store *Store
}

var _ driven.VectorIndex = (*vectorIndex)(nil)

// UpsertDocument stores a document and its chunks in one transaction,
// replacing any chunks a prior ingestion wrote for the same document ID.
// Embeddings are validated against the configured dimension before
// anything is written.
func (v *vectorIndex) UpsertDocument(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error {
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("%w: document ID is required", domain.ErrInvalidInput)
	}

	if v.store.dimensions > 0 {
		for i := range chunks {
			if got := len(chunks[i].Embedding); got != v.store.dimensions {
				return fmt.Errorf("%w: chunk %d has %d dimensions, store expects %d",
					domain.ErrDimensionMismatch, chunks[i].Ordinal, got, v.store.dimensions)
			}
		}
	}

	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now
	doc.ChunkCount = len(chunks)

	tx, err := v.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (`+documentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			doc_type = excluded.doc_type,
			content_hash = excluded.content_hash,
			size_bytes = excluded.size_bytes,
			word_count = excluded.word_count,
			chunk_count = excluded.chunk_count,
			updated_at = excluded.updated_at
	`, doc.ID, doc.Title, doc.Type.String(), doc.ContentHash, doc.SizeBytes,
		doc.WordCount, doc.ChunkCount,
		doc.CreatedAt.Format(time.RFC3339), doc.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		if strings.Contains(err.Error(), "documents.content_hash") {
			return fmt.Errorf("%w: identical content already ingested", domain.ErrDuplicateDocument)
		}
		return fmt.Errorf("upserting document: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", doc.ID); err != nil {
		return fmt.Errorf("clearing previous chunks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, ordinal, content, embedding, word_count, overlap)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing chunk insert: %w", err)
	}
	defer stmt.Close()

	for i := range chunks {
		chunk := &chunks[i]
		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.DocumentID, chunk.Ordinal,
			chunk.Content, float32SliceToBytes(chunk.Embedding), chunk.WordCount, chunk.Overlap); err != nil {
			return fmt.Errorf("inserting chunk %d: %w", chunk.Ordinal, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing document: %w", err)
	}

	return nil
}

// DeleteDocument atomically removes a document and all its chunks.
func (v *vectorIndex) DeleteDocument(ctx context.Context, documentID string) error {
	return v.store.deleteDocument(ctx, documentID)
}

// Search scores every stored chunk against the query vector and returns
// the top k. Ties are broken by newer document, then by chunk ordinal.
func (v *vectorIndex) Search(ctx context.Context, query []float32, k int, typeFilter domain.DocumentType) ([]driven.VectorHit, error) {
	if k <= 0 {
		return nil, nil
	}
	if v.store.dimensions > 0 && len(query) != v.store.dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, store expects %d",
			domain.ErrDimensionMismatch, len(query), v.store.dimensions)
	}

	sqlQuery := `
		SELECT c.id, c.document_id, c.ordinal, c.embedding, d.created_at
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
	`
	var args []any
	if typeFilter != "" {
		sqlQuery += " WHERE d.doc_type = ?"
		args = append(args, typeFilter.String())
	}

	rows, err := v.store.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	type candidate struct {
		hit       driven.VectorHit
		ordinal   int
		createdAt time.Time
	}

	var candidates []candidate //nolint:prealloc
	for rows.Next() {
		var (
			chunkID    string
			documentID string
			ordinal    int
			blob       []byte
			createdAt  string
		)
		if err := rows.Scan(&chunkID, &documentID, &ordinal, &blob, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}

		created, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}

		candidates = append(candidates, candidate{
			hit: driven.VectorHit{
				ChunkID:    chunkID,
				DocumentID: documentID,
				Similarity: domain.SimilarityScore(query, bytesToFloat32Slice(blob)),
			},
			ordinal:   ordinal,
			createdAt: created,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].hit.Similarity != candidates[j].hit.Similarity {
			return candidates[i].hit.Similarity > candidates[j].hit.Similarity
		}
		if !candidates[i].createdAt.Equal(candidates[j].createdAt) {
			return candidates[i].createdAt.After(candidates[j].createdAt)
		}
		return candidates[i].ordinal < candidates[j].ordinal
	})

	if len(candidates) > k {
		candidates = candidates[:k]
	}

	hits := make([]driven.VectorHit, len(candidates))
	for i, c := range candidates {
		hits[i] = c.hit
	}

	return hits, nil
}

// Dimensions returns the configured embedding dimension.
func (v *vectorIndex) Dimensions() int {
	return v.store.dimensions
}

// Close is a no-op; the shared database handle is owned by Store.
func (v *vectorIndex) Close() error {
	return nil
}

// historyStore wraps Store to implement driven.HistoryStore.
type historyStore struct {
	store *Store
}

var _ driven.HistoryStore = (*historyStore)(nil)

// SaveRecord stores a completed query record.
func (h *historyStore) SaveRecord(ctx context.Context, record *domain.QueryRecord) error {
	if record == nil || record.ID == "" {
		return fmt.Errorf("%w: record ID is required", domain.ErrInvalidInput)
	}

	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	_, err := h.store.db.ExecContext(ctx, `
		INSERT INTO query_history (id, query, answer, top_score, result_count, processing_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, record.ID, record.Query, record.Answer, record.TopScore, record.ResultCount,
		record.ProcessingMs, record.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("saving query record: %w", err)
	}

	return nil
}

// Recent returns the most recent records, newest first.
func (h *historyStore) Recent(ctx context.Context, limit int) ([]domain.QueryRecord, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := h.store.db.QueryContext(ctx, `
		SELECT id, query, answer, top_score, result_count, processing_ms, created_at
		FROM query_history ORDER BY created_at DESC, rowid DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var records []domain.QueryRecord //nolint:prealloc
	for rows.Next() {
		record, err := scanQueryRecordRows(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		records = append(records, *record)
	}

	return records, rows.Err()
}

// Count returns the total number of recorded queries.
func (h *historyStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := h.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM query_history").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting history: %w", err)
	}
	return count, nil
}

// AvgProcessingMs returns the mean query latency in milliseconds.
func (h *historyStore) AvgProcessingMs(ctx context.Context) (float64, error) {
	var avg float64
	if err := h.store.db.QueryRowContext(ctx,
		"SELECT COALESCE(AVG(processing_ms), 0) FROM query_history").Scan(&avg); err != nil {
		return 0, fmt.Errorf("averaging latency: %w", err)
	}
	return avg, nil
}

// scanDocument scans a document from a single-row query.
func scanDocument(row *sql.Row) (*domain.Document, error) {
	var doc domain.Document
	var docType, createdAt, updatedAt string

	if err := row.Scan(&doc.ID, &doc.Title, &docType, &doc.ContentHash,
		&doc.SizeBytes, &doc.WordCount, &doc.ChunkCount, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	doc.Type = domain.DocumentType(docType)

	var err error
	if doc.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if doc.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	return &doc, nil
}

// scanDocumentRows scans a document from a multi-row query.
func scanDocumentRows(rows *sql.Rows) (*domain.Document, error) {
	var doc domain.Document
	var docType, createdAt, updatedAt string

	if err := rows.Scan(&doc.ID, &doc.Title, &docType, &doc.ContentHash,
		&doc.SizeBytes, &doc.WordCount, &doc.ChunkCount, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	doc.Type = domain.DocumentType(docType)

	var err error
	if doc.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if doc.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	return &doc, nil
}

// scanChunk scans a chunk from a single-row query.
func scanChunk(row *sql.Row) (*domain.Chunk, error) {
	var chunk domain.Chunk
	var blob []byte

	if err := row.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Ordinal,
		&chunk.Content, &blob, &chunk.WordCount, &chunk.Overlap); err != nil {
		return nil, err
	}

	chunk.Embedding = bytesToFloat32Slice(blob)
	return &chunk, nil
}

// scanChunkRows scans a chunk from a multi-row query.
func scanChunkRows(rows *sql.Rows) (*domain.Chunk, error) {
	var chunk domain.Chunk
	var blob []byte

	if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Ordinal,
		&chunk.Content, &blob, &chunk.WordCount, &chunk.Overlap); err != nil {
		return nil, err
	}

	chunk.Embedding = bytesToFloat32Slice(blob)
	return &chunk, nil
}

// scanQueryRecordRows scans a query record from a multi-row query.
func scanQueryRecordRows(rows *sql.Rows) (*domain.QueryRecord, error) {
	var record domain.QueryRecord
	var createdAt string

	if err := rows.Scan(&record.ID, &record.Query, &record.Answer, &record.TopScore,
		&record.ResultCount, &record.ProcessingMs, &createdAt); err != nil {
		return nil, err
	}

	var err error
	if record.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	return &record, nil
}

// float32SliceToBytes encodes an embedding as little-endian float32 bytes
// for BLOB storage.
func float32SliceToBytes(floats []float32) []byte {
	if floats == nil {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice decodes a BLOB back into an embedding.
func bytesToFloat32Slice(b []byte) []float32 {
	if len(b) == 0 {
		return nil
	}
	floats := make([]float32, len(b)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return floats
}
