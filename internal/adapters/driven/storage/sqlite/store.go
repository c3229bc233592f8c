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
	"strconv"
	"strings"
	"sync"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/finrag/internal/adapters/driven/storage/similarity"
	"github.com/custodia-labs/finrag/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/finrag/internal/core/domain"
	"github.com/custodia-labs/finrag/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// DBFileName is the database file created inside the persist directory.
const DBFileName = "index.db"

const (
	metaCollection = "collection"
	metaDimensions = "dimensions"
)

// Store is a SQLite-backed vector store.
type Store struct {
	db         *sql.DB
	path       string
	collection string

	mu    sync.RWMutex
	cache []domain.IndexEntry // nil until first Search after a write
}

// NewStore opens or creates the index database in persistDir.
func NewStore(persistDir, collection string) (*Store, error) {
	if persistDir == "" {
		return nil, fmt.Errorf("%w: persist directory is required", domain.ErrInvalidConfig)
	}

	if err := os.MkdirAll(persistDir, 0700); err != nil {
		return nil, fmt.Errorf("creating persist directory: %w", err)
	}

	dbPath := filepath.Join(persistDir, DBFileName)

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:         db,
		path:       dbPath,
		collection: collection,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	if err := s.checkCollection(collection); err != nil {
		db.Close()
		return nil, err
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
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_chunks.up.sql" -> 1
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
	}

	return nil
}

// checkCollection records the collection name on first open and refuses to
// attach to a database built for a different one.
func (s *Store) checkCollection(collection string) error {
	existing, err := s.meta(context.Background(), metaCollection)
	if err != nil {
		return err
	}
	if existing == "" {
		return s.setMeta(context.Background(), s.db, metaCollection, collection)
	}
	if collection != "" && existing != collection {
		return fmt.Errorf("%w: %s holds collection %q, not %q",
			domain.ErrInvalidConfig, s.path, existing, collection)
	}
	return nil
}

func (s *Store) meta(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM collection_meta WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", key, err)
	}
	return value, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) setMeta(ctx context.Context, db execer, key, value string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO collection_meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// Upsert inserts or replaces entries in one transaction. All embeddings in
// a collection must share a dimension.
func (s *Store) Upsert(ctx context.Context, entries []domain.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}

	dims, err := s.dimensions(ctx)
	if err != nil {
		return err
	}
	if dims == 0 {
		dims = len(entries[0].Embedding)
	}
	if dims == 0 {
		return fmt.Errorf("%w: empty embedding", domain.ErrInvalidInput)
	}
	for _, e := range entries {
		if e.Chunk.ID == "" {
			return fmt.Errorf("%w: chunk without id", domain.ErrInvalidInput)
		}
		if len(e.Embedding) != dims {
			return fmt.Errorf("%w: embedding has %d dimensions, collection uses %d",
				domain.ErrInvalidInput, len(e.Embedding), dims)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var seq int64
	if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(seq), 0) FROM chunks").Scan(&seq); err != nil {
		return fmt.Errorf("reading sequence: %w", err)
	}

	// Replacements keep their original seq so result order stays stable.
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, seq, content, file, ticker, year, page, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			content = excluded.content,
			file = excluded.file,
			ticker = excluded.ticker,
			year = excluded.year,
			page = excluded.page,
			embedding = excluded.embedding
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		seq++
		c := e.Chunk
		if _, err := stmt.ExecContext(ctx, c.ID, seq, c.Text, c.SourceID, c.Entity, c.Period, c.Page,
			float32SliceToBytes(e.Embedding)); err != nil {
			return fmt.Errorf("saving chunk: %w", err)
		}
	}

	if err := s.setMeta(ctx, tx, metaDimensions, strconv.Itoa(dims)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	s.invalidate()
	return nil
}

func (s *Store) dimensions(ctx context.Context) (int, error) {
	v, err := s.meta(ctx, metaDimensions)
	if err != nil || v == "" {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing stored dimensions %q: %w", v, err)
	}
	return n, nil
}

// Search returns the k entries most similar to query.
func (s *Store) Search(ctx context.Context, query []float32, k int) ([]domain.ScoredChunk, error) {
	entries, err := s.entries(ctx)
	if err != nil {
		return nil, err
	}
	if err := similarity.CheckQuery(entries, query); err != nil {
		return nil, err
	}
	return similarity.TopK(entries, query, k), nil
}

// entries returns the cached table contents, loading them if needed.
func (s *Store) entries(ctx context.Context) ([]domain.IndexEntry, error) {
	s.mu.RLock()
	cached := s.cache
	s.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, content, file, ticker, year, page, embedding
		FROM chunks ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	loaded := make([]domain.IndexEntry, 0)
	for rows.Next() {
		var e domain.IndexEntry
		var blob []byte
		if err := rows.Scan(&e.Chunk.ID, &e.Chunk.Text, &e.Chunk.SourceID, &e.Chunk.Entity,
			&e.Chunk.Period, &e.Chunk.Page, &blob); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		e.Embedding = bytesToFloat32Slice(blob)
		loaded = append(loaded, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	s.mu.Lock()
	s.cache = loaded
	s.mu.Unlock()
	return loaded, nil
}

func (s *Store) invalidate() {
	s.mu.Lock()
	s.cache = nil
	s.mu.Unlock()
}

// Count returns the number of stored entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return n, nil
}

// Reset removes every entry and forgets the embedding dimension.
func (s *Store) Reset(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks"); err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM collection_meta WHERE key = ?", metaDimensions); err != nil {
		return fmt.Errorf("clearing dimensions: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	s.invalidate()
	return nil
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
