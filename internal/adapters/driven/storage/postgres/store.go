// Package postgres provides a driven.VectorStore on PostgreSQL with the
// pgvector extension. Ranking happens in the database via the cosine
// distance operator.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/pgvector/pgvector-go"

	"github.com/custodia-labs/finrag/internal/core/domain"
	"github.com/custodia-labs/finrag/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

var identifier = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

// Store keeps one collection per table.
type Store struct {
	db    *sql.DB
	table string
}

// NewStore connects to dsn and ensures the collection table exists.
func NewStore(ctx context.Context, dsn, collection string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: postgres dsn is required", domain.ErrInvalidConfig)
	}
	if !identifier.MatchString(collection) {
		return nil, fmt.Errorf("%w: collection %q is not a valid table name", domain.ErrInvalidConfig, collection)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	}

	s := &Store{db: db, table: collection}
	if err := s.createTable(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) createTable(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id        TEXT PRIMARY KEY,
			seq       BIGSERIAL,
			content   TEXT NOT NULL,
			file      TEXT NOT NULL,
			ticker    TEXT NOT NULL,
			year      TEXT NOT NULL,
			page      INTEGER NOT NULL,
			embedding vector NOT NULL
		)`, s.table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_ticker_year ON %s (ticker, year)`, s.table, s.table),
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	return nil
}

// Upsert inserts or replaces entries in one transaction.
func (s *Store) Upsert(ctx context.Context, entries []domain.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, content, file, ticker, year, page, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			content = EXCLUDED.content,
			file = EXCLUDED.file,
			ticker = EXCLUDED.ticker,
			year = EXCLUDED.year,
			page = EXCLUDED.page,
			embedding = EXCLUDED.embedding
	`, s.table))
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if e.Chunk.ID == "" || len(e.Embedding) == 0 {
			return fmt.Errorf("%w: entry needs an id and an embedding", domain.ErrInvalidInput)
		}
		c := e.Chunk
		if _, err := stmt.ExecContext(ctx, c.ID, c.Text, c.SourceID, c.Entity, c.Period, c.Page,
			pgvector.NewVector(e.Embedding)); err != nil {
			return fmt.Errorf("saving chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Search returns the k nearest entries by cosine distance.
func (s *Store) Search(ctx context.Context, query []float32, k int) ([]domain.ScoredChunk, error) {
	if k <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, content, file, ticker, year, page, 1 - (embedding <=> $1) AS score
		FROM %s
		ORDER BY embedding <=> $1, seq
		LIMIT $2
	`, s.table), pgvector.NewVector(query), k)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var results []domain.ScoredChunk
	for rows.Next() {
		var r domain.ScoredChunk
		var score sql.NullFloat64
		if err := rows.Scan(&r.Chunk.ID, &r.Chunk.Text, &r.Chunk.SourceID, &r.Chunk.Entity,
			&r.Chunk.Period, &r.Chunk.Page, &score); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		r.Score = score.Float64
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return results, nil
}

// Count returns the number of stored entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, s.table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return n, nil
}

// Reset removes every entry.
func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(`TRUNCATE %s`, s.table)); err != nil {
		return fmt.Errorf("truncating chunks: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}
