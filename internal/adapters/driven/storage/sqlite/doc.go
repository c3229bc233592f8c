// Package sqlite provides a persistent driven.VectorStore backed by SQLite.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. Chunks and their embeddings live in a single table;
// embeddings are stored as little-endian float32 blobs.
//
// # Schema
//
// The schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql
// files.
//
// # Data Location
//
// The database is stored at <persist dir>/index.db. Opening an existing file
// attaches to the index built by an earlier run.
//
// # Search
//
// Similarity search is brute-force cosine over an in-memory copy of the
// table, loaded on first query and dropped on every write.
package sqlite
