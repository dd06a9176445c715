// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO. It implements multiple store interfaces through a single database connection:
//
//   - ProjectStore: Project persistence
//   - DocumentStore: Document records and indexing status
//   - MessageStore: Conversation history
//   - VectorStore: Project-scoped chunk vectors with brute-force cosine ranking
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.corpus/data/corpus.db
//
// # Thread Safety
//
// All operations are thread-safe. Document upserts run in a single transaction,
// and WAL mode gives readers a consistent snapshot, so a query never observes a
// half-replaced chunk set.
package sqlite
