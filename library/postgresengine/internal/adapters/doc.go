// Package adapters provides database adapter implementations for the
// PostgreSQL library engine.
//
// This package implements the adapter pattern to support multiple PostgreSQL
// database libraries: pgxpool.Pool, sql.DB, and sqlx.DB. All adapters provide
// equivalent functionality through a common DBAdapter interface, including
// transactional sessions with begin/commit/rollback, allowing the engine to
// work seamlessly with any supported database connection type.
package adapters
