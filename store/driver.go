package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that a database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	// CreateMemoryRecord durably writes the text and vector under the given
	// id. The write is committed (flushed) before the call returns.
	CreateMemoryRecord(ctx context.Context, create *MemoryRecord) (*MemoryRecord, error)

	// GetMemoryRecord returns the matching record, or nil if absent.
	GetMemoryRecord(ctx context.Context, find *FindMemoryRecord) (*MemoryRecord, error)

	// ListMemoryVectors returns every stored id/vector pair in insertion
	// order. Used by the portable brute-force similarity scan.
	ListMemoryVectors(ctx context.Context) ([]*MemoryVector, error)

	// CountMemoryRecords returns the number of stored records.
	CountMemoryRecords(ctx context.Context) (int64, error)

	// GetSystemSetting returns the value for a setting key, or "" if unset.
	GetSystemSetting(ctx context.Context, key string) (string, error)

	// UpsertSystemSetting writes a setting key/value pair.
	UpsertSystemSetting(ctx context.Context, key, value string) error
}

// VectorSearcher is an optional driver capability. Drivers backed by an
// engine with native similarity search (pgvector) implement it so the scan
// is pushed down instead of ranked in Go.
type VectorSearcher interface {
	SearchMemoryRecords(ctx context.Context, vector []float32, limit int) ([]*MemoryRecordWithScore, error)
}
