package store

// MemoryRecord represents a durably stored semantic fact: raw text plus its
// embedding vector, keyed by a UUID assigned at write time. Records are
// immutable once written; re-storing the same text creates a new id.
type MemoryRecord struct {
	ID        string
	Text      string
	Vector    []float32
	CreatedTs int64
}

// MemoryVector is the id/vector projection used by similarity scans.
type MemoryVector struct {
	ID     string
	Vector []float32
}

// MemoryRecordWithScore pairs a record with its similarity score.
type MemoryRecordWithScore struct {
	Record *MemoryRecord
	Score  float64
}

// FindMemoryRecord specifies the conditions for finding memory records.
type FindMemoryRecord struct {
	ID    *string
	Limit int
}

// System setting keys recorded alongside the data tables.
const (
	// SettingSchemaVersion guards the durable layout.
	SettingSchemaVersion = "schema_version"
	// SettingVectorDim records the embedding dimension the store was created
	// with. Opening the store with a different dimension is refused.
	SettingVectorDim = "vector_dim"
)

// SchemaVersion is the current durable layout version.
const SchemaVersion = "1"
