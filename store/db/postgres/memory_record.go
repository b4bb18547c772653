package postgres

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pgvector/pgvector-go"
	"github.com/pkg/errors"

	"github.com/relaymind/recall/store"
)

// CreateMemoryRecord writes the text and vector rows in one transaction.
func (d *DB) CreateMemoryRecord(ctx context.Context, create *store.MemoryRecord) (*store.MemoryRecord, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO memory_text (id, content, created_ts) VALUES ("+placeholders(3)+")",
		create.ID, create.Text, create.CreatedTs,
	); err != nil {
		return nil, errors.Wrap(err, "failed to insert memory text")
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO memory_vector (id, embedding) VALUES ("+placeholders(2)+")",
		create.ID, pgvector.NewVector(create.Vector),
	); err != nil {
		return nil, errors.Wrap(err, "failed to insert memory vector")
	}
	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "failed to commit transaction")
	}
	return create, nil
}

// GetMemoryRecord returns the matching record, or nil if absent.
func (d *DB) GetMemoryRecord(ctx context.Context, find *store.FindMemoryRecord) (*store.MemoryRecord, error) {
	where, args := []string{"1 = 1"}, []any{}
	if find.ID != nil {
		where, args = append(where, "t.id = "+placeholder(len(args)+1)), append(args, *find.ID)
	}

	query := `
		SELECT t.id, t.content, t.created_ts, v.embedding
		FROM memory_text t
		INNER JOIN memory_vector v ON t.id = v.id
		WHERE ` + strings.Join(where, " AND ") + `
		LIMIT 1
	`

	record := &store.MemoryRecord{}
	var vector pgvector.Vector
	err := d.db.QueryRowContext(ctx, query, args...).Scan(&record.ID, &record.Text, &record.CreatedTs, &vector)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get memory record")
	}
	record.Vector = vector.Slice()
	return record, nil
}

// ListMemoryVectors returns every id/vector pair in insertion order.
func (d *DB) ListMemoryVectors(ctx context.Context) ([]*store.MemoryVector, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT v.id, v.embedding
		FROM memory_vector v
		INNER JOIN memory_text t ON v.id = t.id
		ORDER BY t.created_ts ASC, t.id ASC
	`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list memory vectors")
	}
	defer rows.Close()

	list := []*store.MemoryVector{}
	for rows.Next() {
		var id string
		var vector pgvector.Vector
		if err := rows.Scan(&id, &vector); err != nil {
			return nil, errors.Wrap(err, "failed to scan memory vector")
		}
		list = append(list, &store.MemoryVector{ID: id, Vector: vector.Slice()})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// CountMemoryRecords returns the number of stored records.
func (d *DB) CountMemoryRecords(ctx context.Context) (int64, error) {
	var count int64
	if err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM memory_text").Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count memory records")
	}
	return count, nil
}

// SearchMemoryRecords pushes cosine ranking down to pgvector. The <=>
// operator computes cosine distance, so similarity is 1 - distance and
// ordering by distance ascending yields most similar first.
func (d *DB) SearchMemoryRecords(ctx context.Context, vector []float32, limit int) ([]*store.MemoryRecordWithScore, error) {
	query := `
		SELECT
			t.id, t.content, t.created_ts,
			1 - (v.embedding <=> ` + placeholder(1) + `) AS score
		FROM memory_text t
		INNER JOIN memory_vector v ON t.id = v.id
		ORDER BY v.embedding <=> ` + placeholder(2) + `, t.created_ts ASC
		LIMIT ` + placeholder(3)

	pgv := pgvector.NewVector(vector)
	rows, err := d.db.QueryContext(ctx, query, pgv, pgv, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to search memory records")
	}
	defer rows.Close()

	results := []*store.MemoryRecordWithScore{}
	for rows.Next() {
		record := &store.MemoryRecord{}
		var score float64
		if err := rows.Scan(&record.ID, &record.Text, &record.CreatedTs, &score); err != nil {
			return nil, errors.Wrap(err, "failed to scan memory record")
		}
		results = append(results, &store.MemoryRecordWithScore{Record: record, Score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
