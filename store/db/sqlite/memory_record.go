package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"

	recallerrors "github.com/relaymind/recall/internal/errors"
	"github.com/relaymind/recall/store"
)

// CreateMemoryRecord writes the text and vector rows in one transaction so a
// record is either fully present or absent.
func (d *DB) CreateMemoryRecord(ctx context.Context, create *store.MemoryRecord) (*store.MemoryRecord, error) {
	blob, err := encodeVector(create.Vector)
	if err != nil {
		return nil, err
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO memory_text (id, content, created_ts) VALUES (?, ?, ?)",
		create.ID, create.Text, create.CreatedTs,
	); err != nil {
		return nil, errors.Wrap(err, "failed to insert memory text")
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO memory_vector (id, embedding) VALUES (?, ?)",
		create.ID, blob,
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
		where, args = append(where, "t.id = ?"), append(args, *find.ID)
	}

	query := `
		SELECT t.id, t.content, t.created_ts, v.embedding
		FROM memory_text t
		INNER JOIN memory_vector v ON t.id = v.id
		WHERE ` + strings.Join(where, " AND ") + `
		LIMIT 1
	`

	record := &store.MemoryRecord{}
	var blob []byte
	err := d.db.QueryRowContext(ctx, query, args...).Scan(&record.ID, &record.Text, &record.CreatedTs, &blob)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get memory record")
	}
	// SQLite does not enforce text encoding, so a corrupted row can hand
	// back bytes that are not UTF-8.
	if !utf8.ValidString(record.Text) {
		return nil, recallerrors.DecodeFailed("memory text is not valid UTF-8", nil)
	}

	record.Vector, err = decodeVector(blob)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// ListMemoryVectors streams every id/vector pair in insertion order.
func (d *DB) ListMemoryVectors(ctx context.Context) ([]*store.MemoryVector, error) {
	rows, err := d.db.QueryContext(ctx, "SELECT id, embedding FROM memory_vector ORDER BY rowid ASC")
	if err != nil {
		return nil, errors.Wrap(err, "failed to list memory vectors")
	}
	defer rows.Close()

	list := []*store.MemoryVector{}
	for rows.Next() {
		var id string
		var blob []byte
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, errors.Wrap(err, "failed to scan memory vector")
		}
		vector, err := decodeVector(blob)
		if err != nil {
			return nil, err
		}
		list = append(list, &store.MemoryVector{ID: id, Vector: vector})
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

// encodeVector serializes a float32 vector as little-endian bytes, 4 bytes
// per component.
func encodeVector(vector []float32) ([]byte, error) {
	if len(vector) == 0 {
		return nil, recallerrors.EncodeFailed("cannot encode empty vector", nil)
	}
	buf := make([]byte, 4*len(vector))
	for i, v := range vector {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf, nil
}

// decodeVector deserializes little-endian float32 bytes. A length that is not
// a multiple of 4 means the stored blob is corrupted.
func decodeVector(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, recallerrors.InvalidData("vector blob length is not a multiple of 4")
	}
	vector := make([]float32, len(blob)/4)
	for i := range vector {
		vector[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return vector, nil
}
