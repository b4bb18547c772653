package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	recallerrors "github.com/relaymind/recall/internal/errors"
	"github.com/relaymind/recall/internal/profile"
	"github.com/relaymind/recall/store"
)

func newTestDB(t *testing.T) store.Driver {
	t.Helper()
	p := &profile.Profile{
		Mode:      "demo",
		Driver:    "sqlite",
		DSN:       filepath.Join(t.TempDir(), "recall_test.db"),
		VectorDim: 4,
	}
	driver, err := NewDB(p)
	require.NoError(t, err)
	t.Cleanup(func() { driver.Close() })
	return driver
}

func TestVectorCodec(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		original := []float32{1.5, -2.25, 0, 3.125}
		blob, err := encodeVector(original)
		require.NoError(t, err)
		assert.Len(t, blob, 16)

		decoded, err := decodeVector(blob)
		require.NoError(t, err)
		assert.Equal(t, original, decoded)
	})

	t.Run("CorruptLengthIsInvalidData", func(t *testing.T) {
		_, err := decodeVector([]byte{1, 2, 3})
		require.Error(t, err)
		assert.True(t, recallerrors.IsCode(err, recallerrors.ErrCodeInvalidData))
	})

	t.Run("EmptyVectorRejected", func(t *testing.T) {
		_, err := encodeVector(nil)
		require.Error(t, err)
		assert.True(t, recallerrors.IsCode(err, recallerrors.ErrCodeEncodeFailed))
	})
}

func TestMemoryRecordCRUD(t *testing.T) {
	ctx := context.Background()
	driver := newTestDB(t)

	created, err := driver.CreateMemoryRecord(ctx, &store.MemoryRecord{
		ID:        "rec-1",
		Text:      "stored fact",
		Vector:    []float32{0.1, 0.2, 0.3, 0.4},
		CreatedTs: 1700000000,
	})
	require.NoError(t, err)

	t.Run("Get", func(t *testing.T) {
		found, err := driver.GetMemoryRecord(ctx, &store.FindMemoryRecord{ID: &created.ID})
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "stored fact", found.Text)
		assert.Equal(t, []float32{0.1, 0.2, 0.3, 0.4}, found.Vector)
	})

	t.Run("GetMissingReturnsNil", func(t *testing.T) {
		missing := "absent"
		found, err := driver.GetMemoryRecord(ctx, &store.FindMemoryRecord{ID: &missing})
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("ListVectorsInInsertionOrder", func(t *testing.T) {
		_, err := driver.CreateMemoryRecord(ctx, &store.MemoryRecord{
			ID:     "rec-2",
			Text:   "second",
			Vector: []float32{1, 1, 1, 1},
		})
		require.NoError(t, err)

		vectors, err := driver.ListMemoryVectors(ctx)
		require.NoError(t, err)
		require.Len(t, vectors, 2)
		assert.Equal(t, "rec-1", vectors[0].ID)
		assert.Equal(t, "rec-2", vectors[1].ID)
	})

	t.Run("Count", func(t *testing.T) {
		count, err := driver.CountMemoryRecords(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 2, count)
	})

	t.Run("DuplicateIDFails", func(t *testing.T) {
		_, err := driver.CreateMemoryRecord(ctx, &store.MemoryRecord{
			ID:     "rec-1",
			Text:   "dup",
			Vector: []float32{0, 0, 0, 0},
		})
		assert.Error(t, err)
	})

	t.Run("CorruptTextIsDecodeFailed", func(t *testing.T) {
		// Bypass the driver to plant a row whose content bytes are not UTF-8.
		_, err := driver.GetDB().ExecContext(ctx,
			"INSERT INTO memory_text (id, content, created_ts) VALUES (?, ?, ?)",
			"rec-bad", []byte{0xff, 0xfe, 0x01}, 1700000000)
		require.NoError(t, err)
		blob, err := encodeVector([]float32{0, 0, 0, 1})
		require.NoError(t, err)
		_, err = driver.GetDB().ExecContext(ctx,
			"INSERT INTO memory_vector (id, embedding) VALUES (?, ?)", "rec-bad", blob)
		require.NoError(t, err)

		bad := "rec-bad"
		_, err = driver.GetMemoryRecord(ctx, &store.FindMemoryRecord{ID: &bad})
		require.Error(t, err)
		assert.True(t, recallerrors.IsCode(err, recallerrors.ErrCodeDecodeFailed))
	})
}

func TestSystemSettings(t *testing.T) {
	ctx := context.Background()
	driver := newTestDB(t)

	value, err := driver.GetSystemSetting(ctx, "schema_version")
	require.NoError(t, err)
	assert.Empty(t, value)

	require.NoError(t, driver.UpsertSystemSetting(ctx, "schema_version", "1"))
	require.NoError(t, driver.UpsertSystemSetting(ctx, "schema_version", "2"))

	value, err = driver.GetSystemSetting(ctx, "schema_version")
	require.NoError(t, err)
	assert.Equal(t, "2", value)
}
