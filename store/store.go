// Package store provides durable storage for semantic memory records.
//
// The Store is a facade over a database Driver. It assigns record ids,
// maintains a small LRU cache for hot text lookups, and ranks similarity
// queries either natively (drivers implementing VectorSearcher) or with a
// portable brute-force cosine scan.
package store

import (
	"context"
	stderrors "errors"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/relaymind/recall/internal/errors"
	"github.com/relaymind/recall/internal/profile"
	"github.com/relaymind/recall/store/cache"
)

// Store provides database access to all raw objects.
type Store struct {
	profile   *profile.Profile
	driver    Driver
	textCache *cache.LRUCache
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:    driver,
		profile:   profile,
		textCache: cache.NewLRUCache(1024, 10*time.Minute),
	}
}

// Init verifies the durable layout and records the schema version and vector
// dimension on first open. Opening an existing store with a different
// embedding dimension is refused.
func (s *Store) Init(ctx context.Context) error {
	dim, err := s.driver.GetSystemSetting(ctx, SettingVectorDim)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeIOFailure, "failed to read vector dimension setting")
	}
	if dim == "" {
		if err := s.driver.UpsertSystemSetting(ctx, SettingSchemaVersion, SchemaVersion); err != nil {
			return errors.Wrap(err, errors.ErrCodeIOFailure, "failed to record schema version")
		}
		if err := s.driver.UpsertSystemSetting(ctx, SettingVectorDim, strconv.Itoa(s.profile.VectorDim)); err != nil {
			return errors.Wrap(err, errors.ErrCodeIOFailure, "failed to record vector dimension")
		}
		return nil
	}
	stored, err := strconv.Atoi(dim)
	if err != nil {
		return errors.InvalidData("vector dimension setting is not a number")
	}
	if stored != s.profile.VectorDim {
		return errors.DimensionMismatch(stored, s.profile.VectorDim)
	}
	return nil
}

// Close closes the underlying driver.
func (s *Store) Close() error {
	return s.driver.Close()
}

// GetDriver returns the underlying driver.
func (s *Store) GetDriver() Driver {
	return s.driver
}

// CreateMemoryRecord durably stores a text with its embedding vector and
// returns the stored record with its assigned id.
func (s *Store) CreateMemoryRecord(ctx context.Context, text string, vector []float32) (*MemoryRecord, error) {
	create := &MemoryRecord{
		ID:        uuid.New().String(),
		Text:      text,
		Vector:    vector,
		CreatedTs: time.Now().Unix(),
	}
	record, err := s.driver.CreateMemoryRecord(ctx, create)
	if err != nil {
		return nil, asStoreError(err, "failed to create memory record")
	}
	s.textCache.Set(record.ID, record.Text)
	return record, nil
}

// GetMemoryText returns the stored text for the given id. A missing id is a
// typed NOT_FOUND error, distinct from storage failures.
func (s *Store) GetMemoryText(ctx context.Context, id string) (string, error) {
	if text, ok := s.textCache.Get(id); ok {
		return text, nil
	}

	record, err := s.driver.GetMemoryRecord(ctx, &FindMemoryRecord{ID: &id})
	if err != nil {
		return "", asStoreError(err, "failed to get memory record")
	}
	if record == nil {
		return "", errors.NotFound(id)
	}

	s.textCache.Set(record.ID, record.Text)
	return record.Text, nil
}

// SearchMemoryRecords returns up to limit records ranked by cosine similarity
// to the query vector, most similar first. Ties keep insertion order.
func (s *Store) SearchMemoryRecords(ctx context.Context, vector []float32, limit int) ([]*MemoryRecordWithScore, error) {
	if limit <= 0 {
		return []*MemoryRecordWithScore{}, nil
	}

	// A zero-norm query defines no direction; skip native pushdown so every
	// score comes out 0 from the portable scan instead of NaN distances.
	if searcher, ok := s.driver.(VectorSearcher); ok && !isZeroVector(vector) {
		results, err := searcher.SearchMemoryRecords(ctx, vector, limit)
		if err == nil {
			return results, nil
		}
		slog.Warn("native vector search failed, falling back to scan", "error", err)
	}

	vectors, err := s.driver.ListMemoryVectors(ctx)
	if err != nil {
		return nil, asStoreError(err, "failed to list memory vectors")
	}

	scored := make([]*MemoryRecordWithScore, 0, len(vectors))
	for _, v := range vectors {
		scored = append(scored, &MemoryRecordWithScore{
			Record: &MemoryRecord{ID: v.ID, Vector: v.Vector},
			Score:  CosineSimilarity(vector, v.Vector),
		})
	}
	// Stable sort so equal scores keep insertion order.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}

	// Hydrate texts for the winners only.
	for _, r := range scored {
		text, err := s.GetMemoryText(ctx, r.Record.ID)
		if err != nil {
			return nil, err
		}
		r.Record.Text = text
	}
	return scored, nil
}

// CountMemoryRecords returns the number of stored records.
func (s *Store) CountMemoryRecords(ctx context.Context) (int64, error) {
	count, err := s.driver.CountMemoryRecords(ctx)
	if err != nil {
		return 0, asStoreError(err, "failed to count memory records")
	}
	return count, nil
}

func isZeroVector(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

// asStoreError passes typed store errors through unchanged and wraps anything
// else as an IO failure.
func asStoreError(err error, msg string) error {
	var serr *errors.StoreError
	if stderrors.As(err, &serr) {
		return err
	}
	return errors.Wrap(err, errors.ErrCodeIOFailure, msg)
}

// CosineSimilarity computes the cosine similarity between two vectors.
// A zero-norm vector on either side yields 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
