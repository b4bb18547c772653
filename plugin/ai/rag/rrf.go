// Package rag fuses retrieval results from multiple sources.
package rag

import (
	"sort"
)

// RRFDampingFactor is the rank damping constant. k = 60 is a common default.
const RRFDampingFactor = 60

// SearchResult is one retrieved snippet with its fused score.
type SearchResult struct {
	ID      string
	Content string
	Score   float64
	Source  string // "vector", "keyword", "fused"
}

// FuseWithRRF fuses ranked result lists using Reciprocal Rank Fusion.
// RRF(d) = sum over lists of weight_i / (k + rank_i(d)). Results appearing
// in several lists accumulate score; ties keep first-list order.
func FuseWithRRF(resultLists [][]*SearchResult, weights []float64) []*SearchResult {
	if len(resultLists) == 0 {
		return nil
	}
	if len(resultLists) != len(weights) {
		// Fallback to equal weights
		weights = make([]float64, len(resultLists))
		equalWeight := 1.0 / float64(len(resultLists))
		for i := range weights {
			weights[i] = equalWeight
		}
	}

	scoreMap := make(map[string]float64)
	resultMap := make(map[string]*SearchResult)
	order := []string{}

	for listIdx, results := range resultLists {
		weight := weights[listIdx]
		for rank, result := range results {
			if _, exists := resultMap[result.ID]; !exists {
				resultMap[result.ID] = result
				order = append(order, result.ID)
			}
			scoreMap[result.ID] += weight / float64(RRFDampingFactor+rank+1)
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return scoreMap[order[i]] > scoreMap[order[j]]
	})

	results := make([]*SearchResult, len(order))
	for i, id := range order {
		source := resultMap[id]
		results[i] = &SearchResult{
			ID:      id,
			Content: source.Content,
			Score:   scoreMap[id],
			Source:  "fused",
		}
	}
	return results
}
