package domain

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// EmbeddingSpace identifies the vector space produced by one embedding
// model/version. Vectors from different spaces are not comparable.
type EmbeddingSpace string

// NewEmbeddingSpace builds the canonical space id "<provider>/<model>@<dims>".
func NewEmbeddingSpace(provider AIProvider, model string, dimensions int) EmbeddingSpace {
	return EmbeddingSpace(fmt.Sprintf("%s/%s@%d", provider, model, dimensions))
}

// String returns the string representation.
func (s EmbeddingSpace) String() string {
	return string(s)
}

// VectorRecord is one stored chunk vector.
// Keyed by (ProjectID, DocumentID, ChunkID, Space).
type VectorRecord struct {
	ProjectID  string
	DocumentID string
	ChunkID    string

	// Position is the chunk's sequence index within its document.
	Position int

	Vector []float32
	Text   string
	Space  EmbeddingSpace

	// DocumentCreatedAt is copied from the owning document for tie-breaking.
	DocumentCreatedAt time.Time
}

// ChunkResult is one ranked retrieval hit.
type ChunkResult struct {
	DocumentID        string
	ChunkID           string
	Position          int
	Text              string
	Score             float64
	DocumentCreatedAt time.Time
}

// RankLess orders results by descending score, then ascending chunk
// position, then earliest document creation time. Document and chunk
// ids settle any remaining tie.
func RankLess(a, b ChunkResult) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.Position != b.Position {
		return a.Position < b.Position
	}
	if !a.DocumentCreatedAt.Equal(b.DocumentCreatedAt) {
		return a.DocumentCreatedAt.Before(b.DocumentCreatedAt)
	}
	if a.DocumentID != b.DocumentID {
		return a.DocumentID < b.DocumentID
	}
	return a.ChunkID < b.ChunkID
}

// RankResults sorts results in place and truncates to k (k <= 0 keeps all).
func RankResults(results []ChunkResult, k int) []ChunkResult {
	sort.SliceStable(results, func(i, j int) bool {
		return RankLess(results[i], results[j])
	})
	if k > 0 && len(results) > k {
		results = results[:k]
	}
	return results
}

// CosineSimilarity returns the cosine of the angle between a and b.
// Mismatched lengths or zero vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
