package search

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync/atomic"

	"github.com/ingres-rag/groundwater-backend/internal/domain/entities"
	"github.com/ingres-rag/groundwater-backend/internal/domain/repositories"
)

// MemoryIndex is an in-process document index used when Typesense is not
// available, and in tests. The entire index lives in one immutable snapshot
// behind an atomic pointer: a search dereferences the pointer exactly once,
// and Rebuild installs a fully built replacement, so no reader ever sees a
// mix of old and new contents.
type MemoryIndex struct {
	dimension int
	snapshot  atomic.Pointer[indexSnapshot]
}

type indexSnapshot struct {
	chunks     []entities.DocumentChunk
	embeddings [][]float32
}

var _ repositories.DocumentSearchRepository = (*MemoryIndex)(nil)
var _ repositories.DocumentIndexRebuilder = (*MemoryIndex)(nil)

// NewMemoryIndex creates an empty in-memory index.
func NewMemoryIndex(dimension int) *MemoryIndex {
	idx := &MemoryIndex{dimension: dimension}
	idx.snapshot.Store(&indexSnapshot{})
	return idx
}

// Search returns the k most similar chunks by cosine similarity.
func (m *MemoryIndex) Search(ctx context.Context, embedding []float32, k int) ([]entities.DocumentChunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, nil
	}

	snap := m.snapshot.Load()
	if len(snap.chunks) == 0 {
		return nil, nil
	}

	type scored struct {
		idx   int
		score float64
	}
	scoredChunks := make([]scored, 0, len(snap.chunks))
	for i := range snap.chunks {
		scoredChunks = append(scoredChunks, scored{idx: i, score: cosineSimilarity(embedding, snap.embeddings[i])})
	}
	sort.SliceStable(scoredChunks, func(i, j int) bool {
		return scoredChunks[i].score > scoredChunks[j].score
	})

	if k > len(scoredChunks) {
		k = len(scoredChunks)
	}
	out := make([]entities.DocumentChunk, 0, k)
	for _, s := range scoredChunks[:k] {
		chunk := snap.chunks[s.idx]
		chunk.Score = clampUnit(s.score)
		out = append(out, chunk)
	}
	return out, nil
}

// Size returns the number of indexed chunks.
func (m *MemoryIndex) Size(ctx context.Context) (int, error) {
	return len(m.snapshot.Load().chunks), nil
}

// Dimension returns the embedding dimensionality the index was built for.
func (m *MemoryIndex) Dimension(ctx context.Context) (int, error) {
	return m.dimension, nil
}

// Rebuild atomically replaces the index contents.
func (m *MemoryIndex) Rebuild(ctx context.Context, chunks []entities.DocumentChunk, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("chunk/embedding count mismatch: %d vs %d", len(chunks), len(embeddings))
	}
	for i, emb := range embeddings {
		if len(emb) != m.dimension {
			return fmt.Errorf("embedding %d has dimension %d, index expects %d", i, len(emb), m.dimension)
		}
	}

	snap := &indexSnapshot{
		chunks:     append([]entities.DocumentChunk(nil), chunks...),
		embeddings: append([][]float32(nil), embeddings...),
	}
	m.snapshot.Store(snap)
	return nil
}

func cosineSimilarity(a, b []float32) float64 {
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

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
