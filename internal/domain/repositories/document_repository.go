package repositories

import (
	"context"

	"github.com/ingres-rag/groundwater-backend/internal/domain/entities"
)

// DocumentSearchRepository is the semantic index over document passages.
// Search takes a query embedding produced by the same embedder the index was
// built with and returns the k nearest chunks by cosine similarity.
type DocumentSearchRepository interface {
	Search(ctx context.Context, embedding []float32, k int) ([]entities.DocumentChunk, error)
	Size(ctx context.Context) (int, error)

	// Dimension reports the embedding dimensionality of the live index so
	// startup can reject a mismatched query-time embedder.
	Dimension(ctx context.Context) (int, error)
}

// DocumentSourceRepository is the system of record the index is rebuilt
// from. Chunks come back without scores; scoring happens at query time.
type DocumentSourceRepository interface {
	ListChunks(ctx context.Context) ([]entities.DocumentChunk, error)
}

// DocumentIndexRebuilder replaces the index contents as one atomic swap: the
// replacement is built fully off to the side, then installed wholesale.
// In-flight searches keep reading the prior snapshot to completion.
type DocumentIndexRebuilder interface {
	Rebuild(ctx context.Context, chunks []entities.DocumentChunk, embeddings [][]float32) error
}
