package search_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ingres-rag/groundwater-backend/internal/adapters/search"
	"github.com/ingres-rag/groundwater-backend/internal/domain/entities"
)

func unitVec(dim, hot int) []float32 {
	v := make([]float32, dim)
	v[hot] = 1
	return v
}

func TestMemoryIndex_EmptySearch(t *testing.T) {
	index := search.NewMemoryIndex(4)

	chunks, err := index.Search(context.Background(), unitVec(4, 0), 5)

	require.NoError(t, err)
	assert.Empty(t, chunks)

	size, err := index.Size(context.Background())
	require.NoError(t, err)
	assert.Zero(t, size)
}

func TestMemoryIndex_RanksByCosineSimilarity(t *testing.T) {
	index := search.NewMemoryIndex(4)

	chunks := []entities.DocumentChunk{
		{Content: "exact", Source: "a.pdf", SourceType: "report"},
		{Content: "orthogonal", Source: "b.pdf", SourceType: "report"},
		{Content: "close", Source: "c.pdf", SourceType: "report"},
	}
	embeddings := [][]float32{
		unitVec(4, 0),
		unitVec(4, 1),
		{0.9, 0.1, 0, 0},
	}
	require.NoError(t, index.Rebuild(context.Background(), chunks, embeddings))

	results, err := index.Search(context.Background(), unitVec(4, 0), 2)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "exact", results[0].Content)
	assert.Equal(t, "close", results[1].Content)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestMemoryIndex_RebuildRejectsDimensionMismatch(t *testing.T) {
	index := search.NewMemoryIndex(4)

	err := index.Rebuild(context.Background(), []entities.DocumentChunk{{Content: "x"}}, [][]float32{make([]float32, 8)})

	assert.Error(t, err)
}

func TestMemoryIndex_RebuildReplacesWholesale(t *testing.T) {
	index := search.NewMemoryIndex(2)

	require.NoError(t, index.Rebuild(context.Background(),
		[]entities.DocumentChunk{{Content: "old"}},
		[][]float32{unitVec(2, 0)}))
	require.NoError(t, index.Rebuild(context.Background(),
		[]entities.DocumentChunk{{Content: "new one"}, {Content: "new two"}},
		[][]float32{unitVec(2, 0), unitVec(2, 1)}))

	results, err := index.Search(context.Background(), unitVec(2, 0), 10)
	require.NoError(t, err)

	for _, chunk := range results {
		assert.NotEqual(t, "old", chunk.Content)
	}
	size, err := index.Size(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, size)
}

// Concurrent searches during rebuilds must always observe a complete
// snapshot: every result set comes entirely from one generation.
func TestMemoryIndex_SwapIsAtomicUnderConcurrency(t *testing.T) {
	index := search.NewMemoryIndex(2)

	generation := func(label string, n int) ([]entities.DocumentChunk, [][]float32) {
		chunks := make([]entities.DocumentChunk, n)
		embeddings := make([][]float32, n)
		for i := range chunks {
			chunks[i] = entities.DocumentChunk{Content: label, Source: label + ".pdf", SourceType: "report"}
			embeddings[i] = unitVec(2, 0)
		}
		return chunks, embeddings
	}

	chunksA, embA := generation("gen-a", 3)
	chunksB, embB := generation("gen-b", 5)
	require.NoError(t, index.Rebuild(context.Background(), chunksA, embA))

	var wg sync.WaitGroup
	stop := make(chan struct{})
	errs := make(chan string, 128)

	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				results, err := index.Search(context.Background(), unitVec(2, 0), 10)
				if err != nil {
					errs <- err.Error()
					return
				}
				if len(results) == 0 {
					errs <- "observed empty index mid-swap"
					return
				}
				label := results[0].Content
				for _, chunk := range results {
					if chunk.Content != label {
						errs <- "observed mixed generations in one result set"
						return
					}
				}
			}
		}()
	}

	for i := 0; i < 50; i++ {
		if i%2 == 0 {
			require.NoError(t, index.Rebuild(context.Background(), chunksB, embB))
		} else {
			require.NoError(t, index.Rebuild(context.Background(), chunksA, embA))
		}
	}
	close(stop)
	wg.Wait()
	close(errs)

	for msg := range errs {
		t.Fatal(msg)
	}
}
