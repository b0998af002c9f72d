package embedding_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ingres-rag/groundwater-backend/internal/adapters/embedding"
)

func TestHashingEmbedder_RejectsBadDimension(t *testing.T) {
	_, err := embedding.NewHashingEmbedder(0)
	assert.Error(t, err)

	_, err = embedding.NewHashingEmbedder(-5)
	assert.Error(t, err)
}

func TestHashingEmbedder_Deterministic(t *testing.T) {
	embedder, err := embedding.NewHashingEmbedder(64)
	require.NoError(t, err)

	first, err := embedder.Embed(context.Background(), "groundwater extraction in Punjab")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := embedder.Embed(context.Background(), "groundwater extraction in Punjab")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestHashingEmbedder_UnitNorm(t *testing.T) {
	embedder, err := embedding.NewHashingEmbedder(64)
	require.NoError(t, err)

	vec, err := embedder.Embed(context.Background(), "rainfall recharge aquifer monsoon")
	require.NoError(t, err)
	require.Len(t, vec, 64)

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, norm, 1e-5)
}

func TestHashingEmbedder_CaseInsensitive(t *testing.T) {
	embedder, err := embedding.NewHashingEmbedder(32)
	require.NoError(t, err)

	lower, err := embedder.Embed(context.Background(), "rainfall in karnataka")
	require.NoError(t, err)
	upper, err := embedder.Embed(context.Background(), "RAINFALL IN KARNATAKA")
	require.NoError(t, err)

	assert.Equal(t, lower, upper)
}

func TestHashingEmbedder_SimilarTextsCloser(t *testing.T) {
	embedder, err := embedding.NewHashingEmbedder(128)
	require.NoError(t, err)

	base, err := embedder.Embed(context.Background(), "groundwater extraction statistics for Punjab agriculture")
	require.NoError(t, err)
	related, err := embedder.Embed(context.Background(), "Punjab groundwater extraction data for agriculture")
	require.NoError(t, err)
	unrelated, err := embedder.Embed(context.Background(), "quarterly corporate earnings improved markedly")
	require.NoError(t, err)

	assert.Greater(t, dot(base, related), dot(base, unrelated))
}

func TestHashingEmbedder_EmptyTextIsZeroVector(t *testing.T) {
	embedder, err := embedding.NewHashingEmbedder(16)
	require.NoError(t, err)

	vec, err := embedder.Embed(context.Background(), "")
	require.NoError(t, err)

	for _, v := range vec {
		assert.Zero(t, v)
	}
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	if math.IsNaN(sum) {
		return 0
	}
	return sum
}
