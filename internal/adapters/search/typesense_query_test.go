package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVectorQuery_FormatsEmbeddingAndK(t *testing.T) {
	q := vectorQuery([]float32{0.5, -1, 0.25}, 7)
	assert.Equal(t, "embedding:([0.5,-1,0.25], k:7)", q)
}

func TestVectorQuery_EmptyEmbedding(t *testing.T) {
	assert.Equal(t, "embedding:([], k:3)", vectorQuery(nil, 3))
}
