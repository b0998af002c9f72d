// Package embedding provides the query/index embedding adapter. The hashing
// embedder maps token counts into a fixed number of buckets and L2-normalizes
// the result, so identical text always embeds to the identical vector and no
// model download or vocabulary preparation is needed.
package embedding

import (
	"context"
	"errors"
	"hash/fnv"
	"math"
	"regexp"
	"strings"

	"github.com/ingres-rag/groundwater-backend/internal/domain/providers"
)

// HashingEmbedder is a deterministic feature-hashing text embedder.
type HashingEmbedder struct {
	dimension    int
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

var _ providers.EmbeddingProvider = (*HashingEmbedder)(nil)

// NewHashingEmbedder creates an embedder producing vectors of the given
// dimension.
func NewHashingEmbedder(dimension int) (*HashingEmbedder, error) {
	if dimension <= 0 {
		return nil, errors.New("embedding dimension must be positive")
	}
	return &HashingEmbedder{
		dimension:    dimension,
		tokenPattern: regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}]+)*`),
		stopwords:    defaultStopwords(),
	}, nil
}

// Dimension returns the dimensionality of produced vectors.
func (e *HashingEmbedder) Dimension() int {
	return e.dimension
}

// Embed computes the embedding for text. Pure and deterministic.
func (e *HashingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vec := make([]float32, e.dimension)
	for _, token := range e.tokenize(text) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(token))
		bucket := int(h.Sum32()) % e.dimension
		if bucket < 0 {
			bucket += e.dimension
		}
		// Second hash decides the sign, which keeps colliding tokens from
		// systematically inflating a bucket.
		s := fnv.New32()
		_, _ = s.Write([]byte(token))
		if s.Sum32()&1 == 0 {
			vec[bucket]++
		} else {
			vec[bucket]--
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		inv := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= inv
		}
	}
	return vec, nil
}

func (e *HashingEmbedder) tokenize(text string) []string {
	raw := e.tokenPattern.FindAllString(strings.ToLower(text), -1)
	tokens := make([]string, 0, len(raw))
	for _, tok := range raw {
		if _, isStop := e.stopwords[tok]; isStop {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "and", "are", "as", "at", "be", "by", "for", "from",
		"has", "how", "in", "is", "it", "of", "on", "or", "that", "the",
		"to", "was", "what", "which", "with",
	}
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
