package providers

import "context"

// EmbeddingProvider turns text into a fixed-dimension vector. The same
// provider must be used at index build time and query time; the startup
// dimension check enforces this.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}
