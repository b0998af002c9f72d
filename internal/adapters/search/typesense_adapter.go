package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/ingres-rag/groundwater-backend/internal/domain/entities"
	"github.com/ingres-rag/groundwater-backend/internal/domain/repositories"
	tsclient "github.com/ingres-rag/groundwater-backend/internal/infrastructure/clients/typesense"
)

// TypesenseAdapter implements the document index on Typesense. All reads go
// through a collection alias; Rebuild creates a fresh timestamped collection
// and repoints the alias, which is Typesense's atomic swap primitive.
type TypesenseAdapter struct {
	client    *tsclient.Client
	dimension int
}

var _ repositories.DocumentSearchRepository = (*TypesenseAdapter)(nil)
var _ repositories.DocumentIndexRebuilder = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense document adapter.
func NewTypesenseAdapter(client *tsclient.Client, dimension int) *TypesenseAdapter {
	return &TypesenseAdapter{client: client, dimension: dimension}
}

// Search returns the k nearest chunks to the query embedding.
func (a *TypesenseAdapter) Search(ctx context.Context, embedding []float32, k int) ([]entities.DocumentChunk, error) {
	if k <= 0 {
		return nil, nil
	}

	searchParams := &api.SearchCollectionParams{
		Q:           pointer.String("*"),
		QueryBy:     pointer.String("content"),
		VectorQuery: pointer.String(vectorQuery(embedding, k)),
		PerPage:     pointer.Int(k),
	}

	result, err := a.client.Client().Collection(tsclient.DocumentsAlias).Documents().Search(ctx, searchParams)
	if err != nil {
		return nil, fmt.Errorf("failed to search documents: %w", err)
	}
	if result.Hits == nil {
		return nil, nil
	}

	chunks := make([]entities.DocumentChunk, 0, len(*result.Hits))
	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		doc := *hit.Document

		chunk := entities.DocumentChunk{}
		if v, ok := doc["content"].(string); ok {
			chunk.Content = v
		}
		if v, ok := doc["source"].(string); ok {
			chunk.Source = v
		}
		if v, ok := doc["source_type"].(string); ok {
			chunk.SourceType = v
		}
		if hit.VectorDistance != nil {
			// Cosine distance in [0,2]; clamp the similarity into [0,1].
			score := 1 - float64(*hit.VectorDistance)
			if score < 0 {
				score = 0
			}
			chunk.Score = score
		}
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

// Size returns the number of documents in the live collection.
func (a *TypesenseAdapter) Size(ctx context.Context) (int, error) {
	coll, err := a.client.Client().Collection(tsclient.DocumentsAlias).Retrieve(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to retrieve document collection: %w", err)
	}
	if coll.NumDocuments == nil {
		return 0, nil
	}
	return int(*coll.NumDocuments), nil
}

// Dimension returns the embedding dimensionality of the live collection.
func (a *TypesenseAdapter) Dimension(ctx context.Context) (int, error) {
	coll, err := a.client.Client().Collection(tsclient.DocumentsAlias).Retrieve(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to retrieve document collection: %w", err)
	}
	for _, field := range coll.Fields {
		if field.Name == "embedding" && field.NumDim != nil {
			return *field.NumDim, nil
		}
	}
	return 0, fmt.Errorf("document collection has no embedding field")
}

// Rebuild indexes the chunks into a fresh collection and swaps the alias to
// it. Queries resolved against the previous collection finish there; nothing
// ever observes a partially built index.
func (a *TypesenseAdapter) Rebuild(ctx context.Context, chunks []entities.DocumentChunk, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("chunk/embedding count mismatch: %d vs %d", len(chunks), len(embeddings))
	}

	name := fmt.Sprintf("%s_%d", tsclient.DocumentsAlias, time.Now().Unix())
	schema := &api.CollectionSchema{
		Name: name,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "content", Type: "string"},
			{Name: "source", Type: "string", Facet: pointer.True()},
			{Name: "source_type", Type: "string", Facet: pointer.True()},
			{Name: "embedding", Type: "float[]", NumDim: pointer.Int(a.dimension)},
		},
	}

	if _, err := a.client.Client().Collections().Create(ctx, schema); err != nil {
		return fmt.Errorf("failed to create document collection %s: %w", name, err)
	}

	for i, chunk := range chunks {
		document := map[string]interface{}{
			"id":          strconv.Itoa(i),
			"content":     chunk.Content,
			"source":      chunk.Source,
			"source_type": chunk.SourceType,
			"embedding":   embeddings[i],
		}
		if _, err := a.client.Client().Collection(name).Documents().Upsert(ctx, document); err != nil {
			return fmt.Errorf("failed to index document %d into %s: %w", i, name, err)
		}
	}

	// Resolve the previous target before swapping so it can be dropped after.
	var previous string
	if alias, err := a.client.Client().Alias(tsclient.DocumentsAlias).Retrieve(ctx); err == nil {
		previous = alias.CollectionName
	}

	if _, err := a.client.Client().Aliases().Upsert(ctx, tsclient.DocumentsAlias, &api.CollectionAliasSchema{CollectionName: name}); err != nil {
		return fmt.Errorf("failed to swap document alias to %s: %w", name, err)
	}

	if previous != "" && previous != name {
		if _, err := a.client.Client().Collection(previous).Delete(ctx); err != nil {
			return fmt.Errorf("failed to drop previous collection %s: %w", previous, err)
		}
	}
	return nil
}

func vectorQuery(embedding []float32, k int) string {
	var sb strings.Builder
	sb.WriteString("embedding:([")
	for i, v := range embedding {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 32))
	}
	sb.WriteString("], k:")
	sb.WriteString(strconv.Itoa(k))
	sb.WriteString(")")
	return sb.String()
}
