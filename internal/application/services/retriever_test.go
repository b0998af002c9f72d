package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ingres-rag/groundwater-backend/internal/application/services"
	"github.com/ingres-rag/groundwater-backend/internal/domain/entities"
	apperrors "github.com/ingres-rag/groundwater-backend/pkg/errors"
)

func TestStructuredRetriever_EmptyEntitiesSkipsStore(t *testing.T) {
	repo := &stubRecordRepo{records: []entities.StructuredRecord{{Region: "kerala"}}}
	retriever := services.NewStructuredRetriever(repo, nil)

	records, degraded := retriever.Retrieve(context.Background(), entities.ExtractedEntities{}, entities.IntentLookup, 5)

	assert.Empty(t, records)
	assert.False(t, degraded)
	assert.Zero(t, repo.searches)
}

func TestStructuredRetriever_StoreErrorDegrades(t *testing.T) {
	repo := &stubRecordRepo{err: errors.New("connection refused")}
	retriever := services.NewStructuredRetriever(repo, nil)

	records, degraded := retriever.Retrieve(context.Background(), fullMatchEntities(), entities.IntentLookup, 5)

	assert.Empty(t, records)
	assert.True(t, degraded)
}

func TestStructuredRetriever_ReturnsRankedRecords(t *testing.T) {
	repo := &stubRecordRepo{records: []entities.StructuredRecord{
		{Region: "karnataka", Metric: "rainfall", Year: 2022, Value: 1153, Unit: "mm", Source: "CGWB"},
	}}
	retriever := services.NewStructuredRetriever(repo, nil)

	records, degraded := retriever.Retrieve(context.Background(), fullMatchEntities(), entities.IntentLookup, 5)

	assert.False(t, degraded)
	require.Len(t, records, 1)
	assert.Equal(t, "karnataka", records[0].Region)
}

func TestSemanticRetriever_DimensionMismatchRejectedAtStartup(t *testing.T) {
	index := &stubIndex{
		chunks: []entities.DocumentChunk{{Content: "x"}},
		dim:    8,
	}

	_, err := services.NewSemanticRetriever(&stubEmbedder{dim: 4}, index, nil)

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConfiguration))
}

func TestSemanticRetriever_EmptyIndexSkipsDimensionCheck(t *testing.T) {
	index := &stubIndex{dim: 8}

	retriever, err := services.NewSemanticRetriever(&stubEmbedder{dim: 4}, index, nil)

	require.NoError(t, err)
	chunks, degraded := retriever.Retrieve(context.Background(), "rainfall", 5)
	assert.Empty(t, chunks)
	assert.False(t, degraded)
}

func TestSemanticRetriever_NilIndexDegrades(t *testing.T) {
	retriever, err := services.NewSemanticRetriever(&stubEmbedder{dim: 4}, nil, nil)
	require.NoError(t, err)

	chunks, degraded := retriever.Retrieve(context.Background(), "rainfall", 5)

	assert.Empty(t, chunks)
	assert.True(t, degraded)
}

func TestSemanticRetriever_SearchErrorDegrades(t *testing.T) {
	index := &stubIndex{dim: 4, err: errors.New("index offline")}

	retriever, err := services.NewSemanticRetriever(&stubEmbedder{dim: 4}, index, nil)
	require.NoError(t, err)

	chunks, degraded := retriever.Retrieve(context.Background(), "rainfall", 5)

	assert.Empty(t, chunks)
	assert.True(t, degraded)
}
