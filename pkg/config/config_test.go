package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ingres-rag/groundwater-backend/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GEMINI_ENABLED", "false")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8001, cfg.Server.Port)
	assert.Equal(t, 384, cfg.Embedding.Dimension)
	assert.Equal(t, 5, cfg.Pipeline.TopK)
	assert.Equal(t, 4000, cfg.Pipeline.ContextBudget)
	assert.Equal(t, 3, cfg.Pipeline.MaxSources)
	assert.InDelta(t, 0.6, cfg.Pipeline.FallbackPenalty, 1e-9)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("GEMINI_ENABLED", "false")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("VECTOR_DIMENSION", "512")
	t.Setenv("TOP_K_RESULTS", "8")
	t.Setenv("PIPELINE_LLM_TIMEOUT", "10s")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 512, cfg.Embedding.Dimension)
	assert.Equal(t, 8, cfg.Pipeline.TopK)
}

func TestLoad_GeminiEnabledWithoutKeyFails(t *testing.T) {
	t.Setenv("GEMINI_ENABLED", "true")
	t.Setenv("GEMINI_API_KEY", "")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_BadDimensionFails(t *testing.T) {
	t.Setenv("GEMINI_ENABLED", "false")
	t.Setenv("VECTOR_DIMENSION", "0")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_LLMTimeoutMustFitRequestTimeout(t *testing.T) {
	t.Setenv("GEMINI_ENABLED", "false")
	t.Setenv("PIPELINE_LLM_TIMEOUT", "40s")
	t.Setenv("PIPELINE_REQUEST_TIMEOUT", "30s")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_FallbackPenaltyRange(t *testing.T) {
	t.Setenv("GEMINI_ENABLED", "false")

	for _, bad := range []string{"0", "-0.5", "1.5"} {
		t.Setenv("CONFIDENCE_FALLBACK_PENALTY", bad)
		_, err := config.Load()
		assert.Error(t, err, "penalty %s", bad)
	}
}
