package services

import (
	"github.com/ingres-rag/groundwater-backend/internal/domain/entities"
)

// ConfidenceWeights holds the tunable components of the confidence score.
type ConfidenceWeights struct {
	Base            float64
	Relevance       float64
	Volume          float64
	Completeness    float64
	FallbackPenalty float64
	Floor           float64
}

// DefaultConfidenceWeights returns the scoring weights used in production.
func DefaultConfidenceWeights() ConfidenceWeights {
	return ConfidenceWeights{
		Base:            0.35,
		Relevance:       0.25,
		Volume:          0.20,
		Completeness:    0.20,
		FallbackPenalty: 0.6,
		Floor:           0.1,
	}
}

// ConfidenceScorer computes a calibrated confidence value for an answer from
// the evidence that backed it.
type ConfidenceScorer struct {
	weights ConfidenceWeights
}

// NewConfidenceScorer creates a scorer with the given weights. Zero-valued
// weights fall back to the defaults.
func NewConfidenceScorer(weights ConfidenceWeights) *ConfidenceScorer {
	if weights == (ConfidenceWeights{}) {
		weights = DefaultConfidenceWeights()
	}
	return &ConfidenceScorer{weights: weights}
}

// Score returns 0 when the bundle carries no evidence. Otherwise it blends a
// base score with top relevance, evidence volume, and entity completeness,
// applies the fallback penalty when the deterministic path produced the
// answer, and clamps to [floor, 1].
func (s *ConfidenceScorer) Score(bundle entities.ContextBundle, ents entities.ExtractedEntities, usedFallback bool) float64 {
	if bundle.IsEmpty() {
		return 0
	}

	volume := float64(len(bundle.Items))
	if volume > 5 {
		volume = 5
	}
	score := s.weights.Base +
		s.weights.Relevance*clamp01(bundle.TopRelevance()) +
		s.weights.Volume*(volume/5) +
		s.weights.Completeness*ents.Completeness()

	if usedFallback {
		score *= s.weights.FallbackPenalty
	}
	if score > 1 {
		score = 1
	}
	if score < s.weights.Floor {
		score = s.weights.Floor
	}
	return score
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
