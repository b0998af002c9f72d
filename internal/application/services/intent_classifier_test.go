package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ingres-rag/groundwater-backend/internal/application/services"
	"github.com/ingres-rag/groundwater-backend/internal/domain/entities"
)

func classify(t *testing.T, query string) entities.Intent {
	t.Helper()
	extractor := services.NewEntityExtractor()
	classifier := services.NewIntentClassifier()
	return classifier.Classify(query, extractor.Extract(query))
}

func TestIntentClassifier_Lookup(t *testing.T) {
	assert.Equal(t, entities.IntentLookup, classify(t, "how much rainfall did Kerala get in 2023"))
	assert.Equal(t, entities.IntentLookup, classify(t, "show me extraction data for Punjab"))
}

func TestIntentClassifier_Comparison(t *testing.T) {
	assert.Equal(t, entities.IntentComparison, classify(t, "compare rainfall in Kerala and Tamil Nadu"))
	assert.Equal(t, entities.IntentComparison, classify(t, "Punjab versus Haryana groundwater extraction"))
}

func TestIntentClassifier_Trend(t *testing.T) {
	assert.Equal(t, entities.IntentTrend, classify(t, "rainfall trend in Rajasthan over the years"))
	assert.Equal(t, entities.IntentTrend, classify(t, "how has extraction in Bihar changed from 2015 to 2022"))
}

func TestIntentClassifier_Ranking(t *testing.T) {
	assert.Equal(t, entities.IntentRanking, classify(t, "which state has the highest rainfall"))
	assert.Equal(t, entities.IntentRanking, classify(t, "top regions by groundwater extraction"))
}

func TestIntentClassifier_Definition(t *testing.T) {
	assert.Equal(t, entities.IntentDefinition, classify(t, "what is an aquifer"))
	assert.Equal(t, entities.IntentDefinition, classify(t, "explain the meaning of extractable resources"))
}

func TestIntentClassifier_WhatIsWithEntitiesIsLookup(t *testing.T) {
	// "what is" only asks for a definition when no region or year is named.
	assert.Equal(t, entities.IntentLookup, classify(t, "what is the rainfall in Karnataka"))
	assert.Equal(t, entities.IntentDefinition, classify(t, "what is rainfall"))
}

func TestIntentClassifier_Conversational(t *testing.T) {
	assert.Equal(t, entities.IntentGreeting, classify(t, "hello there"))
	assert.Equal(t, entities.IntentGreeting, classify(t, "namaste"))
	assert.Equal(t, entities.IntentFarewell, classify(t, "goodbye and thanks"))
	assert.True(t, classify(t, "hi").IsConversational())
}

func TestIntentClassifier_MixedQueryPrefersDataIntent(t *testing.T) {
	// A greeting stapled to a data question is served as the data question.
	assert.Equal(t, entities.IntentComparison, classify(t, "hello, compare rainfall between Kerala and Goa"))
	assert.Equal(t, entities.IntentLookup, classify(t, "hi, how much groundwater extraction in Punjab"))
}

func TestIntentClassifier_GreetingCueNeedsWordBoundary(t *testing.T) {
	// "hi" inside "which" must not fire the greeting cue.
	assert.Equal(t, entities.IntentRanking, classify(t, "which state extracts the most groundwater"))
}

func TestIntentClassifier_Unknown(t *testing.T) {
	assert.Equal(t, entities.IntentUnknown, classify(t, "lorem ipsum dolor"))
}

func TestIntentClassifier_TieBreaksTowardSpecific(t *testing.T) {
	// Both comparison and trend cues fire once; comparison is more specific.
	assert.Equal(t, entities.IntentComparison, classify(t, "compare the rainfall trend"))
	assert.Equal(t, entities.IntentComparison, classify(t, "compare the rainfall trend of Kerala and Goa"))
}

func TestIntentClassifier_Deterministic(t *testing.T) {
	query := "compare the highest rainfall trend for Kerala and Tamil Nadu from 2018 to 2022"
	first := classify(t, query)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, classify(t, query))
	}
}
