package entities

import "fmt"

// StructuredRecord is one row of numeric groundwater data.
type StructuredRecord struct {
	Region string
	Metric string
	Year   int
	Value  float64
	Unit   string
	Source string
}

// Render formats the record the way it is presented to the generation
// backend and in fallback answers.
func (r StructuredRecord) Render() string {
	return fmt.Sprintf("%s / %s (%d): %.2f %s [source: %s]", r.Region, r.Metric, r.Year, r.Value, r.Unit, r.Source)
}

// DocumentChunk is a passage of unstructured text with a similarity score
// assigned by the semantic retriever. Score is in [0,1], higher is closer.
type DocumentChunk struct {
	Content    string
	Source     string
	SourceType string
	Score      float64
}

// RetrievalResult pairs the output of both retrievers for one query. Each
// sequence is ranked by its own retriever; no cross-normalization happens
// before the context builder.
type RetrievalResult struct {
	Records []StructuredRecord
	Chunks  []DocumentChunk

	// Degraded flags mark a retriever that returned empty because its
	// backing store was unreachable, as opposed to a genuine miss.
	StructuredDegraded bool
	SemanticDegraded   bool
}
