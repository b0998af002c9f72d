package entities

// Source describes one piece of provenance the answer was built from, in the
// order the generator actually used it.
type Source struct {
	Type      EvidenceKind `json:"type"`
	Source    string       `json:"source"`
	Relevance float64      `json:"relevance_score,omitempty"`
}

// Answer is the final response for one query. Created once, immutable,
// returned to the caller and never persisted by this service.
type Answer struct {
	ID             string   `json:"answer_id"`
	Text           string   `json:"answer"`
	Sources        []Source `json:"sources"`
	Confidence     float64  `json:"confidence_score"`
	ResponseTimeMs int64    `json:"response_time_ms"`
	UsedFallback   bool     `json:"-"`
}
