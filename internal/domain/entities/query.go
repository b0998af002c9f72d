package entities

import "time"

// Query is one user question entering the pipeline. It is treated as an
// immutable value for the duration of processing.
type Query struct {
	Text       string
	SessionID  string
	UserID     string
	ReceivedAt time.Time
}

// YearRange is an inclusive closed interval of years.
type YearRange struct {
	From int
	To   int
}

// Contains reports whether year falls inside the range.
func (r YearRange) Contains(year int) bool {
	return year >= r.From && year <= r.To
}

// ExtractedEntities holds the entities recognized in a query, grouped by
// kind. It is built once per query and never mutated afterwards. Absence of
// a match yields an empty slice, never nil semantics the caller must guard.
type ExtractedEntities struct {
	Regions        []string
	Metrics        []string
	Years          []YearRange
	CompareTargets []string
}

// IsEmpty reports whether no entity of any kind was recognized.
func (e ExtractedEntities) IsEmpty() bool {
	return len(e.Regions) == 0 && len(e.Metrics) == 0 && len(e.Years) == 0
}

// Completeness is the fraction of entity kinds (region, metric, year) with at
// least one match. Used by the confidence scorer.
func (e ExtractedEntities) Completeness() float64 {
	matched := 0
	if len(e.Regions) > 0 {
		matched++
	}
	if len(e.Metrics) > 0 {
		matched++
	}
	if len(e.Years) > 0 {
		matched++
	}
	return float64(matched) / 3.0
}
