package entities

import "strings"

// EvidenceKind tags an evidence item as structured or document-derived.
type EvidenceKind string

const (
	EvidenceRecord EvidenceKind = "structured"
	EvidenceChunk  EvidenceKind = "document"
)

// Section headers Serialize emits ahead of each evidence kind. The context
// builder counts them when fitting items into the budget.
const (
	RecordsHeader   = "=== GROUNDWATER RECORDS ===\n"
	DocumentsHeader = "=== SUPPORTING DOCUMENTS ===\n"
)

// EvidenceItem is one admitted piece of evidence. Exactly one of Record or
// Chunk is set, according to Kind. Relevance is the normalized rank assigned
// by the context builder.
type EvidenceItem struct {
	Kind      EvidenceKind
	Record    *StructuredRecord
	Chunk     *DocumentChunk
	Relevance float64
}

// Render returns the serialized form of the item as it is counted against
// the bundle budget and presented to the generation backend.
func (it EvidenceItem) Render() string {
	switch it.Kind {
	case EvidenceRecord:
		return "- " + it.Record.Render()
	case EvidenceChunk:
		return "- [" + it.Chunk.SourceType + " | " + it.Chunk.Source + "] " + it.Chunk.Content
	}
	return ""
}

// SourceLabel names the provenance of the item for the response's source
// descriptors.
func (it EvidenceItem) SourceLabel() string {
	if it.Kind == EvidenceRecord {
		return it.Record.Source
	}
	return it.Chunk.Source
}

// ContextBundle is the bounded, deduplicated evidence set handed to answer
// generation. Invariants: the serialized size of Items never exceeds Budget,
// and no two chunk items share identical content.
type ContextBundle struct {
	Items  []EvidenceItem
	Budget int
}

// IsEmpty reports whether the bundle carries no evidence.
func (b ContextBundle) IsEmpty() bool {
	return len(b.Items) == 0
}

// TopRelevance returns the relevance of the highest-ranked item, 0 when empty.
func (b ContextBundle) TopRelevance() float64 {
	if len(b.Items) == 0 {
		return 0
	}
	return b.Items[0].Relevance
}

// Records returns the structured records in bundle order.
func (b ContextBundle) Records() []StructuredRecord {
	var out []StructuredRecord
	for _, it := range b.Items {
		if it.Kind == EvidenceRecord {
			out = append(out, *it.Record)
		}
	}
	return out
}

// Chunks returns the document chunks in bundle order.
func (b ContextBundle) Chunks() []DocumentChunk {
	var out []DocumentChunk
	for _, it := range b.Items {
		if it.Kind == EvidenceChunk {
			out = append(out, *it.Chunk)
		}
	}
	return out
}

// Serialize renders the bundle as the evidence block of the generation
// prompt, grouped by kind.
func (b ContextBundle) Serialize() string {
	if b.IsEmpty() {
		return ""
	}

	var sb strings.Builder
	records := false
	for _, it := range b.Items {
		if it.Kind == EvidenceRecord {
			if !records {
				sb.WriteString(RecordsHeader)
				records = true
			}
			sb.WriteString(it.Render())
			sb.WriteByte('\n')
		}
	}
	chunks := false
	for _, it := range b.Items {
		if it.Kind == EvidenceChunk {
			if !chunks {
				if records {
					sb.WriteByte('\n')
				}
				sb.WriteString(DocumentsHeader)
				chunks = true
			}
			sb.WriteString(it.Render())
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
