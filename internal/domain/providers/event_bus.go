package providers

import (
	"context"
	"time"
)

// ReindexEvent is published around a rebuild of the document index.
type ReindexEvent struct {
	ID          string    `json:"id"`
	Stage       string    `json:"stage"` // requested, completed, failed
	RequestedBy string    `json:"requested_by,omitempty"`
	At          time.Time `json:"at"`
}

// Event channels. The ingestion collaborator listens on the request channel
// and publishes completion on the status channel once the new index has been
// swapped in.
const (
	EventChannelReindexRequests = "index:reindex:requests"
	EventChannelReindexStatus   = "index:reindex:status"
)

// EventBus defines the interface for publishing and subscribing to events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *ReindexEvent) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *ReindexEvent, error)

	// Close closes the event bus and all subscriptions
	Close() error
}
