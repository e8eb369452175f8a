package domain

import "time"

// EventType is the kind of a media event
type EventType string

const (
	EventTypeProcessed     EventType = "processed"
	EventTypeDeleted       EventType = "deleted"
	EventTypeCleanupFailed EventType = "cleanup.failed"
)

// MediaEvent is published after the pipeline changes stored media
type MediaEvent struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	Kind       MediaKind `json:"kind,omitempty"`
	OwnerID    int64     `json:"owner_id,omitempty"`
	Context    string    `json:"context,omitempty"`
	Keys       []string  `json:"keys,omitempty"`
	FailedKeys []string  `json:"failed_keys,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Subject returns the NATS subject of the event.
// Processed events are split by kind: media.processed.{kind}.
func (e *MediaEvent) Subject() string {
	if e.Type == EventTypeProcessed && e.Kind != "" {
		return "media." + string(e.Type) + "." + string(e.Kind)
	}
	return "media." + string(e.Type)
}
