package messaging

import (
	"context"

	"github.com/amora-app/media-pipeline/internal/domain"
)

// Publisher defines the interface for publishing media events to the message broker
//
//go:generate mockgen -source=publisher.go -destination=../mocks/publisher.go -package=mocks -mock_names=Publisher=MockPublisher
type Publisher interface {
	// PublishEvent publishes a media event to the message broker
	PublishEvent(ctx context.Context, event *domain.MediaEvent) error
	// Close closes the connection
	Close()
}

type nopPublisher struct{}

// NewNopPublisher returns a Publisher that drops every event; used when no broker is configured
func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) PublishEvent(context.Context, *domain.MediaEvent) error { return nil }

func (nopPublisher) Close() {}
