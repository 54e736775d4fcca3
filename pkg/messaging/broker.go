package messaging

import (
	"context"
)

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Close() error
}

// ChannelPrefix namespaces every channel the triage service publishes on.
const ChannelPrefix = "triage."

// Channel returns the pub/sub channel for an event type.
func Channel(eventType string) string {
	return ChannelPrefix + eventType
}

// Message is the envelope published for each outbox event.
type Message struct {
	ID      string      `json:"id"`
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
