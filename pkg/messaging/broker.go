package messaging

import (
	"context"
)

// Publisher fans messages out to subscribers of a channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) error
}

// Message is the envelope put on the wire.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
