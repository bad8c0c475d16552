// Package event carries created-message notifications from the pipeline to
// connected subscribers (SSE streams, the websocket gateway).
package event

import "encoding/json"

// Type discriminates event payloads.
type Type string

// TypeMessageCreated is emitted after a message is durably stored.
const TypeMessageCreated Type = "message_created"

// Event is one broadcastable notification scoped to a channel.
type Event struct {
	Type      Type            `json:"type"`
	ChannelID string          `json:"channel_id"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// Publisher emits events to current subscribers.
type Publisher interface {
	Publish(event Event) error
}

// Subscriber attaches a stream of events for one channel.
type Subscriber interface {
	Subscribe(channelID string, buffer int) (id string, stream <-chan Event, cancel func())
}
