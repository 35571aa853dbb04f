package ws

import (
	"encoding/json"
)

// EventType represents the type of a relay event
type EventType string

const (
	// EventTypeMessage is a peer payload relayed to the other players in a
	// room. The data field is opaque to the server.
	EventTypeMessage EventType = "message"

	// EventTypeGameStarted is pushed to every live connection in a room
	// when the host starts the game.
	EventTypeGameStarted EventType = "game_started"
)

// Event is one outbound relay frame. Inbound frames have no fixed schema
// beyond being valid JSON; the relay wraps them without interpreting them.
type Event struct {
	Type EventType       `json:"type"`
	From string          `json:"from,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewPeerMessage wraps an opaque inbound payload with its sender's user id
func NewPeerMessage(fromUserID string, data json.RawMessage) *Event {
	return &Event{
		Type: EventTypeMessage,
		From: fromUserID,
		Data: data,
	}
}

// NewGameStartedEvent creates the game-started lifecycle event
func NewGameStartedEvent() *Event {
	return &Event{Type: EventTypeGameStarted}
}

// Encode serializes the event for the wire
func (e *Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}
