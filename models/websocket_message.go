package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// WebSocketMessageType represents message type constants
type WebSocketMessageType string

const (
	EventMessage WebSocketMessageType = "event"
	PongMessage  WebSocketMessageType = "pong"
	ErrorMessage WebSocketMessageType = "error"
)

// StandardMessage is the envelope of everything the server writes to a
// websocket client.
type StandardMessage struct {
	ID        string               `json:"id"`
	Type      WebSocketMessageType `json:"type"`
	Event     string               `json:"event,omitempty"`
	Timestamp time.Time            `json:"timestamp"`
	Payload   json.RawMessage      `json:"payload,omitempty"`
}

func NewStandardMessage(msgType WebSocketMessageType, event string, payload json.RawMessage) *StandardMessage {
	return &StandardMessage{
		ID:        uuid.New().String(),
		Type:      msgType,
		Event:     event,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// NewEventMessage wraps a change event; the event data becomes the payload.
func NewEventMessage(event *Event) *StandardMessage {
	return &StandardMessage{
		ID:        event.ID.String(),
		Type:      EventMessage,
		Event:     event.Event,
		Timestamp: event.Timestamp,
		Payload:   event.Data,
	}
}

func NewErrorMessage(message string) *StandardMessage {
	payload, _ := json.Marshal(map[string]string{"message": message})
	return NewStandardMessage(ErrorMessage, "", payload)
}
