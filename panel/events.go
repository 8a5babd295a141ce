// Package panel hosts the browser content surface and relays typed events
// between it and the host process.
package panel

import "encoding/json"

// EventType tags a panel event.
type EventType string

const (
	// EventUserMessage flows from the content surface to the host.
	EventUserMessage EventType = "userMessage"
	// EventBotResponse flows from the host to the content surface.
	EventBotResponse EventType = "botResponse"
)

// Event is the single wire shape crossing the panel boundary. The protocol
// recognizes exactly two tags; everything else is dropped by the receiver.
type Event struct {
	Type EventType `json:"type"`
	Text string    `json:"text"`
}

// Known reports whether the event carries a recognized tag.
func (e Event) Known() bool {
	switch e.Type {
	case EventUserMessage, EventBotResponse:
		return true
	default:
		return false
	}
}

// UserMessage creates a userMessage event.
func UserMessage(text string) Event {
	return Event{Type: EventUserMessage, Text: text}
}

// BotResponse creates a botResponse event.
func BotResponse(text string) Event {
	return Event{Type: EventBotResponse, Text: text}
}

// DecodeEvent parses one event from JSON. ok is false for events with an
// unrecognized tag; those are ignored by contract, not errors.
func DecodeEvent(data []byte) (ev Event, ok bool, err error) {
	if err := json.Unmarshal(data, &ev); err != nil {
		return Event{}, false, err
	}
	return ev, ev.Known(), nil
}
