package ws

import (
	"context"
	"encoding/json"

	"github.com/judgegodwins/paddle-party/game"
)

type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type EventHandler func(ctx context.Context, evt Event, c *Client) error

const (
	EventJoinGame         = "joinGame"
	EventChatMessage      = "chat message"
	EventCommands         = "commands"
	EventStartGame        = "startGame"
	EventCapabilityDenied = "capabilityDenied"
	EventPlayerLeft       = "playerLeft"
	EventState            = "state"
	EventError            = "error"
)

type PayloadError struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

type PayloadRoom struct {
	GameID string `json:"gameID" validate:"required,alphanum,max=32"`
}

type PayloadChatMessage struct {
	GameID  string `json:"gameID" validate:"required,alphanum,max=32"`
	Message string `json:"message" validate:"max=2000"`
}

type PayloadCommands struct {
	GameID   string         `json:"gameID" validate:"required,alphanum,max=32"`
	Commands []game.Command `json:"commands" validate:"max=256"`
	SocketID string         `json:"socketID,omitempty"`
}

type PayloadCapabilityDenied struct {
	GameID   string `json:"gameID" validate:"required,alphanum,max=32"`
	Reason   string `json:"reason" validate:"max=256"`
	SocketID string `json:"socketID,omitempty"`
}

type PayloadPlayerLeft struct {
	GameID   string `json:"gameID"`
	SocketID string `json:"socketID"`
}

func NewEvent(evtType string, payload any) (Event, error) {
	b, err := json.Marshal(payload)

	if err != nil {
		return Event{}, err
	}

	return NewEventStruct(evtType, b), nil
}

func NewErrorEvent(message string, details ...string) (Event, error) {
	return NewEvent(EventError, PayloadError{
		Message: message,
		Errors:  details,
	})
}

func NewEventStruct(evtType string, payload []byte) Event {
	return Event{
		Type:    evtType,
		Payload: payload,
	}
}
