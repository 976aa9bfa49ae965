package ws

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/judgegodwins/paddle-party/rooms"
	"github.com/judgegodwins/paddle-party/util"
)

// decodePayload unmarshals and validates the payload of e into v.
func decodePayload(e Event, v any) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("invalid %v payload: %w", e.Type, err)
	}

	if err := util.Validate.Struct(v); err != nil {
		return fmt.Errorf("invalid %v payload: %w", e.Type, err)
	}

	return nil
}

func JoinGame(ctx context.Context, e Event, c *Client) error {
	var payload PayloadRoom

	if err := decodePayload(e, &payload); err != nil {
		return err
	}

	if previous, moved := c.manager.registry.Join(payload.GameID, c.ID); moved {
		c.manager.leaveRoom(previous, c.ID)
	}

	return nil
}

// ChatMessage rebroadcasts a chat message to the whole room, sender included.
func ChatMessage(ctx context.Context, e Event, c *Client) error {
	var payload PayloadChatMessage

	if err := decodePayload(e, &payload); err != nil {
		return err
	}

	return c.manager.Publish(payload.GameID, EventChatMessage, payload)
}

// Commands rebroadcasts a command batch tagged with the sender's socket id,
// and feeds it to the room's simulation when the server is the authority.
// Only members of the room get a paddle in its simulation.
func Commands(ctx context.Context, e Event, c *Client) error {
	var payload PayloadCommands

	if err := decodePayload(e, &payload); err != nil {
		return err
	}

	payload.SocketID = c.ID

	if err := c.manager.Publish(payload.GameID, EventCommands, payload); err != nil {
		return err
	}

	if code, ok := c.manager.registry.RoomOf(c.ID); !ok || code != rooms.NormalizeCode(payload.GameID) {
		return nil
	}

	if authority, ok := c.manager.Simulation(payload.GameID); ok {
		authority.Submit(c.ID, payload.Commands...)
	}

	return nil
}

func StartGame(ctx context.Context, e Event, c *Client) error {
	var payload PayloadRoom

	if err := decodePayload(e, &payload); err != nil {
		return err
	}

	if authority, ok := c.manager.Simulation(payload.GameID); ok {
		authority.Start()
	}

	return c.manager.Publish(payload.GameID, EventStartGame, payload)
}

// CapabilityDenied tells the room that a controller cannot produce input,
// e.g. because motion sensor access was refused.
func CapabilityDenied(ctx context.Context, e Event, c *Client) error {
	var payload PayloadCapabilityDenied

	if err := decodePayload(e, &payload); err != nil {
		return err
	}

	payload.SocketID = c.ID

	return c.manager.Publish(payload.GameID, EventCapabilityDenied, payload)
}
