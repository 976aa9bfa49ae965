package ws

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/judgegodwins/paddle-party/util"
)

var (
	pongWait     = 10 * time.Second
	pingInterval = (pongWait * 9) / 10
	writeWait    = 5 * time.Second
)

const maxMessageSize = 4096

type Client struct {
	ID         string
	connection *websocket.Conn
	manager    *Manager
	egress     chan Event
	err        chan error
}

func NewClient(conn *websocket.Conn, manager *Manager, egressSize int) *Client {
	return &Client{
		ID:         uuid.NewString(),
		connection: conn,
		manager:    manager,
		egress:     make(chan Event, egressSize),
		err:        make(chan error, 1),
	}
}

// Reads incoming messages from the clients websocket connection
func (c *Client) readMessages(ctx context.Context) {
	c.connection.SetReadLimit(maxMessageSize)

	if err := c.connection.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.handleError(err)
		return
	}

	c.connection.SetPongHandler(c.pongHandler)

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, payload, err := c.connection.ReadMessage()

			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
					c.manager.logger.Printf("error reading message from %v: %v", c.ID, err)
				}
				c.handleError(err)
				return
			}

			var evt Event

			if err := json.Unmarshal(payload, &evt); err != nil {
				c.pushError("cannot unmarshal event", nil)
				continue
			}

			// emit handler errors back to the sender, the connection stays open
			if err := c.manager.routeEvent(ctx, evt, c); err != nil {
				c.manager.logger.Printf("error handling %q from %v: %v", evt.Type, c.ID, err)
				c.pushError(err.Error(), err)
			}
		}
	}
}

// writes messages pushed to the client's egress channel
func (c *Client) writeMessages(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)

	defer func() {
		ticker.Stop()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case message := <-c.egress:
			data, err := json.Marshal(message)

			if err != nil {
				c.manager.logger.Printf("cannot marshal %q for %v: %v", message.Type, c.ID, err)
				continue
			}

			c.connection.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.connection.WriteMessage(websocket.TextMessage, data); err != nil {
				c.handleError(err)
				return
			}
		case <-ticker.C:
			c.connection.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.connection.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.handleError(err)
				return
			}
		}
	}
}

// Sets a new read deadline when a pong is received for a ping message.
func (c *Client) pongHandler(pongMsg string) error {
	return c.connection.SetReadDeadline(time.Now().Add(pongWait))
}

// Reports the first error of either pump. ServeWS waits on it, then closes
// the connection and removes the client.
func (c *Client) handleError(e error) {
	select {
	case c.err <- e:
	default:
	}
}

// Returns the error channel
func (c *Client) Err() <-chan error {
	return c.err
}

func (c *Client) pushError(message string, cause error) {
	var details []string
	var verrs validator.ValidationErrors
	if errors.As(cause, &verrs) {
		details = util.ValidationMessages(verrs)
	}

	evt, err := NewErrorEvent(message, details...)
	if err != nil {
		c.manager.logger.Printf("cannot create error event for %v: %v", c.ID, err)
		return
	}

	c.PushToEgress(evt)
}

// PushToEgress queues an event for delivery. Delivery is at-most-once: when
// the client's buffer is full the event is dropped.
func (c *Client) PushToEgress(evt Event) bool {
	select {
	case c.egress <- evt:
		return true
	default:
		c.manager.logger.Printf("egress full for %v, dropping %q", c.ID, evt.Type)
		return false
	}
}
