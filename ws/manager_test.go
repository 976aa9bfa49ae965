package ws

import (
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/judgegodwins/paddle-party/game"
	"github.com/judgegodwins/paddle-party/util"
	"github.com/stretchr/testify/require"
)

func joinAll(t *testing.T, manager *Manager, code string, conns ...*websocket.Conn) {
	t.Helper()

	for _, conn := range conns {
		send(t, conn, EventJoinGame, PayloadRoom{GameID: code})
	}

	require.Eventually(t, func() bool {
		return len(manager.Registry().MembersOf(code)) == len(conns)
	}, 2*time.Second, 5*time.Millisecond)
}

func TestChatMessage(t *testing.T) {
	t.Run("delivered to every member including the sender", func(t *testing.T) {
		manager, server := newTestServer(t, testConfig(util.AuthorityClient))

		conns := []*websocket.Conn{dial(t, server, nil), dial(t, server, nil), dial(t, server, nil)}
		joinAll(t, manager, "XYZ000", conns...)

		send(t, conns[0], EventChatMessage, PayloadChatMessage{GameID: "XYZ000", Message: "hello room"})

		var payloads []string
		for _, conn := range conns {
			evt := readEvent(t, conn, EventChatMessage)
			payloads = append(payloads, string(evt.Payload))
		}

		require.JSONEq(t, `{"gameID":"XYZ000","message":"hello room"}`, payloads[0])
		require.Equal(t, payloads[0], payloads[1])
		require.Equal(t, payloads[0], payloads[2])
	})

	t.Run("not delivered to other rooms", func(t *testing.T) {
		manager, server := newTestServer(t, testConfig(util.AuthorityClient))

		inRoom, outside := dial(t, server, nil), dial(t, server, nil)
		joinAll(t, manager, "ROOM01", inRoom)
		joinAll(t, manager, "ROOM02", outside)

		send(t, inRoom, EventChatMessage, PayloadChatMessage{GameID: "ROOM01", Message: "psst"})
		readEvent(t, inRoom, EventChatMessage)

		require.NoError(t, outside.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
		_, _, err := outside.ReadMessage()
		require.Error(t, err)
	})

	t.Run("room codes are case-insensitive", func(t *testing.T) {
		manager, server := newTestServer(t, testConfig(util.AuthorityClient))

		lower, upper := dial(t, server, nil), dial(t, server, nil)
		send(t, lower, EventJoinGame, PayloadRoom{GameID: "abc123"})
		send(t, upper, EventJoinGame, PayloadRoom{GameID: "ABC123"})
		require.Eventually(t, func() bool {
			return len(manager.Registry().MembersOf("AbC123")) == 2
		}, 2*time.Second, 5*time.Millisecond)

		send(t, upper, EventChatMessage, PayloadChatMessage{GameID: "ABC123", Message: "hi"})
		readEvent(t, lower, EventChatMessage)
	})
}

func TestCommands(t *testing.T) {
	manager, server := newTestServer(t, testConfig(util.AuthorityClient))

	screen, controller := dial(t, server, nil), dial(t, server, nil)
	joinAll(t, manager, "ABC123", screen, controller)

	send(t, controller, EventCommands, PayloadCommands{
		GameID:   "ABC123",
		Commands: []game.Command{game.CommandTop, game.CommandBottom},
		SocketID: "spoofed",
	})

	atScreen := decode[PayloadCommands](t, readEvent(t, screen, EventCommands))
	atController := decode[PayloadCommands](t, readEvent(t, controller, EventCommands))

	require.Equal(t, atScreen, atController)
	require.Equal(t, []game.Command{game.CommandTop, game.CommandBottom}, atScreen.Commands)
	require.NotEqual(t, "spoofed", atScreen.SocketID)
	require.Contains(t, manager.Registry().MembersOf("ABC123"), atScreen.SocketID)

	_, simulated := manager.Simulation("ABC123")
	require.False(t, simulated)
}

func TestCapabilityDenied(t *testing.T) {
	manager, server := newTestServer(t, testConfig(util.AuthorityClient))

	screen, controller := dial(t, server, nil), dial(t, server, nil)
	joinAll(t, manager, "ABC123", screen, controller)

	send(t, controller, EventCapabilityDenied, PayloadCapabilityDenied{GameID: "ABC123", Reason: "motion permission denied"})

	payload := decode[PayloadCapabilityDenied](t, readEvent(t, screen, EventCapabilityDenied))
	require.Equal(t, "motion permission denied", payload.Reason)
	require.NotEmpty(t, payload.SocketID)
}

func TestDisconnect(t *testing.T) {
	manager, server := newTestServer(t, testConfig(util.AuthorityClient))

	screen, controller := dial(t, server, nil), dial(t, server, nil)
	joinAll(t, manager, "ABC123", screen, controller)

	send(t, controller, EventCommands, PayloadCommands{GameID: "ABC123", Commands: []game.Command{game.CommandTop}})
	controllerID := decode[PayloadCommands](t, readEvent(t, screen, EventCommands)).SocketID

	require.NoError(t, controller.Close())

	left := decode[PayloadPlayerLeft](t, readEvent(t, screen, EventPlayerLeft))
	require.Equal(t, "ABC123", left.GameID)
	require.Equal(t, controllerID, left.SocketID)
	require.Len(t, manager.Registry().MembersOf("ABC123"), 1)

	require.NoError(t, screen.Close())
	require.Eventually(t, func() bool {
		return !manager.Registry().Exists("ABC123")
	}, 2*time.Second, 5*time.Millisecond)
}

func TestProtocolErrors(t *testing.T) {
	_, server := newTestServer(t, testConfig(util.AuthorityClient))
	conn := dial(t, server, nil)

	t.Run("unknown event type", func(t *testing.T) {
		send(t, conn, "dance", map[string]string{})

		payload := decode[PayloadError](t, readEvent(t, conn, EventError))
		require.Equal(t, ErrUnknownEvent.Error(), payload.Message)
	})

	t.Run("missing game id", func(t *testing.T) {
		send(t, conn, EventJoinGame, map[string]string{})

		payload := decode[PayloadError](t, readEvent(t, conn, EventError))
		require.NotEmpty(t, payload.Errors)
	})

	t.Run("malformed frame keeps the connection open", func(t *testing.T) {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
		readEvent(t, conn, EventError)

		send(t, conn, EventJoinGame, PayloadRoom{GameID: "ABC123"})
		send(t, conn, EventChatMessage, PayloadChatMessage{GameID: "ABC123", Message: "still here"})
		readEvent(t, conn, EventChatMessage)
	})
}

func TestCheckOrigin(t *testing.T) {
	config := testConfig(util.AuthorityClient)
	config.AllowedOrigins = []string{"http://localhost:5173"}
	_, server := newTestServer(t, config)

	allowed := http.Header{"Origin": []string{"http://localhost:5173"}}
	dial(t, server, allowed)

	url := "ws" + server.URL[len("http"):] + "/ws"
	_, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": []string{"http://elsewhere.example"}})
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
}

func TestServerAuthority(t *testing.T) {
	manager, server := newTestServer(t, testConfig(util.AuthorityServer))

	screen, controller := dial(t, server, nil), dial(t, server, nil)
	joinAll(t, manager, "ABC123", screen, controller)

	require.Eventually(t, func() bool {
		_, ok := manager.Simulation("ABC123")
		return ok
	}, 2*time.Second, 5*time.Millisecond)

	send(t, controller, EventCommands, PayloadCommands{GameID: "ABC123", Commands: []game.Command{game.CommandBottom}})
	controllerID := decode[PayloadCommands](t, readEvent(t, screen, EventCommands)).SocketID

	var state game.State
	for {
		state = decode[game.State](t, readEvent(t, screen, EventState))
		if _, ok := state.Players[controllerID]; ok {
			break
		}
	}

	require.True(t, state.GameStarted)
	require.Equal(t, 313.0, state.Players[controllerID].Y)
	require.Equal(t, "blue", state.Players[controllerID].Color)

	require.NoError(t, controller.Close())
	readEvent(t, screen, EventPlayerLeft)

	authority, ok := manager.Simulation("ABC123")
	require.True(t, ok)
	require.NotContains(t, authority.Snapshot().Players, controllerID)

	require.NoError(t, screen.Close())
	require.Eventually(t, func() bool {
		_, ok := manager.Simulation("ABC123")
		return !ok
	}, 2*time.Second, 5*time.Millisecond)
}

func TestRoomMove(t *testing.T) {
	t.Run("old room is told the player left", func(t *testing.T) {
		manager, server := newTestServer(t, testConfig(util.AuthorityClient))

		screen, controller := dial(t, server, nil), dial(t, server, nil)
		joinAll(t, manager, "ROOM01", screen, controller)

		send(t, controller, EventCommands, PayloadCommands{GameID: "ROOM01", Commands: []game.Command{game.CommandTop}})
		controllerID := decode[PayloadCommands](t, readEvent(t, screen, EventCommands)).SocketID

		send(t, controller, EventJoinGame, PayloadRoom{GameID: "ROOM02"})

		left := decode[PayloadPlayerLeft](t, readEvent(t, screen, EventPlayerLeft))
		require.Equal(t, "ROOM01", left.GameID)
		require.Equal(t, controllerID, left.SocketID)

		require.Len(t, manager.Registry().MembersOf("ROOM01"), 1)
		require.Equal(t, []string{controllerID}, manager.Registry().MembersOf("ROOM02"))
	})

	t.Run("old room simulation drops the paddle", func(t *testing.T) {
		manager, server := newTestServer(t, testConfig(util.AuthorityServer))

		screen, controller := dial(t, server, nil), dial(t, server, nil)
		joinAll(t, manager, "ROOM01", screen, controller)

		require.Eventually(t, func() bool {
			_, ok := manager.Simulation("ROOM01")
			return ok
		}, 2*time.Second, 5*time.Millisecond)

		send(t, controller, EventCommands, PayloadCommands{GameID: "ROOM01", Commands: []game.Command{game.CommandBottom}})
		controllerID := decode[PayloadCommands](t, readEvent(t, screen, EventCommands)).SocketID

		for {
			state := decode[game.State](t, readEvent(t, screen, EventState))
			if _, ok := state.Players[controllerID]; ok {
				break
			}
		}

		send(t, controller, EventJoinGame, PayloadRoom{GameID: "ROOM02"})
		readEvent(t, screen, EventPlayerLeft)

		authority, ok := manager.Simulation("ROOM01")
		require.True(t, ok)
		require.NotContains(t, authority.Snapshot().Players, controllerID)

		// commands aimed at a room the sender no longer belongs to are relayed
		// but never simulated
		send(t, controller, EventCommands, PayloadCommands{GameID: "ROOM01", Commands: []game.Command{game.CommandTop}})
		readEvent(t, screen, EventCommands)

		require.Never(t, func() bool {
			_, ok := authority.Snapshot().Players[controllerID]
			return ok
		}, 200*time.Millisecond, 10*time.Millisecond)
	})
}
