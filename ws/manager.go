package ws

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/judgegodwins/paddle-party/game"
	"github.com/judgegodwins/paddle-party/rooms"
	"github.com/judgegodwins/paddle-party/util"
	"github.com/samber/lo"
)

var ErrUnknownEvent = errors.New("there is no such event type")

type ClientList map[string]*Client

type ManagerConfig struct {
	*util.Config
	Settings game.Settings
	Logger   *log.Logger
}

// Manager relays events between the members of each room. In server
// authority mode it also runs one simulation per room.
type Manager struct {
	clients ClientList
	sync.RWMutex
	handlers    map[string]EventHandler
	registry    *rooms.Registry
	simulations map[string]*roomSimulation
	config      *util.Config
	settings    game.Settings
	logger      *log.Logger
	upgrader    websocket.Upgrader

	ctx    context.Context
	cancel context.CancelFunc
}

type roomSimulation struct {
	authority game.Authority
	runner    *game.Runner
	cancel    context.CancelFunc
}

func NewManager(cfg ManagerConfig) *Manager {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	settings := cfg.Settings
	if len(settings.Slots) == 0 || len(settings.Palette) == 0 {
		settings = game.DefaultSettings()
	}

	ctx, cancel := context.WithCancel(context.Background())

	m := &Manager{
		clients:     make(ClientList),
		handlers:    make(map[string]EventHandler),
		simulations: make(map[string]*roomSimulation),
		config:      cfg.Config,
		settings:    settings,
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
	}

	m.registry = rooms.NewRegistry(rooms.Hooks{
		Created:   m.roomCreated,
		Destroyed: m.roomDestroyed,
	})

	m.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     m.checkOrigin,
	}

	m.setupEventHandlers()

	return m
}

func (m *Manager) setupEventHandlers() {
	m.handlers[EventJoinGame] = JoinGame
	m.handlers[EventChatMessage] = ChatMessage
	m.handlers[EventCommands] = Commands
	m.handlers[EventStartGame] = StartGame
	m.handlers[EventCapabilityDenied] = CapabilityDenied
}

func (m *Manager) routeEvent(ctx context.Context, evt Event, c *Client) error {
	if handler, ok := m.handlers[evt.Type]; ok {
		if err := handler(ctx, evt, c); err != nil {
			return err
		}

		return nil
	}

	return ErrUnknownEvent
}

func (m *Manager) Registry() *rooms.Registry {
	return m.registry
}

func (m *Manager) addClient(client *Client) {
	m.Lock()
	defer m.Unlock()

	m.clients[client.ID] = client
}

func (m *Manager) removeClient(client *Client) {
	m.Lock()
	defer m.Unlock()

	if _, ok := m.clients[client.ID]; ok {
		client.connection.Close()
		delete(m.clients, client.ID)
	}
}

// Publish marshals payload into an event and emits it to the room.
func (m *Manager) Publish(roomCode, evtType string, payload any) error {
	evt, err := NewEvent(evtType, payload)
	if err != nil {
		return err
	}

	m.EmitToRoom(roomCode, evt)

	return nil
}

// EmitToRoom pushes evt to every current member of the room and returns how
// many clients accepted it.
func (m *Manager) EmitToRoom(roomCode string, evt Event) int {
	members := m.registry.MembersOf(roomCode)

	m.RLock()
	clients := lo.FilterMap(members, func(id string, _ int) (*Client, bool) {
		client, ok := m.clients[id]
		return client, ok
	})
	m.RUnlock()

	delivered := 0
	for _, client := range clients {
		if client.PushToEgress(evt) {
			delivered++
		}
	}

	return delivered
}

// Simulation returns the server-side authority of a room, if one runs.
func (m *Manager) Simulation(roomCode string) (game.Authority, bool) {
	m.RLock()
	defer m.RUnlock()

	sim, ok := m.simulations[rooms.NormalizeCode(roomCode)]
	if !ok {
		return nil, false
	}

	return sim.authority, true
}

func (m *Manager) roomCreated(code string) {
	m.logger.Printf("room %v created", code)

	if m.config == nil || !m.config.ServerAuthoritative() {
		return
	}

	m.Lock()
	defer m.Unlock()

	// a late hook for a room that is already gone or already simulated
	if _, ok := m.simulations[code]; ok || !m.registry.Exists(code) {
		return
	}

	sim := game.NewSimulation(m.settings)
	runner := game.NewRunner(sim, game.RunnerConfig{
		TickRate: m.config.TickRate,
		Logger:   m.logger,
		OnTick: func(state game.State) {
			if err := m.Publish(code, EventState, state); err != nil {
				m.logger.Printf("cannot publish state of room %v: %v", code, err)
			}
		},
	})

	ctx, cancel := context.WithCancel(m.ctx)
	m.simulations[code] = &roomSimulation{
		authority: sim,
		runner:    runner,
		cancel:    cancel,
	}

	go runner.Run(ctx)
}

func (m *Manager) roomDestroyed(code string) {
	m.logger.Printf("room %v destroyed", code)

	m.Lock()
	defer m.Unlock()

	sim, ok := m.simulations[code]
	if !ok || m.registry.Exists(code) {
		return
	}

	sim.cancel()
	delete(m.simulations, code)
}

// disconnect removes a closed client from its room and tells the remaining
// members.
func (m *Manager) disconnect(client *Client) {
	if code, ok := m.registry.Leave(client.ID); ok {
		m.leaveRoom(code, client.ID)
	}
}

// leaveRoom finishes a departure the registry has already recorded: the
// connection loses its paddle in the room's simulation and the members still
// in the room get a playerLeft event.
func (m *Manager) leaveRoom(code, connID string) {
	if authority, ok := m.Simulation(code); ok {
		authority.RemoveParticipant(connID)
	}

	err := m.Publish(code, EventPlayerLeft, PayloadPlayerLeft{
		GameID:   code,
		SocketID: connID,
	})
	if err != nil {
		m.logger.Printf("cannot publish departure of %v: %v", connID, err)
	}
}

// Close stops every room simulation.
func (m *Manager) Close() {
	m.cancel()

	m.Lock()
	defer m.Unlock()

	m.simulations = make(map[string]*roomSimulation)
}

// Websocket connection handler
func (m *Manager) ServeWS(c *gin.Context) {
	conn, err := m.upgrader.Upgrade(c.Writer, c.Request, nil)

	if err != nil {
		m.logger.Printf("error upgrading to websocket connection: %v", err)
		return
	}

	egressSize := 64
	if m.config != nil {
		egressSize = m.config.EgressBuffer
	}

	client := NewClient(conn, m, egressSize)

	m.addClient(client)
	m.logger.Printf("client %v connected", client.ID)

	ctx, cancel := context.WithCancel(m.ctx)

	defer func() {
		cancel()
		err := client.connection.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait),
		)
		if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
			m.logger.Printf("error sending close message to %v: %v", client.ID, err)
		}
		m.removeClient(client)
		m.disconnect(client)
	}()

	go client.readMessages(ctx)
	go client.writeMessages(ctx)

	select {
	case err = <-client.Err():
		m.logger.Printf("client %v disconnected: %v", client.ID, err)
	case <-ctx.Done():
	}
}

func (m *Manager) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || m.config == nil {
		return true
	}

	return lo.Contains(m.config.AllowedOrigins, "*") || lo.Contains(m.config.AllowedOrigins, origin)
}
