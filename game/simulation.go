package game

import "sync"

// Authority owns the game state of one room. The screen client is the
// authority in client mode; Simulation is the server-side implementation.
type Authority interface {
	Submit(senderID string, commands ...Command)
	Start()
	RemoveParticipant(id string) bool
	Tick() State
	Snapshot() State
}

// Simulation pairs an Engine with its command Queue.
type Simulation struct {
	mu     sync.Mutex
	engine *Engine
	queue  *Queue
}

var _ Authority = (*Simulation)(nil)

func NewSimulation(settings Settings) *Simulation {
	return &Simulation{
		engine: NewEngine(settings),
		queue:  NewQueue(),
	}
}

func (s *Simulation) Submit(senderID string, commands ...Command) {
	s.queue.Enqueue(senderID, commands...)
}

func (s *Simulation) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.engine.Start()
}

// RemoveParticipant drops the participant together with its queued
// commands, so the next tick cannot bring it back.
func (s *Simulation) RemoveParticipant(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	purged := s.queue.Remove(id)
	removed := s.engine.RemoveParticipant(id)

	return removed || purged > 0
}

// Tick applies every queued command in arrival order, then steps the physics.
func (s *Simulation) Tick() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entry := range s.queue.Drain() {
		s.engine.Apply(entry.SenderID, entry.Command)
	}
	s.engine.Step()

	return s.engine.Snapshot()
}

func (s *Simulation) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.engine.Snapshot()
}
