package game

import (
	"math"

	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

// Engine is the single-room game state machine. It is not safe for
// concurrent use; Simulation adds the locking.
type Engine struct {
	settings  Settings
	status    Status
	players   map[string]*Participant
	balls     []Ball
	joinOrder int
}

func NewEngine(settings Settings) *Engine {
	return &Engine{
		settings: settings,
		status:   StatusWaiting,
		players:  make(map[string]*Participant),
		balls:    settings.initialBalls(),
	}
}

func (e *Engine) Status() Status {
	return e.status
}

// Start moves a waiting game to active. Calling it again has no effect.
func (e *Engine) Start() {
	if e.status == StatusWaiting {
		e.status = StatusActive
	}
}

// MaterializeParticipant creates the participant for id if it does not exist
// yet and reports whether it was created.
func (e *Engine) MaterializeParticipant(id string) (*Participant, bool) {
	if p, ok := e.players[id]; ok {
		return p, false
	}

	slot := e.settings.Slots[e.joinOrder%len(e.settings.Slots)]
	color := e.settings.Palette[e.joinOrder%len(e.settings.Palette)]
	e.joinOrder++

	p := &Participant{
		ID:     id,
		X:      slot.X,
		Y:      slot.Y,
		Width:  slot.Width,
		Height: slot.Height,
		Color:  color,
	}
	e.players[id] = p
	e.Start()

	return p, true
}

// Apply materializes the sender if needed and applies the command to its paddle.
func (e *Engine) Apply(senderID string, cmd Command) {
	p, _ := e.MaterializeParticipant(senderID)
	move(p, cmd, e.settings)
}

func (e *Engine) RemoveParticipant(id string) bool {
	if _, ok := e.players[id]; !ok {
		return false
	}
	delete(e.players, id)
	return true
}

// Step advances the physics by one tick. A waiting game does not move.
func (e *Engine) Step() {
	if e.status != StatusActive {
		return
	}

	for i := range e.balls {
		b := &e.balls[i]
		b.X += b.DX
		b.Y += b.DY
		e.reflect(b)
	}

	// sorted so that compounding hits resolve the same way on every run
	ids := lo.Keys(e.players)
	slices.Sort(ids)

	for _, id := range ids {
		p := e.players[id]
		for i := range e.balls {
			if overlaps(p.rect(), e.balls[i].rect()) {
				e.bounce(p, &e.balls[i])
			}
		}
	}
}

// reflect keeps a ball inside the field, flipping the velocity component of
// the wall it crossed.
func (e *Engine) reflect(b *Ball) {
	if b.Y < 0 {
		b.Y = 0
		b.DY = -b.DY
	} else if b.Y+b.Height > e.settings.Height {
		b.Y = e.settings.Height - b.Height
		b.DY = -b.DY
	}

	if b.X < 0 {
		b.X = 0
		b.DX = -b.DX
	} else if b.X+b.Width > e.settings.Width {
		b.X = e.settings.Width - b.Width
		b.DX = -b.DX
	}
}

func (e *Engine) bounce(p *Participant, b *Ball) {
	b.DX = -b.DX

	if b.DX > 0 {
		b.X = p.X + p.Width
	} else {
		b.X = p.X - b.Width
	}

	speed := math.Min(math.Abs(b.DX)+e.settings.SpeedIncrease, e.settings.MaxSpeed)
	if b.DX < 0 {
		b.DX = -speed
	} else {
		b.DX = speed
	}

	// repositioning next to a paddle on the field edge can leave the ball
	// partly outside
	b.X = clamp(b.X, 0, e.settings.Width-b.Width)

	p.Score++
}

// Snapshot returns a deep copy of the current state.
func (e *Engine) Snapshot() State {
	players := make(map[string]Participant, len(e.players))
	for id, p := range e.players {
		players[id] = *p
	}

	balls := make([]Ball, len(e.balls))
	copy(balls, e.balls)

	return State{
		Players:     players,
		Balls:       balls,
		GameOver:    e.status == StatusOver,
		GameStarted: e.status != StatusWaiting,
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
