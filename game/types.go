package game

type Command string

const (
	CommandTop    Command = "Top"
	CommandBottom Command = "Bottom"
)

type Status int

const (
	StatusWaiting Status = iota // 0
	StatusActive                // 1
	// StatusOver is reserved for a win condition; no rule reaches it yet.
	StatusOver // 2
)

func (s Status) String() string {
	names := []string{"waiting", "active", "over"}
	if s < 0 || int(s) >= len(names) {
		return "unknown"
	}
	return names[s]
}

// Entry is a command waiting in a Queue.
type Entry struct {
	Seq      uint64  `json:"seq"`
	SenderID string  `json:"socketID"`
	Command  Command `json:"command"`
}

type Participant struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Color  string  `json:"color"`
	Score  int     `json:"score"`
}

type Ball struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	DX     float64 `json:"dx"`
	DY     float64 `json:"dy"`
	// Resetting is reserved for respawning a ball after a miss. Nothing sets it.
	Resetting bool `json:"resetting"`
}

type State struct {
	Players     map[string]Participant `json:"players"`
	Balls       []Ball                 `json:"balls"`
	GameOver    bool                   `json:"gameOver"`
	GameStarted bool                   `json:"gameStarted"`
}

// rect is the axis-aligned box shared by paddles and balls.
type rect struct {
	x, y, w, h float64
}

func (p Participant) rect() rect {
	return rect{p.X, p.Y, p.Width, p.Height}
}

func (b Ball) rect() rect {
	return rect{b.X, b.Y, b.Width, b.Height}
}

func overlaps(a, b rect) bool {
	return a.x < b.x+b.w &&
		a.x+a.w > b.x &&
		a.y < b.y+b.h &&
		a.y+a.h > b.y
}
