package game

// Slot is the starting geometry of a paddle.
type Slot struct {
	X, Y, Width, Height float64
}

type Settings struct {
	Width  float64
	Height float64

	MoveStep      float64
	BallSize      float64
	BallSpeed     float64
	SpeedIncrease float64
	MaxSpeed      float64

	Palette []string
	Slots   []Slot
}

var DefaultPalette = []string{"blue", "green", "orange", "purple", "yellow", "cyan"}

func DefaultSettings() Settings {
	const width, height = 1000, 700

	return Settings{
		Width:         width,
		Height:        height,
		MoveStep:      3,
		BallSize:      10,
		BallSpeed:     4,
		SpeedIncrease: 0.5,
		MaxSpeed:      12,
		Palette:       DefaultPalette,
		Slots: []Slot{
			{X: 10, Y: height/2 - 40, Width: 20, Height: 80},         // left
			{X: width - 30, Y: height/2 - 40, Width: 20, Height: 80}, // right
			{X: width/2 - 40, Y: 10, Width: 80, Height: 20},          // top
			{X: width/2 - 40, Y: height - 30, Width: 80, Height: 20}, // bottom
		},
	}
}

// initialBalls returns the single centred ball a new game starts with.
func (s Settings) initialBalls() []Ball {
	return []Ball{{
		X:      s.Width / 2,
		Y:      s.Height / 2,
		Width:  s.BallSize,
		Height: s.BallSize,
		DX:     s.BallSpeed,
		DY:     -s.BallSpeed,
	}}
}
