package game

// move applies one command to a paddle. Every paddle moves along y, including
// the ones on the top and bottom edges. Unknown commands leave it in place.
func move(p *Participant, cmd Command, s Settings) {
	switch cmd {
	case CommandTop:
		p.Y = clamp(p.Y-s.MoveStep, 0, s.Height-p.Height)
	case CommandBottom:
		p.Y = clamp(p.Y+s.MoveStep, 0, s.Height-p.Height)
	}
}
