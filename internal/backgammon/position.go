// Package backgammon implements a minimal backgammon rules engine: position,
// dice, legal play generation and a game driven by externally scored moves.
package backgammon

import (
	"fmt"
	"strings"
)

// Color is a side.
type Color uint8

const (
	White Color = iota
	Black
)

// Other returns the opposing side.
func (c Color) Other() Color {
	return c ^ 1
}

// String returns "white" or "black".
func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// Board layout constants. Points are numbered 1..24 from the owner's side,
// so every side bears off past point 1 and enters from the bar at 25.
const (
	NumCheckers = 15
	NumPoints   = 24
	HomePoints  = 6

	Off = 0  // borne-off tray
	Bar = 25 // checkers waiting to enter
)

// Position represents a complete backgammon position.
type Position struct {
	// Checkers[c][i] is the number of c's checkers on point i counted from
	// c's side; index Off and Bar as above.
	Checkers [2][NumPoints + 2]uint8

	SideToMove Color
}

// NewPosition creates the starting position with White to move.
func NewPosition() *Position {
	p := &Position{}
	for c := White; c <= Black; c++ {
		p.Checkers[c][24] = 2
		p.Checkers[c][13] = 5
		p.Checkers[c][8] = 3
		p.Checkers[c][6] = 5
	}
	return p
}

// Copy creates a copy of the position.
func (p *Position) Copy() *Position {
	newPos := *p
	return &newPos
}

// mirror converts a point number between the two sides' numbering.
func mirror(point int) int {
	return NumPoints + 1 - point
}

// Opponent returns how many of c's opponent's checkers sit on c's point.
func (p *Position) Opponent(c Color, point int) uint8 {
	if point < 1 || point > NumPoints {
		return 0
	}
	return p.Checkers[c.Other()][mirror(point)]
}

// AllHome returns true if every checker of c not yet borne off is in c's home board.
func (p *Position) AllHome(c Color) bool {
	for i := HomePoints + 1; i <= Bar; i++ {
		if p.Checkers[c][i] > 0 {
			return false
		}
	}
	return true
}

// Highest returns the highest point (or Bar) holding a checker of c, 0 if none.
func (p *Position) Highest(c Color) int {
	for i := Bar; i >= 1; i-- {
		if p.Checkers[c][i] > 0 {
			return i
		}
	}
	return 0
}

// Pips returns the pip count of c: the total distance left to bear off.
func (p *Position) Pips(c Color) int {
	pips := 0
	for i := 1; i <= Bar; i++ {
		pips += i * int(p.Checkers[c][i])
	}
	return pips
}

// Count returns the total number of c's checkers, borne off included.
func (p *Position) Count(c Color) int {
	n := 0
	for _, k := range p.Checkers[c] {
		n += int(k)
	}
	return n
}

// Winner returns the side that has borne off all checkers.
func (p *Position) Winner() (Color, bool) {
	for c := White; c <= Black; c++ {
		if p.Checkers[c][Off] == NumCheckers {
			return c, true
		}
	}
	return White, false
}

// WinPoints returns 1 for a single game, 2 for a gammon and 3 for a
// backgammon, scored for winner. It returns 0 if winner has not won.
func (p *Position) WinPoints(winner Color) int {
	if p.Checkers[winner][Off] != NumCheckers {
		return 0
	}
	loser := winner.Other()
	if p.Checkers[loser][Off] > 0 {
		return 1
	}
	// Loser checkers on the bar or in the winner's home board
	for i := mirror(HomePoints); i <= Bar; i++ {
		if p.Checkers[loser][i] > 0 {
			return 3
		}
	}
	return 2
}

// String renders the position from White's point of view.
func (p *Position) String() string {
	var sb strings.Builder
	for point := NumPoints; point >= 1; point-- {
		w := p.Checkers[White][point]
		b := p.Checkers[Black][mirror(point)]
		switch {
		case w > 0:
			fmt.Fprintf(&sb, "%2d:W%-2d ", point, w)
		case b > 0:
			fmt.Fprintf(&sb, "%2d:B%-2d ", point, b)
		default:
			fmt.Fprintf(&sb, "%2d:--- ", point)
		}
		if point == 13 {
			sb.WriteByte('\n')
		}
	}
	fmt.Fprintf(&sb, "\nbar W%d B%d  off W%d B%d  %s to move",
		p.Checkers[White][Bar], p.Checkers[Black][Bar],
		p.Checkers[White][Off], p.Checkers[Black][Off],
		p.SideToMove)
	return sb.String()
}
