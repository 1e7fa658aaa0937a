package backgammon

import (
	"math/rand"
	"strconv"
	"strings"
)

// Dice is a roll of two dice.
type Dice [2]uint8

// Roll throws two dice.
func Roll(rng *rand.Rand) Dice {
	return Dice{uint8(rng.Intn(6) + 1), uint8(rng.Intn(6) + 1)}
}

// IsDouble returns true if both dice show the same face.
func (d Dice) IsDouble() bool {
	return d[0] == d[1]
}

// String returns the roll as e.g. "6-1".
func (d Dice) String() string {
	return strconv.Itoa(int(d[0])) + "-" + strconv.Itoa(int(d[1]))
}

// Step moves one checker by one die.
type Step struct {
	From uint8 // point, or Bar
	To   uint8 // point, or Off
	Die  uint8
}

// String returns the step in standard notation, e.g. "13/7", "bar/22", "3/off".
func (s Step) String() string {
	from := strconv.Itoa(int(s.From))
	if s.From == Bar {
		from = "bar"
	}
	to := strconv.Itoa(int(s.To))
	if s.To == Off {
		to = "off"
	}
	return from + "/" + to
}

// Move is a full play for one roll: up to four steps.
// Moves are comparable and can be used as map keys.
type Move struct {
	Steps [4]Step
	N     uint8
}

// NoMove is the empty play.
var NoMove = Move{}

// Len returns the number of steps.
func (m Move) Len() int {
	return int(m.N)
}

// With returns m extended by s.
func (m Move) With(s Step) Move {
	m.Steps[m.N] = s
	m.N++
	return m
}

// String returns the play in standard notation, e.g. "24/18 13/11".
func (m Move) String() string {
	if m.N == 0 {
		return "pass"
	}
	parts := make([]string, m.N)
	for i := 0; i < int(m.N); i++ {
		parts[i] = m.Steps[i].String()
	}
	return strings.Join(parts, " ")
}
