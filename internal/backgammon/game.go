package backgammon

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

var (
	// ErrGameOver is returned when scoring a move after the game has a winner.
	ErrGameOver = errors.New("backgammon: game is over")
	// ErrUnknownMove is returned for a move that is not a candidate this turn.
	ErrUnknownMove = errors.New("backgammon: move is not legal this turn")
)

// Game is a single game driven by externally scored moves. Every turn offers
// a list of candidate moves; each one is given a score with ScoreMove, and
// once all of them are scored the best one is played and the next side rolls.
type Game struct {
	pos   Position
	dice  Dice
	plays []Candidate
	// scores is indexed like plays; scored marks which entries are set
	scores []float64
	scored []bool
	left   int

	rng   *rand.Rand
	turns int
	// Rolls that could not be played
	passes int
}

// NewGame sets up the starting position and plays the opening roll: each
// side throws one die, re-rolling ties, and the higher die moves first
// using both dice.
func NewGame(rng *rand.Rand) *Game {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	g := &Game{
		pos: *NewPosition(),
		rng: rng,
	}

	var d Dice
	for {
		d = Roll(rng)
		if !d.IsDouble() {
			break
		}
	}
	if d[0] > d[1] {
		g.pos.SideToMove = White
	} else {
		g.pos.SideToMove = Black
	}
	g.startTurn(d)
	return g
}

// NewGameFrom starts a game from an arbitrary position with a given roll.
func NewGameFrom(pos *Position, d Dice, rng *rand.Rand) *Game {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	g := &Game{pos: *pos, rng: rng}
	g.startTurn(d)
	return g
}

// startTurn generates candidates for d, passing as long as the roll cannot be played.
func (g *Game) startTurn(d Dice) {
	for {
		if _, over := g.pos.Winner(); over {
			g.plays = nil
			return
		}
		g.dice = d
		g.plays = g.pos.GeneratePlays(d)
		if len(g.plays) > 0 {
			break
		}
		// Both sides can be shut out indefinitely; Play reports ErrTooLong
		if g.turns >= MaxTurns {
			g.plays = nil
			return
		}
		g.passes++
		g.turns++
		g.pos.SideToMove = g.pos.SideToMove.Other()
		d = Roll(g.rng)
	}
	g.scores = make([]float64, len(g.plays))
	g.scored = make([]bool, len(g.plays))
	g.left = len(g.plays)
}

// Position returns a copy of the current position.
func (g *Game) Position() *Position {
	return g.pos.Copy()
}

// Dice returns the roll of the current turn.
func (g *Game) Dice() Dice {
	return g.dice
}

// Moves returns the candidate moves of the current turn.
// It is empty once the game is over.
func (g *Game) Moves() []Move {
	moves := make([]Move, len(g.plays))
	for i, pl := range g.plays {
		moves[i] = pl.Move
	}
	return moves
}

// Turns returns the number of completed turns, passes included.
func (g *Game) Turns() int {
	return g.turns
}

// Passes returns the number of rolls that could not be played.
func (g *Game) Passes() int {
	return g.passes
}

// Winner returns the winning side once all its checkers are borne off.
func (g *Game) Winner() (Color, bool) {
	return g.pos.Winner()
}

// ScoreMove records score for m. When the last candidate of the turn has
// been scored the highest scoring move is played (ties go to the earlier
// candidate) and the next side rolls. Scoring a move twice overwrites the
// earlier score.
func (g *Game) ScoreMove(m Move, score float64) error {
	if _, over := g.pos.Winner(); over {
		return ErrGameOver
	}

	idx := -1
	for i, pl := range g.plays {
		if pl.Move == m {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s with %s", ErrUnknownMove, m, g.dice)
	}

	g.scores[idx] = score
	if !g.scored[idx] {
		g.scored[idx] = true
		g.left--
	}
	if g.left == 0 {
		g.commit()
	}
	return nil
}

// commit plays the best scored candidate and starts the next turn.
func (g *Game) commit() {
	best := 0
	for i := 1; i < len(g.scores); i++ {
		if g.scores[i] > g.scores[best] {
			best = i
		}
	}

	g.pos = g.plays[best].Result
	g.pos.SideToMove = g.pos.SideToMove.Other()
	g.turns++
	g.startTurn(Roll(g.rng))
}
