package backgammon

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/go-logr/logr"
)

// MaxTurns bounds a game played by Play.
const MaxTurns = 10000

// ErrTooLong is returned when a game does not finish within MaxTurns.
var ErrTooLong = errors.New("backgammon: game exceeded turn limit")

// Scorer assigns a score to a candidate move; higher is better.
type Scorer interface {
	Score(pos *Position, m Move) float64
}

// RandomScorer scores every move with a uniform value in [0, 1).
type RandomScorer struct {
	rng *rand.Rand
}

// NewRandomScorer creates a random scorer. A nil rng uses a time seed.
func NewRandomScorer(rng *rand.Rand) *RandomScorer {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &RandomScorer{rng: rng}
}

// Score returns a random value.
func (s *RandomScorer) Score(*Position, Move) float64 {
	return s.rng.Float64()
}

// Result describes a finished game.
type Result struct {
	Winner   Color
	Points   int // 1 single, 2 gammon, 3 backgammon
	Turns    int
	Passes   int
	Duration time.Duration
}

// Play scores every candidate move of every turn with s until the game has
// a winner.
func Play(ctx context.Context, g *Game, s Scorer, log logr.Logger) (Result, error) {
	start := time.Now()
	for {
		if winner, ok := g.Winner(); ok {
			res := Result{
				Winner:   winner,
				Points:   g.pos.WinPoints(winner),
				Turns:    g.Turns(),
				Passes:   g.Passes(),
				Duration: time.Since(start),
			}
			log.V(1).Info("game over", "winner", winner, "points", res.Points, "turns", res.Turns)
			return res, nil
		}
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if g.Turns() >= MaxTurns {
			return Result{}, ErrTooLong
		}

		pos := g.Position()
		moves := g.Moves()
		log.V(2).Info("turn", "side", pos.SideToMove, "dice", g.Dice(), "candidates", len(moves))
		for _, m := range moves {
			if err := g.ScoreMove(m, s.Score(pos, m)); err != nil {
				return Result{}, err
			}
		}
	}
}
