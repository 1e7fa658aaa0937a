package backgammon

// Candidate pairs a legal move with the position it produces.
// The resulting position still has the mover as SideToMove.
type Candidate struct {
	Move   Move
	Result Position
}

// destination returns where a checker of the side to move lands when moved
// from "from" by die, and whether that step is legal in p.
func (p *Position) destination(from, die int) (int, bool) {
	c := p.SideToMove
	if p.Checkers[c][from] == 0 {
		return 0, false
	}
	// Checkers on the bar must enter before anything else moves
	if p.Checkers[c][Bar] > 0 && from != Bar {
		return 0, false
	}

	to := from - die
	if to <= 0 {
		if !p.AllHome(c) {
			return 0, false
		}
		// A larger die may only bear off the highest checker
		if to < 0 && p.Highest(c) != from {
			return 0, false
		}
		return Off, true
	}

	if p.Opponent(c, to) >= 2 {
		return 0, false
	}
	return to, true
}

// applyStep moves a checker of the side to move, hitting a lone opponent.
func (p *Position) applyStep(from, to int) {
	c := p.SideToMove
	p.Checkers[c][from]--
	if to == Off {
		p.Checkers[c][Off]++
		return
	}
	opp := c.Other()
	if p.Checkers[opp][mirror(to)] == 1 {
		p.Checkers[opp][mirror(to)] = 0
		p.Checkers[opp][Bar]++
	}
	p.Checkers[c][to]++
}

// MakeMove applies m to the position and passes the turn.
func (p *Position) MakeMove(m Move) {
	for i := 0; i < m.Len(); i++ {
		s := m.Steps[i]
		p.applyStep(int(s.From), int(s.To))
	}
	p.SideToMove = p.SideToMove.Other()
}

// GeneratePlays returns every distinct legal play for the roll, each with
// its resulting position. Plays that lead to the same position are merged.
// The result is empty when the roll cannot be played.
//
// Rules: use as many dice as possible; when only one die can be used, the
// larger one must be used if it can be.
func (p *Position) GeneratePlays(d Dice) []Candidate {
	var orders [][]int
	if d.IsDouble() {
		die := int(d[0])
		orders = [][]int{{die, die, die, die}}
	} else {
		a, b := int(d[0]), int(d[1])
		orders = [][]int{{a, b}, {b, a}}
	}

	var leaves []Candidate
	for _, dice := range orders {
		collect(*p, dice, NoMove, &leaves)
	}

	maxLen := 0
	for _, l := range leaves {
		if l.Move.Len() > maxLen {
			maxLen = l.Move.Len()
		}
	}
	if maxLen == 0 {
		return nil
	}

	larger := uint8(max(d[0], d[1]))
	needLarger := false
	if maxLen == 1 && !d.IsDouble() {
		for _, l := range leaves {
			if l.Move.Steps[0].Die == larger {
				needLarger = true
				break
			}
		}
	}

	seen := make(map[Position]struct{}, len(leaves))
	plays := make([]Candidate, 0, len(leaves))
	for _, l := range leaves {
		if l.Move.Len() != maxLen {
			continue
		}
		if needLarger && l.Move.Steps[0].Die != larger {
			continue
		}
		if _, dup := seen[l.Result]; dup {
			continue
		}
		seen[l.Result] = struct{}{}
		plays = append(plays, l)
	}
	return plays
}

// collect walks every sequence of steps for dice from pos, appending one
// leaf per sequence that cannot be extended further.
func collect(pos Position, dice []int, cur Move, leaves *[]Candidate) {
	if len(dice) == 0 {
		*leaves = append(*leaves, Candidate{Move: cur, Result: pos})
		return
	}

	die := dice[0]
	extended := false
	for from := Bar; from >= 1; from-- {
		to, ok := pos.destination(from, die)
		if !ok {
			continue
		}
		next := pos
		next.applyStep(from, to)
		step := Step{From: uint8(from), To: uint8(to), Die: uint8(die)}
		collect(next, dice[1:], cur.With(step), leaves)
		extended = true
	}

	if !extended {
		*leaves = append(*leaves, Candidate{Move: cur, Result: pos})
	}
}

// GenerateMoves returns the distinct legal moves for the roll.
func (p *Position) GenerateMoves(d Dice) []Move {
	plays := p.GeneratePlays(d)
	moves := make([]Move, len(plays))
	for i, pl := range plays {
		moves[i] = pl.Move
	}
	return moves
}
