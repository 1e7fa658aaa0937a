package mlp

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Predict runs x through the network and returns one one-hot row per sample,
// with the 1 at the arg-max of the output activations.
func (n *Network) Predict(x mat.Matrix) (*mat.Dense, error) {
	_, output, err := n.Forward(x)
	if err != nil {
		return nil, err
	}
	return OneHot(ArgMax(output), output.RawMatrix().Cols), nil
}

// ArgMax returns the column index of the largest value in each row.
// Ties resolve to the lowest index.
func ArgMax(m mat.Matrix) []int {
	rows, cols := m.Dims()
	idx := make([]int, rows)
	row := make([]float64, cols)
	for i := 0; i < rows; i++ {
		mat.Row(row, i, m)
		idx[i] = floats.MaxIdx(row)
	}
	return idx
}

// OneHot expands class indices into rows of the identity matrix.
func OneHot(classes []int, width int) *mat.Dense {
	out := mat.NewDense(len(classes), width, nil)
	for i, c := range classes {
		out.Set(i, c, 1)
	}
	return out
}

// Accuracy returns the percentage of rows of predicted that equal the
// corresponding row of truth exactly. The result is in [0, 100].
func Accuracy(predicted, truth mat.Matrix) (float64, error) {
	pr, pc := predicted.Dims()
	tr, tc := truth.Dims()
	if pr != tr || pc != tc {
		return 0, fmt.Errorf("%w: predictions are %dx%d, labels are %dx%d", ErrShape, pr, pc, tr, tc)
	}
	if pr == 0 {
		return 0, nil
	}

	correct := 0
	p := make([]float64, pc)
	t := make([]float64, tc)
	for i := 0; i < pr; i++ {
		mat.Row(p, i, predicted)
		mat.Row(t, i, truth)
		if floats.Equal(p, t) {
			correct++
		}
	}
	return float64(correct) / float64(pr) * 100, nil
}
