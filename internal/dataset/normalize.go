package dataset

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// constantTolerance is the standard deviation, relative to the magnitude of
// the column mean, at or below which a column counts as constant. It only
// absorbs the rounding left by summing identical values.
const constantTolerance = 1e-12

// Stats describes the per-column statistics used by Normalize.
type Stats struct {
	Mean []float64
	Std  []float64
	// Constant lists the columns that had zero spread and were only centered.
	Constant []int
}

// Normalize rescales every column of m in place to zero mean and unit
// population standard deviation. Constant columns become all zeros.
func Normalize(m *mat.Dense) Stats {
	rows, cols := m.Dims()
	stats := Stats{
		Mean: make([]float64, cols),
		Std:  make([]float64, cols),
	}
	col := make([]float64, rows)

	for j := 0; j < cols; j++ {
		mat.Col(col, j, m)
		mean, std := stat.PopMeanStdDev(col, nil)
		stats.Mean[j] = mean
		stats.Std[j] = std

		if isConstant(mean, std) {
			stats.Constant = append(stats.Constant, j)
			for i := range col {
				col[i] = 0
			}
		} else {
			for i := range col {
				col[i] = (col[i] - mean) / std
			}
		}
		m.SetCol(j, col)
	}

	return stats
}

func isConstant(mean, std float64) bool {
	if math.IsNaN(std) || std == 0 {
		return true
	}
	return std <= constantTolerance*math.Abs(mean)
}
