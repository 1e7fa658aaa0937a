// Package mlp implements a two-layer sigmoid perceptron trained with
// full-batch gradient descent and manual backpropagation.
//
// Layout:
//
//	input (n×I) · InputHidden (I×H) → sigmoid → hidden (n×H)
//	hidden (n×H) · HiddenOutput (H×O) → sigmoid → output (n×O)
//
// There are no bias terms.
package mlp

import (
	"errors"
	"math"
)

// ErrShape is returned when matrix dimensions do not conform.
var ErrShape = errors.New("mlp: shape mismatch")

// Sigmoid is the logistic function.
func Sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

// SigmoidDerivative returns the slope of the sigmoid expressed through its
// output a = Sigmoid(z), i.e. a(1-a). It must be given the activation, not z.
func SigmoidDerivative(a float64) float64 {
	return a * (1 - a)
}

func sigmoidAt(_, _ int, v float64) float64 {
	return Sigmoid(v)
}

func sigmoidDerivativeAt(_, _ int, v float64) float64 {
	return SigmoidDerivative(v)
}
