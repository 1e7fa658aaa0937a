package mlp

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/go-logr/logr"
	"gonum.org/v1/gonum/mat"
)

// Network holds the two weight matrices.
type Network struct {
	InputHidden  *mat.Dense // inputs × hidden
	HiddenOutput *mat.Dense // hidden × outputs
}

// New creates a network with weights drawn uniformly from [0, 1).
func New(inputs, hidden, outputs int, rng *rand.Rand) *Network {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Network{
		InputHidden:  uniform(inputs, hidden, rng),
		HiddenOutput: uniform(hidden, outputs, rng),
	}
}

func uniform(rows, cols int, rng *rand.Rand) *mat.Dense {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = rng.Float64()
	}
	return mat.NewDense(rows, cols, data)
}

// Dims returns the layer widths.
func (n *Network) Dims() (inputs, hidden, outputs int) {
	inputs, hidden = n.InputHidden.Dims()
	_, outputs = n.HiddenOutput.Dims()
	return inputs, hidden, outputs
}

// Forward propagates x through both layers and returns the activations.
func (n *Network) Forward(x mat.Matrix) (hidden, output *mat.Dense, err error) {
	if err := n.checkInputs(x); err != nil {
		return nil, nil, err
	}

	hidden = new(mat.Dense)
	output = new(mat.Dense)
	n.forward(x, hidden, output)
	return hidden, output, nil
}

func (n *Network) forward(x mat.Matrix, hidden, output *mat.Dense) {
	hidden.Mul(x, n.InputHidden)
	hidden.Apply(sigmoidAt, hidden)
	output.Mul(hidden, n.HiddenOutput)
	output.Apply(sigmoidAt, output)
}

func (n *Network) checkInputs(x mat.Matrix) error {
	inputs, _, _ := n.Dims()
	rows, cols := x.Dims()
	if cols != inputs {
		return fmt.Errorf("%w: %d input columns, network expects %d", ErrShape, cols, inputs)
	}
	if rows == 0 {
		return fmt.Errorf("%w: no samples", ErrShape)
	}
	return nil
}

// TrainOptions controls a training run.
type TrainOptions struct {
	Epochs       int
	LearningRate float64

	// LogEvery logs the loss every N epochs at V(1); 0 disables it.
	LogEvery int
	Logger   logr.Logger
}

// TrainResult summarizes a finished run.
type TrainResult struct {
	Epochs   int
	Loss     float64 // mean squared error of the last forward pass
	Duration time.Duration
}

// Train runs full-batch gradient descent on (x, y) for opts.Epochs epochs.
// Cancelling ctx stops training between epochs and returns ctx.Err() with
// the weights as updated so far.
func (n *Network) Train(ctx context.Context, x, y mat.Matrix, opts TrainOptions) (TrainResult, error) {
	if err := n.checkInputs(x); err != nil {
		return TrainResult{}, err
	}
	_, _, outputs := n.Dims()
	rows, _ := x.Dims()
	yRows, yCols := y.Dims()
	if yRows != rows || yCols != outputs {
		return TrainResult{}, fmt.Errorf("%w: targets are %dx%d, expected %dx%d", ErrShape, yRows, yCols, rows, outputs)
	}
	if opts.Epochs <= 0 {
		return TrainResult{}, fmt.Errorf("mlp: epochs must be > 0 (got %d)", opts.Epochs)
	}

	start := time.Now()
	var (
		hidden, output        mat.Dense
		outErr, outDelta      mat.Dense
		hiddenErr, hidDelta   mat.Dense
		gradOutput, gradInput mat.Dense
	)
	result := TrainResult{}

	for epoch := 1; epoch <= opts.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			result.Duration = time.Since(start)
			return result, err
		}

		n.forward(x, &hidden, &output)

		// Output layer delta
		outErr.Sub(y, &output)
		outDelta.Apply(sigmoidDerivativeAt, &output)
		outDelta.MulElem(&outErr, &outDelta)

		// Hidden layer delta, computed before HiddenOutput changes
		hiddenErr.Mul(&outDelta, n.HiddenOutput.T())
		hidDelta.Apply(sigmoidDerivativeAt, &hidden)
		hidDelta.MulElem(&hiddenErr, &hidDelta)

		gradOutput.Mul(hidden.T(), &outDelta)
		gradOutput.Scale(opts.LearningRate, &gradOutput)
		n.HiddenOutput.Add(n.HiddenOutput, &gradOutput)

		gradInput.Mul(x.T(), &hidDelta)
		gradInput.Scale(opts.LearningRate, &gradInput)
		n.InputHidden.Add(n.InputHidden, &gradInput)

		result.Epochs = epoch
		result.Loss = meanSquare(&outErr)

		if opts.LogEvery > 0 && epoch%opts.LogEvery == 0 {
			opts.Logger.V(1).Info("training", "epoch", epoch, "loss", result.Loss)
		}
	}

	result.Duration = time.Since(start)
	return result, nil
}

// meanSquare returns the mean of the squared elements of m.
func meanSquare(m *mat.Dense) float64 {
	r, c := m.Dims()
	norm := mat.Norm(m, 2) // Frobenius for matrices
	return math.Pow(norm, 2) / float64(r*c)
}
