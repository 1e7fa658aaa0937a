package mlp

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"gonum.org/v1/gonum/mat"
)

// Weight file format constants
const (
	MagicNumber = 0x57504C4D // "MLPW"
	Version     = 1

	// maxWeights bounds a single matrix read from an untrusted header.
	maxWeights = 1 << 26
)

// FileHeader is the header of the weight file.
type FileHeader struct {
	Magic   uint32
	Version uint32
	Inputs  uint32
	Hidden  uint32
	Outputs uint32
}

// SaveWeights writes the network to a zstd-compressed file.
// Format after decompression (little-endian):
//   - Header: Magic, Version, Inputs, Hidden, Outputs (uint32 each)
//   - InputHidden: Inputs*Hidden float64, row-major
//   - HiddenOutput: Hidden*Outputs float64, row-major
func (n *Network) SaveWeights(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create weights file: %w", err)
	}

	if err := n.WriteWeights(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteWeights writes the compressed weight stream to w.
func (n *Network) WriteWeights(w io.Writer) error {
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("failed to create encoder: %w", err)
	}

	inputs, hidden, outputs := n.Dims()
	header := FileHeader{
		Magic:   MagicNumber,
		Version: Version,
		Inputs:  uint32(inputs),
		Hidden:  uint32(hidden),
		Outputs: uint32(outputs),
	}
	if err := binary.Write(enc, binary.LittleEndian, &header); err != nil {
		enc.Close()
		return fmt.Errorf("failed to write header: %w", err)
	}

	if err := writeMatrix(enc, n.InputHidden); err != nil {
		enc.Close()
		return fmt.Errorf("failed to write input weights: %w", err)
	}
	if err := writeMatrix(enc, n.HiddenOutput); err != nil {
		enc.Close()
		return fmt.Errorf("failed to write output weights: %w", err)
	}

	return enc.Close()
}

func writeMatrix(w io.Writer, m *mat.Dense) error {
	rows, cols := m.Dims()
	row := make([]float64, cols)
	for i := 0; i < rows; i++ {
		mat.Row(row, i, m)
		if err := binary.Write(w, binary.LittleEndian, row); err != nil {
			return err
		}
	}
	return nil
}

// LoadWeights reads a network written by SaveWeights.
func LoadWeights(filename string) (*Network, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open weights file: %w", err)
	}
	defer f.Close()

	return ReadWeights(f)
}

// ReadWeights reads a compressed weight stream from r.
func ReadWeights(r io.Reader) (*Network, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	defer dec.Close()

	var header FileHeader
	if err := binary.Read(dec, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	if header.Magic != MagicNumber {
		return nil, fmt.Errorf("invalid magic number: expected %x, got %x", MagicNumber, header.Magic)
	}
	if header.Version != Version {
		return nil, fmt.Errorf("unsupported version: expected %d, got %d", Version, header.Version)
	}
	if header.Inputs == 0 || header.Hidden == 0 || header.Outputs == 0 {
		return nil, fmt.Errorf("%w: zero layer width in header", ErrShape)
	}
	if uint64(header.Inputs)*uint64(header.Hidden) > maxWeights ||
		uint64(header.Hidden)*uint64(header.Outputs) > maxWeights {
		return nil, fmt.Errorf("%w: header dimensions too large", ErrShape)
	}

	inputHidden, err := readMatrix(dec, int(header.Inputs), int(header.Hidden))
	if err != nil {
		return nil, fmt.Errorf("failed to read input weights: %w", err)
	}
	hiddenOutput, err := readMatrix(dec, int(header.Hidden), int(header.Outputs))
	if err != nil {
		return nil, fmt.Errorf("failed to read output weights: %w", err)
	}

	var extra [1]byte
	switch _, err := io.ReadFull(dec, extra[:]); {
	case err == nil:
		return nil, errors.New("unexpected data after output weights")
	case !errors.Is(err, io.EOF):
		return nil, fmt.Errorf("failed to read end of weights: %w", err)
	}

	return &Network{InputHidden: inputHidden, HiddenOutput: hiddenOutput}, nil
}

func readMatrix(r io.Reader, rows, cols int) (*mat.Dense, error) {
	data := make([]float64, rows*cols)
	if err := binary.Read(r, binary.LittleEndian, data); err != nil {
		return nil, err
	}
	return mat.NewDense(rows, cols, data), nil
}
