// Package dataset loads header-less numeric CSV tables and prepares them for
// training: splitting inputs from one-hot labels and z-score normalization.
package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrEmpty is returned for a file without any rows.
	ErrEmpty = errors.New("dataset: no rows")
	// ErrRagged is returned when rows have differing column counts.
	ErrRagged = errors.New("dataset: ragged rows")
	// ErrColumns is returned when the column count does not fit the requested split.
	ErrColumns = errors.New("dataset: column count mismatch")
)

// Table is a loaded CSV file.
type Table struct {
	Path string
	Data *mat.Dense
	// Hash is the xxhash of the raw file bytes, used to key run history.
	Hash uint64
}

// Rows returns the number of samples.
func (t *Table) Rows() int {
	r, _ := t.Data.Dims()
	return r
}

// Cols returns the number of columns.
func (t *Table) Cols() int {
	_, c := t.Data.Dims()
	return c
}

// Load reads a header-less numeric CSV file.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	t, err := LoadReader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	t.Path = path
	return t, nil
}

// LoadReader reads a header-less numeric CSV table from r.
// A leading UTF-8 byte order mark is skipped. The hash covers the raw bytes.
func LoadReader(r io.Reader) (*Table, error) {
	digest := xxhash.New()
	src := transform.NewReader(io.TeeReader(r, digest), unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	cr := csv.NewReader(src)
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	var values []float64
	rows, cols := 0, 0
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) && errors.Is(err, csv.ErrFieldCount) {
				return nil, fmt.Errorf("line %d: %w", perr.StartLine, ErrRagged)
			}
			return nil, fmt.Errorf("read csv: %w", err)
		}
		rows++
		if cols == 0 {
			cols = len(record)
		}
		for j, field := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				line, _ := cr.FieldPos(j)
				return nil, fmt.Errorf("line %d, column %d: %w", line, j+1, err)
			}
			values = append(values, v)
		}
	}
	if rows == 0 || cols == 0 {
		return nil, ErrEmpty
	}

	return &Table{
		Data: mat.NewDense(rows, cols, values),
		Hash: digest.Sum64(),
	}, nil
}

// Split copies the first inputFeatures columns into inputs and the rest into
// outputs. When outputClasses > 0 the number of remaining columns must equal it.
func (t *Table) Split(inputFeatures, outputClasses int) (inputs, outputs *mat.Dense, err error) {
	rows, cols := t.Data.Dims()
	if inputFeatures <= 0 || inputFeatures >= cols {
		return nil, nil, fmt.Errorf("%w: %d columns cannot hold %d inputs plus labels", ErrColumns, cols, inputFeatures)
	}
	if outputClasses > 0 && cols-inputFeatures != outputClasses {
		return nil, nil, fmt.Errorf("%w: %d label columns, expected %d", ErrColumns, cols-inputFeatures, outputClasses)
	}

	inputs = mat.DenseCopyOf(t.Data.Slice(0, rows, 0, inputFeatures))
	outputs = mat.DenseCopyOf(t.Data.Slice(0, rows, inputFeatures, cols))
	return inputs, outputs, nil
}

// LoadPair loads the training and test files concurrently.
// An empty trainPath skips the training file and returns a nil train table.
func LoadPair(ctx context.Context, trainPath, testPath string) (train, test *Table, err error) {
	g, ctx := errgroup.WithContext(ctx)

	if trainPath != "" {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t, err := Load(trainPath)
			if err != nil {
				return err
			}
			train = t
			return nil
		})
	}
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		t, err := Load(testPath)
		if err != nil {
			return err
		}
		test = t
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return train, test, nil
}
