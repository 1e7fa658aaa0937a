package dataset

import (
	"bytes"
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const irisLike = `5.1,3.5,1.4,0.2,1,0,0
4.9,3.0,1.4,0.2,1,0,0
7.0,3.2,4.7,1.4,0,1,0
6.4,3.2,4.5,1.5,0,1,0
6.3,3.3,6.0,2.5,0,0,1
5.8,2.7,5.1,1.9,0,0,1
`

func TestLoadReader(t *testing.T) {
	tbl, err := LoadReader(strings.NewReader(irisLike))
	if err != nil {
		t.Fatalf("LoadReader: %v", err)
	}
	if tbl.Rows() != 6 || tbl.Cols() != 7 {
		t.Fatalf("expected 6x7 table, got %dx%d", tbl.Rows(), tbl.Cols())
	}
	if got := tbl.Data.At(2, 0); got != 7.0 {
		t.Errorf("At(2,0) = %v, want 7.0", got)
	}
	if tbl.Hash == 0 {
		t.Error("expected a non-zero content hash")
	}

	again, err := LoadReader(strings.NewReader(irisLike))
	if err != nil {
		t.Fatalf("LoadReader: %v", err)
	}
	if again.Hash != tbl.Hash {
		t.Errorf("hash not stable: %x != %x", again.Hash, tbl.Hash)
	}
}

func TestLoadReaderErrors(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		_, err := LoadReader(strings.NewReader(""))
		if !errors.Is(err, ErrEmpty) {
			t.Errorf("expected ErrEmpty, got %v", err)
		}
	})

	t.Run("Ragged", func(t *testing.T) {
		_, err := LoadReader(strings.NewReader("1,2,3\n4,5\n"))
		if !errors.Is(err, ErrRagged) {
			t.Errorf("expected ErrRagged, got %v", err)
		}
	})

	t.Run("NotANumber", func(t *testing.T) {
		_, err := LoadReader(strings.NewReader("1,2,3\n4,x,6\n"))
		if err == nil {
			t.Fatal("expected parse error")
		}
		if !strings.Contains(err.Error(), "line 2, column 2") {
			t.Errorf("error should locate the bad field, got %v", err)
		}
	})

	t.Run("LineAfterBlankLines", func(t *testing.T) {
		_, err := LoadReader(strings.NewReader("1,2,1,0\n\n\n3,x,0,1\n"))
		if err == nil {
			t.Fatal("expected parse error")
		}
		if !strings.Contains(err.Error(), "line 4, column 2") {
			t.Errorf("error should report the file line, got %v", err)
		}
	})

	t.Run("RaggedAfterBlankLine", func(t *testing.T) {
		_, err := LoadReader(strings.NewReader("1,2,3\n\n4,5\n"))
		if !errors.Is(err, ErrRagged) {
			t.Fatalf("expected ErrRagged, got %v", err)
		}
		if !strings.Contains(err.Error(), "line 3") {
			t.Errorf("error should report the file line, got %v", err)
		}
	})
}

func TestLoadReaderByteOrderMark(t *testing.T) {
	tbl, err := LoadReader(strings.NewReader("\ufeff1,2,1,0\n3,4,0,1\n"))
	if err != nil {
		t.Fatalf("LoadReader: %v", err)
	}
	if tbl.Rows() != 2 || tbl.Cols() != 4 {
		t.Fatalf("expected 2x4 table, got %dx%d", tbl.Rows(), tbl.Cols())
	}
	if got := tbl.Data.At(0, 0); got != 1 {
		t.Errorf("At(0,0) = %v, want 1", got)
	}
}

func TestSplit(t *testing.T) {
	tbl, err := LoadReader(strings.NewReader(irisLike))
	if err != nil {
		t.Fatalf("LoadReader: %v", err)
	}

	inputs, outputs, err := tbl.Split(4, 3)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if r, c := inputs.Dims(); r != 6 || c != 4 {
		t.Errorf("inputs are %dx%d, want 6x4", r, c)
	}
	if r, c := outputs.Dims(); r != 6 || c != 3 {
		t.Errorf("outputs are %dx%d, want 6x3", r, c)
	}
	if outputs.At(4, 2) != 1 {
		t.Errorf("expected label column 2 set on row 4")
	}

	// Split copies, so normalizing inputs leaves the table untouched.
	Normalize(inputs)
	if tbl.Data.At(0, 0) != 5.1 {
		t.Errorf("table mutated by normalizing a split")
	}

	if _, _, err := tbl.Split(4, 2); !errors.Is(err, ErrColumns) {
		t.Errorf("expected ErrColumns for wrong class count, got %v", err)
	}
	if _, _, err := tbl.Split(7, 0); !errors.Is(err, ErrColumns) {
		t.Errorf("expected ErrColumns when no label columns remain, got %v", err)
	}
	if _, _, err := tbl.Split(4, 0); err != nil {
		t.Errorf("classes=0 should infer label columns: %v", err)
	}
}

func TestNormalize(t *testing.T) {
	m := mat.NewDense(5, 2, []float64{
		1, 10,
		2, 20,
		3, 30,
		4, 40,
		5, 55,
	})
	stats := Normalize(m)

	if len(stats.Constant) != 0 {
		t.Errorf("no column should be constant, got %v", stats.Constant)
	}
	if stats.Mean[0] != 3 {
		t.Errorf("column 0 mean = %v, want 3", stats.Mean[0])
	}

	for j := 0; j < 2; j++ {
		col := mat.Col(nil, j, m)
		mean, std := stat.PopMeanStdDev(col, nil)
		if math.Abs(mean) > 1e-9 {
			t.Errorf("column %d mean = %v, want 0", j, mean)
		}
		if math.Abs(std-1) > 1e-9 {
			t.Errorf("column %d std = %v, want 1", j, std)
		}
	}
}

func TestNormalizeTinySpread(t *testing.T) {
	m := mat.NewDense(4, 1, []float64{1e-13, -1e-13, 3e-13, -3e-13})
	stats := Normalize(m)

	if len(stats.Constant) != 0 {
		t.Fatalf("a column with a real spread must be rescaled, got constant %v", stats.Constant)
	}
	_, std := stat.PopMeanStdDev(mat.Col(nil, 0, m), nil)
	if math.Abs(std-1) > 1e-9 {
		t.Errorf("std = %v, want 1", std)
	}
}

func TestNormalizeConstantColumn(t *testing.T) {
	m := mat.NewDense(3, 2, []float64{
		0.1, 1,
		0.1, 2,
		0.1, 3,
	})
	stats := Normalize(m)

	if len(stats.Constant) != 1 || stats.Constant[0] != 0 {
		t.Fatalf("expected column 0 reported constant, got %v", stats.Constant)
	}
	for i := 0; i < 3; i++ {
		v := m.At(i, 0)
		if v != 0 || math.IsNaN(v) {
			t.Errorf("row %d of constant column = %v, want 0", i, v)
		}
	}
}

func TestWritePredictionsTo(t *testing.T) {
	m := mat.NewDense(2, 3, []float64{
		0, 1, 0,
		1, 0, 0,
	})
	var buf bytes.Buffer
	if err := WritePredictionsTo(&buf, m); err != nil {
		t.Fatalf("WritePredictionsTo: %v", err)
	}
	want := "0,1,0\n1,0,0\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestLoadPair(t *testing.T) {
	dir := t.TempDir()
	trainPath := filepath.Join(dir, "train.csv")
	testPath := filepath.Join(dir, "test.csv")
	mustWrite(t, trainPath, irisLike)
	mustWrite(t, testPath, "5.0,3.4,1.5,0.2,1,0,0\n")

	train, test, err := LoadPair(context.Background(), trainPath, testPath)
	if err != nil {
		t.Fatalf("LoadPair: %v", err)
	}
	if train.Rows() != 6 || test.Rows() != 1 {
		t.Errorf("unexpected row counts train=%d test=%d", train.Rows(), test.Rows())
	}
	if train.Path != trainPath {
		t.Errorf("train path = %q", train.Path)
	}

	train, test, err = LoadPair(context.Background(), "", testPath)
	if err != nil {
		t.Fatalf("LoadPair without train: %v", err)
	}
	if train != nil || test == nil {
		t.Errorf("expected only the test table, got train=%v test=%v", train, test)
	}

	if _, _, err := LoadPair(context.Background(), filepath.Join(dir, "missing.csv"), testPath); err == nil {
		t.Error("expected error for a missing file")
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
