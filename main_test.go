package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ts562346/canonical-multi-layer-perceptron/internal/config"
)

const (
	trainCSV = "0.1,0.2,1,0\n0.2,0.1,1,0\n0.9,0.8,0,1\n0.8,0.9,0,1\n"
	testCSV  = "0.15,0.1,1,0\n0.85,0.95,0,1\n"
)

// runArgs writes the fixture CSVs and returns the flags of a small run.
func runArgs(t *testing.T, dir string, extra ...string) []string {
	t.Helper()
	t.Setenv(config.EnvCPUProfile, "")

	train := filepath.Join(dir, "train.csv")
	test := filepath.Join(dir, "test.csv")
	for path, content := range map[string]string{train: trainCSV, test: testCSV} {
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}

	args := []string{
		"-inputs", "2", "-classes", "2", "-hidden", "3",
		"-epochs", "50", "-lr", "0.1", "-seed", "3", "-games", "0",
		"-train", train, "-test", test,
		"-out", filepath.Join(dir, "predictions.csv"),
	}
	return append(args, extra...)
}

func TestRunExitCodes(t *testing.T) {
	t.Run("InvalidFlagValue", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		if code := run([]string{"-hidden", "0"}, &stdout, &stderr); code != exitInvalid {
			t.Errorf("exit code = %d, want %d", code, exitInvalid)
		}
		if !strings.Contains(stderr.String(), "hidden") {
			t.Errorf("stderr should name the bad flag, got %q", stderr.String())
		}
	})

	t.Run("UnknownFlag", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		if code := run([]string{"-no-such-flag"}, &stdout, &stderr); code != exitInvalid {
			t.Errorf("exit code = %d, want %d", code, exitInvalid)
		}
	})

	t.Run("RunFailure", func(t *testing.T) {
		dir := t.TempDir()
		args := runArgs(t, dir, "-no-store", "-test", filepath.Join(dir, "missing.csv"))
		var stdout, stderr bytes.Buffer
		if code := run(args, &stdout, &stderr); code != exitFailed {
			t.Errorf("exit code = %d, want %d", code, exitFailed)
		}
	})

	t.Run("Success", func(t *testing.T) {
		dir := t.TempDir()
		args := runArgs(t, dir, "-db", filepath.Join(dir, "db"))
		var stdout, stderr bytes.Buffer
		if code := run(args, &stdout, &stderr); code != exitOK {
			t.Fatalf("exit code = %d, want %d\n%s", code, exitOK, stderr.String())
		}
		if !strings.HasPrefix(stdout.String(), "Accuracy: ") {
			t.Errorf("unexpected stdout %q", stdout.String())
		}
		if _, err := os.Stat(filepath.Join(dir, "predictions.csv")); err != nil {
			t.Errorf("predictions not written: %v", err)
		}
	})
}

func TestRunWithoutHistory(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	args := runArgs(t, dir, "-db", filepath.Join(blocker, "db"))
	var stdout, stderr bytes.Buffer
	if code := run(args, &stdout, &stderr); code != exitOK {
		t.Fatalf("exit code = %d, want %d\n%s", code, exitOK, stderr.String())
	}
	if !strings.HasPrefix(stdout.String(), "Accuracy: ") {
		t.Errorf("run should still report accuracy, got %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "run history disabled") {
		t.Errorf("expected the store failure to be logged, got %q", stderr.String())
	}
}
