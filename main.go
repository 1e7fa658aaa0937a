// mlp trains a two-layer sigmoid network on a CSV dataset and scores it
// against a held-out CSV.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"

	"github.com/go-logr/stdr"
	"github.com/klauspost/cpuid/v2"

	"github.com/ts562346/canonical-multi-layer-perceptron/internal/config"
	"github.com/ts562346/canonical-multi-layer-perceptron/internal/pipeline"
	"github.com/ts562346/canonical-multi-layer-perceptron/internal/storage"
)

// Exit codes
const (
	exitOK      = 0
	exitFailed  = 1
	exitInvalid = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one invocation and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("mlp", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfg := config.Default()
	cfg.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitInvalid
	}
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "invalid configuration: %v\n", err)
		return exitInvalid
	}

	stdr.SetVerbosity(cfg.Verbosity)
	logger := stdr.New(log.New(stderr, "", log.LstdFlags)).WithName("mlp")

	// Start CPU profiling if requested (via flag or environment variable)
	if cfg.CPUProfile != "" {
		f, err := os.Create(cfg.CPUProfile)
		if err != nil {
			logger.Error(err, "could not create CPU profile")
			return exitFailed
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			logger.Error(err, "could not start CPU profile")
			return exitFailed
		}
		defer pprof.StopCPUProfile()
		logger.Info("CPU profiling enabled", "path", cfg.CPUProfile)
	}

	logger.V(1).Info("host", "cpu", cpuid.CPU.BrandName, "cores", cpuid.CPU.PhysicalCores,
		"threads", cpuid.CPU.LogicalCores, "avx2", cpuid.CPU.Supports(cpuid.AVX2))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := pipeline.Options{Out: stdout, Logger: logger}
	if !cfg.NoStore {
		store, err := storage.OpenDir(cfg.DBDir, logger)
		if err != nil {
			// history is optional; the run still goes ahead
			logger.Error(err, "run history disabled")
		} else {
			defer store.Close()
			opts.Store = store
		}
	}

	if _, err := pipeline.Run(ctx, cfg, opts); err != nil {
		logger.Error(err, "run failed")
		return exitFailed
	}
	return exitOK
}
