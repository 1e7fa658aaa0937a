// Package config holds the runtime knobs for a training run.
package config

import (
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
)

// Defaults used when no flag is given.
const (
	DefaultInputFeatures = 4
	DefaultOutputClasses = 3
	DefaultHidden        = 5
	DefaultEpochs        = 10000
	DefaultLearningRate  = 0.01
	DefaultTrainFile     = "train_data.csv"
	DefaultTestFile      = "test_data.csv"
	DefaultOutputFile    = "B00841761.csv"
	DefaultLogEvery      = 1000
	DefaultGames         = 1
)

// EnvCPUProfile is the environment fallback for an empty -cpuprofile.
const EnvCPUProfile = "CPUPROFILE"

// Config captures everything a run needs.
type Config struct {
	InputFeatures int
	OutputClasses int
	Hidden        int
	Epochs        int
	LearningRate  float64
	Seed          int64

	TrainFile  string
	TestFile   string
	OutputFile string

	LogEvery  int
	Verbosity int

	// Backgammon games played before training (0 skips the game loop)
	Games int

	SaveModel string
	LoadModel string

	DBDir   string
	NoStore bool

	CPUProfile string
}

// Default returns the configuration of the canonical run.
func Default() *Config {
	return &Config{
		InputFeatures: DefaultInputFeatures,
		OutputClasses: DefaultOutputClasses,
		Hidden:        DefaultHidden,
		Epochs:        DefaultEpochs,
		LearningRate:  DefaultLearningRate,
		TrainFile:     DefaultTrainFile,
		TestFile:      DefaultTestFile,
		OutputFile:    DefaultOutputFile,
		LogEvery:      DefaultLogEvery,
		Games:         DefaultGames,
	}
}

// RegisterFlags binds every field of c to a flag in fs.
// Current field values become the flag defaults.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.InputFeatures, "inputs", c.InputFeatures, "number of leading input columns")
	fs.IntVar(&c.OutputClasses, "classes", c.OutputClasses, "number of one-hot label columns")
	fs.IntVar(&c.Hidden, "hidden", c.Hidden, "hidden layer width")
	fs.IntVar(&c.Epochs, "epochs", c.Epochs, "full-batch training epochs")
	fs.Float64Var(&c.LearningRate, "lr", c.LearningRate, "learning rate")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "PRNG seed (0 = time based)")
	fs.StringVar(&c.TrainFile, "train", c.TrainFile, "training CSV")
	fs.StringVar(&c.TestFile, "test", c.TestFile, "test CSV")
	fs.StringVar(&c.OutputFile, "out", c.OutputFile, "prediction CSV to write")
	fs.IntVar(&c.LogEvery, "log-every", c.LogEvery, "log training loss every N epochs (0 disables)")
	fs.IntVar(&c.Verbosity, "v", c.Verbosity, "log verbosity")
	fs.IntVar(&c.Games, "games", c.Games, "backgammon games to play before training")
	fs.StringVar(&c.SaveModel, "save-model", c.SaveModel, "write trained weights to file")
	fs.StringVar(&c.LoadModel, "load-model", c.LoadModel, "load weights from file and skip training")
	fs.StringVar(&c.DBDir, "db", c.DBDir, "run history database directory (default $MLP_DATA_DIR, then the user data dir)")
	fs.BoolVar(&c.NoStore, "no-store", c.NoStore, "do not record the run")
	fs.StringVar(&c.CPUProfile, "cpuprofile", c.CPUProfile, "write cpu profile to file")
}

// ApplyEnv fills empty path settings from the environment.
func (c *Config) ApplyEnv() {
	if c.CPUProfile == "" {
		c.CPUProfile = os.Getenv(EnvCPUProfile)
	}
}

// Validate verifies the config is runnable.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.InputFeatures <= 0 {
		return fmt.Errorf("inputs must be > 0 (got %d)", c.InputFeatures)
	}
	if c.OutputClasses <= 0 {
		return fmt.Errorf("classes must be > 0 (got %d)", c.OutputClasses)
	}
	if c.Hidden <= 0 {
		return fmt.Errorf("hidden must be > 0 (got %d)", c.Hidden)
	}
	if c.LoadModel == "" && c.Epochs <= 0 {
		return fmt.Errorf("epochs must be > 0 (got %d)", c.Epochs)
	}
	if !(c.LearningRate > 0) || math.IsInf(c.LearningRate, 1) {
		return fmt.Errorf("lr must be a finite value > 0 (got %g)", c.LearningRate)
	}
	if c.TrainFile == "" && c.LoadModel == "" {
		return errors.New("a training file is required unless -load-model is set")
	}
	if c.TestFile == "" {
		return errors.New("a test file is required")
	}
	if c.OutputFile == "" {
		return errors.New("an output file is required")
	}
	if c.Games < 0 {
		return fmt.Errorf("games must be >= 0 (got %d)", c.Games)
	}
	if c.LogEvery < 0 {
		return fmt.Errorf("log-every must be >= 0 (got %d)", c.LogEvery)
	}
	return nil
}
