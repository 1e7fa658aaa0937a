// Package pipeline runs the end-to-end program: the backgammon scoring loop,
// then loading, normalizing, training, predicting and scoring.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/go-logr/logr"
	"github.com/klauspost/cpuid/v2"
	"gonum.org/v1/gonum/mat"

	"github.com/ts562346/canonical-multi-layer-perceptron/internal/backgammon"
	"github.com/ts562346/canonical-multi-layer-perceptron/internal/config"
	"github.com/ts562346/canonical-multi-layer-perceptron/internal/dataset"
	"github.com/ts562346/canonical-multi-layer-perceptron/internal/mlp"
	"github.com/ts562346/canonical-multi-layer-perceptron/internal/storage"
)

// Store records run history. *storage.Storage implements it.
type Store interface {
	SaveRun(r *storage.RunRecord) error
	Best(datasetKey string) (*storage.RunRecord, error)
	RecordGame(result storage.GameResult) error
}

// Options carries the collaborators of a run.
type Options struct {
	// Out receives the accuracy line.
	Out    io.Writer
	Logger logr.Logger
	// Store is optional; nil disables run history.
	Store Store
}

// Report summarizes a run.
type Report struct {
	Seed        int64
	Games       []backgammon.Result
	Loss        float64
	Accuracy    float64
	Predictions *mat.Dense
	Network     *mlp.Network
	Record      *storage.RunRecord
}

// Run executes the whole program for cfg.
func Run(ctx context.Context, cfg *config.Config, opts Options) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	log := opts.Logger

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	report := &Report{Seed: seed}
	log.V(1).Info("run", "seed", seed, "cpu", cpuid.CPU.BrandName, "cores", cpuid.CPU.PhysicalCores)

	games, err := playGames(ctx, cfg.Games, rand.New(rand.NewSource(seed+1)), opts)
	if err != nil {
		return nil, err
	}
	report.Games = games

	trainPath := cfg.TrainFile
	if cfg.LoadModel != "" {
		trainPath = ""
	}
	train, test, err := dataset.LoadPair(ctx, trainPath, cfg.TestFile)
	if err != nil {
		return nil, fmt.Errorf("load data: %w", err)
	}

	testInputs, testOutputs, err := test.Split(cfg.InputFeatures, cfg.OutputClasses)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", test.Path, err)
	}
	normalize(log, test.Path, testInputs)

	start := time.Now()
	var net *mlp.Network
	if cfg.LoadModel != "" {
		net, err = loadNetwork(cfg)
		if err != nil {
			return nil, err
		}
		log.Info("loaded model", "path", cfg.LoadModel)
	} else {
		trainInputs, trainOutputs, err := train.Split(cfg.InputFeatures, cfg.OutputClasses)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", train.Path, err)
		}
		normalize(log, train.Path, trainInputs)

		net = mlp.New(cfg.InputFeatures, cfg.Hidden, cfg.OutputClasses, rand.New(rand.NewSource(seed)))
		log.Info("training", "samples", train.Rows(), "hidden", cfg.Hidden, "epochs", cfg.Epochs, "lr", cfg.LearningRate)
		res, err := net.Train(ctx, trainInputs, trainOutputs, mlp.TrainOptions{
			Epochs:       cfg.Epochs,
			LearningRate: cfg.LearningRate,
			LogEvery:     cfg.LogEvery,
			Logger:       log,
		})
		if err != nil {
			return nil, fmt.Errorf("training failed after %d epochs: %w", res.Epochs, err)
		}
		report.Loss = res.Loss
		log.Info("trained", "epochs", res.Epochs, "loss", res.Loss, "duration", res.Duration)
	}
	report.Network = net

	predictions, err := net.Predict(testInputs)
	if err != nil {
		return nil, err
	}
	accuracy, err := mlp.Accuracy(predictions, testOutputs)
	if err != nil {
		return nil, err
	}
	report.Predictions = predictions
	report.Accuracy = accuracy

	fmt.Fprintf(opts.Out, "Accuracy: %.2f%%\n", accuracy)

	if err := dataset.WritePredictions(cfg.OutputFile, predictions); err != nil {
		return nil, err
	}
	log.V(1).Info("wrote predictions", "path", cfg.OutputFile, "rows", test.Rows())

	if cfg.SaveModel != "" {
		if err := net.SaveWeights(cfg.SaveModel); err != nil {
			return nil, err
		}
		log.Info("saved model", "path", cfg.SaveModel)
	}

	if opts.Store != nil {
		rec := &storage.RunRecord{
			TrainFile:    cfg.TrainFile,
			TestFile:     cfg.TestFile,
			TestHash:     test.Hash,
			Inputs:       cfg.InputFeatures,
			Hidden:       cfg.Hidden,
			Outputs:      cfg.OutputClasses,
			Epochs:       cfg.Epochs,
			LearningRate: cfg.LearningRate,
			Seed:         seed,
			Loss:         report.Loss,
			Accuracy:     accuracy,
			Duration:     time.Since(start),
			CPU:          cpuid.CPU.BrandName,
			Cores:        cpuid.CPU.PhysicalCores,
		}
		if train != nil {
			rec.TrainHash = train.Hash
		}
		if err := recordRun(opts.Store, rec, log); err != nil {
			return nil, err
		}
		report.Record = rec
	}

	return report, nil
}

func playGames(ctx context.Context, n int, rng *rand.Rand, opts Options) ([]backgammon.Result, error) {
	results := make([]backgammon.Result, 0, n)
	scorer := backgammon.NewRandomScorer(rng)
	for i := 0; i < n; i++ {
		g := backgammon.NewGame(rng)
		res, err := backgammon.Play(ctx, g, scorer, opts.Logger)
		if err != nil {
			return nil, fmt.Errorf("backgammon game %d: %w", i+1, err)
		}
		opts.Logger.Info("backgammon", "game", i+1, "winner", res.Winner.String(), "points", res.Points, "turns", res.Turns)
		results = append(results, res)

		if opts.Store != nil {
			if err := opts.Store.RecordGame(storage.GameResult{
				Winner:   res.Winner.String(),
				Points:   res.Points,
				Turns:    res.Turns,
				Duration: res.Duration,
			}); err != nil {
				return nil, fmt.Errorf("record game: %w", err)
			}
		}
	}
	return results, nil
}

func normalize(log logr.Logger, path string, m *mat.Dense) {
	stats := dataset.Normalize(m)
	for _, col := range stats.Constant {
		log.Info("constant column left centered", "file", path, "column", col, "value", stats.Mean[col])
	}
}

func loadNetwork(cfg *config.Config) (*mlp.Network, error) {
	net, err := mlp.LoadWeights(cfg.LoadModel)
	if err != nil {
		return nil, err
	}
	inputs, _, outputs := net.Dims()
	if inputs != cfg.InputFeatures || outputs != cfg.OutputClasses {
		return nil, fmt.Errorf("%w: model is %d->%d, data is %d->%d",
			mlp.ErrShape, inputs, outputs, cfg.InputFeatures, cfg.OutputClasses)
	}
	return net, nil
}

func recordRun(store Store, rec *storage.RunRecord, log logr.Logger) error {
	prev, err := store.Best(rec.DatasetKey())
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("load best run: %w", err)
	}
	if err := store.SaveRun(rec); err != nil {
		return fmt.Errorf("save run: %w", err)
	}

	switch {
	case prev == nil:
		log.Info("first run on this dataset", "accuracy", rec.Accuracy)
	case rec.Accuracy > prev.Accuracy:
		log.Info("new best accuracy", "accuracy", rec.Accuracy, "previous", prev.Accuracy)
	default:
		log.V(1).Info("best accuracy unchanged", "best", prev.Accuracy, "hidden", prev.Hidden, "epochs", prev.Epochs)
	}
	return nil
}
