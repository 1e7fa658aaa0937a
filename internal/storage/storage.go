package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/go-logr/logr"
)

// Storage keys
const (
	keyStats   = "stats"
	prefixRun  = "run/"
	prefixBest = "best/"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("storage: not found")

// RunRecord describes one training run.
type RunRecord struct {
	When      time.Time `json:"when"`
	TrainFile string    `json:"train_file"`
	TestFile  string    `json:"test_file"`
	TrainHash uint64    `json:"train_hash"`
	TestHash  uint64    `json:"test_hash"`

	Inputs       int     `json:"inputs"`
	Hidden       int     `json:"hidden"`
	Outputs      int     `json:"outputs"`
	Epochs       int     `json:"epochs"`
	LearningRate float64 `json:"learning_rate"`
	Seed         int64   `json:"seed"`

	Loss     float64       `json:"loss"`
	Accuracy float64       `json:"accuracy"`
	Duration time.Duration `json:"duration"`

	CPU   string `json:"cpu"`
	Cores int    `json:"cores"`
}

// DatasetKey identifies the train/test pair a run was scored on.
func (r *RunRecord) DatasetKey() string {
	return fmt.Sprintf("%016x-%016x", r.TrainHash, r.TestHash)
}

// GameStats stores backgammon statistics.
type GameStats struct {
	GamesPlayed   int            `json:"games_played"`
	WinsByColor   map[string]int `json:"wins_by_color"`
	Gammons       int            `json:"gammons"`
	Backgammons   int            `json:"backgammons"`
	TotalTurns    int            `json:"total_turns"`
	LongestGame   int            `json:"longest_game"`
	TotalPlayTime time.Duration  `json:"total_play_time"`
}

// NewGameStats returns empty game statistics
func NewGameStats() *GameStats {
	return &GameStats{
		WinsByColor: make(map[string]int),
	}
}

// GameResult represents the result of a completed game
type GameResult struct {
	Winner   string
	Points   int
	Turns    int
	Duration time.Duration
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db *badger.DB
}

// NewStorage opens the database in the default location (see DatabaseDir).
func NewStorage(log logr.Logger) (*Storage, error) {
	return OpenDir("", log)
}

// Open opens (or creates) the database in dir.
func Open(dir string, log logr.Logger) (*Storage, error) {
	opts := badger.DefaultOptions(dir)
	if log.GetSink() == nil {
		opts.Logger = nil
	} else {
		opts.Logger = badgerLogger{log: log.WithName("badger")}
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", dir, err)
	}

	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func runKey(when time.Time) []byte {
	return []byte(fmt.Sprintf("%s%020d", prefixRun, when.UnixNano()))
}

func bestKey(datasetKey string) []byte {
	return []byte(prefixBest + datasetKey)
}

// SaveRun stores r and updates the best run for its dataset pair.
// A zero When is set to the current time.
func (s *Storage) SaveRun(r *RunRecord) error {
	if r.When.IsZero() {
		r.When = time.Now()
	}
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(runKey(r.When), data); err != nil {
			return err
		}

		key := bestKey(r.DatasetKey())
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return txn.Set(key, data)
		}
		if err != nil {
			return err
		}

		var best RunRecord
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &best)
		}); err != nil {
			return err
		}
		if r.Accuracy > best.Accuracy {
			return txn.Set(key, data)
		}
		return nil
	})
}

// ListRuns returns up to limit runs, newest first. limit <= 0 returns all.
func (s *Storage) ListRuns(limit int) ([]RunRecord, error) {
	var runs []RunRecord

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte(prefixRun)
		it := txn.NewIterator(opts)
		defer it.Close()

		seek := append([]byte(prefixRun), 0xFF)
		for it.Seek(seek); it.ValidForPrefix(opts.Prefix); it.Next() {
			var r RunRecord
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &r)
			}); err != nil {
				return err
			}
			runs = append(runs, r)
			if limit > 0 && len(runs) >= limit {
				break
			}
		}
		return nil
	})

	return runs, err
}

// Best returns the most accurate run recorded for datasetKey.
func (s *Storage) Best(datasetKey string) (*RunRecord, error) {
	var best RunRecord

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(bestKey(datasetKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &best)
		})
	})
	if err != nil {
		return nil, err
	}

	return &best, nil
}

// SaveStats saves game statistics
func (s *Storage) SaveStats(stats *GameStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyStats), data)
	})
}

// LoadStats loads game statistics, returns empty stats if not found
func (s *Storage) LoadStats() (*GameStats, error) {
	stats := NewGameStats()

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyStats))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil // Use empty stats
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, stats)
		})
	})

	if stats.WinsByColor == nil {
		stats.WinsByColor = make(map[string]int)
	}
	return stats, err
}

// RecordGame records a completed game and updates statistics
func (s *Storage) RecordGame(result GameResult) error {
	stats, err := s.LoadStats()
	if err != nil {
		return err
	}

	stats.GamesPlayed++
	stats.WinsByColor[result.Winner]++
	stats.TotalTurns += result.Turns
	stats.TotalPlayTime += result.Duration
	if result.Turns > stats.LongestGame {
		stats.LongestGame = result.Turns
	}

	switch result.Points {
	case 2:
		stats.Gammons++
	case 3:
		stats.Backgammons++
	}

	return s.SaveStats(stats)
}

// WinRate returns the share of games won by color as a percentage (0-100)
func (s *GameStats) WinRate(color string) float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.WinsByColor[color]) / float64(s.GamesPlayed) * 100
}

// AverageTurns returns the mean game length in turns.
func (s *GameStats) AverageTurns() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.TotalTurns) / float64(s.GamesPlayed)
}

// badgerLogger routes badger's printf-style logging into logr.
type badgerLogger struct {
	log logr.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.log.Error(nil, strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.log.V(1).Info(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.log.V(2).Info(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.log.V(3).Info(strings.TrimSpace(fmt.Sprintf(format, args...)))
}
