// mlp-runs prints the recorded training runs and backgammon statistics.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-logr/logr"

	"github.com/ts562346/canonical-multi-layer-perceptron/internal/storage"
)

var (
	dbDir     = flag.String("db", "", "run history database directory (default $MLP_DATA_DIR, then the user data dir)")
	limit     = flag.Int("n", 20, "number of runs to list (0 = all)")
	showBest  = flag.Bool("best", false, "list only the best run of each dataset")
	showGames = flag.Bool("games", true, "print backgammon statistics")
)

func main() {
	flag.Parse()

	store, err := storage.OpenDir(*dbDir, logr.Discard())
	if err != nil {
		log.Fatalf("failed to open run history: %v", err)
	}
	defer store.Close()

	runs, err := store.ListRuns(0)
	if err != nil {
		log.Fatalf("failed to list runs: %v", err)
	}
	if *showBest {
		runs = bestPerDataset(runs)
	}
	if *limit > 0 && len(runs) > *limit {
		runs = runs[:*limit]
	}
	printRuns(os.Stdout, runs, time.Now())

	if *showGames {
		stats, err := store.LoadStats()
		if err != nil {
			log.Fatalf("failed to load game statistics: %v", err)
		}
		fmt.Println()
		printStats(os.Stdout, stats)
	}
}

// bestPerDataset keeps the most accurate run of each dataset pair, in the
// order the pairs first appear in runs.
func bestPerDataset(runs []storage.RunRecord) []storage.RunRecord {
	index := make(map[string]int)
	var best []storage.RunRecord
	for _, r := range runs {
		key := r.DatasetKey()
		i, ok := index[key]
		if !ok {
			index[key] = len(best)
			best = append(best, r)
			continue
		}
		if r.Accuracy > best[i].Accuracy {
			best[i] = r
		}
	}
	return best
}

func printRuns(w io.Writer, runs []storage.RunRecord, now time.Time) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "no runs recorded")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tTRAIN\tTEST\tLAYOUT\tEPOCHS\tLR\tLOSS\tACCURACY\tTOOK")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d-%d-%d\t%s\t%g\t%.6f\t%.2f%%\t%s\n",
			humanize.RelTime(r.When, now, "ago", "from now"),
			displayName(r.TrainFile),
			displayName(r.TestFile),
			r.Inputs, r.Hidden, r.Outputs,
			humanize.Comma(int64(r.Epochs)),
			r.LearningRate,
			r.Loss,
			r.Accuracy,
			r.Duration.Round(time.Millisecond),
		)
	}
	tw.Flush()
}

func printStats(w io.Writer, s *storage.GameStats) {
	if s.GamesPlayed == 0 {
		fmt.Fprintln(w, "no backgammon games recorded")
		return
	}
	fmt.Fprintf(w, "backgammon: %s games, white %.1f%%, black %.1f%%\n",
		humanize.Comma(int64(s.GamesPlayed)), s.WinRate("white"), s.WinRate("black"))
	fmt.Fprintf(w, "  gammons %d, backgammons %d\n", s.Gammons, s.Backgammons)
	fmt.Fprintf(w, "  %s turns played, %.1f per game, longest %s\n",
		humanize.Comma(int64(s.TotalTurns)), s.AverageTurns(), humanize.Comma(int64(s.LongestGame)))
	fmt.Fprintf(w, "  total play time %s\n", s.TotalPlayTime.Round(time.Millisecond))
}

func displayName(path string) string {
	if path == "" {
		return "-"
	}
	return filepath.Base(path)
}
