package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/ts562346/canonical-multi-layer-perceptron/internal/storage"
)

func TestBestPerDataset(t *testing.T) {
	runs := []storage.RunRecord{
		{TrainHash: 1, TestHash: 1, Accuracy: 70},
		{TrainHash: 2, TestHash: 2, Accuracy: 40},
		{TrainHash: 1, TestHash: 1, Accuracy: 90},
		{TrainHash: 2, TestHash: 2, Accuracy: 30},
	}
	best := bestPerDataset(runs)
	if len(best) != 2 {
		t.Fatalf("Expected 2 datasets, got %d", len(best))
	}
	if best[0].Accuracy != 90 || best[1].Accuracy != 40 {
		t.Errorf("Unexpected best runs %+v", best)
	}
}

func TestPrintRuns(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	runs := []storage.RunRecord{{
		When:         now.Add(-2 * time.Hour),
		TrainFile:    "/data/train_data.csv",
		TestFile:     "/data/test_data.csv",
		Inputs:       4,
		Hidden:       5,
		Outputs:      3,
		Epochs:       10000,
		LearningRate: 0.01,
		Accuracy:     96.67,
		Duration:     1500 * time.Millisecond,
	}}

	var buf bytes.Buffer
	printRuns(&buf, runs, now)
	out := buf.String()
	for _, want := range []string{"2 hours ago", "train_data.csv", "4-5-3", "10,000", "96.67%", "1.5s"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	printRuns(&buf, nil, now)
	if !strings.Contains(buf.String(), "no runs recorded") {
		t.Errorf("unexpected empty output %q", buf.String())
	}
}

func TestPrintStats(t *testing.T) {
	stats := &storage.GameStats{
		GamesPlayed: 1200,
		WinsByColor: map[string]int{"white": 600, "black": 600},
		TotalTurns:  60000,
		LongestGame: 140,
	}
	var buf bytes.Buffer
	printStats(&buf, stats)
	out := buf.String()
	for _, want := range []string{"1,200 games", "white 50.0%", "60,000 turns", "50.0 per game"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
