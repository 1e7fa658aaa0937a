// Package storage provides persistent storage for training run history and
// backgammon game statistics.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/go-logr/logr"
)

// EnvDataDir names the environment variable that overrides the database
// directory when no directory is given explicitly.
const EnvDataDir = "MLP_DATA_DIR"

const (
	appName  = "mlp"
	dbSubdir = "db"
)

// userDataHome returns the per-user base directory for application data:
// ~/Library/Application Support on macOS, %APPDATA% on Windows and
// $XDG_DATA_HOME (default ~/.local/share) elsewhere.
func userDataHome() (string, error) {
	var env string
	var fallback []string
	switch runtime.GOOS {
	case "darwin":
		fallback = []string{"Library", "Application Support"}
	case "windows":
		env, fallback = "APPDATA", []string{"AppData", "Roaming"}
	default:
		env, fallback = "XDG_DATA_HOME", []string{".local", "share"}
	}

	if env != "" {
		if dir := os.Getenv(env); dir != "" {
			return dir, nil
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("no data directory: %w", err)
	}
	return filepath.Join(append([]string{home}, fallback...)...), nil
}

// DatabaseDir resolves where the run history lives. An explicit dir wins,
// then $MLP_DATA_DIR, then the db directory under the user's data home.
// The directory is not created.
func DatabaseDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	if dir := os.Getenv(EnvDataDir); dir != "" {
		return dir, nil
	}
	home, err := userDataHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, appName, dbSubdir), nil
}

// OpenDir opens the run history in dir, resolved with DatabaseDir, creating
// the directory if needed.
func OpenDir(dir string, log logr.Logger) (*Storage, error) {
	dbDir, err := DatabaseDir(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	return Open(dbDir, log)
}
