package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
)

func getLogFilePath() (string, error) {
	if p := os.Getenv("QUIZBUZZ_LOG"); p != "" {
		return p, nil
	}
	dir, err := gap.NewScope(gap.User, "quizbuzz").CacheDir()
	if err != nil {
		return "", err //nolint:wrapcheck
	}
	return filepath.Join(dir, "quizbuzz.log"), nil
}

// setupLog sends the default logger to a file; the TUI owns the terminal.
func setupLog() (func() error, error) {
	log.SetOutput(io.Discard)

	logFile, err := getLogFilePath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil { //nolint:gosec
		return nil, err //nolint:wrapcheck
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644) //nolint:gosec
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	log.SetOutput(f)
	log.SetReportTimestamp(true)
	log.SetLevel(log.InfoLevel)
	return f.Close, nil
}

// setLogLevel applies a level name such as "debug" or "warn".
func setLogLevel(name string) {
	lvl, err := log.ParseLevel(name)
	if err != nil {
		log.Warn("unknown log level", "level", name)
		return
	}
	log.SetLevel(lvl)
}
