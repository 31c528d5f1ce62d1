package drawbot

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/circularity/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging sends log output to both the console and a file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string, verbose bool) error {
	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "drawbot_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	if err := logger.Init(logger.WithWriter(io.MultiWriter(os.Stdout, file))); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	return nil
}

// ShowHelp prints usage information for the drawbot.
func ShowHelp() {
	os.Stdout.WriteString(`Circularity Drawbot
===================

Simulates players drawing circles against a running circularity service,
then checks that ranks and the leaderboard agree with what they scored.

Usage:
  go run ./cmd/drawbot [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -players int
        Number of simulated players (default 200)
  -attempts int
        Strokes drawn per player (default 5)
  -events float
        Share of players drawing with pointer events (default 0.25)
  -top int
        Number of top entries to fetch from leaderboard (default 50)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -seed int
        Seed for reproducible players and strokes (default: from clock)
  -width / -height float
        Canvas size of every session (default 800x600)
  -timeout duration
        HTTP request timeout (default 30s)
  -wait duration
        How long to wait for the service to become healthy (default 10s)
  -resubmit
        Resubmit each player's last stroke id and expect a duplicate (default true)
  -cleanup
        Delete sessions after verification
  -output string
        JSON file for player results
  -log string
        Log file for run output (default: drawbot_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Run with default settings
  go run ./cmd/drawbot

  # Reproducible run against another port
  go run ./cmd/drawbot -players 1000 -seed 42 -url http://localhost:8080
`)
}
