package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/circularity/internal/drawbot"
)

// Default configuration constants.
const (
	defaultPlayers     = 200
	defaultAttempts    = 5
	defaultEventsRatio = 0.25
	defaultTopN        = 50
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultWidth       = 800
	defaultHeight      = 600
	defaultTimeout     = 30 * time.Second
	defaultHealthWait  = 10 * time.Second
	defaultRunTimeout  = 10 * time.Minute
)

func main() {
	var (
		baseURL     = flag.String("url", "http://localhost:9080", "Base URL of the service")
		players     = flag.Int("players", defaultPlayers, "Number of simulated players")
		attempts    = flag.Int("attempts", defaultAttempts, "Strokes drawn per player")
		eventsRatio = flag.Float64("events", defaultEventsRatio, "Share of players drawing with pointer events")
		topN        = flag.Int("top", defaultTopN, "Number of top entries to fetch from leaderboard")
		workers     = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		seed        = flag.Int64("seed", 0, "Seed for reproducible players and strokes")
		width       = flag.Float64("width", defaultWidth, "Canvas width")
		height      = flag.Float64("height", defaultHeight, "Canvas height")
		timeout     = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		wait        = flag.Duration("wait", defaultHealthWait, "How long to wait for the service to become healthy")
		resubmit    = flag.Bool("resubmit", true, "Resubmit each player's last stroke id")
		cleanup     = flag.Bool("cleanup", false, "Delete sessions after verification")
		outputFile  = flag.String("output", "", "JSON file for player results")
		logFile     = flag.String("log", "", "Log file for run output (default: drawbot_TIMESTAMP.log)")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging")
		help        = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		drawbot.ShowHelp()
		return
	}

	if err := drawbot.SetupLogging(*logFile, *verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	config := &drawbot.Config{
		BaseURL:      *baseURL,
		Players:      *players,
		Attempts:     *attempts,
		TopN:         *topN,
		Workers:      *workers,
		Timeout:      *timeout,
		EventsRatio:  *eventsRatio,
		Seed:         *seed,
		Canvas:       drawbot.Canvas{Width: *width, Height: *height},
		Cleanup:      *cleanup,
		OutputFile:   *outputFile,
		LogFile:      *logFile,
		Verbose:      *verbose,
		HealthWait:   *wait,
		ResubmitLast: *resubmit,
	}

	if err := drawbot.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Drawbot failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
