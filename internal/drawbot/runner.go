package drawbot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/circularity/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
)

// Run executes a complete drawbot session: health check, play, rank,
// verify and optional cleanup.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}
	if config.Workers < 1 {
		config.Workers = 1
	}
	if config.TopN < 1 {
		config.TopN = defaultTopN
	}

	logger.Get().Info(ctx, "starting circularity drawbot",
		logger.String("baseURL", config.BaseURL),
		logger.Int("players", config.Players),
		logger.Int("attempts", config.Attempts),
		logger.Int("workers", config.Workers),
		logger.Duration("timeout", config.Timeout),
		logger.Int("topN", config.TopN),
		logger.Float64("eventsRatio", config.EventsRatio),
		logger.Bool("verbose", config.Verbose))

	if err := waitHealthy(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	players, err := generatePlayers(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("player generation failed: %w", err)
	}

	if err := playAll(ctx, config, players, stats); err != nil {
		return fmt.Errorf("playing sessions failed: %w", err)
	}
	if stats.PlayersFailed > 0 {
		return fmt.Errorf("%d players failed", stats.PlayersFailed)
	}

	rankings, err := retrieveRankings(ctx, config, players, stats)
	if err != nil {
		return fmt.Errorf("ranking retrieval failed: %w", err)
	}

	leaderboard, err := getLeaderboard(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("leaderboard retrieval failed: %w", err)
	}

	if err := verifyResults(ctx, config, players, rankings, leaderboard); err != nil {
		return fmt.Errorf("result verification failed: %w", err)
	}

	if config.OutputFile != "" {
		if err := savePlayers(ctx, config.OutputFile, players); err != nil {
			logger.Get().Warn(ctx, "failed to save players to file", logger.Error(err))
		}
	}
	if config.Cleanup {
		deleteSessions(ctx, config, players)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(stats)

	logger.Get().Info(ctx, "drawbot completed successfully")
	return nil
}

// waitHealthy polls /healthz until it answers 200 or HealthWait elapses.
func waitHealthy(ctx context.Context, config *Config) error {
	client := newHTTPClient(config.BaseURL, config.Timeout)
	deadline := time.Now().Add(config.HealthWait)

	for {
		status, err := client.do(ctx, http.MethodGet, "/healthz", nil, nil)
		if err == nil && status == StatusOK {
			logger.Get().Info(ctx, "service is healthy")
			return nil
		}
		if err == nil {
			err = fmt.Errorf("status %d", status)
		}
		if time.Now().After(deadline) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(HealthCheckInterval):
		}
	}
}

// savePlayers writes the players and their results to a JSON file.
func savePlayers(ctx context.Context, filename string, players []Player) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(players, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal players: %w", err)
	}
	if err := os.WriteFile(filename, data, filePermission); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	logger.Get().Info(ctx, "players saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats prints the final run statistics.
func displayFinalStats(stats *Stats) {
	var enclosedRate, strokesPerSecond float64

	if attempts := stats.StrokesScored + stats.StrokesMissed; attempts > 0 {
		enclosedRate = float64(stats.StrokesScored) / float64(attempts) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		strokesPerSecond = float64(stats.StrokesSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("playersGenerated", stats.PlayersGenerated),
		logger.Int("sessionsCreated", stats.SessionsCreated),
		logger.Int("strokesSubmitted", stats.StrokesSubmitted),
		logger.Int("strokesScored", stats.StrokesScored),
		logger.Int("strokesMissed", stats.StrokesMissed),
		logger.Int("strokesDuplicate", stats.StrokesDuplicate),
		logger.Int("playersFailed", stats.PlayersFailed),
		logger.Int("rankingsRetrieved", stats.RankingsRetrieved),
		logger.Int("leaderboardEntries", stats.LeaderboardEntries),
		logger.Duration("duration", stats.Duration),
		logger.Float64("enclosedRate", enclosedRate),
		logger.Float64("strokesPerSecond", strokesPerSecond))
}
