package drawbot

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/okian/circularity/pkg/logger"
)

// retrieveRankings fetches the leaderboard position of every player that
// scored, concurrently.
func retrieveRankings(ctx context.Context, config *Config, players []Player, stats *Stats) (map[string]Entry, error) {
	log := logger.Get()
	client := newHTTPClient(config.BaseURL, config.Timeout)

	ranked := make([]int, 0, len(players))
	for i, p := range players {
		if p.SessionID != "" && p.Best > 0 {
			ranked = append(ranked, i)
		}
	}
	log.Info(ctx, "retrieving rankings",
		logger.Int("sessions", len(ranked)),
		logger.Int("workers", config.Workers))

	var (
		mu       sync.Mutex
		rankings = make(map[string]Entry, len(ranked))
		failed   atomic.Int64
		wg       sync.WaitGroup
	)
	indexCh := make(chan int, config.Workers*WorkerChannelMultiplier)
	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexCh {
				id := players[idx].SessionID
				var e Entry
				if _, err := client.do(ctx, http.MethodGet, "/sessions/"+id+"/rank", nil, &e); err != nil {
					failed.Add(1)
					if config.Verbose {
						log.Warn(ctx, "failed to get rank", logger.String("sessionID", id), logger.Error(err))
					}
					continue
				}
				mu.Lock()
				rankings[id] = e
				mu.Unlock()
			}
		}()
	}

	go func() {
		defer close(indexCh)
		for _, idx := range ranked {
			select {
			case <-ctx.Done():
				return
			case indexCh <- idx:
			}
		}
	}()
	wg.Wait()

	stats.RankingsRetrieved = len(rankings)
	log.Info(ctx, "rankings retrieved",
		logger.Int("retrieved", len(rankings)),
		logger.Int("failed", int(failed.Load())))

	if n := failed.Load(); n > 0 {
		return rankings, fmt.Errorf("%d rank lookups failed", n)
	}
	return rankings, ctx.Err()
}

// getLeaderboard retrieves the top N leaderboard entries.
func getLeaderboard(ctx context.Context, config *Config, stats *Stats) ([]Entry, error) {
	client := newHTTPClient(config.BaseURL, config.Timeout)

	var leaderboard []Entry
	if _, err := client.do(ctx, http.MethodGet, fmt.Sprintf("/leaderboard?limit=%d", config.TopN), nil, &leaderboard); err != nil {
		return nil, err
	}

	stats.LeaderboardEntries = len(leaderboard)
	logger.Get().Info(ctx, "leaderboard retrieved", logger.Int("entries", len(leaderboard)))
	return leaderboard, nil
}
