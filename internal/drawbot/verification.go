package drawbot

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/okian/circularity/pkg/logger"
)

// verifyResults checks that ranks and the leaderboard agree with the bests
// the players observed.
func verifyResults(ctx context.Context, config *Config, players []Player, rankings map[string]Entry, leaderboard []Entry) error {
	log := logger.Get()

	scored := make([]Player, 0, len(players))
	for _, p := range players {
		if p.SessionID != "" && p.Best > 0 {
			scored = append(scored, p)
		}
	}
	if len(scored) == 0 {
		return fmt.Errorf("no player scored")
	}
	sort.Slice(scored, func(i, j int) bool { return scored[i].Best > scored[j].Best })

	var errs []error
	errs = append(errs, verifyRankings(scored, rankings)...)
	if err := verifyLeaderboardConsistency(scored, leaderboard, config.TopN); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	displayTopPerformers(ctx, scored, leaderboard, config.Verbose)
	log.Info(ctx, "result verification completed")
	return nil
}

// verifyRankings checks every rank against the players' own bests. Other
// clients may share the board, so a rank may only be worse than expected.
func verifyRankings(sorted []Player, rankings map[string]Entry) []error {
	var errs []error
	for _, p := range sorted {
		e, ok := rankings[p.SessionID]
		if !ok {
			errs = append(errs, fmt.Errorf("session %s has no rank", p.SessionID))
			continue
		}
		if e.Score != p.Best {
			errs = append(errs, fmt.Errorf("session %s ranked with %.2f, observed best %.2f", p.SessionID, e.Score, p.Best))
		}
		higher := sort.Search(len(sorted), func(i int) bool { return sorted[i].Best <= p.Best })
		if e.Rank < higher+1 {
			errs = append(errs, fmt.Errorf("session %s ranked %d, at least %d sessions score higher", p.SessionID, e.Rank, higher))
		}
	}
	return errs
}

// verifyLeaderboardConsistency checks the leaderboard order and its head.
func verifyLeaderboardConsistency(sorted []Player, leaderboard []Entry, topN int) error {
	if len(leaderboard) == 0 {
		return fmt.Errorf("empty leaderboard")
	}
	if want := min(topN, len(sorted)); len(leaderboard) < want {
		return fmt.Errorf("leaderboard has %d entries, want at least %d", len(leaderboard), want)
	}
	if leaderboard[0].Rank != 1 {
		return fmt.Errorf("leaderboard starts at rank %d", leaderboard[0].Rank)
	}
	if leaderboard[0].Score < sorted[0].Best {
		return fmt.Errorf("top leaderboard score (%.2f) is below the best observed score (%.2f)",
			leaderboard[0].Score, sorted[0].Best)
	}

	for i := 1; i < len(leaderboard); i++ {
		prev, cur := leaderboard[i-1], leaderboard[i]
		if cur.Score > prev.Score {
			return fmt.Errorf("leaderboard not properly sorted: entry %d has higher score than entry %d", i, i-1)
		}
		if cur.Score == prev.Score && cur.Rank != prev.Rank {
			return fmt.Errorf("tied entries %d and %d have ranks %d and %d", i-1, i, prev.Rank, cur.Rank)
		}
		if cur.Score < prev.Score && cur.Rank != i+1 {
			return fmt.Errorf("entry %d has rank %d, want %d", i, cur.Rank, i+1)
		}
	}
	return nil
}

// displayTopPerformers logs the best players and the leaderboard head.
func displayTopPerformers(ctx context.Context, sorted []Player, leaderboard []Entry, verbose bool) {
	log := logger.Get()
	topN := min(10, len(sorted))
	for i := 0; i < topN; i++ {
		p := sorted[i]
		log.Info(ctx, "top performer",
			logger.Int("position", i+1),
			logger.String("player", p.Name),
			logger.String("skill", string(p.Skill)),
			logger.String("difficulty", p.Difficulty),
			logger.Float64("best", p.Best))
	}

	if verbose {
		for i := 0; i < min(topN, len(leaderboard)); i++ {
			e := leaderboard[i]
			log.Info(ctx, "leaderboard entry",
				logger.Int("rank", e.Rank),
				logger.String("sessionID", e.SessionID),
				logger.Float64("score", e.Score))
		}
		log.Info(ctx, "score statistics",
			logger.Float64("average", calculateAverageScore(sorted)),
			logger.Float64("maximum", sorted[0].Best),
			logger.Float64("minimum", sorted[len(sorted)-1].Best))
	}
}

// calculateAverageScore calculates the average best across players.
func calculateAverageScore(players []Player) float64 {
	if len(players) == 0 {
		return 0
	}

	sum := 0.0
	for _, p := range players {
		sum += p.Best
	}
	return sum / float64(len(players))
}
