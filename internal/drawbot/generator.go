package drawbot

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/okian/circularity/internal/domain/geometry"
	"github.com/okian/circularity/internal/strokegen"
	"github.com/okian/circularity/pkg/logger"
)

// Stroke shape constants.
const (
	minRadius       = 60.0
	maxRadiusShare  = 0.4
	strokeSamples   = 180
	minDurationMs   = 600.0
	durationRangeMs = 2400.0
	poorCoverage    = 0.6
	missOffset      = 2.5
	missShrink      = 3.0
	ellipseSquash   = 0.85
)

// Jitter as a share of the radius, per skill.
var skillJitter = map[Skill]float64{ //nolint:gochecknoglobals // lookup table
	SkillElite:   0.01,
	SkillGood:    0.04,
	SkillAverage: 0.06,
	SkillPoor:    0.1,
	SkillMiss:    0.02,
}

// skillMix is the weighted skill distribution of generated players.
var skillMix = []Skill{ //nolint:gochecknoglobals // lookup table
	SkillElite,
	SkillGood, SkillGood,
	SkillAverage, SkillAverage, SkillAverage,
	SkillPoor, SkillPoor,
	SkillMiss,
}

var difficulties = []string{"easy", "medium", "hard"} //nolint:gochecknoglobals // lookup table

// generatePlayers creates the simulated players. The same seed always yields
// the same players.
func generatePlayers(ctx context.Context, config *Config, stats *Stats) ([]Player, error) {
	if config.Players < 1 {
		return nil, fmt.Errorf("players must be positive, got %d", config.Players)
	}
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // reproducible load, not security

	players := make([]Player, config.Players)
	for i := range players {
		players[i] = Player{
			Name:       fmt.Sprintf("player-%05d", i),
			Difficulty: difficulties[rng.Intn(len(difficulties))],
			Skill:      skillMix[rng.Intn(len(skillMix))],
			UseEvents:  rng.Float64() < config.EventsRatio,
			Seed:       rng.Int63(),
		}
	}
	stats.PlayersGenerated = len(players)

	logger.Get().Info(ctx, "players generated",
		logger.Int("players", len(players)),
		logger.Any("seed", seed))
	return players, nil
}

// drawAttempt returns the stroke a player draws around center on attempt n,
// and how long it took.
func drawAttempt(p Player, center strokegen.Point, canvas Canvas, n int) ([]strokegen.Point, float64) {
	rng := rand.New(rand.NewSource(p.Seed + int64(n))) //nolint:gosec // reproducible load, not security

	maxRadius := math.Max(minRadius, maxRadiusShare*math.Min(canvas.Width, canvas.Height))
	r := minRadius + rng.Float64()*(maxRadius-minRadius)
	elapsed := minDurationMs + rng.Float64()*durationRangeMs
	start := rng.Float64() * geometry.FullTurn
	end := start + geometry.FullTurn*(1-1.0/strokeSamples)

	var stroke []strokegen.Point
	switch p.Skill {
	case SkillAverage:
		stroke = strokegen.Ellipse(center, r, r*ellipseSquash, start, end, strokeSamples)
	case SkillPoor:
		stroke = strokegen.Arc(center, r, start, start+geometry.FullTurn*poorCoverage, strokeSamples)
	case SkillMiss:
		small := r / missShrink
		off := strokegen.Point{X: center.X + r*missOffset, Y: center.Y}
		stroke = strokegen.Arc(off, small, start, end, strokeSamples)
	default:
		stroke = strokegen.Arc(center, r, start, end, strokeSamples)
	}
	return strokegen.Jitter(stroke, center, skillJitter[p.Skill]*r, rng.Int63()), elapsed
}
