// Package scoring turns a finished stroke into an accuracy score.
//
// Score is a pure function: it holds no state, never fails and always
// returns finite values clamped to their documented ranges.
package scoring

import (
	"math"
	"sort"

	"github.com/okian/circularity/internal/domain/geometry"
)

// Scoring constants.
const (
	MinSamples = 8

	maxScore = 100

	radiusWeight     = 0.50
	coverageWeight   = 0.35
	smoothnessWeight = 0.15

	// turnThreshold is the largest angular step (radians) between samples
	// that goes unpunished; every radian beyond it costs turnPenalty points.
	turnThreshold = 0.35
	turnPenalty   = 30

	degreesPerTurn = 360
	msPerBonusUnit = 100
	minElapsedMs   = 1
)

// Outcome classifies how a stroke was scored.
type Outcome string

// Outcomes.
const (
	// OutcomeScored means the stroke enclosed the target and had enough samples.
	OutcomeScored Outcome = "scored"
	// OutcomeNotEnclosed means the target was outside the stroke polygon.
	OutcomeNotEnclosed Outcome = "not_enclosed"
	// OutcomeTooShort means the stroke enclosed the target with fewer than
	// MinSamples points; accuracy is zero.
	OutcomeTooShort Outcome = "too_short"
)

// Breakdown holds the sub-scores that make up accuracy.
type Breakdown struct {
	Radius     float64 `json:"radius"`
	Coverage   float64 `json:"coverage"`
	Smoothness float64 `json:"smoothness"`
}

// Result is the scoring verdict for one stroke.
type Result struct {
	Outcome   Outcome   `json:"outcome"`
	Accuracy  float64   `json:"accuracy"`
	TimeBonus float64   `json:"time_bonus"`
	Final     float64   `json:"final_score"`
	Breakdown Breakdown `json:"breakdown"`
	ElapsedMs float64   `json:"elapsed_ms"`
}

// Enclosed reports whether the stroke passed the enclosure check.
func (r Result) Enclosed() bool {
	return r.Outcome != OutcomeNotEnclosed
}

// Score rates stroke against center using profile. elapsedMs is the gesture
// duration; values below 1 (and NaN) are floored to 1.
//
// The enclosure check always runs first. A stroke that does not enclose
// center yields OutcomeNotEnclosed with every score zero. An enclosing stroke
// shorter than MinSamples yields OutcomeTooShort with zero accuracy but keeps
// its time bonus.
func Score(stroke []geometry.Point, center geometry.Point, profile Profile, elapsedMs float64) Result {
	elapsedMs = floorElapsed(elapsedMs)

	if !geometry.PointInPolygon(center, stroke) {
		return Result{Outcome: OutcomeNotEnclosed, ElapsedMs: elapsedMs}
	}

	res := Result{Outcome: OutcomeScored, ElapsedMs: elapsedMs}
	if len(stroke) < MinSamples {
		res.Outcome = OutcomeTooShort
	} else {
		res.Accuracy, res.Breakdown = Accuracy(stroke, center, profile.SigmaScale)
	}

	res.TimeBonus = TimeBonus(elapsedMs, profile.TimeScale)
	res.Final = math.Min(maxScore, res.Accuracy+res.TimeBonus)
	return res
}

// Accuracy combines the radius, coverage and smoothness sub-scores of a
// stroke of at least MinSamples points, rounded to two decimals.
func Accuracy(stroke []geometry.Point, center geometry.Point, sigmaScale float64) (float64, Breakdown) {
	if len(stroke) < MinSamples {
		return 0, Breakdown{}
	}

	radii := make([]float64, len(stroke))
	angles := make([]float64, len(stroke))
	for i, p := range stroke {
		radii[i], angles[i] = geometry.Polar(p, center)
	}

	b := Breakdown{
		Radius:     RadiusScore(radii, sigmaScale),
		Smoothness: SmoothnessScore(angles),
		Coverage:   CoverageScore(angles),
	}

	total := b.Radius*radiusWeight + b.Coverage*coverageWeight + b.Smoothness*smoothnessWeight
	return round2(clamp(total)), b
}

// RadiusScore penalises the mean absolute deviation of radii relative to
// their mean. The mean is floored at 1 so coincident points stay finite.
func RadiusScore(radii []float64, sigmaScale float64) float64 {
	if len(radii) == 0 {
		return 0
	}
	n := float64(len(radii))

	var sum float64
	for _, r := range radii {
		sum += r
	}
	mean := sum / n

	var dev float64
	for _, r := range radii {
		dev += math.Abs(r - mean)
	}
	mad := dev / n

	rel := mad / math.Max(1, mean)
	return clamp(maxScore - rel*maxScore*sigmaScale)
}

// CoverageScore penalises the largest angular gap left uncovered by the
// stroke, including the wrap-around gap. angles must be in [0, 2π); the
// slice is not modified.
func CoverageScore(angles []float64) float64 {
	if len(angles) == 0 {
		return 0
	}
	sorted := append([]float64(nil), angles...)
	sort.Float64s(sorted)

	var maxGap float64
	for i := 0; i < len(sorted)-1; i++ {
		if gap := sorted[i+1] - sorted[i]; gap > maxGap {
			maxGap = gap
		}
	}
	if wrap := geometry.FullTurn - (sorted[len(sorted)-1] - sorted[0]); wrap > maxGap {
		maxGap = wrap
	}

	return clamp(maxScore - (maxGap/geometry.FullTurn)*degreesPerTurn)
}

// SmoothnessScore penalises sharp angular jumps between consecutive samples.
// angles are in drawing order. Comparison starts at the second step, so the
// jump from the first to the second sample is never penalised.
func SmoothnessScore(angles []float64) float64 {
	var penalty float64
	for i := 2; i < len(angles); i++ {
		diff := geometry.AngleBetween(angles[i-1], angles[i])
		if diff > turnThreshold {
			penalty += (diff - turnThreshold) * turnPenalty
		}
	}
	return clamp(maxScore - penalty)
}

// TimeBonus rewards fast gestures: timeScale minus a point per 100ms, never
// negative, rounded to two decimals.
func TimeBonus(elapsedMs, timeScale float64) float64 {
	elapsedMs = floorElapsed(elapsedMs)
	bonus := timeScale - elapsedMs/msPerBonusUnit
	if math.IsNaN(bonus) || bonus < 0 {
		return 0
	}
	return round2(bonus)
}

// floorElapsed keeps elapsed time finite and at least minElapsedMs. NaN
// floors, +Inf saturates at the largest finite duration.
func floorElapsed(ms float64) float64 {
	if !(ms >= minElapsedMs) {
		return minElapsedMs
	}
	if math.IsInf(ms, 1) {
		return math.MaxFloat64
	}
	return ms
}

// clamp bounds v to [0, 100]; NaN maps to 0.
func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(maxScore, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
