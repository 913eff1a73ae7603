package rating

import (
	"math"
	"sort"
)

// Situation is a gameplay context under which team rate statistics are
// separately tabulated.
type Situation string

const (
	SituationSVA Situation = "sva" // 5v5, score & venue adjusted
	SituationPP  Situation = "pp"  // power play
	SituationPK  Situation = "pk"  // penalty kill
)

// Situations lists the contexts in combination order.
var Situations = []Situation{SituationSVA, SituationPP, SituationPK}

// TeamStats holds one team's per-60 "against" rates for a single situation.
// A missing upstream column is represented as NaN.
type TeamStats struct {
	Team   string
	XGA60  float64
	SCA60  float64
	HDCA60 float64
	GA60   float64
	SA60   float64
}

// Complete reports whether every required feature is present and finite.
func (t TeamStats) Complete() bool {
	for _, v := range t.features() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (t TeamStats) features() [5]float64 {
	return [5]float64{t.XGA60, t.SCA60, t.HDCA60, t.GA60, t.SA60}
}

// FeatureWeights weights the five against-rate features in the composite.
// All rates are "against", so a higher composite means a tougher defense.
type FeatureWeights struct {
	XGA60  float64
	SCA60  float64
	HDCA60 float64
	GA60   float64
	SA60   float64
}

// DefaultFeatureWeights returns the standard feature weighting.
func DefaultFeatureWeights() FeatureWeights {
	return FeatureWeights{XGA60: 0.35, SCA60: 0.20, HDCA60: 0.20, GA60: 0.15, SA60: 0.10}
}

// Sum returns the total of all five weights.
func (w FeatureWeights) Sum() float64 {
	return w.XGA60 + w.SCA60 + w.HDCA60 + w.GA60 + w.SA60
}

func (w FeatureWeights) vector() [5]float64 {
	return [5]float64{w.XGA60, w.SCA60, w.HDCA60, w.GA60, w.SA60}
}

// EaseScore rates one team's defensive difficulty in a situation:
// 0 = weakest defense (easiest matchup), 100 = toughest.
type EaseScore struct {
	Team  string
	Score float64
}

// minSampleSize is the smallest team count for which percentile anchors are
// considered reliable. Below it every team scores neutral.
const minSampleSize = 3

// SituationalEase converts one situation's stat table into 0-100 ease
// scores. Incomplete rows are dropped before the distribution statistics are
// taken; when fewer than minSampleSize complete rows remain, every team
// present in the input (complete or not) receives exactly NeutralScore.
func SituationalEase(stats []TeamStats, w FeatureWeights) []EaseScore {
	complete := make([]TeamStats, 0, len(stats))
	for _, s := range stats {
		if s.Complete() {
			complete = append(complete, s)
		}
	}

	if len(complete) < minSampleSize {
		return neutralScores(stats)
	}

	// Per-feature population z-scores. A zero or non-finite spread zeroes
	// that feature for every team instead of letting it dominate.
	n := float64(len(complete))
	var mean, std [5]float64
	for _, s := range complete {
		f := s.features()
		for i := range f {
			mean[i] += f[i]
		}
	}
	for i := range mean {
		mean[i] /= n
	}
	for _, s := range complete {
		f := s.features()
		for i := range f {
			d := f[i] - mean[i]
			std[i] += d * d
		}
	}
	for i := range std {
		std[i] = math.Sqrt(std[i] / n)
	}

	weights := w.vector()
	ease := make([]float64, len(complete))
	for j, s := range complete {
		f := s.features()
		composite := 0.0
		for i := range f {
			if std[i] == 0 || math.IsNaN(std[i]) || math.IsInf(std[i], 0) {
				continue
			}
			composite += weights[i] * (f[i] - mean[i]) / std[i]
		}
		// High against-rates mean a weak defense, so the difficulty value
		// is the negated composite.
		ease[j] = -composite
	}

	// Rescale against the 5th/95th percentile anchors rather than min/max
	// so a single outlier cannot stretch the whole scale.
	p5 := percentile(ease, 5)
	p95 := percentile(ease, 95)

	out := make([]EaseScore, len(complete))
	for j, s := range complete {
		score := NeutralScore
		if p95 > p5 && !math.IsNaN(p5) && !math.IsNaN(p95) {
			score = 100 * (ease[j] - p5) / (p95 - p5)
			score = clamp(score, 0, 100)
		}
		out[j] = EaseScore{Team: s.Team, Score: score}
	}
	return out
}

func neutralScores(stats []TeamStats) []EaseScore {
	seen := make(map[string]struct{}, len(stats))
	out := make([]EaseScore, 0, len(stats))
	for _, s := range stats {
		if _, ok := seen[s.Team]; ok {
			continue
		}
		seen[s.Team] = struct{}{}
		out = append(out, EaseScore{Team: s.Team, Score: NeutralScore})
	}
	return out
}

// percentile computes the p-th percentile with linear interpolation between
// order statistics, matching the anchor convention of the score design.
func percentile(vals []float64, p float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)

	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
