package rating

import "math"

// NeutralScore is the fallback used whenever a score cannot be computed:
// too few samples, degenerate spread, or a missing join. Every stage that
// degrades must go through NeutralOr so the fallback semantics stay
// identical everywhere.
const NeutralScore = 50.0

// NeutralOr returns v when ok is true and v is finite, NeutralScore
// otherwise.
func NeutralOr(v float64, ok bool) float64 {
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return NeutralScore
	}
	return v
}
