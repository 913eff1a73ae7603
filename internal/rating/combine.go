package rating

import (
	"log"
	"math"
	"sort"
)

// Tier is the skater-oriented difficulty bucket for a combined score.
type Tier string

const (
	TierExcellent Tier = "Excellent" // score <= 30: weak defense, great matchup
	TierGood      Tier = "Good"      // 31-50
	TierAverage   Tier = "Average"   // 51-70
	TierDifficult Tier = "Difficult" // 71-100
)

// SkaterTier classifies a combined score for skater matchup planning.
func SkaterTier(score int) Tier {
	switch {
	case score <= 30:
		return TierExcellent
	case score <= 50:
		return TierGood
	case score <= 70:
		return TierAverage
	default:
		return TierDifficult
	}
}

// GoalieTier classifies the same score for goalie-oriented consumers, which
// read it as team defense quality. The label set and bin edges (25/50/75)
// are deliberately distinct from the skater tiers.
func GoalieTier(score int) string {
	switch {
	case score <= 25:
		return "Weak"
	case score <= 50:
		return "Meh"
	case score <= 75:
		return "Good"
	default:
		return "Excellent"
	}
}

// DefenseScore is the canonical per-team 0-100 opponent score with its
// skater tier.
type DefenseScore struct {
	Team  string
	Score int
	Tier  Tier
}

// SituationWeights weights the three situational ease scores. Remainder is a
// configuration slot reserved for future expansion and is ignored when
// combining.
type SituationWeights struct {
	SVA       float64
	PP        float64
	PK        float64
	Remainder float64
}

// DefaultSituationWeights returns the standard situation weighting.
func DefaultSituationWeights() SituationWeights {
	return SituationWeights{SVA: 0.75, PP: 0.10, PK: 0.10, Remainder: 0.05}
}

// Combine merges per-situation ease scores into one DefenseScore per team in
// the observed universe. Weights are renormalized to sum to 1, so scaling
// all of them by a positive constant changes nothing; a non-positive sum
// falls back to the defaults. Teams missing from a situation are filled with
// that situation's mean ease (neutral when the situation has no data).
func Combine(situational map[Situation][]EaseScore, w SituationWeights) []DefenseScore {
	universe := make(map[string]struct{})
	byTeam := make(map[Situation]map[string]float64, len(Situations))
	for _, sit := range Situations {
		scores := situational[sit]
		m := make(map[string]float64, len(scores))
		for _, es := range scores {
			m[es.Team] = es.Score
			universe[es.Team] = struct{}{}
		}
		byTeam[sit] = m
	}
	if len(universe) == 0 {
		return nil
	}

	teams := make([]string, 0, len(universe))
	for t := range universe {
		teams = append(teams, t)
	}
	sort.Strings(teams)

	// Fill value per situation: mean over teams that have one, else neutral.
	fill := make(map[Situation]float64, len(Situations))
	for _, sit := range Situations {
		sum, count := 0.0, 0
		for _, v := range byTeam[sit] {
			sum += v
			count++
		}
		fill[sit] = NeutralOr(sum/float64(count), count > 0)
	}

	wSVA, wPP, wPK := w.SVA, w.PP, w.PK
	total := wSVA + wPP + wPK
	if total <= 0 || math.IsNaN(total) {
		log.Printf("⚠️  invalid situation weights (sum=%.3f), using defaults", total)
		d := DefaultSituationWeights()
		wSVA, wPP, wPK = d.SVA, d.PP, d.PK
		total = wSVA + wPP + wPK
	}
	wSVA, wPP, wPK = wSVA/total, wPP/total, wPK/total

	out := make([]DefenseScore, 0, len(teams))
	for _, team := range teams {
		combined := wSVA*situationScore(byTeam, fill, SituationSVA, team) +
			wPP*situationScore(byTeam, fill, SituationPP, team) +
			wPK*situationScore(byTeam, fill, SituationPK, team)

		score := int(math.Round(clamp(combined, 0, 100)))
		out = append(out, DefenseScore{Team: team, Score: score, Tier: SkaterTier(score)})
	}
	return out
}

func situationScore(byTeam map[Situation]map[string]float64, fill map[Situation]float64, sit Situation, team string) float64 {
	if v, ok := byTeam[sit][team]; ok {
		return v
	}
	return fill[sit]
}
