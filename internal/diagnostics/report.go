package diagnostics

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/soluk/zamboni/internal/lookup"
	"github.com/soluk/zamboni/internal/rating"
)

// Summary describes one score distribution.
type Summary struct {
	N        int     `json:"n"`
	Mean     float64 `json:"mean"`
	Std      float64 `json:"std"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Skewness float64 `json:"skewness"`
}

// CorrelationPair flags two features whose Pearson correlation is strong
// enough that one of them adds little independent signal.
type CorrelationPair struct {
	FeatureA string  `json:"feature_a"`
	FeatureB string  `json:"feature_b"`
	PearsonR float64 `json:"pearson_r"`
}

// FeatureReport covers one situation's raw feature distributions.
type FeatureReport struct {
	PerFeature  map[string]Summary            `json:"per_feature"`
	Correlation map[string]map[string]float64 `json:"correlation,omitempty"`
	HighPairs   []CorrelationPair             `json:"high_correlation_pairs_abs_ge_0.8,omitempty"`
}

// Report is the diagnostics JSON written beside the lookup CSV.
type Report struct {
	OpponentEase Summary                            `json:"opponent_ease"`
	TeamWeekSOS  Summary                            `json:"teamweek_sos"`
	Features     map[rating.Situation]FeatureReport `json:"features"`
	Quality      *lookup.QualityReport              `json:"quality,omitempty"`
}

// highCorrelationThreshold is the |r| above which a feature pair is flagged.
const highCorrelationThreshold = 0.8

// Summarize computes distribution statistics over finite values only.
func Summarize(vals []float64) Summary {
	finite := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}
	s := Summary{N: len(finite)}
	if s.N == 0 {
		return s
	}

	s.Min, s.Max = finite[0], finite[0]
	for _, v := range finite {
		s.Mean += v
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	s.Mean /= float64(s.N)

	var m2, m3 float64
	for _, v := range finite {
		d := v - s.Mean
		m2 += d * d
		m3 += d * d * d
	}
	m2 /= float64(s.N)
	m3 /= float64(s.N)
	s.Std = math.Sqrt(m2)
	if s.Std > 0 {
		s.Skewness = m3 / math.Pow(s.Std, 3)
	}
	return s
}

// FeaturesReport builds per-feature summaries and the Pearson correlation
// matrix for one situation's stat table.
func FeaturesReport(stats []rating.TeamStats) FeatureReport {
	features := map[string][]float64{
		"xga60":  {},
		"sca60":  {},
		"hdca60": {},
		"ga60":   {},
		"sa60":   {},
	}
	for _, s := range stats {
		features["xga60"] = append(features["xga60"], s.XGA60)
		features["sca60"] = append(features["sca60"], s.SCA60)
		features["hdca60"] = append(features["hdca60"], s.HDCA60)
		features["ga60"] = append(features["ga60"], s.GA60)
		features["sa60"] = append(features["sa60"], s.SA60)
	}

	report := FeatureReport{PerFeature: make(map[string]Summary, len(features))}
	for name, vals := range features {
		report.PerFeature[name] = Summarize(vals)
	}

	names := make([]string, 0, len(features))
	for name := range features {
		names = append(names, name)
	}
	sort.Strings(names)

	report.Correlation = make(map[string]map[string]float64, len(names))
	for _, a := range names {
		report.Correlation[a] = make(map[string]float64, len(names))
		for _, b := range names {
			report.Correlation[a][b] = round3(pearson(features[a], features[b]))
		}
	}
	for i, a := range names {
		for _, b := range names[i+1:] {
			r := report.Correlation[a][b]
			if !math.IsNaN(r) && math.Abs(r) >= highCorrelationThreshold {
				report.HighPairs = append(report.HighPairs, CorrelationPair{FeatureA: a, FeatureB: b, PearsonR: r})
			}
		}
	}
	return report
}

// Build assembles the full diagnostics report for one pipeline run.
func Build(defense []rating.DefenseScore, rows []lookup.TeamWeekRow, situations map[rating.Situation][]rating.TeamStats, quality *lookup.QualityReport) Report {
	scores := make([]float64, 0, len(defense))
	for _, d := range defense {
		scores = append(scores, float64(d.Score))
	}
	sos := make([]float64, 0, len(rows))
	for _, r := range rows {
		sos = append(sos, float64(r.SOS))
	}

	features := make(map[rating.Situation]FeatureReport, len(situations))
	for sit, stats := range situations {
		features[sit] = FeaturesReport(stats)
	}

	return Report{
		OpponentEase: Summarize(scores),
		TeamWeekSOS:  Summarize(sos),
		Features:     features,
		Quality:      quality,
	}
}

// Write persists the report as indented JSON.
func Write(path string, r Report) error {
	raw, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding diagnostics: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("writing diagnostics: %w", err)
	}
	return nil
}

// pearson computes the correlation over index pairs where both values are
// finite.
func pearson(xs, ys []float64) float64 {
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	var sx, sy float64
	count := 0
	for i := 0; i < n; i++ {
		if bad(xs[i]) || bad(ys[i]) {
			continue
		}
		sx += xs[i]
		sy += ys[i]
		count++
	}
	if count < 2 {
		return math.NaN()
	}
	mx, my := sx/float64(count), sy/float64(count)

	var cov, vx, vy float64
	for i := 0; i < n; i++ {
		if bad(xs[i]) || bad(ys[i]) {
			continue
		}
		dx, dy := xs[i]-mx, ys[i]-my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx == 0 || vy == 0 {
		return math.NaN()
	}
	return cov / math.Sqrt(vx*vy)
}

func bad(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

func round3(v float64) float64 {
	if math.IsNaN(v) {
		return v
	}
	return math.Round(v*1000) / 1000
}
