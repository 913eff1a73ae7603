package diagnostics

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/soluk/zamboni/internal/lookup"
	"github.com/soluk/zamboni/internal/rating"
)

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{10, 20, 30, 40})

	if s.N != 4 {
		t.Errorf("N = %d, want 4", s.N)
	}
	if s.Mean != 25 {
		t.Errorf("Mean = %v, want 25", s.Mean)
	}
	if s.Min != 10 || s.Max != 40 {
		t.Errorf("Min/Max = %v/%v, want 10/40", s.Min, s.Max)
	}
	// Symmetric distribution: no skew.
	if math.Abs(s.Skewness) > 1e-9 {
		t.Errorf("Skewness = %v, want 0", s.Skewness)
	}
}

func TestSummarizeIgnoresNonFinite(t *testing.T) {
	s := Summarize([]float64{10, math.NaN(), 30, math.Inf(1)})

	if s.N != 2 {
		t.Errorf("N = %d, want 2 finite values", s.N)
	}
	if s.Mean != 20 {
		t.Errorf("Mean = %v, want 20", s.Mean)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.N != 0 || s.Mean != 0 {
		t.Errorf("empty summary = %+v", s)
	}
}

func TestFeaturesReportFlagsHighCorrelation(t *testing.T) {
	// xga60 and sca60 move in lockstep; ga60 moves the other way.
	stats := []rating.TeamStats{
		{Team: "BOS", XGA60: 2.0, SCA60: 20, HDCA60: 9.1, GA60: 4.0, SA60: 30.2},
		{Team: "TOR", XGA60: 2.5, SCA60: 25, HDCA60: 10.7, GA60: 3.5, SA60: 29.8},
		{Team: "SEA", XGA60: 3.0, SCA60: 30, HDCA60: 9.9, GA60: 3.0, SA60: 31.1},
		{Team: "CHI", XGA60: 3.5, SCA60: 35, HDCA60: 10.2, GA60: 2.5, SA60: 30.5},
	}

	report := FeaturesReport(stats)

	if got := report.Correlation["xga60"]["sca60"]; got != 1 {
		t.Errorf("corr(xga60, sca60) = %v, want 1", got)
	}
	if got := report.Correlation["xga60"]["ga60"]; got != -1 {
		t.Errorf("corr(xga60, ga60) = %v, want -1", got)
	}

	found := false
	for _, p := range report.HighPairs {
		if p.FeatureA == "sca60" && p.FeatureB == "xga60" || p.FeatureA == "xga60" && p.FeatureB == "sca60" {
			found = true
		}
	}
	if !found {
		t.Errorf("perfectly correlated pair not flagged: %+v", report.HighPairs)
	}
}

func TestBuildAndWrite(t *testing.T) {
	defense := []rating.DefenseScore{
		{Team: "BOS", Score: 72, Tier: rating.TierDifficult},
		{Team: "TOR", Score: 41, Tier: rating.TierGood},
	}
	rows := []lookup.TeamWeekRow{
		{Team: "BOS", Week: 1, SOS: 40},
		{Team: "TOR", Week: 1, SOS: 68},
	}
	quality := &lookup.QualityReport{JoinMisses: []string{"UTA@BOS week 1"}}

	report := Build(defense, rows, nil, quality)
	if report.OpponentEase.N != 2 || report.TeamWeekSOS.N != 2 {
		t.Errorf("summary sizes = %d/%d, want 2/2", report.OpponentEase.N, report.TeamWeekSOS.N)
	}
	if report.Quality == nil || len(report.Quality.JoinMisses) != 1 {
		t.Error("quality report not carried through")
	}

	path := filepath.Join(t.TempDir(), "diag.json")
	if err := Write(path, report); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	var decoded Report
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.OpponentEase.N != 2 {
		t.Errorf("round-tripped N = %d, want 2", decoded.OpponentEase.N)
	}
}
