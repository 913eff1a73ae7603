package pipeline

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/soluk/zamboni/internal/config"
	"github.com/soluk/zamboni/internal/rating"
	"github.com/soluk/zamboni/internal/schedule"
)

// fixtureSource serves canned stat tables and records how it was called.
type fixtureSource struct {
	tables map[string]map[rating.Situation][]rating.TeamStats
	calls  []string
	forced []bool
}

func (f *fixtureSource) FetchAll(_ context.Context, seasonLabel string, forceRefresh bool) map[rating.Situation][]rating.TeamStats {
	f.calls = append(f.calls, seasonLabel)
	f.forced = append(f.forced, forceRefresh)
	return f.tables[seasonLabel]
}

func fixtureStats(team string, v float64) rating.TeamStats {
	return rating.TeamStats{Team: team, XGA60: v, SCA60: v * 10, HDCA60: v * 4, GA60: v, SA60: v * 12}
}

func fixtureTables(teams map[string]float64) map[rating.Situation][]rating.TeamStats {
	out := make(map[rating.Situation][]rating.TeamStats)
	for _, sit := range rating.Situations {
		var stats []rating.TeamStats
		for team, v := range teams {
			stats = append(stats, fixtureStats(team, v))
		}
		out[sit] = stats
	}
	return out
}

func writeScheduleCSV(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "schedule.csv")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating schedule fixture: %v", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Write([]string{"Date", "Home", "Away"})
	w.Write([]string{"2025-10-07", "Boston", "Toronto"})
	w.Write([]string{"2025-10-09", "Seattle", "Boston"})
	w.Write([]string{"2025-10-14", "Toronto", "Seattle"})
	w.Flush()
	if err := w.Error(); err != nil {
		t.Fatalf("writing schedule fixture: %v", err)
	}
	return path
}

func testConfig(t *testing.T, dir string) *config.Config {
	t.Helper()
	return &config.Config{
		SchedulePath:       writeScheduleCSV(t, dir),
		OutputCSV:          filepath.Join(dir, "out", "lookup_table.csv"),
		TeamDefenseCSV:     filepath.Join(dir, "out", "team_defense_lookup.csv"),
		DiagnosticsOut:     filepath.Join(dir, "out", "diagnostics.json"),
		SeasonLabel:        "20252026",
		Weeks:              25,
		WeekStartDay:       time.Monday,
		LightNightMethod:   schedule.LightNightByGamesThreshold,
		LightNightMaxGames: 5,
		SituationWeights:   rating.DefaultSituationWeights(),
		FeatureWeights:     rating.DefaultFeatureWeights(),
	}
}

func fixedNow() time.Time {
	return time.Date(2025, time.October, 8, 12, 0, 0, 0, time.UTC)
}

func TestBuilderRunEndToEnd(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)

	source := &fixtureSource{tables: map[string]map[rating.Situation][]rating.TeamStats{
		"20252026": fixtureTables(map[string]float64{"BOS": 2.0, "TOR": 2.6, "SEA": 3.2, "VGK": 2.4}),
	}}

	builder := NewBuilder(cfg, source, nil, fixedNow)
	result, err := builder.Run(context.Background(), false)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(result.Defense) != 4 {
		t.Errorf("len(Defense) = %d, want 4 scored teams", len(result.Defense))
	}
	// 3 teams, BOS plays twice in week 1; TOR and SEA each appear in weeks
	// 1 and 2.
	if len(result.Rows) != 5 {
		t.Errorf("len(Rows) = %d, want 5 team-weeks", len(result.Rows))
	}

	for _, path := range []string{cfg.OutputCSV, cfg.TeamDefenseCSV, cfg.DiagnosticsOut} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("output %s not written: %v", path, err)
		}
	}

	// The whole input has real score variance, so the constant-SOS guard
	// must stay quiet.
	if result.Quality.ConstantSOS {
		t.Error("ConstantSOS flagged on varied input")
	}

	if len(source.calls) != 1 || source.calls[0] != "20252026" {
		t.Errorf("source calls = %v, want one fetch of the current season", source.calls)
	}
}

func TestBuilderRunLookupCSVContents(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)

	source := &fixtureSource{tables: map[string]map[rating.Situation][]rating.TeamStats{
		"20252026": fixtureTables(map[string]float64{"BOS": 2.0, "TOR": 2.6, "SEA": 3.2, "VGK": 2.4}),
	}}

	builder := NewBuilder(cfg, source, nil, fixedNow)
	if _, err := builder.Run(context.Background(), false); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	f, err := os.Open(cfg.OutputCSV)
	if err != nil {
		t.Fatalf("opening lookup csv: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading lookup csv: %v", err)
	}
	if len(records) != 6 {
		t.Fatalf("len(records) = %d, want header + 5 rows", len(records))
	}

	// First data row is BOS week 1: two games, one away, key BOS1.
	row := records[1]
	if row[0] != "BOS" || row[1] != "1" || row[2] != "2" || row[8] != "1" || row[11] != "BOS1" {
		t.Errorf("BOS week 1 row = %v", row)
	}
}

func TestBuilderRunPriorSeasonBlend(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	cfg.IncludePriorSeason = true

	source := &fixtureSource{tables: map[string]map[rating.Situation][]rating.TeamStats{
		"20252026": fixtureTables(map[string]float64{"BOS": 2.0, "TOR": 2.6, "SEA": 3.2, "VGK": 2.4}),
		"20242025": fixtureTables(map[string]float64{"BOS": 3.2, "TOR": 2.0, "SEA": 2.6, "VGK": 2.4}),
	}}

	builder := NewBuilder(cfg, source, nil, fixedNow)
	if _, err := builder.Run(context.Background(), false); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(source.calls) != 2 {
		t.Fatalf("source calls = %v, want current and prior season", source.calls)
	}
	if source.calls[1] != "20242025" {
		t.Errorf("prior fetch = %q, want 20242025", source.calls[1])
	}
}

func TestBuilderRunThreadsForceRefresh(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)

	source := &fixtureSource{tables: map[string]map[rating.Situation][]rating.TeamStats{
		"20252026": fixtureTables(map[string]float64{"BOS": 2.0, "TOR": 2.6, "SEA": 3.2, "VGK": 2.4}),
	}}

	builder := NewBuilder(cfg, source, nil, fixedNow)
	if _, err := builder.Run(context.Background(), true); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(source.forced) != 1 || !source.forced[0] {
		t.Errorf("forceRefresh not threaded to the source: %v", source.forced)
	}
}

func TestBuilderRunEmptyStatsDegradesToNeutral(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)

	// The source returns nothing: no team scores, every join misses, and
	// the constant-SOS guard fires rather than the run failing.
	source := &fixtureSource{tables: map[string]map[rating.Situation][]rating.TeamStats{}}

	builder := NewBuilder(cfg, source, nil, fixedNow)
	result, err := builder.Run(context.Background(), false)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(result.Defense) != 0 {
		t.Errorf("len(Defense) = %d, want 0", len(result.Defense))
	}
	if !result.Quality.ConstantSOS {
		t.Error("ConstantSOS = false, want true when no scores join")
	}
	for _, row := range result.Rows {
		if row.SOS != int(rating.NeutralScore) {
			t.Errorf("%s SOS = %d, want neutral", row.Key(), row.SOS)
		}
	}
}

func TestBuilderRunMissingSchedule(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	cfg.SchedulePath = filepath.Join(dir, "missing.csv")

	source := &fixtureSource{tables: map[string]map[rating.Situation][]rating.TeamStats{}}
	builder := NewBuilder(cfg, source, nil, fixedNow)

	if _, err := builder.Run(context.Background(), false); err == nil {
		t.Fatal("Run() with missing schedule succeeded, want error")
	}
}
