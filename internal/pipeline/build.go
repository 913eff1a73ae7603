package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/soluk/zamboni/internal/config"
	"github.com/soluk/zamboni/internal/diagnostics"
	"github.com/soluk/zamboni/internal/lookup"
	"github.com/soluk/zamboni/internal/rating"
	"github.com/soluk/zamboni/internal/schedule"
	"github.com/soluk/zamboni/internal/teamcode"
)

// StatsSource supplies per-situation stat tables for a season. The production
// implementation fetches and caches site tables; tests inject fixtures.
type StatsSource interface {
	FetchAll(ctx context.Context, seasonLabel string, forceRefresh bool) map[rating.Situation][]rating.TeamStats
}

// Result is everything one pipeline run produced.
type Result struct {
	Defense     []rating.DefenseScore
	Rows        []lookup.TeamWeekRow
	Quality     *lookup.QualityReport
	Diagnostics diagnostics.Report
	StartedAt   time.Time
	Duration    time.Duration
}

// Builder runs the full schedule-to-lookup pipeline. The clock is injected so
// current-week detection is reproducible under test.
type Builder struct {
	cfg      *config.Config
	source   StatsSource
	resolver *teamcode.Resolver
	now      func() time.Time
}

// NewBuilder wires a pipeline. resolver and now may be nil; sensible defaults
// are used.
func NewBuilder(cfg *config.Config, source StatsSource, resolver *teamcode.Resolver, now func() time.Time) *Builder {
	if resolver == nil {
		resolver = teamcode.NewResolver(teamcode.DefaultReference())
	}
	if now == nil {
		now = time.Now
	}
	return &Builder{cfg: cfg, source: source, resolver: resolver, now: now}
}

// Run executes one end-to-end build: read schedule, normalize, fetch stats,
// score, aggregate, write outputs. forceRefresh is threaded through to the
// stats source explicitly.
func (b *Builder) Run(ctx context.Context, forceRefresh bool) (*Result, error) {
	started := b.now()
	log.Printf("🏒 building lookup table for season %s", b.cfg.SeasonLabel)

	games, err := b.readSchedule()
	if err != nil {
		return nil, err
	}
	log.Printf("  ✓ loaded %d games from %s", len(games), b.cfg.SchedulePath)

	matchups, err := schedule.Normalize(games, schedule.NormalizeOptions{
		WeekStartDay: b.cfg.WeekStartDay,
		Method:       b.cfg.LightNightMethod,
		MaxGames:     b.cfg.LightNightMaxGames,
		Fraction:     b.cfg.LightNightFraction,
		Resolver:     b.resolver,
	})
	if err != nil {
		return nil, fmt.Errorf("normalizing schedule: %w", err)
	}
	log.Printf("  ✓ normalized into %d matchup rows", len(matchups))

	situations := b.source.FetchAll(ctx, b.cfg.SeasonLabel, forceRefresh)

	ease := make(map[rating.Situation][]rating.EaseScore, len(situations))
	for sit, stats := range situations {
		ease[sit] = rating.SituationalEase(stats, b.cfg.FeatureWeights)
	}
	defense := rating.Combine(ease, b.cfg.SituationWeights)
	log.Printf("  ✓ scored %d teams", len(defense))

	var blend *lookup.BlendContext
	if b.cfg.IncludePriorSeason {
		blend = b.priorBlend(ctx, forceRefresh)
	}

	today := b.now().UTC().Truncate(24 * time.Hour)
	rows, quality, err := lookup.Aggregate(matchups, defense, lookup.AggregateOptions{
		Today: today,
		Blend: blend,
	})
	if err != nil {
		return nil, fmt.Errorf("aggregating team weeks: %w", err)
	}
	log.Printf("  ✓ aggregated %d team-week rows", len(rows))

	report := diagnostics.Build(defense, rows, situations, quality)

	if err := b.writeOutputs(rows, defense, report); err != nil {
		return nil, err
	}

	return &Result{
		Defense:     defense,
		Rows:        rows,
		Quality:     quality,
		Diagnostics: report,
		StartedAt:   started,
		Duration:    b.now().Sub(started),
	}, nil
}

func (b *Builder) readSchedule() ([]schedule.GameRow, error) {
	games, err := schedule.ReadGames(b.cfg.SchedulePath)
	if err != nil {
		return nil, fmt.Errorf("reading schedule: %w", err)
	}
	if len(games) == 0 {
		return nil, fmt.Errorf("schedule %s contains no games", b.cfg.SchedulePath)
	}
	return games, nil
}

// priorBlend scores the prior season and packages it for week-indexed
// blending. A prior season that cannot be scored disables blending for the
// run rather than failing it.
func (b *Builder) priorBlend(ctx context.Context, forceRefresh bool) *lookup.BlendContext {
	label := b.cfg.PriorSeasonLabel()
	if label == "" {
		log.Printf("⚠️  cannot derive prior season from %s; skipping blend", b.cfg.SeasonLabel)
		return nil
	}

	situations := b.source.FetchAll(ctx, label, forceRefresh)
	ease := make(map[rating.Situation][]rating.EaseScore, len(situations))
	for sit, stats := range situations {
		ease[sit] = rating.SituationalEase(stats, b.cfg.FeatureWeights)
	}
	defense := rating.Combine(ease, b.cfg.SituationWeights)
	if len(defense) == 0 {
		log.Printf("⚠️  no prior-season scores for %s; skipping blend", label)
		return nil
	}

	prior := make(map[string]int, len(defense))
	for _, d := range defense {
		prior[d.Team] = d.Score
	}
	log.Printf("  ✓ blending against %d prior-season scores (%s)", len(prior), label)
	return &lookup.BlendContext{Prior: prior, TotalWeeks: b.cfg.Weeks}
}

func (b *Builder) writeOutputs(rows []lookup.TeamWeekRow, defense []rating.DefenseScore, report diagnostics.Report) error {
	for _, path := range []string{b.cfg.OutputCSV, b.cfg.TeamDefenseCSV, b.cfg.DiagnosticsOut} {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("creating output dir %s: %w", dir, err)
			}
		}
	}

	if err := lookup.WriteLookupCSV(b.cfg.OutputCSV, rows); err != nil {
		return err
	}
	log.Printf("  ✓ wrote %s (%d rows)", b.cfg.OutputCSV, len(rows))

	if err := lookup.WriteTeamDefenseCSV(b.cfg.TeamDefenseCSV, defense); err != nil {
		return err
	}
	log.Printf("  ✓ wrote %s (%d teams)", b.cfg.TeamDefenseCSV, len(defense))

	if err := diagnostics.Write(b.cfg.DiagnosticsOut, report); err != nil {
		return err
	}
	log.Printf("  ✓ wrote %s", b.cfg.DiagnosticsOut)
	return nil
}
