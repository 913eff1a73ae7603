package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/soluk/zamboni/internal/lookup"
	"github.com/soluk/zamboni/internal/rating"
	"github.com/soluk/zamboni/internal/store"
)

// RunRepository handles pipeline-run persistence.
type RunRepository struct {
	db *store.Database
}

// NewRunRepository creates a new run repository.
func NewRunRepository(db *store.Database) *RunRepository {
	return &RunRepository{db: db}
}

// SaveRun persists one completed build atomically: the run record plus its
// defense scores and lookup rows. Returns the new run ID.
func (r *RunRepository) SaveRun(ctx context.Context, run *store.PipelineRun, defense []rating.DefenseScore, rows []lookup.TeamWeekRow) (int64, error) {
	tx, err := r.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning run transaction: %w", err)
	}
	defer tx.Rollback()

	var runID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO pipeline_runs (season_label, force_refresh, team_count, row_count, join_misses, constant_sos, started_at, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING run_id
	`, run.SeasonLabel, run.ForceRefresh, run.TeamCount, run.RowCount, run.JoinMisses, run.ConstantSOS, run.StartedAt, run.DurationMS).Scan(&runID)
	if err != nil {
		return 0, fmt.Errorf("inserting pipeline run: %w", err)
	}

	for _, d := range defense {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO team_defense_scores (run_id, team, score, tier)
			VALUES ($1, $2, $3, $4)
		`, runID, d.Team, d.Score, string(d.Tier))
		if err != nil {
			return 0, fmt.Errorf("inserting defense score %s: %w", d.Team, err)
		}
	}

	for _, row := range rows {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO lookup_rows (run_id, team, week, games, light_nights, opponents, sos, matchup_tier, back_to_backs, away_games, games_rest_of_week, games_ros, lookup_key)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		`, runID, row.Team, row.Week, row.Games, row.LightNights, strings.Join(row.Opponents, ", "),
			row.SOS, row.MatchupTier, row.BackToBacks, row.AwayGames, row.GamesRestOfWeek, row.GamesROS, row.Key())
		if err != nil {
			return 0, fmt.Errorf("inserting lookup row %s: %w", row.Key(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run transaction: %w", err)
	}
	return runID, nil
}

// GetLatest returns the most recent pipeline run, or nil when none exist.
func (r *RunRepository) GetLatest(ctx context.Context) (*store.PipelineRun, error) {
	query := `
		SELECT run_id, season_label, force_refresh, team_count, row_count,
			join_misses, constant_sos, started_at, duration_ms, created_at
		FROM pipeline_runs
		ORDER BY run_id DESC
		LIMIT 1
	`

	run := &store.PipelineRun{}
	err := r.db.DB().QueryRowContext(ctx, query).Scan(
		&run.RunID, &run.SeasonLabel, &run.ForceRefresh, &run.TeamCount, &run.RowCount,
		&run.JoinMisses, &run.ConstantSOS, &run.StartedAt, &run.DurationMS, &run.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest run: %w", err)
	}

	return run, nil
}
