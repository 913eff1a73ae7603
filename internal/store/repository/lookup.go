package repository

import (
	"context"
	"fmt"

	"github.com/soluk/zamboni/internal/store"
)

// LookupRepository reads persisted lookup-table rows.
type LookupRepository struct {
	db *store.Database
}

// NewLookupRepository creates a new lookup repository.
func NewLookupRepository(db *store.Database) *LookupRepository {
	return &LookupRepository{db: db}
}

const lookupColumns = `
	run_id, team, week, games, light_nights, opponents, sos, matchup_tier,
	back_to_backs, away_games, games_rest_of_week, games_ros, lookup_key
`

// GetLatest returns the full lookup table from the most recent run.
func (r *LookupRepository) GetLatest(ctx context.Context) ([]*store.LookupRow, error) {
	query := `
		SELECT ` + lookupColumns + `
		FROM lookup_rows
		WHERE run_id = (SELECT MAX(run_id) FROM pipeline_runs)
		ORDER BY team, week
	`

	return r.queryRows(ctx, query)
}

// GetByTeam returns the latest lookup rows for one team, ordered by week.
func (r *LookupRepository) GetByTeam(ctx context.Context, team string) ([]*store.LookupRow, error) {
	query := `
		SELECT ` + lookupColumns + `
		FROM lookup_rows
		WHERE run_id = (SELECT MAX(run_id) FROM pipeline_runs)
			AND team = $1
		ORDER BY week
	`

	return r.queryRows(ctx, query, team)
}

func (r *LookupRepository) queryRows(ctx context.Context, query string, args ...any) ([]*store.LookupRow, error) {
	rows, err := r.db.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying lookup rows: %w", err)
	}
	defer rows.Close()

	var out []*store.LookupRow
	for rows.Next() {
		row := &store.LookupRow{}
		err := rows.Scan(
			&row.RunID, &row.Team, &row.Week, &row.Games, &row.LightNights,
			&row.Opponents, &row.SOS, &row.MatchupTier, &row.BackToBacks,
			&row.AwayGames, &row.GamesRestOfWeek, &row.GamesROS, &row.LookupKey,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning lookup row: %w", err)
		}
		out = append(out, row)
	}

	return out, rows.Err()
}
