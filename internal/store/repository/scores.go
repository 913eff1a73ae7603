package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/soluk/zamboni/internal/store"
)

// ScoreRepository reads persisted team defense scores.
type ScoreRepository struct {
	db *store.Database
}

// NewScoreRepository creates a new score repository.
func NewScoreRepository(db *store.Database) *ScoreRepository {
	return &ScoreRepository{db: db}
}

// GetLatest returns all defense scores from the most recent run, ordered by
// team code.
func (r *ScoreRepository) GetLatest(ctx context.Context) ([]*store.TeamDefenseScore, error) {
	query := `
		SELECT s.run_id, s.team, s.score, s.tier
		FROM team_defense_scores s
		WHERE s.run_id = (SELECT MAX(run_id) FROM pipeline_runs)
		ORDER BY s.team
	`

	rows, err := r.db.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying defense scores: %w", err)
	}
	defer rows.Close()

	var scores []*store.TeamDefenseScore
	for rows.Next() {
		s := &store.TeamDefenseScore{}
		if err := rows.Scan(&s.RunID, &s.Team, &s.Score, &s.Tier); err != nil {
			return nil, fmt.Errorf("scanning defense score: %w", err)
		}
		scores = append(scores, s)
	}

	return scores, rows.Err()
}

// GetByTeam returns the latest score for one team.
func (r *ScoreRepository) GetByTeam(ctx context.Context, team string) (*store.TeamDefenseScore, error) {
	query := `
		SELECT s.run_id, s.team, s.score, s.tier
		FROM team_defense_scores s
		WHERE s.run_id = (SELECT MAX(run_id) FROM pipeline_runs)
			AND s.team = $1
	`

	s := &store.TeamDefenseScore{}
	err := r.db.DB().QueryRowContext(ctx, query, team).Scan(&s.RunID, &s.Team, &s.Score, &s.Tier)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no score for team: %s", team)
	}
	if err != nil {
		return nil, fmt.Errorf("querying defense score: %w", err)
	}

	return s, nil
}
