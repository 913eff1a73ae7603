package store

import "time"

// PipelineRun records one lookup-table build.
type PipelineRun struct {
	RunID        int64     `json:"run_id"`
	SeasonLabel  string    `json:"season_label"`
	ForceRefresh bool      `json:"force_refresh"`
	TeamCount    int       `json:"team_count"`
	RowCount     int       `json:"row_count"`
	JoinMisses   int       `json:"join_misses"`
	ConstantSOS  bool      `json:"constant_sos"`
	StartedAt    time.Time `json:"started_at"`
	DurationMS   int64     `json:"duration_ms"`
	CreatedAt    time.Time `json:"created_at"`
}

// TeamDefenseScore is one team's combined score as persisted per run.
type TeamDefenseScore struct {
	RunID int64  `json:"run_id"`
	Team  string `json:"team"`
	Score int    `json:"score"`
	Tier  string `json:"tier"`
}

// LookupRow is one persisted team-week row of the lookup table.
type LookupRow struct {
	RunID           int64  `json:"run_id"`
	Team            string `json:"team"`
	Week            int    `json:"week"`
	Games           int    `json:"games"`
	LightNights     int    `json:"light_nights"`
	Opponents       string `json:"opponents"`
	SOS             int    `json:"sos"`
	MatchupTier     string `json:"matchup_tier"`
	BackToBacks     int    `json:"back_to_backs"`
	AwayGames       int    `json:"away_games"`
	GamesRestOfWeek int    `json:"games_rest_of_week"`
	GamesROS        int    `json:"games_ros"`
	LookupKey       string `json:"lookup_key"`
}
