package schedule

import (
	"fmt"
	"sort"
	"time"

	"github.com/soluk/zamboni/internal/teamcode"
)

// MatchupRow is one team's perspective on one game. Every GameRow produces
// exactly two MatchupRows, symmetric in team/opponent and IsHome.
type MatchupRow struct {
	Date         time.Time
	Week         int
	Team         string
	Opponent     string
	IsHome       bool
	IsLightNight bool
}

// LightNightMethod selects how a calendar day qualifies as a light night.
type LightNightMethod string

const (
	// LightNightByGamesThreshold flags days with at most MaxGames games.
	LightNightByGamesThreshold LightNightMethod = "by_games_threshold"
	// LightNightByFractionOfTeams flags days where fewer than
	// Fraction * (teamCount / 2) games are scheduled.
	LightNightByFractionOfTeams LightNightMethod = "by_fraction_of_teams"
)

// NormalizeOptions configures schedule normalization.
type NormalizeOptions struct {
	WeekStartDay time.Weekday
	Method       LightNightMethod
	MaxGames     int
	Fraction     float64
	Resolver     *teamcode.Resolver
}

// Normalize turns raw games into per-team matchup rows: team codes resolved,
// week numbers derived when absent, and light-night flags computed per
// calendar day. An unknown light-night method is a configuration error.
func Normalize(games []GameRow, opts NormalizeOptions) ([]MatchupRow, error) {
	if opts.Method != LightNightByGamesThreshold && opts.Method != LightNightByFractionOfTeams {
		return nil, fmt.Errorf("unknown light-night method %q", opts.Method)
	}
	if opts.Resolver == nil {
		opts.Resolver = teamcode.NewResolver(teamcode.DefaultReference())
	}
	if len(games) == 0 {
		return nil, nil
	}

	weeks := weekNumbers(games, opts.WeekStartDay)

	// Count distinct games per calendar day before doubling into matchups.
	gamesPerDay := make(map[time.Time]int, len(games))
	teams := make(map[string]struct{})
	for _, g := range games {
		gamesPerDay[g.Date]++
		teams[opts.Resolver.Resolve(g.Home)] = struct{}{}
		teams[opts.Resolver.Resolve(g.Away)] = struct{}{}
	}

	light := make(map[time.Time]bool, len(gamesPerDay))
	for day, count := range gamesPerDay {
		switch opts.Method {
		case LightNightByGamesThreshold:
			light[day] = count <= opts.MaxGames
		case LightNightByFractionOfTeams:
			light[day] = float64(count) < opts.Fraction*float64(len(teams))/2
		}
	}

	out := make([]MatchupRow, 0, 2*len(games))
	for i, g := range games {
		home := opts.Resolver.Resolve(g.Home)
		away := opts.Resolver.Resolve(g.Away)
		week := weeks[i]
		out = append(out,
			MatchupRow{Date: g.Date, Week: week, Team: home, Opponent: away, IsHome: true, IsLightNight: light[g.Date]},
			MatchupRow{Date: g.Date, Week: week, Team: away, Opponent: home, IsHome: false, IsLightNight: light[g.Date]},
		)
	}
	return out, nil
}

// weekNumbers returns the week label per game. Labels from the source are
// kept when any game carries one; otherwise dates are binned into weekly
// buckets anchored to startDay and numbered 1..N in chronological order,
// monotonic across the whole input range.
func weekNumbers(games []GameRow, startDay time.Weekday) []int {
	hasWeeks := false
	for _, g := range games {
		if g.Week > 0 {
			hasWeeks = true
			break
		}
	}
	if hasWeeks {
		out := make([]int, len(games))
		for i, g := range games {
			out[i] = g.Week
		}
		return out
	}

	starts := make(map[time.Time]struct{}, len(games))
	for _, g := range games {
		starts[weekStart(g.Date, startDay)] = struct{}{}
	}
	ordered := make([]time.Time, 0, len(starts))
	for s := range starts {
		ordered = append(ordered, s)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Before(ordered[j]) })

	index := make(map[time.Time]int, len(ordered))
	for i, s := range ordered {
		index[s] = i + 1
	}

	out := make([]int, len(games))
	for i, g := range games {
		out[i] = index[weekStart(g.Date, startDay)]
	}
	return out
}

// weekStart returns the most recent startDay on or before d.
func weekStart(d time.Time, startDay time.Weekday) time.Time {
	offset := (int(d.Weekday()) - int(startDay) + 7) % 7
	return d.AddDate(0, 0, -offset)
}
