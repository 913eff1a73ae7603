package lookup

import (
	"fmt"
	"log"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/soluk/zamboni/internal/rating"
	"github.com/soluk/zamboni/internal/schedule"
)

// SeasonGames is the fixed regular-season length used for the
// games-remaining projection.
const SeasonGames = 82

// TeamWeekRow is one row of the final lookup table: a team's week summarized
// with schedule-difficulty and workload metrics.
type TeamWeekRow struct {
	Team            string
	Week            int
	Games           int
	LightNights     int
	Opponents       []string
	SOS             int // mean opponent score, rounded
	MatchupTier     string
	BackToBacks     int
	AwayGames       int
	GamesRestOfWeek int
	GamesROS        int
}

// Key is the composite lookup key, unique per row.
func (r TeamWeekRow) Key() string {
	return r.Team + strconv.Itoa(r.Week)
}

// SOSPercent renders the strength of schedule as an integer percent string.
func (r TeamWeekRow) SOSPercent() string {
	return strconv.Itoa(r.SOS) + "%"
}

// BlendContext enables week-indexed blending of prior-season scores into the
// join. Teams absent from Prior blend against their current score.
type BlendContext struct {
	Prior      map[string]int
	TotalWeeks int
}

// QualityReport collects the data-quality conditions of one aggregation so a
// run can be audited. Join misses are recorded individually.
type QualityReport struct {
	JoinMisses  []string `json:"join_misses,omitempty"`
	ConstantSOS bool     `json:"constant_sos"`
}

// AggregateOptions configures aggregation. Today is the reference date for
// current-week detection and must be injected; aggregation never reads the
// wall clock.
type AggregateOptions struct {
	Today time.Time
	Blend *BlendContext
}

type joinedMatchup struct {
	schedule.MatchupRow
	score int
}

// Aggregate joins matchups to opponent defense scores and groups them into
// per-team-week lookup rows. Unmatched opponents score neutral and are
// reported, never dropped.
func Aggregate(matchups []schedule.MatchupRow, defense []rating.DefenseScore, opts AggregateOptions) ([]TeamWeekRow, *QualityReport, error) {
	report := &QualityReport{}
	if len(matchups) == 0 {
		return nil, report, nil
	}

	scoreByTeam := make(map[string]int, len(defense))
	for _, d := range defense {
		scoreByTeam[d.Team] = d.Score
	}

	joined := make([]joinedMatchup, 0, len(matchups))
	for _, m := range matchups {
		score, ok := scoreByTeam[m.Opponent]
		if !ok {
			score = int(rating.NeutralScore)
			log.Printf("⚠️  no defense score for opponent %s (%s week %d); using neutral %d", m.Opponent, m.Team, m.Week, score)
			report.JoinMisses = append(report.JoinMisses, fmt.Sprintf("%s@%s week %d", m.Opponent, m.Team, m.Week))
		}
		if opts.Blend != nil {
			prior, hasPrior := opts.Blend.Prior[m.Opponent]
			if !hasPrior {
				prior = score
			}
			score = rating.Blend(score, prior, m.Week, opts.Blend.TotalWeeks)
		}
		joined = append(joined, joinedMatchup{MatchupRow: m, score: score})
	}

	byTeam := make(map[string][]joinedMatchup)
	for _, j := range joined {
		byTeam[j.Team] = append(byTeam[j.Team], j)
	}
	for team := range byTeam {
		rows := byTeam[team]
		sort.Slice(rows, func(i, k int) bool { return rows[i].Date.Before(rows[k].Date) })
		byTeam[team] = rows
	}

	currentWeek := currentWeek(joined, opts.Today)

	teams := make([]string, 0, len(byTeam))
	for t := range byTeam {
		teams = append(teams, t)
	}
	sort.Strings(teams)

	var out []TeamWeekRow
	for _, team := range teams {
		rows := byTeam[team]

		gameDates := make(map[time.Time]struct{}, len(rows))
		for _, r := range rows {
			gameDates[r.Date] = struct{}{}
		}

		weeks := make(map[int][]joinedMatchup)
		weekOrder := []int{}
		for _, r := range rows {
			if _, ok := weeks[r.Week]; !ok {
				weekOrder = append(weekOrder, r.Week)
			}
			weeks[r.Week] = append(weeks[r.Week], r)
		}
		sort.Ints(weekOrder)

		cumulative := 0
		for _, week := range weekOrder {
			group := weeks[week]
			cumulative += len(group)

			row := TeamWeekRow{Team: team, Week: week, Games: len(group)}

			scoreSum := 0
			scores := make([]string, 0, len(group))
			for _, m := range group {
				row.Opponents = append(row.Opponents, m.Opponent)
				scoreSum += m.score
				scores = append(scores, strconv.Itoa(m.score))
				if m.IsLightNight {
					row.LightNights++
				}
				if !m.IsHome {
					row.AwayGames++
				}
				// Back-to-back: a game on the adjacent calendar day in
				// either direction.
				if _, prev := gameDates[m.Date.AddDate(0, 0, -1)]; prev {
					row.BackToBacks++
				} else if _, next := gameDates[m.Date.AddDate(0, 0, 1)]; next {
					row.BackToBacks++
				}
			}

			row.SOS = int(math.Round(float64(scoreSum) / float64(len(group))))
			row.MatchupTier = fmt.Sprintf("%s [%s]", rating.SkaterTier(row.SOS), strings.Join(scores, ","))

			if week == currentWeek {
				for _, m := range group {
					if !m.Date.Before(opts.Today) {
						row.GamesRestOfWeek++
					}
				}
			}

			row.GamesROS = SeasonGames - cumulative
			if row.GamesROS < 0 {
				row.GamesROS = 0
			}

			out = append(out, row)
		}
	}

	checkConstantSOS(out, report)
	return out, report, nil
}

// currentWeek locates the week label of the earliest date on or after today
// (the mode when rows on that date disagree). With no future games the
// season is treated as complete and the maximum week is returned.
func currentWeek(joined []joinedMatchup, today time.Time) int {
	var earliest time.Time
	maxWeek := 0
	for _, j := range joined {
		if j.Week > maxWeek {
			maxWeek = j.Week
		}
		if j.Date.Before(today) {
			continue
		}
		if earliest.IsZero() || j.Date.Before(earliest) {
			earliest = j.Date
		}
	}
	if earliest.IsZero() {
		return maxWeek
	}

	counts := make(map[int]int)
	for _, j := range joined {
		if j.Date.Equal(earliest) {
			counts[j.Week]++
		}
	}
	best, bestCount := 0, 0
	for week, count := range counts {
		if count > bestCount || (count == bestCount && week < best) {
			best, bestCount = week, count
		}
	}
	return best
}

// checkConstantSOS flags a whole-output SOS with zero variance: a constant
// table almost always means the upstream scores never joined, and must not
// ship silently.
func checkConstantSOS(rows []TeamWeekRow, report *QualityReport) {
	if len(rows) == 0 {
		report.ConstantSOS = true
		return
	}
	first := rows[0].SOS
	for _, r := range rows[1:] {
		if r.SOS != first {
			return
		}
	}
	report.ConstantSOS = true
	log.Printf("⚠️  strength-of-schedule is constant (%d) across all %d rows; opponent scores likely failed to join", first, len(rows))
}
