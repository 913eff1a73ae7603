package lookup

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/soluk/zamboni/internal/rating"
)

// nstDotted maps canonical codes to the dotted convention used by the stats
// site, so the team-defense lookup keys match tables pasted from there.
var nstDotted = map[string]string{
	"LAK": "L.A",
	"TBL": "T.B",
	"SJS": "S.J",
	"NJD": "N.J",
}

// WriteLookupCSV writes the per-team-week lookup table consumed by the
// spreadsheet's Power Query import.
func WriteLookupCSV(path string, rows []TeamWeekRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating lookup csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"TM", "Week", "Games", "LiteNite", "Opponents", "SOS", "MatchUp", "B2B", "Away", "GamesRestOfWeek", "GamesROS", "Key"}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing lookup header: %w", err)
	}
	for _, r := range rows {
		rec := []string{
			r.Team,
			strconv.Itoa(r.Week),
			strconv.Itoa(r.Games),
			strconv.Itoa(r.LightNights),
			strings.Join(r.Opponents, ", "),
			r.SOSPercent(),
			r.MatchupTier,
			strconv.Itoa(r.BackToBacks),
			strconv.Itoa(r.AwayGames),
			strconv.Itoa(r.GamesRestOfWeek),
			strconv.Itoa(r.GamesROS),
			r.Key(),
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("writing lookup row %s: %w", r.Key(), err)
		}
	}
	w.Flush()
	return w.Error()
}

// WriteTeamDefenseCSV writes the secondary Team,Score,Tier lookup for goalie
// evaluation. Tiers use the goalie label set and team codes use the dotted
// convention.
func WriteTeamDefenseCSV(path string, scores []rating.DefenseScore) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating team defense csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Team", "Score", "Tier"}); err != nil {
		return fmt.Errorf("writing team defense header: %w", err)
	}
	for _, s := range scores {
		team := s.Team
		if dotted, ok := nstDotted[team]; ok {
			team = dotted
		}
		rec := []string{team, strconv.Itoa(s.Score), rating.GoalieTier(s.Score)}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("writing team defense row %s: %w", s.Team, err)
		}
	}
	w.Flush()
	return w.Error()
}
