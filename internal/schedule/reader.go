package schedule

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// GameRow is one scheduled game as read from the source table. Week is 0
// when the source carries no week column.
type GameRow struct {
	Date time.Time
	Week int
	Home string
	Away string
}

// Column aliases are matched case-insensitively against the header row.
var columnAliases = map[string][]string{
	"date": {"date", "game_date"},
	"home": {"home", "home_team", "h"},
	"away": {"away", "away_team", "a"},
	"week": {"week", "wk"},
}

var dateLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	"01/02/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ReadGames reads the schedule CSV (Input A) into GameRows. The date, home,
// and away columns are required; week is optional.
func ReadGames(path string) ([]GameRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening schedule: %w", err)
	}
	defer f.Close()
	return ParseGames(f)
}

// ParseGames parses schedule rows from r. The first record is the header.
func ParseGames(r io.Reader) ([]GameRow, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading schedule: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("schedule has no data rows")
	}

	dateCol := findColumn(records[0], columnAliases["date"])
	homeCol := findColumn(records[0], columnAliases["home"])
	awayCol := findColumn(records[0], columnAliases["away"])
	weekCol := findColumn(records[0], columnAliases["week"]) // optional

	if dateCol < 0 || homeCol < 0 || awayCol < 0 {
		return nil, fmt.Errorf("schedule missing required columns (have %v)", records[0])
	}

	games := make([]GameRow, 0, len(records)-1)
	for i, rec := range records[1:] {
		if len(rec) <= dateCol || len(rec) <= homeCol || len(rec) <= awayCol {
			continue
		}
		date, err := parseDate(rec[dateCol])
		if err != nil {
			return nil, fmt.Errorf("schedule row %d: %w", i+2, err)
		}
		g := GameRow{
			Date: date,
			Home: strings.TrimSpace(rec[homeCol]),
			Away: strings.TrimSpace(rec[awayCol]),
		}
		if weekCol >= 0 && len(rec) > weekCol {
			if wk, err := strconv.Atoi(strings.TrimSpace(rec[weekCol])); err == nil {
				g.Week = wk
			}
		}
		games = append(games, g)
	}
	return games, nil
}

func findColumn(header []string, aliases []string) int {
	for i, col := range header {
		col = strings.ToLower(strings.TrimSpace(col))
		for _, a := range aliases {
			if col == a {
				return i
			}
		}
	}
	return -1
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			// Dates compare by calendar day only.
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}
