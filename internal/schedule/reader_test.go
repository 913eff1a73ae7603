package schedule

import (
	"strings"
	"testing"
	"time"
)

func TestParseGames(t *testing.T) {
	csv := `Date,Home,Away,Week
2025-10-07,Boston,Toronto,1
2025-10-08,Vegas,Seattle,1
`
	games, err := ParseGames(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ParseGames() error = %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("len(games) = %d, want 2", len(games))
	}

	g := games[0]
	if !g.Date.Equal(day(2025, time.October, 7)) {
		t.Errorf("Date = %v, want 2025-10-07", g.Date)
	}
	if g.Home != "Boston" || g.Away != "Toronto" || g.Week != 1 {
		t.Errorf("game = %+v, want Boston/Toronto week 1", g)
	}
}

func TestParseGamesHeaderAliases(t *testing.T) {
	csv := `game_date,home_team,away_team
10/7/2025,Boston,Toronto
`
	games, err := ParseGames(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ParseGames() error = %v", err)
	}
	if len(games) != 1 {
		t.Fatalf("len(games) = %d, want 1", len(games))
	}
	if !games[0].Date.Equal(day(2025, time.October, 7)) {
		t.Errorf("Date = %v, want 2025-10-07", games[0].Date)
	}
	if games[0].Week != 0 {
		t.Errorf("Week = %d, want 0 when the column is absent", games[0].Week)
	}
}

func TestParseGamesTruncatesTimestamps(t *testing.T) {
	csv := `Date,Home,Away
2025-10-07 19:30:00,Boston,Toronto
`
	games, err := ParseGames(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ParseGames() error = %v", err)
	}
	if !games[0].Date.Equal(day(2025, time.October, 7)) {
		t.Errorf("Date = %v, want midnight UTC", games[0].Date)
	}
}

func TestParseGamesMissingColumns(t *testing.T) {
	csv := `Date,Home
2025-10-07,Boston
`
	if _, err := ParseGames(strings.NewReader(csv)); err == nil {
		t.Fatal("ParseGames() without away column succeeded, want error")
	}
}

func TestParseGamesBadDate(t *testing.T) {
	csv := `Date,Home,Away
sometime,Boston,Toronto
`
	if _, err := ParseGames(strings.NewReader(csv)); err == nil {
		t.Fatal("ParseGames() with unparseable date succeeded, want error")
	}
}
