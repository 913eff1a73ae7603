package nst

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/soluk/zamboni/internal/teamcode"
)

func tableHTML(headers []string, rows [][]string) string {
	var b strings.Builder
	b.WriteString("<html><body><table><thead><tr>")
	for _, h := range headers {
		fmt.Fprintf(&b, "<th>%s</th>", h)
	}
	b.WriteString("</tr></thead><tbody>")
	for _, row := range rows {
		b.WriteString("<tr>")
		for _, cell := range row {
			fmt.Fprintf(&b, "<td>%s</td>", cell)
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table></body></html>")
	return b.String()
}

func testResolver() *teamcode.Resolver {
	return teamcode.NewResolver(teamcode.DefaultReference())
}

func TestParseTeamTable(t *testing.T) {
	html := tableHTML(
		[]string{"Team", "GP", "xGA/60", "SCA/60", "HDCA/60", "GA/60", "SA/60"},
		[][]string{
			{"Boston", "82", "2.41", "24.3", "9.8", "2.61", "29.5"},
			{"Toronto", "82", "2.88", "27.1", "11.2", "3.02", "31.4"},
		},
	)

	stats, err := ParseTeamTable(html, testResolver())
	if err != nil {
		t.Fatalf("ParseTeamTable() error = %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("len(stats) = %d, want 2", len(stats))
	}

	bos := stats[0]
	if bos.Team != "BOS" {
		t.Errorf("Team = %q, want resolved code BOS", bos.Team)
	}
	if bos.XGA60 != 2.41 || bos.SCA60 != 24.3 || bos.HDCA60 != 9.8 || bos.GA60 != 2.61 || bos.SA60 != 29.5 {
		t.Errorf("stats = %+v", bos)
	}
	if !bos.Complete() {
		t.Error("row with all features should be complete")
	}
}

func TestParseTeamTableHeaderAliases(t *testing.T) {
	html := tableHTML(
		[]string{"Team", "xGA60", "SCA60", "HDCA60", "GA60", "SA60"},
		[][]string{{"Boston", "2.41", "24.3", "9.8", "2.61", "29.5"}},
	)

	stats, err := ParseTeamTable(html, testResolver())
	if err != nil {
		t.Fatalf("ParseTeamTable() error = %v", err)
	}
	if !stats[0].Complete() {
		t.Errorf("aliased headers not matched: %+v", stats[0])
	}
}

func TestParseTeamTableMissingColumnYieldsNaN(t *testing.T) {
	html := tableHTML(
		[]string{"Team", "xGA/60", "SCA/60", "HDCA/60", "GA/60"},
		[][]string{{"Boston", "2.41", "24.3", "9.8", "2.61"}},
	)

	stats, err := ParseTeamTable(html, testResolver())
	if err != nil {
		t.Fatalf("ParseTeamTable() error = %v", err)
	}
	if !math.IsNaN(stats[0].SA60) {
		t.Errorf("SA60 = %v, want NaN for a missing column", stats[0].SA60)
	}
	if stats[0].Complete() {
		t.Error("row missing a feature reported complete")
	}
}

func TestParseTeamTableUnparseableCellYieldsNaN(t *testing.T) {
	html := tableHTML(
		[]string{"Team", "xGA/60", "SCA/60", "HDCA/60", "GA/60", "SA/60"},
		[][]string{{"Boston", "-", "24.3", "9.8", "2.61", "29.5"}},
	)

	stats, err := ParseTeamTable(html, testResolver())
	if err != nil {
		t.Fatalf("ParseTeamTable() error = %v", err)
	}
	if !math.IsNaN(stats[0].XGA60) {
		t.Errorf("XGA60 = %v, want NaN for an unparseable cell", stats[0].XGA60)
	}
}

func TestParseTeamTableNoTeamColumn(t *testing.T) {
	html := tableHTML(
		[]string{"Franchise", "xGA/60"},
		[][]string{{"Boston", "2.41"}},
	)

	if _, err := ParseTeamTable(html, testResolver()); err == nil {
		t.Fatal("ParseTeamTable() without a Team column succeeded, want error")
	}
}

func TestParseTeamTableNoTable(t *testing.T) {
	if _, err := ParseTeamTable("<html><body><p>nope</p></body></html>", testResolver()); err == nil {
		t.Fatal("ParseTeamTable() without a table succeeded, want error")
	}
}

func TestParseTeamTableDottedNames(t *testing.T) {
	html := tableHTML(
		[]string{"Team", "xGA/60", "SCA/60", "HDCA/60", "GA/60", "SA/60"},
		[][]string{{"T.B", "2.41", "24.3", "9.8", "2.61", "29.5"}},
	)

	stats, err := ParseTeamTable(html, testResolver())
	if err != nil {
		t.Fatalf("ParseTeamTable() error = %v", err)
	}
	if stats[0].Team != "TBL" {
		t.Errorf("Team = %q, want TBL from dotted site code", stats[0].Team)
	}
}
