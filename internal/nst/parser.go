package nst

import (
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/soluk/zamboni/internal/rating"
	"github.com/soluk/zamboni/internal/teamcode"
)

// featureAliases maps each internal feature name to the header spellings the
// site has used over time. Matching is whitespace-trimmed and exact.
var featureAliases = map[string][]string{
	"xga60":  {"xGA/60", "xGA60", "xGA"},
	"sca60":  {"SCA/60", "SCA60", "SCA"},
	"hdca60": {"HDCA/60", "HDCA60", "HDCA"},
	"ga60":   {"GA/60", "GA60", "GA"},
	"sa60":   {"SA/60", "SA60", "SA"},
}

// ParseTeamTable extracts per-team against-rates from a team-table HTML
// document. Rows with unparseable or absent feature cells carry NaN for
// those features; the scoring stage decides whether such rows survive.
func ParseTeamTable(html string, resolver *teamcode.Resolver) ([]rating.TeamStats, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing table HTML: %w", err)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("no table found in document")
	}

	// Header row: prefer thead, fall back to the first row.
	headers := []string{}
	headerRow := table.Find("thead tr").First()
	if headerRow.Length() == 0 {
		headerRow = table.Find("tr").First()
	}
	headerRow.Find("th, td").Each(func(_ int, s *goquery.Selection) {
		headers = append(headers, strings.TrimSpace(s.Text()))
	})

	teamCol := -1
	featureCols := map[string]int{}
	for i, h := range headers {
		if strings.EqualFold(h, "team") {
			teamCol = i
			continue
		}
		for feature, names := range featureAliases {
			if _, taken := featureCols[feature]; taken {
				continue
			}
			for _, name := range names {
				if h == name {
					featureCols[feature] = i
				}
			}
		}
	}
	if teamCol < 0 {
		return nil, fmt.Errorf("table has no Team column (headers: %v)", headers)
	}
	for feature := range featureAliases {
		if _, ok := featureCols[feature]; !ok {
			log.Printf("⚠️  stat table missing column for %s; affected rows will be incomplete", feature)
		}
	}

	var out []rating.TeamStats
	table.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() <= teamCol {
			return
		}
		name := strings.TrimSpace(cells.Eq(teamCol).Text())
		if name == "" {
			return
		}
		stats := rating.TeamStats{
			Team:   resolver.Resolve(name),
			XGA60:  cellValue(cells, featureCols, "xga60"),
			SCA60:  cellValue(cells, featureCols, "sca60"),
			HDCA60: cellValue(cells, featureCols, "hdca60"),
			GA60:   cellValue(cells, featureCols, "ga60"),
			SA60:   cellValue(cells, featureCols, "sa60"),
		}
		out = append(out, stats)
	})

	return out, nil
}

func cellValue(cells *goquery.Selection, cols map[string]int, feature string) float64 {
	idx, ok := cols[feature]
	if !ok || cells.Length() <= idx {
		return math.NaN()
	}
	text := strings.TrimSpace(cells.Eq(idx).Text())
	text = strings.TrimSuffix(text, "%")
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
