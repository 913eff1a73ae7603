package teamcode

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Strategy identifies which lookup step produced a code, so callers can
// audit resolutions that fell through to the truncation heuristic.
type Strategy string

const (
	StrategyExact    Strategy = "exact"
	StrategyAlias    Strategy = "alias"
	StrategyTruncate Strategy = "truncate"
)

// aliases covers short and dotted forms that the reference table does not
// carry. Keys are normalized (upper-case, letters only), so "L.A", "L.A."
// and "la" all land on the same entry.
var aliases = map[string]string{
	"NJ":  "NJD",
	"LA":  "LAK",
	"SJ":  "SJS",
	"TB":  "TBL",
	"NYISLANDERS": "NYI",
	"NYRANGERS":   "NYR",
	"MON":         "MTL",
	"WAS":         "WSH",
	"VGS":         "VGK",
}

// Resolver maps free-text team names, cities, and abbreviations to canonical
// 3-letter codes. Construction builds the lookup tables once; Resolve is a
// pure function after that and is safe for concurrent use.
type Resolver struct {
	exact map[string]string
	codes map[string]struct{}
}

// NewResolver builds a resolver from a city/club-name -> code reference
// table. Every code in the reference is also mapped to itself so inputs that
// already carry a canonical code resolve exactly.
func NewResolver(reference map[string]string) *Resolver {
	r := &Resolver{
		exact: make(map[string]string, 2*len(reference)),
		codes: make(map[string]struct{}, len(reference)),
	}
	for name, code := range reference {
		code = strings.ToUpper(strings.TrimSpace(code))
		r.exact[Normalize(name)] = code
		r.exact[Normalize(code)] = code
		r.codes[code] = struct{}{}
	}
	return r
}

// Resolve returns the canonical 3-letter code for raw. It never fails: if no
// reference or alias entry matches, the first three letters of the
// normalized input are used (padded with X when shorter).
func (r *Resolver) Resolve(raw string) string {
	code, _ := r.ResolveWithStrategy(raw)
	return code
}

// ResolveWithStrategy resolves raw and reports which strategy fired. The
// chain is ordered: exact reference match, hard-coded alias, truncation.
func (r *Resolver) ResolveWithStrategy(raw string) (string, Strategy) {
	n := Normalize(raw)
	if code, ok := r.exact[n]; ok {
		return code, StrategyExact
	}
	if code, ok := aliases[n]; ok {
		return code, StrategyAlias
	}
	return truncate(n), StrategyTruncate
}

// Known reports whether code is one of the reference codes.
func (r *Resolver) Known(code string) bool {
	_, ok := r.codes[code]
	return ok
}

// Codes returns the sorted canonical code set.
func (r *Resolver) Codes() []string {
	out := make([]string, 0, len(r.codes))
	for c := range r.codes {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Normalize upper-cases, strips diacritics, and removes every non-letter
// character. "Montréal" and "MONTREAL" normalize identically.
func Normalize(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		if unicode.IsLetter(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}

func truncate(normalized string) string {
	letters := []rune(normalized)
	if len(letters) > 3 {
		letters = letters[:3]
	}
	for len(letters) < 3 {
		letters = append(letters, 'X')
	}
	return string(letters)
}

// LoadReference reads a City,TM mapping CSV (Input C). The header row is
// optional and detected by name.
func LoadReference(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening team reference: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading team reference: %w", err)
	}

	out := make(map[string]string, len(records))
	for i, rec := range records {
		if len(rec) < 2 {
			continue
		}
		name, code := strings.TrimSpace(rec[0]), strings.TrimSpace(rec[1])
		if i == 0 && strings.EqualFold(name, "city") {
			continue
		}
		if name == "" || code == "" {
			continue
		}
		out[name] = code
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("team reference %s contained no usable rows", path)
	}
	return out, nil
}

// DefaultReference is the built-in city -> code table used when no reference
// file is configured or loading fails.
func DefaultReference() map[string]string {
	return map[string]string{
		"Anaheim":            "ANA",
		"Boston":             "BOS",
		"Buffalo":            "BUF",
		"Calgary":            "CGY",
		"Carolina":           "CAR",
		"Chicago":            "CHI",
		"Colorado":           "COL",
		"Columbus":           "CBJ",
		"Dallas":             "DAL",
		"Detroit":            "DET",
		"Edmonton":           "EDM",
		"Florida":            "FLA",
		"Los Angeles":        "LAK",
		"Minnesota":          "MIN",
		"Montreal":           "MTL",
		"Nashville":          "NSH",
		"New Jersey":         "NJD",
		"New York Islanders": "NYI",
		"New York Rangers":   "NYR",
		"Ottawa":             "OTT",
		"Philadelphia":       "PHI",
		"Pittsburgh":         "PIT",
		"San Jose":           "SJS",
		"Seattle":            "SEA",
		"St. Louis":          "STL",
		"Tampa Bay":          "TBL",
		"Toronto":            "TOR",
		"Utah":               "UTA",
		"Vancouver":          "VAN",
		"Vegas":              "VGK",
		"Washington":         "WSH",
		"Winnipeg":           "WPG",
	}
}
