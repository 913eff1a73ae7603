package rating

import "testing"

func TestCombineUnionUniverse(t *testing.T) {
	situational := map[Situation][]EaseScore{
		SituationSVA: {{Team: "BOS", Score: 80}, {Team: "TOR", Score: 40}},
		SituationPP:  {{Team: "BOS", Score: 70}, {Team: "SEA", Score: 60}},
		SituationPK:  {{Team: "TOR", Score: 30}},
	}

	out := Combine(situational, DefaultSituationWeights())
	if len(out) != 3 {
		t.Fatalf("len(out) = %d, want union of 3 teams", len(out))
	}

	seen := map[string]bool{}
	for _, d := range out {
		seen[d.Team] = true
		if d.Score < 0 || d.Score > 100 {
			t.Errorf("%s score = %d, out of [0,100]", d.Team, d.Score)
		}
		if d.Tier != SkaterTier(d.Score) {
			t.Errorf("%s tier = %q, want %q", d.Team, d.Tier, SkaterTier(d.Score))
		}
	}
	for _, team := range []string{"BOS", "TOR", "SEA"} {
		if !seen[team] {
			t.Errorf("team %s missing from combined output", team)
		}
	}
}

func TestCombineFillsMissingWithSituationMean(t *testing.T) {
	// SEA is absent from SVA; its SVA slot takes the SVA mean (60), not the
	// neutral constant.
	situational := map[Situation][]EaseScore{
		SituationSVA: {{Team: "BOS", Score: 80}, {Team: "TOR", Score: 40}},
		SituationPP:  {{Team: "BOS", Score: 50}, {Team: "TOR", Score: 50}, {Team: "SEA", Score: 50}},
		SituationPK:  {{Team: "BOS", Score: 50}, {Team: "TOR", Score: 50}, {Team: "SEA", Score: 50}},
	}

	out := Combine(situational, SituationWeights{SVA: 1, PP: 0, PK: 0})
	byTeam := map[string]int{}
	for _, d := range out {
		byTeam[d.Team] = d.Score
	}

	if byTeam["SEA"] != 60 {
		t.Errorf("SEA score = %d, want situation mean 60", byTeam["SEA"])
	}
}

func TestCombineEmptySituationFillsNeutral(t *testing.T) {
	situational := map[Situation][]EaseScore{
		SituationSVA: {{Team: "BOS", Score: 80}},
		SituationPP:  {},
		SituationPK:  {},
	}

	out := Combine(situational, SituationWeights{SVA: 0, PP: 1, PK: 0})
	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1", len(out))
	}
	if out[0].Score != int(NeutralScore) {
		t.Errorf("score = %d, want neutral %v for an empty situation", out[0].Score, NeutralScore)
	}
}

func TestCombineWeightsAreScaleInvariant(t *testing.T) {
	situational := map[Situation][]EaseScore{
		SituationSVA: {{Team: "BOS", Score: 80}, {Team: "TOR", Score: 40}},
		SituationPP:  {{Team: "BOS", Score: 30}, {Team: "TOR", Score: 60}},
		SituationPK:  {{Team: "BOS", Score: 50}, {Team: "TOR", Score: 50}},
	}

	a := Combine(situational, SituationWeights{SVA: 0.75, PP: 0.10, PK: 0.10})
	b := Combine(situational, SituationWeights{SVA: 7.5, PP: 1.0, PK: 1.0})

	for i := range a {
		if a[i] != b[i] {
			t.Errorf("scaled weights changed output: %+v vs %+v", a[i], b[i])
		}
	}
}

func TestCombineInvalidWeightsFallBackToDefaults(t *testing.T) {
	situational := map[Situation][]EaseScore{
		SituationSVA: {{Team: "BOS", Score: 80}, {Team: "TOR", Score: 40}},
		SituationPP:  {{Team: "BOS", Score: 30}, {Team: "TOR", Score: 60}},
		SituationPK:  {{Team: "BOS", Score: 50}, {Team: "TOR", Score: 50}},
	}

	got := Combine(situational, SituationWeights{})
	want := Combine(situational, DefaultSituationWeights())

	for i := range got {
		if got[i] != want[i] {
			t.Errorf("zero weights output %+v, want default-weight output %+v", got[i], want[i])
		}
	}
}

func TestCombineRemainderIsIgnored(t *testing.T) {
	situational := map[Situation][]EaseScore{
		SituationSVA: {{Team: "BOS", Score: 80}, {Team: "TOR", Score: 40}},
		SituationPP:  {{Team: "BOS", Score: 30}, {Team: "TOR", Score: 60}},
		SituationPK:  {{Team: "BOS", Score: 50}, {Team: "TOR", Score: 50}},
	}

	a := Combine(situational, SituationWeights{SVA: 0.75, PP: 0.10, PK: 0.10, Remainder: 0.05})
	b := Combine(situational, SituationWeights{SVA: 0.75, PP: 0.10, PK: 0.10, Remainder: 0.9})

	for i := range a {
		if a[i] != b[i] {
			t.Errorf("remainder weight affected output: %+v vs %+v", a[i], b[i])
		}
	}
}

func TestSkaterTier(t *testing.T) {
	tests := []struct {
		score int
		want  Tier
	}{
		{0, TierExcellent},
		{30, TierExcellent},
		{31, TierGood},
		{50, TierGood},
		{51, TierAverage},
		{70, TierAverage},
		{71, TierDifficult},
		{100, TierDifficult},
	}
	for _, tt := range tests {
		if got := SkaterTier(tt.score); got != tt.want {
			t.Errorf("SkaterTier(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestGoalieTier(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{10, "Weak"},
		{25, "Weak"},
		{26, "Meh"},
		{50, "Meh"},
		{51, "Good"},
		{75, "Good"},
		{76, "Excellent"},
	}
	for _, tt := range tests {
		if got := GoalieTier(tt.score); got != tt.want {
			t.Errorf("GoalieTier(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}
