package rating

import "testing"

func TestBlendEndpoints(t *testing.T) {
	// Week 1 is all prior; the final week is all current.
	if got := Blend(70, 30, 1, 25); got != 30 {
		t.Errorf("Blend(70, 30, 1, 25) = %d, want 30", got)
	}
	if got := Blend(70, 30, 25, 25); got != 70 {
		t.Errorf("Blend(70, 30, 25, 25) = %d, want 70", got)
	}
}

func TestBlendMovesTowardCurrent(t *testing.T) {
	prev := Blend(70, 30, 1, 25)
	for week := 2; week <= 25; week++ {
		got := Blend(70, 30, week, 25)
		if got < prev {
			t.Errorf("Blend at week %d = %d, regressed below week %d's %d", week, got, week-1, prev)
		}
		prev = got
	}
}

func TestBlendMidpoint(t *testing.T) {
	// Week 13 of 25: wPrior = 1 - 12/24 = 0.5.
	if got := Blend(70, 30, 13, 25); got != 50 {
		t.Errorf("Blend(70, 30, 13, 25) = %d, want 50", got)
	}
}

func TestBlendClampsWeekRange(t *testing.T) {
	if got := Blend(70, 30, 0, 25); got != 30 {
		t.Errorf("Blend with week 0 = %d, want prior 30", got)
	}
	if got := Blend(70, 30, 40, 25); got != 70 {
		t.Errorf("Blend past the final week = %d, want current 70", got)
	}
}

func TestBlendSingleWeekSeason(t *testing.T) {
	// A degenerate one-week scale still starts fully on the prior.
	if got := Blend(70, 30, 1, 1); got != 30 {
		t.Errorf("Blend(70, 30, 1, 1) = %d, want prior 30", got)
	}
}
