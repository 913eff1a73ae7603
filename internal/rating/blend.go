package rating

import "math"

// Blend linearly fades a team's score from the prior season's value at week
// 1 to the pure current-season value by the final week. Callers with no
// prior score for a team should pass prior == current, which degenerates the
// blend to the current value.
func Blend(current, prior int, week, totalWeeks int) int {
	span := totalWeeks - 1
	if span < 1 {
		span = 1
	}
	wPrior := clamp(1-float64(week-1)/float64(span), 0, 1)
	wCurrent := 1 - wPrior
	return int(math.Round(wPrior*float64(prior) + wCurrent*float64(current)))
}
