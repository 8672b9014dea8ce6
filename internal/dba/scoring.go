package dba

// Fantasy-point multipliers and bonuses. A double-double is two counting
// categories at 10 or more, a triple-double is three.
const (
	pointsWeight   = 1.0
	reboundsWeight = 1.2
	assistsWeight  = 1.5
	stealsWeight   = 2.0
	blocksWeight   = 2.0
	threesWeight   = 0.5

	doubleDoubleBonus = 5.0
	tripleDoubleBonus = 10.0
)

// FantasyPoints scores a single-game stat line. The triple-double bonus
// stacks on top of the double-double bonus.
func FantasyPoints(s StatLine) float64 {
	total := s.Points*pointsWeight +
		s.Rebounds*reboundsWeight +
		s.Assists*assistsWeight +
		s.Steals*stealsWeight +
		s.Blocks*blocksWeight +
		s.ThreePM*threesWeight

	doubles := 0
	for _, v := range []float64{s.Points, s.Rebounds, s.Assists, s.Steals, s.Blocks} {
		if v >= 10 {
			doubles++
		}
	}
	if doubles >= 2 {
		total += doubleDoubleBonus
	}
	if doubles >= 3 {
		total += tripleDoubleBonus
	}
	return total
}
