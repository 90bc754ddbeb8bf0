package instrument

import "math"

// MatchRate is the algebra used to score how well a Descriptor matches a
// cached Instrument. NoMatch is absorbing (NoMatch + x == NoMatch),
// Unmatchable is neutral (Unmatchable + x == x), and Match summation
// increases monotonically, used to rank competing instruments.
type MatchRate int32

const (
	NoMatch     MatchRate = -1
	Unmatchable MatchRate = 0
	Match       MatchRate = 1
)

// Add implements the match-rate summation algebra.
func (r MatchRate) Add(other MatchRate) MatchRate {
	if r == NoMatch || other == NoMatch {
		return NoMatch
	}
	sum := int64(r) + int64(other)
	if sum > math.MaxInt32 {
		return MatchRate(math.MaxInt32)
	}
	return MatchRate(sum)
}

// sum folds Add across a slice of rates, starting from Unmatchable (the
// additive identity for everything but NoMatch).
func sum(rates ...MatchRate) MatchRate {
	total := Unmatchable
	for _, r := range rates {
		total = total.Add(r)
	}
	return total
}
