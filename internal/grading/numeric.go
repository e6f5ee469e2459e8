package grading

import (
	"math"
	"strconv"
	"strings"
)

// numericStrategy accepts an exact match, or, when both sides parse as
// plain numbers, a value within tol of the correct answer. The bound is
// inclusive: decimal inputs like 3.15 are not exact in binary, so the
// comparison allows floatSlack on top of tol.
//
//	correct "3.14", tol 0.01: "3.141" and "3.15" pass, "3.151" does not
type numericStrategy struct{ tol float64 }

const floatSlack = 1e-9

func (s numericStrategy) Score(q Q, answer string) Result {
	res := exactStrategy{}.Score(q, answer)
	if res.IsCorrect {
		return res
	}
	rv, rOK := parseFloatLoose(answer)
	tv, tOK := parseFloatLoose(q.CorrectAnswer)
	if !rOK || !tOK {
		return res
	}
	if math.Abs(rv-tv) <= s.tol+floatSlack {
		res.IsCorrect = true
		res.MarksAwarded = q.Marks
	}
	return res
}

func parseFloatLoose(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
