package grading

import "strings"

// matches reports whether a submitted answer equals the stored correct
// answer after trimming surrounding whitespace, ignoring case. A blank
// submission never matches, even against a blank key.
func matches(submitted, correct string) bool {
	s := strings.TrimSpace(submitted)
	if s == "" {
		return false
	}
	return strings.EqualFold(s, strings.TrimSpace(correct))
}

// Answered reports whether a final answer counts as answered.
func Answered(answer string) bool {
	return strings.TrimSpace(answer) != ""
}
