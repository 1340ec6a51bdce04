// Package grading scores multiple-choice answer sheets against an answer key.
package grading

import "math"

// band is an inclusive lower bound and the letter awarded from it upward.
type band struct {
	min   int
	grade string
}

var bands = []band{
	{90, "A+"},
	{85, "A"},
	{80, "A-"},
	{75, "B+"},
	{70, "B"},
	{65, "B-"},
	{60, "C+"},
	{55, "C"},
	{50, "C-"},
	{45, "D+"},
	{40, "D"},
}

// Classify maps a percentage to its letter grade. The highest matching band wins.
func Classify(percentage int) string {
	for _, b := range bands {
		if percentage >= b.min {
			return b.grade
		}
	}
	return "F"
}

// Percentage converts a raw score out of total questions to a whole percentage,
// rounding halves up.
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(total) * 100))
}

// roundTenth rounds to one decimal place.
func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
