package grading

import "github.com/pavelanni/gradesheet/internal/model"

// Summarize aggregates a result set. Callers are expected to pass at least one result;
// an empty slice yields the zero summary.
func Summarize(results []model.StudentResult) model.EvaluationSummary {
	s := model.EvaluationSummary{TotalStudents: len(results)}
	if s.TotalStudents == 0 {
		return s
	}
	for _, r := range results {
		s.TotalScore += r.Score
		if r.Passed() {
			s.PassCount++
		}
	}
	n := float64(s.TotalStudents)
	s.AverageScore = roundTenth(float64(s.TotalScore) / n)
	s.AveragePercentage = roundTenth(float64(s.TotalScore) / (n * model.NumQuestions) * 100)
	return s
}
