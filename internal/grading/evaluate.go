package grading

import "github.com/pavelanni/gradesheet/internal/model"

// Evaluate grades every student record against key, preserving input order.
// Records are read only; missing fields default to an empty answer or model.NotAvailable.
func Evaluate(students []model.StudentRecord, key model.AnswerKey) []model.StudentResult {
	results := make([]model.StudentResult, 0, len(students))
	for _, rec := range students {
		results = append(results, EvaluateOne(rec, key))
	}
	return results
}

// EvaluateOne grades a single student record.
func EvaluateOne(rec model.StudentRecord, key model.AnswerKey) model.StudentResult {
	res := model.StudentResult{
		Name:         rec.Info(model.FieldName),
		Timestamp:    rec.Info(model.FieldTimestamp),
		UniversityID: rec.Info(model.FieldUniversityID),
		Email:        rec.Info(model.FieldEmail),
	}
	for i := range model.NumQuestions {
		answer := rec.Answer(i + 1)
		correct := answer == key[i]
		if correct {
			res.Score++
		}
		res.Answers[i] = answer
		res.Evaluation[i] = model.QuestionEvaluation{
			Question:      i + 1,
			StudentAnswer: answer,
			CorrectAnswer: key[i],
			Correct:       correct,
		}
	}
	res.Percentage = Percentage(res.Score, model.NumQuestions)
	res.Grade = Classify(res.Percentage)
	return res
}
