// Package report projects graded results into a display-ready view.
package report

import (
	"fmt"
	"strconv"

	"github.com/pavelanni/gradesheet/internal/model"
)

// Placeholder is shown in place of a blank student answer.
const Placeholder = "-"

// Card is one summary statistic.
type Card struct {
	LabelID string // i18n message ID of the label
	Label   string // English label for plain-text output
	Value   string
	Tone    string // blue, green, yellow, purple
}

// Cell is one question of one student.
type Cell struct {
	Text    string
	Title   string
	Correct bool
}

// Row is one student line of the results table.
type Row struct {
	Name       string
	Timestamp  string
	Score      string
	Percentage string
	Grade      string
	Passed     bool
	Cells      []Cell
}

// View is everything needed to display one evaluation run.
type View struct {
	Cards     []Card
	Questions []string
	Rows      []Row
}

// Build formats results and summary for display. It does no grading of its own.
func Build(results []model.StudentResult, summary model.EvaluationSummary) View {
	v := View{
		Cards: []Card{
			{LabelID: "TotalStudents", Label: "Total Students", Value: strconv.Itoa(summary.TotalStudents), Tone: "blue"},
			{LabelID: "AverageScore", Label: "Average Score", Value: fmt.Sprintf("%.1f/%d", summary.AverageScore, model.NumQuestions), Tone: "green"},
			{LabelID: "AveragePercentage", Label: "Average Percentage", Value: fmt.Sprintf("%.1f%%", summary.AveragePercentage), Tone: "yellow"},
			{LabelID: "PassRate", Label: "Pass Rate", Value: fmt.Sprintf("%d/%d", summary.PassCount, summary.TotalStudents), Tone: "purple"},
		},
		Questions: make([]string, model.NumQuestions),
		Rows:      make([]Row, 0, len(results)),
	}
	for i := range v.Questions {
		v.Questions[i] = model.QuestionField(i + 1)
	}
	for _, r := range results {
		v.Rows = append(v.Rows, buildRow(r))
	}
	return v
}

func buildRow(r model.StudentResult) Row {
	row := Row{
		Name:       r.Name,
		Timestamp:  r.Timestamp,
		Score:      fmt.Sprintf("%d/%d", r.Score, model.NumQuestions),
		Percentage: fmt.Sprintf("%d%%", r.Percentage),
		Grade:      r.Grade,
		Passed:     r.Passed(),
		Cells:      make([]Cell, 0, len(r.Evaluation)),
	}
	for _, e := range r.Evaluation {
		row.Cells = append(row.Cells, buildCell(e))
	}
	return row
}

func buildCell(e model.QuestionEvaluation) Cell {
	text, shown := e.StudentAnswer, e.StudentAnswer
	if text == "" {
		text, shown = Placeholder, "No Answer"
	}
	return Cell{
		Text:    text,
		Title:   fmt.Sprintf("Student: %s | Correct: %s", shown, e.CorrectAnswer),
		Correct: e.Correct,
	}
}
