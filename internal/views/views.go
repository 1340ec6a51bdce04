// Package views renders evaluation pages and documents as templ components.
package views

import (
	"strconv"

	"github.com/pavelanni/gradesheet/internal/model"
	"github.com/pavelanni/gradesheet/internal/report"
)

// PageData is the state shown on the single grading page.
type PageData struct {
	BasePath string
	Notice   string
	FileName string
	Students int
	Loaded   bool
	Key      [model.NumQuestions]string
	Ready    bool
	Results  *report.View
}

type exportLink struct {
	Format  string
	LabelID string
	Target  string
}

var exportLinks = []exportLink{
	{"csv", "ExportCSV", ""},
	{"xlsx", "ExportExcel", ""},
	{"json", "ExportJSON", ""},
	{"print", "Print", "_blank"},
}

var columnLabels = []string{"ColName", "ColTimestamp", "ColScore", "ColPercentage", "ColGrade"}

// keyField names the form input for the 0-based question i.
func keyField(i int) string {
	return "correct" + strconv.Itoa(i+1)
}

func choiceLetters() []string {
	letters := make([]string, 0, len(model.Choices))
	for _, r := range model.Choices {
		letters = append(letters, string(r))
	}
	return letters
}

func rowClass(passed bool) string {
	if passed {
		return "row-pass"
	}
	return "row-fail"
}

func pctClass(passed bool) string {
	if passed {
		return "pct-pass"
	}
	return "pct-fail"
}

func answerClass(correct bool) string {
	if correct {
		return "correct-answer"
	}
	return "incorrect-answer"
}
