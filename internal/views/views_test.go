package views

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/pavelanni/gradesheet/internal/grading"
	appI18n "github.com/pavelanni/gradesheet/internal/i18n"
	"github.com/pavelanni/gradesheet/internal/model"
	"github.com/pavelanni/gradesheet/internal/report"
)

func testView(t *testing.T) report.View {
	t.Helper()
	if err := appI18n.Init("en"); err != nil {
		t.Fatalf("i18n.Init: %v", err)
	}
	var key model.AnswerKey
	for i := range key {
		key[i] = "B"
	}
	recs := []model.StudentRecord{
		{model.FieldName: `O"Brien <script>`, "Q1": "b", "Q2": "a"},
	}
	results := grading.Evaluate(recs, key)
	return report.Build(results, grading.Summarize(results))
}

func TestResultsSection(t *testing.T) {
	v := testView(t)
	var buf bytes.Buffer
	if err := ResultsSection(v).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Total Students", "Average Score", "Pass Rate",
		`class="answer correct-answer" title="Student: B | Correct: B">B</td>`,
		`class="answer incorrect-answer" title="Student: A | Correct: B">A</td>`,
		`title="Student: No Answer | Correct: B">-</td>`,
		"1/25", "4%", `class="row-fail"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Contains(out, "<script>") {
		t.Error("student name was not escaped")
	}
	if got := strings.Count(out, "<td class=\"answer "); got != model.NumQuestions {
		t.Errorf("expected %d answer cells, got %d", model.NumQuestions, got)
	}
}

func TestPrintDocument(t *testing.T) {
	v := testView(t)
	var buf bytes.Buffer
	at := time.Date(2025, 5, 4, 13, 30, 0, 0, time.UTC)
	if err := PrintDocument(v, at).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"<title>Evaluation Results</title>",
		"<h1>Student Answer Evaluation Results</h1>",
		"Generated on: 2025-05-04 13:30:00",
		".correct-answer { background-color: #22c55e",
		".incorrect-answer { background-color: #ef4444",
		"window.print()",
		`id="resultsSection"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestPage(t *testing.T) {
	v := testView(t)
	d := PageData{
		BasePath: "/grader",
		Notice:   "Please upload the Excel file first.",
		FileName: "responses.xlsx",
		Students: 3,
		Loaded:   true,
		Results:  &v,
	}
	d.Key[0] = "C"

	var buf bytes.Buffer
	if err := Page(d).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`role="alert">Please upload the Excel file first.`,
		`action="/grader/upload"`,
		`accept=".xlsx,.csv"`,
		`action="/grader/evaluate"`,
		`id="correct1" name="correct1" value="C"`,
		`id="correct25" name="correct25" value=""`,
		`formaction="/grader/key/fill"`,
		"Selected: responses.xlsx 3 students loaded.",
		`href="/grader/export/csv"`,
		`href="/grader/export/print" target="_blank"`,
		"Upload a spreadsheet and enter all 25 answers to evaluate.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestPageWithoutResults(t *testing.T) {
	testView(t)
	var buf bytes.Buffer
	if err := Page(PageData{Ready: true}).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "resultsSection") || strings.Contains(out, "/export/") {
		t.Error("results and export links should be hidden before evaluation")
	}
	if !strings.Contains(out, "Ready to evaluate.") {
		t.Error("expected readiness message")
	}
}
