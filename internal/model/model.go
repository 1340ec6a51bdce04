package model

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

const (
	// NumQuestions is the fixed number of questions on every exam sheet.
	NumQuestions = 25
	// PassPercentage is the lowest percentage counted as a pass.
	PassPercentage = 50
	// Choices lists the letters accepted in an answer key.
	Choices = "ABCD"
	// NotAvailable replaces missing student details.
	NotAvailable = "N/A"
)

// Spreadsheet column names read from student records.
const (
	FieldName         = "Name"
	FieldTimestamp    = "Timestamp"
	FieldUniversityID = "UniversityID"
	FieldEmail        = "Email"
)

var (
	// ErrMissingInput means no student records were loaded before evaluation.
	ErrMissingInput = errors.New("no student records loaded")
	// ErrInvalidAnswerKey is matched by every answer key validation error.
	ErrInvalidAnswerKey = errors.New("invalid answer key")
	// ErrNoResults means an export was requested before any evaluation ran.
	ErrNoResults = errors.New("no evaluation results")
)

// QuestionField returns the record field holding the answer to question q (1-based).
func QuestionField(q int) string {
	return "Q" + strconv.Itoa(q)
}

// StudentRecord is one spreadsheet row keyed by header name.
type StudentRecord map[string]string

// Answer returns the normalized answer to question q, or "" when the field is absent.
func (r StudentRecord) Answer(q int) string {
	return NormalizeAnswer(r[QuestionField(q)])
}

// Info returns a descriptive field, falling back to NotAvailable when absent or empty.
func (r StudentRecord) Info(field string) string {
	if v := r[field]; v != "" {
		return v
	}
	return NotAvailable
}

// NormalizeAnswer trims surrounding whitespace and uppercases an answer.
func NormalizeAnswer(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// AnswerKey holds the correct letter for each question, in question order.
type AnswerKey [NumQuestions]string

// String joins the key letters, e.g. "ABCD...".
func (k AnswerKey) String() string {
	return strings.Join(k[:], "")
}

// QuestionEvaluation is the outcome of one question for one student.
type QuestionEvaluation struct {
	Question      int    `json:"question"`
	StudentAnswer string `json:"student_answer"`
	CorrectAnswer string `json:"correct_answer"`
	Correct       bool   `json:"correct"`
}

// ResultLabel is the human readable outcome used by exports.
func (e QuestionEvaluation) ResultLabel() string {
	if e.Correct {
		return "Correct"
	}
	return "Incorrect"
}

// StudentResult is the graded outcome for one student.
type StudentResult struct {
	Name         string                           `json:"name"`
	Timestamp    string                           `json:"timestamp"`
	UniversityID string                           `json:"university_id"`
	Email        string                           `json:"email"`
	Score        int                              `json:"score"`
	Percentage   int                              `json:"percentage"`
	Grade        string                           `json:"grade"`
	Answers      [NumQuestions]string             `json:"answers"`
	Evaluation   [NumQuestions]QuestionEvaluation `json:"evaluation"`
}

// Passed reports whether the student reached PassPercentage.
func (r StudentResult) Passed() bool {
	return r.Percentage >= PassPercentage
}

// EvaluationSummary aggregates a result set.
type EvaluationSummary struct {
	TotalStudents     int     `json:"total_students"`
	TotalScore        int     `json:"total_score"`
	AverageScore      float64 `json:"average_score"`
	AveragePercentage float64 `json:"average_percentage"`
	PassCount         int     `json:"pass_count"`
}

// ServerConfig holds runtime parameters for the HTTP surface set via flags, env or config file.
type ServerConfig struct {
	Addr            string        `validate:"required"`
	Lang            string        `validate:"oneof=en ru"`
	BasePath        string        // URL prefix for sub-path deployments (e.g. "/grader")
	MaxUploadBytes  int64         `validate:"min=1024"`
	ProcessingDelay time.Duration `validate:"min=0"`
}

// GradeConfig holds parameters for a batch grading run.
type GradeConfig struct {
	Input   string   `validate:"required"`
	Key     string   `validate:"required"`
	Formats []string `validate:"min=1,dive,oneof=csv xlsx html json"`
	OutDir  string   `validate:"required"`
	Quiet   bool
}
