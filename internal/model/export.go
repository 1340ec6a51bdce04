package model

import "time"

// RunExport is the top-level JSON structure for evaluation result export.
type RunExport struct {
	RunID       string            `json:"run_id"`
	EvaluatedAt time.Time         `json:"evaluated_at"`
	Source      string            `json:"source,omitempty"`
	AnswerKey   string            `json:"answer_key"`
	Summary     EvaluationSummary `json:"summary"`
	Results     []StudentResult   `json:"results"`
}
