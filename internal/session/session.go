// Package session holds the in-memory grading state shared by the HTTP surface and the CLI.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pavelanni/gradesheet/internal/grading"
	"github.com/pavelanni/gradesheet/internal/ingest"
	"github.com/pavelanni/gradesheet/internal/model"
	"github.com/pavelanni/gradesheet/internal/report"
)

// Run is one complete evaluation. It is never modified after creation.
type Run struct {
	ID          string
	EvaluatedAt time.Time
	Source      string
	Key         model.AnswerKey
	Results     []model.StudentResult
	Summary     model.EvaluationSummary
	View        report.View
}

// Export returns the run in its serializable form.
func (r *Run) Export() model.RunExport {
	return model.RunExport{
		RunID:       r.ID,
		EvaluatedAt: r.EvaluatedAt,
		Source:      r.Source,
		AnswerKey:   r.Key.String(),
		Summary:     r.Summary,
		Results:     r.Results,
	}
}

// Session owns the loaded records, the draft answer key and the latest run.
type Session struct {
	mu      sync.RWMutex
	source  string
	records []model.StudentRecord
	draft   [model.NumQuestions]string
	latest  *Run

	delay time.Duration
	now   func() time.Time
}

// Option configures a Session.
type Option func(*Session)

// WithProcessingDelay pauses before each evaluation, letting a UI show progress.
func WithProcessingDelay(d time.Duration) Option {
	return func(s *Session) { s.delay = d }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// New creates an empty session.
func New(opts ...Option) *Session {
	s := &Session{now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// LoadFile parses a spreadsheet and replaces the loaded records.
// It returns the number of student records found.
func (s *Session) LoadFile(name string, data []byte) (int, error) {
	records, err := ingest.ParseFile(name, data)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	s.SetRecords(name, records)
	slog.Info("loaded student records", "file", name, "students", len(records))
	return len(records), nil
}

// SetRecords replaces the loaded records.
func (s *Session) SetRecords(source string, records []model.StudentRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.source = source
	s.records = records
}

// Source returns the name of the loaded file and the number of records.
func (s *Session) Source() (string, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source, len(s.records)
}

// Evaluate validates rawKey and grades every loaded record.
// On any error the previous run stays in place.
func (s *Session) Evaluate(ctx context.Context, rawKey []string) (*Run, error) {
	s.setDraft(rawKey)

	s.mu.RLock()
	records, source := s.records, s.source
	s.mu.RUnlock()
	if len(records) == 0 {
		return nil, model.ErrMissingInput
	}

	key, err := grading.CollectKey(rawKey)
	if err != nil {
		return nil, err
	}

	if s.delay > 0 {
		t := time.NewTimer(s.delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}

	results := grading.Evaluate(records, key)
	summary := grading.Summarize(results)
	run := &Run{
		ID:          uuid.NewString(),
		EvaluatedAt: s.now(),
		Source:      source,
		Key:         key,
		Results:     results,
		Summary:     summary,
		View:        report.Build(results, summary),
	}

	s.mu.Lock()
	s.latest = run
	s.mu.Unlock()

	slog.Info("evaluation complete",
		"run_id", run.ID,
		"students", summary.TotalStudents,
		"average_percentage", summary.AveragePercentage,
		"passed", summary.PassCount,
	)
	return run, nil
}

// Latest returns the most recent run, or model.ErrNoResults before the first evaluation.
func (s *Session) Latest() (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return nil, model.ErrNoResults
	}
	return s.latest, nil
}

// DraftKey returns the answer key inputs as last entered, for redisplay.
func (s *Session) DraftKey() [model.NumQuestions]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.draft
}

// FillKey sets every draft answer to letter.
func (s *Session) FillKey(letter string) {
	letter = model.NormalizeAnswer(letter)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.draft {
		s.draft[i] = letter
	}
}

// ClearKey empties the draft answer key.
func (s *Session) ClearKey() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = [model.NumQuestions]string{}
}

// Ready reports whether records are loaded and the draft key is complete and valid.
func (s *Session) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.records) == 0 {
		return false
	}
	_, err := grading.CollectKey(s.draft[:])
	return err == nil
}

func (s *Session) setDraft(raw []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.draft {
		s.draft[i] = ""
		if i < len(raw) {
			s.draft[i] = model.NormalizeAnswer(raw[i])
		}
	}
}
