package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pavelanni/gradesheet/internal/grading"
	"github.com/pavelanni/gradesheet/internal/model"
)

const keyText = "ABCDABCDABCDABCDABCDABCDA"

func rawKey() []string {
	return grading.SplitKey(keyText)
}

func loadedSession(t *testing.T, opts ...Option) *Session {
	t.Helper()
	s := New(opts...)
	csv := "Name,Q1,Q2\nAlice,A,B\nBob,a,\n"
	n, err := s.LoadFile("class.csv", []byte(csv))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 records, got %d", n)
	}
	return s
}

func TestEvaluateRequiresRecords(t *testing.T) {
	s := New()
	_, err := s.Evaluate(context.Background(), rawKey())
	if !errors.Is(err, model.ErrMissingInput) {
		t.Fatalf("expected ErrMissingInput, got %v", err)
	}

	// An empty spreadsheet is guarded the same way, so Summarize never sees zero results.
	if _, err := s.LoadFile("empty.csv", []byte("Name,Q1\n")); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if _, err := s.Evaluate(context.Background(), rawKey()); !errors.Is(err, model.ErrMissingInput) {
		t.Fatalf("expected ErrMissingInput for empty sheet, got %v", err)
	}
	if _, err := s.Latest(); !errors.Is(err, model.ErrNoResults) {
		t.Errorf("expected ErrNoResults, got %v", err)
	}
}

func TestEvaluate(t *testing.T) {
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	s := loadedSession(t, WithClock(func() time.Time { return at }))

	run, err := s.Evaluate(context.Background(), rawKey())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if run.ID == "" || !run.EvaluatedAt.Equal(at) || run.Source != "class.csv" {
		t.Errorf("unexpected run metadata %q %v %q", run.ID, run.EvaluatedAt, run.Source)
	}
	if run.Key.String() != keyText {
		t.Errorf("key = %q", run.Key.String())
	}
	if len(run.Results) != 2 || run.Results[0].Score != 2 || run.Results[1].Score != 1 {
		t.Fatalf("unexpected results %+v", run.Results)
	}
	if run.Summary.TotalStudents != 2 || run.Summary.TotalScore != 3 {
		t.Errorf("unexpected summary %+v", run.Summary)
	}
	if len(run.View.Rows) != 2 {
		t.Errorf("view has %d rows", len(run.View.Rows))
	}

	latest, err := s.Latest()
	if err != nil || latest != run {
		t.Fatalf("Latest = %v, %v", latest, err)
	}

	exp := run.Export()
	if exp.RunID != run.ID || exp.AnswerKey != keyText || len(exp.Results) != 2 {
		t.Errorf("unexpected export %+v", exp)
	}
}

func TestInvalidKeyKeepsPreviousRun(t *testing.T) {
	s := loadedSession(t)
	first, err := s.Evaluate(context.Background(), rawKey())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	bad := rawKey()
	bad[6] = "x"
	_, err = s.Evaluate(context.Background(), bad)
	var keyErr *grading.KeyError
	if !errors.As(err, &keyErr) || keyErr.Question != 7 {
		t.Fatalf("expected KeyError for question 7, got %v", err)
	}

	latest, err := s.Latest()
	if err != nil || latest != first {
		t.Error("previous run should survive an invalid key")
	}
	if d := s.DraftKey(); d[6] != "X" {
		t.Errorf("draft[6] = %q, want X", d[6])
	}
}

func TestLastWriteWins(t *testing.T) {
	s := loadedSession(t)
	if _, err := s.Evaluate(context.Background(), rawKey()); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	second, err := s.Evaluate(context.Background(), grading.SplitKey(strings.Repeat("A", 25)))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	latest, _ := s.Latest()
	if latest != second {
		t.Error("expected latest run to be the second evaluation")
	}
}

func TestProcessingDelayHonorsContext(t *testing.T) {
	s := loadedSession(t, WithProcessingDelay(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Evaluate(ctx, rawKey()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, err := s.Latest(); !errors.Is(err, model.ErrNoResults) {
		t.Error("cancelled evaluation must not store a run")
	}
}

func TestDraftKeyHelpers(t *testing.T) {
	s := New()
	if s.Ready() {
		t.Error("empty session should not be ready")
	}

	s.FillKey(" c ")
	for i, v := range s.DraftKey() {
		if v != "C" {
			t.Fatalf("draft[%d] = %q, want C", i, v)
		}
	}
	if s.Ready() {
		t.Error("session without records should not be ready")
	}

	s.SetRecords("inline", []model.StudentRecord{{model.FieldName: "Ann"}})
	if !s.Ready() {
		t.Error("expected ready with records and a full key")
	}
	if name, n := s.Source(); name != "inline" || n != 1 {
		t.Errorf("Source = %q, %d", name, n)
	}

	s.ClearKey()
	if s.Ready() {
		t.Error("cleared key should not be ready")
	}
	if s.DraftKey()[0] != "" {
		t.Error("expected cleared draft")
	}
}
