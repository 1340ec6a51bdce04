package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pavelanni/gradesheet/internal/model"
)

const testKey = "ABCDABCDABCDABCDABCDABCDA"

func writeInput(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "class.csv")
	data := "Name,Timestamp,Q1,Q2\nAlice,2025-01-02,A,B\nBob,2025-01-02,C,\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return path
}

func TestGradeWritesEveryFormat(t *testing.T) {
	outDir := t.TempDir()
	cfg := model.GradeConfig{
		Input:   writeInput(t),
		Key:     testKey,
		Formats: []string{"csv", "xlsx", "html", "json"},
		OutDir:  outDir,
	}

	var out bytes.Buffer
	if err := grade(context.Background(), cfg, &out); err != nil {
		t.Fatalf("grade: %v", err)
	}
	if !strings.Contains(out.String(), "Alice") {
		t.Errorf("table output missing student name:\n%s", out.String())
	}

	for _, ext := range []string{".csv", ".xlsx", ".html", ".json"} {
		matches, err := filepath.Glob(filepath.Join(outDir, "evaluation_results_*"+ext))
		if err != nil {
			t.Fatal(err)
		}
		if len(matches) != 1 {
			t.Errorf("expected one %s file, got %v", ext, matches)
		}
	}
}

func TestGradeQuiet(t *testing.T) {
	cfg := model.GradeConfig{
		Input:   writeInput(t),
		Key:     testKey,
		Formats: []string{"csv"},
		OutDir:  t.TempDir(),
		Quiet:   true,
	}
	var out bytes.Buffer
	if err := grade(context.Background(), cfg, &out); err != nil {
		t.Fatalf("grade: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("expected no output in quiet mode, got %q", out.String())
	}
}

func TestGradeInvalidKey(t *testing.T) {
	cfg := model.GradeConfig{
		Input:   writeInput(t),
		Key:     "ABCE",
		Formats: []string{"csv"},
		OutDir:  t.TempDir(),
		Quiet:   true,
	}
	err := grade(context.Background(), cfg, &bytes.Buffer{})
	if !errors.Is(err, model.ErrInvalidAnswerKey) {
		t.Fatalf("expected ErrInvalidAnswerKey, got %v", err)
	}
}

func TestGradeMissingInput(t *testing.T) {
	cfg := model.GradeConfig{
		Input:   filepath.Join(t.TempDir(), "missing.csv"),
		Key:     testKey,
		Formats: []string{"csv"},
		OutDir:  t.TempDir(),
	}
	if err := grade(context.Background(), cfg, &bytes.Buffer{}); err == nil {
		t.Fatal("expected error for missing input file")
	}
}

func TestRootCommandWiring(t *testing.T) {
	root := rootCmd()
	if root.RunE == nil {
		t.Fatal("root command should default to serve")
	}
	for _, name := range []string{"addr", "lang", "base-path", "max-upload-bytes", "processing-delay"} {
		if root.Flags().Lookup(name) == nil {
			t.Errorf("root missing serve flag %q", name)
		}
	}
	grade, _, err := root.Find([]string{"grade"})
	if err != nil {
		t.Fatalf("find grade: %v", err)
	}
	for _, name := range []string{"input", "key", "key-file", "format", "out-dir", "quiet"} {
		if grade.Flags().Lookup(name) == nil {
			t.Errorf("grade missing flag %q", name)
		}
	}
}
