package grading

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/pavelanni/gradesheet/internal/model"
)

// KeyError reports the first invalid entry of an answer key.
type KeyError struct {
	Question int    // 1-based
	Value    string // normalized input, "" when blank or missing
}

func (e *KeyError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("answer key: question %d is blank", e.Question)
	}
	return fmt.Sprintf("answer key: question %d has %q, want one of A, B, C, D", e.Question, e.Value)
}

// Unwrap lets errors.Is match model.ErrInvalidAnswerKey.
func (e *KeyError) Unwrap() error { return model.ErrInvalidAnswerKey }

// CollectKey validates raw key inputs in question order and returns the answer key.
// Scanning stops at the first blank or out-of-range entry.
func CollectKey(raw []string) (model.AnswerKey, error) {
	var key model.AnswerKey
	for i := range model.NumQuestions {
		var v string
		if i < len(raw) {
			v = model.NormalizeAnswer(raw[i])
		}
		if !validChoice(v) {
			return model.AnswerKey{}, &KeyError{Question: i + 1, Value: v}
		}
		key[i] = v
	}
	return key, nil
}

func validChoice(v string) bool {
	return len(v) == 1 && strings.Contains(model.Choices, v)
}

// SplitKey turns key text typed on a command line into per-question inputs.
// "A,B,C", "A B C" and "ABC" are all accepted.
func SplitKey(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || unicode.IsSpace(r)
	})
	if len(fields) != 1 {
		return fields
	}
	letters := make([]string, 0, len(fields[0]))
	for _, r := range fields[0] {
		letters = append(letters, string(r))
	}
	return letters
}
