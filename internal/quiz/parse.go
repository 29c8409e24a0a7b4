package quiz

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedQuizData is returned when a payload does not decode into a
// valid Quiz. Callers send the user back to the submission entry point.
var ErrMalformedQuizData = errors.New("malformed quiz data")

// Parse decodes raw JSON and validates every quiz invariant.
func Parse(raw []byte) (Quiz, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return Quiz{}, fmt.Errorf("%w: empty payload", ErrMalformedQuizData)
	}

	var q Quiz
	if err := json.Unmarshal(raw, &q); err != nil {
		return Quiz{}, fmt.Errorf("%w: %v", ErrMalformedQuizData, err)
	}
	if err := q.Validate(); err != nil {
		return Quiz{}, err
	}
	return q, nil
}

// Validate checks the title, question count and per-question invariants.
func (q Quiz) Validate() error {
	if strings.TrimSpace(q.Title) == "" {
		return fmt.Errorf("%w: missing title", ErrMalformedQuizData)
	}
	if len(q.Questions) == 0 {
		return fmt.Errorf("%w: no questions", ErrMalformedQuizData)
	}
	for i, question := range q.Questions {
		if err := question.validate(); err != nil {
			return fmt.Errorf("%w: question %d: %s", ErrMalformedQuizData, i+1, err)
		}
	}
	return nil
}

func (q Question) validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return errors.New("missing text")
	}
	if len(q.Options) != OptionCount {
		return fmt.Errorf("expected %d options, got %d", OptionCount, len(q.Options))
	}

	seen := make(map[string]struct{}, len(q.Options))
	for _, opt := range q.Options {
		if opt == "" {
			return errors.New("empty option")
		}
		if _, dup := seen[opt]; dup {
			return fmt.Errorf("duplicate option %q", opt)
		}
		seen[opt] = struct{}{}
	}

	if _, ok := seen[q.CorrectAnswer]; !ok {
		return fmt.Errorf("correct answer %q is not one of the options", q.CorrectAnswer)
	}
	return nil
}
