package session

import (
	"github.com/gokatarajesh/gotit/internal/notify"
	"github.com/gokatarajesh/gotit/internal/quiz"
)

// PassThreshold is the minimum percentage classified as a pass.
const PassThreshold = 75.0

// Phase is the lifecycle stage of a quiz session.
type Phase string

const (
	PhaseLoading    Phase = "loading"
	PhaseInProgress Phase = "in_progress"
	PhaseResults    Phase = "results"
)

// State is the complete quiz-taking state for one participant. Transition
// functions take a State and return a new one; the input is never mutated.
// An empty string in Answers means the question has not been answered.
type State struct {
	Quiz         quiz.Quiz    `json:"quiz"`
	CurrentIndex int          `json:"currentIndex"`
	Answers      []string     `json:"answers"`
	ExpandedRows map[int]bool `json:"expandedRows,omitempty"`
	Phase        Phase        `json:"phase"`
	Notified     bool         `json:"notified"`
}

// Load parses a handed-off quiz payload into a fresh in-progress state.
// It fails with quiz.ErrMalformedQuizData.
func Load(raw []byte) (State, error) {
	q, err := quiz.Parse(raw)
	if err != nil {
		return State{Phase: PhaseLoading}, err
	}
	return start(q), nil
}

func start(q quiz.Quiz) State {
	return State{
		Quiz:    q,
		Answers: make([]string, q.Len()),
		Phase:   PhaseInProgress,
	}
}

func (s State) clone() State {
	out := s
	out.Answers = append([]string(nil), s.Answers...)
	if s.ExpandedRows != nil {
		out.ExpandedRows = make(map[int]bool, len(s.ExpandedRows))
		for k, v := range s.ExpandedRows {
			out.ExpandedRows[k] = v
		}
	}
	return out
}

// Answered reports whether question i has a recorded answer.
func (s State) Answered(i int) bool {
	return i >= 0 && i < len(s.Answers) && s.Answers[i] != ""
}

// IsLast reports whether the pointer sits on the final question.
func (s State) IsLast() bool {
	return s.CurrentIndex == s.Quiz.Len()-1
}

// Expanded reports whether result row i is open.
func (s State) Expanded(i int) bool {
	return s.ExpandedRows[i]
}

// SelectAnswer records answer for the current question, replacing any
// earlier choice. Any non-empty string is accepted.
func SelectAnswer(s State, answer string) State {
	if s.Phase != PhaseInProgress || answer == "" {
		return s
	}
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Answers) {
		return s
	}
	out := s.clone()
	out.Answers[out.CurrentIndex] = answer
	return out
}

// Advance moves to the next question, or into the results phase from the
// last one. It does nothing while the current question is unanswered.
func Advance(s State) State {
	if s.Phase != PhaseInProgress || !s.Answered(s.CurrentIndex) {
		return s
	}
	out := s.clone()
	if out.IsLast() {
		out.Phase = PhaseResults
		return out
	}
	out.CurrentIndex++
	return out
}

// Retreat moves to the previous question. The phase never changes.
func Retreat(s State) State {
	if s.CurrentIndex <= 0 {
		return s
	}
	out := s.clone()
	out.CurrentIndex--
	return out
}

// ToggleResultRow opens or closes result row i. Only valid in results.
func ToggleResultRow(s State, i int) State {
	if s.Phase != PhaseResults || i < 0 || i >= s.Quiz.Len() {
		return s
	}
	out := s.clone()
	if out.ExpandedRows[i] {
		delete(out.ExpandedRows, i)
		return out
	}
	if out.ExpandedRows == nil {
		out.ExpandedRows = make(map[int]bool)
	}
	out.ExpandedRows[i] = true
	return out
}

// Score counts exact matches against the correct answers. The percentage
// is not rounded.
func Score(s State) (int, float64) {
	n := s.Quiz.Len()
	if n == 0 {
		return 0, 0
	}
	correct := 0
	for i, q := range s.Quiz.Questions {
		if i < len(s.Answers) && q.IsCorrect(s.Answers[i]) {
			correct++
		}
	}
	return correct, 100 * float64(correct) / float64(n)
}

// Reset returns a fresh in-progress state for the same quiz.
func Reset(s State) State {
	return start(s.Quiz)
}

// MarkNotified records a successful notification.
func MarkNotified(s State) State {
	out := s.clone()
	out.Notified = true
	return out
}

// Classify maps a percentage to an outcome.
func Classify(pct float64) notify.Outcome {
	if pct >= PassThreshold {
		return notify.OutcomePass
	}
	return notify.OutcomeFail
}
