package quiz

import "encoding/json"

// OptionCount is the number of choices every question must carry.
const OptionCount = 4

// DefaultQuestionCount is how many questions the generator asks for.
const DefaultQuestionCount = 5

// Quiz is the structured payload produced from a transcript.
type Quiz struct {
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

// Question is a single multiple-choice item. Wire names follow the
// generator contract ("question", "tooltip").
type Question struct {
	Text          string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"tooltip,omitempty"`
}

// Len returns the number of questions.
func (q Quiz) Len() int {
	return len(q.Questions)
}

// IsCorrect reports whether answer matches the correct option exactly.
// No case or whitespace normalization is applied.
func (q Question) IsCorrect(answer string) bool {
	return answer == q.CorrectAnswer
}

type questionWire struct {
	Question      string   `json:"question"`
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Tooltip       string   `json:"tooltip"`
	Explanation   string   `json:"explanation"`
}

// UnmarshalJSON accepts both the generator field names and the
// text/explanation aliases.
func (q *Question) UnmarshalJSON(data []byte) error {
	var w questionWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	q.Text = firstNonEmpty(w.Question, w.Text)
	q.Options = w.Options
	q.CorrectAnswer = w.CorrectAnswer
	q.Explanation = firstNonEmpty(w.Tooltip, w.Explanation)
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
