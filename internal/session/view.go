package session

import (
	"strconv"

	"github.com/gokatarajesh/gotit/internal/notify"
)

// View is what the browser renders for a session. Correct answers are
// only exposed once the session reaches the results phase.
type View struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Phase         Phase         `json:"phase"`
	QuestionCount int           `json:"questionCount"`
	CurrentIndex  int           `json:"currentIndex"`
	Question      *QuestionView `json:"question,omitempty"`
	CanRetreat    bool          `json:"canRetreat"`
	CanAdvance    bool          `json:"canAdvance"`
	IsLast        bool          `json:"isLast"`
	Results       *ResultsView  `json:"results,omitempty"`
}

type QuestionView struct {
	Text     string   `json:"question"`
	Options  []string `json:"options"`
	Selected string   `json:"selected,omitempty"`
}

type ResultsView struct {
	Correct           int            `json:"correct"`
	Total             int            `json:"total"`
	Percentage        float64        `json:"percentage"`
	PercentageDisplay string         `json:"percentageDisplay"`
	Outcome           notify.Outcome `json:"outcome"`
	Host              string         `json:"host"`
	Notified          bool           `json:"notified"`
	Rows              []ResultRow    `json:"rows"`
}

type ResultRow struct {
	Index         int    `json:"index"`
	Question      string `json:"question"`
	Answer        string `json:"answer"`
	Correct       bool   `json:"correct"`
	Expanded      bool   `json:"expanded"`
	CorrectAnswer string `json:"correctAnswer,omitempty"`
	Explanation   string `json:"tooltip,omitempty"`
}

// NewView projects a session for the participant.
func NewView(sess *Session) View {
	st := sess.State
	v := View{
		ID:            sess.ID.String(),
		Title:         st.Quiz.Title,
		Phase:         st.Phase,
		QuestionCount: st.Quiz.Len(),
		CurrentIndex:  st.CurrentIndex,
	}

	switch st.Phase {
	case PhaseInProgress:
		q := st.Quiz.Questions[st.CurrentIndex]
		v.Question = &QuestionView{
			Text:     q.Text,
			Options:  append([]string(nil), q.Options...),
			Selected: st.Answers[st.CurrentIndex],
		}
		v.CanRetreat = st.CurrentIndex > 0
		v.CanAdvance = st.Answered(st.CurrentIndex)
		v.IsLast = st.IsLast()
	case PhaseResults:
		v.Results = resultsView(sess)
	}
	return v
}

func resultsView(sess *Session) *ResultsView {
	st := sess.State
	correct, pct := Score(st)
	rows := make([]ResultRow, 0, st.Quiz.Len())
	for i, q := range st.Quiz.Questions {
		row := ResultRow{
			Index:    i,
			Question: q.Text,
			Answer:   st.Answers[i],
			Correct:  q.IsCorrect(st.Answers[i]),
			Expanded: st.Expanded(i),
		}
		if row.Expanded {
			if !row.Correct {
				row.CorrectAnswer = q.CorrectAnswer
			}
			row.Explanation = q.Explanation
		}
		rows = append(rows, row)
	}

	return &ResultsView{
		Correct:           correct,
		Total:             st.Quiz.Len(),
		Percentage:        pct,
		PercentageDisplay: strconv.FormatFloat(pct, 'f', 1, 64),
		Outcome:           Classify(pct),
		Host:              sess.Host,
		Notified:          st.Notified,
		Rows:              rows,
	}
}
