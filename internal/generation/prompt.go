package generation

import (
	"fmt"
	"strings"

	"github.com/gokatarajesh/gotit/internal/quiz"
)

const systemPrompt = `You are a helpful assistant that turns meeting and lecture transcripts into short multiple-choice quizzes.
Every question must be answerable from the transcript alone.
Each question has exactly 4 distinct options, and correctAnswer must repeat one option verbatim.
The tooltip briefly explains why the correct answer is right, citing the transcript.`

// buildPrompt renders the user message for a transcript.
func buildPrompt(transcript string, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate a %d-question quiz from the transcript below.\n", count)
	b.WriteString("Respond with a JSON object of the form ")
	b.WriteString(`{"title": "Quiz Title", "questions": [{"question": "Question Text", "options": ["Option 1", "Option 2", "Option 3", "Option 4"], "correctAnswer": "Option 2", "tooltip": "Tooltip Text"}]}.`)
	b.WriteString("\n\nTranscript:\n<transcript>\n")
	b.WriteString(strings.TrimSpace(transcript))
	b.WriteString("\n</transcript>")
	return b.String()
}

func questionCount(n int) int {
	if n <= 0 {
		return quiz.DefaultQuestionCount
	}
	return n
}
