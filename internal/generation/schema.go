package generation

import "github.com/gokatarajesh/gotit/internal/llm"

// QuizSchema is the structured output contract sent to the model.
// Option count and membership of correctAnswer are enforced by quiz.Parse.
var QuizSchema = &llm.Schema{
	Name:        "transcript-quiz",
	Description: "A multiple-choice quiz generated from a meeting or lecture transcript",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type":        "string",
				"description": "Short title describing the transcript topic",
			},
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question": map[string]any{
							"type":        "string",
							"description": "The question shown to the participant",
						},
						"options": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "Exactly 4 distinct answer options",
						},
						"correctAnswer": map[string]any{
							"type":        "string",
							"description": "The text of the correct option, copied verbatim",
						},
						"tooltip": map[string]any{
							"type":        "string",
							"description": "One or two sentences explaining the correct answer",
						},
					},
					"required":             []any{"question", "options", "correctAnswer", "tooltip"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"title", "questions"},
		"additionalProperties": false,
	},
}
