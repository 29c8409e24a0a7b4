package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func newTestGeminiProvider(t *testing.T, handler http.HandlerFunc) *GeminiProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:      "test-key",
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: server.URL},
	})
	require.NoError(t, err)

	return &GeminiProvider{
		client: client,
		model:  "gemini-2.0-flash",
	}
}

func geminiResponse(text, finishReason string) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{
			{
				"content": map[string]any{
					"role":  "model",
					"parts": []map[string]any{{"text": text}},
				},
				"finishReason": finishReason,
			},
		},
		"usageMetadata": map[string]any{
			"promptTokenCount":     60,
			"candidatesTokenCount": 40,
			"totalTokenCount":      100,
		},
	}
}

func geminiError(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"code": code, "message": status, "status": status},
	})
}

func TestGeminiProviderHappyPath(t *testing.T) {
	var (
		path string
		body map[string]any
	)
	p := newTestGeminiProvider(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(geminiResponse(validQuizJSON, "STOP"))
	})

	resp, err := p.Generate(context.Background(), Request{
		System:    "You write quizzes.",
		Messages:  []Message{{Role: RoleUser, Content: "Transcript: ..."}},
		Schema:    quizSchema(),
		MaxTokens: 512,
	})
	require.NoError(t, err)

	assert.JSONEq(t, validQuizJSON, string(resp.Content))
	assert.Equal(t, 60, resp.Usage.InputTokens)
	assert.Equal(t, 40, resp.Usage.OutputTokens)
	assert.Equal(t, 100, resp.Usage.TotalTokens)
	assert.Equal(t, "end", resp.StopReason)
	assert.Equal(t, "gemini-2.0-flash", resp.Model)

	assert.True(t, strings.HasSuffix(path, "gemini-2.0-flash:generateContent"), path)
	assert.Contains(t, body, "systemInstruction")
	cfg, ok := body["generationConfig"].(map[string]any)
	require.True(t, ok, "generationConfig should be sent")
	assert.Equal(t, "application/json", cfg["responseMimeType"])
	assert.Contains(t, cfg, "responseSchema")
}

func TestGeminiProviderMaxTokens(t *testing.T) {
	p := newTestGeminiProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(geminiResponse(validQuizJSON, "MAX_TOKENS"))
	})

	resp, err := p.Generate(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "Transcript: ..."}},
		MaxTokens: 64,
	})
	require.NoError(t, err)
	assert.Equal(t, "max_tokens", resp.StopReason)
}

func TestGeminiProviderSchemaViolation(t *testing.T) {
	p := newTestGeminiProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(geminiResponse(`{"title":"Release sync","questions":[{"question":"When?"}]}`, "STOP"))
	})

	_, err := p.Generate(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "Transcript: ..."}},
		Schema:   quizSchema(),
	})
	var invalid *ErrInvalidResponse
	assert.ErrorAs(t, err, &invalid)
}

func TestGeminiProviderRateLimit(t *testing.T) {
	p := newTestGeminiProvider(t, func(w http.ResponseWriter, r *http.Request) {
		geminiError(w, http.StatusTooManyRequests, "RESOURCE_EXHAUSTED")
	})

	_, err := p.Generate(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "test"}},
	})
	var rl *ErrRateLimit
	assert.ErrorAs(t, err, &rl)
}

func TestGeminiProviderServerError(t *testing.T) {
	p := newTestGeminiProvider(t, func(w http.ResponseWriter, r *http.Request) {
		geminiError(w, http.StatusInternalServerError, "INTERNAL")
	})

	_, err := p.Generate(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "test"}},
	})
	var unavail *ErrProviderUnavailable
	assert.ErrorAs(t, err, &unavail)
}

func TestMapGeminiErrorPointerForm(t *testing.T) {
	err := mapGeminiError(&genai.APIError{Code: http.StatusTooManyRequests})
	var rl *ErrRateLimit
	assert.ErrorAs(t, err, &rl)
}

func TestGeminiModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"gemini-flash", "gemini-2.0-flash"},
		{"gemini-pro", "gemini-2.0-pro"},
		{"gemini-2.0-flash", "gemini-2.0-flash"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, resolveModel(tt.input, geminiModels), tt.input)
	}
}

func TestBuildGeminiSchemaFromQuizSchema(t *testing.T) {
	schema := buildGeminiSchema(quizSchema().Definition)

	assert.Equal(t, genai.TypeObject, schema.Type)
	assert.ElementsMatch(t, []string{"title", "questions"}, schema.Required)

	questions := schema.Properties["questions"]
	require.NotNil(t, questions)
	assert.Equal(t, genai.TypeArray, questions.Type)
	require.NotNil(t, questions.Items)
	assert.Equal(t, genai.TypeObject, questions.Items.Type)
	assert.Equal(t, genai.TypeArray, questions.Items.Properties["options"].Type)
	assert.Equal(t, genai.TypeString, questions.Items.Properties["options"].Items.Type)
	assert.Len(t, questions.Items.Required, 4)

	outcome := buildGeminiSchema(map[string]any{"type": "string", "enum": []any{"pass", "fail"}})
	assert.Equal(t, []string{"pass", "fail"}, outcome.Enum)
}
