package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMux(f *fixture) *http.ServeMux {
	h := NewHTTPHandlers(f.service, zerolog.Nop())
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/sessions", h.Start)
	mux.HandleFunc("GET /v1/sessions/{id}", h.Get)
	mux.HandleFunc("POST /v1/sessions/{id}/answer", h.Answer)
	mux.HandleFunc("POST /v1/sessions/{id}/advance", h.Advance)
	mux.HandleFunc("POST /v1/sessions/{id}/retreat", h.Retreat)
	mux.HandleFunc("POST /v1/sessions/{id}/results/{index}/toggle", h.ToggleRow)
	mux.HandleFunc("POST /v1/sessions/{id}/reset", h.Reset)
	return mux
}

func do(t *testing.T, mux http.Handler, method, path, body string) (*httptest.ResponseRecorder, View) {
	t.Helper()
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	var v View
	if rec.Code < 300 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	}
	return rec, v
}

func TestHTTPSessionFlow(t *testing.T) {
	f := newFixture(t)
	mux := newTestMux(f)

	token, _, err := f.handoffs.Save(context.Background(), fiveQuestionQuiz(), "host@example.com", "")
	require.NoError(t, err)

	rec, v := do(t, mux, http.MethodPost, "/v1/sessions", `{"handoffToken":"`+token+`","participant":"pat@example.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, PhaseInProgress, v.Phase)
	assert.Equal(t, 5, v.QuestionCount)
	require.NotNil(t, v.Question)
	assert.Equal(t, []string{"A", "B", "C", "D"}, v.Question.Options)
	assert.False(t, v.CanAdvance)
	assert.False(t, v.CanRetreat)
	assert.NotContains(t, rec.Body.String(), "correctAnswer")
	assert.NotContains(t, rec.Body.String(), "Explanation 1")

	base := "/v1/sessions/" + v.ID
	for i := 0; i < 5; i++ {
		answer := "B"
		if i == 2 {
			answer = "D"
		}
		rec, v = do(t, mux, http.MethodPost, base+"/answer", `{"answer":"`+answer+`"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, v.CanAdvance)
		assert.NotContains(t, rec.Body.String(), "correctAnswer")

		rec, v = do(t, mux, http.MethodPost, base+"/advance", ``)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	assert.Equal(t, PhaseResults, v.Phase)
	require.NotNil(t, v.Results)
	assert.Equal(t, 4, v.Results.Correct)
	assert.Equal(t, 80.0, v.Results.Percentage)
	assert.Equal(t, "80.0", v.Results.PercentageDisplay)
	assert.Equal(t, "pass", string(v.Results.Outcome))
	assert.True(t, v.Results.Notified)
	assert.Equal(t, 1, f.notifier.count())

	rec, v = do(t, mux, http.MethodPost, base+"/results/2/toggle", ``)
	require.Equal(t, http.StatusOK, rec.Code)
	row := v.Results.Rows[2]
	assert.True(t, row.Expanded)
	assert.False(t, row.Correct)
	assert.Equal(t, "D", row.Answer)
	assert.Equal(t, "B", row.CorrectAnswer)
	assert.Equal(t, "Explanation 3", row.Explanation)
	assert.Empty(t, v.Results.Rows[0].CorrectAnswer)

	rec, v = do(t, mux, http.MethodPost, base+"/results/0/toggle", ``)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, v.Results.Rows[0].CorrectAnswer)
	assert.Equal(t, "Explanation 1", v.Results.Rows[0].Explanation)

	rec, v = do(t, mux, http.MethodPost, base+"/reset", ``)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, PhaseInProgress, v.Phase)
	assert.NotEqual(t, strings.TrimPrefix(base, "/v1/sessions/"), v.ID)
}

func TestHTTPRetreat(t *testing.T) {
	f := newFixture(t)
	mux := newTestMux(f)
	sess := f.start(t, "host@example.com", "")
	base := "/v1/sessions/" + sess.ID.String()

	_, v := do(t, mux, http.MethodPost, base+"/retreat", ``)
	assert.Equal(t, 0, v.CurrentIndex)

	do(t, mux, http.MethodPost, base+"/answer", `{"answer":"B"}`)
	_, v = do(t, mux, http.MethodPost, base+"/advance", ``)
	assert.Equal(t, 1, v.CurrentIndex)
	assert.True(t, v.CanRetreat)

	_, v = do(t, mux, http.MethodPost, base+"/retreat", ``)
	assert.Equal(t, 0, v.CurrentIndex)
	assert.Equal(t, "B", v.Question.Selected)
}

func TestHTTPErrors(t *testing.T) {
	f := newFixture(t)
	mux := newTestMux(f)
	sess := f.start(t, "host@example.com", "")
	base := "/v1/sessions/" + sess.ID.String()

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   string
	}{
		{"bad json", http.MethodPost, "/v1/sessions", `{`, http.StatusBadRequest, "invalid_request"},
		{"missing token", http.MethodPost, "/v1/sessions", `{}`, http.StatusBadRequest, "missing_field"},
		{"malformed handoff", http.MethodPost, "/v1/sessions", `{"handoffToken":"nope"}`, http.StatusUnprocessableEntity, "malformed_quiz_data"},
		{"bad id", http.MethodGet, "/v1/sessions/not-a-uuid", ``, http.StatusNotFound, "session_not_found"},
		{"unknown id", http.MethodGet, "/v1/sessions/00000000-0000-0000-0000-000000000000", ``, http.StatusNotFound, "session_not_found"},
		{"empty answer", http.MethodPost, base + "/answer", `{"answer":""}`, http.StatusBadRequest, "missing_field"},
		{"bad index", http.MethodPost, base + "/results/x/toggle", ``, http.StatusBadRequest, "invalid_index"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, _ := do(t, mux, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.status, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error":"`+tc.code+`"`)
		})
	}
}

func TestHTTPMalformedHandoffRedirects(t *testing.T) {
	f := newFixture(t)
	rec, _ := do(t, newTestMux(f), http.MethodPost, "/v1/sessions", `{"handoffToken":"nope"}`)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "/", body["redirect"])
}

func TestHTTPBusySession(t *testing.T) {
	f := newFixture(t)
	sess := f.start(t, "host@example.com", "")
	unlock, err := f.store.Lock(context.Background(), sess.ID)
	require.NoError(t, err)
	defer unlock()

	rec, _ := do(t, newTestMux(f), http.MethodPost, "/v1/sessions/"+sess.ID.String()+"/advance", ``)
	assert.Equal(t, http.StatusConflict, rec.Code)
}
