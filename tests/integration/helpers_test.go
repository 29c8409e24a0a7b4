//go:build integration
// +build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
)

const sampleTranscript = `Alice: Welcome everyone. Today we decided to move the release to March 14.
Bob: The staging cluster will be migrated to the new region first.
Alice: Carol owns the migration runbook and will share it by Friday.
Bob: We also agreed to freeze feature work during the last week of February.`

type quizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

type submitResult struct {
	HandoffToken string `json:"handoffToken"`
	Quiz         struct {
		Title     string         `json:"title"`
		Questions []quizQuestion `json:"questions"`
	} `json:"quiz"`
}

type sessionView struct {
	ID            string `json:"id"`
	Phase         string `json:"phase"`
	QuestionCount int    `json:"questionCount"`
	CurrentIndex  int    `json:"currentIndex"`
	IsLast        bool   `json:"isLast"`
	Results       *struct {
		Correct  int     `json:"correct"`
		Total    int     `json:"total"`
		Percent  float64 `json:"percentage"`
		Outcome  string  `json:"outcome"`
		Notified bool    `json:"notified"`
	} `json:"results"`
}

type errorBody struct {
	Code     string `json:"error"`
	Message  string `json:"message"`
	Redirect string `json:"redirect"`
}

func envOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()

	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("request %s failed: %v", url, err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, want int, out any) {
	t.Helper()
	defer resp.Body.Close()

	if resp.StatusCode != want {
		var errResp errorBody
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		t.Fatalf("expected %d, got %d, error: %+v", want, resp.StatusCode, errResp)
	}
	if out == nil {
		return
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response failed: %v", err)
	}
}

func submitTranscript(t *testing.T, baseURL, host string) submitResult {
	t.Helper()

	resp := postJSON(t, fmt.Sprintf("%s/v1/quizzes", baseURL), map[string]string{
		"transcript": sampleTranscript,
		"hostEmail":  host,
	})
	var out submitResult
	decode(t, resp, http.StatusCreated, &out)

	if out.HandoffToken == "" {
		t.Fatal("handoff token is empty")
	}
	if len(out.Quiz.Questions) == 0 {
		t.Fatal("quiz has no questions")
	}
	return out
}

func startSession(t *testing.T, baseURL, token string) sessionView {
	t.Helper()

	resp := postJSON(t, fmt.Sprintf("%s/v1/sessions", baseURL), map[string]string{
		"handoffToken": token,
		"participant":  "integration@example.com",
	})
	var view sessionView
	decode(t, resp, http.StatusCreated, &view)
	return view
}
