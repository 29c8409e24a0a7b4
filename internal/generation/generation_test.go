package generation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/gotit/internal/llm"
	"github.com/gokatarajesh/gotit/internal/metrics"
	"github.com/gokatarajesh/gotit/internal/quiz"
)

const sampleQuiz = `{
  "title": "Sprint Review",
  "questions": [
    {"question": "What shipped?", "options": ["Search", "Billing", "Chat", "Login"], "correctAnswer": "Billing", "tooltip": "Billing went live on Tuesday."},
    {"question": "Who demoed?", "options": ["Ana", "Ben", "Cy", "Di"], "correctAnswer": "Ana", "tooltip": "Ana ran the demo."}
  ]
}`

func TestLLMGeneratorReturnsParsedQuiz(t *testing.T) {
	provider := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(sampleQuiz)})
	gen := NewLLMGenerator(provider, LLMConfig{}, zerolog.Nop())

	q, err := gen.Generate(context.Background(), "We shipped billing. Ana demoed.")
	require.NoError(t, err)
	assert.Equal(t, "Sprint Review", q.Title)
	assert.Equal(t, 2, q.Len())

	require.Equal(t, 1, provider.CallCount())
	call := provider.Calls[0]
	assert.Equal(t, QuizSchema, call.Schema)
	require.Len(t, call.Messages, 1)
	assert.Contains(t, call.Messages[0].Content, "5-question quiz")
	assert.Contains(t, call.Messages[0].Content, "We shipped billing.")
}

func TestLLMGeneratorProviderFailure(t *testing.T) {
	provider := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("503")}})
	gen := NewLLMGenerator(provider, LLMConfig{}, zerolog.Nop())

	_, err := gen.Generate(context.Background(), "transcript")
	assert.ErrorIs(t, err, ErrGenerationFailed)

	var unavail *llm.ErrProviderUnavailable
	assert.ErrorAs(t, err, &unavail)
}

func TestLLMGeneratorMalformedOutput(t *testing.T) {
	provider := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{}`)})
	gen := NewLLMGenerator(provider, LLMConfig{}, zerolog.Nop())

	_, err := gen.Generate(context.Background(), "transcript")
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.ErrorIs(t, err, quiz.ErrMalformedQuizData)
}

type slowProvider struct{}

func (slowProvider) Generate(ctx context.Context, _ llm.Request) (*llm.Response, error) {
	<-ctx.Done()
	return nil, &llm.ErrProviderUnavailable{Err: ctx.Err()}
}

func (slowProvider) ModelID() string { return "slow" }

func TestLLMGeneratorTimeout(t *testing.T) {
	gen := NewLLMGenerator(slowProvider{}, LLMConfig{Timeout: 20 * time.Millisecond}, zerolog.Nop())

	start := time.Now()
	_, err := gen.Generate(context.Background(), "transcript")
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestHTTPGenerator(t *testing.T) {
	var gotAuth string
	var gotBody generatorRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/generate", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleQuiz))
	}))
	defer server.Close()

	gen := NewHTTPGenerator(HTTPConfig{GeneratorURL: server.URL + "/", GeneratorKey: "secret"}, zerolog.Nop())
	q, err := gen.Generate(context.Background(), "hello")
	require.NoError(t, err)

	assert.Equal(t, "Sprint Review", q.Title)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "hello", gotBody.Transcript)
}

func TestHTTPGeneratorFailures(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		_, err := NewHTTPGenerator(HTTPConfig{GeneratorURL: server.URL}, zerolog.Nop()).Generate(context.Background(), "t")
		assert.ErrorIs(t, err, ErrGenerationFailed)
	})

	t.Run("timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
		}))
		defer server.Close()

		gen := NewHTTPGenerator(HTTPConfig{GeneratorURL: server.URL, Timeout: 20 * time.Millisecond}, zerolog.Nop())
		_, err := gen.Generate(context.Background(), "t")
		assert.ErrorIs(t, err, ErrGenerationFailed)
	})

	t.Run("unconfigured", func(t *testing.T) {
		_, err := NewHTTPGenerator(HTTPConfig{}, zerolog.Nop()).Generate(context.Background(), "t")
		assert.ErrorIs(t, err, ErrGenerationFailed)
	})
}

func TestWithMetricsPassesThrough(t *testing.T) {
	provider := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(sampleQuiz)})
	m := metrics.New(prometheus.NewRegistry())
	gw := WithMetrics(NewLLMGenerator(provider, LLMConfig{}, zerolog.Nop()), "llm", m)

	q, err := gw.Generate(context.Background(), "t")
	require.NoError(t, err)
	assert.Equal(t, "Sprint Review", q.Title)
}
