package trivia

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"welcomewindow/backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(config.TriviaConfig{BaseURL: srv.URL + "/api.php", TimeoutSeconds: 2})
}

func TestQuestions_DecodesEntities(t *testing.T) {
	var query map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query = map[string]string{
			"amount":     r.URL.Query().Get("amount"),
			"category":   r.URL.Query().Get("category"),
			"difficulty": r.URL.Query().Get("difficulty"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response_code":0,"results":[{
			"category":"Science &amp; Nature","type":"multiple","difficulty":"easy",
			"question":"What is &quot;H2O&quot;?","correct_answer":"Water",
			"incorrect_answers":["Salt","Sugar &#039;cane&#039;","Sand"]}]}`))
	})

	qs := c.Questions(context.Background(), Params{Amount: 500, Category: 17, Difficulty: "easy"})
	require.Len(t, qs, 1)
	assert.Equal(t, `What is "H2O"?`, qs[0].Question)
	assert.Equal(t, "Science & Nature", qs[0].Category)
	assert.Equal(t, []string{"Salt", "Sugar 'cane'", "Sand"}, qs[0].IncorrectAnswers)

	assert.Equal(t, "50", query["amount"])
	assert.Equal(t, "17", query["category"])
	assert.Equal(t, "easy", query["difficulty"])
}

func TestQuestions_OmitsEmptyFilters(t *testing.T) {
	var raw string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		raw = r.URL.RawQuery
		w.Write([]byte(`{"response_code":0,"results":[]}`))
	})

	qs := c.Questions(context.Background(), Params{})
	assert.NotNil(t, qs)
	assert.Empty(t, qs)
	assert.Equal(t, "amount=10", raw)
}

func TestQuestions_FailuresYieldEmptyList(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"response code": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"response_code":1,"results":[]}`))
		},
		"server error": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		},
		"bad json": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<html>`))
		},
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			qs := newTestClient(t, h).Questions(context.Background(), Params{Amount: 5})
			assert.NotNil(t, qs)
			assert.Empty(t, qs)
		})
	}
}

func TestQuestions_Unreachable(t *testing.T) {
	c := NewClient(config.TriviaConfig{BaseURL: "http://127.0.0.1:1/api.php", TimeoutSeconds: 1})
	assert.Empty(t, c.Questions(context.Background(), Params{Amount: 1}))
}
