// Package trivia fetches quiz questions from the Open Trivia Database.
package trivia

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"welcomewindow/backend/internal/config"
)

// Question is one decoded trivia question.
type Question struct {
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
	Category         string   `json:"category"`
	Difficulty       string   `json:"difficulty"`
	Type             string   `json:"type"`
}

// Params selects the questions. Zero values are left out of the request.
type Params struct {
	Amount     int
	Category   int
	Difficulty string
}

type apiResponse struct {
	ResponseCode int        `json:"response_code"`
	Results      []Question `json:"results"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient Constructor
func NewClient(cfg config.TriviaConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
	}
}

// Questions never fails: upstream errors and non-zero response codes are
// logged and yield an empty list.
func (c *Client) Questions(ctx context.Context, p Params) []Question {
	out, err := c.fetch(ctx, p)
	if err != nil {
		log.Printf("WARN: [Trivia] failed to fetch questions: %v", err)
		return []Question{}
	}
	return out
}

func (c *Client) fetch(ctx context.Context, p Params) ([]Question, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("bad base url: %w", err)
	}
	q := u.Query()
	q.Set("amount", strconv.Itoa(clampAmount(p.Amount)))
	if p.Category > 0 {
		q.Set("category", strconv.Itoa(p.Category))
	}
	if p.Difficulty != "" {
		q.Set("difficulty", p.Difficulty)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if body.ResponseCode != 0 {
		return nil, fmt.Errorf("response code %d", body.ResponseCode)
	}

	out := make([]Question, 0, len(body.Results))
	for _, r := range body.Results {
		incorrect := make([]string, 0, len(r.IncorrectAnswers))
		for _, a := range r.IncorrectAnswers {
			incorrect = append(incorrect, html.UnescapeString(a))
		}
		out = append(out, Question{
			Question:         html.UnescapeString(r.Question),
			CorrectAnswer:    html.UnescapeString(r.CorrectAnswer),
			IncorrectAnswers: incorrect,
			Category:         html.UnescapeString(r.Category),
			Difficulty:       r.Difficulty,
			Type:             r.Type,
		})
	}
	return out, nil
}

func clampAmount(n int) int {
	switch {
	case n <= 0:
		return 10
	case n > config.TriviaMaxAmount:
		return config.TriviaMaxAmount
	}
	return n
}
