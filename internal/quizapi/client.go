package quizapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"quiz-client/internal/domain"
	"quiz-client/internal/logging"
)

const maxBody = 1 << 20

// Client talks to the external quiz service: GET a question, POST an answer
// to the question's next URL.
type Client struct {
	httpClient *http.Client
}

func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{httpClient: httpClient}
}

type answerRequest struct {
	Answer string `json:"answer"`
}

// FetchQuestion loads the question at rawURL. A relative next URL in the reply
// is resolved against rawURL.
func (c *Client) FetchQuestion(ctx context.Context, rawURL string) (domain.Question, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return domain.Question{}, err
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Question{}, err
	}
	defer resp.Body.Close()
	logRequest(ctx, req, resp.StatusCode, start)

	if resp.StatusCode >= 300 {
		return domain.Question{}, fmt.Errorf("quiz api non-200: %d", resp.StatusCode)
	}

	var q domain.Question
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&q); err != nil {
		return domain.Question{}, fmt.Errorf("decode question: %w", err)
	}
	q.NextURL, err = resolve(rawURL, q.NextURL)
	if err != nil {
		return domain.Question{}, err
	}
	return q, nil
}

// SubmitAnswer posts {"answer": answer} to rawURL. Error statuses are still
// decoded because the service reports a wrong answer as a JSON body without a
// next URL; only an undecodable error reply is returned as an error.
func (c *Client) SubmitAnswer(ctx context.Context, rawURL, answer string) (domain.AnswerReply, error) {
	body, err := json.Marshal(answerRequest{Answer: answer})
	if err != nil {
		return domain.AnswerReply{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(body))
	if err != nil {
		return domain.AnswerReply{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.AnswerReply{}, err
	}
	defer resp.Body.Close()
	logRequest(ctx, req, resp.StatusCode, start)

	var reply domain.AnswerReply
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&reply); err != nil {
		if resp.StatusCode >= 300 {
			return domain.AnswerReply{}, fmt.Errorf("quiz api non-200: %d", resp.StatusCode)
		}
		return domain.AnswerReply{}, fmt.Errorf("decode answer reply: %w", err)
	}
	if resp.StatusCode >= 300 {
		// Whatever the body says, an error status never continues the quiz.
		reply.NextURL = ""
		return reply, nil
	}
	reply.NextURL, err = resolve(rawURL, reply.NextURL)
	if err != nil {
		return domain.AnswerReply{}, err
	}
	return reply, nil
}

// logRequest writes a debug line through the logger carried by ctx.
func logRequest(ctx context.Context, req *http.Request, status int, start time.Time) {
	logger := logging.FromContext(ctx)
	logger.Debug().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Int("status", status).
		Dur("elapsed", time.Since(start)).
		Msg("quiz api request")
}

func resolve(base, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", nil
	}
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", base, err)
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parse next url %q: %w", ref, err)
	}
	return b.ResolveReference(r).String(), nil
}
