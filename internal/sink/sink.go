// Package sink sends one-way notifications about question submissions and
// deletions to an external spreadsheet-style endpoint.
//
// The calls are fire-and-forget: the response body is discarded, failures are
// never retried and never surfaced, because the local store has already been
// updated by the time a call leaves the process.
package sink

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"condeck/internal/model"
)

const requestTimeout = 10 * time.Second

type Sink struct {
	baseURL string
	client  *http.Client
}

// New returns a Sink posting to baseURL. An empty baseURL disables the sink;
// every notification becomes a no-op.
func New(baseURL string) *Sink {
	return &Sink{
		baseURL: baseURL,
		client:  &http.Client{Timeout: requestTimeout},
	}
}

func (s *Sink) QuestionSubmitted(entity string, q model.StoredQuestion) {
	s.send(url.Values{
		"panelist":   {entity},
		"question":   {q.Text},
		"submitter":  {q.Submitter},
		"email":      {q.Email},
		"questionId": {q.ID},
	})
}

func (s *Sink) QuestionDeleted(entity, questionID string) {
	s.send(url.Values{
		"action":     {"delete"},
		"questionId": {questionID},
		"panelist":   {entity},
	})
}

func (s *Sink) send(params url.Values) {
	if s == nil || s.baseURL == "" {
		return
	}
	full := s.baseURL + "?" + params.Encode()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, full, nil)
		if err != nil {
			return
		}
		resp, err := s.client.Do(req)
		if err != nil {
			return
		}
		// Drain so the connection can be reused; the content is ignored.
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()
}
