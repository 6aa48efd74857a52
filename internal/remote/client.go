// Package remote implements the repository interfaces over the data
// service's HTTP API. A host shell that does not embed MongoDB wires these
// into the scheduler, cloner, and session runtime instead of the mongo
// repositories.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"alcyxob/coaching-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Client talks to one data-service base URL with one bearer token.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a client. The token comes from the data service's login
// endpoint; the host shell owns refreshing it.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) Exercises() repository.ExerciseRepository       { return &exerciseClient{c} }
func (c *Client) Templates() repository.TemplateRepository       { return &templateClient{c} }
func (c *Client) Assignments() repository.AssignmentRepository   { return &assignmentClient{c} }
func (c *Client) Sessions() repository.SessionRepository         { return &sessionClient{c} }
func (c *Client) ExerciseLogs() repository.ExerciseLogRepository { return &logClient{c} }

// apiError is the service's JSON error envelope.
type apiError struct {
	Error string `json:"error"`
}

// do performs one request. A 404 maps to repository.ErrNotFound so callers
// keep the same errors.Is checks they use against the mongo layer.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return repository.ErrNotFound
	case resp.StatusCode >= 400:
		var apiErr apiError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("data service: %s (%d)", apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("data service: unexpected status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

// decodeItems accepts both list shapes the service may produce: the
// {"items": [...], "count": n} envelope or a bare JSON array.
func decodeItems[T any](data []byte) ([]T, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, err
		}
		return items, nil
	}
	var envelope struct {
		Items []T `json:"items"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, err
	}
	return envelope.Items, nil
}

// getList performs a GET and decodes either list shape.
func getList[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, path, query, nil, &raw); err != nil {
		return nil, err
	}
	return decodeItems[T](raw)
}

func idQuery(key string, id primitive.ObjectID) url.Values {
	q := url.Values{}
	q.Set(key, id.Hex())
	return q
}
