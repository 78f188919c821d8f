// Package client talks to the feedback API over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	mxm "github.com/Daneel-Li/feedback-board/internal/models"
	"github.com/Daneel-Li/feedback-board/pkg/utils"
)

// APIError is a non-2xx answer from the server. Message is the server's
// "error" field when it sent one.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Health is the /api/health payload.
type Health struct {
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for baseURL, e.g. "http://localhost:4000".
// A nil httpClient uses a client with a 10s timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.doJSON(ctx, http.MethodGet, "/api/health", nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

func (c *Client) CreateFeedback(ctx context.Context, in mxm.FeedbackInput) (*mxm.Feedback, error) {
	var fb mxm.Feedback
	if err := c.doJSON(ctx, http.MethodPost, "/api/feedback", in, &fb); err != nil {
		return nil, err
	}
	return &fb, nil
}

func (c *Client) ListFeedback(ctx context.Context) ([]*mxm.Feedback, error) {
	var list []*mxm.Feedback
	if err := c.doJSON(ctx, http.MethodGet, "/api/feedback", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) Stats(ctx context.Context) (*mxm.Stats, error) {
	var st mxm.Stats
	if err := c.doJSON(ctx, http.MethodGet, "/api/stats", nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// DownloadExport copies the server-rendered CSV export into w.
func (c *Client) DownloadExport(ctx context.Context, w io.Writer) error {
	resp, err := c.do(ctx, http.MethodGet, "/api/feedback/export", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("read export failed: %w", err)
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request failed: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response failed: %w", path, err)
	}
	return nil
}

// do sends the request and turns non-2xx responses into *APIError.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	var eb utils.ErrorBody
	if raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10)); err == nil {
		if json.Unmarshal(raw, &eb) == nil && eb.Error != "" {
			apiErr.Message = eb.Error
		}
	}
	return nil, apiErr
}
