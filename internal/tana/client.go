// Package tana submits payloads to the Tana Input API.
package tana

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gerunddev/text2tana/internal/payload"
)

// DefaultEndpoint is the Tana Input API addToNode endpoint
const DefaultEndpoint = "https://europe-west1-tagr-prod.cloudfunctions.net/addToNodeV2"

var (
	// ErrUnauthorized is returned when the API rejects the token
	ErrUnauthorized = errors.New("tana: unauthorized")
	// ErrStatus is returned for any other non-2xx response
	ErrStatus = errors.New("tana: unexpected status")
)

// Client posts payloads to the Input API.
type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

// NewClient creates a client. An empty endpoint uses DefaultEndpoint.
func NewClient(endpoint, token string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		endpoint: endpoint,
		token:    token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Endpoint returns the URL payloads are posted to
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Submit posts p and returns the decoded JSON response body. A response
// without a body yields a nil result.
func (c *Client) Submit(ctx context.Context, p payload.Payload) (any, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("submit payload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("%w: status %d", ErrUnauthorized, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w %d: %s", ErrStatus, resp.StatusCode, string(respBody))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var result any
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return result, nil
}
