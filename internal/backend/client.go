// Package backend provides the HTTP client for the chat completion
// endpoint. The wire contract: POST {query, model} where query is the
// newline-joined "role: content" transcript; 200 returns {data}, 429
// returns {remainingTime} and surfaces as a [RateLimitError], anything
// else is a plain failure carrying the HTTP status text.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to a chat completion endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a completion client for the given endpoint URL.
func NewClient(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 2 * time.Minute, // Large models need time
		},
	}
}

// RateLimitError reports a 429 response from the completion endpoint.
type RateLimitError struct {
	// RemainingTime is the number of seconds until the limit resets.
	RemainingTime int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited: retry in %d seconds", e.RemainingTime)
}

// completionRequest is the request body for the completion endpoint.
type completionRequest struct {
	Query string `json:"query"`
	Model string `json:"model"`
}

// completionResponse is the success payload.
type completionResponse struct {
	Data string `json:"data"`
}

// rateLimitResponse is the 429 payload.
type rateLimitResponse struct {
	RemainingTime int `json:"remainingTime"`
}

// Complete sends the flattened transcript and model to the completion
// endpoint and returns the response text. An empty success payload is
// replaced with a fixed fallback so the caller never resolves a
// placeholder to empty content. A 429 returns a *RateLimitError.
func (c *Client) Complete(ctx context.Context, query, model string) (string, error) {
	jsonData, err := json.Marshal(completionRequest{Query: query, Model: model})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		var limited rateLimitResponse
		if err := json.NewDecoder(resp.Body).Decode(&limited); err != nil {
			return "", fmt.Errorf("decode rate limit response: %w", err)
		}
		return "", &RateLimitError{RemainingTime: limited.RemainingTime}
	}

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("%s", http.StatusText(resp.StatusCode))
	}

	var completion completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if completion.Data == "" {
		return "No response from AI.", nil
	}
	return completion.Data, nil
}
