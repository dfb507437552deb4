// Package parsesvc is the HTTP client for the external constituency parsing
// service: one sentence in, one parse tree out.
package parsesvc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/civicsignal/augur/pkg/augur/pipeline"
)

const defaultTimeout = 10 * time.Second

// Client calls the parsing service. One outbound request per Parse call; no
// retries at this layer.
type Client struct {
	BaseURL string
	Timeout time.Duration

	HTTPClient *http.Client
}

type parseRequest struct {
	Text string `json:"text"`
}

type parseResponse struct {
	Parse string `json:"parse"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Parse sends one sentence and returns its normalized parse tree. Failures
// come back as *pipeline.Failure with reason "timeout" or
// "invalid-response"; any other error means the client is misconfigured.
func (c *Client) Parse(ctx context.Context, sentence string) (string, error) {
	if c.BaseURL == "" {
		return "", fmt.Errorf("parsesvc: base URL required")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()

	reqBody, err := json.Marshal(parseRequest{Text: sentence})
	if err != nil {
		return "", fmt.Errorf("parsesvc: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("parsesvc: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", &pipeline.Failure{Stage: "parse", Reason: pipeline.ReasonTimeout, Err: err}
		}
		return "", &pipeline.Failure{Stage: "parse", Reason: pipeline.ReasonInvalidResponse, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &pipeline.Failure{
			Stage:  "parse",
			Reason: pipeline.ReasonInvalidResponse,
			Err:    fmt.Errorf("status %d", resp.StatusCode),
		}
	}

	var payload parseResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", &pipeline.Failure{Stage: "parse", Reason: pipeline.ReasonInvalidResponse, Err: err}
	}
	if payload.Error != nil {
		return "", &pipeline.Failure{
			Stage:  "parse",
			Reason: pipeline.ReasonInvalidResponse,
			Err:    fmt.Errorf("service error: %s", payload.Error.Message),
		}
	}
	if strings.TrimSpace(payload.Parse) == "" {
		return "", &pipeline.Failure{
			Stage:  "parse",
			Reason: pipeline.ReasonInvalidResponse,
			Err:    fmt.Errorf("empty parse"),
		}
	}

	return NormalizeTree(payload.Parse), nil
}

// NormalizeTree upper-cases a constituency tree and detaches closing
// parentheses, the form the coding engine expects.
func NormalizeTree(tree string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(tree)), ")", " )")
}

func (c *Client) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return defaultTimeout
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}
