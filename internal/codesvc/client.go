// Package codesvc is the HTTP client for the external event-coding engine:
// one parsed sentence in, event tuples and issue tags out.
package codesvc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/civicsignal/augur/pkg/augur/pipeline"
)

const defaultTimeout = 10 * time.Second

// Client calls the coding engine. Same one-call, no-retry discipline as the
// parser client.
type Client struct {
	BaseURL string
	Timeout time.Duration

	HTTPClient *http.Client
}

type codeRequest struct {
	Parse string `json:"parse"`
}

type codeResponse struct {
	Events []pipeline.Event `json:"events"`
	Issues []pipeline.Issue `json:"issues"`
	Error  *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Code sends one parsed sentence and returns the extracted events and
// issues. Zero events with a 200 response is a valid outcome, not a failure.
func (c *Client) Code(ctx context.Context, tree string) (pipeline.CodeOutput, error) {
	if c.BaseURL == "" {
		return pipeline.CodeOutput{}, fmt.Errorf("codesvc: base URL required")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()

	reqBody, err := json.Marshal(codeRequest{Parse: tree})
	if err != nil {
		return pipeline.CodeOutput{}, fmt.Errorf("codesvc: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(reqBody))
	if err != nil {
		return pipeline.CodeOutput{}, fmt.Errorf("codesvc: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return pipeline.CodeOutput{}, &pipeline.Failure{Stage: "code", Reason: pipeline.ReasonTimeout, Err: err}
		}
		return pipeline.CodeOutput{}, &pipeline.Failure{Stage: "code", Reason: pipeline.ReasonInvalidResponse, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return pipeline.CodeOutput{}, &pipeline.Failure{
			Stage:  "code",
			Reason: pipeline.ReasonInvalidResponse,
			Err:    fmt.Errorf("status %d", resp.StatusCode),
		}
	}

	var payload codeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return pipeline.CodeOutput{}, &pipeline.Failure{Stage: "code", Reason: pipeline.ReasonInvalidResponse, Err: err}
	}
	if payload.Error != nil {
		return pipeline.CodeOutput{}, &pipeline.Failure{
			Stage:  "code",
			Reason: pipeline.ReasonInvalidResponse,
			Err:    fmt.Errorf("service error: %s", payload.Error.Message),
		}
	}

	return pipeline.CodeOutput{Events: payload.Events, Issues: payload.Issues}, nil
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
