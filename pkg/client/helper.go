package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/darmiel/rtcmint/internal/api/middleware"
	"github.com/darmiel/rtcmint/internal/api/presenter"
)

type APIError struct {
	StatusCode    int
	CorrelationID string
	Message       string
}

func (e APIError) Error() string {
	return fmt.Sprintf("api error: '%s' (status: %d, correlation: %s)", e.Message, e.StatusCode, e.CorrelationID)
}

func (c *Client) get(ctx context.Context, url string, result any) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	return c.do(req, result)
}

func (c *Client) post(ctx context.Context, url string, payload, result any) (string, error) {
	var body io.Reader
	if payload != nil {
		bodyBytes, err := json.Marshal(payload)
		if err != nil {
			return "", fmt.Errorf("marshaling payload: %w", err)
		}
		body = bytes.NewBuffer(bodyBytes)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, result)
}

func parseErrorResponse(resp *http.Response) error {
	var errResp presenter.ErrorResponse
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("request failed with status %d and unreadable body: %w", resp.StatusCode, err)
	}
	apiErr := APIError{
		StatusCode:    resp.StatusCode,
		CorrelationID: correlationFromResponse(resp),
	}
	switch {
	case json.Unmarshal(body, &errResp) == nil && errResp.Error != "":
		apiErr.Message = errResp.Error
		if errResp.CorrelationID != "" {
			apiErr.CorrelationID = errResp.CorrelationID
		}
	case len(bytes.TrimSpace(body)) == 0:
		// e.g. 416, which carries no body
		apiErr.Message = http.StatusText(resp.StatusCode)
	default:
		return fmt.Errorf("api error: *unparsed '%s' (status %d)", strings.TrimSpace(string(body)), resp.StatusCode)
	}
	return apiErr
}

// send performs req. The caller owns the response body on success.
func (c *Client) send(req *http.Request) (*http.Response, error) {
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("connection failed: %w", err)
	}
	if resp.StatusCode >= 400 {
		defer func(Body io.ReadCloser) {
			_ = Body.Close()
		}(resp.Body)
		return nil, parseErrorResponse(resp)
	}
	return resp, nil
}

func (c *Client) do(req *http.Request, result any) (string, error) {
	resp, err := c.send(req)
	if err != nil {
		return correlationFromError(err), err
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return correlationFromResponse(resp), fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return correlationFromResponse(resp), nil
}

func correlationFromResponse(resp *http.Response) string {
	if resp == nil {
		return ""
	}
	return resp.Header.Get(middleware.CorrelationIDHeader)
}

func correlationFromError(err error) string {
	if apiErr, ok := err.(APIError); ok {
		return apiErr.CorrelationID
	}
	return ""
}
