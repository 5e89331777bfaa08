package externalmatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RelayerHTTPClient makes signed HTTP requests to the relayer API.
//
// Every request is authenticated with an HMAC signature over the exact bytes
// sent. The client performs no retries and owns no caching; a non-2xx/204
// response is surfaced verbatim as an *APIError.
type RelayerHTTPClient struct {
	baseURL string
	authKey []byte
	client  *http.Client
	now     func() time.Time
}

// NewRelayerHTTPClient creates a new relayer HTTP client. The auth key is the
// base64-encoded API secret used for request signing.
func NewRelayerHTTPClient(baseURL, authKey string) (*RelayerHTTPClient, error) {
	key, err := decodeAuthKey(authKey)
	if err != nil {
		return nil, err
	}

	return &RelayerHTTPClient{
		baseURL: baseURL,
		authKey: key,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		now: time.Now,
	}, nil
}

// PostJSON sends a signed POST request and decodes the response body into
// out. It reports false with no error when the relayer responds 204 No
// Content, which callers must treat as an explicit absence rather than a
// failure.
func (c *RelayerHTTPClient) PostJSON(ctx context.Context, path string, body interface{}, headers http.Header, out interface{}) (bool, error) {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return false, fmt.Errorf("failed to marshal request body: %w", err)
	}
	return c.doRequest(ctx, http.MethodPost, path, bodyBytes, headers, out)
}

// GetJSON sends a signed GET request and decodes the response body into out.
// It reports false with no error on 204 No Content.
func (c *RelayerHTTPClient) GetJSON(ctx context.Context, path string, headers http.Header, out interface{}) (bool, error) {
	return c.doRequest(ctx, http.MethodGet, path, nil, headers, out)
}

func (c *RelayerHTTPClient) doRequest(ctx context.Context, method, path string, body []byte, headers http.Header, out interface{}) (bool, error) {
	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}

	for name, values := range headers {
		for _, value := range values {
			req.Header.Add(name, value)
		}
	}
	req.Header.Set("Content-Type", "application/json")

	// The signature covers the path including its query string and the exact
	// body bytes written to the wire
	addAuthHeaders(c.authKey, c.now(), path, req.Header, body)

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	return decodeOptionalResponse(resp, out)
}

// decodeOptionalResponse classifies a relayer response: 200 decodes the JSON
// body into out, 204 reports absence, and anything else becomes an *APIError
// carrying the status code and raw body
func decodeOptionalResponse(resp *http.Response, out interface{}) (bool, error) {
	if resp.StatusCode == http.StatusNoContent {
		return false, nil
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body := string(bodyBytes)
		if body == "" {
			body = resp.Status
		}
		return false, &APIError{StatusCode: resp.StatusCode, Body: body}
	}

	if err := json.Unmarshal(bodyBytes, out); err != nil {
		body := string(bodyBytes)
		if len(body) > 200 {
			body = body[:200] + "..."
		}
		return false, fmt.Errorf("failed to decode JSON response: %w (body: %s)", err, body)
	}

	return true, nil
}
