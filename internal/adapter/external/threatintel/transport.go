package threatintel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultTimeout  = 10 * time.Second
	maxResponseSize = 10 * 1024 * 1024 // 10 MB
)

// httpResponse is what a provider call returns when the transport succeeded
type httpResponse struct {
	StatusCode int
	Body       []byte
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// doRequest performs a single outbound call. Any error returned is a
// transport failure; HTTP error statuses are returned as a response.
func doRequest(ctx context.Context, client *http.Client, method, reqURL string, body io.Reader, headers map[string]string) (*httpResponse, error) {
	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return &httpResponse{StatusCode: resp.StatusCode, Body: data}, nil
}

// decodeObject decodes a JSON object body. A literal null yields a nil map.
func decodeObject(body []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	switch v := payload.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return v, nil
	default:
		return nil, fmt.Errorf("decode response: expected JSON object, got %T", payload)
	}
}
