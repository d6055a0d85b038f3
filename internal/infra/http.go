package infra

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrHTTP wraps an HTTP error with status code.
type ErrHTTP struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *ErrHTTP) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Status, e.Body)
}

// IsNotFound reports whether err is an HTTP 404.
func IsNotFound(err error) bool {
	var he *ErrHTTP
	return errors.As(err, &he) && he.StatusCode == http.StatusNotFound
}

// defaultTimeout bounds requests made without a caller-supplied client.
const defaultTimeout = 30 * time.Second

// DoGetWithClient performs a GET request with the given URL and headers, returning the response body.
// The caller is responsible for closing the returned ReadCloser.
func DoGetWithClient(ctx context.Context, client *http.Client, url string, headers map[string]string) (io.ReadCloser, int, error) {
	return do(ctx, client, http.MethodGet, url, nil, headers)
}

// DoPost sends body to url with the given client and headers and discards the response.
func DoPost(ctx context.Context, client *http.Client, url string, body []byte, headers map[string]string) (int, error) {
	rc, status, err := do(ctx, client, http.MethodPost, url, bytes.NewReader(body), headers)
	if err != nil {
		return status, err
	}
	_, _ = io.Copy(io.Discard, rc)
	rc.Close()
	return status, nil
}

func do(ctx context.Context, client *http.Client, method, url string, body io.Reader, headers map[string]string) (io.ReadCloser, int, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json, text/html, */*")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("HTTP %s %s: %w", method, url, err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, resp.StatusCode, &ErrHTTP{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(b),
		}
	}

	return resp.Body, resp.StatusCode, nil
}
