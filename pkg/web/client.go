package web

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"webdl/pkg/errors"
	"webdl/pkg/logger"
)

// DefaultTimeout bounds every request when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// Response is an HTTP response reduced to what the downloader consumes.
// Any received response is returned as-is; deciding what to do with a
// non-200 status is the caller's job.
type Response struct {
	StatusCode int
	Body       []byte
}

// Client performs GET requests with a fixed set of identifying headers
// and a bounded timeout.
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	logger     logger.Logger
}

// NewClient creates a web client. A zero timeout falls back to
// DefaultTimeout.
func NewClient(userAgent string, timeout time.Duration, log logger.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.GetLogger()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers: map[string]string{
			"User-Agent": userAgent,
		},
		logger: log,
	}
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// SetHeaders sets multiple headers at once
func (c *Client) SetHeaders(headers map[string]string) {
	for key, value := range headers {
		c.headers[key] = value
	}
}

// Get fetches the URL and returns the raw status and body. It returns a
// typed error only when no response was obtained at all: an invalid URL,
// a connection failure, or the request timing out.
func (c *Client) Get(ctx context.Context, rawURL string) (*Response, error) {
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return nil, errors.New(errors.ErrorTypeInvalidInput,
			fmt.Sprintf("invalid URL %q: %v", rawURL, err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, errors.New(errors.ErrorTypeInvalidInput,
			fmt.Sprintf("failed to build request for %q: %v", rawURL, err))
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"url": rawURL,
	})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.DebugWithFields("HTTP request failed", map[string]interface{}{
			"url":      rawURL,
			"error":    err.Error(),
			"duration": time.Since(start),
		})
		var netErr net.Error
		if stderrors.As(err, &netErr) && netErr.Timeout() {
			return nil, errors.New(errors.ErrorTypeUnknown,
				fmt.Sprintf("request to %q timed out after %s", rawURL, c.httpClient.Timeout))
		}
		return nil, errors.New(errors.ErrorTypeUnknown,
			fmt.Sprintf("connection to %q failed: %v", rawURL, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.New(errors.ErrorTypeUnknown,
			fmt.Sprintf("failed to read response body from %q: %v", rawURL, err))
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"url":      rawURL,
		"status":   resp.StatusCode,
		"bytes":    len(body),
		"duration": time.Since(start),
	})

	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}
