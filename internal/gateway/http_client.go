package gateway

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/Abhishek-Anvekar/healthcare/config"
	"github.com/sirupsen/logrus"
)

// httpClient wraps the shared outbound HTTP plumbing of the gateways: one
// transport timeout per call plus a small bounded retry on transport errors
// and gateway-class 5xx responses. Application errors are never retried.
type httpClient struct {
	client   *http.Client
	log      *logrus.Logger
	attempts int
	backoff  time.Duration
}

func newHTTPClient(cfg config.ServicesConfig, log *logrus.Logger) *httpClient {
	attempts := cfg.RetryAttempts + 1
	if attempts < 1 {
		attempts = 1
	}
	return &httpClient{
		client:   &http.Client{Timeout: cfg.RequestTimeout},
		log:      log,
		attempts: attempts,
		backoff:  cfg.RetryBackoff,
	}
}

func retryableStatus(code int) bool {
	return code == http.StatusBadGateway || code == http.StatusServiceUnavailable || code == http.StatusGatewayTimeout
}

// do executes the request, retrying with linear backoff, and returns the
// status code and body of the last response.
func (c *httpClient) do(ctx context.Context, method, url string, body []byte) (int, []byte, error) {
	var lastErr error

	for attempt := 0; attempt < c.attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return 0, nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * c.backoff):
			}
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return 0, nil, err
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			c.log.Warnf("Outbound %s %s failed (attempt %d/%d): %v", method, url, attempt+1, c.attempts, err)
			continue
		}

		data, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if retryableStatus(resp.StatusCode) {
			lastErr = nil
			c.log.Warnf("Outbound %s %s returned %d (attempt %d/%d)", method, url, resp.StatusCode, attempt+1, c.attempts)
			continue
		}

		return resp.StatusCode, data, nil
	}

	if lastErr != nil {
		return 0, nil, lastErr
	}
	return http.StatusServiceUnavailable, nil, nil
}
