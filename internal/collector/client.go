package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"time"
)

// retryableStatus lists the HTTP statuses treated as transient.
var retryableStatus = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// Client is a thin HTTP wrapper with bounded retries for transient failures.
// Retry state is per call; a single Client is safe to share across workers.
type Client struct {
	BaseURL     string
	HTTP        *http.Client
	MaxRetries  int
	BackoffBase time.Duration
	BackoffCap  time.Duration

	sleep func(time.Duration)
}

// NewClient creates a client for the given REST base URL.
func NewClient(baseURL string, maxRetries int, backoffBase, backoffCap time.Duration) *Client {
	return &Client{
		BaseURL:     baseURL,
		HTTP:        &http.Client{Timeout: 30 * time.Second},
		MaxRetries:  maxRetries,
		BackoffBase: backoffBase,
		BackoffCap:  backoffCap,
		sleep:       time.Sleep,
	}
}

// GetJSON performs a GET against endpoint with the given query and decodes
// the JSON response body into target. Transient failures (connection errors
// and statuses 429/500/502/503/504) are retried with capped exponential
// backoff plus jitter; other non-2xx statuses fail immediately with a
// StatusError. Hitting the retry ceiling returns a RetryExhaustedError.
func (c *Client) GetJSON(ctx context.Context, endpoint string, query url.Values, target interface{}) error {
	u, err := url.Parse(c.BaseURL + endpoint)
	if err != nil {
		return fmt.Errorf("build url: %w", err)
	}
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var lastErr error
	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		if attempt > 0 {
			c.sleep(c.backoff(attempt - 1))
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.HTTP.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = fmt.Errorf("http GET %s: %w", endpoint, err)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			resp.Body.Close()
			statusErr := &StatusError{Code: resp.StatusCode, Body: string(body)}
			if retryableStatus[resp.StatusCode] {
				lastErr = statusErr
				continue
			}
			return statusErr
		}

		err = json.NewDecoder(resp.Body).Decode(target)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("decode %s: %w", endpoint, err)
		}
		return nil
	}

	return &RetryExhaustedError{Attempts: c.MaxRetries + 1, Last: lastErr}
}

// backoff returns base × 2^attempt capped, plus up to 50% jitter so
// concurrent workers do not retry in lockstep.
func (c *Client) backoff(attempt int) time.Duration {
	d := c.BackoffBase << uint(attempt)
	if d > c.BackoffCap || d <= 0 {
		d = c.BackoffCap
	}
	return d + time.Duration(rand.Int63n(int64(d)/2+1))
}
