package kalshi

// client.go — signed HTTP client for the Kalshi exchange API.
//
// Every network call goes through one request primitive that signs the
// request, rate-limits, and retries transient transport failures with
// exponential backoff (1s, 2s, 4s). Business-level rejections (any non-2xx
// with a body) fail fast as APIError. POSTs are never retried: order
// placement has no idempotency key, so a retry after an ambiguous failure
// could double-place.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/alejandrodnm/kalshibot/internal/domain"
)

const (
	defaultBaseURL = "https://api.elections.kalshi.com/v1"

	maxRetries    = 3
	baseRetryWait = 1 * time.Second

	// Conservative fraction of Kalshi's documented limits.
	requestsPerSec = 10
	requestBurst   = 10
)

// Client is the signed Kalshi API client. Construct it with NewClient; a nil
// error guarantees credentials were readable and the signing key parsed, so
// no credential problem can surface mid-trade.
type Client struct {
	http    *http.Client
	baseURL string
	tokens  *tokenSource
	limiter *rate.Limiter

	// sleep is the backoff wait, injectable so tests can skip real delays.
	sleep func(ctx context.Context, d time.Duration)
}

// NewClient builds a client from the credential file at credentialsPath.
// Returns a ConfigError when credentials are missing or invalid.
func NewClient(baseURL, credentialsPath string, timeout time.Duration) (*Client, error) {
	creds, key, err := LoadCredentials(credentialsPath)
	if err != nil {
		return nil, err
	}

	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
		tokens:  newTokenSource(creds.APIKeyID, key),
		limiter: rate.NewLimiter(requestsPerSec, requestBurst),
		sleep:   sleepCtx,
	}, nil
}

// get performs a GET with the full retry budget.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, query, nil, maxRetries)
}

// post performs a single-attempt POST. See the idempotency note above.
func (c *Client) post(ctx context.Context, path string, body any) ([]byte, error) {
	return c.do(ctx, http.MethodPost, path, nil, body, 1)
}

// do is the single request primitive. attempts bounds the retry loop; only
// transport failures and 429s consume retries.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, attempts int) ([]byte, error) {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("kalshi: marshal body: %w", err)
		}
		payload = b
	}

	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("kalshi: rate limiter: %w", err)
		}

		token, err := c.tokens.Token()
		if err != nil {
			return nil, err
		}

		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
		if err != nil {
			return nil, fmt.Errorf("kalshi: new request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			// Connection failure or timeout: the only retryable kind.
			lastErr = err
			if attempt < attempts {
				c.backoff(ctx, attempt, path, err)
				continue
			}
			break
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			lastErr = fmt.Errorf("rate limited (429)")
			if attempt < attempts {
				c.backoff(ctx, attempt, path, lastErr)
				continue
			}
			break
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			if attempt < attempts {
				c.backoff(ctx, attempt, path, readErr)
				continue
			}
			break
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			// Business rejection: fail fast, no retry.
			return nil, &domain.APIError{
				Status:   resp.StatusCode,
				Endpoint: path,
				Body:     string(respBody),
			}
		}

		return respBody, nil
	}

	return nil, &domain.NetworkError{Op: method + " " + path, Attempts: attempts, Err: lastErr}
}

// backoff waits 1s, 2s, 4s for attempts 1, 2, 3, honoring ctx so shutdown
// aborts the remaining budget mid-retry.
func (c *Client) backoff(ctx context.Context, attempt int, path string, cause error) {
	wait := baseRetryWait << (attempt - 1)
	slog.Warn("kalshi: transient error, retrying",
		"path", path,
		"attempt", attempt,
		"wait", wait,
		"err", cause,
	)
	c.sleep(ctx, wait)
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
