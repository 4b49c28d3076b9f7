// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/poiesic/tributary/retry"
)

// ClientConfig configures a connector's HTTP client.
type ClientConfig struct {
	// BaseURL is the root of the remote API, e.g. "https://tracker.example.com".
	BaseURL string

	// Token is sent as a bearer Authorization header when set.
	Token string

	// Timeout for individual requests (default: 30s).
	Timeout time.Duration

	// RateLimit is the sustained requests-per-second budget (default: 5).
	RateLimit float64

	// RateBurst is the burst allowance (default: 1).
	RateBurst int

	// Retry is the backoff envelope for each call (default: retry.DefaultConfig).
	Retry retry.Config

	// Transport allows injecting a custom HTTP transport (for tests).
	Transport http.RoundTripper
}

// Client is the rate-limited HTTP client shared by all connectors. Every
// call waits on the per-source limiter and runs under the retry envelope;
// non-2xx responses surface as *retry.HTTPError so the envelope can
// classify them by status.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	limiter *rate.Limiter
	retry   retry.Config
	logger  *slog.Logger
}

// NewClient creates a client for the given API.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, ErrBaseURLRequired
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = 5.0
	}
	if cfg.RateBurst == 0 {
		cfg.RateBurst = 1
	}
	if cfg.Retry.MaxRetries == 0 && cfg.Retry.BaseDelay == 0 {
		cfg.Retry = retry.DefaultConfig()
	}

	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: cfg.Transport,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		retry:   cfg.Retry,
		logger:  slog.Default().With("component", "source-client"),
	}, nil
}

// GetJSON fetches path with the given query parameters and decodes the
// JSON response body into target. A nil target discards the body.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, target any) error {
	return retry.Do(ctx, c.retry, func() error {
		return c.getOnce(ctx, path, query, target)
	})
}

func (c *Client) getOnce(ctx context.Context, path string, query url.Values, target any) error {
	// Each attempt takes its own limiter token so retries after a 429
	// cannot outrun the budget.
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	fullURL := c.baseURL + "/" + strings.TrimPrefix(path, "/")
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Debug("request failed", "url", fullURL, "status", resp.StatusCode)
		return retry.NewHTTPError(resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if target == nil {
		return nil
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("%w: %w", ErrDecodeResponse, err)
	}
	return nil
}
