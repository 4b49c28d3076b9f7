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


package retry

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"math/rand/v2"
	"net"
	"time"
)

// Config tunes the backoff envelope.
type Config struct {
	// MaxRetries is the number of retries after the first attempt.
	// An operation runs at most MaxRetries+1 times.
	MaxRetries int
	// BaseDelay is the sleep before the first retry.
	BaseDelay time.Duration
	// MaxDelay caps the exponential growth.
	MaxDelay time.Duration
	// Factor is the exponential growth factor per attempt.
	Factor float64
	// Jitter is the fractional spread applied to each sleep, e.g. 0.25
	// sleeps between 75% and 125% of the computed delay.
	Jitter float64
	// RetriableStatuses is the set of HTTP status codes worth retrying.
	RetriableStatuses map[int]bool
}

// DefaultConfig returns the envelope used for all outbound calls unless
// overridden: 3 retries, 500ms base, 30s cap, doubling, 25% jitter.
func DefaultConfig() Config {
	return Config{
		MaxRetries: 3,
		BaseDelay:  500 * time.Millisecond,
		MaxDelay:   30 * time.Second,
		Factor:     2.0,
		Jitter:     0.25,
		RetriableStatuses: map[int]bool{
			429: true,
			500: true,
			502: true,
			503: true,
			504: true,
		},
	}
}

// Retriable reports whether err is worth another attempt.
//
// The check order is load-bearing: transport categories (connection
// failures, timeouts) are classified first, and the status-code check
// applies only to *HTTPError values. Everything else is permanent.
func (c Config) Retriable(err error) bool {
	if err == nil {
		return false
	}

	// Timeouts and connection failures. context.DeadlineExceeded
	// satisfies net.Error, so per-call deadlines land here; a canceled
	// context does not and propagates immediately.
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	// Status codes only matter for responses that actually arrived.
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return c.RetriableStatuses[httpErr.StatusCode]
	}

	return false
}

// Do runs operation under the backoff envelope.
//
// A retriable failure sleeps min(BaseDelay*Factor^attempt, MaxDelay)
// with +-Jitter spread, then tries again, up to MaxRetries retries; the
// last failure is returned on exhaustion. A non-retriable failure is
// returned immediately without consuming a retry. Callers needing a
// result capture it in the closure:
//
//	var issues []core.Issue
//	err := retry.Do(ctx, cfg, func() error {
//		var err error
//		issues, err = client.fetchPage(ctx, q)
//		return err
//	})
func Do(ctx context.Context, cfg Config, operation func() error) error {
	if cfg.MaxRetries < 0 {
		return ErrInvalidMaxRetries
	}

	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		// Check context before attempting
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		lastErr = operation()
		if lastErr == nil {
			if attempt > 0 {
				slog.Debug("operation succeeded after retry", "attempt", attempt+1)
			}
			return nil
		}

		if !cfg.Retriable(lastErr) {
			return lastErr
		}

		// Don't sleep after the last attempt
		if attempt == cfg.MaxRetries {
			break
		}

		delay := cfg.backoff(attempt)
		slog.Debug("operation failed, will retry",
			"attempt", attempt+1, "maxAttempts", cfg.MaxRetries+1, "delay", delay, "err", lastErr)

		// Sleep with context awareness
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			// Continue to next attempt
		}
	}

	return lastErr
}

// backoff computes the jittered delay before retry number attempt+1.
func (c Config) backoff(attempt int) time.Duration {
	factor := c.Factor
	if factor <= 0 {
		factor = 2.0
	}

	delay := float64(c.BaseDelay) * math.Pow(factor, float64(attempt))
	if c.MaxDelay > 0 && delay > float64(c.MaxDelay) {
		delay = float64(c.MaxDelay)
	}

	if c.Jitter > 0 {
		// Uniform spread in [1-Jitter, 1+Jitter).
		delay *= 1 + c.Jitter*(2*rand.Float64()-1)
	}

	if delay < 0 {
		delay = 0
	}
	return time.Duration(delay)
}
