// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
)

// RetryBaseDelay is the first backoff interval; each retry doubles it up to
// RetryMaxDelay. Tests override this to avoid real sleeps.
var (
	RetryBaseDelay = 1 * time.Second
	RetryMaxDelay  = 2 * time.Minute
)

const defaultMaxRetries = 5

// Retryable reports whether a status code is worth retrying: 429 and any 5xx.
func Retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// retryPolicy doubles from RetryBaseDelay without jitter, capped at
// RetryMaxDelay, and stops after maxRetries waits or when ctx is done.
func retryPolicy(ctx context.Context, maxRetries int) backoff.BackOffContext {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = RetryBaseDelay
	b.MaxInterval = RetryMaxDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(maxRetries)), ctx)
}

// DoWithRetry executes an HTTP request and retries on Retryable status codes
// with exponential backoff: RetryBaseDelay, then doubling each attempt.
//
// When maxRetries is 0 the default (5) is used. Before each retry the
// previous response body is drained and closed. Transport errors are not
// retried. If the context is cancelled during a backoff wait the function
// returns ctx.Err(). After exhausting retries the last response is returned
// so the caller can inspect it.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	policy := retryPolicy(ctx, maxRetries)

	var last *http.Response
	operation := func() error {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return backoff.Permanent(err)
		}
		last = resp
		if Retryable(resp.StatusCode) {
			return fmt.Errorf("HTTP %d from %s", resp.StatusCode, req.URL)
		}
		return nil
	}
	notify := func(error, time.Duration) {
		io.Copy(io.Discard, last.Body)
		last.Body.Close()
		last = nil
	}

	err := backoff.RetryNotify(operation, policy, notify)
	if err == nil {
		return last, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		if last != nil {
			last.Body.Close()
		}
		return nil, ctxErr
	}
	if last == nil {
		return nil, err
	}
	// Exhausted retries; hand back the final retryable response.
	return last, nil
}
