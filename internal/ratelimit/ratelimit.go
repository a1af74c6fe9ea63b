// Package ratelimit throttles outbound registry lookups with a local token
// bucket so the process stays under the provider's request quota.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/tokenizelocal/tokenizelocal/internal/adapter"
)

type limitedClient struct {
	next    adapter.HTTPClient
	limiter *rate.Limiter
}

// WrapHTTPClient returns an HTTP client that waits for a token before each
// request. A non-positive rps disables throttling and returns next unchanged.
func WrapHTTPClient(next adapter.HTTPClient, rps float64, burst int) adapter.HTTPClient {
	if rps <= 0 {
		return next
	}
	if burst < 1 {
		burst = 1
	}
	return &limitedClient{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (c *limitedClient) Get(ctx context.Context, url string, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	return c.next.Get(ctx, url, result)
}
