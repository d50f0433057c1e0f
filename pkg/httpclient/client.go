// Package httpclient builds the retrying HTTP client shared by the remote
// policy store and the HTTP credential validators.
package httpclient

import (
	"context"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog/log"
)

// DefaultTimeout bounds one attempt of a request.
const DefaultTimeout = 10 * time.Second

// HeaderRoundTripper adds default headers to requests that do not set them.
type HeaderRoundTripper struct {
	Headers map[string]string
	Next    http.RoundTripper
}

// RoundTrip adds default headers when they're not present on the request
// and delegates to the next RoundTripper.
func (hrt *HeaderRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	next := hrt.Next
	if next == nil {
		next = http.DefaultTransport
	}
	for k, v := range hrt.Headers {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}
	return next.RoundTrip(req)
}

// Options configures New.
type Options struct {
	Timeout  time.Duration     // per attempt; DefaultTimeout when zero
	RetryMax int               // retries after the first attempt; 0 disables retrying
	Headers  map[string]string // default headers
}

// New returns a retryablehttp client that retries transport errors, 429 and
// 5xx responses (except 501).
func New(opts Options) *retryablehttp.Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	client := retryablehttp.NewClient()
	client.Logger = nil
	client.RetryMax = opts.RetryMax
	client.RetryWaitMin = 100 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.HTTPClient.Timeout = timeout
	client.CheckRetry = checkRetry

	if len(opts.Headers) > 0 {
		client.HTTPClient.Transport = &HeaderRoundTripper{
			Headers: opts.Headers,
			Next:    client.HTTPClient.Transport,
		}
	}
	return client
}

func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		log.Debug().Err(err).Msg("Retrying HTTP request, error occurred")
		return true, nil
	}
	if resp == nil {
		return false, nil
	}
	if resp.StatusCode == http.StatusTooManyRequests || (resp.StatusCode >= 500 && resp.StatusCode != http.StatusNotImplemented) {
		log.Trace().Int("statusCode", resp.StatusCode).Msg("Retrying HTTP request")
		return true, nil
	}
	return false, nil
}
