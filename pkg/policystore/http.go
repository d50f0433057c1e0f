package policystore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/praetorian-inc/policyscan/pkg/httpclient"
)

// maxDocumentSize caps a fetched policy document.
const maxDocumentSize = 16 << 20

// HTTPStore fetches documents with GET <base>/<key>.
type HTTPStore struct {
	base   *url.URL
	client *retryablehttp.Client
}

// NewHTTPStore creates a store rooted at baseURL.
func NewHTTPStore(baseURL string, timeout time.Duration) (*HTTPStore, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("http policy store requires a URL")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid policy store URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid policy store URL scheme %q", u.Scheme)
	}
	return &HTTPStore{
		base:   u,
		client: httpclient.New(httpclient.Options{Timeout: timeout, RetryMax: 2}),
	}, nil
}

// Fetch implements Store.
func (s *HTTPStore) Fetch(ctx context.Context, key string) ([]byte, error) {
	u := *s.base
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + strings.TrimPrefix(key, "/")

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", key, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("failed to fetch %s: unexpected status %d", key, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}
