package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultUserAgent = "tank-diorama/1.0"

type httpFetcher struct {
	base   *url.URL
	client *http.Client
}

var _ Fetcher = &httpFetcher{}

// NewHTTPFetcher creates a Fetcher that resolves asset paths against a base URL.
//
// Parameters:
//   - baseURL: the asset root, for example "https://example.com/diorama/"
//   - client: the HTTP client, a client with a 60 second timeout when nil
//
// Returns:
//   - Fetcher: the fetcher
//   - error: error if baseURL does not parse
func NewHTTPFetcher(baseURL string, client *http.Client) (Fetcher, error) {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid asset base url %q: %w", baseURL, err)
	}
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &httpFetcher{base: base, client: client}, nil
}

func (f *httpFetcher) Fetch(ctx context.Context, name string, progress ProgressFunc) ([]byte, error) {
	ref, err := url.Parse(cleanAssetPath(name))
	if err != nil {
		return nil, &FetchError{Path: name, Err: err}
	}
	target := f.base.ResolveReference(ref).String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &FetchError{Path: target, Err: err}
	}
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &FetchError{Path: target, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Path: target, StatusCode: resp.StatusCode, Err: fmt.Errorf("%s", resp.Status)}
	}

	data, err := io.ReadAll(newProgressReader(ctx, resp.Body, target, resp.ContentLength, progress))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &FetchError{Path: target, Err: err}
	}
	return data, nil
}
